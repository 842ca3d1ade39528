package view

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/database"
	"github.com/MrJamesThe3rd/attar/internal/register"
	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
	"github.com/MrJamesThe3rd/attar/internal/transaction/local"
)

var musk = catalog.Item{
	ID:      "white-musk",
	Name:    "White Musk",
	Price:   decimal.NewFromInt(40),
	Stock:   10,
	Unit:    "bottle",
	TaxRate: decimal.NewFromInt(5),
}

func newTestSale(t *testing.T) (SaleModel, *register.Register, *transaction.Service) {
	t.Helper()

	db, err := database.OpenLocal(filepath.Join(t.TempDir(), "pos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	txLog, err := local.New(context.Background(), db)
	require.NoError(t, err)

	txs := transaction.NewService(txLog)
	reg := register.New(txs, nil, connectivity.Static(false), register.Options{TerminalID: "T1"})

	m := NewSaleModel(SaleDeps{
		Register:  reg,
		Catalog:   catalog.NewService(catalog.NewMemory()),
		Customers: customer.NewService(customer.NewMemory()),
		Signal:    connectivity.Static(false),
	})

	return m, reg, txs
}

func press(t *testing.T, m SaleModel, key tea.KeyMsg) (SaleModel, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(key)

	return next.(SaleModel), cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestSaleModel_CartKeys(t *testing.T) {
	m, reg, _ := newTestSale(t)

	require.NoError(t, reg.Dispatch(sale.AddItem{Item: musk, Quantity: 1}))
	m.refreshCart()

	m, _ = press(t, m, runeKey('+'))
	line, ok := reg.Session().Line(musk.ID)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)

	m, _ = press(t, m, runeKey('-'))
	m, _ = press(t, m, runeKey('-'))
	_, ok = reg.Session().Line(musk.ID)
	assert.False(t, ok, "quantity zero removes the line")
	assert.NoError(t, m.err)

	require.NoError(t, reg.Dispatch(sale.AddItem{Item: musk, Quantity: 3}))
	m.refreshCart()

	m, _ = press(t, m, runeKey('n'))
	assert.Equal(t, sale.StageEmpty, reg.Session().Stage())
	assert.Equal(t, "Sale cancelled.", m.status)
}

func TestSaleModel_CompleteWithoutPayment(t *testing.T) {
	m, reg, _ := newTestSale(t)

	require.NoError(t, reg.Dispatch(sale.AddItem{Item: musk, Quantity: 1}))
	m.refreshCart()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(SaleModel)

	assert.Equal(t, saleStateCart, m.state)
	assert.ErrorIs(t, m.err, sale.ErrPaymentMethodRequired)
	assert.Len(t, reg.Session().Lines, 1, "rejected checkout keeps the cart")
}

func TestSaleModel_CompleteRecordsAndShowsReceipt(t *testing.T) {
	m, reg, txs := newTestSale(t)

	require.NoError(t, reg.Dispatch(sale.AddItem{Item: musk, Quantity: 2}))
	require.NoError(t, reg.Dispatch(sale.SetPaymentMethod{Method: sale.PaymentCard}))
	m.refreshCart()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(SaleModel)

	require.NoError(t, m.err)
	assert.Equal(t, saleStateReceipt, m.state)
	require.NotNil(t, m.lastTx)
	assert.Equal(t, transaction.StatusPending, m.lastTx.Status)
	assert.Contains(t, m.View(), "White Musk")
	assert.Equal(t, sale.StageEmpty, reg.Session().Stage())

	pending, err := txs.Unsynced(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	m, _ = press(t, m, runeKey('p'))
	assert.EqualError(t, m.err, "no printer configured")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, saleStateCart, m.state)
	assert.NoError(t, m.err)
}

func TestTotalsView(t *testing.T) {
	s, err := sale.Reduce(sale.Empty(), sale.AddItem{Item: musk, Quantity: 1})
	require.NoError(t, err)

	s, err = sale.Reduce(s, sale.SetPaymentMethod{Method: sale.PaymentCash})
	require.NoError(t, err)

	s, err = sale.Reduce(s, sale.SetAmountTendered{Amount: decimal.NewFromInt(50)})
	require.NoError(t, err)

	out := totalsView(s)
	assert.Contains(t, out, "42.00")
	assert.Contains(t, out, "Tendered")
	assert.Contains(t, out, "8.00")
}
