package register_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/register"
	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

var (
	fixedNow = time.Date(2026, 4, 12, 18, 30, 0, 0, time.UTC)
	fixedID  = uuid.MustParse("6f1c2a8e-1d0b-4b52-9a55-3f7d2c4e9b10")
	oud      = catalog.Item{
		ID:      "oud-cambodi",
		Name:    "Cambodi Oud",
		Price:   decimal.NewFromInt(2500),
		Stock:   4,
		Unit:    "tola",
		TaxRate: decimal.NewFromInt(5),
	}
)

func newRegister(repo transaction.Repository, stock *catalog.Service, online bool) *register.Register {
	return register.New(transaction.NewService(repo), stock, connectivity.Static(online), register.Options{
		TerminalID: "T1",
		Now:        func() time.Time { return fixedNow },
		NewID:      func() uuid.UUID { return fixedID },
	})
}

func stockedCatalog(t *testing.T) *catalog.Service {
	t.Helper()

	svc := catalog.NewService(catalog.NewMemory())
	require.NoError(t, svc.Replace(context.Background(), []catalog.Item{oud}))

	return svc
}

func readyToPay(t *testing.T, r *register.Register, method sale.PaymentMethod, tendered string) {
	t.Helper()

	require.NoError(t, r.Dispatch(sale.AddItem{Item: oud, Quantity: 1}))
	require.NoError(t, r.Dispatch(sale.SetPaymentMethod{Method: method}))

	if tendered != "" {
		require.NoError(t, r.Dispatch(sale.SetAmountTendered{Amount: decimal.RequireFromString(tendered)}))
	}
}

func TestRegister_Complete(t *testing.T) {
	type testCase struct {
		name       string
		online     bool
		wantStatus transaction.Status
	}

	tests := []testCase{
		{name: "online sale is completed", online: true, wantStatus: transaction.StatusCompleted},
		{name: "offline sale is pending", online: false, wantStatus: transaction.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			stock := stockedCatalog(t)

			var appended *transaction.Transaction

			repo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, tx *transaction.Transaction) error {
					appended = tx
					return nil
				})

			r := newRegister(repo, stock, tt.online)
			readyToPay(t, r, sale.PaymentCash, "3000")

			tx, err := r.Complete(context.Background())
			require.NoError(t, err)

			assert.Same(t, appended, tx)
			assert.Equal(t, fixedID, tx.ID)
			assert.Equal(t, "T1", tx.TerminalID)
			assert.Equal(t, fixedNow, tx.CreatedAt)
			assert.Equal(t, tt.wantStatus, tx.Status)
			assert.True(t, tx.Totals.GrandTotal.Equal(decimal.NewFromInt(2625)))
			assert.True(t, tx.Payment.Change.Equal(decimal.NewFromInt(375)))

			assert.Equal(t, sale.Empty(), r.Session())

			item, err := stock.Get(context.Background(), oud.ID)
			require.NoError(t, err)
			assert.Equal(t, 3, item.Stock)
		})
	}
}

func TestRegister_CompleteRejected(t *testing.T) {
	type testCase struct {
		name    string
		prepare func(t *testing.T, r *register.Register)
		wantErr error
	}

	tests := []testCase{
		{
			name:    "empty cart",
			prepare: func(t *testing.T, r *register.Register) {},
			wantErr: sale.ErrIncompleteSale,
		},
		{
			name: "no payment method",
			prepare: func(t *testing.T, r *register.Register) {
				require.NoError(t, r.Dispatch(sale.AddItem{Item: oud}))
			},
			wantErr: sale.ErrPaymentMethodRequired,
		},
		{
			name: "cash short of total",
			prepare: func(t *testing.T, r *register.Register) {
				readyToPay(t, r, sale.PaymentCash, "2000")
			},
			wantErr: sale.ErrInsufficientTender,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)

			r := newRegister(repo, nil, true)
			tt.prepare(t, r)

			before := r.Session()

			tx, err := r.Complete(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tx)
			assert.Equal(t, before, r.Session())
		})
	}
}

func TestRegister_InsufficientTenderDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRegister(transaction.NewMockRepository(ctrl), nil, true)
	readyToPay(t, r, sale.PaymentCash, "100")

	_, err := r.Complete(context.Background())

	var tenderErr *sale.InsufficientTenderError
	require.ErrorAs(t, err, &tenderErr)
	assert.True(t, tenderErr.Total.Equal(decimal.NewFromInt(2625)))
	assert.True(t, tenderErr.Tendered.Equal(decimal.NewFromInt(100)))
}

func TestRegister_AppendFailureKeepsSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk I/O error"))

	stock := stockedCatalog(t)
	r := newRegister(repo, stock, false)
	readyToPay(t, r, sale.PaymentCard, "")

	before := r.Session()

	_, err := r.Complete(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, r.Session())

	item, err := stock.Get(context.Background(), oud.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, item.Stock)
}

func TestRegister_StockFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	items := catalog.NewMockRepository(ctrl)
	items.EXPECT().AdjustStock(gomock.Any(), []catalog.StockAdjustment{{ItemID: oud.ID, Delta: -2}}).
		Return(errors.New("catalog locked"))

	r := newRegister(repo, catalog.NewService(items), true)
	require.NoError(t, r.Dispatch(sale.AddItem{Item: oud, Quantity: 2}))
	require.NoError(t, r.Dispatch(sale.SetPaymentMethod{Method: sale.PaymentTransfer}))

	tx, err := r.Complete(context.Background())
	require.NoError(t, err)
	assert.True(t, tx.Payment.Tendered.IsZero())
	assert.Equal(t, sale.Empty(), r.Session())
}

func TestRegister_DispatchAndCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRegister(transaction.NewMockRepository(ctrl), nil, true)

	err := r.Dispatch(sale.AddItem{Item: oud, Quantity: 9})
	assert.ErrorIs(t, err, sale.ErrInvalidQuantity)
	assert.Equal(t, sale.Empty(), r.Session())

	require.NoError(t, r.Dispatch(sale.AddItem{Item: oud, Quantity: 2}))
	require.NoError(t, r.Dispatch(sale.SetCustomer{Customer: &customer.Customer{
		ID:                 "c-1",
		Name:               "Layla",
		DiscountPercentage: decimal.NewFromInt(10),
	}}))
	assert.Equal(t, sale.StageBuilding, r.Session().Stage())
	assert.True(t, r.Session().Totals.CustomerDiscount.Equal(decimal.NewFromInt(500)))

	r.Cancel()
	assert.Equal(t, sale.Empty(), r.Session())
}
