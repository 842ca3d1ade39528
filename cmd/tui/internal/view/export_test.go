package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/attar/internal/export"
	"github.com/MrJamesThe3rd/attar/internal/sale"
)

func TestExportModel_CloseOutEverything(t *testing.T) {
	_, reg, txs := newTestSale(t)

	require.NoError(t, reg.Dispatch(sale.AddItem{Item: musk, Quantity: 1}))
	require.NoError(t, reg.Dispatch(sale.SetPaymentMethod{Method: sale.PaymentCard}))
	_, err := reg.Complete(context.Background())
	require.NoError(t, err)

	em := NewExportModel(export.NewService(txs, time.UTC))

	next, cmd := em.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'6'}})
	em = next.(ExportModel)
	require.NotNil(t, cmd)

	selected, ok := cmd().(PeriodSelectedMsg)
	require.True(t, ok)
	assert.False(t, selected.Bounded())

	next, _ = em.Update(selected)
	em = next.(ExportModel)
	assert.Equal(t, closeStatePreview, em.state)
	assert.Empty(t, em.filter())

	next, _ = em.Update(em.previewCmd()())
	em = next.(ExportModel)
	require.NotNil(t, em.preview)
	assert.Equal(t, 1, em.preview.Count)
	assert.Contains(t, em.View(), "1 sales")

	next, _ = em.Update(em.writeCmd(t.TempDir())())
	em = next.(ExportModel)
	require.NoError(t, em.err)
	assert.Equal(t, closeStateDone, em.state)
	assert.Len(t, em.report.Files, 2)

	_, cmd = em.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, BackMsg{}, cmd())
}
