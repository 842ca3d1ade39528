package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/customer"
)

// itemEntry wraps a catalog item to implement list.Item.
type itemEntry struct {
	item catalog.Item
}

func (i itemEntry) Title() string {
	return fmt.Sprintf("%s  %s", i.item.Name, faintStyle.Render(i.item.NameAr))
}

func (i itemEntry) Description() string {
	return fmt.Sprintf("%s / %s  |  stock %d  |  VAT %s%%", FormatMoney(i.item.Price), i.item.Unit, i.item.Stock, i.item.TaxRate)
}

func (i itemEntry) FilterValue() string {
	return strings.Join([]string{i.item.Name, i.item.NameAr, i.item.ID, i.item.Barcode}, " ")
}

// customerEntry wraps a customer to implement list.Item.
type customerEntry struct {
	customer *customer.Customer
}

func (c customerEntry) Title() string {
	if c.customer == nil {
		return "Walk-in (no customer)"
	}

	return fmt.Sprintf("%s  %s", c.customer.DisplayName(), faintStyle.Render(c.customer.NameAr))
}

func (c customerEntry) Description() string {
	if c.customer == nil {
		return ""
	}

	desc := c.customer.Phone
	if !c.customer.DiscountPercentage.IsZero() {
		desc += fmt.Sprintf("  |  %s%% off", c.customer.DiscountPercentage)
	}

	return desc + fmt.Sprintf("  |  %d pts", c.customer.LoyaltyPoints)
}

func (c customerEntry) FilterValue() string {
	if c.customer == nil {
		return "walk-in"
	}

	return strings.Join([]string{c.customer.Name, c.customer.NameAr, c.customer.Phone}, " ")
}

type entry interface {
	list.Item
	Title() string
	Description() string
}

// entryDelegate renders picker rows.
type entryDelegate struct{}

func (d entryDelegate) Height() int                             { return 2 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	e, ok := item.(entry)
	if !ok {
		return
	}

	title := e.Title()
	if index == m.Index() {
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	}

	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintf(w, "    %s\n", faintStyle.Render(e.Description()))
}

func newPicker(title string) list.Model {
	l := list.New([]list.Item{}, entryDelegate{}, 80, 20)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return l
}
