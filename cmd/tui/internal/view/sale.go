package view

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/receipt"
	"github.com/MrJamesThe3rd/attar/internal/register"
	"github.com/MrJamesThe3rd/attar/internal/sale"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type saleState int

const (
	saleStateCart saleState = iota
	saleStatePickItem
	saleStateBarcode
	saleStateDiscount
	saleStatePickCustomer
	saleStatePayment
	saleStateCompleting
	saleStateReceipt
)

// saleForm holds huh bindings. It lives behind a pointer so copies of the
// model share it.
type saleForm struct {
	discount string
	method   string
	tendered string
}

// SaleDeps are the collaborators of the sale screen.
type SaleDeps struct {
	Register  *register.Register
	Catalog   *catalog.Service
	Customers *customer.Service
	Signal    connectivity.Signal
	Receipt   receipt.Options
	// Printer is a device or file that receives ESC/POS output. Empty disables printing.
	Printer string
}

type SaleModel struct {
	CommonModel
	deps SaleDeps

	state   saleState
	cart    table.Model
	picker  list.Model
	barcode textinput.Model
	form    *huh.Form
	fields  *saleForm

	lastTx *transaction.Transaction
	status string
	err    error
}

func NewSaleModel(deps SaleDeps) SaleModel {
	columns := []table.Column{
		{Title: "Item", Width: 28},
		{Title: "Qty", Width: 5},
		{Title: "Price", Width: 10},
		{Title: "Disc/unit", Width: 10},
		{Title: "Net", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	bi := textinput.New()
	bi.Placeholder = "scan or type barcode / item id"
	bi.CharLimit = 64
	bi.Width = 32
	bi.Prompt = "Code: "

	m := SaleModel{
		deps:    deps,
		cart:    t,
		picker:  newPicker(""),
		barcode: bi,
		fields:  &saleForm{},
	}
	m.refreshCart()

	return m
}

func (m SaleModel) Title() string { return "New Sale" }

func (m SaleModel) ShortHelp() string {
	switch m.state {
	case saleStateCart:
		return "a: add | b: barcode | +/-: qty | x: remove | d: discount | c: customer | p: pay | enter: complete | n: cancel sale | esc: menu"
	case saleStatePickItem, saleStatePickCustomer:
		return "enter: select | /: filter | esc: back"
	case saleStateReceipt:
		return "enter: next sale | p: print"
	}

	return "esc: back"
}

func (m SaleModel) Init() tea.Cmd {
	return nil
}

func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.cart.SetHeight(max(msg.Height-18, 5))
		m.picker.SetSize(msg.Width-4, msg.Height-6)

		return m, nil

	case itemsLoadedMsg:
		if msg.err != nil {
			m.state = saleStateCart
			m.err = msg.err

			return m, nil
		}

		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = itemEntry{item: it}
		}

		m.picker = newPicker("Add item")
		m.resizePicker()

		return m, m.picker.SetItems(items)

	case customersLoadedMsg:
		if msg.err != nil {
			m.state = saleStateCart
			m.err = msg.err

			return m, nil
		}

		items := make([]list.Item, 0, len(msg.customers)+1)
		items = append(items, customerEntry{})

		for i := range msg.customers {
			items = append(items, customerEntry{customer: &msg.customers[i]})
		}

		m.picker = newPicker("Customer")
		m.resizePicker()

		return m, m.picker.SetItems(items)

	case lookupMsg:
		m.state = saleStateCart
		m.cart.Focus()

		if msg.err != nil {
			m.err = fmt.Errorf("%s: %w", msg.code, msg.err)
			return m, nil
		}

		m.dispatch(sale.AddItem{Item: msg.item, Quantity: 1})

		return m, nil

	case completedMsg:
		if msg.err != nil {
			m.state = saleStateCart
			m.err = msg.err

			return m, nil
		}

		m.lastTx = msg.tx
		m.state = saleStateReceipt
		m.err = nil
		m.status = ""
		m.refreshCart()

		return m, nil

	case printedMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.status = "Receipt sent to printer."
		}

		return m, nil
	}

	switch m.state {
	case saleStateCart:
		return m.updateCart(msg)
	case saleStatePickItem:
		return m.updatePickItem(msg)
	case saleStatePickCustomer:
		return m.updatePickCustomer(msg)
	case saleStateBarcode:
		return m.updateBarcode(msg)
	case saleStateDiscount, saleStatePayment:
		return m.updateForm(msg)
	case saleStateReceipt:
		return m.updateReceipt(msg)
	}

	return m, nil
}

func (m *SaleModel) resizePicker() {
	if m.Width > 0 {
		m.picker.SetSize(m.Width-4, m.Height-6)
	}
}

// dispatch applies an action and reports a rejection on the status line.
func (m *SaleModel) dispatch(a sale.Action) {
	if err := m.deps.Register.Dispatch(a); err != nil {
		m.err = err
	} else {
		m.err = nil
	}

	m.refreshCart()
}

func (m SaleModel) selectedLine() (sale.Line, bool) {
	lines := m.deps.Register.Session().Lines

	idx := m.cart.Cursor()
	if idx < 0 || idx >= len(lines) {
		return sale.Line{}, false
	}

	return lines[idx], true
}

func (m SaleModel) updateCart(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.cart, cmd = m.cart.Update(msg)

		return m, cmd
	}

	m.status = ""

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "a":
		m.state = saleStatePickItem
		return m, m.loadItemsCmd()
	case "b":
		m.state = saleStateBarcode
		m.barcode.Reset()
		m.cart.Blur()

		return m, m.barcode.Focus()
	case "+", "=":
		if line, ok := m.selectedLine(); ok {
			m.dispatch(sale.UpdateQuantity{ItemID: line.Item.ID, Quantity: line.Quantity + 1})
		}

		return m, nil
	case "-":
		if line, ok := m.selectedLine(); ok {
			m.dispatch(sale.UpdateQuantity{ItemID: line.Item.ID, Quantity: line.Quantity - 1})
		}

		return m, nil
	case "x", "delete":
		if line, ok := m.selectedLine(); ok {
			m.dispatch(sale.RemoveItem{ItemID: line.Item.ID})
		}

		return m, nil
	case "d":
		line, ok := m.selectedLine()
		if !ok {
			return m, nil
		}

		m.fields.discount = line.Discount.String()
		m.form = m.buildDiscountForm(line)
		m.state = saleStateDiscount

		return m, m.form.Init()
	case "c":
		m.state = saleStatePickCustomer
		return m, m.loadCustomersCmd()
	case "p":
		s := m.deps.Register.Session()
		m.fields.method = string(s.Payment)
		m.fields.tendered = ""

		if s.Tendered.IsPositive() {
			m.fields.tendered = s.Tendered.String()
		}

		m.form = m.buildPaymentForm(s.Totals.GrandTotal)
		m.state = saleStatePayment

		return m, m.form.Init()
	case "enter":
		m.state = saleStateCompleting
		return m, m.completeCmd()
	case "n":
		m.deps.Register.Cancel()
		m.err = nil
		m.status = "Sale cancelled."
		m.refreshCart()

		return m, nil
	}

	var cmd tea.Cmd
	m.cart, cmd = m.cart.Update(msg)

	return m, cmd
}

func (m SaleModel) updatePickItem(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.picker.FilterState() != list.Filtering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = saleStateCart
			return m, nil
		case tea.KeyEnter:
			if e, ok := m.picker.SelectedItem().(itemEntry); ok {
				m.dispatch(sale.AddItem{Item: e.item, Quantity: 1})
			}

			m.state = saleStateCart

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m SaleModel) updatePickCustomer(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.picker.FilterState() != list.Filtering {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = saleStateCart
			return m, nil
		case tea.KeyEnter:
			if e, ok := m.picker.SelectedItem().(customerEntry); ok {
				m.dispatch(sale.SetCustomer{Customer: e.customer})
			}

			m.state = saleStateCart

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m SaleModel) updateBarcode(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.state = saleStateCart
			m.barcode.Blur()
			m.cart.Focus()

			return m, nil
		case tea.KeyEnter:
			code := strings.TrimSpace(m.barcode.Value())
			m.barcode.Blur()

			return m, m.lookupCmd(code)
		}
	}

	var cmd tea.Cmd
	m.barcode, cmd = m.barcode.Update(msg)

	return m, cmd
}

func (m SaleModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = saleStateCart
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.state {
	case saleStateDiscount:
		if line, ok := m.selectedLine(); ok {
			m.dispatch(sale.SetLineDiscount{ItemID: line.Item.ID, Discount: parseMoney(m.fields.discount)})
		}
	case saleStatePayment:
		m.dispatch(sale.SetPaymentMethod{Method: sale.PaymentMethod(m.fields.method)})

		if m.err == nil && m.fields.tendered != "" {
			m.dispatch(sale.SetAmountTendered{Amount: parseMoney(m.fields.tendered)})
		}
	}

	m.state = saleStateCart
	m.form = nil

	return m, nil
}

func (m SaleModel) updateReceipt(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "p":
		if m.deps.Printer == "" {
			m.err = errors.New("no printer configured")
			return m, nil
		}

		return m, m.printCmd(m.lastTx)
	case "enter", "esc":
		m.state = saleStateCart
		m.status = ""
		m.err = nil
		m.cart.Focus()

		return m, nil
	}

	return m, nil
}

func (m SaleModel) buildDiscountForm(line sale.Line) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("discount").
				Title(fmt.Sprintf("Discount per unit for %s", line.Item.Name)).
				Description(fmt.Sprintf("Unit price %s. Larger discounts are capped at the price.", FormatMoney(line.Item.Price))).
				Value(&m.fields.discount).
				Validate(validateMoney),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SaleModel) buildPaymentForm(total decimal.Decimal) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("method").
				Title(fmt.Sprintf("Payment method (total %s)", FormatMoney(total))).
				Options(
					huh.NewOption("Cash", string(sale.PaymentCash)),
					huh.NewOption("Card", string(sale.PaymentCard)),
					huh.NewOption("Bank transfer", string(sale.PaymentTransfer)),
					huh.NewOption("Mixed", string(sale.PaymentMixed)),
				).
				Value(&m.fields.method),

			huh.NewInput().
				Key("tendered").
				Title("Amount tendered (cash only)").
				Placeholder(FormatMoney(total)).
				Value(&m.fields.tendered).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					return validateMoney(s)
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func validateMoney(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter an amount like 12.50")
	}

	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}

	return nil
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}

	return d
}

func (m *SaleModel) refreshCart() {
	lines := m.deps.Register.Session().Lines

	rows := make([]table.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, table.Row{
			l.Item.Name,
			fmt.Sprintf("%d", l.Quantity),
			FormatMoney(l.Item.Price),
			FormatMoney(l.UnitDiscount()),
			FormatMoney(l.Net()),
		})
	}

	m.cart.SetRows(rows)

	if c := m.cart.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.cart.SetCursor(len(rows) - 1)
	}
}

func (m SaleModel) View() string {
	switch m.state {
	case saleStatePickItem, saleStatePickCustomer:
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	case saleStateReceipt:
		return m.viewReceipt()
	}

	s := m.deps.Register.Session()

	online := errorStyle.Render("offline")
	if m.deps.Signal != nil && m.deps.Signal.Online() {
		online = okStyle.Render("online")
	}

	customerName := "walk-in"
	if s.Customer != nil {
		customerName = s.Customer.DisplayName()
	}

	header := fmt.Sprintf("Stage: %s | Customer: %s | Back office: %s",
		activeStyle(s.Stage().String()), activeStyle(customerName), online)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.cart.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top, tableView, " ", panelStyle.Render(totalsView(s))),
	)

	switch m.state {
	case saleStateBarcode:
		content += "\n\n" + m.barcode.View()
	case saleStateDiscount, saleStatePayment:
		if m.form != nil {
			content += "\n\n" + panelStyle.Render(m.form.View())
		}
	case saleStateCompleting:
		content += "\n\n" + faintStyle.Render("Recording sale...")
	}

	if m.err != nil {
		content += "\n\n" + errorStyle.Render("! "+m.err.Error())
	} else if m.status != "" {
		content += "\n\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

func totalsView(s sale.Session) string {
	t := s.Totals

	rows := [][2]string{
		{"Items", fmt.Sprintf("%d", s.ItemCount())},
		{"Subtotal", FormatMoney(t.Subtotal)},
		{"Item discounts", "-" + FormatMoney(t.LineDiscount)},
		{"Customer discount", "-" + FormatMoney(t.CustomerDiscount)},
		{"VAT", FormatMoney(t.Tax)},
		{"Total", activeStyle(FormatMoney(t.GrandTotal))},
	}

	if s.Payment != "" {
		rows = append(rows, [2]string{"Payment", string(s.Payment)})
	}

	if s.Payment == sale.PaymentCash {
		rows = append(rows,
			[2]string{"Tendered", FormatMoney(s.Tendered)},
			[2]string{"Change", FormatMoney(t.Change)},
		)
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-18s %12s\n", r[0], r[1]))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (m SaleModel) viewReceipt() string {
	if m.lastTx == nil {
		return ""
	}

	header := okStyle.Bold(true).Render("Sale recorded")
	if m.lastTx.Status == transaction.StatusPending {
		header += faintStyle.Render("  (offline, will sync later)")
	}

	body := panelStyle.Render(receipt.Render(m.lastTx, m.deps.Receipt))

	footer := faintStyle.Render(m.ShortHelp())
	if m.err != nil {
		footer = errorStyle.Render("! "+m.err.Error()) + "\n" + footer
	} else if m.status != "" {
		footer = faintStyle.Render(m.status) + "\n" + footer
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer))
}

// Messages

type itemsLoadedMsg struct {
	items []catalog.Item
	err   error
}

func (m SaleModel) loadItemsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		items, err := m.deps.Catalog.List(ctx)

		return itemsLoadedMsg{items: items, err: err}
	}
}

type customersLoadedMsg struct {
	customers []customer.Customer
	err       error
}

func (m SaleModel) loadCustomersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customers, err := m.deps.Customers.List(ctx)

		return customersLoadedMsg{customers: customers, err: err}
	}
}

type lookupMsg struct {
	code string
	item catalog.Item
	err  error
}

func (m SaleModel) lookupCmd(code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		item, err := m.deps.Catalog.Lookup(ctx, code)

		return lookupMsg{code: code, item: item, err: err}
	}
}

type completedMsg struct {
	tx  *transaction.Transaction
	err error
}

func (m SaleModel) completeCmd() tea.Cmd {
	reg := m.deps.Register

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, err := reg.Complete(ctx)

		return completedMsg{tx: tx, err: err}
	}
}

type printedMsg struct {
	err error
}

func (m SaleModel) printCmd(tx *transaction.Transaction) tea.Cmd {
	device := m.deps.Printer
	opts := m.deps.Receipt

	return func() tea.Msg {
		f, err := os.OpenFile(device, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return printedMsg{err: fmt.Errorf("opening printer: %w", err)}
		}
		defer f.Close()

		if _, err := f.Write(receipt.ESCPOS(tx, opts)); err != nil {
			return printedMsg{err: fmt.Errorf("printing receipt: %w", err)}
		}

		return printedMsg{}
	}
}
