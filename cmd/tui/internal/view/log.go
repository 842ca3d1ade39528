package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/attar/internal/receipt"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type logState int

const (
	logStateBrowse logState = iota
	logStateReceipt
)

var (
	logStatusLabels = []string{"All", "Pending", "Completed", "Synced"}
	logDateLabels   = []string{"Today", "This Month", "All Time"}
)

// LogModel browses the terminal's local transaction log.
type LogModel struct {
	CommonModel
	txService *transaction.Service
	receipt   receipt.Options

	state logState
	table table.Model
	txs   []*transaction.Transaction

	statusFilterIdx int
	dateFilterIdx   int

	filter  transaction.ListFilter
	loading bool
	err     error
}

func NewLogModel(txSvc *transaction.Service, opts receipt.Options) LogModel {
	columns := []table.Column{
		{Title: "Time", Width: 17},
		{Title: "Status", Width: 10},
		{Title: "Items", Width: 6},
		{Title: "Total", Width: 12},
		{Title: "Payment", Width: 9},
		{Title: "Customer", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	m := LogModel{
		txService: txSvc,
		receipt:   opts,
		table:     t,
		loading:   true,
	}
	m.applyFilter(time.Now())

	return m
}

func (m LogModel) Title() string { return "Transaction Log" }

func (m LogModel) ShortHelp() string {
	if m.state == logStateReceipt {
		return "Esc: back to log"
	}

	return "Esc: back | Enter: receipt | s: status filter | d: date filter | r: refresh"
}

func (m LogModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m LogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLogMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case tea.KeyMsg:
		if m.state == logStateReceipt {
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.state = logStateBrowse
				m.table.Focus()
			}

			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "enter":
			if m.selected() != nil {
				m.state = logStateReceipt
				m.table.Blur()
			}

			return m, nil
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(logStatusLabels)
			m.applyFilter(time.Now())
			m.loading = true

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % len(logDateLabels)
			m.applyFilter(time.Now())
			m.loading = true

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LogModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m LogModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.state == logStateReceipt {
		tx := m.selected()

		synced := ""
		if tx.SyncedAt != nil {
			synced = faintStyle.Render("  at " + FormatTime(*tx.SyncedAt))
		}

		return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
			"Status: "+statusLabel(tx.Status)+synced,
			"",
			panelStyle.Render(receipt.Render(tx, m.receipt)),
			"",
			faintStyle.Render(m.ShortHelp()),
		))
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [d] Date: %s | %d sales",
		activeStyle(logStatusLabels[m.statusFilterIdx]),
		activeStyle(logDateLabels[m.dateFilterIdx]),
		len(m.txs),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	))
}

func (m *LogModel) applyFilter(now time.Time) {
	switch m.statusFilterIdx {
	case 1:
		m.filter.Statuses = []transaction.Status{transaction.StatusPending}
	case 2:
		m.filter.Statuses = []transaction.Status{transaction.StatusCompleted}
	case 3:
		m.filter.Statuses = []transaction.Status{transaction.StatusSynced}
	default:
		m.filter.Statuses = nil
	}

	period := PeriodAll

	switch m.dateFilterIdx {
	case 0:
		period = PeriodToday
	case 1:
		period = PeriodThisMonth
	}

	s, e, ok := period.Range(now, m.receipt.Location)
	if !ok {
		m.filter.StartDate = nil
		m.filter.EndDate = nil

		return
	}

	m.filter.StartDate = &s
	m.filter.EndDate = &e
}

func (m *LogModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		items := 0
		for _, l := range tx.Lines {
			items += l.Quantity
		}

		customerName := tx.CustomerName
		if customerName == "" {
			customerName = "walk-in"
		}

		rows = append(rows, table.Row{
			FormatTime(tx.CreatedAt),
			string(tx.Status),
			fmt.Sprintf("%d", items),
			FormatMoney(tx.Totals.GrandTotal),
			string(tx.Payment.Method),
			customerName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadLogMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m LogModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadLogMsg{txs: txs, err: err}
	}
}
