package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/attar/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/attar/internal/auth"
	"github.com/MrJamesThe3rd/attar/internal/catalog"
	"github.com/MrJamesThe3rd/attar/internal/catalog/csvimport"
	"github.com/MrJamesThe3rd/attar/internal/config"
	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	"github.com/MrJamesThe3rd/attar/internal/database"
	"github.com/MrJamesThe3rd/attar/internal/export"
	"github.com/MrJamesThe3rd/attar/internal/receipt"
	"github.com/MrJamesThe3rd/attar/internal/register"
	"github.com/MrJamesThe3rd/attar/internal/remote"
	"github.com/MrJamesThe3rd/attar/internal/syncer"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
	"github.com/MrJamesThe3rd/attar/internal/transaction/local"
)

type model struct {
	terminalID    string
	txService     *transaction.Service
	exportService *export.Service
	signal        connectivity.Signal

	saleDeps    view.SaleDeps
	syncDeps    view.SyncDeps
	receiptOpts receipt.Options

	currentView View
	size        tea.WindowSizeMsg

	saleView   view.SaleModel
	logView    view.LogModel
	syncView   view.SyncModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewSale   View = 1
	ViewLog    View = 2
	ViewSync   View = 3
	ViewExport View = 4
)

func initialModel(ctx context.Context, cfg *config.TerminalConfig) (model, error) {
	loc, err := cfg.Location()
	if err != nil {
		return model{}, fmt.Errorf("loading timezone: %w", err)
	}

	db, err := database.OpenLocal(cfg.Local.DBPath)
	if err != nil {
		return model{}, err
	}

	txLog, err := local.New(ctx, db)
	if err != nil {
		return model{}, err
	}

	txSvc := transaction.NewService(txLog)
	catalogSvc := catalog.NewService(catalog.NewMemory())
	customerSvc := customer.NewService(customer.NewMemory())

	if cfg.Catalog.CSV != "" {
		if err := loadCatalogCSV(ctx, catalogSvc, cfg); err != nil {
			return model{}, err
		}
	}

	var (
		signal  connectivity.Signal = connectivity.Static(false)
		worker  *syncer.Worker
		refresh func(ctx context.Context) error
	)

	if cfg.Remote.URL != "" {
		client := remote.NewClient(cfg.Remote.URL, cfg.Terminal.ID, auth.NewSigner(cfg.Remote.Secret, cfg.Remote.TokenTTL))

		monitor := connectivity.NewMonitor(client, cfg.Sync.ProbeInterval, slog.Default())
		go monitor.Run(ctx)

		signal = monitor

		worker = syncer.NewWorker(txSvc, client, monitor, syncer.Options{
			Interval:        cfg.Sync.Interval,
			PushesPerSecond: cfg.Sync.PushesPerSecond,
			Batch:           cfg.Sync.Batch,
		}, slog.Default())
		go worker.Run(ctx)

		refresh = func(ctx context.Context) error {
			return syncer.Refresh(ctx, client, catalogSvc, customerSvc, txSvc)
		}

		// The terminal keeps selling from the CSV seed when the back office is down.
		if err := refresh(ctx); err != nil {
			slog.Warn("failed to load catalog from back office", "error", err)
		}
	}

	reg := register.New(txSvc, catalogSvc, signal, register.Options{
		TerminalID: cfg.Terminal.ID,
		Logger:     slog.Default(),
	})

	receiptOpts := receipt.Options{
		StoreName:   cfg.Terminal.StoreName,
		StoreNameAr: cfg.Terminal.StoreNameAr,
		Currency:    cfg.Terminal.Currency,
		Width:       cfg.Terminal.ReceiptWidth,
		Location:    loc,
	}

	saleDeps := view.SaleDeps{
		Register:  reg,
		Catalog:   catalogSvc,
		Customers: customerSvc,
		Signal:    signal,
		Receipt:   receiptOpts,
		Printer:   cfg.Terminal.Printer,
	}

	syncDeps := view.SyncDeps{
		Worker:       worker,
		Transactions: txSvc,
		Signal:       signal,
		Refresh:      refresh,
	}

	expSvc := export.NewService(txSvc, loc)

	return model{
		terminalID:    cfg.Terminal.ID,
		txService:     txSvc,
		exportService: expSvc,
		signal:        signal,
		saleDeps:      saleDeps,
		syncDeps:      syncDeps,
		receiptOpts:   receiptOpts,
		currentView:   ViewMenu,
		saleView:      view.NewSaleModel(saleDeps),
		logView:       view.NewLogModel(txSvc, receiptOpts),
		syncView:      view.NewSyncModel(syncDeps),
		exportView:    view.NewExportModel(expSvc),
	}, nil
}

func loadCatalogCSV(ctx context.Context, svc *catalog.Service, cfg *config.TerminalConfig) error {
	f, err := os.Open(cfg.Catalog.CSV)
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	items, err := csvimport.NewParser(csvimport.Options{
		Charset:        cfg.Catalog.Charset,
		DefaultTaxRate: cfg.Catalog.DefaultTaxRate,
	}).Parse(f)
	if err != nil {
		return fmt.Errorf("parsing catalog file: %w", err)
	}

	if err := svc.Replace(ctx, items); err != nil {
		return err
	}

	slog.Info("catalog loaded from file", "path", cfg.Catalog.CSV, "items", len(items))

	return nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				// The open sale survives leaving the screen; the register owns it.
				m.currentView = ViewSale
				m.saleView = view.NewSaleModel(m.saleDeps)

				return m, m.resize(m.saleView.Init())
			case "2":
				m.currentView = ViewLog
				m.logView = view.NewLogModel(m.txService, m.receiptOpts)

				return m, m.resize(m.logView.Init())
			case "3":
				m.currentView = ViewSync
				m.syncView = view.NewSyncModel(m.syncDeps)

				return m, m.resize(m.syncView.Init())
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.resize(m.exportView.Init())
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewSale:
		var newModel tea.Model
		newModel, cmd = m.saleView.Update(msg)
		m.saleView = newModel.(view.SaleModel)
	case ViewLog:
		var newModel tea.Model
		newModel, cmd = m.logView.Update(msg)
		m.logView = newModel.(view.LogModel)
	case ViewSync:
		var newModel tea.Model
		newModel, cmd = m.syncView.Update(msg)
		m.syncView = newModel.(view.SyncModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

// resize replays the last window size to a freshly built view.
func (m model) resize(cmd tea.Cmd) tea.Cmd {
	if m.size.Width == 0 {
		return cmd
	}

	size := m.size

	return tea.Batch(cmd, func() tea.Msg { return size })
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		status := "offline"
		if m.signal.Online() {
			status = "online"
		}

		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Attar POS | terminal %s | %s\n\n", m.terminalID, status) +
				"1. New Sale\n" +
				"2. Transaction Log\n" +
				"3. Sync\n" +
				"4. End-of-day Export\n\n" +
				"q. Quit",
		)
	case ViewSale:
		return m.saleView.View()
	case ViewLog:
		return m.logView.View()
	case ViewSync:
		return m.syncView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadTerminal()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The screen belongs to the TUI; logs go to a file.
	f, err := tea.LogToFile(cfg.Terminal.LogFile, "attar")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := initialModel(ctx, cfg)
	if err != nil {
		slog.Error("failed to start terminal", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
