package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/attar/internal/connectivity"
	"github.com/MrJamesThe3rd/attar/internal/syncer"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type syncState int

const (
	syncStateIdle syncState = iota
	syncStateRunning
)

const syncTimeout = 2 * time.Minute

// SyncDeps are the collaborators of the sync screen. Worker and Refresh are nil
// when the terminal has no back office configured.
type SyncDeps struct {
	Worker       *syncer.Worker
	Transactions *transaction.Service
	Signal       connectivity.Signal
	// Refresh reloads the catalog and customers from the back office.
	Refresh func(ctx context.Context) error
}

type SyncModel struct {
	CommonModel
	deps SyncDeps

	state   syncState
	spinner spinner.Model
	pending int
	action  string
	result  string
	err     error
}

func NewSyncModel(deps SyncDeps) SyncModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SyncModel{
		deps:    deps,
		spinner: s,
	}
}

func (m SyncModel) Title() string { return "Sync" }

func (m SyncModel) ShortHelp() string {
	if m.state == syncStateRunning {
		return "Working..."
	}

	return "Esc: back | s: push pending sales | c: refresh catalog | r: refresh"
}

func (m SyncModel) Init() tea.Cmd {
	return m.countCmd()
}

func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pendingCountMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.pending = msg.count
		}

		return m, nil

	case syncDoneMsg:
		m.state = syncStateIdle
		m.err = msg.err
		m.result = msg.body

		return m, m.countCmd()

	case spinner.TickMsg:
		if m.state != syncStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if m.state == syncStateRunning {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.countCmd()
		case "s":
			if m.deps.Worker == nil {
				m.err = errors.New("no back office configured")
				return m, nil
			}

			m.state = syncStateRunning
			m.action = "Pushing pending sales"
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.pushCmd())
		case "c":
			if m.deps.Refresh == nil {
				m.err = errors.New("no back office configured")
				return m, nil
			}

			m.state = syncStateRunning
			m.action = "Refreshing catalog and customers"
			m.err = nil

			return m, tea.Batch(m.spinner.Tick, m.refreshCmd())
		}
	}

	return m, nil
}

func (m SyncModel) View() string {
	online := errorStyle.Render("offline")
	if m.deps.Signal != nil && m.deps.Signal.Online() {
		online = okStyle.Render("online")
	}

	lines := []string{
		fmt.Sprintf("Back office: %s", online),
		fmt.Sprintf("Waiting to sync: %s", activeStyle(fmt.Sprintf("%d", m.pending))),
		"",
	}

	switch {
	case m.state == syncStateRunning:
		lines = append(lines, fmt.Sprintf("%s %s...", m.spinner.View(), m.action))
	case m.err != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.result != "":
		lines = append(lines, okStyle.Render(m.result))
	}

	lines = append(lines, "", faintStyle.Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Messages

type pendingCountMsg struct {
	count int
	err   error
}

func (m SyncModel) countCmd() tea.Cmd {
	txs := m.deps.Transactions

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		pending, err := txs.Unsynced(ctx, 0)

		return pendingCountMsg{count: len(pending), err: err}
	}
}

type syncDoneMsg struct {
	body string
	err  error
}

func (m SyncModel) pushCmd() tea.Cmd {
	w := m.deps.Worker

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		res, err := w.RunOnce(ctx)
		if err != nil {
			return syncDoneMsg{err: err}
		}

		body := fmt.Sprintf("Pushed %d sales.", res.Pushed)
		if res.Failed > 0 {
			body += fmt.Sprintf(" %d failed and will be retried.", res.Failed)
		}

		return syncDoneMsg{body: body}
	}
}

func (m SyncModel) refreshCmd() tea.Cmd {
	refresh := m.deps.Refresh

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := refresh(ctx); err != nil {
			return syncDoneMsg{err: err}
		}

		return syncDoneMsg{body: "Catalog and customers refreshed."}
	}
}
