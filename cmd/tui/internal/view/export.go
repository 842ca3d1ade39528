package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/attar/internal/export"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
)

type closeState int

const (
	closeStateDays closeState = iota
	closeStatePreview
	closeStateWriting
	closeStateDone
)

const exportTimeout = 2 * time.Minute

// ExportModel closes out a period: pick the days, check the takings, write the
// accountant's files.
type ExportModel struct {
	CommonModel
	svc *export.Service

	state   closeState
	days    PeriodPicker
	period  PeriodSelectedMsg
	preview *export.Report

	form    *huh.Form
	dir     *string
	spinner spinner.Model

	report export.Report
	err    error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = accentStyle

	dir := "./exports"

	return ExportModel{
		svc:     svc,
		days:    NewPeriodPicker(svc.Location()),
		dir:     &dir,
		spinner: s,
	}
}

func (m ExportModel) Title() string { return "End-of-day Export" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case closeStateDays:
		return "1-7 / enter: choose days | esc: menu"
	case closeStatePreview:
		return "enter: write files | esc: other days"
	case closeStateDone:
		return "enter: export other days | esc: menu"
	}

	return ""
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.period = msg
		m.preview = nil
		m.err = nil
		m.form = m.folderForm()
		m.state = closeStatePreview

		return m, tea.Batch(m.form.Init(), m.previewCmd())

	case previewMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.preview = &msg.report
		}

		return m, nil

	case writtenMsg:
		m.state = closeStateDone
		m.report = msg.report
		m.err = msg.err

		return m, nil

	case spinner.TickMsg:
		if m.state != closeStateWriting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	switch m.state {
	case closeStateDays:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && !m.days.Entering() {
			return m, Back
		}

		var cmd tea.Cmd
		m.days, cmd = m.days.Update(msg)

		return m, cmd

	case closeStatePreview:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			m.state = closeStateDays
			m.days = NewPeriodPicker(m.svc.Location())

			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = closeStateWriting
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.writeCmd(*m.dir))

	case closeStateDone:
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.Type {
			case tea.KeyEsc:
				return m, Back
			case tea.KeyEnter:
				m.state = closeStateDays
				m.days = NewPeriodPicker(m.svc.Location())
				m.err = nil
			}
		}
	}

	return m, nil
}

func (m ExportModel) folderForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("dir").
				Title("Folder for the sales and lines files").
				Placeholder("./exports").
				Value(m.dir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("choose a folder")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) periodLabel() string {
	if !m.period.Bounded() {
		return m.period.Period.String()
	}

	label := FormatDate(m.period.Start)
	if end := FormatDate(m.period.End); end != label {
		label += " .. " + end
	}

	return fmt.Sprintf("%s (%s)", m.period.Period, label)
}

func (m ExportModel) View() string {
	var body string

	switch m.state {
	case closeStateDays:
		body = m.days.View()

	case closeStatePreview:
		takings := faintStyle.Render("Adding up sales...")
		if m.preview != nil {
			takings = fmt.Sprintf("%d sales\n\n%s", m.preview.Count, m.svc.GenerateSummary(*m.preview))
		}

		body = lipgloss.JoinVertical(lipgloss.Left,
			"Closing "+activeStyle(m.periodLabel()),
			"",
			panelStyle.Render(strings.TrimRight(takings, "\n")),
			"",
			m.form.View(),
		)

	case closeStateWriting:
		body = fmt.Sprintf("%s Writing files for %s...", m.spinner.View(), m.periodLabel())

	case closeStateDone:
		if m.err != nil {
			body = errorStyle.Render(fmt.Sprintf("Export failed: %v", m.err))
			break
		}

		files := make([]string, len(m.report.Files))
		for i, f := range m.report.Files {
			files[i] = "  " + f
		}

		body = lipgloss.JoinVertical(lipgloss.Left,
			okStyle.Bold(true).Render(fmt.Sprintf("Exported %d sales", m.report.Count)),
			"",
			faintStyle.Render(strings.Join(files, "\n")),
			"",
			strings.TrimRight(m.svc.GenerateSummary(m.report), "\n"),
		)
	}

	if m.err != nil && m.state == closeStatePreview {
		body += "\n\n" + errorStyle.Render(m.err.Error())
	}

	return lipgloss.NewStyle().Padding(1).Render(body + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

func (m ExportModel) filter() transaction.ListFilter {
	var f transaction.ListFilter

	if m.period.Bounded() {
		start, end := m.period.Start, m.period.End
		f.StartDate = &start
		f.EndDate = &end
	}

	return f
}

// Messages

type previewMsg struct {
	report export.Report
	err    error
}

func (m ExportModel) previewCmd() tea.Cmd {
	svc, filter := m.svc, m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		report, err := svc.Preview(ctx, filter)

		return previewMsg{report: report, err: err}
	}
}

type writtenMsg struct {
	report export.Report
	err    error
}

func (m ExportModel) writeCmd(dir string) tea.Cmd {
	svc, filter := m.svc, m.filter()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		report, err := svc.Export(ctx, filter, strings.TrimSpace(dir))

		return writtenMsg{report: report, err: err}
	}
}
