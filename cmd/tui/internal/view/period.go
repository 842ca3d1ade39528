package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Period is a span of business days at the terminal.
type Period int

const (
	PeriodToday Period = iota
	PeriodYesterday
	PeriodThisWeek
	PeriodThisMonth
	PeriodLastMonth
	PeriodAll
	PeriodCustom
)

var periodLabels = [...]string{
	PeriodToday:     "Today",
	PeriodYesterday: "Yesterday",
	PeriodThisWeek:  "This week",
	PeriodThisMonth: "This month",
	PeriodLastMonth: "Last month",
	PeriodAll:       "Everything",
	PeriodCustom:    "Custom days",
}

func (p Period) String() string {
	if p < 0 || int(p) >= len(periodLabels) {
		return "Unknown"
	}

	return periodLabels[p]
}

// Range returns the first and last instant of p as seen from now in loc.
// Weeks start on Monday. ok is false
// for PeriodAll and PeriodCustom, which have no fixed bounds.
func (p Period) Range(now time.Time, loc *time.Location) (start, end time.Time, ok bool) {
	if loc == nil {
		loc = time.Local
	}

	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch p {
	case PeriodToday:
		start, end = today, today
	case PeriodYesterday:
		start = today.AddDate(0, 0, -1)
		end = start
	case PeriodThisWeek:
		back := (int(today.Weekday()) + 6) % 7
		start, end = today.AddDate(0, 0, -back), today
	case PeriodThisMonth:
		start, end = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc), today
	case PeriodLastMonth:
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, -1)
	default:
		return time.Time{}, time.Time{}, false
	}

	first, last := wholeDays(start, end)

	return first, last, true
}

// wholeDays stretches start and end to cover their full calendar days.
func wholeDays(start, end time.Time) (time.Time, time.Time) {
	loc := start.Location()
	end = end.In(loc)

	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

var errCustomRange = errors.New("enter a day (2026-10-01) or a span (2026-10-01..2026-10-17)")

// parseDays reads "YYYY-MM-DD" or "YYYY-MM-DD..YYYY-MM-DD" in loc.
func parseDays(s string, loc *time.Location) (time.Time, time.Time, error) {
	from, to, span := strings.Cut(strings.TrimSpace(s), "..")
	if !span {
		to = from
	}

	start, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(from), loc)
	if err != nil {
		return time.Time{}, time.Time{}, errCustomRange
	}

	end, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(to), loc)
	if err != nil {
		return time.Time{}, time.Time{}, errCustomRange
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%s is before %s", to, from)
	}

	first, last := wholeDays(start, end)

	return first, last, nil
}

// PeriodSelectedMsg carries the chosen span. Start and End are zero for PeriodAll.
type PeriodSelectedMsg struct {
	Period Period
	Start  time.Time
	End    time.Time
}

// Bounded reports whether the selection limits the dates at all.
func (m PeriodSelectedMsg) Bounded() bool {
	return m.Period != PeriodAll
}

// PeriodPicker lists the periods with their dates; digits jump straight to one.
type PeriodPicker struct {
	loc    *time.Location
	now    func() time.Time
	cursor Period
	custom bool
	input  textinput.Model
	err    error
}

func NewPeriodPicker(loc *time.Location) PeriodPicker {
	in := textinput.New()
	in.Placeholder = "2026-10-01..2026-10-17"
	in.CharLimit = 22
	in.Width = 24
	in.Prompt = "Days: "

	if loc == nil {
		loc = time.Local
	}

	return PeriodPicker{loc: loc, now: time.Now, input: in}
}

// Entering reports whether the custom day input has focus.
func (m PeriodPicker) Entering() bool {
	return m.custom
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.custom {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)

			return m, cmd
		}

		return m, nil
	}

	if m.custom {
		switch key.Type {
		case tea.KeyEsc:
			m.custom = false
			m.err = nil
			m.input.Blur()

			return m, nil
		case tea.KeyEnter:
			start, end, err := parseDays(m.input.Value(), m.loc)
			if err != nil {
				m.err = err
				return m, nil
			}

			m.err = nil

			return m, selectPeriod(PeriodCustom, start, end)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch s := key.String(); s {
	case "up", "k":
		if m.cursor > PeriodToday {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < PeriodCustom {
			m.cursor++
		}
	case "1", "2", "3", "4", "5", "6", "7":
		m.cursor = Period(s[0] - '1')
		return m.choose()
	case "enter":
		return m.choose()
	}

	return m, nil
}

func (m PeriodPicker) choose() (PeriodPicker, tea.Cmd) {
	switch m.cursor {
	case PeriodCustom:
		m.custom = true
		m.input.SetValue("")

		return m, m.input.Focus()
	case PeriodAll:
		return m, selectPeriod(PeriodAll, time.Time{}, time.Time{})
	}

	start, end, _ := m.cursor.Range(m.now(), m.loc)

	return m, selectPeriod(m.cursor, start, end)
}

func selectPeriod(p Period, start, end time.Time) tea.Cmd {
	return func() tea.Msg {
		return PeriodSelectedMsg{Period: p, Start: start, End: end}
	}
}

func (m PeriodPicker) View() string {
	var sb strings.Builder

	sb.WriteString(accentStyle.Bold(true).Render("Which days?") + "\n\n")

	now := m.now()

	for p := PeriodToday; p <= PeriodCustom; p++ {
		label := fmt.Sprintf("%d  %-12s", int(p)+1, p.String())

		dates := ""
		if start, end, ok := p.Range(now, m.loc); ok {
			dates = FormatDate(start)
			if FormatDate(end) != dates {
				dates += " .. " + FormatDate(end)
			}
		}

		row := label + faintStyle.Render(dates)
		if p == m.cursor {
			row = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render("> ") + row
		} else {
			row = "  " + row
		}

		sb.WriteString(row + "\n")
	}

	if m.custom {
		sb.WriteString("\n" + m.input.View() + "\n")
	}

	if m.err != nil {
		sb.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	return sb.String()
}
