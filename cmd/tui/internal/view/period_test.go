package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_Range(t *testing.T) {
	dubai := time.FixedZone("GST", 4*60*60)
	// 22:30 UTC on Monday 30 March is already Tuesday 31 March in Dubai.
	now := time.Date(2026, 3, 30, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{PeriodToday, "2026-03-31", "2026-03-31", true},
		{PeriodYesterday, "2026-03-30", "2026-03-30", true},
		{PeriodThisWeek, "2026-03-30", "2026-03-31", true},
		{PeriodThisMonth, "2026-03-01", "2026-03-31", true},
		{PeriodLastMonth, "2026-02-01", "2026-02-28", true},
		{PeriodAll, "", "", false},
		{PeriodCustom, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			start, end, ok := tt.period.Range(now, dubai)
			require.Equal(t, tt.wantOK, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.wantStart, FormatDate(start))
			assert.Equal(t, tt.wantEnd, FormatDate(end))
			assert.Equal(t, dubai, start.Location())
			assert.Equal(t, 0, start.Hour())
			assert.Equal(t, 23, end.Hour())
			assert.Equal(t, 59, end.Second())
		})
	}
}

func TestPeriod_RangeLastMonthInJanuary(t *testing.T) {
	start, end, ok := PeriodLastMonth.Range(time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), time.UTC)
	require.True(t, ok)

	assert.Equal(t, "2025-12-01", FormatDate(start))
	assert.Equal(t, "2025-12-31", FormatDate(end))
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{name: "single day", in: "2026-10-01", wantStart: "2026-10-01", wantEnd: "2026-10-01"},
		{name: "span", in: "2026-10-01..2026-10-17", wantStart: "2026-10-01", wantEnd: "2026-10-17"},
		{name: "spaces", in: " 2026-10-01 .. 2026-10-02 ", wantStart: "2026-10-01", wantEnd: "2026-10-02"},
		{name: "reversed", in: "2026-10-17..2026-10-01", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseDays(tt.in, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, FormatDate(start))
			assert.Equal(t, tt.wantEnd, FormatDate(end))
			assert.Equal(t, 24*time.Hour-time.Nanosecond, end.Sub(start)%(24*time.Hour))
		})
	}
}

func TestPeriodPicker_DigitShortcut(t *testing.T) {
	p := NewPeriodPicker(time.UTC)
	p.now = func() time.Time { return time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC) }

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	require.NotNil(t, cmd)

	msg, ok := cmd().(PeriodSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, PeriodYesterday, msg.Period)
	assert.Equal(t, "2026-03-30", FormatDate(msg.Start))
	assert.True(t, msg.Bounded())

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}})
	assert.True(t, p.Entering())

	p.input.SetValue("2026-03-01..2026-03-05")
	_, cmd = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok = cmd().(PeriodSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, PeriodCustom, msg.Period)
	assert.Equal(t, "2026-03-05", FormatDate(msg.End))
}
