package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/reminderd/internal/history"
	"github.com/notexe/reminderd/internal/reminder"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dim gray

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true)
)

// Formatter renders reminder output for the CLI.
type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.colored {
		return text
	}
	return s.Render(text)
}

// FormatReminders renders the reminder list as an aligned table.
func (f *Formatter) FormatReminders(reminders []reminder.Reminder, now time.Time) string {
	if len(reminders) == 0 {
		return f.style(DimStyle, "No reminders scheduled.")
	}

	rows := make([][]string, 0, len(reminders)+1)
	rows = append(rows, []string{"ID", "DUE", "TITLE", "MESSAGE"})
	for _, r := range reminders {
		rows = append(rows, []string{r.ID, formatDue(r.DueAt, now), r.Title, truncate(r.Message, 48)})
	}

	var b strings.Builder
	widths := columnWidths(rows)
	for i, row := range rows {
		line := padRow(row, widths)
		switch {
		case i == 0:
			line = f.style(HeaderStyle, line)
		case reminders[i-1].Due(now):
			line = f.style(OverdueStyle, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHistory renders archived deliveries, newest first.
func (f *Formatter) FormatHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return f.style(DimStyle, "No history yet.")
	}

	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, []string{"RECORDED", "STATE", "TITLE", "MESSAGE"})
	for _, e := range entries {
		rows = append(rows, []string{
			e.RecordedAt.Local().Format("2006-01-02 15:04"),
			e.FinalState,
			e.Title,
			truncate(e.Message, 48),
		})
	}

	var b strings.Builder
	widths := columnWidths(rows)
	for i, row := range rows {
		line := padRow(row, widths)
		if i == 0 {
			line = f.style(HeaderStyle, line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAdded confirms a newly scheduled reminder.
func (f *Formatter) FormatAdded(r reminder.Reminder) string {
	return fmt.Sprintf("%s %s %s",
		f.style(SuccessStyle, "Scheduled"),
		r.ID,
		f.style(DimStyle, "due "+r.DueAt.Local().Format("2006-01-02 15:04:05")))
}

func (f *Formatter) FormatError(err error) string {
	return f.style(ErrorStyle, "Error: ") + err.Error()
}

func formatDue(due, now time.Time) string {
	d := due.Sub(now).Round(time.Second)
	if d < 0 {
		return fmt.Sprintf("overdue %s", (-d).String())
	}
	if d < 48*time.Hour {
		return fmt.Sprintf("in %s", d.String())
	}
	return due.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func columnWidths(rows [][]string) []int {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func padRow(row []string, widths []int) string {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
