// Package render draws the registry for terminals.
package render

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsbot/opsbot/internal/systems"
)

// Status renders the shown systems followed by quick stats over all of reg.
func Status(title string, shown systems.Registry, sum systems.Summary) string {
	s := newStyles()
	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("systems: %d shown of %d", len(shown), sum.Total)),
	}

	if len(shown) == 0 {
		lines = append(lines, s.empty.Render("No systems match."))
	} else {
		lines = append(lines, s.section.Render(table(shown, s)))
	}
	lines = append(lines, s.section.Render(stats(sum, s)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func table(reg systems.Registry, s styles) string {
	nameW := len("name")
	for _, rec := range reg {
		nameW = max(nameW, lipgloss.Width(rec.Name))
	}
	col := func(text string, w int) string {
		return lipgloss.NewStyle().Width(w).Render(text)
	}

	rows := []string{s.header.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		col("name", nameW+2), col("status", 10), col("cpu", 8), col("memory", 8)))}
	for _, rec := range reg {
		status := s.stopped
		if rec.Running() {
			status = s.running
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			col(s.name.Render(rec.Name), nameW+2),
			col(status.Render(string(rec.Status)), 10),
			col(usage(rec.CPU, s), 8),
			col(usage(rec.Memory, s), 8),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func usage(v float64, s styles) string {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if v > systems.HighUsageThreshold {
		return s.hot.Render(text)
	}
	return s.value.Render(text)
}

func stats(sum systems.Summary, s styles) string {
	line := func(label string, value any) string {
		return s.label.Render(label+": ") + s.value.Render(fmt.Sprint(value))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		line("Running", sum.Running),
		line("Stopped", sum.Stopped),
		line("Avg CPU", sum.AvgCPURunning),
		line("Avg Memory", sum.AvgMemoryRunning),
	)
}
