package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(category, location, units string, width int, searching, refreshing bool) string {
	accent := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %s · %s · %s", accent.Render(titleCase(category)), location, units)
	if refreshing {
		left += " (refreshing...)"
	}

	right := " / search  tab switch  c category  m more  u units  r refresh  ? help  q quit "
	if searching {
		right = " ↑/↓ select  enter search/open  esc close "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right
	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "
	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
