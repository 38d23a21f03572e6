package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/newsdesk/newsdesk/internal/news"
)

// categoryBar renders the top-stories category tabs.
type categoryBar struct {
	categories []string
	active     string
}

func newCategoryBar(active string) categoryBar {
	if !news.ValidCategory(active) {
		active = news.DefaultCategory
	}
	return categoryBar{categories: news.Categories, active: active}
}

func (c *categoryBar) next() string {
	c.active = news.NextCategory(c.active)
	return c.active
}

func (c *categoryBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string
	for _, cat := range c.categories {
		style := tabInactiveStyle
		if cat == c.active {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(titleCase(cat)))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
