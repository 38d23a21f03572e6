package tui

import (
	"strings"

	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/search"
)

const (
	headerRow        = 0
	searchRow        = 1
	dropdownTop      = 2
	dropdownRowLines = 3
)

func (a *App) dropdownWidth() int {
	return min(a.width, 80)
}

// dropdownView renders the search surface, or "" while it is hidden.
func (a *App) dropdownView() string {
	s := a.search.Surface
	if !s.Visible() {
		return ""
	}
	width := a.dropdownWidth()
	inner := width - 4

	var lines []string
	switch s.State() {
	case search.Loading:
		lines = append(lines, a.spinner.View()+" Searching for \""+truncateStr(s.Query(), inner-20)+"\"...")
	case search.Shown:
		now := a.now()
		rows := s.Rows(func(it search.Item) string { return news.RelativeTime(it.Published, now) })
		for i, r := range rows {
			if r.Placeholder {
				lines = append(lines, itemDescStyle.Render(truncateStr(r.Title, inner)))
				continue
			}
			title := "  " + truncateStr(r.Title, inner-2)
			style := itemTitleStyle
			if i == a.searchCursor {
				title = "> " + truncateStr(r.Title, inner-2)
				style = itemSelectedStyle
			}
			lines = append(lines,
				style.Render(title),
				"  "+itemSourceStyle.Render(truncateStr(r.Source, inner/2))+itemTimeStyle.Render(" • "+r.Published),
				"  "+itemDescStyle.Render(truncateStr(r.Description, inner-2)),
			)
		}
	}
	return dropdownStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// dropdownHit reports whether the cell (x, y) falls on the visible surface
// and, if it falls on a result row, that row's index (else -1).
func (a *App) dropdownHit(x, y int) (inSurface bool, index int) {
	view := a.dropdownView()
	if view == "" {
		return false, -1
	}
	height := strings.Count(view, "\n") + 1
	if y < dropdownTop || y >= dropdownTop+height || x >= a.dropdownWidth() {
		return false, -1
	}
	rel := y - dropdownTop - 1 // top border
	if rel < 0 || a.search.Surface.Len() == 0 {
		return true, -1
	}
	i := rel / dropdownRowLines
	if i >= a.search.Surface.Len() {
		return true, -1
	}
	return true, i
}
