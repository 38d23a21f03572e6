package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/newsdesk/newsdesk/internal/news"
)

// renderArticle lays out the article modal body, clipped to height lines
// starting at scroll.
func renderArticle(a news.Article, width, height, scroll int) string {
	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := articleTitleStyle.Width(contentWidth).Render(a.Title)

	byline := a.SourceName()
	if a.Author != "" {
		byline += " · " + a.Author
	}
	if !a.PublishedAt.IsZero() {
		byline += " · " + a.PublishedAt.Format("Jan 2, 2006, 03:04 PM")
	}
	source := articleSourceStyle.Render(byline)

	var body []string
	if a.Description != "" && a.Description != a.Body() {
		body = append(body, articleBodyStyle.Width(contentWidth).Italic(true).Render(wrapText(a.Description, contentWidth)), "")
	}
	body = append(body, articleBodyStyle.Width(contentWidth).Render(wrapText(a.Body(), contentWidth)))
	link := articleLinkStyle.Width(contentWidth).Render("Read more: " + a.URL)

	parts := append([]string{title, source}, body...)
	parts = append(parts, link)
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderArticleModal() string {
	w := min(a.width-4, 100)
	h := a.height - 6
	if h < 5 {
		h = 5
	}
	body := renderArticle(a.modalArticle, w-6, h, a.modalScroll)
	hint := helpDimStyle.Render("o open in browser  j/k scroll  esc close")
	card := modalStyle.Width(w - 2).Render(body + "\n" + hint)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
