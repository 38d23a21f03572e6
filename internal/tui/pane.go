package tui

import (
	"github.com/newsdesk/newsdesk/internal/remote"
)

// paneState tracks one asynchronously loaded pane. Each load gets a number;
// results from an older load are ignored.
type paneState struct {
	load    int
	loading bool
	loaded  bool
	err     error
}

func (p *paneState) start() int {
	p.load++
	p.loading = true
	return p.load
}

// finish records the outcome of load and reports whether it was current.
func (p *paneState) finish(load int, err error) bool {
	if load != p.load {
		return false
	}
	p.loading = false
	p.err = err
	if err == nil {
		p.loaded = true
	}
	return true
}

func renderError(err error, what string, width int) string {
	msg := remote.UserMessage(err, what)
	return errorStyle.Width(width).Render(msg) + "\n" + helpDimStyle.Render("press r to retry")
}
