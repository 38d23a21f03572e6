// Package search implements the debounced, as-you-type article search: a
// Dispatcher that decides when a query goes out and which response may land,
// and a Surface that owns the results dropdown and its dismissal.
//
// Neither type starts goroutines or timers. The caller's event loop schedules
// Dispatcher.Fire after Config.Delay and feeds responses back through
// Controller.Resolve, so all state changes happen on one goroutine.
package search

import (
	"strings"
	"time"
)

type Config struct {
	Delay          time.Duration
	MinLength      int
	MaxResults     int
	MaxDescription int
}

func DefaultConfig() Config {
	return Config{
		Delay:          500 * time.Millisecond,
		MinLength:      3,
		MaxResults:     6,
		MaxDescription: 100,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Delay <= 0 {
		c.Delay = d.Delay
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxDescription <= 0 {
		c.MaxDescription = d.MaxDescription
	}
	return c
}

// Item is one search hit.
type Item struct {
	Title       string
	Source      string
	Published   time.Time
	URL         string
	Description string
}

// Eligible reports whether q is long enough to search for.
func (c Config) Eligible(q string) bool {
	return len([]rune(strings.TrimSpace(q))) >= c.MinLength
}

// clip cuts s to n runes, trims the cut, and appends "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
