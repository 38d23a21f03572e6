package tui

import (
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/weather"
)

type weatherLoadedMsg struct {
	load        int
	units       string
	current     weather.Current
	err         error
	days        []weather.Day
	forecastErr error
}

type breakingLoadedMsg struct {
	load     int
	articles []news.Article
	err      error
}

type storiesLoadedMsg struct {
	load     int
	page     int
	category string
	articles []news.Article
	err      error
}

// searchTickMsg fires when a debounce timer armed for gen elapses.
type searchTickMsg struct {
	gen uint64
}

type searchDoneMsg struct {
	resp search.Response
}

type openErrMsg struct {
	err error
}
