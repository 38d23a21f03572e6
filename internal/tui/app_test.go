package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/newsdesk/newsdesk/internal/fetchcache"
	"github.com/newsdesk/newsdesk/internal/logging"
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/prefs"
	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/store"
	"github.com/newsdesk/newsdesk/internal/weather"
)

type stubNews struct{}

// Headlines serves two pages per category.
func (stubNews) Headlines(_ context.Context, q news.HeadlinesQuery) ([]news.Article, error) {
	if q.Page > 2 {
		return []news.Article{}, nil
	}
	return []news.Article{{Title: fmt.Sprintf("Headline %s %d", q.Category, max(q.Page, 1)), URL: "https://example.com/h"}}, nil
}

func (stubNews) Search(_ context.Context, q news.SearchQuery) ([]news.Article, error) {
	return []news.Article{{Title: "Result for " + q.Query, URL: "https://example.com/r"}}, nil
}

type stubWeather struct{ invalidated int }

func (s *stubWeather) Current(_ context.Context, city, units string) (weather.Current, error) {
	return weather.Current{City: city, Country: "VE", Temp: 28}, nil
}

func (s *stubWeather) Forecast(context.Context, string, string) ([]weather.Day, error) {
	return nil, nil
}

func (s *stubWeather) Invalidate(string, string) { s.invalidated++ }

type testEnv struct {
	app    *App
	prefs  *prefs.Prefs
	wx     *stubWeather
	opened []string
}

func newTestApp(t *testing.T) *testEnv {
	t.Helper()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := store.New(store.NewMemory(), store.WithClock(clock), store.WithLogger(logging.Discard()))
	p := prefs.New(s)
	feed := news.NewFeed(stubNews{}, fetchcache.New(s, fetchcache.WithLogger(logging.Discard())), 5*time.Minute, 8, 12)

	fetch := func(ctx context.Context, q string) ([]search.Item, error) {
		arts, err := feed.Search(ctx, q, "", 6)
		items := make([]search.Item, len(arts))
		for i, a := range arts {
			items[i] = search.Item{Title: a.Title, URL: a.URL}
		}
		return items, err
	}
	ctrl := search.NewController(search.NewDispatcher(search.DefaultConfig(), nil), fetch, logging.Discard())

	env := &testEnv{prefs: p, wx: &stubWeather{}}
	env.app = NewApp(RunOpts{
		Feed:         feed,
		Weather:      env.wx,
		Prefs:        p,
		Search:       ctrl,
		Open:         func(u string) error { env.opened = append(env.opened, u); return nil },
		Log:          logging.Discard(),
		Now:          clock,
		Greeting:     "Back so soon! Awesome!",
		DefaultCity:  "Caracas",
		DefaultUnits: "metric",
	})
	env.app.Init()
	env.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return env
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and any batched commands, returning their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func storiesMsg(t *testing.T, msgs []tea.Msg) storiesLoadedMsg {
	t.Helper()
	for _, m := range msgs {
		if sm, ok := m.(storiesLoadedMsg); ok {
			return sm
		}
	}
	t.Fatalf("no stories message in %v", msgs)
	return storiesLoadedMsg{}
}

func (e *testEnv) typeKeys(keys ...string) {
	for _, k := range keys {
		e.app.Update(key(k))
	}
}

func TestSearchFlow(t *testing.T) {
	e := newTestApp(t)
	a := e.app

	e.typeKeys("/", "c", "a", "t")
	if a.mode != modeSearch || a.searchInput.Value() != "cat" {
		t.Fatalf("mode=%v value=%q", a.mode, a.searchInput.Value())
	}
	if a.search.Surface.Visible() {
		t.Fatal("surface should stay hidden until the debounce fires")
	}

	// "c" and "ca" armed no timers; "cat" armed generation 3
	a.Update(searchTickMsg{gen: 2})
	if a.search.Surface.Visible() {
		t.Fatal("stale timer must not dispatch")
	}
	a.Update(searchTickMsg{gen: 3})
	if a.search.Surface.State() != search.Loading {
		t.Fatalf("state = %v, want loading", a.search.Surface.State())
	}
	if !strings.Contains(a.View(), "Searching for") {
		t.Error("loading surface should show a spinner line")
	}

	resp := a.search.Run(context.Background(), search.Request{Seq: 1, Query: "cat"})
	a.Update(searchDoneMsg{resp: resp})
	if a.search.Surface.State() != search.Shown {
		t.Fatalf("state = %v, want shown", a.search.Surface.State())
	}
	if !strings.Contains(a.View(), "Result for cat") {
		t.Error("results should be rendered")
	}

	e.typeKeys("down")
	_, cmd := a.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected an open command")
	}
	cmd()
	if len(e.opened) != 1 || e.opened[0] != "https://example.com/r" {
		t.Errorf("enter on a selected result should open it, opened %v", e.opened)
	}
}

func TestSearchEnterSubmitsImmediately(t *testing.T) {
	e := newTestApp(t)
	e.typeKeys("/", "n", "e", "w", "s", "enter")
	if e.app.search.Surface.State() != search.Loading {
		t.Errorf("enter should dispatch immediately, state = %v", e.app.search.Surface.State())
	}
	// the pending debounce timer is superseded
	e.app.Update(searchTickMsg{gen: 4})
	if !e.app.search.InFlight() {
		t.Error("submitted request should still be awaited")
	}
}

func TestMousePressOutsideDismisses(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	e.typeKeys("/")
	req, _ := a.search.Submit("weather")
	a.Update(searchDoneMsg{resp: a.search.Run(context.Background(), req)})
	if !a.search.Surface.Visible() {
		t.Fatal("expected visible surface")
	}

	// inside the dropdown: stays open
	a.Update(tea.MouseMsg{X: 5, Y: dropdownTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !a.search.Surface.Visible() {
		t.Fatal("press inside the dropdown must not dismiss")
	}
	// on the input: stays open
	a.Update(tea.MouseMsg{X: 5, Y: searchRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !a.search.Surface.Visible() {
		t.Fatal("press on the input must not dismiss")
	}
	// elsewhere: dismissed
	a.Update(tea.MouseMsg{X: 110, Y: 35, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if a.search.Surface.Visible() {
		t.Fatal("press outside must dismiss")
	}
}

func TestMouseClickOnResultOpensIt(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	e.typeKeys("/")
	req, _ := a.search.Submit("markets")
	a.Update(searchDoneMsg{resp: a.search.Run(context.Background(), req)})

	_, cmd := a.Update(tea.MouseMsg{X: 4, Y: dropdownTop + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("expected an open command")
	}
	cmd()
	if len(e.opened) != 1 || e.opened[0] != "https://example.com/r" {
		t.Errorf("opened %v", e.opened)
	}
}

func TestEscapeLeavesSearch(t *testing.T) {
	e := newTestApp(t)
	e.typeKeys("/", "a", "b", "c", "enter", "esc")
	a := e.app
	if a.mode != modeNormal || a.search.Surface.Visible() || a.searchInput.Value() != "" {
		t.Errorf("escape should close search: mode=%v visible=%v", a.mode, a.search.Surface.Visible())
	}
	resp := a.search.Run(context.Background(), search.Request{Seq: 1, Query: "abc"})
	a.Update(searchDoneMsg{resp: resp})
	if a.search.Surface.Visible() {
		t.Error("a response after escape must stay hidden")
	}
}

func TestPaneErrorsOfferRetry(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(weatherLoadedMsg{load: 1, err: &remote.Error{Kind: remote.KindStatus, Op: "current weather", Status: 404}})
	a.Update(breakingLoadedMsg{load: 1, err: errors.New("boom")})
	a.Update(storiesLoadedMsg{load: 1, articles: []news.Article{{Title: "Story one", URL: "https://x"}}})

	view := a.View()
	if strings.Count(view, "press r to retry") != 2 {
		t.Errorf("expected two retry hints, got view:\n%s", view)
	}
	if a.weatherPane.err == nil || a.breakingPane.err == nil {
		t.Error("pane errors should be kept until the next load")
	}
	if !strings.Contains(view, "Story one") {
		t.Error("healthy pane should still render")
	}

	e.typeKeys("r")
	if e.wx.invalidated != 1 {
		t.Errorf("refresh should invalidate the weather cache, got %d", e.wx.invalidated)
	}
	if !a.weatherPane.loading || !a.breakingPane.loading || !a.storiesPane.loading {
		t.Error("refresh should reload every pane")
	}
}

func TestStaleLoadIgnored(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	e.typeKeys("c") // stories load 2 for "business"
	a.Update(storiesLoadedMsg{load: 1, category: "general", articles: []news.Article{{Title: "old"}}})
	if len(a.stories) != 0 {
		t.Error("a superseded load must not replace the list")
	}
	a.Update(storiesLoadedMsg{load: 2, category: "business", articles: []news.Article{{Title: "new"}}})
	if len(a.stories) != 1 || a.stories[0].Title != "new" {
		t.Errorf("stories = %+v", a.stories)
	}
}

func TestCategoryAndUnitsPersist(t *testing.T) {
	e := newTestApp(t)
	e.typeKeys("c", "c", "u")
	if got := e.prefs.News().DefaultCategory; got != "entertainment" {
		t.Errorf("category = %q", got)
	}
	if got := e.prefs.Units("metric"); got != "imperial" {
		t.Errorf("units = %q", got)
	}
}

func TestArticleModal(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(breakingLoadedMsg{load: 1, articles: []news.Article{
		{Title: "First", URL: "https://example.com/1", Content: "Body text"},
		{Title: "Second", URL: "https://example.com/2"},
	}})

	e.typeKeys("j", "enter")
	if a.mode != modeArticle || a.modalArticle.Title != "Second" {
		t.Fatalf("mode=%v article=%q", a.mode, a.modalArticle.Title)
	}
	if !strings.Contains(a.View(), "Content not available.") {
		t.Error("modal should fall back when there is no body")
	}
	_, cmd := a.Update(key("o"))
	cmd()
	if len(e.opened) != 1 || e.opened[0] != "https://example.com/2" {
		t.Errorf("opened %v", e.opened)
	}
	e.typeKeys("esc")
	if a.mode != modeNormal {
		t.Error("esc should close the modal")
	}
}

func TestLoadMoreStories(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(storiesLoadedMsg{load: 1, page: 1, category: "general", articles: []news.Article{{Title: "Headline general 1"}}})

	_, cmd := a.Update(key("m"))
	more := storiesMsg(t, run(cmd))
	if more.page != 2 {
		t.Fatalf("expected page 2, got %d", more.page)
	}
	a.Update(more)
	if len(a.stories) != 2 || a.stories[1].Title != "Headline general 2" {
		t.Fatalf("page 2 should be appended, got %+v", a.stories)
	}

	_, cmd = a.Update(key("m"))
	a.Update(storiesMsg(t, run(cmd)))
	if !a.storiesEnd || len(a.stories) != 2 {
		t.Errorf("an empty page should end paging, end=%v stories=%d", a.storiesEnd, len(a.stories))
	}
	if _, cmd := a.Update(key("m")); cmd != nil {
		t.Error("no further loads once every page is shown")
	}

	// a category change starts over at page 1
	_, cmd = a.Update(key("c"))
	a.Update(storiesMsg(t, run(cmd)))
	if a.storiesEnd || a.storiesPage != 1 || len(a.stories) != 1 || a.stories[0].Title != "Headline business 1" {
		t.Errorf("category change should reset paging: page=%d stories=%+v", a.storiesPage, a.stories)
	}
}

func TestLoadMoreDiscardedAfterCategoryChange(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(storiesLoadedMsg{load: 1, page: 1, category: "general", articles: []news.Article{{Title: "first"}}})

	_, cmd := a.Update(key("m"))
	late := storiesMsg(t, run(cmd))
	e.typeKeys("c")
	a.Update(late)
	if len(a.stories) != 1 || a.stories[0].Title != "first" {
		t.Errorf("a page for the old category must not be appended, got %+v", a.stories)
	}
}

func TestLoadMoreFailureKeepsStories(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(storiesLoadedMsg{load: 1, page: 1, category: "general", articles: []news.Article{{Title: "first"}}})
	a.Update(key("m"))

	a.Update(storiesLoadedMsg{load: 2, page: 2, category: "general", err: errors.New("boom")})
	if len(a.stories) != 1 || a.storiesPane.err != nil || a.storiesPane.loading {
		t.Errorf("failed page should leave the pane as it was: %+v", a.storiesPane)
	}
	if a.err == nil || !strings.Contains(a.err.Error(), "more stories") {
		t.Errorf("expected a status error, got %v", a.err)
	}
}

func TestWeatherDrawnInLoadedUnits(t *testing.T) {
	e := newTestApp(t)
	a := e.app
	a.Update(weatherLoadedMsg{load: 1, units: "metric", current: weather.Current{City: "Caracas", Temp: 28}})
	if !strings.Contains(a.View(), "28°C") {
		t.Fatal("expected metric reading")
	}

	e.typeKeys("u")
	view := a.View()
	if !strings.Contains(view, "28°C") || strings.Contains(view, "28°F") {
		t.Error("old reading must keep its units until the reload lands")
	}

	a.Update(weatherLoadedMsg{load: 2, units: "imperial", current: weather.Current{City: "Caracas", Temp: 82}})
	if !strings.Contains(a.View(), "82°F") {
		t.Error("expected the imperial reading after reload")
	}
}
