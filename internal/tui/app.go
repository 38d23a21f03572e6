package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/prefs"
	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/weather"
)

const (
	fetchTimeout  = 15 * time.Second
	breakingShown = 4
)

type focusPane int

const (
	focusBreaking focusPane = iota
	focusStories
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeArticle
	modeHelp
)

// App is the dashboard model. All fields are owned by the Bubble Tea update
// loop; commands capture what they need before running.
type App struct {
	feed    *news.Feed
	weather weatherSource
	prefs   *prefs.Prefs
	search  *search.Controller
	open    func(string) error
	log     *slog.Logger
	now     func() time.Time

	mode   mode
	focus  focusPane
	cursor int

	width  int
	height int

	// Sub-components
	searchInput  textinput.Model
	spinner      spinner.Model
	categories   categoryBar
	searchCursor int
	ticking      bool

	greeting string
	city     string
	units    string

	weatherPane paneState
	// weatherUnits are the units current and days were fetched in.
	weatherUnits string
	current      weather.Current
	days         []weather.Day
	forecastErr  error

	breakingPane paneState
	breaking     []news.Article
	storiesPane  paneState
	stories      []news.Article
	storiesPage  int
	storiesEnd   bool

	modalArticle news.Article
	modalScroll  int

	err error
}

// weatherSource is the cached weather service.
type weatherSource interface {
	weather.Service
	Invalidate(city, units string)
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Feed     *news.Feed
	Weather  weatherSource
	Prefs    *prefs.Prefs
	Search   *search.Controller
	Open     func(string) error
	Log      *slog.Logger
	Now      func() time.Time
	Greeting string

	// DefaultCity and DefaultUnits apply when no preference is stored.
	DefaultCity  string
	DefaultUnits string
	// Refresh bypasses fresh cache entries on the first load.
	Refresh bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	a := &App{
		feed:         opts.Feed,
		weather:      opts.Weather,
		prefs:        opts.Prefs,
		search:       opts.Search,
		open:         opts.Open,
		log:          log,
		now:          now,
		searchInput:  ti,
		spinner:      sp,
		searchCursor: -1,
		greeting:     opts.Greeting,
		city:         opts.Prefs.Location(opts.DefaultCity),
		units:        opts.Prefs.Units(opts.DefaultUnits),
		categories:   newCategoryBar(opts.Prefs.News().DefaultCategory),
	}
	if opts.Refresh {
		a.invalidate()
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadWeather(), a.loadBreaking(), a.loadStories(), a.startSpinner())
}

func (a *App) invalidate() {
	a.weather.Invalidate(a.city, a.units)
	a.feed.Invalidate(a.categories.active)
}

func (a *App) busy() bool {
	return a.weatherPane.loading || a.breakingPane.loading || a.storiesPane.loading ||
		a.search.Surface.State() == search.Loading
}

func (a *App) startSpinner() tea.Cmd {
	if a.ticking {
		return nil
	}
	a.ticking = true
	return a.spinner.Tick
}

func (a *App) loadWeather() tea.Cmd {
	load := a.weatherPane.start()
	svc, city, units := a.weather, a.city, a.units
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		cur, err := svc.Current(ctx, city, units)
		if err != nil {
			return weatherLoadedMsg{load: load, units: units, err: err}
		}
		days, ferr := svc.Forecast(ctx, city, units)
		return weatherLoadedMsg{load: load, units: units, current: cur, days: days, forecastErr: ferr}
	}
}

func (a *App) loadBreaking() tea.Cmd {
	load := a.breakingPane.start()
	feed := a.feed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		articles, err := feed.Breaking(ctx)
		return breakingLoadedMsg{load: load, articles: articles, err: err}
	}
}

// loadStories captures the current category into the closure to avoid races.
func (a *App) loadStories() tea.Cmd {
	load := a.storiesPane.start()
	feed, category := a.feed, a.categories.active
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		articles, err := feed.TopStories(ctx, category)
		return storiesLoadedMsg{load: load, page: 1, category: category, articles: articles, err: err}
	}
}

// loadMoreStories fetches the page after the last one shown. Its load number
// is shared with loadStories, so a category change discards it.
func (a *App) loadMoreStories() tea.Cmd {
	load := a.storiesPane.start()
	feed, category, page := a.feed, a.categories.active, a.storiesPage+1
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		articles, err := feed.StoriesPage(ctx, category, page)
		return storiesLoadedMsg{load: load, page: page, category: category, articles: articles, err: err}
	}
}

func (a *App) debounce(gen uint64) tea.Cmd {
	return tea.Tick(a.search.Config().Delay, func(time.Time) tea.Msg {
		return searchTickMsg{gen: gen}
	})
}

func (a *App) runSearch(req search.Request) tea.Cmd {
	c := a.search
	return tea.Batch(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return searchDoneMsg{resp: c.Run(ctx, req)}
	}, a.startSpinner())
}

func (a *App) openURL(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return a, nil
		}
		return a.handleMouse(msg)

	case weatherLoadedMsg:
		if a.weatherPane.finish(msg.load, msg.err) && msg.err == nil {
			a.weatherUnits = msg.units
			a.current = msg.current
			a.days = msg.days
			a.forecastErr = msg.forecastErr
		}
		return a, nil

	case breakingLoadedMsg:
		if a.breakingPane.finish(msg.load, msg.err) && msg.err == nil {
			a.breaking = msg.articles
			a.clampCursor()
		}
		return a, nil

	case storiesLoadedMsg:
		if msg.page > 1 {
			a.moreStoriesLoaded(msg)
			return a, nil
		}
		if a.storiesPane.finish(msg.load, msg.err) && msg.err == nil {
			a.stories = msg.articles
			a.storiesPage = 1
			a.storiesEnd = false
			a.clampCursor()
		}
		return a, nil

	case searchTickMsg:
		if req, ok := a.search.Fire(msg.gen); ok {
			a.searchCursor = -1
			return a, a.runSearch(req)
		}
		return a, nil

	case searchDoneMsg:
		if a.search.Resolve(msg.resp) {
			a.searchCursor = -1
		}
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			a.ticking = false
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// moreStoriesLoaded appends a later page. A failure is reported in the status
// bar and leaves the stories already shown in place.
func (a *App) moreStoriesLoaded(msg storiesLoadedMsg) {
	if msg.load != a.storiesPane.load {
		return
	}
	a.storiesPane.loading = false
	switch {
	case msg.err != nil:
		a.err = errors.New(remote.UserMessage(msg.err, "more stories"))
	case len(msg.articles) == 0:
		a.storiesEnd = true
	default:
		a.stories = append(a.stories, msg.articles...)
		a.storiesPage = msg.page
	}
}

func (a *App) visibleList() []news.Article {
	if a.focus == focusBreaking {
		return a.breaking[:min(len(a.breaking), breakingShown)]
	}
	return a.stories
}

func (a *App) clampCursor() {
	n := len(a.visibleList())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) selected() (news.Article, bool) {
	list := a.visibleList()
	if a.cursor < 0 || a.cursor >= len(list) {
		return news.Article{}, false
	}
	return list[a.cursor], true
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeArticle:
		return a.handleArticleKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.visibleList())-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "tab":
		if a.focus == focusBreaking {
			a.focus = focusStories
		} else {
			a.focus = focusBreaking
		}
		a.cursor = 0
		return a, nil
	case "enter":
		if art, ok := a.selected(); ok {
			a.modalArticle = art
			a.modalScroll = 0
			a.mode = modeArticle
		}
		return a, nil
	case "o":
		if art, ok := a.selected(); ok {
			return a, a.openURL(art.URL)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "c":
		cat := a.categories.next()
		if err := a.prefs.SetCategory(cat); err != nil {
			a.err = err
		}
		if a.focus == focusStories {
			a.cursor = 0
		}
		return a, tea.Batch(a.loadStories(), a.startSpinner())
	case "m":
		if a.storiesEnd || a.storiesPane.loading || a.storiesPage == 0 {
			return a, nil
		}
		return a, tea.Batch(a.loadMoreStories(), a.startSpinner())
	case "u":
		a.units = weather.NextUnits(a.units)
		if err := a.prefs.SetUnits(a.units); err != nil {
			a.err = err
		}
		return a, tea.Batch(a.loadWeather(), a.startSpinner())
	case "r":
		a.invalidate()
		return a, tea.Batch(a.loadWeather(), a.loadBreaking(), a.loadStories(), a.startSpinner())
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

func (a *App) leaveSearch() {
	a.search.Escape()
	a.searchInput.SetValue("")
	a.searchInput.Blur()
	a.searchCursor = -1
	a.mode = modeNormal
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.leaveSearch()
		return a, nil
	case "enter":
		if it, ok := a.search.Surface.Item(a.searchCursor); ok {
			return a, a.openURL(it.URL)
		}
		req, ok := a.search.Submit(a.searchInput.Value())
		if !ok {
			return a, nil
		}
		a.searchCursor = -1
		return a, a.runSearch(req)
	case "down", "ctrl+n":
		if a.searchCursor < a.search.Surface.Len()-1 {
			a.searchCursor++
		}
		return a, nil
	case "up", "ctrl+p":
		if a.searchCursor >= 0 {
			a.searchCursor--
		}
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only re-query on actual value changes, not cursor moves etc.
	if a.searchInput.Value() == before {
		return a, cmd
	}
	a.searchCursor = -1
	gen, ok := a.search.Input(a.searchInput.Value())
	if !ok {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.debounce(gen))
}

func (a *App) handleArticleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		a.mode = modeNormal
	case "o":
		return a, a.openURL(a.modalArticle.URL)
	case "j", "down":
		a.modalScroll++
	case "k", "up":
		if a.modalScroll > 0 {
			a.modalScroll--
		}
	}
	return a, nil
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.mode == modeArticle || a.mode == modeHelp {
		return a, nil
	}
	inInput := msg.Y == searchRow
	inSurface, index := a.dropdownHit(msg.X, msg.Y)

	if a.search.Pointer(inSurface, inInput) {
		a.searchCursor = -1
		return a, nil
	}
	if inInput && a.mode == modeNormal {
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	}
	if inSurface && index >= 0 && msg.Button == tea.MouseButtonLeft {
		a.searchCursor = index
		if it, ok := a.search.Surface.Item(index); ok {
			return a, a.openURL(it.URL)
		}
	}
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  newsdesk")
	}

	switch a.mode {
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	case modeArticle:
		return a.renderArticleModal()
	}

	// Header
	headerLeft := headerStyle.Render("newsdesk")
	if a.greeting != "" {
		headerLeft += "  " + greetingStyle.Render(a.greeting)
	}
	headerRight := headerDateStyle.Render(a.now().Format("Monday, January 2, 2006") + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// Search line and its dropdown
	searchLine := helpDimStyle.Render("  / search news...")
	if a.mode == modeSearch {
		searchLine = a.searchInput.View()
	}
	rows := []string{header, searchLine}
	dropdown := a.dropdownView()
	if dropdown != "" {
		rows = append(rows, dropdown)
	}

	// Layout calculations
	used := len(rows) + 2 // category bar + status
	if dropdown != "" {
		used += lipgloss.Height(dropdown) - 1
	}
	bodyHeight := a.height - used
	if bodyHeight < 8 {
		bodyHeight = 8
	}
	weatherWidth := int(float64(a.width) * 0.38)
	newsWidth := a.width - weatherWidth

	weatherPane := a.renderWeatherPane(weatherWidth, bodyHeight-2)

	breakingHeight := min(breakingShown*3, (bodyHeight-4)/2)
	storiesHeight := bodyHeight - 4 - breakingHeight
	if storiesHeight < 3 {
		storiesHeight = 3
	}
	breakingCursor, storiesCursor := -1, -1
	if a.focus == focusBreaking {
		breakingCursor = a.cursor
	} else {
		storiesCursor = a.cursor
	}
	breakingPane := a.renderListPane("Breaking News", &a.breakingPane, a.breaking[:min(len(a.breaking), breakingShown)],
		breakingCursor, a.focus == focusBreaking, newsWidth, breakingHeight, "breaking news")
	storiesPane := a.renderListPane("Top Stories · "+titleCase(a.categories.active), &a.storiesPane, a.stories,
		storiesCursor, a.focus == focusStories, newsWidth, storiesHeight, "top stories")

	content := lipgloss.JoinHorizontal(lipgloss.Top, weatherPane,
		lipgloss.JoinVertical(lipgloss.Left, breakingPane, storiesPane))

	status := renderStatusBar(a.categories.active, a.city, a.units, a.width, a.mode == modeSearch, a.busy())
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	rows = append(rows, content, a.categories.render(a.width), status)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderListPane(title string, st *paneState, articles []news.Article, cursor int, active bool, width, height int, what string) string {
	inner := width - 4
	head := paneTitleStyle.Render(title)
	if st.loading {
		head += " " + a.spinner.View()
	}

	var body string
	switch {
	case st.err != nil:
		body = renderError(st.err, what, inner)
	case st.loading && !st.loaded:
		body = helpDimStyle.Render("Loading " + what + "...")
	default:
		body = renderList(articles, cursor, height-1, inner, a.now())
	}

	style := paneStyle
	if active {
		style = paneActiveStyle
	}
	return style.Width(width - 2).Height(height).Render(head + "\n" + body)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("newsdesk")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through the focused list\n" +
		"  tab           Switch between breaking news and top stories\n\n" +
		dim.Render("Actions") + "\n" +
		"  enter         Read article\n" +
		"  o             Open article in browser\n" +
		"  c             Next top stories category\n" +
		"  m             Load more top stories\n" +
		"  u             Cycle units (metric, imperial, standard)\n" +
		"  r             Refresh everything\n\n" +
		dim.Render("Search") + "\n" +
		"  /             Search news as you type\n" +
		"  ↑/↓           Select a result\n" +
		"  enter         Search now, or open the selected result\n" +
		"  esc, click    Close results\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
