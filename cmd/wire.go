package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/fetchcache"
	"github.com/newsdesk/newsdesk/internal/logging"
	"github.com/newsdesk/newsdesk/internal/metrics"
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/prefs"
	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/store"
	"github.com/newsdesk/newsdesk/internal/weather"
)

const (
	httpTimeout   = 10 * time.Second
	envRedisPass  = "NEWSDESK_REDIS_PASSWORD"
	commandBudget = 30 * time.Second
)

// env is everything a command needs, built from config and flags.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	store   *store.Store
	cache   *fetchcache.Cache
	feed    *news.Feed
	weather *weather.Cached
	prefs   *prefs.Prefs

	stop    context.CancelFunc
	closers []io.Closer
}

func setup() (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log, logFile, err := logging.Setup(config.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, closers: []io.Closer{logFile}}

	m := metrics.New()
	e.metrics = m
	ctx, stop := context.WithCancel(context.Background())
	e.stop = stop
	addr := flagMetricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		go func() {
			if err := m.Serve(ctx, addr); err != nil {
				log.Error("metrics server stopped", "addr", addr, "err", err)
			}
		}()
	}

	backend, err := openBackend(cfg, flagEphemeral, log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.store = store.New(backend, store.WithLogger(log), store.WithMetrics(m))
	e.closers = append(e.closers, e.store)

	e.cache = fetchcache.New(e.store, fetchcache.WithLogger(log), fetchcache.WithMetrics(m))
	client := remote.NewClient(httpTimeout)

	var provider news.Provider
	if cfg.UseRSS() {
		log.Info("using rss feeds for news", "sources", len(cfg.EnabledSources()))
		provider = news.NewRSS(cfg.EnabledSources(), log)
	} else {
		provider = news.NewNewsAPI(client, cfg.News.BaseURL, cfg.NewsKey(), cfg.News.Country)
	}
	e.feed = news.NewFeed(provider, e.cache, cfg.NewsFreshness(), cfg.News.BreakingSize, cfg.News.StoriesSize)

	owm := weather.NewOpenWeatherMap(client, cfg.Weather.BaseURL, cfg.WeatherKey())
	e.weather = weather.NewCached(owm, e.cache, cfg.WeatherFreshness())
	e.prefs = prefs.New(e.store)
	return e, nil
}

// openBackend picks the storage engine. A store that cannot be opened falls
// back to memory so the portal still runs, just without persistence.
func openBackend(cfg *config.Config, ephemeral bool, log *slog.Logger) (store.Backend, error) {
	if ephemeral {
		return store.NewMemory(), nil
	}
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		r, err := store.OpenRedis(store.RedisOptions{
			Addr:     cfg.Store.RedisAddr,
			DB:       cfg.Store.RedisDB,
			Prefix:   cfg.Store.RedisPrefix,
			Password: os.Getenv(envRedisPass),
		})
		if err != nil {
			log.Warn("redis unavailable, using memory store", "err", err)
			return store.NewMemory(), nil
		}
		return r, nil
	case "sqlite", "":
		db, err := store.OpenSQLite(cfg.StorePath())
		if err != nil {
			log.Warn("sqlite unavailable, using memory store", "path", cfg.StorePath(), "err", err)
			return store.NewMemory(), nil
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// searchController builds the search-as-you-type controller over the feed,
// honoring the stored sort order.
// searchController fetches results page by page; page 1 is the first.
func (e *env) searchController(page int) *search.Controller {
	cfg := search.Config{
		Delay:          e.cfg.SearchDebounce(),
		MinLength:      e.cfg.Search.MinLength,
		MaxResults:     e.cfg.Search.MaxResults,
		MaxDescription: e.cfg.Search.MaxDescription,
	}
	d := search.NewDispatcher(cfg, e.metrics)
	return search.NewController(d, searchFetcher(e.feed, e.prefs, d.Config().MaxResults, page), e.log)
}

func searchFetcher(feed *news.Feed, p *prefs.Prefs, size, page int) search.Fetcher {
	return func(ctx context.Context, q string) ([]search.Item, error) {
		articles, err := feed.SearchPage(ctx, q, p.News().SortBy, page, size)
		if err != nil {
			return nil, err
		}
		items := make([]search.Item, len(articles))
		for i, a := range articles {
			items[i] = search.Item{
				Title:       a.Title,
				Source:      a.Source,
				Published:   a.PublishedAt,
				URL:         a.URL,
				Description: a.Description,
			}
		}
		return items, nil
	}
}

// refresh drops the cached entries the command is about to read.
func (e *env) refresh(city, units, category string) {
	if !flagRefresh {
		return
	}
	e.weather.Invalidate(city, units)
	e.feed.Invalidate(category)
}

func (e *env) Close() error {
	if e.stop != nil {
		e.stop()
	}
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withEnv runs fn against a freshly built env and tears it down afterwards.
func withEnv(fn func(ctx context.Context, e *env) error) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandBudget)
	defer cancel()
	return fn(ctx, e)
}
