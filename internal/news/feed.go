package news

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/fetchcache"
)

const (
	KeyBreaking         = "breaking-news"
	KeyTopStoriesPrefix = "top-stories:"
)

// TopStoriesKey is the cache key for a category's top stories.
func TopStoriesKey(category string) string {
	return KeyTopStoriesPrefix + category
}

// Feed serves the dashboard's article lists through the fetch cache.
type Feed struct {
	provider     Provider
	cache        *fetchcache.Cache
	policy       fetchcache.Policy
	breakingSize int
	storiesSize  int
}

func NewFeed(p Provider, c *fetchcache.Cache, freshness time.Duration, breakingSize, storiesSize int) *Feed {
	return &Feed{
		provider:     p,
		cache:        c,
		policy:       fetchcache.Policy{MaxAge: freshness},
		breakingSize: breakingSize,
		storiesSize:  storiesSize,
	}
}

// Breaking returns the latest headlines across all categories.
func (f *Feed) Breaking(ctx context.Context) ([]Article, error) {
	v, _, err := fetchcache.Load(ctx, f.cache, KeyBreaking, f.policy, func(ctx context.Context) ([]Article, error) {
		return f.provider.Headlines(ctx, HeadlinesQuery{PageSize: f.breakingSize})
	})
	return v, err
}

// TopStories returns headlines for category.
func (f *Feed) TopStories(ctx context.Context, category string) ([]Article, error) {
	if !ValidCategory(category) {
		category = DefaultCategory
	}
	v, _, err := fetchcache.Load(ctx, f.cache, TopStoriesKey(category), f.policy, func(ctx context.Context) ([]Article, error) {
		return f.provider.Headlines(ctx, HeadlinesQuery{Category: category, PageSize: f.storiesSize})
	})
	return v, err
}

// StoriesPage returns page n (from 1) of category's top stories. Page 1 is
// TopStories; later pages are fetched on demand and not cached.
func (f *Feed) StoriesPage(ctx context.Context, category string, n int) ([]Article, error) {
	if n <= 1 {
		return f.TopStories(ctx, category)
	}
	if !ValidCategory(category) {
		category = DefaultCategory
	}
	return f.provider.Headlines(ctx, HeadlinesQuery{Category: category, Page: n, PageSize: f.storiesSize})
}

// Search is never cached: results are rebuilt per query.
func (f *Feed) Search(ctx context.Context, query, sortBy string, size int) ([]Article, error) {
	return f.SearchPage(ctx, query, sortBy, 1, size)
}

// SearchPage returns page n (from 1) of the results for query.
func (f *Feed) SearchPage(ctx context.Context, query, sortBy string, n, size int) ([]Article, error) {
	if n < 1 {
		n = 1
	}
	return f.provider.Search(ctx, SearchQuery{Query: query, SortBy: sortBy, Page: n, PageSize: size})
}

// Invalidate forces the next Breaking and TopStories(category) to fetch.
func (f *Feed) Invalidate(category string) {
	f.cache.Invalidate(KeyBreaking)
	f.cache.Invalidate(TopStoriesKey(category))
}
