package news

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/newsdesk/newsdesk/internal/classify"
	"github.com/newsdesk/newsdesk/internal/config"
)

const maxRSSDescription = 300

// RSS serves headlines from configured feeds and answers searches by matching
// titles and descriptions locally. Feeds carry no categories, so articles are
// classified by keyword; general gets the whole merged feed.
type RSS struct {
	parser  *gofeed.Parser
	sources []config.Source
	log     *slog.Logger
	now     func() time.Time
}

func NewRSS(sources []config.Source, log *slog.Logger) *RSS {
	return &RSS{parser: gofeed.NewParser(), sources: sources, log: log, now: time.Now}
}

func (r *RSS) fetchSource(ctx context.Context, source config.Source) ([]Article, error) {
	feed, err := r.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	now := r.now()
	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		pub := now
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		a := Article{
			Title:       stripHTML(item.Title),
			Source:      source.Name,
			Description: Truncate(stripHTML(desc), maxRSSDescription),
			URL:         item.Link,
			PublishedAt: pub,
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		if item.Image != nil {
			a.ImageURL = item.Image.URL
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// fetchAll pulls every source concurrently. It fails only when no source
// produced anything.
func (r *RSS) fetchAll(ctx context.Context) ([]Article, error) {
	var (
		mu   sync.Mutex
		all  []Article
		errs []error
		wg   sync.WaitGroup
	)

	for _, src := range r.sources {
		wg.Add(1)
		go func(s config.Source) {
			defer wg.Done()
			articles, err := r.fetchSource(ctx, s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			all = append(all, articles...)
		}(src)
	}
	wg.Wait()

	for _, err := range errs {
		r.log.Warn("rss: source failed", "err", err)
	}
	if len(all) == 0 && len(errs) > 0 {
		return nil, errs[0]
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].PublishedAt.After(all[j].PublishedAt) })
	return all, nil
}

func (r *RSS) Headlines(ctx context.Context, q HeadlinesQuery) ([]Article, error) {
	all, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return page(inCategory(all, q.Category), q.Page, q.PageSize), nil
}

func inCategory(articles []Article, category string) []Article {
	if category == "" || category == "all" || category == string(classify.General) {
		return articles
	}
	var out []Article
	for _, a := range articles {
		if string(classify.Classify(a.Title, a.Description)) == category {
			out = append(out, a)
		}
	}
	return out
}

func (r *RSS) Search(ctx context.Context, q SearchQuery) ([]Article, error) {
	all, err := r.fetchAll(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(q.Query))
	var matched []Article
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Title), term) || strings.Contains(strings.ToLower(a.Description), term) {
			matched = append(matched, a)
		}
	}
	return page(matched, q.Page, q.PageSize), nil
}

func page(articles []Article, p, size int) []Article {
	if size <= 0 {
		return articles
	}
	if p <= 0 {
		p = 1
	}
	start := (p - 1) * size
	if start >= len(articles) {
		return []Article{}
	}
	end := start + size
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
