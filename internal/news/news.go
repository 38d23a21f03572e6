package news

import (
	"context"
	"strconv"
	"time"
)

// Article is the normalized form every provider returns.
type Article struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Content     string    `json:"content,omitempty"`
}

// SourceName returns the source or a placeholder.
func (a Article) SourceName() string {
	if a.Source == "" {
		return "Unknown source"
	}
	return a.Source
}

// Body returns the longest text available for a detail view.
func (a Article) Body() string {
	switch {
	case a.Content != "":
		return a.Content
	case a.Description != "":
		return a.Description
	default:
		return "Content not available."
	}
}

type HeadlinesQuery struct {
	Category string
	Page     int
	PageSize int
}

type SearchQuery struct {
	Query    string
	SortBy   string
	Page     int
	PageSize int
}

// Provider is a source of headlines and article search.
type Provider interface {
	Headlines(ctx context.Context, q HeadlinesQuery) ([]Article, error)
	Search(ctx context.Context, q SearchQuery) ([]Article, error)
}

const DefaultCategory = "general"

// Categories lists the headline categories in display order.
var Categories = []string{"general", "business", "entertainment", "health", "science", "sports", "technology"}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// NextCategory cycles through Categories.
func NextCategory(c string) string {
	for i, k := range Categories {
		if k == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return DefaultCategory
}

// SortOrders are the orderings accepted by Search.
var SortOrders = []string{"publishedAt", "relevancy", "popularity"}

func validSort(s string) bool {
	for _, k := range SortOrders {
		if k == s {
			return true
		}
	}
	return false
}

// RelativeTime renders t the way the article lists do: "Just now",
// "5 minutes ago", "3 hours ago", "2 days ago", then a date.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "Unknown date"
	}
	d := now.Sub(t)
	plural := func(n int, unit string) string {
		s := strconv.Itoa(n) + " " + unit
		if n != 1 {
			s += "s"
		}
		return s + " ago"
	}
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return t.Format("Jan 2, 2006, 03:04 PM")
	}
}

// Truncate shortens s to n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
