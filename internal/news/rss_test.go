package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/logging"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Sample</title>
<item><title>Older story</title><link>https://example.com/old</link>
<description>&lt;p&gt;Old &lt;b&gt;news&lt;/b&gt;&lt;/p&gt;</description>
<pubDate>Mon, 09 Jun 2025 08:00:00 GMT</pubDate></item>
<item><title>Climate summit opens</title><link>https://example.com/climate</link>
<description>Leaders gather</description>
<pubDate>Tue, 10 Jun 2025 08:00:00 GMT</pubDate></item>
<item><title></title><link>https://example.com/untitled</link></item>
</channel></rss>`

func rssServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestRSSHeadlines(t *testing.T) {
	base := rssServer(t)
	r := NewRSS([]config.Source{
		{Name: "Sample", Type: "rss", URL: base + "/feed", Enabled: true},
		{Name: "Broken", Type: "rss", URL: base + "/broken", Enabled: true},
	}, logging.Discard())

	got, err := r.Headlines(context.Background(), HeadlinesQuery{PageSize: 10})
	if err != nil {
		t.Fatalf("one failing source should not fail the batch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "Climate summit opens" {
		t.Errorf("expected newest first, got %q", got[0].Title)
	}
	if got[1].Description != "Old news" {
		t.Errorf("expected HTML stripped, got %q", got[1].Description)
	}
	if got[0].Source != "Sample" {
		t.Errorf("source = %q", got[0].Source)
	}
}

func TestRSSHeadlinesByCategory(t *testing.T) {
	base := rssServer(t)
	r := NewRSS([]config.Source{{Name: "Sample", URL: base + "/feed", Enabled: true}}, logging.Discard())
	ctx := context.Background()

	tests := []struct {
		category string
		want     []string
	}{
		{"science", []string{"Climate summit opens"}},
		{"general", []string{"Climate summit opens", "Older story"}},
		{"", []string{"Climate summit opens", "Older story"}},
		{"sports", nil},
	}
	for _, tt := range tests {
		got, err := r.Headlines(ctx, HeadlinesQuery{Category: tt.category, PageSize: 10})
		if err != nil {
			t.Fatalf("%s: %v", tt.category, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %d articles, want %d", tt.category, len(got), len(tt.want))
			continue
		}
		for i, title := range tt.want {
			if got[i].Title != title {
				t.Errorf("%q[%d] = %q, want %q", tt.category, i, got[i].Title, title)
			}
		}
	}
}

func TestRSSAllSourcesFail(t *testing.T) {
	base := rssServer(t)
	r := NewRSS([]config.Source{{Name: "Broken", URL: base + "/broken", Enabled: true}}, logging.Discard())
	if _, err := r.Headlines(context.Background(), HeadlinesQuery{}); err == nil {
		t.Fatal("expected error when every source fails")
	}
}

func TestRSSSearch(t *testing.T) {
	base := rssServer(t)
	r := NewRSS([]config.Source{{Name: "Sample", URL: base + "/feed", Enabled: true}}, logging.Discard())

	got, err := r.Search(context.Background(), SearchQuery{Query: "CLIMATE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "https://example.com/climate" {
		t.Errorf("unexpected matches %+v", got)
	}
}

func TestPage(t *testing.T) {
	in := make([]Article, 5)
	if got := page(in, 1, 2); len(got) != 2 {
		t.Errorf("page 1 size 2 = %d", len(got))
	}
	if got := page(in, 3, 2); len(got) != 1 {
		t.Errorf("last page = %d", len(got))
	}
	if got := page(in, 4, 2); len(got) != 0 {
		t.Errorf("past the end = %d", len(got))
	}
	if got := page(in, 0, 0); len(got) != 5 {
		t.Errorf("no paging = %d", len(got))
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := stripHTML(tt.input); got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
