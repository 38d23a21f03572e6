package news

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/remote"
)

const removedTitle = "[Removed]"

// newsAPIResponse is the upstream contract. Every field is optional; the
// boundary code decides what a usable article is.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source *struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt *string `json:"publishedAt"`
	Content     *string `json:"content"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// normalize converts an upstream article, reporting false for entries that
// have been removed or lack a title or link.
func (a newsAPIArticle) normalize() (Article, bool) {
	title := deref(a.Title)
	link := deref(a.URL)
	if title == "" || title == removedTitle || link == "" {
		return Article{}, false
	}
	out := Article{
		Title:       title,
		Author:      deref(a.Author),
		Description: deref(a.Description),
		URL:         link,
		ImageURL:    deref(a.URLToImage),
		Content:     deref(a.Content),
	}
	if a.Source != nil {
		out.Source = deref(a.Source.Name)
	}
	if ts := deref(a.PublishedAt); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			out.PublishedAt = t
		}
	}
	return out, true
}

// NewsAPI talks to newsapi.org (or anything with the same contract).
type NewsAPI struct {
	client  *remote.Client
	baseURL string
	apiKey  string
	country string
}

func NewNewsAPI(client *remote.Client, baseURL, apiKey, country string) *NewsAPI {
	if country == "" {
		country = "us"
	}
	return &NewsAPI{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		country: country,
	}
}

func (n *NewsAPI) Headlines(ctx context.Context, q HeadlinesQuery) ([]Article, error) {
	params := url.Values{}
	params.Set("country", n.country)
	if q.Category != "" && q.Category != "all" {
		params.Set("category", q.Category)
	}
	setPaging(params, q.Page, q.PageSize)
	return n.get(ctx, "news headlines", "/v2/top-headlines", params)
}

func (n *NewsAPI) Search(ctx context.Context, q SearchQuery) ([]Article, error) {
	params := url.Values{}
	params.Set("q", q.Query)
	if validSort(q.SortBy) {
		params.Set("sortBy", q.SortBy)
	}
	setPaging(params, q.Page, q.PageSize)
	return n.get(ctx, "news search", "/v2/everything", params)
}

func setPaging(params url.Values, page, size int) {
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		params.Set("pageSize", strconv.Itoa(size))
	}
}

func (n *NewsAPI) get(ctx context.Context, op, path string, params url.Values) ([]Article, error) {
	params.Set("apiKey", n.apiKey)
	endpoint := n.baseURL + path + "?" + params.Encode()

	var resp, errResp newsAPIResponse
	if err := n.client.GetJSON(ctx, op, endpoint, &resp, &errResp); err != nil {
		var re *remote.Error
		if errors.As(err, &re) && errResp.Message != "" {
			re.Message = errResp.Message
		}
		return nil, err
	}
	if resp.Status != "ok" {
		msg := resp.Message
		if msg == "" {
			msg = "status " + strconv.Quote(resp.Status)
		}
		return nil, remote.APIError(op, msg)
	}
	if resp.Articles == nil {
		return nil, remote.Malformed(op, "missing articles")
	}

	articles := make([]Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if art, ok := a.normalize(); ok {
			articles = append(articles, art)
		}
	}
	return articles, nil
}
