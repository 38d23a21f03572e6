package search

import (
	"context"
	"errors"
	"log/slog"

	"github.com/newsdesk/newsdesk/internal/remote"
)

// Fetcher runs one search against the remote source.
type Fetcher func(ctx context.Context, query string) ([]Item, error)

// Response is the outcome of a Request.
type Response struct {
	Seq   uint64
	Query string
	Items []Item
	Err   error
}

// Controller ties a Dispatcher to a Surface.
type Controller struct {
	*Dispatcher
	Surface *Surface

	fetch Fetcher
	log   *slog.Logger
}

func NewController(d *Dispatcher, fetch Fetcher, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		Dispatcher: d,
		Surface:    NewSurface(d.Config()),
		fetch:      fetch,
		log:        log,
	}
}

// Input handles an edit of the search box. A short query hides the surface.
func (c *Controller) Input(q string) (gen uint64, schedule bool) {
	gen, schedule = c.Dispatcher.Input(q)
	if !schedule {
		c.Surface.Dismiss()
	}
	return gen, schedule
}

// Fire releases the debounced query if gen is still current.
func (c *Controller) Fire(gen uint64) (Request, bool) {
	req, ok := c.Dispatcher.Fire(gen)
	if ok {
		c.Surface.Begin(req.Query)
	}
	return req, ok
}

// Submit searches for q right away.
func (c *Controller) Submit(q string) (Request, bool) {
	req, ok := c.Dispatcher.Submit(q)
	if ok {
		c.Surface.Begin(req.Query)
	} else {
		c.Surface.Dismiss()
	}
	return req, ok
}

// Run performs req. It touches no controller state and is safe to call from
// any goroutine.
func (c *Controller) Run(ctx context.Context, req Request) Response {
	items, err := c.fetch(ctx, req.Query)
	return Response{Seq: req.Seq, Query: req.Query, Items: items, Err: err}
}

// Resolve applies resp if it is the awaited one. A malformed payload shows as
// no results; any other failure shows the generic failure line.
func (c *Controller) Resolve(resp Response) bool {
	if !c.Accept(resp.Seq) {
		c.log.Debug("search: discarding stale response", "seq", resp.Seq, "query", resp.Query)
		return false
	}
	switch {
	case resp.Err == nil:
		return c.Surface.Show(resp.Query, resp.Items)
	case errors.Is(resp.Err, remote.ErrMalformed):
		c.log.Warn("search: malformed response", "query", resp.Query, "err", resp.Err)
		return c.Surface.Show(resp.Query, nil)
	default:
		c.log.Warn("search: request failed", "query", resp.Query, "err", resp.Err)
		return c.Surface.Fail(failedMessage)
	}
}

// Escape dismisses the surface and forgets any pending or in-flight query.
func (c *Controller) Escape() {
	c.Cancel()
	c.Surface.Dismiss()
}

// Pointer handles a mouse press; see Surface.Pointer.
func (c *Controller) Pointer(inSurface, inInput bool) bool {
	if c.Surface.Pointer(inSurface, inInput) {
		c.Cancel()
		return true
	}
	return false
}
