package weather

import (
	"context"
	"time"

	"github.com/newsdesk/newsdesk/internal/fetchcache"
)

// Cache key prefixes; the city and units follow.
const (
	KeyCurrentPrefix  = "current-weather:"
	KeyForecastPrefix = "forecast:"
)

func CurrentKey(city, units string) string  { return KeyCurrentPrefix + city + ":" + units }
func ForecastKey(city, units string) string { return KeyForecastPrefix + city + ":" + units }

// Cached puts the fetch cache in front of a Service.
type Cached struct {
	svc    Service
	cache  *fetchcache.Cache
	policy fetchcache.Policy
}

func NewCached(svc Service, c *fetchcache.Cache, freshness time.Duration) *Cached {
	return &Cached{svc: svc, cache: c, policy: fetchcache.Policy{MaxAge: freshness}}
}

func (c *Cached) Current(ctx context.Context, city, units string) (Current, error) {
	v, _, err := fetchcache.Load(ctx, c.cache, CurrentKey(city, units), c.policy, func(ctx context.Context) (Current, error) {
		return c.svc.Current(ctx, city, units)
	})
	return v, err
}

func (c *Cached) Forecast(ctx context.Context, city, units string) ([]Day, error) {
	v, _, err := fetchcache.Load(ctx, c.cache, ForecastKey(city, units), c.policy, func(ctx context.Context) ([]Day, error) {
		return c.svc.Forecast(ctx, city, units)
	})
	return v, err
}

func (c *Cached) Invalidate(city, units string) {
	c.cache.Invalidate(CurrentKey(city, units))
	c.cache.Invalidate(ForecastKey(city, units))
}
