// Package prefs reads and writes the user's persisted settings.
package prefs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/store"
	"github.com/newsdesk/newsdesk/internal/weather"
)

const (
	KeyLocation      = "weather-location"
	KeyUnits         = "weather-units"
	KeySavedLocation = "saved-locations"
	KeyNews          = "news-preferences"
	KeyNewsletter    = "newsletter-preferences"
	KeySubscriptions = "newsletter-subscriptions"
	KeyLastVisit     = "last-visit"
)

const DefaultLocation = "Caracas"

var (
	ErrDuplicateLocation = errors.New("location already saved")
	ErrUnknownLocation   = errors.New("location not saved")
	ErrEmptyLocation     = errors.New("location name is empty")
	ErrNotPersisted      = errors.New("preference could not be saved")
)

// Prefs is a typed view over the store.
type Prefs struct {
	store *store.Store
	now   func() time.Time
}

func New(s *store.Store) *Prefs {
	return &Prefs{store: s, now: s.Now}
}

func (p *Prefs) set(key string, v any) error {
	if !p.store.Set(key, v) {
		return fmt.Errorf("%s: %w", key, ErrNotPersisted)
	}
	return nil
}

// Location returns the weather city, or defaultCity when none is stored.
func (p *Prefs) Location(defaultCity string) string {
	if defaultCity == "" {
		defaultCity = DefaultLocation
	}
	return p.store.GetString(KeyLocation, defaultCity)
}

func (p *Prefs) SetLocation(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyLocation
	}
	return p.set(KeyLocation, city)
}

// Units returns the stored unit system; unknown values fall back to def.
func (p *Prefs) Units(def string) string {
	u := p.store.GetString(KeyUnits, def)
	if !weather.ValidUnits(u) {
		return weather.Metric
	}
	return u
}

func (p *Prefs) SetUnits(u string) error {
	if !weather.ValidUnits(u) {
		return fmt.Errorf("unknown units %q (want one of %s)", u, strings.Join(weather.Units, ", "))
	}
	return p.set(KeyUnits, u)
}

// Location is a city the user pinned.
type Location struct {
	Name    string    `json:"name"`
	Label   string    `json:"label,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

func (p *Prefs) SavedLocations() []Location {
	var locs []Location
	p.store.Get(KeySavedLocation, &locs)
	return locs
}

func (p *Prefs) AddLocation(name, label string) (Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Location{}, ErrEmptyLocation
	}
	locs := p.SavedLocations()
	for _, l := range locs {
		if l.Name == name {
			return Location{}, fmt.Errorf("%s: %w", name, ErrDuplicateLocation)
		}
	}
	loc := Location{Name: name, Label: strings.TrimSpace(label), AddedAt: p.now().UTC()}
	if err := p.set(KeySavedLocation, append(locs, loc)); err != nil {
		return Location{}, err
	}
	return loc, nil
}

func (p *Prefs) RemoveLocation(name string) error {
	locs := p.SavedLocations()
	kept := locs[:0]
	for _, l := range locs {
		if l.Name != name {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(locs) {
		return fmt.Errorf("%s: %w", name, ErrUnknownLocation)
	}
	return p.set(KeySavedLocation, kept)
}

// News holds article list preferences.
type News struct {
	DefaultCategory string `json:"default_category"`
	SortBy          string `json:"sort_by,omitempty"`
}

func (p *Prefs) News() News {
	n := News{DefaultCategory: news.DefaultCategory, SortBy: "publishedAt"}
	var stored News
	if p.store.Get(KeyNews, &stored) {
		if news.ValidCategory(stored.DefaultCategory) {
			n.DefaultCategory = stored.DefaultCategory
		}
		if stored.SortBy != "" {
			n.SortBy = stored.SortBy
		}
	}
	return n
}

func (p *Prefs) SetCategory(c string) error {
	if !news.ValidCategory(c) {
		return fmt.Errorf("unknown category %q (want one of %s)", c, strings.Join(news.Categories, ", "))
	}
	n := p.News()
	n.DefaultCategory = c
	return p.set(KeyNews, n)
}

func (p *Prefs) SetSortBy(s string) error {
	if !slices.Contains(news.SortOrders, s) {
		return fmt.Errorf("unknown sort order %q (want one of %s)", s, strings.Join(news.SortOrders, ", "))
	}
	n := p.News()
	n.SortBy = s
	return p.set(KeyNews, n)
}

// Visit records the current visit and returns the greeting for it, based on
// whole days since the previous one. The greeting is valid even when the
// visit could not be recorded; err reports that.
func (p *Prefs) Visit() (greeting string, err error) {
	now := p.now()
	last, ok := p.store.GetInt64(KeyLastVisit)
	err = p.set(KeyLastVisit, now.UnixMilli())
	if !ok {
		return VisitMessage(0, false), err
	}
	days := int(now.Sub(time.UnixMilli(last)) / (24 * time.Hour))
	return VisitMessage(days, true), err
}

func VisitMessage(days int, returning bool) string {
	switch {
	case !returning:
		return "Welcome! Let us know if you have any questions."
	case days <= 0:
		return "Back so soon! Awesome!"
	case days == 1:
		return "You last visited 1 day ago."
	default:
		return fmt.Sprintf("You last visited %d days ago.", days)
	}
}
