package prefs

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/newsdesk/newsdesk/internal/logging"
	"github.com/newsdesk/newsdesk/internal/store"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func testPrefs(t *testing.T) (*Prefs, *store.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)}
	s := store.New(store.NewMemory(), store.WithClock(c.now), store.WithLogger(logging.Discard()))
	return New(s), s, c
}

func TestLocationDefaults(t *testing.T) {
	p, _, _ := testPrefs(t)
	if got := p.Location(""); got != "Caracas" {
		t.Errorf("default location = %q", got)
	}
	if got := p.Location("Lima"); got != "Lima" {
		t.Errorf("configured default = %q", got)
	}
	if err := p.SetLocation("  Tokyo "); err != nil {
		t.Fatal(err)
	}
	if got := p.Location("Lima"); got != "Tokyo" {
		t.Errorf("stored location = %q", got)
	}
	if err := p.SetLocation(" "); !errors.Is(err, ErrEmptyLocation) {
		t.Errorf("expected ErrEmptyLocation, got %v", err)
	}
}

func TestUnits(t *testing.T) {
	p, s, _ := testPrefs(t)
	if got := p.Units("metric"); got != "metric" {
		t.Errorf("default units = %q", got)
	}
	if err := p.SetUnits("imperial"); err != nil {
		t.Fatal(err)
	}
	if got := p.Units("metric"); got != "imperial" {
		t.Errorf("units = %q", got)
	}
	if err := p.SetUnits("kelvin"); err == nil {
		t.Error("expected error for unknown units")
	}
	s.Set(KeyUnits, "furlongs")
	if got := p.Units("metric"); got != "metric" {
		t.Errorf("corrupt units should fall back, got %q", got)
	}
}

func TestSavedLocations(t *testing.T) {
	p, _, _ := testPrefs(t)

	if len(p.SavedLocations()) != 0 {
		t.Fatal("expected no saved locations")
	}
	if _, err := p.AddLocation("London", "work"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddLocation("Paris", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := p.AddLocation("London", "again"); !errors.Is(err, ErrDuplicateLocation) {
		t.Errorf("expected duplicate error, got %v", err)
	}

	locs := p.SavedLocations()
	if len(locs) != 2 || locs[0].Name != "London" || locs[0].Label != "work" || locs[1].Name != "Paris" {
		t.Fatalf("unexpected locations %+v", locs)
	}
	if locs[0].AddedAt.IsZero() {
		t.Error("AddedAt should be set")
	}

	if err := p.RemoveLocation("London"); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveLocation("London"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected unknown location error, got %v", err)
	}
	if locs := p.SavedLocations(); len(locs) != 1 || locs[0].Name != "Paris" {
		t.Errorf("after remove: %+v", locs)
	}
}

func TestCorruptListsReadEmpty(t *testing.T) {
	p, s, _ := testPrefs(t)
	s.Set(KeySavedLocation, []any{map[string]any{"name": "Paris"}, map[string]any{"name": 5}})
	s.Set(KeySubscriptions, []any{map[string]any{"email": "a@b.co"}, map[string]any{"email": true}})

	if locs := p.SavedLocations(); len(locs) != 0 {
		t.Errorf("corrupt saved locations should read as empty, got %+v", locs)
	}
	if subs := p.Subscriptions(); len(subs) != 0 {
		t.Errorf("corrupt subscriptions should read as empty, got %+v", subs)
	}

	if _, err := p.AddLocation("Tokyo", ""); err != nil {
		t.Fatal(err)
	}
	locs := p.SavedLocations()
	if len(locs) != 1 || locs[0].Name != "Tokyo" {
		t.Errorf("no half-decoded entries may be written back, got %+v", locs)
	}
}

func TestNewsPreferences(t *testing.T) {
	p, _, _ := testPrefs(t)
	if got := p.News(); got.DefaultCategory != "general" || got.SortBy != "publishedAt" {
		t.Errorf("defaults = %+v", got)
	}
	if err := p.SetCategory("sports"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetSortBy("popularity"); err != nil {
		t.Fatal(err)
	}
	if got := p.News(); got.DefaultCategory != "sports" || got.SortBy != "popularity" {
		t.Errorf("stored = %+v", got)
	}
	if err := p.SetCategory("gossip"); err == nil {
		t.Error("expected error for unknown category")
	}
	if err := p.SetSortBy("random"); err == nil {
		t.Error("expected error for unknown sort")
	}
}

func TestVisit(t *testing.T) {
	p, _, c := testPrefs(t)

	steps := []struct {
		advance time.Duration
		want    string
	}{
		{0, "Welcome! Let us know if you have any questions."},
		{3 * time.Hour, "Back so soon! Awesome!"},
		{25 * time.Hour, "You last visited 1 day ago."},
		{24*4*time.Hour + time.Minute, "You last visited 4 days ago."},
		{47 * time.Hour, "You last visited 1 day ago."},
	}
	for i, st := range steps {
		c.t = c.t.Add(st.advance)
		got, err := p.Visit()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != st.want {
			t.Errorf("step %d: Visit() = %q, want %q", i, got, st.want)
		}
	}
}

type readOnly struct{ *store.Memory }

func (readOnly) Put(string, []byte, time.Time) error { return errors.New("read-only file system") }

func TestVisitNotRecorded(t *testing.T) {
	s := store.New(readOnly{store.NewMemory()}, store.WithLogger(logging.Discard()))
	p := New(s)

	for i := 0; i < 2; i++ {
		got, err := p.Visit()
		if !errors.Is(err, ErrNotPersisted) {
			t.Errorf("visit %d: expected ErrNotPersisted, got %v", i, err)
		}
		if got != "Welcome! Let us know if you have any questions." {
			t.Errorf("visit %d: greeting = %q", i, got)
		}
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"reader@example.com", true},
		{"a.b+c@sub.example.org", true},
		{"reader@example", false},
		{"reader example@x.com", false},
		{"@example.com", false},
		{"reader@@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestSubscribe(t *testing.T) {
	p, _, _ := testPrefs(t)

	if _, err := p.Subscribe("not-an-email", nil, false); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, ok := p.Newsletter(); ok {
		t.Fatal("invalid subscription must not be stored")
	}

	first, err := p.Subscribe(" reader@example.com ", []string{"Sports", "gossip"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("ID is not a uuid: %q", first.ID)
	}
	if first.Email != "reader@example.com" || len(first.Categories) != 1 || first.Categories[0] != "sports" || !first.WeatherAlerts {
		t.Errorf("unexpected subscription %+v", first)
	}

	second, err := p.Subscribe("other@example.com", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if second.Categories[0] != "general" {
		t.Errorf("empty categories should default to general, got %v", second.Categories)
	}

	cur, ok := p.Newsletter()
	if !ok || cur.ID != second.ID {
		t.Errorf("current newsletter = %+v", cur)
	}
	if hist := p.Subscriptions(); len(hist) != 2 || hist[0].ID != first.ID {
		t.Errorf("history = %+v", hist)
	}
}
