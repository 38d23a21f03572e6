package store

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/newsdesk/newsdesk/internal/logging"
)

func testRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := OpenRedis(RedisOptions{Addr: mr.Addr(), Prefix: "newsdesk:"})
	if err != nil {
		t.Fatalf("opening redis: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedisRoundTrip(t *testing.T) {
	r, mr := testRedis(t)
	s := New(r, WithLogger(logging.Discard()))

	if !s.Set("weather-location", "Caracas") {
		t.Fatal("set failed")
	}
	if got := s.GetString("weather-location", ""); got != "Caracas" {
		t.Errorf("got %q", got)
	}
	if !mr.Exists("newsdesk:weather-location") {
		t.Error("expected the key to be stored under the prefix")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoredAtMonotonic(t *testing.T) {
	r, _ := testRedis(t)
	newer := time.UnixMilli(1760000000123)
	older := newer.Add(-time.Minute)

	if err := r.Put("k", []byte(`"first"`), newer); err != nil {
		t.Fatal(err)
	}
	if err := r.Put("k", []byte(`"second"`), older); err != nil {
		t.Fatal(err)
	}

	e, err := r.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if !e.StoredAt.Equal(newer) {
		t.Errorf("StoredAt went backwards: got %d, want %d", e.StoredAt.UnixMilli(), newer.UnixMilli())
	}
	if string(e.Value) != `"second"` {
		t.Errorf("value should still be replaced, got %s", e.Value)
	}

	later := newer.Add(time.Minute)
	r.Put("k", []byte(`"third"`), later)
	if e, _ := r.Get("k"); !e.StoredAt.Equal(later) {
		t.Errorf("expected StoredAt to advance to %v, got %v", later, e.StoredAt)
	}
}

func TestRedisClearAndCountOnlyTouchPrefix(t *testing.T) {
	r, mr := testRedis(t)
	mr.Set("other", "belongs to someone else")

	for _, k := range []string{"a", "b", "c"} {
		if err := r.Put(k, []byte(`1`), time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	if n, err := r.Count(); err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3", n, err)
	}

	if err := r.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := r.Count(); n != 0 {
		t.Errorf("expected no prefixed keys after Clear, got %d", n)
	}
	if got, err := mr.Get("other"); err != nil || got != "belongs to someone else" {
		t.Errorf("unprefixed key must survive Clear, got %q, %v", got, err)
	}
}

func TestRedisCorruptEnvelopeIsMiss(t *testing.T) {
	r, mr := testRedis(t)
	mr.Set("newsdesk:weather-units", "not an envelope")
	s := New(r, WithLogger(logging.Discard()))
	if got := s.GetString("weather-units", "metric"); got != "metric" {
		t.Errorf("corrupt envelope should fall back to the default, got %q", got)
	}
}

func TestRedisKeysUnderPrefix(t *testing.T) {
	r, mr := testRedis(t)
	s := New(r, WithLogger(logging.Discard()))
	s.Set("current-weather:Lima:metric", 1)
	s.Set("current-weather:[x]*:metric", 2)
	s.Set("current-weatherly", 3)
	mr.Set("current-weather:Oslo:metric", "foreign")

	want := []string{"current-weather:Lima:metric", "current-weather:[x]*:metric"}
	if got := s.Keys("current-weather:"); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
	if got := s.Keys("current-weather:[x]"); len(got) != 1 {
		t.Errorf("glob characters should match literally, got %v", got)
	}

	if n := s.RemovePrefix("current-weather:"); n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if !mr.Exists("current-weather:Oslo:metric") || !mr.Exists("newsdesk:current-weatherly") {
		t.Error("keys outside the prefix must survive")
	}
}
