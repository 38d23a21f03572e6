// Package store is the persistent key-value store behind newsdesk's caches
// and preferences. Values are JSON-encoded; every entry carries the time it
// was stored. Store never surfaces backend failures to callers: writes report
// success as a bool and reads degrade to a miss.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/newsdesk/newsdesk/internal/metrics"
)

// ErrNotFound is returned by backends for missing keys.
var ErrNotFound = errors.New("store: key not found")

// Entry is a stored value together with its write time.
type Entry struct {
	Key      string
	Value    json.RawMessage
	StoredAt time.Time
}

// Backend is the raw storage engine. Put must keep StoredAt monotonically
// non-decreasing per key.
type Backend interface {
	Get(key string) (Entry, error)
	Put(key string, value []byte, storedAt time.Time) error
	Delete(key string) error
	Clear() error
	Count() (int, error)
	// Keys lists stored keys that start with prefix.
	Keys(prefix string) ([]string, error)
	Close() error
}

type Store struct {
	backend Backend
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

// WithClock overrides the time source used for StoredAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func New(b Backend, opts ...Option) *Store {
	s := &Store{backend: b, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}

// Set stores value under key. It returns false, after logging, if value
// cannot be encoded or the backend rejects the write.
func (s *Store) Set(key string, value any) bool {
	return s.SetAt(key, value, s.now())
}

// SetAt is Set with an explicit StoredAt.
func (s *Store) SetAt(key string, value any, at time.Time) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("store: encoding value", "key", key, "err", err)
		s.metrics.StoreError("encode")
		return false
	}
	if err := s.backend.Put(key, data, at); err != nil {
		s.log.Warn("store: writing value", "key", key, "err", err)
		s.metrics.StoreError("set")
		return false
	}
	return true
}

// Get decodes the value under key into out, which must be a non-nil pointer.
// Missing keys and undecodable data both report false and leave out untouched.
func (s *Store) Get(key string, out any) bool {
	e, ok := s.Lookup(key)
	if !ok {
		return false
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		s.log.Warn("store: Get needs a non-nil pointer", "key", key, "type", fmt.Sprintf("%T", out))
		return false
	}
	// Decode into a scratch value: json.Unmarshal may fill part of its
	// target before failing.
	tmp := reflect.New(dst.Type().Elem())
	if err := json.Unmarshal(e.Value, tmp.Interface()); err != nil {
		s.log.Debug("store: corrupt value treated as miss", "key", key, "err", err)
		return false
	}
	dst.Elem().Set(tmp.Elem())
	return true
}

// Lookup returns the raw entry for key.
func (s *Store) Lookup(key string) (Entry, bool) {
	e, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("store: reading value", "key", key, "err", err)
			s.metrics.StoreError("get")
		}
		return Entry{}, false
	}
	return e, true
}

// GetString returns the string under key, or def.
func (s *Store) GetString(key, def string) string {
	var v string
	if !s.Get(key, &v) || v == "" {
		return def
	}
	return v
}

func (s *Store) GetInt64(key string) (int64, bool) {
	var v int64
	if !s.Get(key, &v) {
		return 0, false
	}
	return v, true
}

func (s *Store) Remove(key string) {
	if err := s.backend.Delete(key); err != nil {
		s.log.Warn("store: removing value", "key", key, "err", err)
		s.metrics.StoreError("remove")
	}
}

func (s *Store) Clear() {
	if err := s.backend.Clear(); err != nil {
		s.log.Warn("store: clearing", "err", err)
		s.metrics.StoreError("clear")
	}
}

// Keys lists stored keys starting with prefix, sorted. A failing backend
// reads as empty.
func (s *Store) Keys(prefix string) []string {
	keys, err := s.backend.Keys(prefix)
	if err != nil {
		s.log.Warn("store: listing keys", "prefix", prefix, "err", err)
		s.metrics.StoreError("keys")
		return nil
	}
	slices.Sort(keys)
	return keys
}

// RemovePrefix deletes every key starting with prefix and returns how many
// were removed.
func (s *Store) RemovePrefix(prefix string) int {
	keys := s.Keys(prefix)
	n := 0
	for _, k := range keys {
		if err := s.backend.Delete(k); err != nil {
			s.log.Warn("store: removing value", "key", k, "err", err)
			s.metrics.StoreError("remove")
			continue
		}
		n++
	}
	return n
}

// Stats reports the number of stored keys.
func (s *Store) Stats() (int, error) {
	return s.backend.Count()
}

func (s *Store) Close() error {
	return s.backend.Close()
}
