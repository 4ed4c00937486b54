package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

var (
	// ErrNotFound is returned when no series is cached for a key.
	ErrNotFound = errors.New("no cached series for key")
)

// SeriesEntry is one cached adapter result.
type SeriesEntry struct {
	Selection  forecast.Selection
	Points     []forecast.Point
	FetchedAt  time.Time
	LastAccess time.Time
	// Stale forces the next read to revalidate regardless of age.
	Stale bool
}

// MemoryStore is a concurrency-safe in-memory series cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: selection key
	data map[string]*SeriesEntry

	// retention configuration
	maxEntries int           // max number of cached selections
	maxIdle    time.Duration // entries not read for this long are dropped
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxIdle is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SeriesEntry),
		maxEntries: maxEntries,
		maxIdle:    maxIdle,
	}
}

// Save stores an entry under its selection key and enforces retention.
// The points slice is copied.
func (s *MemoryStore) Save(entry SeriesEntry) {
	key := entry.Selection.Key()
	entry.Points = clonePoints(entry.Points)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.data[key]; ok && prev.LastAccess.After(entry.LastAccess) {
		entry.LastAccess = prev.LastAccess
	} else if entry.LastAccess.IsZero() {
		entry.LastAccess = entry.FetchedAt
	}
	s.data[key] = &entry

	// Enforce retention by count, evicting the least recently read.
	if s.maxEntries > 0 && len(s.data) > s.maxEntries {
		keys := s.keysByAccessLocked()
		for _, k := range keys[:len(keys)-s.maxEntries] {
			delete(s.data, k)
		}
	}
}

// Get returns a copy of the entry for key and records the access time.
func (s *MemoryStore) Get(key string, now time.Time) (SeriesEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return SeriesEntry{}, ErrNotFound
	}
	e.LastAccess = now
	out := *e
	out.Points = clonePoints(e.Points)
	return out, nil
}

// Touch records a read of key without copying the entry.
func (s *MemoryStore) Touch(key string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[key]; ok && now.After(e.LastAccess) {
		e.LastAccess = now
	}
}

// MarkAllStale flags every entry for revalidation on next read.
func (s *MemoryStore) MarkAllStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.data {
		e.Stale = true
	}
}

// Active returns the selections read within the idle window and drops the
// rest. With no idle limit every entry is active.
func (s *MemoryStore) Active(now time.Time) []forecast.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []forecast.Selection
	for _, k := range s.keysByAccessLocked() {
		e := s.data[k]
		if s.maxIdle > 0 && now.Sub(e.LastAccess) > s.maxIdle {
			delete(s.data, k)
			continue
		}
		out = append(out, e.Selection)
	}
	return out
}

// Len returns the number of cached selections.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// keysByAccessLocked returns keys ordered from least to most recently read.
func (s *MemoryStore) keysByAccessLocked() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.data[keys[i]].LastAccess, s.data[keys[j]].LastAccess
		if a.Equal(b) {
			return keys[i] < keys[j]
		}
		return a.Before(b)
	})
	return keys
}

func clonePoints(p []forecast.Point) []forecast.Point {
	if p == nil {
		return nil
	}
	out := make([]forecast.Point, len(p))
	copy(out, p)
	return out
}
