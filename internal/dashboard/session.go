package dashboard

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/revalidate"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownEvent is returned for client events other than focus/reconnect.
	ErrUnknownEvent = errors.New("unknown event")
)

const (
	EventFocus     = "focus"
	EventReconnect = "reconnect"
)

// Loader is the keyed series cache the dashboard reads through.
type Loader interface {
	Get(ctx context.Context, sel forecast.Selection) (revalidate.Result, error)
	OnFocus() bool
	OnReconnect(ctx context.Context) (bool, error)
}

// SelectionPatch changes any subset of the four selectors.
type SelectionPatch struct {
	City   string `json:"city"`
	Metric string `json:"metric"`
	Period string `json:"period"`
	Unit   string `json:"unit"`
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	ID        string             `json:"id"`
	Selection forecast.Selection `json:"selection"`
	Chart     ChartState         `json:"chart"`
}

type session struct {
	id string

	mu         sync.Mutex
	selection  forecast.Selection
	generation uint64
	chart      ChartState
	closed     bool
	lastSeen   time.Time
}

func (s *session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.id, Selection: s.selection, Chart: s.chart}
}

// Manager holds dashboard sessions. Each session has one current selection;
// changing it bumps a generation counter and results for older generations
// are dropped when they arrive.
type Manager struct {
	loader Loader
	labels forecast.Labels
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	// settled is called after every background load; tests hook it.
	settled func(id string, gen uint64, applied bool)
}

// NewManager creates a new Manager. Sessions idle for longer than ttl are
// dropped; ttl <= 0 keeps them until deleted.
func NewManager(loader Loader, labels forecast.Labels, ttl time.Duration) *Manager {
	return &Manager{
		loader:   loader,
		labels:   labels,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create starts a session on the default selection and begins loading it.
func (m *Manager) Create() Snapshot {
	now := m.now()
	sel := forecast.DefaultSelection()
	s := &session{
		id:         uuid.NewString(),
		selection:  sel,
		generation: 1,
		chart:      Loading(sel, 1),
		lastSeen:   now,
	}

	m.mu.Lock()
	m.pruneLocked(now)
	m.sessions[s.id] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	go m.load(s, 1, sel)
	return s.snapshot()
}

// Get returns the current view of a session.
func (m *Manager) Get(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Select applies patch to the session's selection. If the key changes a new
// generation starts in the loading state; an unchanged key is a no-op.
func (m *Manager) Select(id string, patch SelectionPatch) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	next, err := applyPatch(s.selection, patch)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	if next == s.selection {
		s.mu.Unlock()
		return s.snapshot(), nil
	}
	s.selection = next
	s.generation++
	gen := s.generation
	s.chart = Loading(next, gen)
	s.mu.Unlock()

	go m.load(s, gen, next)
	return s.snapshot(), nil
}

// Event handles a client focus or reconnect notification according to the
// cache policy. It reports whether a revalidation was triggered.
func (m *Manager) Event(ctx context.Context, id, event string) (bool, error) {
	s, err := m.lookup(id)
	if err != nil {
		return false, err
	}

	var triggered bool
	switch event {
	case EventFocus:
		triggered = m.loader.OnFocus()
	case EventReconnect:
		triggered, err = m.loader.OnReconnect(ctx)
		if err != nil {
			log.Printf("ERROR: reconnect revalidation for session %s: %v", id, err)
		}
	default:
		return false, ErrUnknownEvent
	}

	if triggered {
		// Same key, same generation: the chart keeps its data until the
		// refreshed series replaces it.
		s.mu.Lock()
		gen, sel := s.generation, s.selection
		s.mu.Unlock()
		go m.load(s, gen, sel)
	}
	return triggered, nil
}

// Delete tears a session down. Loads still in flight for it are discarded.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Chart loads a one-shot chart for sel without a session.
func (m *Manager) Chart(ctx context.Context, sel forecast.Selection) ChartState {
	res, err := m.loader.Get(ctx, sel)
	if err != nil {
		log.Printf("ERROR: chart %s: %v", sel.Key(), err)
		return Failed(sel, 0)
	}
	return Ready(sel, 0, m.labels, res.Points, res.FetchedAt)
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := m.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ttl > 0 && now.Sub(s.lastSeen) > m.ttl {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = now
	return s, nil
}

func (m *Manager) pruneLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen) > m.ttl
		if idle {
			s.closed = true
		}
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
		}
	}
}

// load fetches sel and applies the result only if gen is still the session's
// current generation.
func (m *Manager) load(s *session, gen uint64, sel forecast.Selection) {
	res, err := m.loader.Get(context.Background(), sel)

	var next ChartState
	if err != nil {
		log.Printf("ERROR: session %s load %s: %v", s.id, sel.Key(), err)
		next = Failed(sel, gen)
	} else {
		next = Ready(sel, gen, m.labels, res.Points, res.FetchedAt)
	}

	s.mu.Lock()
	applied := !s.closed && s.generation == gen
	if applied {
		s.chart = next
	}
	s.mu.Unlock()

	if !applied {
		metrics.StaleResults.Inc()
		log.Printf("DEBUG: session %s dropped result for generation %d (%s)", s.id, gen, sel.Key())
	}
	if m.settled != nil {
		m.settled(s.id, gen, applied)
	}
}

func applyPatch(cur forecast.Selection, p SelectionPatch) (forecast.Selection, error) {
	next := cur
	var err error
	if p.City != "" {
		if next.City, err = forecast.ParseCity(p.City); err != nil {
			return cur, err
		}
	}
	if p.Metric != "" {
		if next.Metric, err = forecast.ParseMetric(p.Metric); err != nil {
			return cur, err
		}
	}
	if p.Period != "" {
		if next.Period, err = forecast.ParsePeriod(p.Period); err != nil {
			return cur, err
		}
	}
	if p.Unit != "" {
		if next.Unit, err = forecast.ParseUnit(p.Unit); err != nil {
			return cur, err
		}
	}
	return next, nil
}
