package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"holidaze/internal/messaging"
	"holidaze/internal/metrics"
	"holidaze/internal/models"
)

// Manager owns one Session per browser context, keyed by the session cookie.
type Manager struct {
	store     Store
	publisher messaging.Publisher
	origin    string
	metrics   *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// NewManager creates a registry over store. publisher may be nil, in which case
// changes are not fanned out to other instances. origin identifies this
// instance in published events.
func NewManager(store Store, publisher messaging.Publisher, origin string, m *metrics.Metrics) *Manager {
	return &Manager{
		store:     store,
		publisher: publisher,
		origin:    origin,
		metrics:   m,
		sessions:  make(map[string]*entry),
	}
}

// Get returns the Session for id, creating it from the store on first use
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = time.Now()
		m.mu.Unlock()
		return e.session, nil
	}
	m.mu.Unlock()

	s, err := New(ctx, id, m.store)
	if err != nil {
		return nil, err
	}
	s.hook = m.changed

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have created it meanwhile
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session, nil
	}
	m.sessions[id] = &entry{session: s, lastSeen: time.Now()}
	return s, nil
}

// Notify makes a known session re-read the store. Unknown ids are ignored
// since nobody in this process observes them.
func (m *Manager) Notify(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return e.session.Refresh(ctx)
}

func (m *Manager) Forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len is the number of sessions held in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune drops sessions idle for longer than idle that nobody is observing.
// Their credentials stay in the store.
func (m *Manager) Prune(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) && e.session.Observers() == 0 {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// HandleEvent applies a session change published by another instance
func (m *Manager) HandleEvent(ctx context.Context, event models.SessionChangedEvent) error {
	if event.Origin == m.origin {
		return nil
	}
	return m.Notify(ctx, event.SessionID)
}

func (m *Manager) changed(s *Session, authenticated, local bool) {
	m.metrics.SessionChanged(authenticated)
	slog.Info("Session state changed",
		"session_id", s.ID(), "authenticated", authenticated, "local", local)

	if !local || m.publisher == nil {
		return
	}
	event := models.SessionChangedEvent{
		SessionID:     s.ID(),
		Authenticated: authenticated,
		Origin:        m.origin,
		Timestamp:     time.Now(),
	}
	if err := m.publisher.Publish(models.EventSessionChanged, event); err != nil {
		slog.Error("Failed to publish session change", "session_id", s.ID(), "error", err)
	}
}
