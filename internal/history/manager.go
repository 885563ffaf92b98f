// Package history keeps the bounded archive of completed sessions.
package history

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/verte-zerg/afkstats/internal/model"
)

// DefaultMaxSessions is the archive capacity used unless overridden.
const DefaultMaxSessions = 20

// Storage persists the encoded archive as a single opaque string.
// Load returns "" when nothing has been stored yet.
type Storage interface {
	Load() (string, error)
	Save(blob string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for recoverable load problems.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMaxSessions overrides the archive capacity. Values below 1 are ignored.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.maxSessions = n
		}
	}
}

// Manager owns the ordered session archive, oldest first.
// Every mutation rewrites the whole archive through the Storage.
type Manager struct {
	mu          sync.Mutex
	storage     Storage
	logger      *slog.Logger
	maxSessions int
	sessions    []model.Session
}

// New loads the archive from storage. A missing, unreadable or malformed
// archive starts empty; the problem is logged, not returned.
func New(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage:     storage,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.sessions = m.load()
	return m
}

func (m *Manager) load() []model.Session {
	blob, err := m.storage.Load()
	if err != nil {
		m.logger.Warn("failed to read session history, starting fresh", "error", err)
		return []model.Session{}
	}
	if blob == "" {
		return []model.Session{}
	}
	sessions, err := Decode(blob)
	if err != nil {
		m.logger.Warn("failed to parse session history, starting fresh", "error", err)
		return []model.Session{}
	}
	if over := len(sessions) - m.maxSessions; over > 0 {
		m.logger.Info("trimming stored history to capacity", "dropped", over, "max", m.maxSessions)
		sessions = sessions[over:]
	}
	return sessions
}

// MaxSessions reports the archive capacity.
func (m *Manager) MaxSessions() int {
	return m.maxSessions
}

// Sessions returns a copy of the archive, oldest first.
func (m *Manager) Sessions() []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Len returns the number of archived sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.Session{}, false
}

// Add appends a session, evicts the oldest entries beyond capacity and saves.
// A save error is returned but the session stays in the archive.
func (m *Manager) Add(session model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, session)
	if over := len(m.sessions) - m.maxSessions; over > 0 {
		kept := make([]model.Session, m.maxSessions)
		copy(kept, m.sessions[over:])
		m.sessions = kept
	}
	return m.saveLocked()
}

// Rename sets the name of the first session matching id and saves.
// An unknown id is a no-op.
func (m *Manager) Rename(id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == id {
			m.sessions[i].Name = name
			return m.saveLocked()
		}
	}
	return nil
}

// Delete removes every session matching id and saves, even when nothing matched.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.sessions[:0]
	for _, s := range m.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	clear(m.sessions[len(kept):])
	m.sessions = kept
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	blob, err := Encode(m.sessions)
	if err != nil {
		return err
	}
	if err := m.storage.Save(blob); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}
