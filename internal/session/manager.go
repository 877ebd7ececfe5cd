package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/cloudwalk/assistant/internal/log"
)

// ErrNotFound is returned when a session id does not resolve to a
// live session.
var ErrNotFound = errors.New("session not found")

// Manager owns the set of live sessions. It is safe for concurrent
// use by multiple request handlers.
type Manager struct {
	mu              sync.RWMutex
	sessions        map[string]*Context
	defaultLanguage string
	logger          log.Logger
}

// NewManager creates a Manager whose new sessions start in
// defaultLanguage. A nil logger disables logging.
func NewManager(defaultLanguage string, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		sessions:        make(map[string]*Context),
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// Create starts a new session and returns its context.
func (m *Manager) Create() *Context {
	ctx := newContext(uuid.NewString(), m.defaultLanguage)

	m.mu.Lock()
	m.sessions[ctx.ID()] = ctx
	m.mu.Unlock()

	m.logger.Debug("session created", slog.String("session_id", ctx.ID()))
	return ctx
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Context, error) {
	m.mu.RLock()
	ctx, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return ctx, nil
}

// End removes the session with the given id.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.logger.Debug("session ended", slog.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
