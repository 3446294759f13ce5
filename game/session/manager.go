package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/tactics-grid/game/engine"
	"github.com/wricardo/tactics-grid/game/motion"
	"github.com/wricardo/tactics-grid/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxSessionIDLength bounds caller-chosen IDs
const maxSessionIDLength = 64

// Manager handles board session lifecycle. Sessions live in memory only.
type Manager struct {
	sessions  map[string]*service.Session
	moveSpeed float64
	logger    *zap.Logger
	mu        sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithMoveSpeed sets the walker speed, in pixels per second, for new sessions
func WithMoveSpeed(pixelsPerSecond float64) Option {
	return func(m *Manager) {
		m.moveSpeed = pixelsPerSecond
	}
}

// WithLogger sets the manager logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*service.Session),
		moveSpeed: motion.DefaultSpeed,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and configuration.
// An empty ID gets a random 4-character one.
func (m *Manager) Create(id string, config *engine.BoardConfig) (*service.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[strings.ToLower(id)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	// The walker needs the engine's grid, and the engine needs the walker
	walker := motion.NewWalker(nil, m.moveSpeed)
	eng, err := engine.NewEngine(config, walker)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	walker.SetGrid(eng.Grid())

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Walker:         walker,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[strings.ToLower(id)] = session
	m.logger.Debug("session stored", zap.String("session_id", id), zap.Int("active", len(m.sessions)))
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.BoardConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		session, err = m.Create(id, config)
		if errors.Is(err, ErrSessionAlreadyExists) {
			// Lost a race with another creator
			return m.Get(id)
		}
		return session, err
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given
// duration. Sessions with a walk in flight are kept. It reads engine state, so
// callers must serialize it with anything that ticks or mutates the engines.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, session := range m.sessions {
		if !session.LastAccessedAt.Before(cutoff) {
			continue
		}
		if session.Engine != nil && session.Engine.IsMoving() {
			continue
		}
		delete(m.sessions, key)
		removed++
	}

	if removed > 0 {
		m.logger.Info("expired sessions removed", zap.Int("removed", removed), zap.Duration("max_age", maxAge))
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random, unused 4-character session ID. Callers hold mu.
func (m *Manager) generateSessionID() string {
	for {
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if _, taken := m.sessions[id]; !taken {
			return id
		}
	}
}

// validateID accepts empty IDs and short IDs of letters, digits, '-' and '_'
func validateID(id string) error {
	if len(id) > maxSessionIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidSessionID, maxSessionIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
		}
	}
	return nil
}
