package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/tactics-grid/game/engine"
	"github.com/wricardo/tactics-grid/game/motion"
)

// ErrInvalidInput is returned for malformed cursor or interaction requests
var ErrInvalidInput = errors.New("invalid input")

// GameService defines all board-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Input
	MoveCursor(ctx context.Context, sessionID string, input CursorInput) (*InputResult, error)
	Interact(ctx context.Context, sessionID string, cell *engine.Cell) (*InputResult, error)
	Cancel(ctx context.Context, sessionID string) (*InputResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.BoardState, error)

	// Animation
	Tick(ctx context.Context, dt time.Duration) ([]*TickResult, error)
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) (int, error)

	// Board State
	GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error)
	GetUnitReach(ctx context.Context, sessionID, unitID string) (*ReachInfo, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.BoardConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.BoardConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Session represents an active board with its own engine and walker
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Walker         *motion.Walker
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
