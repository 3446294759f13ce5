package service

import (
	"time"

	"github.com/wricardo/tactics-grid/game/engine"
)

// SessionInfo provides information about a board session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	BoardState     *engine.BoardState  `json:"board_state"`
	BoardConfig    *engine.BoardConfig `json:"board_config"`
}

// CursorInput moves the cursor. Exactly one of Cell, Direction or Pixel is set.
type CursorInput struct {
	Cell      *engine.Cell `json:"cell,omitempty"`
	Direction string       `json:"direction,omitempty"`
	Pixel     *engine.Vec2 `json:"pixel,omitempty"`
}

// InputResult contains the result of one input operation
type InputResult struct {
	Accepted bool               `json:"accepted"`
	State    *engine.BoardState `json:"state"`
	Message  string             `json:"message"`
	Events   []engine.Event     `json:"events,omitempty"`
}

// TickResult reports a session whose board changed during a tick
type TickResult struct {
	SessionID string             `json:"session_id"`
	Completed int                `json:"completed"`
	State     *engine.BoardState `json:"state"`
	Events    []engine.Event     `json:"events,omitempty"`
}

// ReachInfo describes where one unit could move right now
type ReachInfo struct {
	UnitID    string        `json:"unit_id"`
	Origin    engine.Cell   `json:"origin"`
	MoveRange int           `json:"move_range"`
	Cells     []engine.Cell `json:"cells"`
	Count     int           `json:"count"`
	Overlay   []string      `json:"overlay"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Columns     int    `json:"columns"`
	Rows        int    `json:"rows"`
	Units       int    `json:"units"`
}
