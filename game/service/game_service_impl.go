package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/tactics-grid/game/engine"
)

// gameServiceImpl implements the GameService interface.
// Every engine call runs under mu so each board stays single threaded.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		BoardState:     boardState(sess),
		BoardConfig:    sess.Config,
	}
}

// CreateSession creates a new board session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s' (available: %v): %w", configName, configIDs, err)
			}
			return nil, fmt.Errorf("config '%s': %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("config", configID),
		zap.Int("units", len(sess.Engine.Units())))

	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// MoveCursor moves a session's cursor by cell, direction or pixel position
func (s *gameServiceImpl) MoveCursor(ctx context.Context, sessionID string, input CursorInput) (*InputResult, error) {
	set := 0
	if input.Cell != nil {
		set++
	}
	if input.Direction != "" {
		set++
	}
	if input.Pixel != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of cell, direction or pixel is required", ErrInvalidInput)
	}

	var dir engine.Direction
	if input.Direction != "" {
		var err error
		dir, err = engine.ParseDirection(input.Direction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	return s.apply(sessionID, func(e *engine.GameEngine) bool {
		switch {
		case input.Cell != nil:
			return e.MoveCursor(*input.Cell)
		case input.Pixel != nil:
			return e.PointCursor(*input.Pixel)
		default:
			return e.StepCursor(dir)
		}
	})
}

// Interact presses confirm at a cell, or at the cursor when cell is nil
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID string, cell *engine.Cell) (*InputResult, error) {
	return s.apply(sessionID, func(e *engine.GameEngine) bool {
		if cell != nil {
			return e.InteractAt(*cell)
		}
		return e.Interact()
	})
}

// Cancel drops the current selection
func (s *gameServiceImpl) Cancel(ctx context.Context, sessionID string) (*InputResult, error) {
	return s.apply(sessionID, func(e *engine.GameEngine) bool {
		return e.Cancel()
	})
}

// apply runs one input against a session's engine and collects what it emitted
func (s *gameServiceImpl) apply(sessionID string, input func(e *engine.GameEngine) bool) (*InputResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	accepted := input(sess.Engine)
	events := sess.Engine.DrainEvents()
	state := boardState(sess)

	for _, ev := range events {
		if ev.Type == engine.EventMoveStarted {
			s.logger.Info("move committed",
				zap.String("session_id", sess.ID),
				zap.String("unit_id", ev.UnitID),
				zap.Stringer("from", ev.From),
				zap.Stringer("to", ev.Cell),
				zap.Int("steps", ev.Path.Steps()))
		}
	}

	return &InputResult{
		Accepted: accepted,
		State:    state,
		Message:  state.Message,
		Events:   events,
	}, nil
}

// Reset puts a session's units back on their starting cells
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("reset session %s: %w", sessionID, err)
	}
	sess.Engine.DrainEvents()
	return boardState(sess), nil
}

// Tick advances every session's walker. Sessions whose board changed are returned,
// ordered by session ID.
func (s *gameServiceImpl) Tick(ctx context.Context, dt time.Duration) ([]*TickResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*TickResult
	for _, sess := range s.sessions.List() {
		if sess.Walker == nil || sess.Walker.Active() == 0 {
			continue
		}
		completed := sess.Walker.Tick(dt.Seconds())
		events := sess.Engine.DrainEvents()
		results = append(results, &TickResult{
			SessionID: sess.ID,
			Completed: completed,
			State:     boardState(sess),
			Events:    events,
		})
		if completed > 0 {
			s.logger.Debug("walk finished", zap.String("session_id", sess.ID), zap.Int("completed", completed))
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].SessionID < results[j].SessionID })
	return results, nil
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge. It runs under
// the same lock as Tick since the manager inspects each engine's selection state.
func (s *gameServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.CleanupExpiredSessions(maxAge), nil
}

// GetBoardState retrieves the current board snapshot
func (s *gameServiceImpl) GetBoardState(ctx context.Context, sessionID string) (*engine.BoardState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return boardState(sess), nil
}

// GetUnitReach computes one unit's reachable cells without selecting it
func (s *gameServiceImpl) GetUnitReach(ctx context.Context, sessionID, unitID string) (*ReachInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	rs, err := sess.Engine.ReachableCells(unitID)
	if err != nil {
		return nil, err
	}

	var unitCells []engine.Cell
	moveRange := 0
	for _, u := range sess.Engine.Units() {
		unitCells = append(unitCells, u.Cell)
		if u.ID == unitID {
			moveRange = u.MoveRange
		}
	}

	cells := rs.Cells()
	return &ReachInfo{
		UnitID:    unitID,
		Origin:    rs.Origin(),
		MoveRange: moveRange,
		Cells:     cells,
		Count:     len(cells),
		Overlay:   engine.RenderOverlay(sess.Engine.Terrain().Rows(), cells, nil, unitCells, nil),
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", zap.String("config", configName))
	return nil
}

// getSession looks up a session and marks it as accessed. Callers hold mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Debug("update last accessed failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return sess, nil
}

// boardState snapshots a session and overlays the walker's pixel positions
func boardState(sess *Session) *engine.BoardState {
	state := sess.Engine.GetState()
	if sess.Walker == nil {
		return state
	}
	for i := range state.Units {
		if pos, ok := sess.Walker.Position(state.Units[i].ID); ok {
			state.Units[i].Position = pos
		}
	}
	return state
}
