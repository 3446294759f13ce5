package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnitNotFound is returned when a unit ID is not on the board
	ErrUnitNotFound = errors.New("unit not found")
	// ErrMoveInProgress is returned for operations refused while a unit is walking
	ErrMoveInProgress = errors.New("a move is in progress")
)

// Engine provides the main interface for board operations
type Engine interface {
	// Input
	MoveCursor(c Cell) bool
	StepCursor(d Direction) bool
	PointCursor(pos Vec2) bool
	Interact() bool
	InteractAt(c Cell) bool
	Cancel() bool

	// Board state
	GetState() *BoardState
	GetConfig() *BoardConfig
	Grid() *Grid
	Units() []*Unit
	ReachableCells(unitID string) (*ReachableSet, error)
	IsMoving() bool
	Reset() error

	// Events and history
	DrainEvents() []Event
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface for one board.
// It is not safe for concurrent use; callers serialize access.
type GameEngine struct {
	config   *BoardConfig
	animator Animator

	grid       *Grid
	tiles      *TileMap
	registry   *UnitRegistry
	controller *SelectionController
	cursor     *Cursor

	events      []Event
	moveHistory []MoveHistoryEntry
	totalMoves  int
	message     string
}

// NewEngine creates a board from its configuration. A nil animator completes moves instantly.
func NewEngine(config *BoardConfig, animator Animator) (*GameEngine, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}
	if animator == nil {
		animator = InstantAnimator{}
	}

	e := &GameEngine{
		config:      config,
		animator:    animator,
		moveHistory: []MoveHistoryEntry{},
	}
	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an engine on the built-in board
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultBoardConfig(), nil)
	if err != nil {
		panic(fmt.Sprintf("engine: default board is invalid: %v", err))
	}
	return e
}

// build lays out the grid, terrain and units, and wires the controller
func (e *GameEngine) build() error {
	grid, err := NewGrid(e.config.Columns, e.config.Rows, e.config.effectiveCellSize())
	if err != nil {
		return err
	}
	tiles, err := NewTileMap(e.config.Layout, e.config.Legend)
	if err != nil {
		return err
	}

	registry := NewUnitRegistry(grid)
	for i, p := range e.config.Units {
		u := &Unit{
			ID:        p.ID,
			Name:      p.Name,
			MoveRange: e.config.effectiveMoveRange(p),
		}
		if u.ID == "" {
			u.ID = fmt.Sprintf("unit_%d", i+1)
		}
		if u.Name == "" {
			u.Name = u.ID
		}
		if err := registry.Place(u, Cell{X: p.X, Y: p.Y}); err != nil {
			return err
		}
	}

	controller := NewSelectionController(grid, tiles, registry, e.animator)
	controller.Subscribe(e.onEvent)

	start := Cell{}
	if units := registry.Units(); len(units) > 0 {
		start = units[0].Cell
	}

	e.grid = grid
	e.tiles = tiles
	e.registry = registry
	e.controller = controller
	e.cursor = NewCursor(grid, start)
	e.events = nil
	e.message = fmt.Sprintf("%s: %d units on a %dx%d board", e.config.Name, registry.Len(), grid.Columns, grid.Rows)
	return nil
}

func (e *GameEngine) onEvent(ev Event) {
	e.events = append(e.events, ev)
	if len(e.events) > MaxHistory {
		e.events = e.events[len(e.events)-MaxHistory:]
	}

	switch ev.Type {
	case EventSelected:
		e.message = fmt.Sprintf("Selected %s at %v: %d cells in reach", ev.UnitID, ev.Cell, len(ev.Reachable))
	case EventDeselected:
		e.message = fmt.Sprintf("Deselected %s", ev.UnitID)
	case EventMoveStarted:
		e.recordMove(ev)
		e.message = fmt.Sprintf("%s moving %v -> %v (%d steps)", ev.UnitID, ev.From, ev.Cell, ev.Path.Steps())
	case EventMoveCompleted:
		e.message = fmt.Sprintf("%s arrived at %v", ev.UnitID, ev.Cell)
	}
}

func (e *GameEngine) recordMove(ev Event) {
	e.totalMoves++
	e.moveHistory = append(e.moveHistory, MoveHistoryEntry{
		UnitID:     ev.UnitID,
		From:       ev.From,
		To:         ev.Cell,
		Steps:      ev.Path.Steps(),
		Timestamp:  ev.Timestamp.Unix(),
		MoveNumber: e.totalMoves,
	})
	if len(e.moveHistory) > MaxHistory {
		e.moveHistory = e.moveHistory[len(e.moveHistory)-MaxHistory:]
	}
}

// MoveCursor moves the cursor to a cell, clamped to the board
func (e *GameEngine) MoveCursor(c Cell) bool {
	if !e.cursor.MoveTo(c) {
		return false
	}
	e.controller.CursorMoved(e.cursor.Cell())
	return true
}

// StepCursor moves the cursor one cell
func (e *GameEngine) StepCursor(d Direction) bool {
	return e.MoveCursor(e.cursor.Cell().Add(d.Offset()))
}

// PointCursor moves the cursor to the cell under a pixel position
func (e *GameEngine) PointCursor(pos Vec2) bool {
	return e.MoveCursor(e.grid.MapToCell(pos))
}

// Interact presses confirm on the cursor cell
func (e *GameEngine) Interact() bool {
	c := e.cursor.Cell()
	if e.controller.State() == StateMoving {
		e.message = "A unit is still moving"
		return false
	}
	if e.controller.Interact(c) {
		return true
	}

	if e.controller.State() == StateIdle {
		e.message = fmt.Sprintf("Nothing to select at %v", c)
	} else if e.registry.IsOccupied(c) {
		e.message = fmt.Sprintf("%v is occupied", c)
	} else {
		e.message = fmt.Sprintf("%v is out of reach", c)
	}
	return false
}

// InteractAt moves the cursor to a cell and presses confirm there
func (e *GameEngine) InteractAt(c Cell) bool {
	if !e.grid.InBounds(c) {
		e.message = fmt.Sprintf("%v is off the board", c)
		return false
	}
	e.MoveCursor(c)
	return e.Interact()
}

// Cancel drops the current selection
func (e *GameEngine) Cancel() bool {
	return e.controller.Cancel()
}

// GetState returns a snapshot of the board
func (e *GameEngine) GetState() *BoardState {
	selection := e.controller.Snapshot()
	active, _ := e.controller.ActiveUnit()
	moving := e.controller.State() == StateMoving

	units := e.registry.Units()
	unitStates := make([]UnitState, 0, len(units))
	for _, u := range units {
		unitStates = append(unitStates, UnitState{
			ID:        u.ID,
			Name:      u.Name,
			Cell:      u.Cell,
			MoveRange: u.MoveRange,
			Selected:  u.Selected,
			Moving:    moving && u == active,
			Position:  e.grid.CellToMapCenter(u.Cell),
		})
	}

	return &BoardState{
		ConfigName: e.config.Name,
		Columns:    e.grid.Columns,
		Rows:       e.grid.Rows,
		CellSize:   e.grid.CellSize,
		Terrain:    e.tiles.Rows(),
		Units:      unitStates,
		Selection:  selection,
		Cursor:     e.cursor.Cell(),
		Message:    e.message,
		TotalMoves: e.totalMoves,
	}
}

// GetConfig returns the board configuration
func (e *GameEngine) GetConfig() *BoardConfig {
	return e.config
}

// Grid returns the board geometry
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// Terrain returns the board's tile map
func (e *GameEngine) Terrain() *TileMap {
	return e.tiles
}

// Units returns the units on the board sorted by ID
func (e *GameEngine) Units() []*Unit {
	return e.registry.Units()
}

// Controller exposes the selection state machine
func (e *GameEngine) Controller() *SelectionController {
	return e.controller
}

// ReachableCells computes where a unit could move right now, without selecting it
func (e *GameEngine) ReachableCells(unitID string) (*ReachableSet, error) {
	u, ok := e.registry.Unit(unitID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", unitID, ErrUnitNotFound)
	}
	solver := NewReachabilitySolver(e.grid)
	return solver.Solve(u.Cell, u.MoveRange, e.tiles.Walkable, func(c Cell) bool {
		other, ok := e.registry.Get(c)
		return ok && other != u
	}), nil
}

// IsMoving reports whether a unit is walking
func (e *GameEngine) IsMoving() bool {
	return e.controller.State() == StateMoving
}

// Reset puts every unit back on its starting cell. History is kept.
func (e *GameEngine) Reset() error {
	if e.IsMoving() {
		return ErrMoveInProgress
	}
	if err := e.build(); err != nil {
		return err
	}
	e.message = fmt.Sprintf("Board reset at %s", time.Now().Format(time.Kitchen))
	return nil
}

// DrainEvents returns the events emitted since the last drain
func (e *GameEngine) DrainEvents() []Event {
	out := e.events
	e.events = nil
	return out
}

// GetMoveHistory returns the committed moves, oldest first
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.moveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.moveHistory) == 0 {
		return nil
	}
	return &e.moveHistory[len(e.moveHistory)-1]
}
