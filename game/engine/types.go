package engine

import (
	"fmt"
	"time"
)

// TerrainType represents the kind of tile painted on a board cell
type TerrainType string

const (
	Grass    TerrainType = "grass"
	Road     TerrainType = "road"
	Forest   TerrainType = "forest"
	Water    TerrainType = "water"
	Mountain TerrainType = "mountain"
	Void     TerrainType = "void"

	// Validation constants
	MinBoardSize     = 1
	MaxBoardSize     = 64
	MaxMoveRange     = 32
	DefaultMoveRange = 6
	DefaultCellSize  = 32
	MaxHistory       = 500
)

// Cell is an integer grid coordinate
type Cell struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns the component-wise sum of two cells
func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Vec2 is a position in pixel space
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// neighborOffsets is the fixed expansion order shared by both solvers: left, right, up, down.
var neighborOffsets = [4]Cell{
	{X: -1, Y: 0},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: 0, Y: 1},
}

// Unit is a piece standing on the board. Its Cell is only changed by the UnitRegistry.
type Unit struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cell      Cell   `json:"cell"`
	MoveRange int    `json:"move_range"`
	Selected  bool   `json:"selected"`
}

// UnitPlacement describes where a unit starts on a board
type UnitPlacement struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	MoveRange *int   `json:"move_range,omitempty" yaml:"move_range,omitempty"`
}

// BoardConfig represents a board definition loaded from JSON or YAML
type BoardConfig struct {
	Name             string            `json:"name" yaml:"name"`
	Description      string            `json:"description" yaml:"description"`
	Columns          int               `json:"columns" yaml:"columns"`
	Rows             int               `json:"rows" yaml:"rows"`
	CellSize         int               `json:"cell_size,omitempty" yaml:"cell_size,omitempty"`
	DefaultMoveRange int               `json:"default_move_range,omitempty" yaml:"default_move_range,omitempty"`
	Layout           []string          `json:"layout" yaml:"layout"`
	Legend           map[string]string `json:"legend,omitempty" yaml:"legend,omitempty"`
	Units            []UnitPlacement   `json:"units" yaml:"units"`
}

// UnitState is the rendered view of a unit
type UnitState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cell      Cell   `json:"cell"`
	MoveRange int    `json:"move_range"`
	Selected  bool   `json:"selected"`
	Moving    bool   `json:"moving"`
	Position  Vec2   `json:"position"`
}

// SelectionView is the rendered view of the selection controller
type SelectionView struct {
	State        string `json:"state"`
	ActiveUnitID string `json:"active_unit_id,omitempty"`
	Reachable    []Cell `json:"reachable"`
	Path         []Cell `json:"path"`
}

// BoardState represents a complete snapshot of one board
type BoardState struct {
	ConfigName string        `json:"config_name"`
	Columns    int           `json:"columns"`
	Rows       int           `json:"rows"`
	CellSize   Vec2          `json:"cell_size"`
	Terrain    []string      `json:"terrain"`
	Units      []UnitState   `json:"units"`
	Selection  SelectionView `json:"selection"`
	Cursor     Cell          `json:"cursor"`
	Message    string        `json:"message"`
	TotalMoves int           `json:"total_moves"`
}

// MoveHistoryEntry represents a single committed move
type MoveHistoryEntry struct {
	UnitID     string `json:"unit_id"`
	From       Cell   `json:"from"`
	To         Cell   `json:"to"`
	Steps      int    `json:"steps"`
	Timestamp  int64  `json:"timestamp"`
	MoveNumber int    `json:"move_number"`
}

// EventType names a selection controller event
type EventType string

const (
	EventSelected      EventType = "selected"
	EventDeselected    EventType = "deselected"
	EventPreviewed     EventType = "previewed"
	EventMoveStarted   EventType = "move_started"
	EventMoveCompleted EventType = "move_completed"
)

// Event is emitted by the selection controller to its subscribers.
// Cell is the unit's cell for selection events and the destination for move events.
type Event struct {
	Type      EventType `json:"type"`
	UnitID    string    `json:"unit_id"`
	Cell      Cell      `json:"cell"`
	From      Cell      `json:"from"`
	Reachable []Cell    `json:"reachable,omitempty"`
	Path      Path      `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener receives controller events synchronously
type Listener func(Event)
