package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four cursor steps
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection converts a direction name, case-insensitively
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("invalid direction %q: must be up, down, left or right", s)
}

// Offset returns the cell delta for one step
func (d Direction) Offset() Cell {
	switch d {
	case Up:
		return Cell{X: 0, Y: -1}
	case Down:
		return Cell{X: 0, Y: 1}
	case Left:
		return Cell{X: -1, Y: 0}
	case Right:
		return Cell{X: 1, Y: 0}
	}
	return Cell{}
}

// Cursor is the player's pointer on the board. It never leaves the grid.
type Cursor struct {
	grid *Grid
	cell Cell
}

// NewCursor places a cursor on the grid, clamping the start cell
func NewCursor(grid *Grid, start Cell) *Cursor {
	return &Cursor{grid: grid, cell: grid.Clamp(start)}
}

// Cell returns the cursor's current cell
func (c *Cursor) Cell() Cell {
	return c.cell
}

// MoveTo clamps the target onto the grid and reports whether the cursor moved
func (c *Cursor) MoveTo(target Cell) bool {
	target = c.grid.Clamp(target)
	if target == c.cell {
		return false
	}
	c.cell = target
	return true
}

// Step moves the cursor one cell in a direction
func (c *Cursor) Step(d Direction) bool {
	return c.MoveTo(c.cell.Add(d.Offset()))
}

// PointAt moves the cursor to the cell under a pixel position
func (c *Cursor) PointAt(pos Vec2) bool {
	return c.MoveTo(c.grid.MapToCell(pos))
}
