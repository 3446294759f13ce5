package engine

import (
	"fmt"
	"math"
)

// Grid holds the board dimensions and the pixel size of a cell.
// It is shared by reference with both solvers and never changes after creation.
type Grid struct {
	Columns  int
	Rows     int
	CellSize Vec2
}

// NewGrid creates a grid, rejecting malformed sizes
func NewGrid(columns, rows int, cellSize Vec2) (*Grid, error) {
	if columns <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", columns, rows)
	}
	if cellSize.X <= 0 || cellSize.Y <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %vx%v", cellSize.X, cellSize.Y)
	}
	return &Grid{Columns: columns, Rows: rows, CellSize: cellSize}, nil
}

// MapToCell returns the cell containing a pixel position
func (g *Grid) MapToCell(pos Vec2) Cell {
	return Cell{
		X: int(math.Floor(pos.X / g.CellSize.X)),
		Y: int(math.Floor(pos.Y / g.CellSize.Y)),
	}
}

// CellToMapCenter returns the pixel position of a cell's center
func (g *Grid) CellToMapCenter(c Cell) Vec2 {
	return Vec2{
		X: float64(c.X)*g.CellSize.X + g.CellSize.X/2,
		Y: float64(c.Y)*g.CellSize.Y + g.CellSize.Y/2,
	}
}

// Clamp makes a cell fit within the grid bounds
func (g *Grid) Clamp(c Cell) Cell {
	return Cell{
		X: clampInt(c.X, 0, g.Columns-1),
		Y: clampInt(c.Y, 0, g.Rows-1),
	}
}

// InBounds reports whether a cell lies on the grid
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < g.Columns && c.Y >= 0 && c.Y < g.Rows
}

// AsIndex returns the row-major index of an in-bounds cell
func (g *Grid) AsIndex(c Cell) int {
	return c.X + g.Columns*c.Y
}

// Len returns the number of cells on the grid
func (g *Grid) Len() int {
	return g.Columns * g.Rows
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
