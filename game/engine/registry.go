package engine

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrCellOccupied is returned when a unit is placed or moved onto a taken cell
	ErrCellOccupied = errors.New("cell is occupied")
	// ErrDuplicateUnit is returned when two units share an ID
	ErrDuplicateUnit = errors.New("duplicate unit id")
	// ErrNotOccupant is returned when a move names a from-cell the unit is not standing on
	ErrNotOccupant = errors.New("unit is not on the given cell")
	// ErrOutOfBounds is returned for cells that are not on the grid
	ErrOutOfBounds = errors.New("cell is out of bounds")
)

// UnitRegistry is the authoritative cell to unit occupancy map.
// At most one unit stands on a cell, and for every entry registry[c].Cell == c.
type UnitRegistry struct {
	grid  *Grid
	cells map[Cell]*Unit
	ids   map[string]*Unit
}

// NewUnitRegistry creates an empty registry for a grid
func NewUnitRegistry(grid *Grid) *UnitRegistry {
	return &UnitRegistry{
		grid:  grid,
		cells: make(map[Cell]*Unit),
		ids:   make(map[string]*Unit),
	}
}

// Place puts a unit on a cell and sets its Cell
func (r *UnitRegistry) Place(u *Unit, c Cell) error {
	if !r.grid.InBounds(c) {
		return fmt.Errorf("place %s at %v: %w", u.ID, c, ErrOutOfBounds)
	}
	if other, ok := r.cells[c]; ok {
		return fmt.Errorf("place %s at %v (held by %s): %w", u.ID, c, other.ID, ErrCellOccupied)
	}
	if _, ok := r.ids[u.ID]; ok {
		return fmt.Errorf("place %s: %w", u.ID, ErrDuplicateUnit)
	}
	u.Cell = c
	r.cells[c] = u
	r.ids[u.ID] = u
	return nil
}

// Remove clears whatever unit is mapped to a cell
func (r *UnitRegistry) Remove(c Cell) {
	u, ok := r.cells[c]
	if !ok {
		return
	}
	delete(r.cells, c)
	delete(r.ids, u.ID)
}

// MoveUnit relocates a unit from one cell to another as a single step.
// All checks run before any mutation, so a failed move leaves the registry untouched.
func (r *UnitRegistry) MoveUnit(u *Unit, from, to Cell) error {
	if r.cells[from] != u || u.Cell != from {
		return fmt.Errorf("move %s from %v: %w", u.ID, from, ErrNotOccupant)
	}
	if !r.grid.InBounds(to) {
		return fmt.Errorf("move %s to %v: %w", u.ID, to, ErrOutOfBounds)
	}
	if from == to {
		return nil
	}
	if other, ok := r.cells[to]; ok {
		return fmt.Errorf("move %s to %v (held by %s): %w", u.ID, to, other.ID, ErrCellOccupied)
	}

	delete(r.cells, from)
	r.cells[to] = u
	u.Cell = to
	return nil
}

// IsOccupied reports whether any unit stands on c
func (r *UnitRegistry) IsOccupied(c Cell) bool {
	_, ok := r.cells[c]
	return ok
}

// Get returns the unit standing on c
func (r *UnitRegistry) Get(c Cell) (*Unit, bool) {
	u, ok := r.cells[c]
	return u, ok
}

// Unit looks a unit up by ID
func (r *UnitRegistry) Unit(id string) (*Unit, bool) {
	u, ok := r.ids[id]
	return u, ok
}

// Units returns every registered unit sorted by ID
func (r *UnitRegistry) Units() []*Unit {
	out := make([]*Unit, 0, len(r.ids))
	for _, u := range r.ids {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of placed units
func (r *UnitRegistry) Len() int {
	return len(r.cells)
}
