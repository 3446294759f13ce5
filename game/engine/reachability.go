package engine

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// ReachableSet is the set of cells one unit may stop on, computed at one instant.
// Cells are kept in breadth-first discovery order so renderings are stable.
type ReachableSet struct {
	origin  Cell
	cells   []Cell
	dist    map[Cell]int
	members mapset.Set[Cell]
}

func newReachableSet(origin Cell) *ReachableSet {
	return &ReachableSet{
		origin:  origin,
		dist:    make(map[Cell]int),
		members: mapset.New[Cell](),
	}
}

func (rs *ReachableSet) add(c Cell, d int) {
	rs.cells = append(rs.cells, c)
	rs.dist[c] = d
	rs.members.Put(c)
}

// Origin returns the cell the flood fill started from
func (rs *ReachableSet) Origin() Cell {
	return rs.origin
}

// Contains reports whether c is reachable. A nil set contains nothing.
func (rs *ReachableSet) Contains(c Cell) bool {
	if rs == nil {
		return false
	}
	return rs.members.Has(c)
}

// Distance returns the hop count from the origin to c
func (rs *ReachableSet) Distance(c Cell) (int, bool) {
	if rs == nil {
		return 0, false
	}
	d, ok := rs.dist[c]
	return d, ok
}

// Len returns the number of reachable cells
func (rs *ReachableSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.cells)
}

// Cells returns a copy of the reachable cells in discovery order
func (rs *ReachableSet) Cells() []Cell {
	if rs == nil {
		return []Cell{}
	}
	out := make([]Cell, len(rs.cells))
	copy(out, rs.cells)
	return out
}

// ReachabilitySolver runs the range-limited flood fill over a grid
type ReachabilitySolver struct {
	grid *Grid
}

// NewReachabilitySolver creates a solver bound to a grid
func NewReachabilitySolver(grid *Grid) *ReachabilitySolver {
	return &ReachabilitySolver{grid: grid}
}

// Solve returns every cell reachable from origin in at most moveRange orthogonal steps.
//
// The fill is breadth-first so the first time a cell is discovered is also its
// shortest hop count; a cell is enqueued exactly once. Out-of-bounds, non-walkable
// and occupied cells are walls: they are never added and never expanded. The
// occupied predicate must report false for the moving unit's own cell.
//
// An out-of-bounds origin or a negative range is a caller bug and panics.
func (s *ReachabilitySolver) Solve(origin Cell, moveRange int, walkable, occupied func(Cell) bool) *ReachableSet {
	if !s.grid.InBounds(origin) {
		panic(fmt.Sprintf("engine: reachability origin %v out of bounds", origin))
	}
	if moveRange < 0 {
		panic(fmt.Sprintf("engine: negative move range %d", moveRange))
	}

	result := newReachableSet(origin)
	if !walkable(origin) {
		return result
	}

	discovered := make([]bool, s.grid.Len())
	discovered[s.grid.AsIndex(origin)] = true
	result.add(origin, 0)

	type item struct {
		cell Cell
		dist int
	}
	queue := []item{{cell: origin, dist: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		next := current.dist + 1
		if next > moveRange {
			continue
		}

		for _, offset := range neighborOffsets {
			neighbor := current.cell.Add(offset)
			if !s.grid.InBounds(neighbor) {
				continue
			}
			idx := s.grid.AsIndex(neighbor)
			if discovered[idx] {
				continue
			}
			discovered[idx] = true

			if !walkable(neighbor) || occupied(neighbor) {
				continue
			}

			result.add(neighbor, next)
			queue = append(queue, item{cell: neighbor, dist: next})
		}
	}

	return result
}
