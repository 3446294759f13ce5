package engine

import (
	"container/heap"
	"fmt"
)

// Path is an ordered list of orthogonally adjacent cells. An empty path means no route.
type Path []Cell

// Destination returns the last cell of the path
func (p Path) Destination() (Cell, bool) {
	if len(p) == 0 {
		return Cell{}, false
	}
	return p[len(p)-1], true
}

// Steps returns the number of moves the path takes
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// PathSolver finds shortest orthogonal paths inside the currently allowed cells.
// Every cell outside the allowed set is solid; the start of a query is always passable.
type PathSolver struct {
	grid  *Grid
	solid []bool
}

// NewPathSolver creates a solver with every cell solid until SetAllowed is called
func NewPathSolver(grid *Grid) *PathSolver {
	ps := &PathSolver{grid: grid, solid: make([]bool, grid.Len())}
	ps.SetAllowed(nil)
	return ps
}

// SetAllowed rebuilds the solid mask from a reachable set. It must be called on
// every new selection; a nil set makes every cell solid.
func (ps *PathSolver) SetAllowed(rs *ReachableSet) {
	for i := range ps.solid {
		ps.solid[i] = true
	}
	if rs == nil {
		return
	}
	for _, c := range rs.cells {
		if ps.grid.InBounds(c) {
			ps.solid[ps.grid.AsIndex(c)] = false
		}
	}
}

// IsSolid reports whether c is blocked for path queries
func (ps *PathSolver) IsSolid(c Cell) bool {
	if !ps.grid.InBounds(c) {
		return true
	}
	return ps.solid[ps.grid.AsIndex(c)]
}

// FindPath returns a minimum-hop path from start to goal, or an empty path when the
// goal is out of bounds, solid, or cut off. An out-of-bounds start panics.
func (ps *PathSolver) FindPath(start, goal Cell) Path {
	if !ps.grid.InBounds(start) {
		panic(fmt.Sprintf("engine: path start %v out of bounds", start))
	}
	if start == goal {
		return Path{start}
	}
	if ps.IsSolid(goal) {
		return Path{}
	}

	n := ps.grid.Len()
	gScore := make([]int, n)
	parent := make([]int, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = -1
		parent[i] = -1
	}

	startIdx := ps.grid.AsIndex(start)
	goalIdx := ps.grid.AsIndex(goal)
	gScore[startIdx] = 0

	open := &openList{}
	seq := 0
	heap.Push(open, &pathNode{cell: start, g: 0, h: ManhattanDistance(start, goal), seq: seq})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		currentIdx := ps.grid.AsIndex(current.cell)
		if closed[currentIdx] {
			continue
		}
		closed[currentIdx] = true

		if currentIdx == goalIdx {
			return ps.reconstruct(parent, goalIdx)
		}

		for _, offset := range neighborOffsets {
			neighbor := current.cell.Add(offset)
			if !ps.grid.InBounds(neighbor) {
				continue
			}
			idx := ps.grid.AsIndex(neighbor)
			if closed[idx] || (ps.solid[idx] && idx != startIdx) {
				continue
			}
			g := current.g + 1
			if gScore[idx] >= 0 && g >= gScore[idx] {
				continue
			}
			gScore[idx] = g
			parent[idx] = currentIdx
			seq++
			heap.Push(open, &pathNode{cell: neighbor, g: g, h: ManhattanDistance(neighbor, goal), seq: seq})
		}
	}

	return Path{}
}

func (ps *PathSolver) reconstruct(parent []int, goalIdx int) Path {
	var reversed Path
	for idx := goalIdx; idx >= 0; idx = parent[idx] {
		reversed = append(reversed, Cell{X: idx % ps.grid.Columns, Y: idx / ps.grid.Columns})
	}
	path := make(Path, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}

// --- A* open list ---

type pathNode struct {
	cell Cell
	g, h int
	seq  int
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }

// Less orders by f, then by the heuristic so nodes nearer the goal win ties,
// then by insertion order so equal-cost paths are reproducible.
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	if ol[i].h != ol[j].h {
		return ol[i].h < ol[j].h
	}
	return ol[i].seq < ol[j].seq
}

func (ol openList) Swap(i, j int) { ol[i], ol[j] = ol[j], ol[i] }

func (ol *openList) Push(x any) {
	*ol = append(*ol, x.(*pathNode))
}

func (ol *openList) Pop() any {
	old := *ol
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*ol = old[:n-1]
	return item
}
