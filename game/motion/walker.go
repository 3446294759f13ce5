// Package motion animates committed moves in pixel space.
//
// A Walker implements engine.Animator. It carries each unit along the polyline
// through its path's cell centers at a fixed speed, and reports completion from
// Tick so callbacks run on the same goroutine that drives the board.
package motion

import (
	"math"
	"sort"

	"github.com/wricardo/tactics-grid/game/engine"
)

// DefaultSpeed is the walking speed in pixels per second
const DefaultSpeed = 600.0

type walk struct {
	points   []engine.Vec2
	segment  int
	offset   float64
	finished func()
}

func (w *walk) done() bool {
	return w.segment >= len(w.points)-1
}

func (w *walk) position() engine.Vec2 {
	if len(w.points) == 0 {
		return engine.Vec2{}
	}
	if w.done() {
		return w.points[len(w.points)-1]
	}
	a, b := w.points[w.segment], w.points[w.segment+1]
	length := distance(a, b)
	if length == 0 {
		return b
	}
	t := w.offset / length
	return engine.Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// advance moves the walk forward by dist pixels
func (w *walk) advance(dist float64) {
	for dist > 0 && !w.done() {
		left := distance(w.points[w.segment], w.points[w.segment+1]) - w.offset
		if dist >= left {
			dist -= left
			w.segment++
			w.offset = 0
			continue
		}
		w.offset += dist
		dist = 0
	}
}

// Walker plays unit walks. It is not safe for concurrent use.
type Walker struct {
	grid  *engine.Grid
	speed float64
	walks map[string]*walk
}

// NewWalker creates a walker for a grid. A non-positive speed uses DefaultSpeed.
func NewWalker(grid *engine.Grid, speed float64) *Walker {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Walker{
		grid:  grid,
		speed: speed,
		walks: make(map[string]*walk),
	}
}

// SetGrid binds the walker to a board's grid
func (w *Walker) SetGrid(grid *engine.Grid) {
	w.grid = grid
}

// Speed returns the walking speed in pixels per second
func (w *Walker) Speed() float64 {
	return w.speed
}

// WalkAlong starts a unit on a path. A walk already in flight for the same unit
// is finished first.
func (w *Walker) WalkAlong(unitID string, path engine.Path, finished func()) {
	if prev, ok := w.walks[unitID]; ok {
		delete(w.walks, unitID)
		if prev.finished != nil {
			prev.finished()
		}
	}

	points := make([]engine.Vec2, len(path))
	for i, c := range path {
		points[i] = w.grid.CellToMapCenter(c)
	}
	w.walks[unitID] = &walk{points: points, finished: finished}
}

// Tick advances every walk by dt seconds and fires completion callbacks.
// It returns how many walks finished.
func (w *Walker) Tick(dt float64) int {
	if len(w.walks) == 0 {
		return 0
	}

	ids := make([]string, 0, len(w.walks))
	for id := range w.walks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var callbacks []func()
	for _, id := range ids {
		wk := w.walks[id]
		if dt > 0 {
			wk.advance(w.speed * dt)
		}
		if wk.done() {
			delete(w.walks, id)
			callbacks = append(callbacks, wk.finished)
		}
	}

	// Callbacks may start new walks, so run them once the map is settled
	for _, fn := range callbacks {
		if fn != nil {
			fn()
		}
	}
	return len(callbacks)
}

// Position reports the animated pixel position of a walking unit
func (w *Walker) Position(unitID string) (engine.Vec2, bool) {
	wk, ok := w.walks[unitID]
	if !ok {
		return engine.Vec2{}, false
	}
	return wk.position(), true
}

// Active returns the number of walks in flight
func (w *Walker) Active() int {
	return len(w.walks)
}

func distance(a, b engine.Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
