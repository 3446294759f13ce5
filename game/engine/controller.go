package engine

import "time"

// SelectionState is the phase of the selection controller
type SelectionState int

const (
	StateIdle SelectionState = iota
	StateSelected
	StateMoving
)

func (s SelectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateMoving:
		return "moving"
	default:
		return "unknown"
	}
}

// Animator plays a unit's traversal of a committed path. It must call finished
// exactly once when the walk is over; the controller tolerates repeats.
type Animator interface {
	WalkAlong(unitID string, path Path, finished func())
}

// AnimatorFunc adapts a function to the Animator interface
type AnimatorFunc func(unitID string, path Path, finished func())

// WalkAlong calls f
func (f AnimatorFunc) WalkAlong(unitID string, path Path, finished func()) {
	f(unitID, path, finished)
}

// InstantAnimator completes every walk before returning
type InstantAnimator struct{}

// WalkAlong calls finished immediately
func (InstantAnimator) WalkAlong(_ string, _ Path, finished func()) {
	finished()
}

// InputKind names a discrete input event
type InputKind int

const (
	InputCursorMoved InputKind = iota
	InputInteract
	InputCancel
)

// InputEvent is one discrete input delivered to the controller. Cell is unused for cancel.
type InputEvent struct {
	Kind InputKind
	Cell Cell
}

// SelectionController drives the Idle -> Selected -> Moving -> Idle cycle.
//
// The registry is written once per move, when Selected turns into Moving, and
// always before the animator sees the path. While Moving every input is dropped;
// only the animator's completion callback leads back to Idle.
type SelectionController struct {
	grid      *Grid
	terrain   Terrain
	registry  *UnitRegistry
	reach     *ReachabilitySolver
	paths     *PathSolver
	animator  Animator
	listeners []Listener
	now       func() time.Time

	state     SelectionState
	active    *Unit
	reachable *ReachableSet
	path      Path
	moveSeq   uint64
}

// NewSelectionController wires a controller to its board collaborators.
// A nil animator completes moves instantly.
func NewSelectionController(grid *Grid, terrain Terrain, registry *UnitRegistry, animator Animator) *SelectionController {
	if animator == nil {
		animator = InstantAnimator{}
	}
	return &SelectionController{
		grid:     grid,
		terrain:  terrain,
		registry: registry,
		reach:    NewReachabilitySolver(grid),
		paths:    NewPathSolver(grid),
		animator: animator,
		now:      time.Now,
		state:    StateIdle,
	}
}

// Subscribe registers a listener for controller events. Listeners run synchronously.
func (sc *SelectionController) Subscribe(l Listener) {
	sc.listeners = append(sc.listeners, l)
}

// State returns the current phase
func (sc *SelectionController) State() SelectionState {
	return sc.state
}

// ActiveUnit returns the selected or moving unit
func (sc *SelectionController) ActiveUnit() (*Unit, bool) {
	return sc.active, sc.active != nil
}

// Reachable returns the cached reachable set, nil unless Selected
func (sc *SelectionController) Reachable() *ReachableSet {
	return sc.reachable
}

// Path returns the previewed path while Selected or the committed one while Moving
func (sc *SelectionController) Path() Path {
	out := make(Path, len(sc.path))
	copy(out, sc.path)
	return out
}

// Snapshot renders the controller for overlay sinks
func (sc *SelectionController) Snapshot() SelectionView {
	view := SelectionView{
		State:     sc.state.String(),
		Reachable: sc.reachable.Cells(),
		Path:      sc.Path(),
	}
	if sc.active != nil {
		view.ActiveUnitID = sc.active.ID
	}
	return view
}

// HandleInput dispatches an input event and reports whether it changed anything
func (sc *SelectionController) HandleInput(ev InputEvent) bool {
	switch ev.Kind {
	case InputCursorMoved:
		return sc.CursorMoved(ev.Cell)
	case InputInteract:
		return sc.Interact(ev.Cell)
	case InputCancel:
		return sc.Cancel()
	default:
		return false
	}
}

// CursorMoved refreshes the path preview while a unit is selected
func (sc *SelectionController) CursorMoved(c Cell) bool {
	if sc.state != StateSelected {
		return false
	}
	sc.path = sc.paths.FindPath(sc.active.Cell, c)
	sc.emit(Event{
		Type:   EventPreviewed,
		UnitID: sc.active.ID,
		Cell:   c,
		From:   sc.active.Cell,
		Path:   sc.Path(),
	})
	return true
}

// Interact handles a confirm press on a cell
func (sc *SelectionController) Interact(c Cell) bool {
	switch sc.state {
	case StateIdle:
		u, ok := sc.registry.Get(c)
		if !ok {
			return false
		}
		sc.selectUnit(u)
		return true

	case StateSelected:
		if c == sc.active.Cell {
			sc.deselect()
			return true
		}
		if sc.registry.IsOccupied(c) || !sc.reachable.Contains(c) {
			return false
		}
		return sc.commit(c)

	default:
		return false
	}
}

// Cancel drops the current selection
func (sc *SelectionController) Cancel() bool {
	if sc.state != StateSelected {
		return false
	}
	sc.deselect()
	return true
}

func (sc *SelectionController) selectUnit(u *Unit) {
	sc.active = u
	u.Selected = true
	sc.reachable = sc.reach.Solve(u.Cell, u.MoveRange, sc.terrain.Walkable, sc.occupiedByOther(u))
	sc.paths.SetAllowed(sc.reachable)
	sc.path = nil
	sc.state = StateSelected

	sc.emit(Event{
		Type:      EventSelected,
		UnitID:    u.ID,
		Cell:      u.Cell,
		From:      u.Cell,
		Reachable: sc.reachable.Cells(),
	})
}

func (sc *SelectionController) deselect() {
	u := sc.active
	u.Selected = false
	sc.clearSelection()
	sc.active = nil
	sc.state = StateIdle

	sc.emit(Event{Type: EventDeselected, UnitID: u.ID, Cell: u.Cell, From: u.Cell})
}

func (sc *SelectionController) clearSelection() {
	sc.reachable = nil
	sc.paths.SetAllowed(nil)
	sc.path = nil
}

func (sc *SelectionController) commit(target Cell) bool {
	u := sc.active
	from := u.Cell

	path := sc.path
	if dest, ok := path.Destination(); !ok || dest != target || path[0] != from {
		path = sc.paths.FindPath(from, target)
	}
	if len(path) < 2 {
		return false
	}

	if err := sc.registry.MoveUnit(u, from, target); err != nil {
		return false
	}

	u.Selected = false
	sc.clearSelection()
	sc.path = path
	sc.state = StateMoving
	sc.moveSeq++
	seq := sc.moveSeq

	sc.emit(Event{
		Type:   EventMoveStarted,
		UnitID: u.ID,
		Cell:   target,
		From:   from,
		Path:   sc.Path(),
	})

	sc.animator.WalkAlong(u.ID, sc.Path(), func() {
		sc.finishMove(seq)
	})
	return true
}

func (sc *SelectionController) finishMove(seq uint64) {
	if sc.state != StateMoving || seq != sc.moveSeq {
		return
	}
	u := sc.active
	from := sc.path[0]
	sc.active = nil
	sc.path = nil
	sc.state = StateIdle

	sc.emit(Event{Type: EventMoveCompleted, UnitID: u.ID, Cell: u.Cell, From: from})
}

// occupiedByOther treats the moving unit's own cell as free
func (sc *SelectionController) occupiedByOther(u *Unit) func(Cell) bool {
	return func(c Cell) bool {
		other, ok := sc.registry.Get(c)
		return ok && other != u
	}
}

func (sc *SelectionController) emit(ev Event) {
	ev.Timestamp = sc.now()
	for _, l := range sc.listeners {
		l(ev)
	}
}
