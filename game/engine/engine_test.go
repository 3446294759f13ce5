package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(createTestConfig(), nil)
	require.NoError(t, err)

	state := e.GetState()
	assert.Equal(t, "test", state.ConfigName)
	assert.Equal(t, 5, state.Columns)
	assert.Equal(t, 5, state.Rows)
	assert.Equal(t, Vec2{X: 32, Y: 32}, state.CellSize)
	assert.Equal(t, "GGWGG", state.Terrain[2])
	assert.Equal(t, "idle", state.Selection.State)
	require.Len(t, state.Units, 2)
	assert.Equal(t, "alpha", state.Units[0].ID)
	assert.Equal(t, 2, state.Units[0].MoveRange)
	assert.Equal(t, Vec2{X: 16, Y: 16}, state.Units[0].Position)
	assert.Equal(t, Cell{X: 0, Y: 0}, state.Cursor, "cursor starts on the first unit")
	assert.Equal(t, 0, state.TotalMoves)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Units[1].X, config.Units[1].Y = 0, 0

	_, err := NewEngine(config, nil)
	assert.ErrorIs(t, err, ErrCellOccupied, "duplicate placement fails fast")
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, "default", e.GetConfig().Name)
	assert.Len(t, e.Units(), 3)
}

func TestNewEngine_UnitDefaults(t *testing.T) {
	config := createTestConfig()
	config.DefaultMoveRange = 0
	config.Units = []UnitPlacement{{X: 1, Y: 1}, {X: 3, Y: 3}}

	e, err := NewEngine(config, nil)
	require.NoError(t, err)

	units := e.Units()
	require.Len(t, units, 2)
	assert.Equal(t, "unit_1", units[0].ID)
	assert.Equal(t, "unit_1", units[0].Name)
	assert.Equal(t, DefaultMoveRange, units[0].MoveRange)
	assert.Equal(t, "unit_2", units[1].ID)
}

func TestEngine_SelectPreviewAndMove(t *testing.T) {
	anim := &recordingAnimator{}
	e, err := NewEngine(createTestConfig(), anim)
	require.NoError(t, err)

	require.True(t, e.InteractAt(Cell{X: 0, Y: 0}))
	state := e.GetState()
	assert.Equal(t, "selected", state.Selection.State)
	assert.Equal(t, "alpha", state.Selection.ActiveUnitID)
	assert.Len(t, state.Selection.Reachable, 6)
	assert.True(t, state.Units[0].Selected)

	require.True(t, e.StepCursor(Right))
	require.True(t, e.StepCursor(Down))
	assert.Equal(t, []Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, e.GetState().Selection.Path)

	require.True(t, e.Interact())
	assert.True(t, e.IsMoving())
	state = e.GetState()
	assert.Equal(t, Cell{X: 1, Y: 1}, state.Units[0].Cell)
	assert.True(t, state.Units[0].Moving)
	assert.Equal(t, 1, state.TotalMoves)

	last := e.GetLastMove()
	require.NotNil(t, last)
	assert.Equal(t, "alpha", last.UnitID)
	assert.Equal(t, Cell{X: 0, Y: 0}, last.From)
	assert.Equal(t, Cell{X: 1, Y: 1}, last.To)
	assert.Equal(t, 2, last.Steps)
	assert.Equal(t, 1, last.MoveNumber)

	anim.last(t).finished()
	assert.False(t, e.IsMoving())
	assert.False(t, e.GetState().Units[0].Moving)

	var types []EventType
	for _, ev := range e.DrainEvents() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventSelected, EventPreviewed, EventPreviewed, EventMoveStarted, EventMoveCompleted}, types)
	assert.Empty(t, e.DrainEvents(), "drain clears the queue")
}

func TestEngine_InteractMessages(t *testing.T) {
	anim := &recordingAnimator{}
	e, err := NewEngine(createTestConfig(), anim)
	require.NoError(t, err)

	assert.False(t, e.InteractAt(Cell{X: 2, Y: 3}))
	assert.Contains(t, e.GetState().Message, "Nothing to select")

	assert.False(t, e.InteractAt(Cell{X: 9, Y: 0}))
	assert.Contains(t, e.GetState().Message, "off the board")

	require.True(t, e.InteractAt(Cell{X: 0, Y: 0}))
	assert.False(t, e.InteractAt(Cell{X: 4, Y: 4}))
	assert.Contains(t, e.GetState().Message, "occupied")
	assert.False(t, e.InteractAt(Cell{X: 3, Y: 3}))
	assert.Contains(t, e.GetState().Message, "out of reach")

	require.True(t, e.InteractAt(Cell{X: 0, Y: 1}))
	assert.False(t, e.InteractAt(Cell{X: 4, Y: 4}))
	assert.Contains(t, e.GetState().Message, "still moving")
}

func TestEngine_Reset(t *testing.T) {
	anim := &recordingAnimator{}
	e, err := NewEngine(createTestConfig(), anim)
	require.NoError(t, err)

	require.True(t, e.InteractAt(Cell{X: 0, Y: 0}))
	require.True(t, e.InteractAt(Cell{X: 2, Y: 0}))

	assert.ErrorIs(t, e.Reset(), ErrMoveInProgress)

	anim.last(t).finished()
	require.NoError(t, e.Reset())

	state := e.GetState()
	assert.Equal(t, Cell{X: 0, Y: 0}, state.Units[0].Cell)
	assert.Equal(t, "idle", state.Selection.State)
	assert.Len(t, e.GetMoveHistory(), 1, "history survives reset")
	assert.Equal(t, 1, state.TotalMoves)
}

func TestEngine_CancelAndPointCursor(t *testing.T) {
	e, err := NewEngine(createTestConfig(), nil)
	require.NoError(t, err)

	require.True(t, e.Interact(), "cursor starts on alpha")
	require.True(t, e.PointCursor(Vec2{X: 40, Y: 8}))
	assert.Equal(t, Cell{X: 1, Y: 0}, e.GetState().Cursor)
	require.True(t, e.Cancel())
	assert.Equal(t, "idle", e.GetState().Selection.State)
	assert.False(t, e.Cancel())
}

func TestEngine_InstantMoveCompletes(t *testing.T) {
	e, err := NewEngine(createTestConfig(), nil)
	require.NoError(t, err)

	require.True(t, e.InteractAt(Cell{X: 4, Y: 4}))
	require.True(t, e.InteractAt(Cell{X: 4, Y: 2}))
	assert.False(t, e.IsMoving())

	bravo := e.GetState().Units[1]
	assert.Equal(t, "bravo", bravo.ID)
	assert.Equal(t, Cell{X: 4, Y: 2}, bravo.Cell)
	assert.Contains(t, e.GetState().Message, "arrived")
}

func TestEngine_ReachableCells(t *testing.T) {
	e, err := NewEngine(createTestConfig(), nil)
	require.NoError(t, err)

	rs, err := e.ReachableCells("bravo")
	require.NoError(t, err)
	assert.Equal(t, Cell{X: 4, Y: 4}, rs.Origin())
	assert.Equal(t, 6, rs.Len())
	assert.Equal(t, "idle", e.GetState().Selection.State, "query does not select")

	_, err = e.ReachableCells("nobody")
	assert.ErrorIs(t, err, ErrUnitNotFound)
}

func TestEngine_HistoryIsBounded(t *testing.T) {
	config := createTestConfig()
	config.Layout[2] = "GGGGG"
	e, err := NewEngine(config, nil)
	require.NoError(t, err)

	targets := []Cell{{X: 1, Y: 0}, {X: 0, Y: 0}}
	for i := 0; i < MaxHistory+10; i++ {
		require.True(t, e.InteractAt(targets[(i+1)%2]), "select at move %d", i)
		require.True(t, e.InteractAt(targets[i%2]), "commit at move %d", i)
	}
	assert.Len(t, e.GetMoveHistory(), MaxHistory)
	assert.Equal(t, MaxHistory+10, e.GetLastMove().MoveNumber)
}
