package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openLayout(columns, rows int) []string {
	layout := make([]string, rows)
	for y := range layout {
		layout[y] = strings.Repeat("G", columns)
	}
	return layout
}

func mustGrid(t *testing.T, columns, rows int) *Grid {
	t.Helper()
	g, err := NewGrid(columns, rows, Vec2{X: 32, Y: 32})
	require.NoError(t, err)
	return g
}

func allWalkable(Cell) bool { return true }

func noneOccupied(Cell) bool { return false }

func cellSet(cells ...Cell) map[Cell]bool {
	m := make(map[Cell]bool, len(cells))
	for _, c := range cells {
		m[c] = true
	}
	return m
}

// recordingAnimator keeps every walk it is handed and never finishes on its own
type recordingAnimator struct {
	walks []recordedWalk
	// onWalk runs inside WalkAlong, before it returns
	onWalk func(unitID string, path Path)
}

type recordedWalk struct {
	unitID   string
	path     Path
	finished func()
}

func (a *recordingAnimator) WalkAlong(unitID string, path Path, finished func()) {
	if a.onWalk != nil {
		a.onWalk(unitID, path)
	}
	a.walks = append(a.walks, recordedWalk{unitID: unitID, path: path, finished: finished})
}

func (a *recordingAnimator) last(t *testing.T) recordedWalk {
	t.Helper()
	require.NotEmpty(t, a.walks, "animator was never invoked")
	return a.walks[len(a.walks)-1]
}

type testBoard struct {
	grid       *Grid
	tiles      *TileMap
	registry   *UnitRegistry
	controller *SelectionController
	animator   *recordingAnimator
	events     []Event
}

// newTestBoard places units on their Cell and wires a controller with a recording animator
func newTestBoard(t *testing.T, layout []string, units ...*Unit) *testBoard {
	t.Helper()
	tiles, err := NewTileMap(layout, nil)
	require.NoError(t, err)
	grid := mustGrid(t, len(layout[0]), len(layout))

	registry := NewUnitRegistry(grid)
	for _, u := range units {
		require.NoError(t, registry.Place(u, u.Cell))
	}

	b := &testBoard{
		grid:     grid,
		tiles:    tiles,
		registry: registry,
		animator: &recordingAnimator{},
	}
	b.controller = NewSelectionController(grid, tiles, registry, b.animator)
	b.controller.Subscribe(func(ev Event) { b.events = append(b.events, ev) })
	return b
}

func (b *testBoard) eventTypes() []EventType {
	out := make([]EventType, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Type
	}
	return out
}
