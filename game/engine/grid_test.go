package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_RejectsMalformedSize(t *testing.T) {
	tests := []struct {
		name     string
		columns  int
		rows     int
		cellSize Vec2
	}{
		{"zero columns", 0, 5, Vec2{X: 32, Y: 32}},
		{"negative rows", 5, -1, Vec2{X: 32, Y: 32}},
		{"zero cell width", 5, 5, Vec2{X: 0, Y: 32}},
		{"negative cell height", 5, 5, Vec2{X: 32, Y: -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.columns, tt.rows, tt.cellSize)
			assert.Error(t, err)
		})
	}
}

func TestGrid_MapToCell(t *testing.T) {
	g := mustGrid(t, 10, 8)

	tests := []struct {
		pos  Vec2
		want Cell
	}{
		{Vec2{X: 0, Y: 0}, Cell{X: 0, Y: 0}},
		{Vec2{X: 31.9, Y: 31.9}, Cell{X: 0, Y: 0}},
		{Vec2{X: 32, Y: 64}, Cell{X: 1, Y: 2}},
		{Vec2{X: 100, Y: 40}, Cell{X: 3, Y: 1}},
		{Vec2{X: -1, Y: -0.5}, Cell{X: -1, Y: -1}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.MapToCell(tt.pos), "MapToCell(%v)", tt.pos)
	}
}

func TestGrid_CellToMapCenter(t *testing.T) {
	g, err := NewGrid(4, 4, Vec2{X: 16, Y: 24})
	require.NoError(t, err)

	assert.Equal(t, Vec2{X: 8, Y: 12}, g.CellToMapCenter(Cell{X: 0, Y: 0}))
	assert.Equal(t, Vec2{X: 56, Y: 84}, g.CellToMapCenter(Cell{X: 3, Y: 3}))

	// The center always maps back to its own cell
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			c := Cell{X: x, Y: y}
			assert.Equal(t, c, g.MapToCell(g.CellToMapCenter(c)))
		}
	}
}

func TestGrid_ClampAndBounds(t *testing.T) {
	g := mustGrid(t, 5, 3)

	assert.Equal(t, Cell{X: 0, Y: 0}, g.Clamp(Cell{X: -3, Y: -9}))
	assert.Equal(t, Cell{X: 4, Y: 2}, g.Clamp(Cell{X: 7, Y: 3}))
	assert.Equal(t, Cell{X: 2, Y: 1}, g.Clamp(Cell{X: 2, Y: 1}))

	assert.True(t, g.InBounds(Cell{X: 0, Y: 0}))
	assert.True(t, g.InBounds(Cell{X: 4, Y: 2}))
	assert.False(t, g.InBounds(Cell{X: 5, Y: 0}))
	assert.False(t, g.InBounds(Cell{X: 0, Y: 3}))
	assert.False(t, g.InBounds(Cell{X: -1, Y: 1}))

	assert.Equal(t, 15, g.Len())
	assert.Equal(t, 7, g.AsIndex(Cell{X: 2, Y: 1}))
}
