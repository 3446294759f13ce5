package engine

import "strings"

// ManhattanDistance calculates the Manhattan distance between two cells
func ManhattanDistance(from, to Cell) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Overlay markers used by RenderOverlay
const (
	MarkUnit      = 'U'
	MarkReachable = '*'
	MarkPath      = 'o'
	MarkCursor    = '+'
)

// RenderOverlay draws terrain rows with reachable cells, a path, units and the cursor
// stamped on top. Later layers win: reachable, path, units, cursor.
func RenderOverlay(terrain []string, reachable []Cell, path Path, units []Cell, cursor *Cell) []string {
	rows := make([][]byte, len(terrain))
	for y, row := range terrain {
		rows[y] = []byte(row)
	}

	stamp := func(c Cell, mark byte) {
		if c.Y < 0 || c.Y >= len(rows) || c.X < 0 || c.X >= len(rows[c.Y]) {
			return
		}
		rows[c.Y][c.X] = mark
	}

	for _, c := range reachable {
		stamp(c, MarkReachable)
	}
	for _, c := range path {
		stamp(c, MarkPath)
	}
	for _, c := range units {
		stamp(c, MarkUnit)
	}
	if cursor != nil {
		stamp(*cursor, MarkCursor)
	}

	out := make([]string, len(rows))
	for y, row := range rows {
		out[y] = string(row)
	}
	return out
}

// CountWalkable counts the walkable tiles in a set of layout rows
func CountWalkable(layout []string) int {
	n := 0
	for _, row := range layout {
		for i := 0; i < len(row); i++ {
			if t, ok := terrainForChar(row[i]); ok && IsWalkable(t) {
				n++
			}
		}
	}
	return n
}

// JoinRows joins rendered rows with newlines
func JoinRows(rows []string) string {
	return strings.Join(rows, "\n")
}
