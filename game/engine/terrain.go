package engine

import "fmt"

// Terrain answers whether a unit may stand on or pass through a cell
type Terrain interface {
	Walkable(c Cell) bool
}

// TerrainFunc adapts a plain function to the Terrain interface
type TerrainFunc func(c Cell) bool

// Walkable calls f(c)
func (f TerrainFunc) Walkable(c Cell) bool {
	return f(c)
}

// DefaultLegend maps layout characters to terrain types
var DefaultLegend = map[string]string{
	"G": string(Grass),
	"R": string(Road),
	"F": string(Forest),
	"W": string(Water),
	"M": string(Mountain),
	".": string(Void),
}

// TileMap is the terrain painted on a board, parsed from a layout
type TileMap struct {
	columns int
	rows    int
	tiles   []TerrainType
}

// NewTileMap parses layout rows into a tile map. Every row must have the same width.
// Legend entries override the default character mapping; nil uses DefaultLegend.
func NewTileMap(layout []string, legend map[string]string) (*TileMap, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("layout is empty")
	}
	columns := len(layout[0])
	tm := &TileMap{
		columns: columns,
		rows:    len(layout),
		tiles:   make([]TerrainType, columns*len(layout)),
	}
	for y, row := range layout {
		if len(row) != columns {
			return nil, fmt.Errorf("layout row %d has %d characters, expected %d", y+1, len(row), columns)
		}
		for x := 0; x < columns; x++ {
			terrain, ok := lookupTerrain(row[x], legend)
			if !ok {
				return nil, fmt.Errorf("invalid character '%c' at row %d, col %d", row[x], y+1, x+1)
			}
			tm.tiles[x+columns*y] = terrain
		}
	}
	return tm, nil
}

// At returns the terrain at a cell, or Void outside the map
func (tm *TileMap) At(c Cell) TerrainType {
	if c.X < 0 || c.X >= tm.columns || c.Y < 0 || c.Y >= tm.rows {
		return Void
	}
	return tm.tiles[c.X+tm.columns*c.Y]
}

// Walkable reports whether the tile at c permits entry
func (tm *TileMap) Walkable(c Cell) bool {
	return IsWalkable(tm.At(c))
}

// Rows renders the tile map back to layout characters
func (tm *TileMap) Rows() []string {
	out := make([]string, tm.rows)
	buf := make([]byte, tm.columns)
	for y := 0; y < tm.rows; y++ {
		for x := 0; x < tm.columns; x++ {
			buf[x] = charForTerrain(tm.tiles[x+tm.columns*y])
		}
		out[y] = string(buf)
	}
	return out
}

// Count returns how many tiles have the given terrain
func (tm *TileMap) Count(t TerrainType) int {
	n := 0
	for _, tile := range tm.tiles {
		if tile == t {
			n++
		}
	}
	return n
}

// IsWalkable reports whether a terrain type can be entered.
// Water, mountains and cells without a tile block movement.
func IsWalkable(t TerrainType) bool {
	switch t {
	case Grass, Road, Forest:
		return true
	default:
		return false
	}
}

// ParseTerrainType converts a terrain name from a legend
func ParseTerrainType(name string) (TerrainType, bool) {
	switch t := TerrainType(name); t {
	case Grass, Road, Forest, Water, Mountain, Void:
		return t, true
	}
	return "", false
}

func lookupTerrain(ch byte, legend map[string]string) (TerrainType, bool) {
	if name, ok := legend[string(ch)]; ok {
		return ParseTerrainType(name)
	}
	return terrainForChar(ch)
}

func terrainForChar(ch byte) (TerrainType, bool) {
	switch ch {
	case 'G':
		return Grass, true
	case 'R':
		return Road, true
	case 'F':
		return Forest, true
	case 'W':
		return Water, true
	case 'M':
		return Mountain, true
	case '.':
		return Void, true
	}
	return "", false
}

func charForTerrain(t TerrainType) byte {
	switch t {
	case Grass:
		return 'G'
	case Road:
		return 'R'
	case Forest:
		return 'F'
	case Water:
		return 'W'
	case Mountain:
		return 'M'
	default:
		return '.'
	}
}
