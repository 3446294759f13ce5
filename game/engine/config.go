package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateBoardConfig validates a board definition for correctness
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.Columns < MinBoardSize || config.Columns > MaxBoardSize {
		return fmt.Errorf("config validation: columns must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Columns)
	}
	if config.Rows < MinBoardSize || config.Rows > MaxBoardSize {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Rows)
	}
	if config.CellSize < 0 {
		return fmt.Errorf("config validation: cell_size must not be negative, got %d", config.CellSize)
	}
	if config.DefaultMoveRange < 0 || config.DefaultMoveRange > MaxMoveRange {
		return fmt.Errorf("config validation: default_move_range must be between 0 and %d, got %d", MaxMoveRange, config.DefaultMoveRange)
	}

	// Validate legend
	for key, name := range config.Legend {
		if len(key) != 1 {
			return fmt.Errorf("config validation: legend key '%s' must be a single character", key)
		}
		if _, ok := ParseTerrainType(name); !ok {
			return fmt.Errorf("config validation: legend['%s'] has unknown terrain '%s'", key, name)
		}
	}

	// Validate layout
	if len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows, got %d", config.Rows, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.Columns {
			return fmt.Errorf("config validation: row %d must have %d characters, got %d", i+1, config.Columns, len(row))
		}
	}
	tiles, err := NewTileMap(config.Layout, config.Legend)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Validate units: in bounds, on walkable ground, one per cell
	seenCells := make(map[Cell]int)
	seenIDs := make(map[string]int)
	for i, u := range config.Units {
		c := Cell{X: u.X, Y: u.Y}
		if u.X < 0 || u.X >= config.Columns || u.Y < 0 || u.Y >= config.Rows {
			return fmt.Errorf("config validation: unit %d at %v is out of bounds", i+1, c)
		}
		if !tiles.Walkable(c) {
			return fmt.Errorf("config validation: unit %d at %v stands on %s", i+1, c, tiles.At(c))
		}
		if prev, ok := seenCells[c]; ok {
			return fmt.Errorf("config validation: units %d and %d share cell %v: %w", prev, i+1, c, ErrCellOccupied)
		}
		seenCells[c] = i + 1
		if u.ID != "" {
			if prev, ok := seenIDs[u.ID]; ok {
				return fmt.Errorf("config validation: units %d and %d share id '%s': %w", prev, i+1, u.ID, ErrDuplicateUnit)
			}
			seenIDs[u.ID] = i + 1
		}
		if u.MoveRange != nil && (*u.MoveRange < 0 || *u.MoveRange > MaxMoveRange) {
			return fmt.Errorf("config validation: unit %d move_range must be between 0 and %d, got %d", i+1, MaxMoveRange, *u.MoveRange)
		}
	}

	return nil
}

// LoadBoardConfig loads a board definition from a JSON or YAML file, chosen by extension
func LoadBoardConfig(filename string) (*BoardConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseBoardConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseBoardConfig decodes a board definition. ext selects YAML for ".yaml"/".yml"
// and JSON otherwise.
func ParseBoardConfig(data []byte, ext string) (*BoardConfig, error) {
	var config BoardConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// DefaultBoardConfig returns the built-in board used when no file is given
func DefaultBoardConfig() *BoardConfig {
	archerRange := 4
	return &BoardConfig{
		Name:             "default",
		Description:      "A small field split by a river with a single bridge",
		Columns:          10,
		Rows:             8,
		CellSize:         DefaultCellSize,
		DefaultMoveRange: DefaultMoveRange,
		Layout: []string{
			"GGGGWGGGGG",
			"GFFGWGGMMG",
			"GFGGWGGMGG",
			"GGGGRRRRGG",
			"GGGGWGGGGG",
			"GMMGWGFFGG",
			"GGGGWGFGGG",
			"GGGGWGGGGG",
		},
		Units: []UnitPlacement{
			{ID: "knight", Name: "Knight", X: 1, Y: 3},
			{ID: "archer", Name: "Archer", X: 2, Y: 6, MoveRange: &archerRange},
			{ID: "scout", Name: "Scout", X: 8, Y: 3},
		},
	}
}

// effectiveMoveRange resolves a placement's range against the board default
func (config *BoardConfig) effectiveMoveRange(p UnitPlacement) int {
	if p.MoveRange != nil {
		return *p.MoveRange
	}
	if config.DefaultMoveRange > 0 {
		return config.DefaultMoveRange
	}
	return DefaultMoveRange
}

// effectiveCellSize returns the pixel size of a cell, falling back to the default
func (config *BoardConfig) effectiveCellSize() Vec2 {
	size := config.CellSize
	if size <= 0 {
		size = DefaultCellSize
	}
	return Vec2{X: float64(size), Y: float64(size)}
}
