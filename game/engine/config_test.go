package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *BoardConfig {
	return &BoardConfig{
		Name:             "test",
		Description:      "Configuration for engine tests",
		Columns:          5,
		Rows:             5,
		CellSize:         32,
		DefaultMoveRange: 2,
		Layout: []string{
			"GGGGG",
			"GGGGG",
			"GGWGG",
			"GGGGG",
			"GGGGG",
		},
		Units: []UnitPlacement{
			{ID: "alpha", Name: "Alpha", X: 0, Y: 0},
			{ID: "bravo", Name: "Bravo", X: 4, Y: 4},
		},
	}
}

func TestValidateBoardConfig_Valid(t *testing.T) {
	assert.NoError(t, ValidateBoardConfig(createTestConfig()))
	assert.NoError(t, ValidateBoardConfig(DefaultBoardConfig()))
}

func TestValidateBoardConfig_Invalid(t *testing.T) {
	negative := -1
	tooFar := MaxMoveRange + 1

	tests := []struct {
		name   string
		mutate func(c *BoardConfig)
	}{
		{"missing name", func(c *BoardConfig) { c.Name = "" }},
		{"missing description", func(c *BoardConfig) { c.Description = "" }},
		{"zero columns", func(c *BoardConfig) { c.Columns = 0 }},
		{"too many rows", func(c *BoardConfig) { c.Rows = MaxBoardSize + 1 }},
		{"negative cell size", func(c *BoardConfig) { c.CellSize = -3 }},
		{"default range too large", func(c *BoardConfig) { c.DefaultMoveRange = MaxMoveRange + 1 }},
		{"layout row count", func(c *BoardConfig) { c.Layout = c.Layout[:4] }},
		{"layout row width", func(c *BoardConfig) { c.Layout[1] = "GGGG" }},
		{"unknown character", func(c *BoardConfig) { c.Layout[0] = "GGXGG" }},
		{"legend key too long", func(c *BoardConfig) { c.Legend = map[string]string{"GG": "grass"} }},
		{"legend unknown terrain", func(c *BoardConfig) { c.Legend = map[string]string{"L": "lava"} }},
		{"unit out of bounds", func(c *BoardConfig) { c.Units[0].X = 5 }},
		{"unit on water", func(c *BoardConfig) { c.Units[0].X, c.Units[0].Y = 2, 2 }},
		{"units share a cell", func(c *BoardConfig) { c.Units[1].X, c.Units[1].Y = 0, 0 }},
		{"units share an id", func(c *BoardConfig) { c.Units[1].ID = "alpha" }},
		{"negative unit range", func(c *BoardConfig) { c.Units[0].MoveRange = &negative }},
		{"unit range too large", func(c *BoardConfig) { c.Units[0].MoveRange = &tooFar }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.mutate(config)
			assert.Error(t, ValidateBoardConfig(config))
		})
	}

	assert.Error(t, ValidateBoardConfig(nil))
}

func TestValidateBoardConfig_SharedCellIsOccupancyError(t *testing.T) {
	config := createTestConfig()
	config.Units[1].X, config.Units[1].Y = 0, 0
	assert.ErrorIs(t, ValidateBoardConfig(config), ErrCellOccupied)
}

func TestValidateBoardConfig_CustomLegend(t *testing.T) {
	config := createTestConfig()
	config.Legend = map[string]string{"~": "water", "#": "mountain"}
	config.Layout[0] = "GG~#G"
	require.NoError(t, ValidateBoardConfig(config))

	tiles, err := NewTileMap(config.Layout, config.Legend)
	require.NoError(t, err)
	assert.Equal(t, Water, tiles.At(Cell{X: 2, Y: 0}))
	assert.Equal(t, Mountain, tiles.At(Cell{X: 3, Y: 0}))
}

func TestLoadBoardConfig_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "board.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"name": "json-board",
		"description": "loaded from json",
		"columns": 3,
		"rows": 2,
		"layout": ["GGG", "GWG"],
		"units": [{"id": "a", "x": 0, "y": 0, "move_range": 1}]
	}`), 0644))

	yamlPath := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`name: yaml-board
description: loaded from yaml
columns: 3
rows: 2
layout:
  - GGG
  - GMG
units:
  - id: a
    x: 2
    y: 1
`), 0644))

	jsonConfig, err := LoadBoardConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "json-board", jsonConfig.Name)
	require.NotNil(t, jsonConfig.Units[0].MoveRange)
	assert.Equal(t, 1, *jsonConfig.Units[0].MoveRange)

	yamlConfig, err := LoadBoardConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "yaml-board", yamlConfig.Name)
	assert.Equal(t, 2, yamlConfig.Units[0].X)
	assert.Nil(t, yamlConfig.Units[0].MoveRange)
}

func TestLoadBoardConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadBoardConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"name": `), 0644))
	_, err = LoadBoardConfig(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("name: x\ncolumns: 0\n"), 0644))
	_, err = LoadBoardConfig(invalid)
	assert.Error(t, err)
}

func TestLoadBoardConfig_ConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`{"name":"moved","description":"d","columns":1,"rows":1,"layout":["G"],"units":[]}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "moved.json"), data, 0644))
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadBoardConfig("configs/moved.json")
	require.NoError(t, err)
	assert.Equal(t, "moved", config.Name)
}
