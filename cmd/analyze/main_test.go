package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/tactics-grid/game/engine"
)

func testBoard() *engine.BoardConfig {
	rangeTwo := 2
	return &engine.BoardConfig{
		Name:             "Test Board",
		Description:      "Two units facing over a wall",
		Columns:          5,
		Rows:             3,
		DefaultMoveRange: 1,
		Layout: []string{
			"GGMGG",
			"GGGGG",
			"WWWWW",
		},
		Units: []engine.UnitPlacement{
			{ID: "alpha", X: 0, Y: 0, MoveRange: &rangeTwo},
			{ID: "bravo", X: 4, Y: 0, MoveRange: &rangeTwo},
		},
	}
}

func TestAnalyzeBoard(t *testing.T) {
	report, err := analyzeBoard(testBoard())
	if err != nil {
		t.Fatalf("analyzeBoard failed: %v", err)
	}

	if report.Walkable != 9 {
		t.Errorf("Expected 9 walkable cells, got %d", report.Walkable)
	}
	if report.Terrain[engine.Water] != 5 || report.Terrain[engine.Mountain] != 1 {
		t.Errorf("Unexpected terrain mix %v", report.Terrain)
	}
	if len(report.Units) != 2 {
		t.Fatalf("Expected 2 unit reports, got %d", len(report.Units))
	}

	alpha := report.Units[0]
	if alpha.ID != "alpha" {
		t.Fatalf("Expected alpha first, got %s", alpha.ID)
	}
	// (1,0) (0,1) at 1 step, (1,1) at 2 steps
	if alpha.Reachable != 3 || alpha.MaxDistance != 2 {
		t.Errorf("Expected 3 reachable cells up to 2 steps, got %d up to %d", alpha.Reachable, alpha.MaxDistance)
	}
	wantOverlay := []string{"U*MGU", "**GGG", "WWWWW"}
	if strings.Join(alpha.Overlay, "|") != strings.Join(wantOverlay, "|") {
		t.Errorf("Unexpected overlay %v, want %v", alpha.Overlay, wantOverlay)
	}

	if len(report.Contested) != 0 {
		t.Errorf("Expected no contested cells, got %v", report.Contested)
	}
}

func TestAnalyzeBoard_Contested(t *testing.T) {
	config := testBoard()
	rangeThree := 3
	config.Units[0].MoveRange = &rangeThree
	config.Units[1].MoveRange = &rangeThree

	report, err := analyzeBoard(config)
	if err != nil {
		t.Fatalf("analyzeBoard failed: %v", err)
	}

	// Both reach (2,1) in 3 steps
	if len(report.Contested) != 1 || report.Contested[0] != (engine.Cell{X: 2, Y: 1}) {
		t.Errorf("Expected (2,1) contested, got %v", report.Contested)
	}
}

func TestAnalyzeConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `name: Pocket
description: One unit walled in
columns: 3
rows: 1
layout:
  - MGM
units:
  - id: stuck
    x: 1
    y: 0
`
	path := filepath.Join(dir, "pocket.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}

	report, err := analyzeConfig(path)
	if err != nil {
		t.Fatalf("analyzeConfig failed: %v", err)
	}

	var out bytes.Buffer
	printReport(&out, report)

	for _, want := range []string{
		"Name: Pocket",
		"Board: 3 x 1",
		"Terrain: grass=1 mountain=2",
		"Unit stuck at (1,0), range 6: 0 cells in reach",
		"WARNING: stuck cannot move",
		"  MUM",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in report:\n%s", want, out.String())
		}
	}
}

func TestAnalyzeConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"name": "bad"`), 0644); err != nil {
		t.Fatalf("Failed to write board: %v", err)
	}

	if _, err := analyzeConfig(path); err == nil {
		t.Error("Expected error for malformed board")
	}
}
