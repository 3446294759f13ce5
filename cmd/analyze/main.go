// Command analyze prints quick, human-readable heuristics about the board files
// in the project's configs directory: dimensions, terrain mix, and for every
// unit the cells it can reach from its starting position drawn as an ASCII
// overlay. Cells several units can reach are reported as contested.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/tactics-grid/game/engine"
)

// UnitReport summarizes one unit's starting reach
type UnitReport struct {
	ID          string
	Cell        engine.Cell
	MoveRange   int
	Reachable   int
	MaxDistance int
	Overlay     []string
}

// BoardReport summarizes one board
type BoardReport struct {
	Name      string
	Columns   int
	Rows      int
	Terrain   map[engine.TerrainType]int
	Walkable  int
	Units     []UnitReport
	Contested []engine.Cell
}

var terrainOrder = []engine.TerrainType{
	engine.Grass, engine.Road, engine.Forest, engine.Water, engine.Mountain, engine.Void,
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(configDir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	if len(files) == 0 {
		fmt.Printf("No board files found in %s\n", configDir)
		return
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		report, err := analyzeConfig(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printReport(os.Stdout, report)
	}
}

func analyzeConfig(path string) (*BoardReport, error) {
	config, err := engine.LoadBoardConfig(path)
	if err != nil {
		return nil, err
	}
	return analyzeBoard(config)
}

func analyzeBoard(config *engine.BoardConfig) (*BoardReport, error) {
	eng, err := engine.NewEngine(config, engine.InstantAnimator{})
	if err != nil {
		return nil, err
	}

	tiles := eng.Terrain()
	report := &BoardReport{
		Name:     config.Name,
		Columns:  config.Columns,
		Rows:     config.Rows,
		Terrain:  make(map[engine.TerrainType]int),
		Walkable: engine.CountWalkable(tiles.Rows()),
	}
	for _, t := range terrainOrder {
		if n := tiles.Count(t); n > 0 {
			report.Terrain[t] = n
		}
	}

	units := eng.Units()
	unitCells := make([]engine.Cell, 0, len(units))
	for _, u := range units {
		unitCells = append(unitCells, u.Cell)
	}

	seen := mapset.New[engine.Cell]()
	contested := mapset.New[engine.Cell]()
	for _, u := range units {
		reach, err := eng.ReachableCells(u.ID)
		if err != nil {
			return nil, err
		}

		ur := UnitReport{
			ID:        u.ID,
			Cell:      u.Cell,
			MoveRange: u.MoveRange,
			Reachable: reach.Len() - 1,
			Overlay:   engine.RenderOverlay(tiles.Rows(), reach.Cells(), nil, unitCells, nil),
		}
		for _, c := range reach.Cells() {
			if d, _ := reach.Distance(c); d > ur.MaxDistance {
				ur.MaxDistance = d
			}
			if c == u.Cell {
				continue
			}
			if seen.Has(c) {
				contested.Put(c)
			}
			seen.Put(c)
		}
		report.Units = append(report.Units, ur)
	}

	contested.Each(func(c engine.Cell) {
		report.Contested = append(report.Contested, c)
	})
	sort.Slice(report.Contested, func(i, j int) bool {
		a, b := report.Contested[i], report.Contested[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	return report, nil
}

func printReport(w io.Writer, report *BoardReport) {
	fmt.Fprintf(w, "Name: %s\n", report.Name)
	fmt.Fprintf(w, "Board: %d x %d\n", report.Columns, report.Rows)

	var mix []string
	for _, t := range terrainOrder {
		if n, ok := report.Terrain[t]; ok {
			mix = append(mix, fmt.Sprintf("%s=%d", t, n))
		}
	}
	fmt.Fprintf(w, "Terrain: %s\n", strings.Join(mix, " "))
	fmt.Fprintf(w, "Walkable cells: %d/%d\n", report.Walkable, report.Columns*report.Rows)

	for _, u := range report.Units {
		fmt.Fprintf(w, "\nUnit %s at %v, range %d: %d cells in reach, farthest %d steps\n",
			u.ID, u.Cell, u.MoveRange, u.Reachable, u.MaxDistance)
		if u.Reachable == 0 {
			fmt.Fprintf(w, "⚠️  WARNING: %s cannot move\n", u.ID)
		}
		for _, row := range u.Overlay {
			fmt.Fprintf(w, "  %s\n", row)
		}
	}

	if len(report.Contested) > 0 {
		fmt.Fprintf(w, "\nContested cells (reachable by 2+ units): %d\n", len(report.Contested))
		for i, c := range report.Contested {
			if i == 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(report.Contested)-5)
				break
			}
			fmt.Fprintf(w, "   %v\n", c)
		}
	} else {
		fmt.Fprintf(w, "\n✅ No cell is reachable by more than one unit\n")
	}
}
