// Command validate checks the board files in a configs directory. It checks:
//   - JSON/YAML structure and required fields
//   - Layout dimensions and terrain characters against the legend
//   - Units in bounds, on walkable terrain, one per cell
//   - Every unit can take at least one step from its starting cell
//   - Connectivity: all units stand in one walkable region
//
// Usage: validate [configs-dir] (defaults to ../configs)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/tactics-grid/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single board file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseBoardConfig(data, filepath.Ext(filePath))
	if err != nil {
		result.fail("Invalid %s: %v", strings.TrimPrefix(filepath.Ext(filePath), "."), err)
		return result
	}

	if err := engine.ValidateBoardConfig(config); err != nil {
		result.fail("%v", err)
		return result
	}

	if len(config.Units) == 0 {
		result.fail("Board has no units")
		return result
	}

	validateMobility(config, &result)
	validateConnectivity(config, &result)
	return result
}

// validateMobility reports units boxed in on their starting cell
func validateMobility(config *engine.BoardConfig, result *ValidationResult) {
	eng, err := engine.NewEngine(config, engine.InstantAnimator{})
	if err != nil {
		result.fail("Failed to build board: %v", err)
		return
	}

	stuck := 0
	for _, u := range eng.Units() {
		reach, err := eng.ReachableCells(u.ID)
		if err != nil {
			result.fail("%v", err)
			continue
		}
		if reach.Len() <= 1 {
			stuck++
			result.fail("Unit %s at %v cannot move (range %d)", u.ID, u.Cell, u.MoveRange)
		}
	}
	if stuck == 0 {
		result.info("Mobility: all %d units can move", len(eng.Units()))
	}
}

// validateConnectivity flood-fills walkable terrain from the first unit, ignoring
// other units, and reports units standing in a different region.
func validateConnectivity(config *engine.BoardConfig, result *ValidationResult) {
	tiles, err := engine.NewTileMap(config.Layout, config.Legend)
	if err != nil {
		result.fail("%v", err)
		return
	}
	grid, err := engine.NewGrid(config.Columns, config.Rows, engine.Vec2{X: 1, Y: 1})
	if err != nil {
		result.fail("%v", err)
		return
	}

	start := engine.Cell{X: config.Units[0].X, Y: config.Units[0].Y}
	region := engine.NewReachabilitySolver(grid).Solve(start, grid.Len(), tiles.Walkable, func(engine.Cell) bool { return false })

	var isolated []string
	for i, u := range config.Units {
		c := engine.Cell{X: u.X, Y: u.Y}
		if !region.Contains(c) {
			name := u.ID
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			isolated = append(isolated, fmt.Sprintf("Unit %s at %v", name, c))
		}
	}

	if len(isolated) > 0 {
		result.fail("Connectivity failure: %d/%d units cut off from %v", len(isolated), len(config.Units), start)
		for _, unit := range isolated {
			result.fail("Isolated: %s", unit)
		}
		return
	}
	result.info("Connectivity: all %d units share a region of %d walkable cells", len(config.Units), region.Len())
}

// boardFiles lists the JSON and YAML files in dir, sorted
func boardFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates each board file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := boardFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
