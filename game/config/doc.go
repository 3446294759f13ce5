// Package config provides board configuration management.
//
// The config package handles:
//   - Loading board definitions from JSON or YAML files
//   - Validation through engine.ValidateBoardConfig
//   - Default board selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Boards live in the configs directory as name.json, name.yaml or name.yml.
// Each board defines its dimensions, a layout of terrain characters
// (G=grass, R=road, F=forest, W=water, M=mountain, X=void), an optional
// legend override, and the starting units with optional per-unit move range.
//
// Default Board:
//
// The "skirmish" board is the default when present. Otherwise the first
// valid board by name is used, and an empty directory falls back to
// engine.DefaultBoardConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs", config.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//
//	board, err := manager.LoadConfig("crossing")
//	boards, err := manager.ListConfigs()
package config
