package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/tactics-grid/game/engine"
)

func createValidConfig() *engine.BoardConfig {
	return &engine.BoardConfig{
		Name:             "Test Config",
		Description:      "Test configuration",
		Columns:          5,
		Rows:             5,
		DefaultMoveRange: 3,
		Layout: []string{
			"GGGGG",
			"GRRRG",
			"GRWRG",
			"GRRRG",
			"GGFGG",
		},
		Units: []engine.UnitPlacement{
			{ID: "alpha", X: 0, Y: 0},
			{ID: "bravo", X: 4, Y: 4},
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.BoardConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "default", createValidConfig())

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in board", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Name != engine.DefaultBoardConfig().Name {
			t.Errorf("Expected built-in default, got %q", defaultConfig.Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "default", createValidConfig())

	openConfig := createValidConfig()
	openConfig.Name = "Open"
	openConfig.DefaultMoveRange = 5
	writeConfigFile(t, dir, "open", openConfig)

	yamlConfig := createValidConfig()
	yamlConfig.Name = "From YAML"
	writeConfigFile(t, dir, "hills.yaml", yamlConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("open")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Open" {
			t.Errorf("Expected config name 'Open', got '%s'", config.Name)
		}
		if config.DefaultMoveRange != 5 {
			t.Errorf("Expected default move range 5, got %d", config.DefaultMoveRange)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("open.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Open" {
			t.Errorf("Expected config name 'Open', got '%s'", config.Name)
		}
	})

	t.Run("load yaml by bare name", func(t *testing.T) {
		config, err := manager.LoadConfig("hills")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if config.Name != "From YAML" {
			t.Errorf("Expected config name 'From YAML', got '%s'", config.Name)
		}
		if len(config.Units) != 2 {
			t.Errorf("Expected 2 units, got %d", len(config.Units))
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("open")
		config2, err := manager.LoadConfig("open")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`)
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err := manager.LoadConfig("malformed")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unit on water is rejected", func(t *testing.T) {
		config := createValidConfig()
		config.Units = append(config.Units, engine.UnitPlacement{ID: "swimmer", X: 2, Y: 2})
		writeConfigFile(t, dir, "swimmer", config)

		if _, err := manager.LoadConfig("swimmer"); err == nil {
			t.Error("Expected error for unit placed on water")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	t.Run("preferred board wins", func(t *testing.T) {
		dir := t.TempDir()

		first := createValidConfig()
		first.Name = "Alphabetically First"
		writeConfigFile(t, dir, "aaa", first)

		preferred := createValidConfig()
		preferred.Name = "Skirmish"
		writeConfigFile(t, dir, PreferredDefault, preferred)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Skirmish" {
			t.Errorf("Expected default 'Skirmish', got '%s'", got)
		}
	})

	t.Run("first valid board otherwise", func(t *testing.T) {
		dir := t.TempDir()

		bad := createValidConfig()
		bad.Rows = 0
		writeConfigFile(t, dir, "aaa", bad)

		good := createValidConfig()
		good.Name = "Second"
		writeConfigFile(t, dir, "bbb", good)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Second" {
			t.Errorf("Expected default 'Second', got '%s'", got)
		}
	})

	t.Run("set default", func(t *testing.T) {
		dir := t.TempDir()
		writeConfigFile(t, dir, "aaa", createValidConfig())
		other := createValidConfig()
		other.Name = "Other"
		writeConfigFile(t, dir, "other", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if err := manager.SetDefault("other"); err != nil {
			t.Fatalf("SetDefault failed: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Other" {
			t.Errorf("Expected default 'Other', got '%s'", got)
		}
		if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()

	configs := []struct {
		filename string
		name     string
	}{
		{"default", "Default"},
		{"open", "Open"},
		{"river.yaml", "River"},
		{"hills.yml", "Hills"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Non-board files and invalid boards are skipped
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Fatalf("Expected 4 configs, got %d", len(configList))
	}

	wantIDs := []string{"default", "hills", "open", "river"}
	for i, info := range configList {
		if info.ConfigID != wantIDs[i] {
			t.Errorf("Config %d: expected ID %q, got %q", i, wantIDs[i], info.ConfigID)
		}
		if info.Columns != 5 || info.Rows != 5 || info.Units != 2 {
			t.Errorf("Config %s: unexpected dimensions %+v", info.ConfigID, info)
		}
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := t.TempDir()

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.DefaultMoveRange != 3 {
		t.Errorf("Expected initial move range 3, got %d", loaded.DefaultMoveRange)
	}

	config.DefaultMoveRange = 7
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.DefaultMoveRange != 7 {
		t.Errorf("Expected reloaded move range 7, got %d", reloaded.DefaultMoveRange)
	}

	if err := manager.ReloadConfig("gone"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("json", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}

		manager.RefreshCache()
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("LoadConfig after save failed: %v", err)
		}
		if loaded.Name != "Saved" || len(loaded.Layout) != 5 {
			t.Errorf("Unexpected round trip: %+v", loaded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved YAML"
		if err := manager.SaveConfig("valley.yaml", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, "valley.yaml"))
		if err != nil {
			t.Fatalf("Expected valley.yaml on disk: %v", err)
		}
		parsed, err := engine.ParseBoardConfig(data, ".yaml")
		if err != nil {
			t.Fatalf("Saved YAML does not parse: %v", err)
		}
		if parsed.Name != "Saved YAML" {
			t.Errorf("Expected 'Saved YAML', got %q", parsed.Name)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		config := createValidConfig()
		config.Name = ""
		if err := manager.SaveConfig("nameless", config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		if err := manager.SaveConfig("../escape", createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	manager.RefreshCache()

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(fmt.Sprintf("config%d", (id%5)+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()

	writeConfigFile(t, dir, "default", createValidConfig())

	testConfig := createValidConfig()
	testConfig.Name = "Test"
	writeConfigFile(t, dir, "test", testConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	for i := 0; i < 10; i++ {
		config, err := manager.LoadConfig("test")
		if err != nil {
			t.Fatalf("Failed to load config on iteration %d: %v", i, err)
		}
		if config.Name != "Test" {
			t.Errorf("Unexpected config name on iteration %d", i)
		}
	}

	// Resolving the default lists the directory, which caches both boards
	if manager.Count() != 2 {
		t.Errorf("Expected 2 configs in cache, got %d", manager.Count())
	}
}
