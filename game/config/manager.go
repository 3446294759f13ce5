package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/tactics-grid/game/engine"
	"github.com/wricardo/tactics-grid/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// PreferredDefault is the board used as default when present in the directory
const PreferredDefault = "skirmish"

// boardExtensions are tried in order when resolving a config name
var boardExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles board configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.BoardConfig
	configs       map[string]*engine.BoardConfig
	logger        *zap.Logger
	mu            sync.RWMutex
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new configuration manager
func NewManager(configDir string, opts ...Option) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.BoardConfig),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.defaultConfig = m.resolveDefault()
	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry an extension;
// without one, .json, .yaml and .yml are tried in that order.
func (m *Manager) LoadConfig(name string) (*engine.BoardConfig, error) {
	key := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}

	m.configs[key] = config
	return config, nil
}

// ReloadConfig re-reads a configuration from disk, replacing the cached copy.
// Sessions already running keep the board they were created with.
func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	config, err := m.readConfig(name)
	if err != nil {
		return err
	}
	m.configs[configID(name)] = config
	return nil
}

// readConfig reads and validates one board file. Callers hold mu.
func (m *Manager) readConfig(name string) (*engine.BoardConfig, error) {
	path, ok := m.resolvePath(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.ParseBoardConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	if err := engine.ValidateBoardConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.logger.Debug("config loaded", zap.String("path", path), zap.String("name", config.Name))
	return config, nil
}

// resolvePath finds the file backing a config name
func (m *Manager) resolvePath(name string) (string, bool) {
	if isBoardFile(name) {
		path := filepath.Join(m.configDir, name)
		_, err := os.Stat(path)
		return path, err == nil
	}
	for _, ext := range boardExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ListConfigs returns information about all available configurations, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isBoardFile(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			m.logger.Warn("skipping invalid config", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Columns:     config.Columns,
			Rows:        config.Rows,
			Units:       len(config.Units),
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and re-resolves the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// resolveDefault picks the preferred board, then the first valid board,
// then the built-in one.
func (m *Manager) resolveDefault() *engine.BoardConfig {
	if config, err := m.LoadConfig(PreferredDefault); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].Filename); err == nil {
			return config
		}
	}

	m.logger.Info("no board configs found, using built-in default", zap.String("dir", m.configDir))
	return engine.DefaultBoardConfig()
}

// SaveConfig validates and writes a configuration. A name ending in .yaml or
// .yml is written as YAML; anything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.BoardConfig) error {
	if err := engine.ValidateBoardConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !isBoardFile(filename) {
		filename = name + ".json"
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("%w: config name %q must not contain a path", ErrInvalidConfig, name)
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
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(filename)] = config
	m.mu.Unlock()

	m.logger.Info("config saved", zap.String("path", configPath))
	return nil
}

func isBoardFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range boardExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configID strips a board file extension
func configID(name string) string {
	if isBoardFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
