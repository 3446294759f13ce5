// Package settings loads the server settings file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

type Settings struct {
	Server  ServerSettings  `toml:"server"`
	Game    GameSettings    `toml:"game"`
	Logging LoggingSettings `toml:"logging"`
	Ngrok   NgrokSettings   `toml:"ngrok"`
}

type ServerSettings struct {
	Port      int    `toml:"port"`
	ConfigDir string `toml:"config_dir"`
}

type GameSettings struct {
	MoveSpeed       float64       `toml:"move_speed"` // pixels per second
	TickRate        time.Duration `toml:"tick_rate"`
	SessionMaxAge   time.Duration `toml:"session_max_age"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`
}

type LoggingSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type NgrokSettings struct {
	Enabled bool   `toml:"enabled"`
	Domain  string `toml:"domain"`
}

// Load reads a TOML settings file over the defaults. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	s := Defaults()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

func Defaults() *Settings {
	return &Settings{
		Server: ServerSettings{
			Port:      8080,
			ConfigDir: "configs",
		},
		Game: GameSettings{
			MoveSpeed:       600,
			TickRate:        16 * time.Millisecond,
			SessionMaxAge:   2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

func (s *Settings) Validate() error {
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	if s.Game.MoveSpeed <= 0 {
		return fmt.Errorf("game.move_speed must be positive")
	}
	if s.Game.TickRate <= 0 {
		return fmt.Errorf("game.tick_rate must be positive")
	}
	if _, err := zapcore.ParseLevel(s.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch s.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", s.Logging.Format)
	}
	return nil
}
