package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write settings: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		s, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", path, err)
		}
		if s.Server.Port != 8080 || s.Game.MoveSpeed != 600 || s.Logging.Level != "info" {
			t.Errorf("Load(%q) did not return defaults: %+v", path, s)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeSettings(t, `
[server]
port = 9090

[game]
move_speed = 320.5
tick_rate = "33ms"
session_max_age = "30m"

[logging]
level = "debug"
format = "json"

[ngrok]
enabled = true
domain = "boards.example.dev"
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", s.Server.Port)
	}
	if s.Server.ConfigDir != "configs" {
		t.Errorf("Unset keys should keep defaults, got config_dir %q", s.Server.ConfigDir)
	}
	if s.Game.MoveSpeed != 320.5 {
		t.Errorf("Expected move speed 320.5, got %v", s.Game.MoveSpeed)
	}
	if s.Game.TickRate != 33*time.Millisecond {
		t.Errorf("Expected tick rate 33ms, got %v", s.Game.TickRate)
	}
	if s.Game.SessionMaxAge != 30*time.Minute {
		t.Errorf("Expected session max age 30m, got %v", s.Game.SessionMaxAge)
	}
	if s.Game.CleanupInterval != 10*time.Minute {
		t.Errorf("Expected default cleanup interval, got %v", s.Game.CleanupInterval)
	}
	if s.Logging.Format != "json" || s.Logging.Level != "debug" {
		t.Errorf("Unexpected logging settings %+v", s.Logging)
	}
	if !s.Ngrok.Enabled || s.Ngrok.Domain != "boards.example.dev" {
		t.Errorf("Unexpected ngrok settings %+v", s.Ngrok)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "[server\nport = 1"},
		{"port out of range", "[server]\nport = 70000"},
		{"zero speed", "[game]\nmove_speed = 0.0"},
		{"bad format", "[logging]\nformat = \"xml\""},
		{"bad level", "[logging]\nlevel = \"verbose\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeSettings(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
