package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want 8080", cfg.ServerPort)
	}
	if cfg.Capture.Source != "pattern" {
		t.Errorf("Capture.Source = %q, want pattern", cfg.Capture.Source)
	}
	if cfg.Render.TextureWidth != 1024 || cfg.Render.TextureHeight != 512 {
		t.Errorf("texture = %dx%d, want 1024x512",
			cfg.Render.TextureWidth, cfg.Render.TextureHeight)
	}
	if cfg.Render.Mode != "edge-detection" {
		t.Errorf("Render.Mode = %q, want edge-detection", cfg.Render.Mode)
	}
	if cfg.Render.Orientation != "flipped-vertical" {
		t.Errorf("Render.Orientation = %q, want flipped-vertical", cfg.Render.Orientation)
	}
	if cfg.Render.LinearFilter {
		t.Error("LinearFilter should default to false")
	}
}

func TestNewManagerCreatesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	if m.GetConfigPath() != path {
		t.Errorf("GetConfigPath = %q, want %q", m.GetConfigPath(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestUpdatePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := m.Get()
	cfg.Capture.RotationDegrees = 90
	cfg.Render.Mode = "grayscale"
	if err := m.Update(cfg); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got := reloaded.Get()
	if got.Capture.RotationDegrees != 90 {
		t.Errorf("RotationDegrees = %d, want 90", got.Capture.RotationDegrees)
	}
	if got.Render.Mode != "grayscale" {
		t.Errorf("Render.Mode = %q, want grayscale", got.Render.Mode)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := testManager(t)

	a := m.Get()
	a.ServerPort = 9999

	if m.Get().ServerPort == 9999 {
		t.Error("mutating the Get result changed the manager's config")
	}
}

func TestLoadCoercesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("capture:\n  fps: 0\nrender:\n  fps: -5\n  texture_width: 0\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := m.Get()
	if cfg.Capture.FPS != 30 {
		t.Errorf("Capture.FPS = %d, want coerced 30", cfg.Capture.FPS)
	}
	if cfg.Render.FPS != 60 {
		t.Errorf("Render.FPS = %d, want coerced 60", cfg.Render.FPS)
	}
	if cfg.Render.TextureWidth != 1024 || cfg.Render.TextureHeight != 512 {
		t.Errorf("texture = %dx%d, want coerced 1024x512",
			cfg.Render.TextureWidth, cfg.Render.TextureHeight)
	}
}

func TestSettersPersist(t *testing.T) {
	m := testManager(t)

	if err := m.SetPort(9090); err != nil {
		t.Fatalf("SetPort failed: %v", err)
	}
	if m.GetPort() != 9090 {
		t.Errorf("GetPort = %d, want 9090", m.GetPort())
	}

	if err := m.SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel failed: %v", err)
	}
	if m.GetLogLevel() != "debug" {
		t.Errorf("GetLogLevel = %q, want debug", m.GetLogLevel())
	}
}
