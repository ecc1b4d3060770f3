package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/camviz/edgeview/internal/logger"
	"gopkg.in/yaml.v3"
)

// CaptureConfig selects and sizes the frame source feeding the pipeline.
type CaptureConfig struct {
	// Source is "pattern" (synthetic NV21 test pattern) or "webcam"
	Source          string `json:"source" yaml:"source"`
	DeviceID        int    `json:"device_id" yaml:"device_id"`
	Width           int    `json:"width" yaml:"width"`
	Height          int    `json:"height" yaml:"height"`
	FPS             int    `json:"fps" yaml:"fps"`
	RotationDegrees int    `json:"rotation_degrees" yaml:"rotation_degrees"`
}

// RenderConfig controls the GPU presenter and the render loop cadence.
type RenderConfig struct {
	TextureWidth  int    `json:"texture_width" yaml:"texture_width"`
	TextureHeight int    `json:"texture_height" yaml:"texture_height"`
	LinearFilter  bool   `json:"linear_filter" yaml:"linear_filter"`
	Mode          string `json:"mode" yaml:"mode"`
	Orientation   string `json:"orientation" yaml:"orientation"`
	FPS           int    `json:"fps" yaml:"fps"`
}

// PreviewConfig controls the MJPEG preview stream.
type PreviewConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Width   int  `json:"width" yaml:"width"`
	Height  int  `json:"height" yaml:"height"`
}

// Config represents the application configuration
type Config struct {
	ServerPort int           `json:"server_port" yaml:"server_port"`
	LogLevel   string        `json:"log_level" yaml:"log_level"`
	Capture    CaptureConfig `json:"capture" yaml:"capture"`
	Render     RenderConfig  `json:"render" yaml:"render"`
	Preview    PreviewConfig `json:"preview" yaml:"preview"`
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configFile selects
// the default path under the user's config directory.
func NewManager(configFile string) (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "edgeview")
	actualConfigPath := filepath.Join(configDir, "config.yaml")
	if configFile != "" {
		actualConfigPath = configFile
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = Defaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("source", m.config.Capture.Source).
		Msg("Config loaded")

	return m, nil
}

// Defaults returns the default configuration
func Defaults() *Config {
	return &Config{
		ServerPort: 8080,
		LogLevel:   "info",
		Capture: CaptureConfig{
			Source:          "pattern",
			DeviceID:        0,
			Width:           640,
			Height:          480,
			FPS:             30,
			RotationDegrees: 0,
		},
		Render: RenderConfig{
			TextureWidth:  1024,
			TextureHeight: 512,
			LinearFilter:  false,
			Mode:          "edge-detection",
			Orientation:   "flipped-vertical",
			FPS:           60,
		},
		Preview: PreviewConfig{
			Enabled: true,
			Width:   640,
			Height:  480,
		},
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	cfg := *Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Capture.FPS <= 0 {
		cfg.Capture.FPS = 30
	}
	if cfg.Render.FPS <= 0 {
		cfg.Render.FPS = 60
	}
	if cfg.Render.TextureWidth <= 0 || cfg.Render.TextureHeight <= 0 {
		cfg.Render.TextureWidth = 1024
		cfg.Render.TextureHeight = 512
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return Defaults()
	}
	cfg := *m.config
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = Defaults()
	}

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return err
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// Update replaces the entire configuration and persists it
func (m *Manager) Update(cfg *Config) error {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// SetPort sets the server port
func (m *Manager) SetPort(port int) error {
	m.mu.Lock()
	m.config.ServerPort = port
	m.mu.Unlock()
	return m.Save()
}

// GetPort gets the server port
func (m *Manager) GetPort() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ServerPort
}

// SetLogLevel sets the log level
func (m *Manager) SetLogLevel(level string) error {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
	return m.Save()
}

// GetLogLevel gets the log level
func (m *Manager) GetLogLevel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.LogLevel
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
