package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/camviz/edgeview/internal/config"
	"github.com/camviz/edgeview/internal/render"
	"github.com/camviz/edgeview/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage EdgeView configuration",
	Long:  `View and manage EdgeView configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current EdgeView configuration.`,
	Example: `  # Show configuration as YAML (default)
  edgeview config show

  # Show configuration as JSON
  edgeview config show --format json`,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long:  `Set a specific configuration value.`,
	Example: `  # Set server port
  edgeview config set server_port 9090

  # Set the default render mode
  edgeview config set render.mode grayscale

  # Set capture rotation
  edgeview config set capture.rotation_degrees 90`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

var formatFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml or json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()

	switch formatFlag {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", formatFlag)
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configMgr.Get()
	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}

	if err := configMgr.Update(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Configuration updated: %s = %s\n", key, value)
	return nil
}

func applyConfigKey(cfg *config.Config, key, value string) error {
	switch key {
	case "server_port":
		port, err := strconv.Atoi(value)
		if err != nil || port <= 0 {
			return fmt.Errorf("invalid port number: %s", value)
		}
		cfg.ServerPort = port
	case "log_level":
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[value] {
			return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", value)
		}
		cfg.LogLevel = value
	case "capture.source":
		if value != "pattern" && value != "webcam" {
			return fmt.Errorf("invalid source: %s (use: pattern or webcam)", value)
		}
		cfg.Capture.Source = value
	case "capture.width", "capture.height", "capture.fps", "capture.device_id":
		num, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number: %s", value)
		}
		switch key {
		case "capture.width":
			cfg.Capture.Width = num
		case "capture.height":
			cfg.Capture.Height = num
		case "capture.fps":
			cfg.Capture.FPS = num
		case "capture.device_id":
			cfg.Capture.DeviceID = num
		}
	case "capture.rotation_degrees":
		deg, err := strconv.Atoi(value)
		if err != nil || (deg != 0 && deg != 90 && deg != 180 && deg != 270) {
			return fmt.Errorf("invalid rotation: %s (use: 0, 90, 180 or 270)", value)
		}
		cfg.Capture.RotationDegrees = deg
	case "render.mode":
		mode, err := store.ParseMode(value)
		if err != nil {
			return err
		}
		cfg.Render.Mode = mode.String()
	case "render.orientation":
		o, err := render.ParseOrientation(value)
		if err != nil {
			return err
		}
		cfg.Render.Orientation = o.String()
	case "render.linear_filter", "preview.enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s (use: true or false)", value)
		}
		if key == "render.linear_filter" {
			cfg.Render.LinearFilter = enabled
		} else {
			cfg.Preview.Enabled = enabled
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(configMgr.GetConfigPath())
	return nil
}
