// Package config loads the controller's TOML configuration, following
// the teacher's pkg/config/config.go shape: a DefaultConfig, a
// LoadConfig(path) that overlays a TOML file on top of the defaults,
// and a Validate step that rejects impossible values before the
// controller ever starts (spec.md §6).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/doorkeeper/petdoor/internal/core"
)

type (
	// Config is the on-disk configuration. Core carries every field
	// core.Config needs; Device selects which concrete adapters the
	// wiring layer in cmd/petdoor constructs for camera/door/display.
	Config struct {
		Core    CoreConfig    `toml:"core"`
		Device  DeviceConfig  `toml:"device"`
		Logging LoggingConfig `toml:"logging"`
	}

	// CoreConfig mirrors core.Config field-for-field so it can be
	// unmarshaled directly from TOML before conversion.
	CoreConfig struct {
		TickRateMillis              int64       `toml:"tick_rate_ms"`
		CameraProcessRateMillis     int64       `toml:"camera_process_rate_ms"`
		MinDurationWillUnlockMillis int64       `toml:"min_duration_will_unlock_ms"`
		MinDurationWillLockMillis   int64       `toml:"min_duration_will_lock_ms"`
		UnlockList                  []LabelRule `toml:"unlock_list"`
		LockList                    []LabelRule `toml:"lock_list"`
		LoggerTimezone              string      `toml:"logger_timezone"`
	}

	// LabelRule mirrors core.LabelRule for TOML unmarshaling.
	LabelRule struct {
		Label         string  `toml:"label"`
		MinConfidence float64 `toml:"min_confidence"`
	}

	// DeviceConfig selects and parameterizes the concrete adapters.
	// Backend fields take one of "fake", "raspberry", "macos" (camera),
	// "fake", "gpio" (door), or "fake", "lcd", "console" (display).
	DeviceConfig struct {
		Camera  CameraConfig  `toml:"camera"`
		Door    DoorConfig    `toml:"door"`
		Display DisplayConfig `toml:"display"`
	}

	CameraConfig struct {
		Backend       string   `toml:"backend"`
		DevicePaths   []string `toml:"device_paths"`
		Width         int      `toml:"width"`
		Height        int      `toml:"height"`
		ClassifierURL string   `toml:"classifier_url"`
	}

	DoorConfig struct {
		Backend  string `toml:"backend"`
		Chip     string `toml:"chip"`
		RelayPin int    `toml:"relay_pin"`
	}

	DisplayConfig struct {
		Backend string `toml:"backend"`
		I2CBus  string `toml:"i2c_bus"`
		I2CAddr uint16 `toml:"i2c_addr"`
	}

	LoggingConfig struct {
		FilePath   string `toml:"file_path"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxAgeDays int    `toml:"max_age_days"`
		MaxBackups int    `toml:"max_backups"`
	}
)

// DefaultConfig returns the configuration used when no file is present,
// wired to the in-memory fakes and a console display so the controller
// boots on a developer laptop with no hardware attached.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			TickRateMillis:              200,
			CameraProcessRateMillis:     1000,
			MinDurationWillUnlockMillis: 1500,
			MinDurationWillLockMillis:   1500,
			UnlockList:                  []LabelRule{{Label: "dog", MinConfidence: 0.6}},
			LockList:                    []LabelRule{{Label: "cat", MinConfidence: 0.6}},
			LoggerTimezone:              "UTC",
		},
		Device: DeviceConfig{
			Camera:  CameraConfig{Backend: "fake", Width: 1280, Height: 720},
			Door:    DoorConfig{Backend: "fake", Chip: "gpiochip0", RelayPin: 17},
			Display: DisplayConfig{Backend: "console", I2CBus: "1", I2CAddr: 0x27},
		},
		Logging: LoggingConfig{MaxSizeMB: 10, MaxAgeDays: 28, MaxBackups: 5},
	}
}

func DefaultConfigPath() string { return "petdoor.toml" }

// LoadConfig reads path, overlaying its contents on DefaultConfig, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the core state machine could not run
// with, or that name an unknown adapter backend.
func (c *Config) Validate() error {
	if c.Core.TickRateMillis <= 0 {
		return errors.New("core.tick_rate_ms must be positive")
	}
	if c.Core.CameraProcessRateMillis < 0 {
		return errors.New("core.camera_process_rate_ms cannot be negative")
	}
	if c.Core.MinDurationWillUnlockMillis < 0 {
		return errors.New("core.min_duration_will_unlock_ms cannot be negative")
	}
	if c.Core.MinDurationWillLockMillis < 0 {
		return errors.New("core.min_duration_will_lock_ms cannot be negative")
	}
	if len(c.Core.UnlockList) == 0 {
		return errors.New("core.unlock_list must name at least one label")
	}
	if len(c.Core.LockList) == 0 {
		return errors.New("core.lock_list must name at least one label")
	}
	for _, rules := range [][]LabelRule{c.Core.UnlockList, c.Core.LockList} {
		for _, r := range rules {
			if strings.TrimSpace(r.Label) == "" {
				return errors.New("label rule cannot have an empty label")
			}
			if r.MinConfidence < 0 || r.MinConfidence > 1 {
				return errors.New("label rule min_confidence must be between 0 and 1")
			}
		}
	}
	if _, err := time.LoadLocation(c.Core.LoggerTimezone); err != nil {
		return fmt.Errorf("core.logger_timezone invalid: %w", err)
	}

	switch c.Device.Camera.Backend {
	case "fake", "raspberry", "macos":
	default:
		return fmt.Errorf("device.camera.backend %q not recognized", c.Device.Camera.Backend)
	}
	switch c.Device.Door.Backend {
	case "fake", "gpio":
	default:
		return fmt.Errorf("device.door.backend %q not recognized", c.Device.Door.Backend)
	}
	switch c.Device.Display.Backend {
	case "fake", "lcd", "console":
	default:
		return fmt.Errorf("device.display.backend %q not recognized", c.Device.Display.Backend)
	}
	return nil
}

// CoreConfig converts the on-disk representation into core.Config.
// Validate must have already been called — LoggerTimezone is re-resolved
// here via time.LoadLocation rather than cached, since Config is a plain
// value type with no room for an unexported *time.Location field without
// breaking the TOML unmarshal in LoadConfig.
func (c *Config) CoreConfig() (core.Config, error) {
	loc, err := time.LoadLocation(c.Core.LoggerTimezone)
	if err != nil {
		return core.Config{}, fmt.Errorf("core.logger_timezone invalid: %w", err)
	}
	return core.Config{
		TickRate:              time.Duration(c.Core.TickRateMillis) * time.Millisecond,
		CameraProcessRate:     time.Duration(c.Core.CameraProcessRateMillis) * time.Millisecond,
		MinDurationWillUnlock: time.Duration(c.Core.MinDurationWillUnlockMillis) * time.Millisecond,
		MinDurationWillLock:   time.Duration(c.Core.MinDurationWillLockMillis) * time.Millisecond,
		UnlockList:            toCoreRules(c.Core.UnlockList),
		LockList:              toCoreRules(c.Core.LockList),
		LoggerTimezone:        loc,
	}, nil
}

func toCoreRules(rules []LabelRule) []core.LabelRule {
	out := make([]core.LabelRule, len(rules))
	for i, r := range rules {
		out[i] = core.LabelRule{Label: r.Label, MinConfidence: r.MinConfidence}
	}
	return out
}
