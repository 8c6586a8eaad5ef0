// Package config provides configuration for go-aocs commands.
// Constants load from a JSON file with env-var overrides, falling back
// to defaults tuned for the engineering-model hardware.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default endpoints and hardware settings.
const (
	DefaultHTTPPort     = "8000"
	DefaultVisionPort   = "8888"
	DefaultSerialPort   = "/dev/ttyACM0"
	DefaultSerialBaud   = 115200
	DefaultSnapshotPath = "aocs_init_data.json"
)

// Gains holds PID gain constants for one control mode.
type Gains struct {
	Kp float64 `json:"kp"`
	Ki float64 `json:"ki"`
	Kd float64 `json:"kd"`
}

// Control holds the tunable control-loop constants.
type Control struct {
	PositionTolerance float64 `json:"position_tolerance"` // degrees
	DockingTolerance  float64 `json:"docking_tolerance"`  // degrees
	DockingMaxSpeed   float64 `json:"docking_max_speed"`  // percent
	Deadzone          float64 `json:"deadzone"`           // control output units
	FilterAlpha       float64 `json:"filter_alpha"`
	DockingAlpha      float64 `json:"docking_filter_alpha"`
	CorrectionGain    float64 `json:"correction_gain"` // docking under-correction factor
	DockingDistance   float64 `json:"docking_distance"`
}

// Config is the full daemon configuration.
type Config struct {
	HTTPPort     string  `json:"http_port"`
	VisionPort   string  `json:"vision_port"`
	SerialPort   string  `json:"serial_port"`
	SerialBaud   int     `json:"serial_baud"`
	SnapshotPath string  `json:"snapshot_path"`
	LogLevel     string  `json:"log_level"`
	PID          Gains   `json:"pid"`
	Ctl          Control `json:"control"`
}

// Default returns the baseline configuration.
// Gains and tolerances match the flight constants file.
func Default() Config {
	return Config{
		HTTPPort:     DefaultHTTPPort,
		VisionPort:   DefaultVisionPort,
		SerialPort:   DefaultSerialPort,
		SerialBaud:   DefaultSerialBaud,
		SnapshotPath: DefaultSnapshotPath,
		LogLevel:     "info",
		PID:          Gains{Kp: 1.2, Ki: 0.05, Kd: 0.15},
		Ctl: Control{
			PositionTolerance: 2.0,
			DockingTolerance:  1.0,
			DockingMaxSpeed:   25,
			Deadzone:          5,
			FilterAlpha:       0.8,
			DockingAlpha:      0.85,
			CorrectionGain:    0.8,
			DockingDistance:   5.0,
		},
	}
}

// Load reads a constants file, merges it over the defaults and applies
// env-var overrides. A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides endpoint settings from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("AOCS_HTTP_PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("AOCS_VISION_PORT"); v != "" {
		c.VisionPort = v
	}
	if v := os.Getenv("AOCS_SERIAL_PORT"); v != "" {
		c.SerialPort = v
	}
	if v := os.Getenv("AOCS_SNAPSHOT"); v != "" {
		c.SnapshotPath = v
	}
	if v := os.Getenv("AOCS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}
