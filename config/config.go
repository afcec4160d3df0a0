// Package config manages bridge configuration loading, validation, and persistence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the loopback port the control server binds when unconfigured.
	DefaultPort = 6850
	// DefaultLogCapacity bounds the diagnostic ring buffer.
	DefaultLogCapacity = 1000
	// DefaultShutdownTimeout bounds how long Stop waits for the serve loop to drain.
	DefaultShutdownTimeout = time.Second
)

// ServerConfig configures the HTTP control surface lifecycle.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	AutoStart       bool          `yaml:"autoStart"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LogConfig sizes the diagnostic ring buffer.
type LogConfig struct {
	Capacity int `yaml:"capacity"`
}

// TelemetryConfig configures OTLP exporters (metrics only).
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	ServiceName  string `yaml:"serviceName"`
}

// Settings is the unified bridge configuration sourced from YAML.
type Settings struct {
	Server    ServerConfig    `yaml:"server"`
	Logs      LogConfig       `yaml:"logs"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the default bridge configuration.
func Default() Settings {
	return Settings{
		Server: ServerConfig{
			Port:            DefaultPort,
			AutoStart:       true,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logs: LogConfig{
			Capacity: DefaultLogCapacity,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "",
			ServiceName:  "studiolink-bridge",
		},
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("STUDIOLINK_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("STUDIOLINK_AUTOSTART")); v != "" {
		if auto, err := strconv.ParseBool(v); err == nil {
			cfg.Server.AutoStart = auto
		}
	}
	if v := strings.TrimSpace(os.Getenv("STUDIOLINK_LOG_CAPACITY")); v != "" {
		if capacity, err := strconv.Atoi(v); err == nil {
			cfg.Logs.Capacity = capacity
		}
	}
	if v := strings.TrimSpace(os.Getenv("STUDIOLINK_OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	return cfg
}

// LoadOrDefault reads settings from path, falling back to env-overridden
// defaults when the file does not exist. The second return reports whether a
// file was read.
func LoadOrDefault(path string) (Settings, bool, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return FromEnv(), false, nil
		}
		return Settings{}, false, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Settings{}, false, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Settings{}, false, err
	}
	return cfg, true, nil
}

// Save persists the settings to path, creating parent directories as needed.
func Save(path string, cfg Settings) error {
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *Settings) normalise() {
	s.Telemetry.OTLPEndpoint = strings.TrimSpace(s.Telemetry.OTLPEndpoint)
	s.Telemetry.ServiceName = strings.TrimSpace(s.Telemetry.ServiceName)
	if s.Telemetry.ServiceName == "" {
		s.Telemetry.ServiceName = "studiolink-bridge"
	}
	if s.Server.Port == 0 {
		s.Server.Port = DefaultPort
	}
	if s.Server.ShutdownTimeout <= 0 {
		s.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.Logs.Capacity <= 0 {
		s.Logs.Capacity = DefaultLogCapacity
	}
}

// Validate performs semantic validation on the configuration.
func (s Settings) Validate() error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server port must be within 0-65535")
	}
	if s.Logs.Capacity <= 0 {
		return fmt.Errorf("logs capacity must be >0")
	}
	if s.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdownTimeout must be >0")
	}
	return nil
}
