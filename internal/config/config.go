// Package config loads whisperd configuration from an optional config.yml,
// an optional .env file, and the WHISPER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skillsenselab/whisperd/internal/logging"
)

// Config is the full whisperd service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`

	Whisper       WhisperConfig       `yaml:"whisper" mapstructure:"whisper"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Logging       logging.Config      `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// WhisperConfig controls model storage, selection, and placement.
type WhisperConfig struct {
	// ModelsDir is where ggml weight files are stored and downloaded to.
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir"`
	// DefaultModel is substituted for unknown or absent model identifiers.
	DefaultModel string `yaml:"default_model" mapstructure:"default_model"`
	// Device selects the compute device: "cpu", "cuda", or "auto".
	Device string `yaml:"device" mapstructure:"device"`
	// ComputeType selects numeric precision: "float16", "int8", or "auto".
	ComputeType string `yaml:"compute_type" mapstructure:"compute_type"`
	// Engine names the registered inference backend.
	Engine string `yaml:"engine" mapstructure:"engine"`
	// Threads caps decoder threads per inference; 0 means engine default.
	Threads int `yaml:"threads" mapstructure:"threads"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// ObservabilityConfig enables OTLP export when an endpoint is set.
type ObservabilityConfig struct {
	// Endpoint is the OTLP HTTP endpoint host:port. Empty disables export.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// ApplyDefaults fills unset fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "whisperd"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Whisper.ModelsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Whisper.ModelsDir = filepath.Join(home, ".cache", "whisper")
	}
	if c.Whisper.DefaultModel == "" {
		c.Whisper.DefaultModel = "base"
	}
	if c.Whisper.Device == "" {
		c.Whisper.Device = "auto"
	}
	if c.Whisper.ComputeType == "" {
		c.Whisper.ComputeType = "auto"
	}
	if c.Whisper.Engine == "" {
		c.Whisper.Engine = "whispercpp"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5552
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60
	}
	if c.Server.WriteTimeout == 0 {
		// Inference on large files can take minutes.
		c.Server.WriteTimeout = 600
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 50 << 20
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Server.Port)
	}
	switch c.Whisper.Device {
	case "auto", "cpu", "cuda", "gpu":
	default:
		return fmt.Errorf("whisper.device must be one of [auto, cpu, cuda, gpu] (got: %s)", c.Whisper.Device)
	}
	switch c.Whisper.ComputeType {
	case "auto", "float16", "float32", "int8":
	default:
		return fmt.Errorf("whisper.compute_type must be one of [auto, float16, float32, int8] (got: %s)", c.Whisper.ComputeType)
	}
	if c.Whisper.Threads < 0 {
		return fmt.Errorf("whisper.threads must be non-negative (got: %d)", c.Whisper.Threads)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
