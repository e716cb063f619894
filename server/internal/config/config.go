package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the settings file.
const (
	EnvPort              = "PORT"
	EnvConfigMapFilePath = "CONFIGMAP_FILE_PATH"
)

// Default values for the server configuration.
const (
	DefaultPort              = 8080
	DefaultConfigMapFilePath = "/app/config/config.txt"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config holds the server-side configuration parsed from the `server:` section
// of the optional settings file, with environment overrides applied.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on (default 8080).
	Port int `yaml:"port"`

	// ConfigMapFilePath is the file served on GET /.
	// Default: /app/config/config.txt.
	ConfigMapFilePath string `yaml:"configmap_file_path"`

	// ReadHeaderTimeout bounds how long a client may take to send request headers.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the listen address on all interfaces.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Load builds the server configuration. Defaults are applied first, then the
// settings file at path (skipped when path is empty), then the PORT and
// CONFIGMAP_FILE_PATH environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("server config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("server config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              DefaultPort,
			ConfigMapFilePath: DefaultConfigMapFilePath,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
	}
}

// applyEnv overrides cfg from the environment. Empty variables count as unset.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s %q is not a port number", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup(EnvConfigMapFilePath); ok && v != "" {
		cfg.Server.ConfigMapFilePath = v
	}
	return nil
}

// validate checks structural constraints on the resolved configuration.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [1, 65535]", cfg.Server.Port)
	}
	if cfg.Server.ConfigMapFilePath == "" {
		return fmt.Errorf("server.configmap_file_path must not be empty")
	}
	if cfg.Server.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server.read_header_timeout must not be negative")
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}
