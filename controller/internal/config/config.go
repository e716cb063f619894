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
	EnvKubeconfig = "KUBECONFIG"
	EnvNamespace  = "WATCH_NAMESPACE"
	EnvWorkers    = "WORKERS"
)

// Default values applied when fields are absent from the settings file.
const (
	DefaultWorkers           = 2
	DefaultResync            = 10 * time.Minute
	DefaultMaxRetries        = 5
	DefaultUsedAnnotation    = "configMapUsed"
	DefaultVersionAnnotation = "configMapVersion"
)

// Config is the top-level configuration for the rollout controller.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
}

// ControllerConfig holds all controller settings.
type ControllerConfig struct {
	// Kubeconfig is the path to a kubeconfig file. Empty means in-cluster config.
	Kubeconfig string `yaml:"kubeconfig"`

	// Namespace limits the ConfigMap watch to one namespace. Empty watches all.
	Namespace string `yaml:"namespace"`

	// Workers is the number of goroutines draining the work queue.
	Workers int `yaml:"workers"`

	// Resync is the informer resync period. Zero disables periodic resync.
	Resync time.Duration `yaml:"resync"`

	// MaxRetries is how often a failing ConfigMap key is requeued before
	// it is dropped.
	MaxRetries int `yaml:"max_retries"`

	// UsedAnnotation is the Deployment annotation naming the ConfigMap it mounts.
	UsedAnnotation string `yaml:"used_annotation"`

	// VersionAnnotation is the pod template annotation that carries the
	// ConfigMap resourceVersion. Changing it rolls the Deployment.
	VersionAnnotation string `yaml:"version_annotation"`
}

// Load reads the optional YAML settings file at path (skipped when empty),
// applies defaults and environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Controller: ControllerConfig{
			Workers:           DefaultWorkers,
			Resync:            DefaultResync,
			MaxRetries:        DefaultMaxRetries,
			UsedAnnotation:    DefaultUsedAnnotation,
			VersionAnnotation: DefaultVersionAnnotation,
		},
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvKubeconfig); v != "" {
		cfg.Controller.Kubeconfig = v
	}
	if v := os.Getenv(EnvNamespace); v != "" {
		cfg.Controller.Namespace = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s %q is not a number", EnvWorkers, v)
		}
		cfg.Controller.Workers = n
	}
	return nil
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	c := cfg.Controller
	if c.Workers <= 0 {
		return fmt.Errorf("controller.workers must be positive")
	}
	if c.Resync < 0 {
		return fmt.Errorf("controller.resync must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("controller.max_retries must not be negative")
	}
	if c.UsedAnnotation == "" {
		return fmt.Errorf("controller.used_annotation is required")
	}
	if c.VersionAnnotation == "" {
		return fmt.Errorf("controller.version_annotation is required")
	}
	return nil
}
