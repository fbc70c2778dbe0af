// Package config loads the qflow configuration file. Configuration lives
// at .quantumflow/config.yaml under the user's home directory (or a path
// given explicitly); every field has a working default so a missing file
// is not an error.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/josephjilovec/quantumflow/internal/cost"
	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/prioritize"
)

// DefaultDirName is the per-user state directory under $HOME
const DefaultDirName = ".quantumflow"

// Config is the complete qflow configuration
type Config struct {
	// DataDir holds workflow definitions and schedule documents
	DataDir string `yaml:"data_dir,omitempty"`

	Log       LogConfig       `yaml:"log,omitempty"`
	Cost      CostConfig      `yaml:"cost,omitempty"`
	Scheduler SchedulerConfig `yaml:"scheduler,omitempty"`
	Dispatch  DispatchConfig  `yaml:"dispatch,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// CostConfig overrides the cost model
type CostConfig struct {
	ClassicalRate float64 `yaml:"classical_rate,omitempty"`

	// OnError selects the fallback policy: "error" or "default"
	OnError string `yaml:"on_error,omitempty"`

	// DefaultCost is used when OnError is "default"
	DefaultCost float64 `yaml:"default_cost,omitempty"`

	// Catalog overlays rates onto the built-in pricing catalog
	Catalog cost.Catalog `yaml:"catalog,omitempty"`
}

// SchedulerConfig sets strategy and soft constraints
type SchedulerConfig struct {
	Strategy          string  `yaml:"strategy,omitempty"`
	MaxBudget         float64 `yaml:"max_budget,omitempty"`
	MaxLatencySeconds float64 `yaml:"max_latency_seconds,omitempty"`
	LatencyScale      float64 `yaml:"latency_scale,omitempty"`
}

// DispatchConfig sets execution options
type DispatchConfig struct {
	Workers int `yaml:"workers,omitempty"`
}

// ServerConfig sets the status server listen address
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, DefaultDirName),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Cost: CostConfig{
			ClassicalRate: cost.DefaultClassicalRate,
			OnError:       string(cost.FallbackError),
			DefaultCost:   1.0,
		},
		Scheduler: SchedulerConfig{
			Strategy:          prioritize.StrategyMinCost,
			MaxLatencySeconds: prioritize.DefaultMaxLatency.Seconds(),
			LatencyScale:      prioritize.DefaultLatencyScale,
		},
		Dispatch: DispatchConfig{
			Workers: 1,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns the conventional config file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, DefaultDirName, "config.yaml")
}

// Load reads a config file and overlays it onto the defaults. A missing
// file at the default path yields the defaults; an explicitly given path
// that does not exist is CONFIG-001.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.Newf(errors.ErrCodeConfigNotFound,
					"config file %s does not exist", path)
			}
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values; zero values passed validation already by
// being replaced with defaults in Load.
func (c *Config) Validate() error {
	switch c.Cost.OnError {
	case string(cost.FallbackError), string(cost.FallbackDefault):
	default:
		return errors.Newf(errors.ErrCodeConfigInvalid,
			"cost.on_error must be %q or %q, got %q",
			cost.FallbackError, cost.FallbackDefault, c.Cost.OnError)
	}

	if _, err := prioritize.New(c.Scheduler.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "scheduler.strategy", err)
	}

	if c.Cost.ClassicalRate < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "cost.classical_rate must be non-negative")
	}
	if c.Scheduler.MaxBudget < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "scheduler.max_budget must be non-negative")
	}
	if c.Scheduler.MaxLatencySeconds < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "scheduler.max_latency_seconds must be non-negative")
	}
	if c.Dispatch.Workers < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "dispatch.workers must be non-negative")
	}

	return nil
}

// Save writes the configuration to a YAML file, creating parent directories
func Save(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "create config directory", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "write config file", err)
	}
	return nil
}

// CostOptions converts the cost section into model options
func (c *Config) CostOptions() cost.Options {
	catalog := cost.DefaultCatalog()
	catalog.Merge(c.Cost.Catalog)
	return cost.Options{
		Catalog:       catalog,
		ClassicalRate: c.Cost.ClassicalRate,
		OnError:       cost.FallbackPolicy(c.Cost.OnError),
		DefaultCost:   c.Cost.DefaultCost,
	}
}

// Constraints converts the scheduler section into prioritizer options
func (c *Config) Constraints() prioritize.Options {
	return prioritize.Options{
		MaxLatency:   time.Duration(c.Scheduler.MaxLatencySeconds * float64(time.Second)),
		MaxBudget:    c.Scheduler.MaxBudget,
		LatencyScale: c.Scheduler.LatencyScale,
	}
}
