package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Known buffer backends.
const (
	BackendMemory = "memory"
	BackendVulkan = "vulkan"
)

// MaxSubdivLevel bounds the subdivision level accepted from configuration.
const MaxSubdivLevel = 6

type LogConfig struct {
	Level string `toml:"level"`
}

type ExtractConfig struct {
	// UseHQ selects SNORM 16x4 packing instead of 10-10-10-2.
	UseHQ bool `toml:"use_hq"`
	// Backend is the buffer backend name, either "memory" or "vulkan".
	Backend string `toml:"backend"`
	// SubdivLevel enables the subdivision path when greater than zero.
	SubdivLevel int `toml:"subdiv_level"`
	// Tangents is the default per-mesh tangent layer mask.
	Tangents uint32 `toml:"tangents"`
	// TangentOrco requests the orco tangent layer by default.
	TangentOrco bool `toml:"tangent_orco"`
}

type AssetsConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Extract ExtractConfig `toml:"extract"`
	Assets  AssetsConfig  `toml:"assets"`
	Jobs    JobsConfig    `toml:"jobs"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Extract: ExtractConfig{
			UseHQ:    false,
			Backend:  BackendMemory,
			Tangents: 0x1,
		},
		Assets: AssetsConfig{Path: "assets", Watch: false},
		Jobs:   JobsConfig{Workers: 4, QueueSize: 64},
	}
}

// LoadConfig reads a TOML configuration file on top of the defaults.
// A missing file is not an error: the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			LogWarn("config file '%s' not found, using defaults", path)
			return cfg, nil
		}
		return nil, err
	}
	if err := ParseConfig(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseConfig decodes data into cfg and validates the result.
func ParseConfig(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		err = fmt.Errorf("failed to decode config: %w", err)
		LogError(err.Error())
		return err
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Extract.Backend {
	case BackendMemory, BackendVulkan:
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownBackend, c.Extract.Backend)
	}
	if c.Extract.SubdivLevel < 0 || c.Extract.SubdivLevel > MaxSubdivLevel {
		return fmt.Errorf("%w: subdiv_level must be in [0, %d], got %d", ErrInvalidConfig, MaxSubdivLevel, c.Extract.SubdivLevel)
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("%w: jobs.workers must be > 0", ErrInvalidConfig)
	}
	if c.Jobs.QueueSize < 0 {
		return fmt.Errorf("%w: jobs.queue_size must be >= 0", ErrInvalidConfig)
	}
	return nil
}
