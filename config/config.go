// Package config loads and validates the configuration for a relicdb
// instance.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sushant-115/relicdb/pkg/logger"
	"github.com/sushant-115/relicdb/pkg/telemetry"
)

// Eviction policies recognized by the buffer pool.
const (
	PolicyLRU  = "lru"
	PolicyFIFO = "fifo"
)

var ErrUnknownPolicy = errors.New("unknown eviction policy")

// Config holds all the configuration for a database instance.
type Config struct {
	// DataFile is the path of the single backing file holding all pages.
	DataFile string `yaml:"data_file"`
	// PoolSize is the number of frames in the buffer pool.
	PoolSize int `yaml:"pool_size"`
	// EvictionPolicy selects the page replacement policy ("lru" or "fifo").
	// The policy is fixed for the lifetime of the instance.
	EvictionPolicy string `yaml:"eviction_policy"`

	Logger    logger.Config    `yaml:"logger"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		DataFile:       "relicdb.data",
		PoolSize:       64,
		EvictionPolicy: PolicyLRU,
		Logger: logger.Config{
			Level:      "info",
			Format:     "console",
			OutputFile: "stderr",
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: "relicdb",
		},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be defaulted away.
func (c Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", c.PoolSize)
	}
	switch c.EvictionPolicy {
	case PolicyLRU, PolicyFIFO:
	default:
		return fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownPolicy, c.EvictionPolicy, PolicyLRU, PolicyFIFO)
	}
	return nil
}
