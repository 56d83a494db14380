package graph

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config carries the engine settings applied when the worker pool starts.
type Config struct {
	// Workers is the number of pool workers. Defaults to the
	// logical-processor count.
	Workers int `yaml:"workers"`
	// QueueDepth is the task queue capacity. Defaults to Workers.
	QueueDepth int `yaml:"queue_depth"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{Workers: runtime.GOMAXPROCS(0)}
}

// ParseConfig reads a Config from YAML. Missing fields keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("graph: parsing config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("graph: reading config: %w", err)
	}
	return ParseConfig(data)
}

// Configure applies cfg to the engine, restarting the worker pool if it is
// already running.
func Configure(cfg Config) {
	poolMu.Lock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
	config = cfg
	poolMu.Unlock()
}
