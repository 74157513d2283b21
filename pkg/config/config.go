package config

import (
	"fmt"

	"github.com/ajitpratap0/tagpool/pkg/logger"
	"github.com/ajitpratap0/tagpool/pkg/ring"
)

// RegistryConfig is the static configuration a registry is built from.
type RegistryConfig struct {
	// Name identifies the session in logs and metrics
	Name string `yaml:"name" json:"name" mapstructure:"name"`
	// Pools is the ordered (tag, prototype) list
	Pools []PoolConfig `yaml:"pools" json:"pools" mapstructure:"pools"`
	// QueueCapacity is the initial idle queue capacity of each pool
	QueueCapacity int `yaml:"queue_capacity" json:"queue_capacity" mapstructure:"queue_capacity"`

	Logging logger.Config `yaml:"logging" json:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// PoolConfig declares one pool.
type PoolConfig struct {
	// Tag is the pool's unique name
	Tag string `yaml:"tag" json:"tag" mapstructure:"tag"`
	// Prototype names the template in the caller's prototype catalog
	Prototype string `yaml:"prototype" json:"prototype" mapstructure:"prototype"`
	// Prewarm is the number of idle instances made at startup
	Prewarm int `yaml:"prewarm" json:"prewarm" mapstructure:"prewarm"`
}

// MetricsConfig controls metrics collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace" mapstructure:"namespace"`
	// Addr serves /metrics when non-empty, e.g. ":9090"
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr"`
}

// TracingConfig controls tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	ServiceName string  `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate" mapstructure:"sample_rate"`
}

// NewRegistryConfig creates a RegistryConfig with defaults and no pools.
func NewRegistryConfig(name string) *RegistryConfig {
	return &RegistryConfig{
		Name:          name,
		QueueCapacity: 16,
		Logging:       logger.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "tagpool",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "tagpool",
			SampleRate:  1.0,
		},
	}
}

// AddPool appends a pool declaration and returns the config for chaining.
func (c *RegistryConfig) AddPool(tag, prototype string, prewarm int) *RegistryConfig {
	c.Pools = append(c.Pools, PoolConfig{Tag: tag, Prototype: prototype, Prewarm: prewarm})
	return c
}

// Validate checks that every pool has a unique, non-empty tag and a
// non-negative prewarm count.
func (c *RegistryConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue_capacity cannot be negative")
	}
	if c.QueueCapacity > ring.MaxInitialCapacity {
		return fmt.Errorf("queue_capacity cannot exceed %d", ring.MaxInitialCapacity)
	}
	seen := make(map[string]struct{}, len(c.Pools))
	for i, p := range c.Pools {
		if p.Tag == "" {
			return fmt.Errorf("pools[%d]: tag is required", i)
		}
		if _, dup := seen[p.Tag]; dup {
			return fmt.Errorf("pools[%d]: duplicate tag %q", i, p.Tag)
		}
		seen[p.Tag] = struct{}{}
		if p.Prewarm < 0 {
			return fmt.Errorf("pools[%d]: prewarm cannot be negative", i)
		}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}
	return nil
}

// PrototypeName returns the configured prototype name for a pool, falling
// back to the tag when none is given.
func (p PoolConfig) PrototypeName() string {
	if p.Prototype == "" {
		return p.Tag
	}
	return p.Prototype
}
