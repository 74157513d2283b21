package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. TAGPOOL_LOGGING_LEVEL.
const EnvPrefix = "TAGPOOL"

// NewViper returns a viper instance reading TAGPOOL_* environment variables,
// with dotted keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyOverrides copies every scalar setting v knows about onto cfg.
// Pools are never overridden; they come from the file only.
func ApplyOverrides(v *viper.Viper, cfg *RegistryConfig) {
	if v.IsSet("name") {
		cfg.Name = v.GetString("name")
	}
	if v.IsSet("queue_capacity") {
		cfg.QueueCapacity = v.GetInt("queue_capacity")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.encoding") {
		cfg.Logging.Encoding = v.GetString("logging.encoding")
	}
	if v.IsSet("logging.development") {
		cfg.Logging.Development = v.GetBool("logging.development")
	}
	if v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	}
	if v.IsSet("metrics.namespace") {
		cfg.Metrics.Namespace = v.GetString("metrics.namespace")
	}
	if v.IsSet("metrics.addr") {
		cfg.Metrics.Addr = v.GetString("metrics.addr")
	}
	if v.IsSet("tracing.enabled") {
		cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	if v.IsSet("tracing.sample_rate") {
		cfg.Tracing.SampleRate = v.GetFloat64("tracing.sample_rate")
	}
}
