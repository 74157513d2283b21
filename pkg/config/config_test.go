package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: arena
queue_capacity: 8
pools:
  - tag: bullet
    prototype: Bullet
    prewarm: 4
  - tag: explosion
    prototype: Explosion
logging:
  level: ${TAGPOOL_TEST_LEVEL}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRegistryConfig(t *testing.T) {
	t.Setenv("TAGPOOL_TEST_LEVEL", "debug")

	cfg, err := LoadRegistryConfig(writeFile(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "arena", cfg.Name)
	assert.Equal(t, 8, cfg.QueueCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding, "defaults survive partial sections")
	require.Len(t, cfg.Pools, 2)
	assert.Equal(t, PoolConfig{Tag: "bullet", Prototype: "Bullet", Prewarm: 4}, cfg.Pools[0])
	assert.Equal(t, "explosion", cfg.Pools[1].Tag)
}

func TestLoadRegistryConfigInvalid(t *testing.T) {
	_, err := LoadRegistryConfig(writeFile(t, "name: x\npools:\n  - tag: a\n  - tag: a\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate tag "a"`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadRegistryConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParseSubstitutesOnce(t *testing.T) {
	t.Setenv("TAGPOOL_TEST_SELF", "${TAGPOOL_TEST_SELF}")
	t.Setenv("TAGPOOL_TEST_NAME", "arena")

	done := make(chan struct{})
	var cfg RegistryConfig
	var err error
	go func() {
		defer close(done)
		err = Parse([]byte("name: ${TAGPOOL_TEST_NAME}-${TAGPOOL_TEST_SELF}-${TAGPOOL_TEST_UNSET}\n"), &cfg)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Parse did not return")
	}
	require.NoError(t, err)
	assert.Equal(t, "arena-${TAGPOOL_TEST_SELF}-", cfg.Name, "inserted values are not rescanned")
}

func TestSubstituteEnvVarsUnterminated(t *testing.T) {
	t.Setenv("TAGPOOL_TEST_NAME", "arena")
	assert.Equal(t, "arena ${open", substituteEnvVars("${TAGPOOL_TEST_NAME} ${open"))
	assert.Equal(t, "$plain {x}", substituteEnvVars("$plain {x}"))
}

func TestParseBadYAML(t *testing.T) {
	var cfg RegistryConfig
	err := Parse([]byte("pools: [\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *RegistryConfig)
		wantErr string
	}{
		{"ok", func(c *RegistryConfig) {}, ""},
		{"no name", func(c *RegistryConfig) { c.Name = "" }, "name is required"},
		{"empty tag", func(c *RegistryConfig) { c.AddPool("", "X", 0) }, "tag is required"},
		{"negative prewarm", func(c *RegistryConfig) { c.AddPool("a", "A", -1) }, "prewarm cannot be negative"},
		{"negative capacity", func(c *RegistryConfig) { c.QueueCapacity = -1 }, "queue_capacity"},
		{"huge capacity", func(c *RegistryConfig) { c.QueueCapacity = 1<<62 + 1 }, "queue_capacity cannot exceed"},
		{"sample rate", func(c *RegistryConfig) { c.Tracing.SampleRate = 2 }, "sample_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewRegistryConfig("arena")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTripKeepsPoolOrder(t *testing.T) {
	cfg := NewRegistryConfig("arena").
		AddPool("c", "C", 1).
		AddPool("a", "A", 2).
		AddPool("b", "", 0)
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadRegistryConfig(path)
	require.NoError(t, err)
	require.Len(t, loaded.Pools, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{loaded.Pools[0].Tag, loaded.Pools[1].Tag, loaded.Pools[2].Tag})
	assert.Equal(t, "b", loaded.Pools[2].PrototypeName())
}

func TestApplyOverrides(t *testing.T) {
	t.Setenv("TAGPOOL_LOGGING_LEVEL", "warn")

	v := NewViper()
	v.Set("metrics.addr", ":9100")
	v.Set("tracing.enabled", true)

	cfg := NewRegistryConfig("arena").AddPool("bullet", "Bullet", 0)
	ApplyOverrides(v, cfg)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "arena", cfg.Name, "unset keys keep file values")
	assert.Len(t, cfg.Pools, 1)
}
