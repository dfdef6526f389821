package cfg_test

import (
	"testing"

	"github.com/kernelio/fskit/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOctal(t *testing.T) {
	var out struct {
		Mode cfg.Octal `mapstructure:"mode"`
	}
	err := cfg.Decode(map[string]interface{}{"mode": "0644"}, &out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Octal(0o644), out.Mode)
}

func TestDecodeDurability(t *testing.T) {
	var out struct {
		D cfg.Durability `mapstructure:"d"`
	}
	err := cfg.Decode(map[string]interface{}{"d": "data-only"}, &out)
	require.NoError(t, err)
	assert.Equal(t, cfg.DurabilityDataOnly, out.D)
}

func TestDecodeThreadModel(t *testing.T) {
	var out struct {
		M cfg.ThreadModel `mapstructure:"m"`
	}
	err := cfg.Decode(map[string]interface{}{"m": "dedicated"}, &out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Dedicated, out.M)
}

func TestParseDurabilityInvalid(t *testing.T) {
	_, err := cfg.ParseDurability("bogus")
	assert.Error(t, err)
}

func TestDefaultExecutorConfig(t *testing.T) {
	d := cfg.DefaultExecutorConfig()
	assert.Equal(t, 10000, d.QueueLimit)
	assert.Equal(t, cfg.Cooperative, d.ThreadModel)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FSKIT_TEST_QUEUE_LIMIT", "42")
	t.Setenv("FSKIT_TEST_THREAD_MODEL", "dedicated")

	var out cfg.ExecutorConfig
	err := cfg.LoadEnv("FSKIT_TEST", &out)
	require.NoError(t, err)

	assert.Equal(t, 42, out.QueueLimit)
	assert.Equal(t, cfg.Dedicated, out.ThreadModel)
}

func TestLoadEnvRejectsNonStructPointer(t *testing.T) {
	var out int
	err := cfg.LoadEnv("FSKIT_TEST", &out)
	assert.Error(t, err)
}
