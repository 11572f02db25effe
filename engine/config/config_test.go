package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	_, set := cfg.Precision()
	assert.False(t, set)
	assert.Equal(t, cfg.Pipeline.Workers, cfg.BakeOptions().Workers)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anima.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"

[pipeline]
workers = 2

[export]
precision = "half"

[watch]
dir = "assets"
debounce = "1s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, 16, cfg.Pipeline.QueueSize)
	precision, set := cfg.Precision()
	assert.True(t, set)
	assert.Equal(t, anim.PrecisionHalf, precision)
	assert.Equal(t, int32(1), cfg.Export.Version)
	assert.Equal(t, "assets", cfg.Watch.Dir)
	assert.Equal(t, time.Second, cfg.Watch.Debounce.Duration)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "[pipeline]\nthreads = 3\n",
		"no workers":   "[pipeline]\nworkers = 0\n",
		"bad queue":    "[pipeline]\nqueue_size = -1\n",
		"precision":    "[export]\nprecision = \"double\"\n",
		"bad duration": "[watch]\ndebounce = \"soon\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEncodeParses(t *testing.T) {
	cfg := Default()
	cfg.Watch.OutputDir = "out"
	data, err := cfg.Encode()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
