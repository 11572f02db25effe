// Package config loads the TOML settings of the anima tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/anima/engine/anim"
	"github.com/spaghettifunk/anima/engine/bake"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Log      Log      `toml:"log"`
	Pipeline Pipeline `toml:"pipeline"`
	Export   Export   `toml:"export"`
	Watch    Watch    `toml:"watch"`
}

type Log struct {
	Level string `toml:"level"`
}

// Pipeline sizes the job system used by import and export passes.
type Pipeline struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Export holds the values written into new containers. An empty precision
// keeps the precision of each animation.
type Export struct {
	Precision string `toml:"precision"`
	Version   int32  `toml:"version"`
}

type Watch struct {
	Dir       string   `toml:"dir"`
	OutputDir string   `toml:"output_dir"`
	Debounce  Duration `toml:"debounce"`
}

// Duration reads and writes TOML strings such as "250ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() *Config {
	return &Config{
		Log:      Log{Level: "info"},
		Pipeline: Pipeline{Workers: runtime.NumCPU(), QueueSize: 16},
		Export:   Export{Version: 1},
		Watch:    Watch{Dir: ".", Debounce: Duration{250 * time.Millisecond}},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) Validate() error {
	switch {
	case c.Pipeline.Workers < 1:
		return fmt.Errorf("%w: pipeline.workers must be at least 1, got %d", ErrInvalid, c.Pipeline.Workers)
	case c.Pipeline.QueueSize < 0:
		return fmt.Errorf("%w: pipeline.queue_size must not be negative, got %d", ErrInvalid, c.Pipeline.QueueSize)
	case c.Watch.Debounce.Duration < 0:
		return fmt.Errorf("%w: watch.debounce must not be negative", ErrInvalid)
	}
	if c.Export.Precision == "" {
		return nil
	}
	if _, err := anim.ParsePrecision(c.Export.Precision); err != nil {
		return fmt.Errorf("%w: export.precision: %s", ErrInvalid, err)
	}
	return nil
}

// Precision returns the parsed export precision and whether one is set.
func (c *Config) Precision() (anim.Precision, bool) {
	if c.Export.Precision == "" {
		return anim.PrecisionSingle, false
	}
	p, err := anim.ParsePrecision(c.Export.Precision)
	return p, err == nil
}

// BakeOptions sizes bake passes from the pipeline section.
func (c *Config) BakeOptions() bake.Options {
	return bake.Options{Workers: c.Pipeline.Workers, QueueSize: c.Pipeline.QueueSize}
}
