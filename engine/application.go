package engine

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/anima/engine/config"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/interchange"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

type ApplicationConfig struct {
	// Path of the TOML settings file. Defaults apply when empty.
	ConfigPath string
	// Path of a rig document, used for containers without a bone table.
	RigPath string
	// Overrides log.level of the settings file when set.
	LogLevel string
	// Overrides export.precision of the settings file when set.
	Precision string
}

// load resolves the settings and the optional rig named by ac.
func (ac *ApplicationConfig) load() (*config.Config, *skeleton.Rig, error) {
	cfg := config.Default()
	if ac.ConfigPath != "" {
		c, err := config.Load(ac.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = c
	}
	if ac.LogLevel != "" {
		cfg.Log.Level = ac.LogLevel
	}
	if ac.Precision != "" {
		cfg.Export.Precision = ac.Precision
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := core.SetLogLevel(cfg.Log.Level); err != nil {
		return nil, nil, fmt.Errorf("%w: log.level: %s", config.ErrInvalid, err)
	}

	if ac.RigPath == "" {
		return cfg, nil, nil
	}
	data, err := os.ReadFile(ac.RigPath)
	if err != nil {
		return nil, nil, err
	}
	rig, err := interchange.UnmarshalRig(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ac.RigPath, err)
	}
	core.LogDebug("loaded rig %s with %d bones", ac.RigPath, len(rig.Bones))
	return cfg, rig, nil
}
