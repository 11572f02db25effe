//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Decodes a motion container to YAML on stdout. The path is read from $MOTION.
func (Run) Decode() error {
	path := envOr("MOTION", "")
	if path == "" {
		return fmt.Errorf("set MOTION to the container to decode")
	}
	args := []string{"run", "."}
	if rig := envOr("RIG", ""); rig != "" {
		args = append(args, "-rig", rig)
	}
	args = append(args, "decode", path)
	if _, err := executeCmd("go", withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
