/*
anima converts skeletal animation containers to and from their
human-readable YAML forms.

	anima [flags] decode  <in.motn> [out.yaml]
	anima [flags] encode  <in.yaml> <out.motn>
	anima [flags] import  <in.motn> [out.yaml]
	anima [flags] export  <in.yaml> <out.motn>
	anima [flags] inspect <in.motn>
	anima [flags] watch
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima/engine"
	"github.com/spaghettifunk/anima/engine/core"
)

var errUsage = errors.New("usage")

func main() {
	ac := &engine.ApplicationConfig{}
	flag.StringVar(&ac.ConfigPath, "config", "", "TOML settings file")
	flag.StringVar(&ac.RigPath, "rig", "", "rig document used when a container has no bone table")
	flag.StringVar(&ac.LogLevel, "log-level", "", "overrides log.level")
	flag.StringVar(&ac.Precision, "precision", "", "overrides export.precision (single or half)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	e, err := engine.New(ac)
	if err != nil {
		core.LogFatal("%s", err)
	}

	if err := dispatch(e, flag.Arg(0), flag.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		core.LogFatal("%s", err)
	}
}

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), "usage: anima [flags] decode|encode|import|export|inspect|watch [args]")
	flag.PrintDefaults()
}

func dispatch(e *engine.Engine, cmd string, args []string) error {
	switch cmd {
	case "decode":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		data, err := e.Decode(args[0])
		if err != nil {
			return err
		}
		return output(args[1:], data)
	case "encode":
		if len(args) != 2 {
			return errUsage
		}
		if err := e.Encode(args[0], args[1]); err != nil {
			return err
		}
		core.LogInfo("wrote %s", args[1])
		return nil
	case "import":
		if len(args) < 1 || len(args) > 2 {
			return errUsage
		}
		data, err := e.Import(args[0])
		if err != nil {
			return err
		}
		return output(args[1:], data)
	case "export":
		if len(args) != 2 {
			return errUsage
		}
		if err := e.Export(args[0], args[1]); err != nil {
			return err
		}
		core.LogInfo("wrote %s", args[1])
		return nil
	case "inspect":
		if len(args) != 1 {
			return errUsage
		}
		return e.Inspect(args[0], os.Stdout)
	case "watch":
		if len(args) != 0 {
			return errUsage
		}
		return watch(e)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// output writes data to the file named in args, or to stdout.
func output(args []string, data []byte) error {
	if len(args) == 0 {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return err
	}
	core.LogInfo("wrote %s", args[0])
	return nil
}

func watch(e *engine.Engine) error {
	if err := e.Initialize(); err != nil {
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		<-sigCh
		if err := e.Shutdown(); err != nil {
			core.LogError("%s", err)
		}
	}()

	return e.Run()
}
