package engine

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/spaghettifunk/anima/engine/assets"
	"github.com/spaghettifunk/anima/engine/bake"
	"github.com/spaghettifunk/anima/engine/config"
	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/interchange"
	"github.com/spaghettifunk/anima/engine/motion"
	"github.com/spaghettifunk/anima/engine/skeleton"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is watching for changes
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released its resources
	EngineStageStopped
)

// Engine runs conversions between motion containers and their YAML forms.
// The one-shot conversions can be used right after New; watching requires
// Initialize and Run.
type Engine struct {
	mutex        sync.Mutex
	currentStage Stage

	config       *config.Config
	rig          *skeleton.Rig
	metrics      *core.PassMetrics
	assetManager *assets.AssetManager
	clock        *core.Clock

	quit     chan struct{}
	quitOnce sync.Once
}

func New(ac *ApplicationConfig) (*Engine, error) {
	cfg, rig, err := ac.load()
	if err != nil {
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		rig:          rig,
		metrics:      core.NewPassMetrics(),
		clock:        core.NewClock(),
		quit:         make(chan struct{}),
	}, nil
}

func (e *Engine) Config() *config.Config {
	return e.config
}

func (e *Engine) Metrics() *core.PassMetrics {
	return e.metrics
}

func (e *Engine) Stage() Stage {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.currentStage
}

// skeleton returns the rig as a Skeleton, or nil when no rig was loaded.
func (e *Engine) skeleton() skeleton.Skeleton {
	if e.rig == nil {
		return nil
	}
	return e.rig
}

func (e *Engine) motionOptions() []motion.Option {
	if e.rig == nil {
		return nil
	}
	return []motion.Option{motion.WithSkeleton(e.rig)}
}

func (e *Engine) bakeOptions() bake.Options {
	opts := e.config.BakeOptions()
	opts.Metrics = e.metrics
	return opts
}

// Decode reads the container at path and returns its motion document.
func (e *Engine) Decode(path string) ([]byte, error) {
	c, err := motion.ReadFile(path, e.motionOptions()...)
	if err != nil {
		return nil, err
	}
	core.LogDebug("decoded %s: %d animations", path, len(c.Animations))
	return interchange.MarshalMotion(c)
}

// Encode writes the motion document at path as a container at out.
func (e *Engine) Encode(path, out string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := interchange.UnmarshalMotion(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if c.Skeleton == nil {
		c.Skeleton = e.rig
	}
	return motion.WriteFile(out, c, e.motionOptions()...)
}

// Import unbakes the container at path and returns its neutral document.
func (e *Engine) Import(path string) ([]byte, error) {
	c, err := motion.ReadFile(path, e.motionOptions()...)
	if err != nil {
		return nil, err
	}
	anims, err := bake.Import(c, e.skeleton(), e.bakeOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return interchange.MarshalNeutral(anims)
}

// Export bakes the neutral document at path into a container at out. The
// loaded rig, if any, is embedded in the container.
func (e *Engine) Export(path, out string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	anims, err := interchange.UnmarshalNeutral(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if precision, ok := e.config.Precision(); ok {
		for _, a := range anims {
			a.Precision = precision
		}
	}
	c, err := bake.Export(anims, e.skeleton(), e.bakeOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Version = e.config.Export.Version
	c.Skeleton = e.rig
	return motion.WriteFile(out, c, e.motionOptions()...)
}

// Inspect writes a summary of the container at path to w: one row per
// animation and one per command with its chosen widths.
func (e *Engine) Inspect(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, info, err := motion.Decode(data, e.motionOptions()...)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	bones := 0
	if c.Skeleton != nil {
		bones = len(c.Skeleton.Bones)
	}
	fmt.Fprintf(w, "%s: %d bytes, version %d, %d table slots, %d animations, %d embedded bones\n",
		path, info.Size, c.Version, info.TableLen, len(c.Animations), bones)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tKIND\tPRECISION\tEND\tVALUES\tBONE\tPARAM\tCOMP\tKEYS\tTIME16\tINDEX16")
	for _, i := range c.Indices() {
		a := c.Animations[i]
		ai := info.Animations[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t\t\t\t\t\t\n", a.Index, a.Name, a.Kind, a.Precision, a.EndFrame, ai.ValueCount)
		for ci, cmd := range a.Commands {
			widths := ai.Commands[ci].Widths
			fmt.Fprintf(tw, "\t\t\t\t\t\t%s\t%s\t%d\t%d\t%t\t%t\n",
				cmd.Bone, cmd.Parameter.Name(a.Kind), cmd.Component, len(cmd.Keyframes), widths.TimeWide, widths.IndexWide)
		}
	}
	return tw.Flush()
}

// Initialize starts watching the configured directory. Every changed
// container is re-exported as a motion document.
func (e *Engine) Initialize() error {
	e.mutex.Lock()
	if e.currentStage != EngineStageUninitialized {
		e.mutex.Unlock()
		return fmt.Errorf("engine cannot initialize from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing
	e.mutex.Unlock()

	am, err := assets.NewAssetManager(e.config.Watch.Debounce.Duration, e.config.Pipeline.QueueSize+1)
	if err != nil {
		return err
	}
	re := &assets.ReExporter{Manager: am, OutputDir: e.config.Watch.OutputDir, Skeleton: e.skeleton()}
	am.OnChange(func(info assets.AssetInfo) {
		e.clock.Start()
		re.Handle(info)
		e.clock.Stop()
		core.LogDebug("%s handled in %s", info.Path, e.clock.Elapsed())
	})
	if err := am.Initialize(e.config.Watch.Dir); err != nil {
		_ = am.Shutdown()
		return err
	}

	e.mutex.Lock()
	e.assetManager = am
	e.currentStage = EngineStageInitialized
	e.mutex.Unlock()
	core.LogInfo("watching %s", e.config.Watch.Dir)
	return nil
}

// Run blocks until Shutdown is called.
func (e *Engine) Run() error {
	e.mutex.Lock()
	switch e.currentStage {
	case EngineStageInitialized:
		e.currentStage = EngineStageRunning
	case EngineStageShuttingDown, EngineStageStopped:
	default:
		e.mutex.Unlock()
		return fmt.Errorf("engine cannot run from stage %d", e.currentStage)
	}
	e.mutex.Unlock()

	<-e.quit
	return nil
}

// Shutdown stops the watcher, if any, and logs the pass totals. It is safe
// to call more than once.
func (e *Engine) Shutdown() error {
	var err error
	e.quitOnce.Do(func() {
		e.mutex.Lock()
		e.currentStage = EngineStageShuttingDown
		am := e.assetManager
		e.mutex.Unlock()

		if am != nil {
			err = am.Shutdown()
		}

		passes, failures, animations, bytes := e.metrics.Totals()
		if passes > 0 {
			core.LogInfo("%d passes (%d failed), %d animations, %d bytes, %s average",
				passes, failures, animations, bytes, e.metrics.Average())
		}

		e.mutex.Lock()
		e.currentStage = EngineStageStopped
		e.mutex.Unlock()
		close(e.quit)
	})
	return err
}
