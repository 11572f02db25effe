package bake

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/spaghettifunk/anima/engine/core"
	"github.com/spaghettifunk/anima/engine/systems"
)

// Options tune a conversion pass.
type Options struct {
	// Workers is the number of animations converted at once. Zero means
	// one per CPU.
	Workers int
	// QueueSize is the job queue capacity.
	QueueSize int
	// Metrics, when set, receives one record per pass.
	Metrics *core.PassMetrics
}

func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU(), QueueSize: 16}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

type result[T any] struct {
	id  int
	pos int
	out T
	err error
}

// mapAnimations runs fn for every item on a job system and returns the
// outputs sorted by id, with the input position breaking ties. When
// several items fail the error of the lowest id is returned.
func mapAnimations[In, Out any](pass string, items []In, opts Options, id func(In) int, fn func(In) (Out, error)) ([]Out, error) {
	clock := core.NewClock()
	clock.Start()

	js, err := systems.NewJobSystem(opts.workers(), opts.QueueSize)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make([]result[Out], 0, len(items))
	for pos, item := range items {
		pos, item := pos, item
		js.Submit(systems.NewJobTask(fmt.Sprintf("%s animation %d", pass, id(item)), func() error {
			out, err := fn(item)
			mu.Lock()
			results = append(results, result[Out]{id: id(item), pos: pos, out: out, err: err})
			mu.Unlock()
			return err
		}))
	}
	js.Shutdown()

	sort.Slice(results, func(i, j int) bool {
		if results[i].id != results[j].id {
			return results[i].id < results[j].id
		}
		return results[i].pos < results[j].pos
	})

	outs := make([]Out, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			err = r.err
			break
		}
		outs = append(outs, r.out)
	}

	clock.Stop()
	if opts.Metrics != nil {
		opts.Metrics.Record(clock.Elapsed(), len(outs), 0, err)
	}
	if err != nil {
		return nil, err
	}
	core.LogDebug("bake: %s of %d animations took %s", pass, len(outs), clock.Elapsed())
	return outs, nil
}
