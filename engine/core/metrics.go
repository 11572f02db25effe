package core

import (
	"sync"
	"time"
)

// AVG_COUNT is the number of passes kept for the rolling average.
const AVG_COUNT uint8 = 30

// PassMetrics keeps a rolling average of pass durations together with the
// total volume of data processed. It is safe for concurrent use.
type PassMetrics struct {
	mu sync.Mutex

	counter uint8
	filled  bool
	times   [AVG_COUNT]time.Duration

	passes     int
	failures   int
	animations int
	bytes      int64
}

func NewPassMetrics() *PassMetrics {
	return &PassMetrics{}
}

// Record stores the outcome of one pass.
func (pm *PassMetrics) Record(elapsed time.Duration, animations int, bytes int, err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.times[pm.counter] = elapsed
	if pm.counter == AVG_COUNT-1 {
		pm.filled = true
	}
	pm.counter++
	pm.counter %= AVG_COUNT

	pm.passes++
	if err != nil {
		pm.failures++
		return
	}
	pm.animations += animations
	pm.bytes += int64(bytes)
}

// Average returns the mean duration over the last AVG_COUNT passes.
func (pm *PassMetrics) Average() time.Duration {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	n := int(pm.counter)
	if pm.filled {
		n = int(AVG_COUNT)
	}
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += pm.times[i]
	}
	return sum / time.Duration(n)
}

// Totals returns the number of passes, failed passes, animations and bytes processed.
func (pm *PassMetrics) Totals() (passes, failures, animations int, bytes int64) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.passes, pm.failures, pm.animations, pm.bytes
}
