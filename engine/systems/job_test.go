package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 2)
	require.NoError(t, err)

	var ran, completed, failed, finished int32
	var mu sync.Mutex
	var failures []error
	boom := errors.New("boom")

	for i := 0; i < 50; i++ {
		i := i
		job := NewJobTask("count", func() error {
			atomic.AddInt32(&ran, 1)
			if i%10 == 0 {
				return boom
			}
			return nil
		})
		job.OnComplete = func() { atomic.AddInt32(&completed, 1) }
		job.OnFailure = func(err error) {
			atomic.AddInt32(&failed, 1)
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
		}
		job.OnCompletionCallback = func() { atomic.AddInt32(&finished, 1) }
		js.Submit(job)
	}
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(50), ran)
	assert.Equal(t, int32(45), completed)
	assert.Equal(t, int32(5), failed)
	assert.Equal(t, int32(50), finished)
	for _, err := range failures {
		assert.ErrorIs(t, err, boom)
	}
}

func TestNewJobTaskIDs(t *testing.T) {
	a := NewJobTask("a", nil)
	b := NewJobTask("b", nil)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
