package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/anima/engine/core"
)

// JobTask is one unit of work for the JobSystem. Run executes on a worker;
// exactly one of OnComplete or OnFailure is then called, followed by
// OnCompletionCallback.
type JobTask struct {
	ID                   uuid.UUID
	Name                 string
	Run                  func() error
	OnComplete           func()
	OnFailure            func(err error)
	OnCompletionCallback func()
}

// NewJobTask creates a task with a fresh identifier.
func NewJobTask(name string, run func() error) JobTask {
	return JobTask{ID: uuid.New(), Name: name, Run: run}
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	once       sync.Once
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
	}
	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	var err error
	if job.Run != nil {
		err = job.Run()
	}
	if err != nil {
		core.LogDebug("job %s (%s) failed: %s", job.Name, job.ID, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
	} else if job.OnComplete != nil {
		job.OnComplete()
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

// Shutdown stops accepting work and waits for every queued job to finish.
// It is safe to call more than once.
func (js *JobSystem) Shutdown() error {
	js.once.Do(func() {
		close(js.jobQueue)
	})
	js.wg.Wait()
	return nil
}

// Submit queues a job, blocking while the queue is full.
func (js *JobSystem) Submit(jt JobTask) {
	js.jobQueue <- jt
}
