package worker

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Submit when the job queue has no capacity left.
var ErrQueueFull = errors.New("job queue is full")

// Job is a unit of work executed by the pool, e.g. one note processing run.
type Job interface {
	Execute() error
	ID() string
}

// Worker pulls jobs from its own channel after registering it with the
// shared worker pool.
type Worker struct {
	id         int
	workerPool chan chan Job
	jobChannel chan Job
	quit       chan bool
	wg         *sync.WaitGroup
	logger     *logrus.Logger
}

// NewWorker creates a Worker bound to the given pool.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, logger *logrus.Logger) Worker {
	return Worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan Job),
		quit:       make(chan bool),
		wg:         wg,
		logger:     logger,
	}
}

// Start makes the Worker listen for jobs on its job channel.
func (w Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			// Re-register this worker's channel so the dispatcher can
			// hand it the next job.
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Infof("Worker %d: started job %s", w.id, job.ID())
				if err := job.Execute(); err != nil {
					w.logger.Errorf("Worker %d: job %s failed: %v", w.id, job.ID(), err)
				} else {
					w.logger.Infof("Worker %d: finished job %s", w.id, job.ID())
				}
			case <-w.quit:
				return
			}
		}
	}()
}

// Stop signals the worker to exit after its current job.
func (w Worker) Stop() {
	go func() {
		w.quit <- true
	}()
}

// Dispatcher owns a bounded queue of jobs and a pool of workers draining it.
// The pool size caps how many note pipelines run concurrently, which in turn
// bounds concurrent calls into the ASR and summarization engines.
type Dispatcher struct {
	maxWorkers int
	workerPool chan chan Job
	jobQueue   chan Job
	workers    []Worker
	wg         sync.WaitGroup
	quit       chan bool
	logger     *logrus.Logger
}

// NewDispatcher creates a Dispatcher with the given worker count and queue
// capacity.
func NewDispatcher(maxWorkers, queueSize int, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		maxWorkers: maxWorkers,
		workerPool: make(chan chan Job, maxWorkers),
		jobQueue:   make(chan Job, queueSize),
		workers:    make([]Worker, 0, maxWorkers),
		quit:       make(chan bool),
		logger:     logger,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	d.logger.Infof("Dispatcher starting with %d workers", d.maxWorkers)
	for i := 1; i <= d.maxWorkers; i++ {
		w := NewWorker(i, d.workerPool, &d.wg, d.logger)
		d.workers = append(d.workers, w)
		w.Start()
	}
	go d.dispatch()
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			// Block until a worker frees up; queue depth already bounds
			// how many jobs can pile up behind this handoff.
			jobChannel := <-d.workerPool
			jobChannel <- job
		case <-d.quit:
			return
		}
	}
}

// Submit queues a job for execution. It never blocks; a full queue returns
// ErrQueueFull so the caller can shed load.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.jobQueue <- job:
		return nil
	default:
		d.logger.Warnf("Job queue full, rejecting job %s", job.ID())
		return ErrQueueFull
	}
}

// Stop shuts down the dispatch loop, waits for all workers to finish their
// current jobs, then runs any jobs still sitting in the queue so that every
// caller waiting on a submitted job gets a result.
func (d *Dispatcher) Stop() {
	d.quit <- true
	for _, w := range d.workers {
		w.Stop()
	}
	d.wg.Wait()

	for {
		select {
		case job := <-d.jobQueue:
			d.logger.Infof("Draining queued job %s during shutdown", job.ID())
			if err := job.Execute(); err != nil {
				d.logger.Errorf("Queued job %s failed during shutdown: %v", job.ID(), err)
			}
		default:
			d.logger.Info("Dispatcher stopped")
			return
		}
	}
}
