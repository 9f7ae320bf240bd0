package worker

import (
	"context"
	"log"
	"sync"
)

// Job is a unit of work, typically one user's delivery attempt.
type Job struct {
	Process func(ctx context.Context)
}

// worker executes jobs from the shared queue until the pool context is
// cancelled.
type worker struct {
	id   int
	jobs chan Job
	wg   *sync.WaitGroup
}

func (w *worker) start(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			job.Process(ctx)
		case <-ctx.Done():
			log.Printf("INFO: worker %d stopping due to context cancellation", w.id)
			return
		}
	}
}

// Pool is a fixed-size worker pool. Its size bounds how many jobs run
// concurrently; callers needing a join barrier wait on their own WaitGroup
// inside the submitted jobs.
type Pool struct {
	jobs    chan Job
	size    int
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

// NewPool creates a pool of size workers with a job queue of queueSize.
func NewPool(size, queueSize int) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueSize < size {
		queueSize = size
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:   make(chan Job, queueSize),
		size:   size,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run starts the workers. It is safe to call more than once; only the first
// call has an effect.
func (p *Pool) Run() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	log.Printf("INFO: starting worker pool with %d workers", p.size)
	for i := 1; i <= p.size; i++ {
		p.wg.Add(1)
		w := &worker{id: i, jobs: p.jobs, wg: &p.wg}
		go w.start(p.ctx)
	}
}

// Submit enqueues a job. It blocks while the queue is full, which is what
// bounds a caller that produces jobs faster than the pool drains them.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// Stop cancels the pool context and waits for all workers to exit. Jobs
// still queued are discarded.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}
