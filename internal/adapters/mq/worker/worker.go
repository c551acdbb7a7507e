// Package worker runs file conversions pulled from the job queue. Each
// worker executes the full stage chain for one file to completion before
// reporting; a failed file is reported, never retried.
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/retargetlab/mocap/internal/adapters/mq/queue"
	"github.com/retargetlab/mocap/pkg/logger"
	"github.com/retargetlab/mocap/pkg/metrics"
)

// Result is the outcome of one conversion job.
type Result struct {
	Job       queue.Job
	Err       error
	Warnings  []string
	FramesIn  int
	FramesOut int
}

// Converter executes the conversion stage chain for a single job. It must be
// safe for concurrent use: jobs share no mutable state.
type Converter interface {
	Convert(ctx context.Context, job queue.Job) Result
}

// Worker processes jobs from the queue and emits results.
type Worker struct {
	queue     queue.Queue
	converter Converter
	results   chan<- Result
	name      string
	logger    logger.Logger
}

// New creates a worker with configuration options.
func New(q queue.Queue, c Converter, results chan<- Result, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		converter: c,
		results:   results,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run drains the queue until it closes or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	res := w.converter.Convert(ctx, job)
	metrics.RecordSequenceLatency(float64(time.Since(start).Milliseconds()))

	if res.Err != nil {
		metrics.RecordSequenceFailed()
		w.logger.Error(ctx, "conversion failed",
			logger.String("job", job.ID),
			logger.String("src", job.SrcPath),
			logger.Error(res.Err),
		)
	} else {
		metrics.RecordSequenceProcessed()
		metrics.RecordFrames(res.FramesIn, res.FramesOut)
	}

	select {
	case w.results <- res:
	case <-ctx.Done():
	}
}

// Pool manages a bounded set of workers over one queue.
type Pool struct {
	workers []*Worker
	results chan Result
	wg      sync.WaitGroup
}

// PoolSize computes the worker count for a batch: half the available
// processing units, never more than the number of files, never below one.
func PoolSize(configured, fileCount int) int {
	if configured > 0 {
		if configured > fileCount && fileCount > 0 {
			return fileCount
		}
		return configured
	}
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	if fileCount > 0 && n > fileCount {
		n = fileCount
	}
	return n
}

// NewPool creates a pool of workerCount workers sharing a results channel.
func NewPool(workerCount int, q queue.Queue, c Converter) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		workers: make([]*Worker, workerCount),
		results: make(chan Result, workerCount),
	}
	for i := range p.workers {
		p.workers[i] = New(q, c, p.results, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers. The results channel closes once every worker
// has drained the queue, so callers can range over Results.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
		metrics.UpdateWorkerCount(0)
	}()
}

// Results returns the channel of per-job outcomes.
func (p *Pool) Results() <-chan Result {
	return p.results
}
