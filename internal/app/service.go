// Package service runs conversion batches: it discovers input bundles,
// feeds them to a worker pool, and aggregates per-file outcomes into a
// batch report. A file failure never aborts the batch.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/retargetlab/mocap/internal/adapters/bundle"
	"github.com/retargetlab/mocap/internal/adapters/ingest"
	jobqueue "github.com/retargetlab/mocap/internal/adapters/mq/queue"
	workerpool "github.com/retargetlab/mocap/internal/adapters/mq/worker"
	"github.com/retargetlab/mocap/internal/domain/model"
	"github.com/retargetlab/mocap/internal/domain/project"
	"github.com/retargetlab/mocap/internal/domain/resample"
	"github.com/retargetlab/mocap/internal/domain/translate"
	"github.com/retargetlab/mocap/pkg/logger"
	"github.com/retargetlab/mocap/pkg/metrics"
)

// Service converts batches of motion bundles to a target parameter schema.
type Service struct {
	targetSchema   model.Schema
	targetFPS      float64
	fallbackFPS    float64
	workerCount    int
	queueSize      int
	jointIndices   []int
	allowOverwrite bool

	ingest *ingest.Adapter

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTargetSchema sets the output parameter schema.
func WithTargetSchema(s model.Schema) Option {
	return func(svc *Service) {
		if s != "" {
			svc.targetSchema = s
		}
	}
}

// WithTargetFPS sets the output frame rate.
func WithTargetFPS(fps float64) Option {
	return func(svc *Service) {
		if fps > 0 {
			svc.targetFPS = fps
		}
	}
}

// WithFallbackFPS sets the frame rate assumed for bundles that carry none.
func WithFallbackFPS(fps float64) Option {
	return func(svc *Service) {
		if fps > 0 {
			svc.fallbackFPS = fps
		}
	}
}

// WithWorkerCount sets the number of worker goroutines. Zero means derive
// from the machine and the batch size.
func WithWorkerCount(count int) Option {
	return func(svc *Service) {
		if count > 0 {
			svc.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(svc *Service) {
		if size > 0 {
			svc.queueSize = size
		}
	}
}

// WithJointIndices restricts the output pose matrix to the given joints.
func WithJointIndices(indices []int) Option {
	return func(svc *Service) {
		svc.jointIndices = indices
	}
}

// WithAllowOverwrite permits replacing existing output files.
func WithAllowOverwrite(allow bool) Option {
	return func(svc *Service) {
		svc.allowOverwrite = allow
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	svc := &Service{
		targetSchema: model.SchemaSMPLX,
		targetFPS:    model.DefaultFPS,
		fallbackFPS:  model.DefaultFPS,
		queueSize:    1024,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = logger.Get().Named("service")
	}
	svc.ingest = ingest.New(ingest.WithDefaultFPS(svc.fallbackFPS))
	return svc
}

// Run converts every job in the batch and returns the aggregated report.
// The returned error covers batch-level problems only; per-file failures
// live in the report.
func (s *Service) Run(ctx context.Context, jobs []jobqueue.Job) (*BatchReport, error) {
	if len(jobs) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.targetSchema == model.SchemaSMPLX && len(s.jointIndices) > 0 {
		return nil, fmt.Errorf("%w: joint projection narrows the pose matrix and cannot precede the %s split", ErrBadBatch, model.SchemaSMPLX)
	}

	capacity := s.queueSize
	if capacity < len(jobs) {
		capacity = len(jobs)
	}
	q := jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(capacity))
	for _, j := range jobs {
		if !q.Enqueue(ctx, j) {
			_ = q.Close()
			return nil, fmt.Errorf("%w: could not enqueue %q", ErrBadBatch, j.SrcPath)
		}
	}
	_ = q.Close()

	workers := workerpool.PoolSize(s.workerCount, len(jobs))
	pool := workerpool.NewPool(workers, q, s)

	report := NewBatchReport(s.targetSchema, s.targetFPS, workers)
	s.logger.Info(ctx, "batch started",
		logger.String("run", report.RunID),
		logger.Int("files", len(jobs)),
		logger.Int("workers", workers),
		logger.String("schema", string(s.targetSchema)),
	)

	pool.Start(ctx)
	for res := range pool.Results() {
		report.Record(res)
	}
	report.Finish()

	s.logger.Info(ctx, "batch finished",
		logger.String("run", report.RunID),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.String("elapsed", report.Elapsed().String()),
	)
	return report, ctx.Err()
}

// Convert executes the stage chain for one file. It satisfies the worker
// pool's Converter contract and must stay safe for concurrent use.
func (s *Service) Convert(ctx context.Context, job jobqueue.Job) workerpool.Result {
	res := workerpool.Result{Job: job}

	b, err := s.timedRead(job.SrcPath)
	if err != nil {
		res.Err = fmt.Errorf("read %q: %w", job.SrcPath, err)
		return res
	}

	rec, err := s.timedStage("ingest", func() (*model.Record, error) {
		return s.ingest.FromBundle(b)
	})
	if err != nil {
		res.Err = fmt.Errorf("ingest %q: %w", job.SrcPath, err)
		return res
	}
	res.FramesIn = rec.Frames()

	rec, err = s.timedStage("translate", func() (*model.Record, error) {
		return translate.PhysToSMPL(rec)
	})
	if err != nil {
		res.Err = fmt.Errorf("translate %q: %w", job.SrcPath, err)
		return res
	}

	if len(s.jointIndices) > 0 {
		rec, err = s.timedStage("project", func() (*model.Record, error) {
			return project.Joints(rec, s.jointIndices)
		})
		if err != nil {
			res.Err = fmt.Errorf("project %q: %w", job.SrcPath, err)
			return res
		}
	}

	rec, err = s.timedStage("resample", func() (*model.Record, error) {
		return resample.Resample(rec, s.targetFPS)
	})
	if err != nil {
		res.Err = fmt.Errorf("resample %q: %w", job.SrcPath, err)
		return res
	}

	var out bundle.Bundle
	switch s.targetSchema {
	case model.SchemaSMPLX:
		rec, err = s.timedStage("split", func() (*model.Record, error) {
			return translate.SMPLToSMPLX(rec)
		})
		if err != nil {
			res.Err = fmt.Errorf("split %q: %w", job.SrcPath, err)
			return res
		}
		out = ingest.ToSMPLXBundle(rec)
	default:
		out = ingest.ToSMPLBundle(rec)
	}
	res.FramesOut = rec.Frames()

	for _, w := range rec.Log {
		metrics.RecordWarning(string(w.Kind))
	}
	res.Warnings = rec.Log.Messages()

	if err := s.timedWrite(job.DstPath, out); err != nil {
		res.Err = fmt.Errorf("write %q: %w", job.DstPath, err)
		return res
	}
	return res
}

func (s *Service) timedStage(stage string, fn func() (*model.Record, error)) (*model.Record, error) {
	start := time.Now()
	rec, err := fn()
	metrics.RecordStageLatency(stage, float64(time.Since(start).Milliseconds()))
	return rec, err
}

func (s *Service) timedRead(path string) (bundle.Bundle, error) {
	start := time.Now()
	b, err := bundle.Read(path)
	metrics.RecordStageLatency("read", float64(time.Since(start).Milliseconds()))
	return b, err
}

func (s *Service) timedWrite(path string, b bundle.Bundle) error {
	start := time.Now()
	err := bundle.Write(path, b, s.allowOverwrite)
	metrics.RecordStageLatency("write", float64(time.Since(start).Milliseconds()))
	return err
}
