package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docsweep/docsweep/internal/model"
)

// BatchProcessor handles concurrent scanning of multiple documentation
// roots. It uses errgroup to manage goroutines and respect concurrency
// limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-root execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each root.
	// We use a factory so each root gets a fresh pipeline instance and
	// per-root configuration can be applied.
	pipelineFactory func(root string) *Pipeline

	// concurrency is the maximum number of roots scanned at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed scan reports.
	// Access is synchronized via mutex.
	results []*model.ScanReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrently scanned roots.
// Default is config.DefaultBatchSize if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called once per root to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// roots and allows per-root customization such as overriding extensions or
// ignore patterns.
func NewBatchProcessor(pipelineFactory func(root string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     defaultBatchConcurrency,
		results:         make([]*model.ScanReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// defaultBatchConcurrency bounds simultaneous root scans. Each root already
// fans out internally, so this stays small.
const defaultBatchConcurrency = 4

// ProcessBatch scans multiple roots concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each root gets its own goroutine, but only 'concurrency' goroutines run
// simultaneously.
//
// Returns all reports collected, even for roots that failed. The error
// return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, roots []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch scan",
		"total_roots", len(roots),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ScanReport, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, root := range roots {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("scanning root",
				"root", root,
				"index", i+1,
				"total", len(roots),
			)

			report := model.NewScanReport(root)

			pipeline := bp.pipelineFactory(root)
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error
			// The report contains error information if the scan failed
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("scan failed",
					"root", root,
					"error", err,
				)
				// Don't return the error to the errgroup; other roots
				// should still be scanned. The error is recorded in the
				// report.
				return nil
			}

			bp.logger.Info("scan completed",
				"root", root,
				"documents", len(report.Documents),
				"duplicate_groups", len(report.DuplicateGroups()),
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch scan complete",
		"total_roots", len(roots),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback scans multiple roots and calls a callback for
// each completed scan. This is useful for streaming results as they finish
// instead of waiting for the whole batch.
//
// The callback receives the report and the index of the root in the
// original slice. The callback is called from the goroutine that completed
// the scan, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	roots []string,
	callback func(report *model.ScanReport, index int),
) error {
	bp.logger.Info("starting batch scan with callback",
		"total_roots", len(roots),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, root := range roots {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewScanReport(root)
			pipeline := bp.pipelineFactory(root)
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
