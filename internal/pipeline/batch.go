package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/swiftaudit/swiftaudit/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent auditing of multiple project roots.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-root execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each root.
	// We use a factory so each scan gets fresh per-scan state; analyzers
	// that accumulate cross-file data must never see two roots at once.
	pipelineFactory func(root string) *Pipeline

	// concurrency is the maximum number of concurrent scans.
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

// WithConcurrency sets the maximum number of concurrent scans.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called once per root so that pipeline
// state never leaks between scans.
func NewBatchProcessor(pipelineFactory func(root string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
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

// ProcessBatch audits multiple roots concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each root gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for roots that failed.
// The error return indicates whether the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, roots []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch processing",
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
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("auditing root",
				"root", root,
				"index", i+1,
				"total", len(roots),
			)

			report := model.NewScanReport(root)
			pipeline := bp.pipelineFactory(root)
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error; the report carries the
			// error information when the scan failed.
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("audit failed",
					"root", root,
					"error", err,
				)
				// Don't return the error to errgroup - the remaining
				// roots should still be scanned.
				return nil
			}

			bp.logger.Info("audit completed", "root", root)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_roots", len(roots),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback audits multiple roots and calls a callback for
// each completed scan. This is useful for streaming results.
//
// The callback receives the report and the index of the root in the
// original slice. It is called from the goroutine that completed the
// scan, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	roots []string,
	callback func(report *model.ScanReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
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
