// Package worker renders documents for a directory of saved answer files.
// It backs the CLI's batch command and is independent of the HTTP layer:
// a Job handles one file and the Runner fans a list of files out over a
// bounded pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nyashahama/dx-scoping-backend/internal/metrics"
)

// ─── PROCESSOR INTERFACE ──────────────────────────────────────────────────────

// Processor handles one answer file. *Job is the production implementation;
// tests substitute their own.
type Processor interface {
	Run(ctx context.Context, path string) error
}

var errNotRun = errors.New("worker: not run")

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. All fields have
// defaults if zero-valued; call DefaultRunnerConfig() to get them.
type RunnerConfig struct {
	// Workers is the number of files processed concurrently. Default: 4.
	Workers int

	// JobTimeout is the per-file context deadline. Default: 30s.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns the defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:    4,
		JobTimeout: 30 * time.Second,
	}
}

// Failure records why one file could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Summary is the outcome of a batch. Both slices follow input order.
type Summary struct {
	Succeeded []string
	Failed    []Failure
}

// Runner processes a batch of files over a bounded pool. A failing file does
// not stop the others; it is logged and reported in the Summary.
type Runner struct {
	proc   Processor
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(proc Processor, cfg RunnerConfig, logger *slog.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultRunnerConfig().Workers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultRunnerConfig().JobTimeout
	}
	return &Runner{proc: proc, cfg: cfg, logger: logger}
}

// Run processes every path and blocks until all are done. The returned error
// is non-nil only when ctx ends before the batch completes; per-file errors
// are in Summary.Failed, including files that never started.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	r.logger.Info("worker: starting batch", "files", len(paths), "workers", r.cfg.Workers)

	errs := make([]error, len(paths))
	for i := range errs {
		errs[i] = errNotRun
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := r.runOne(gctx, path)
			mu.Lock()
			errs[i] = err
			mu.Unlock()
			// Per-file failures never cancel the group.
			return nil
		})
	}
	_ = g.Wait()

	var sum Summary
	for i, path := range paths {
		switch err := errs[i]; {
		case err == nil:
			sum.Succeeded = append(sum.Succeeded, path)
		case errors.Is(err, errNotRun):
			sum.Failed = append(sum.Failed, Failure{Path: path, Err: fmt.Errorf("%w: %w", errNotRun, ctx.Err())})
		default:
			sum.Failed = append(sum.Failed, Failure{Path: path, Err: err})
		}
	}

	r.logger.Info("worker: batch finished",
		"succeeded", len(sum.Succeeded),
		"failed", len(sum.Failed),
	)
	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("worker: batch interrupted: %w", err)
	}
	return sum, nil
}

// runOne executes a single file under its own deadline.
func (r *Runner) runOne(ctx context.Context, path string) error {
	jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
	defer cancel()

	if err := r.proc.Run(jobCtx, path); err != nil {
		metrics.BatchJobs.WithLabelValues("failed").Inc()
		r.logger.Error("worker: job failed", "file", path, "error", err)
		return err
	}
	metrics.BatchJobs.WithLabelValues("ok").Inc()
	return nil
}

// ─── INPUT ────────────────────────────────────────────────────────────────────

// Collect returns the *.json files directly under dir, sorted by name.
func Collect(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("worker: read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
