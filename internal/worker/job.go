package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/document"
	"github.com/nyashahama/dx-scoping-backend/internal/metrics"
)

// JobConfig holds the per-file settings shared by every job in a batch.
type JobConfig struct {
	// OutDir receives one sub-directory per answer file.
	OutDir string

	// ClampMultiSelect truncates list answers to the catalogue cap before
	// rendering, as the HTTP API does.
	ClampMultiSelect bool

	// Now stamps the creation date on every document. Zero means the
	// generator's clock at render time.
	Now time.Time
}

// Job renders all document kinds for a single answer file. Each step is a
// separate method so Run reads top to bottom.
type Job struct {
	cat    *catalog.Catalog
	gen    *document.Generator
	cfg    JobConfig
	logger *slog.Logger
}

// NewJob constructs a Job with all required dependencies.
func NewJob(
	cat *catalog.Catalog,
	gen *document.Generator,
	cfg JobConfig,
	logger *slog.Logger,
) *Job {
	return &Job{
		cat:    cat,
		gen:    gen,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the pipeline for one file:
//
//  1. Decode the answer set.
//  2. Clamp list answers when configured.
//  3. Render every document kind.
//  4. Write them under OutDir/<file stem>/.
//
// An answer set that fails validation is not an error: each document is the
// input-error document, which is what the HTTP API would return too.
func (j *Job) Run(ctx context.Context, path string) error {
	log := j.logger.With("file", path)
	log.Debug("job: starting")
	start := time.Now()

	// ── 1. Decode ─────────────────────────────────────────────────────────────
	set, err := answer.ReadFile(path)
	if err != nil {
		return fmt.Errorf("job: %w", err)
	}

	// ── 2. Clamp ──────────────────────────────────────────────────────────────
	if j.cfg.ClampMultiSelect {
		set = set.Clamp(j.cat)
	}

	// ── 3. Render ─────────────────────────────────────────────────────────────
	opts := document.Options{Now: j.cfg.Now}
	outcome := "ok"
	if v := answer.Validate(j.cat, set); !v.OK {
		outcome = "input_error"
		log.Warn("job: answer set is invalid, writing error documents", "errors", len(v.Errors))
	}

	docs := make(map[document.Kind]string, len(document.Kinds()))
	for _, kind := range document.Kinds() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("job: %w", err)
		}
		body, err := j.gen.Generate(kind, set, opts)
		if err != nil {
			return fmt.Errorf("job: generate %s: %w", kind, err)
		}
		docs[kind] = body
		metrics.DocumentsGenerated.WithLabelValues(string(kind), outcome).Inc()
	}

	// ── 4. Write ──────────────────────────────────────────────────────────────
	dir := j.outputDir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("job: create output dir: %w", err)
	}
	for _, kind := range document.Kinds() {
		target := filepath.Join(dir, kind.Filename())
		if err := os.WriteFile(target, []byte(docs[kind]), 0o644); err != nil {
			return fmt.Errorf("job: write %s: %w", target, err)
		}
	}

	metrics.BatchJobDuration.Observe(time.Since(start).Seconds())
	log.Info("job: documents written", "dir", dir, "outcome", outcome)
	return nil
}

// outputDir is OutDir/<base name of path without extension>.
func (j *Job) outputDir(path string) string {
	base := filepath.Base(path)
	return filepath.Join(j.cfg.OutDir, strings.TrimSuffix(base, filepath.Ext(base)))
}
