package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyashahama/dx-scoping-backend/internal/document"
	"github.com/nyashahama/dx-scoping-backend/internal/worker"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		inDir   string
		outDir  string
		date    string
		workers int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render every document for a directory of answer files",
		Long: `Batch reads every *.json answer file in --in and writes
<out>/<file name>/{onepager.md,sow.md,job_post.md} for each.

Files are processed concurrently. A file that cannot be read is reported
and the rest of the batch continues; the command exits 1 if any failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseDate(date, opts.cfg.DateLocation)
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}
			cat, scorer, err := opts.engine()
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}
			paths, err := worker.Collect(inDir)
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}
			if len(paths) == 0 {
				return fmt.Errorf("batch: no *.json files in %s", inDir)
			}

			logger := slog.Default()
			job := worker.NewJob(cat, document.NewGenerator(cat, scorer), worker.JobConfig{
				OutDir:           outDir,
				ClampMultiSelect: opts.clamp,
				Now:              now,
			}, logger)
			if !cmd.Flags().Changed("workers") {
				workers = opts.cfg.WorkerCount
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = opts.cfg.JobTimeout
			}
			runner := worker.NewRunner(job, worker.RunnerConfig{
				Workers:    workers,
				JobTimeout: timeout,
			}, logger)

			sum, err := runner.Run(cmd.Context(), paths)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d succeeded, %d failed\n", len(sum.Succeeded), len(sum.Failed))
			for _, f := range sum.Failed {
				fmt.Fprintf(w, "  FAIL %s: %v\n", f.Path, f.Err)
			}
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}
			if len(sum.Failed) > 0 {
				return fmt.Errorf("batch: %d of %d files failed", len(sum.Failed), len(paths))
			}
			return nil
		},
	}

	def := worker.DefaultRunnerConfig()
	cmd.Flags().StringVar(&inDir, "in", "", "directory of answer files")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory")
	cmd.Flags().StringVar(&date, "date", "", "creation date YYYY-MM-DD (default: today in DATE_TZ)")
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "files processed concurrently (env WORKER_COUNT)")
	cmd.Flags().DurationVar(&timeout, "timeout", def.JobTimeout, "per-file deadline (env JOB_TIMEOUT)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
