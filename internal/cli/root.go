// Package cli implements the dxscope command line using Cobra. Every command
// works offline against the built-in catalogue, or against YAML overrides
// passed with --catalog and --tables.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/config"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

// ErrInvalidAnswers is returned by validate when the answer set has errors,
// so the process exits non-zero.
var ErrInvalidAnswers = errors.New("answer set is invalid")

// options carries the persistent flags shared by every subcommand. After
// PersistentPreRunE, cfg holds the environment config and any flag the user
// did not set has been filled from it.
type options struct {
	catalogPath string
	tablesPath  string
	verbose     bool
	clamp       bool

	cfg *config.Config
}

// NewRootCmd builds the command tree. Tests call it directly with SetArgs.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "dxscope",
		Short: "DX project scoping diagnostic",
		Long: `dxscope scores a 25-question DX interview and drafts the scoping documents.

It ranks eight project types, grades implementation difficulty and
delivery risk, and renders a one-page summary, a SOW draft, and a job
post as Markdown.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(cmd.ErrOrStderr(), opts.verbose); err != nil {
				return err
			}
			return opts.loadConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "question catalogue YAML (env CATALOG_PATH, default: built-in)")
	root.PersistentFlags().StringVar(&opts.tablesPath, "tables", "", "scoring tables YAML (env TABLES_PATH, default: built-in)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.clamp, "clamp", true, "truncate multi-select answers to the questionnaire cap (env CLAMP_MULTI_SELECT)")

	root.AddCommand(
		newQuestionsCmd(opts),
		newValidateCmd(opts),
		newScoreCmd(opts),
		newGenerateCmd(opts),
		newBatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and returns any error. SIGINT and SIGTERM
// cancel the command context, which stops a running batch.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrInvalidAnswers) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

func setupLogging(w io.Writer, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	return nil
}

// loadConfig reads the environment (and .env) the same way the server does.
// CATALOG_PATH, TABLES_PATH and CLAMP_MULTI_SELECT apply only when the
// matching flag is not given.
func (o *options) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	o.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("catalog") {
		o.catalogPath = cfg.CatalogPath
	}
	if !flags.Changed("tables") {
		o.tablesPath = cfg.TablesPath
	}
	if !flags.Changed("clamp") {
		o.clamp = cfg.ClampMultiSelect
	}
	slog.Debug("config loaded", "catalog", o.catalogPath, "tables", o.tablesPath, "clamp", o.clamp)
	return nil
}

// engine loads the catalogue and scorer named by the persistent flags.
func (o *options) engine() (*catalog.Catalog, *scoring.Scorer, error) {
	cat := catalog.Default()
	if o.catalogPath != "" {
		var err error
		cat, err = catalog.LoadFile(o.catalogPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("catalogue loaded", "path", o.catalogPath, "questions", cat.Len())
	}

	tables, err := scoring.LoadTablesFile(o.tablesPath)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := scoring.NewScorer(tables)
	if err != nil {
		return nil, nil, err
	}
	return cat, scorer, nil
}

// readAnswers decodes the answer file at path ("-" is stdin) and clamps it
// when --clamp is set.
func (o *options) readAnswers(cmd *cobra.Command, cat *catalog.Catalog, path string) (answer.Set, error) {
	var (
		set answer.Set
		err error
	)
	if path == "-" {
		set, err = answer.Decode(cmd.InOrStdin())
	} else {
		set, err = answer.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if o.clamp {
		set = set.Clamp(cat)
	}
	slog.Debug("answers loaded", "path", path, "answered", len(set), "clamp", o.clamp)
	return set, nil
}

// openOutput returns stdout, or a created file when path is non-empty.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
