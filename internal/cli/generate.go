package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nyashahama/dx-scoping-backend/internal/document"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		input   string
		kind    string
		primary string
		date    string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one Markdown document from an answer file",
		Long: `Generate renders a one-page summary, SOW draft, or job post.

An answer file that fails validation still produces a document: the
input-error page listing every problem.

  dxscope generate -i answers.json --kind sow --primary システム連携 -o sow.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := document.ParseKind(kind)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			p, err := document.ParseType(primary)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			now, err := parseDate(date, opts.cfg.DateLocation)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			cat, scorer, err := opts.engine()
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			set, err := opts.readAnswers(cmd, cat, input)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			body, err := document.NewGenerator(cat, scorer).Generate(k, set, document.Options{Primary: p, Now: now})
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			if _, err := io.WriteString(w, body+"\n"); err != nil {
				_ = closeFn()
				return fmt.Errorf("generate: writing document: %w", err)
			}
			if err := closeFn(); err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			slog.Debug("document generated", "kind", k, "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "answer file (JSON, - for stdin)")
	cmd.Flags().StringVar(&kind, "kind", string(document.KindOnePager), "document kind (onepager|sow|job_post)")
	cmd.Flags().StringVar(&primary, "primary", "", "override the primary project type")
	cmd.Flags().StringVar(&date, "date", "", "creation date YYYY-MM-DD (default: today in DATE_TZ)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// parseDate reads a YYYY-MM-DD date in loc. Empty means now in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
