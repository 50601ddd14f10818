package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
)

func newQuestionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "Print the interview questions grouped by step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := opts.engine()
			if err != nil {
				return fmt.Errorf("questions: %w", err)
			}
			printCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	for i, st := range cat.Steps() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n", st.Title)
		for _, id := range st.QuestionIDs {
			q, _ := cat.Question(id)
			fmt.Fprintf(w, "%s  %s%s\n", q.ID, q.Text, selection(q))
			if q.Help != "" {
				fmt.Fprintf(w, "      (%s)\n", q.Help)
			}
			for _, o := range q.Options {
				fmt.Fprintf(w, "    %s. %s\n", o.Key, o.Label)
			}
		}
	}
}

func selection(q catalog.Question) string {
	switch {
	case !q.Multi:
		return ""
	case q.MaxSelections > 0:
		return fmt.Sprintf(" [multi, max %d]", q.MaxSelections)
	default:
		return " [multi]"
	}
}
