package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nyashahama/dx-scoping-backend/internal/answer"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

// ─── validate ─────────────────────────────────────────────────────────────────

func newValidateCmd(opts *options) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an answer file and report step completeness",
		Long: `Validate checks that every question is answered in the right form.

It prints one line per problem and exits with status 1 when any are found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := opts.engine()
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			set, err := opts.readAnswers(cmd, cat, input)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			w := cmd.OutOrStdout()
			for _, st := range answer.StepStatus(cat, set) {
				mark := " "
				if st.Complete {
					mark = "x"
				}
				fmt.Fprintf(w, "[%s] %s\n", mark, st.Title)
			}

			v := answer.Validate(cat, set)
			if v.OK {
				fmt.Fprintln(w, "OK")
				return nil
			}
			for _, e := range v.Errors {
				fmt.Fprintf(w, "- %s\n", e)
			}
			return ErrInvalidAnswers
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "answer file (JSON, - for stdin)")
	return cmd
}

// ─── score ────────────────────────────────────────────────────────────────────

type scoreOutput struct {
	Valid      bool               `json:"valid"`
	Errors     []string           `json:"errors"`
	Types      []typeScore        `json:"types"`
	TopTypes   []scoring.TypeName `json:"top_types"`
	Difficulty scoring.Result     `json:"difficulty"`
	Risk       scoring.Result     `json:"risk"`
}

type typeScore struct {
	Type    scoring.TypeName `json:"type"`
	Score   int              `json:"score"`
	Reasons []string         `json:"reasons"`
}

func newScoreCmd(opts *options) *cobra.Command {
	var (
		input  string
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank project types and grade difficulty and risk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, scorer, err := opts.engine()
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}
			set, err := opts.readAnswers(cmd, cat, input)
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}

			v := answer.Validate(cat, set)
			ts := scorer.Types(set)
			out := scoreOutput{
				Valid:      v.OK,
				Errors:     v.Errors,
				TopTypes:   ts.Top(topK),
				Difficulty: scorer.Difficulty(set),
				Risk:       scorer.Risk(set),
			}
			for _, t := range scoring.Types() {
				out.Types = append(out.Types, typeScore{Type: t, Score: ts.Scores[t], Reasons: ts.Reasons[t]})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printScore(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "answer file (JSON, - for stdin)")
	cmd.Flags().IntVarP(&topK, "top", "k", 3, "number of recommended types")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func printScore(w io.Writer, out scoreOutput) {
	if !out.Valid {
		fmt.Fprintf(w, "警告: 入力エラー %d 件（スコアは参考値）\n", len(out.Errors))
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "推奨案件タイプ:")
	for i, t := range out.TopTypes {
		fmt.Fprintf(w, "  %d. %s\n", i+1, t)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "タイプ別スコア:")
	for _, t := range out.Types {
		fmt.Fprintf(w, "  %-12s %3d  %s\n", t.Type, t.Score, strings.Join(t.Reasons, "; "))
	}
	fmt.Fprintln(w)

	printResult(w, "難易度", out.Difficulty)
	printResult(w, "炎上リスク", out.Risk)
}

func printResult(w io.Writer, title string, r scoring.Result) {
	fmt.Fprintf(w, "%s: %s (score=%d)\n", title, r.Level, r.Score)
	for _, reason := range r.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
}
