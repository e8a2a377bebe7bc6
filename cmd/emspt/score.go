package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/228Abobus228/SPTOVZ/internal/answers"
	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/report"
)

type scoreOptions struct {
	form, impairment, gender string
	answersPath              string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one answer set",
		Long: `Score one answer set for a profile.

Answers are a JSON object {"q1": 5}, a list of {"id": .., "value": ..},
or a positional list of numbers in the form's key order. Use --answers -
to read from stdin.`,
		Example: `  emspt score --form A --impairment hearing --gender male --answers answers.json
  cat answers.json | emspt score -f json --form B --impairment vision --gender female --answers -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), s, opts)
		},
	}
	cmd.Flags().StringVar(&opts.form, "form", "", "Test form (A|B|C)")
	cmd.Flags().StringVar(&opts.impairment, "impairment", "", "Impairment (hearing|vision|motor)")
	cmd.Flags().StringVar(&opts.gender, "gender", "", "Gender (male|female)")
	cmd.Flags().StringVarP(&opts.answersPath, "answers", "a", "", "Answers JSON file, or - for stdin")
	for _, f := range []string{"form", "impairment", "gender", "answers"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func runScore(ctx context.Context, stdin io.Reader, stdout io.Writer, s settings, opts scoreOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	profile, err := emspt.ParseProfile(opts.form, opts.impairment, opts.gender)
	if err != nil {
		return err
	}
	out, err := report.NewFormatter(stdout, s.Format, !s.NoColor)
	if err != nil {
		return err
	}

	var raw []byte
	if opts.answersPath == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(opts.answersPath)
	}
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}

	store, err := loadStore(s.ConfigRoot)
	if err != nil {
		return err
	}
	engine := newEngine(store, s.Verbose)
	tables, err := engine.Tables(profile)
	if err != nil {
		return err
	}
	ans, err := answers.Parse(raw, answers.QuestionOrder(tables.Keys.Keys))
	if err != nil {
		return err
	}
	res, err := engine.Compute(ctx, ans, profile)
	if err != nil {
		return err
	}
	return out.Score(res)
}
