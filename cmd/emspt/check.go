package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/228Abobus228/SPTOVZ/internal/report"
)

func newCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the configuration root and list profiles that cannot be scored",
		Long: `Load every file under the configuration root. Malformed files fail
the check. Profiles missing keys, lie correction, norms or a sten table are
listed; with --strict any such gap fails the check too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), s, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any profile cannot be scored")
	return cmd
}

func runCheck(stdout io.Writer, s settings, strict bool) error {
	out, err := report.NewFormatter(stdout, s.Format, !s.NoColor)
	if err != nil {
		return err
	}
	store, err := loadStore(s.ConfigRoot)
	if err != nil {
		return err
	}
	gaps := store.Coverage()
	if err := out.Coverage(store.Root(), gaps); err != nil {
		return err
	}
	if strict && len(gaps) > 0 {
		return fmt.Errorf("%d profiles cannot be scored", len(gaps))
	}
	return nil
}
