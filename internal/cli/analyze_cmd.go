package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efeller/logiplan/analyzer"
	"github.com/efeller/logiplan/sql"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the built-in demo query through the analyzer and print the resolved plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := demoCatalog()
			sctx := sql.NewContext(context.Background(), c, nil)

			unresolved := demoUnresolvedPlan()
			fmt.Fprintln(cmd.OutOrStdout(), "-- unresolved --")
			fmt.Fprintln(cmd.OutOrStdout(), unresolved.String())

			resolved, err := analyzer.NewDefault(c).Analyze(sctx, unresolved)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "-- resolved --")
			fmt.Fprintln(cmd.OutOrStdout(), resolved.String())
			return nil
		},
	}
}
