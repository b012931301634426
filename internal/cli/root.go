// Package cli wires the logiplan command tree. Grounded on the pack's
// Yacobolo-ducklake-dataplatform pkg/cli/root.go: a persistent-flag root
// command whose subcommands each live in their own file, plus an Execute
// entry point cmd/logiplan/main.go calls and turns into a process exit
// code.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/efeller/logiplan/catalog"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "logiplan",
		Short:         "Inspect and analyze logical query plans",
		Long:          "logiplan builds a demo logical plan against an in-memory catalog and runs it through the resolution analyzer, or lists what that catalog exposes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.WarnLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level analyzer logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	return rootCmd
}

// demoCatalog is the fixed catalog every subcommand inspects or analyzes
// against: two tables shaped for the SELECT name, SUM(amount) ... GROUP BY
// demo query newAnalyzeCmd runs.
func demoCatalog() *catalog.InMemory {
	c := catalog.New()
	c.AddDatabase("shop")
	c.AddTable("shop", "orders", demoOrdersSchema())
	c.AddTable("shop", "customers", demoCustomersSchema())
	return c
}
