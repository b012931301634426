package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables the demo catalog exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := demoCatalog()
			if db == "" {
				db = "shop"
			}
			if !c.DatabaseExists(db) {
				return fmt.Errorf("no such database: %s", db)
			}
			for _, name := range c.TableNames(db) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "shop", "database to list tables from")
	return cmd
}
