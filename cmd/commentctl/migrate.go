package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"comment-history-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := database.SafeAutoMigrate(e.db, e.logger); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations completed")
	return nil
}
