package main

import (
	"fmt"

	"github.com/spf13/cobra"

	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Bring the database schema up to the latest version. With --rollback N
the last N migrations are reverted instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rollback, _ := cmd.Flags().GetInt("rollback")
			logger := opts.logger(cmd)

			var (
				version uint
				err     error
			)
			if cmd.Flags().Changed("rollback") {
				version, err = storage.RollbackMigrations(opts.dbPath, rollback)
			} else {
				version, err = storage.RunMigrations(opts.dbPath)
			}
			if err != nil {
				return err
			}
			logger.Info("Migrations finished", applog.FieldOperation, applog.OpMigrate, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().Int("rollback", 0, "number of migrations to revert")
	return cmd
}
