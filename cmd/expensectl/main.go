// Command expensectl administers an expensetracker SQLite database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

type rootOptions struct {
	dbPath   string
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "expensectl",
		Short:         "Administer the expense tracker database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := cli.LoadEnvFile(opts.envFile); err != nil {
					return fmt.Errorf("load %s: %w", opts.envFile, err)
				}
			}
			if opts.dbPath == "" {
				opts.dbPath = config.Load().SQLiteDBPath
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to load before reading configuration")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(usersCmd(opts))
	cmd.AddCommand(categoriesCmd(opts))
	cmd.AddCommand(reportCmd(opts))
	return cmd
}

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) logger(cmd *cobra.Command) *applog.Logger {
	return applog.New(applog.Config{
		Level:     applog.ParseLevel(o.logLevel),
		Component: applog.ComponentCLI,
		Writer:    cmd.ErrOrStderr(),
	})
}

// openBackend opens the SQLite store named by --db. Event publishing stays
// off; report export is enabled when the environment configures it.
func (o *rootOptions) openBackend(cmd *cobra.Command) (*backend.Result, error) {
	cfg := config.Load()
	return backend.NewFactory(o.logger(cmd)).Create(cmd.Context(), backend.Config{
		Type:                         backend.SQLiteBackend,
		SQLiteDBPath:                 o.dbPath,
		GoogleSpreadsheetID:          cfg.GoogleSpreadsheetID,
		GoogleReportSheetName:        cfg.GoogleReportSheetName,
		GoogleServiceAccountJSON:     cfg.GoogleServiceAccountJSON,
		GoogleServiceAccountJSONFile: cfg.GoogleServiceAccountJSONFile,
	})
}
