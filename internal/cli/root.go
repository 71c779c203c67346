// Package cli implements the menucost command-line tool.
package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/menucost/internal/config"
	"github.com/Simplici0/menucost/internal/db"
	"github.com/Simplici0/menucost/internal/logger"
	"github.com/Simplici0/menucost/internal/service"
	"github.com/Simplici0/menucost/internal/store"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what subcommands share once flags are parsed.
type app struct {
	dbPath string
	debug  bool
	cfg    config.Config
	log    *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "menucost",
		Short:        "Cost recipes and entrees from priced ingredients",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DBPath = a.dbPath
			}
			a.cfg = cfg
			a.log = logger.Setup(logger.Config{Debug: a.debug || cfg.LogDebug, Out: cmd.ErrOrStderr()})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (defaults to DB_PATH)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(migrateCmd(a))
	cmd.AddCommand(seedCmd(a))
	cmd.AddCommand(convertCmd(a))
	cmd.AddCommand(costCmd(a))
	cmd.AddCommand(reportCmd(a))
	return cmd
}

func (a *app) open(ctx context.Context) (*sql.DB, error) {
	return db.Open(ctx, a.cfg.DBPath)
}

func (a *app) service(database *sql.DB) *service.Service {
	return service.New(store.New(database, a.log), a.cfg.Settings, a.log)
}
