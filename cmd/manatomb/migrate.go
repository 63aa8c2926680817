package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/storage"
)

// migrateCmd groups schema migration commands
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: withMigrations(func(cmd *cobra.Command, mgr *storage.MigrationManager, args []string) error {
		return mgr.Up()
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (drops all data)",
	Args:  cobra.NoArgs,
	RunE: withMigrations(func(cmd *cobra.Command, mgr *storage.MigrationManager, args []string) error {
		return mgr.Down()
	}),
}

var migrateVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"status"},
	Short:   "Show the current schema version",
	Args:    cobra.NoArgs,
	RunE: withMigrations(func(cmd *cobra.Command, mgr *storage.MigrationManager, args []string) error {
		status, err := mgr.Status()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %t\n", status.Version, status.Dirty)
		return nil
	}),
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Mark the schema as a version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrations(func(cmd *cobra.Command, mgr *storage.MigrationManager, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return mgr.Force(version)
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	migrateCmd.AddCommand(migrateForceCmd)
}

// withMigrations opens a migration manager on the configured database for fn.
func withMigrations(fn func(*cobra.Command, *storage.MigrationManager, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path, err := databasePath(cfg)
		if err != nil {
			return err
		}

		mgr, err := storage.NewMigrationManager(path)
		if err != nil {
			return err
		}
		defer func() {
			if err := mgr.Close(); err != nil {
				logger.Warn("Failed to close migration manager", zap.Error(err))
			}
		}()

		if err := fn(cmd, mgr, args); err != nil {
			return err
		}
		logger.Info("Migration command complete", zap.String("command", cmd.Name()), zap.String("database", path))
		return nil
	}
}
