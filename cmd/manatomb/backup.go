package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/storage"
)

var backupDir string

// backupCmd groups database backup commands
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore database backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Write a verified snapshot of the database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		path, err := storage.NewBackupManager(db, resolveBackupDir()).Backup(cmd.Context(), name)
		if err != nil {
			return err
		}

		logger.Info("Backup created", zap.String("path", path))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		backups, err := storage.NewBackupManager(db, resolveBackupDir()).List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED\tSHA256")
		for _, b := range backups {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.12s\n", b.Name, humanize.Bytes(uint64(b.Size)), humanize.Time(b.ModTime), b.Checksum)
		}
		return w.Flush()
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a backup (server must be stopped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := databasePath(cfg)
		if err != nil {
			return err
		}

		if err := storage.RestoreBackup(cmd.Context(), args[0], path); err != nil {
			return err
		}

		logger.Info("Database restored", zap.String("backup", args[0]), zap.String("database", path))
		return nil
	},
}

func init() {
	backupCmd.PersistentFlags().StringVar(&backupDir, "dir", "", "Backup directory (default: database.backup_dir or <db dir>/backups)")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

func resolveBackupDir() string {
	if backupDir != "" {
		return backupDir
	}
	return cfg.Database.BackupDir
}
