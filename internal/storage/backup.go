package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager creates and restores snapshots of the database file.
type BackupManager struct {
	db  *DB
	dir string
	now func() time.Time
}

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
	Checksum string    `json:"checksum"`
}

// NewBackupManager creates a backup manager for db. Backups go to dir, or a
// "backups" directory next to the database when dir is empty.
func NewBackupManager(db *DB, dir string) *BackupManager {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(db.Path()), "backups")
	}
	return &BackupManager{db: db, dir: dir, now: time.Now}
}

// Dir returns the backup directory.
func (bm *BackupManager) Dir() string {
	return bm.dir
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// verifies it. An empty name generates a timestamped one.
func (bm *BackupManager) Backup(ctx context.Context, name string) (string, error) {
	if bm.db.Path() == ":memory:" {
		return "", errors.New("cannot back up an in-memory database")
	}

	if err := os.MkdirAll(bm.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if name == "" {
		name = "backup_" + bm.now().UTC().Format("20060102_150405")
	}
	backupPath := filepath.Join(bm.dir, strings.TrimSuffix(name, ".db")+".db")

	if _, err := os.Stat(backupPath); err == nil {
		return "", fmt.Errorf("backup already exists: %s", backupPath)
	}

	// VACUUM INTO takes a string literal, not a bound parameter.
	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(backupPath, "'", "''"))
	if _, err := bm.db.Conn().ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	if err := VerifyBackup(ctx, backupPath); err != nil {
		_ = os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	return backupPath, nil
}

// VerifyBackup checks that path is an intact database with the deck schema.
func VerifyBackup(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup file not accessible: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup integrity check failed: %s", result)
	}

	var tables int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'cards', 'decks', 'deck_cards')`,
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("failed to inspect backup schema: %w", err)
	}
	if tables != 4 {
		return errors.New("backup is missing deck tables")
	}

	return nil
}

// List returns the backups in the backup directory, newest first.
func (bm *BackupManager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(bm.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".db" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(bm.dir, entry.Name())
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}

		backups = append(backups, BackupInfo{
			Path:     path,
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].ModTime.Equal(backups[j].ModTime) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	return backups, nil
}

// Prune deletes all but the newest keep backups and returns how many were
// removed. keep <= 0 keeps everything.
func (bm *BackupManager) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	backups, err := bm.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, backup := range backups[min(keep, len(backups)):] {
		if err := os.Remove(backup.Path); err != nil {
			return removed, fmt.Errorf("failed to remove backup %s: %w", backup.Name, err)
		}
		removed++
	}
	return removed, nil
}

// RestoreBackup replaces the database at dbPath with a verified backup. The
// database must not be open. The previous file is kept with an ".old" suffix.
func RestoreBackup(ctx context.Context, backupPath, dbPath string) error {
	if err := VerifyBackup(ctx, backupPath); err != nil {
		return err
	}

	tempPath := dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tempPath); err != nil {
		return err
	}

	if _, err := os.Stat(dbPath); err == nil {
		oldPath := dbPath + ".old." + time.Now().UTC().Format("20060102_150405")
		if err := os.Rename(dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
		// WAL sidecars belong to the old file.
		_ = os.Remove(dbPath + "-wal")
		_ = os.Remove(dbPath + "-shm")
	}

	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to replace database with backup: %w", err)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return out.Close()
}

func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
