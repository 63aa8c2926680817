package main

import (
	"github.com/ramonehamilton/mana-tomb/internal/config"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
)

// databasePath returns the configured database path or the default one.
func databasePath(cfg *config.Config) (string, error) {
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}
	return config.DefaultDatabasePath()
}

// openDatabase opens the configured database, migrating it when enabled.
func openDatabase(cfg *config.Config) (*storage.DB, error) {
	path, err := databasePath(cfg)
	if err != nil {
		return nil, err
	}

	dbConfig := storage.DefaultConfig(path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	return storage.Open(dbConfig)
}
