package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SchedulerConfig configures periodic backups.
type SchedulerConfig struct {
	// Interval is how often to back up.
	Interval time.Duration

	// Keep is how many backups to retain after each run; 0 keeps all.
	Keep int

	// StartImmediately runs a backup as soon as the scheduler starts.
	StartImmediately bool
}

// SchedulerStatus reports the scheduler's history.
type SchedulerStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"interval"`
	LastBackup   time.Time     `json:"last_backup"`
	LastPath     string        `json:"last_path,omitempty"`
	BackupCount  int           `json:"backup_count"`
	FailureCount int           `json:"failure_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// BackupScheduler runs backups on a fixed interval until stopped.
type BackupScheduler struct {
	manager *BackupManager
	config  SchedulerConfig
	logger  *zap.Logger

	mu     sync.RWMutex
	status SchedulerStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBackupScheduler creates a new backup scheduler.
func NewBackupScheduler(manager *BackupManager, config SchedulerConfig, logger *zap.Logger) *BackupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupScheduler{
		manager: manager,
		config:  config,
		logger:  logger,
		status:  SchedulerStatus{Interval: config.Interval},
	}
}

// Start begins the backup loop. It stops when ctx is done or Stop is called.
func (s *BackupScheduler) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return errors.New("backup interval must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return errors.New("scheduler is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status.Running = true

	go s.run(ctx, s.done)

	s.logger.Info("Backup scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.String("dir", s.manager.Dir()))
	return nil
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *BackupScheduler) run(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.StartImmediately {
		s.RunOnce(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce takes one backup, prunes old ones and records the outcome.
func (s *BackupScheduler) RunOnce(ctx context.Context) {
	path, err := s.manager.Backup(ctx, "")
	if err == nil {
		var removed int
		removed, err = s.manager.Prune(s.config.Keep)
		if removed > 0 {
			s.logger.Debug("Pruned old backups", zap.Int("removed", removed))
		}
	}

	s.mu.Lock()
	s.status.LastBackup = time.Now()
	if err != nil {
		s.status.FailureCount++
		s.status.LastError = err.Error()
	} else {
		s.status.BackupCount++
		s.status.LastPath = path
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled backup failed", zap.Error(err))
		return
	}
	s.logger.Info("Scheduled backup complete", zap.String("path", path))
}

// Status returns a snapshot of the scheduler state.
func (s *BackupScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
