package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ramonehamilton/mana-tomb/internal/api"
	"github.com/ramonehamilton/mana-tomb/internal/auth"
	"github.com/ramonehamilton/mana-tomb/internal/decks"
	"github.com/ramonehamilton/mana-tomb/internal/events"
	"github.com/ramonehamilton/mana-tomb/internal/metrics"
	"github.com/ramonehamilton/mana-tomb/internal/scryfall"
	"github.com/ramonehamilton/mana-tomb/internal/storage"
)

var servePort int

// serveCmd runs the HTTP API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Long: `Starts the REST API and the /ws event stream. The server runs until it
receives SIGINT or SIGTERM, then drains open requests before exiting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()
	logger.Info("Database opened", zap.String("path", db.Path()))

	store := storage.NewService(db)
	serviceMetrics := metrics.New()

	dispatcher := events.NewEventDispatcher(logger.Named("events"))
	dispatcher.Register(events.NewLoggingObserver(logger.Named("events"), verbose))

	cardClient := scryfall.NewClient(scryfall.Options{
		BaseURL:   cfg.Scryfall.BaseURL,
		UserAgent: cfg.Scryfall.UserAgent,
		RateLimit: cfg.Scryfall.RateLimit,
		Logger:    logger.Named("scryfall"),
		Metrics:   serviceMetrics,
	})

	deckService := decks.NewService(store,
		decks.WithEventPublisher(dispatcher),
		decks.WithCardFetcher(&decks.ScryfallFetcher{Client: cardClient}),
		decks.WithLogger(logger.Named("decks")),
		decks.WithMetrics(serviceMetrics),
	)

	sessions := auth.NewSessionManager(auth.SessionOptions{
		Secret:   cfg.Session.Secret,
		Secure:   cfg.Session.Secure,
		SameSite: cfg.Session.SameSite,
		MaxAge:   cfg.SessionMaxAge(),
	}, logger.Named("auth"))

	server := api.NewServer(api.ConfigFrom(cfg), api.Dependencies{
		Decks:    deckService,
		Sessions: sessions,
		Cards:    cardClient,
		Metrics:  serviceMetrics,
		Logger:   logger.Named("api"),
	})
	dispatcher.Register(server.NewWebSocketObserver())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interval := cfg.BackupInterval(); interval > 0 {
		scheduler := storage.NewBackupScheduler(
			storage.NewBackupManager(db, cfg.Database.BackupDir),
			storage.SchedulerConfig{Interval: interval, Keep: cfg.Database.BackupKeep},
			logger.Named("backup"),
		)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backup scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	if err := server.Start(); err != nil {
		return err
	}
	logger.Info("Mana Tomb running", zap.String("addr", server.Addr()))

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	stats := serviceMetrics.Snapshot()
	logger.Info("API server stopped",
		zap.Uint64("requests", stats.Requests),
		zap.Uint64("scryfall_requests", stats.ScryfallCalls),
		zap.Float64("composition_cache_hit_rate", stats.CacheHitRate),
		zap.String("uptime", stats.Uptime))
	return nil
}
