package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/r0zar/streakwatch/internal/analytics"
	"github.com/r0zar/streakwatch/internal/api"
	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/incentive"
	"github.com/r0zar/streakwatch/internal/infra/cache"
	"github.com/r0zar/streakwatch/internal/infra/indexer"
	"github.com/r0zar/streakwatch/internal/ingest"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "streakwatch",
	Short: "Streak incentive analytics service",
	Long:  `Streakwatch ingests the incentive program's event log and serves per-user and global claim analytics.`,
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		setupLogger("info")
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if isDebug {
		level = "debug"
	}
	setupLogger(level)

	engine, agg, syncer, closeStore := buildEngine(cfg)
	defer closeStore()

	server := api.NewServer(engine, agg, syncer, cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("API server failed", "error", err)
			cancel()
		}
	}()

	slog.Info("Streakwatch started",
		"partition", cfg.Partition, "port", cfg.Server.Port, "config", cfgPath)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Streakwatch stopped gracefully")
}

// buildEngine wires one engine instance for the configured partition. A
// Redis that is unreachable at startup downgrades to the in-process store
// with a warning: the cache is an optimization, not a dependency.
func buildEngine(cfg *config.AppConfig) (*incentive.Engine, *analytics.Aggregator, *ingest.Syncer, func()) {
	var (
		store      cache.Store
		closeStore = func() {}
	)

	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, falling back to in-process cache", "error", err)
		} else {
			store = redisStore
			closeStore = func() { _ = redisStore.Close() }
		}
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}

	keys := cache.NewKeys(cfg.Partition)
	client := indexer.NewClient(cfg.Indexer, store, keys)
	syncer := ingest.NewSyncer(client, store, keys, cfg.Sync)
	agg := analytics.NewAggregator(syncer, client, store, keys, cfg.Incentive)
	engine := incentive.New(agg, cfg.Incentive)

	return engine, agg, syncer, closeStore
}

func setupLogger(level string) {
	slogLevel := slog.LevelInfo
	if level == "debug" {
		slogLevel = slog.LevelDebug
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})))
}
