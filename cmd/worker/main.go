// The worker runs the TaskTrek background engine: it connects to postgres,
// applies migrations, and schedules the daily archive at local midnight.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasktrek-hub/tasktrek/config"
	"github.com/tasktrek-hub/tasktrek/internal/application/eventhandler"
	"github.com/tasktrek-hub/tasktrek/internal/domain/gamification"
	"github.com/tasktrek-hub/tasktrek/internal/domain/quest"
	"github.com/tasktrek-hub/tasktrek/internal/domain/shared"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/messaging"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/persistence/postgres"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/persistence/redis"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/scheduler"
	"github.com/tasktrek-hub/tasktrek/internal/infrastructure/scheduler/jobs"
	"github.com/tasktrek-hub/tasktrek/pkg/timeutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	log.Info("starting worker",
		"app", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", string(cfg.App.Environment),
		"reset_timezone", cfg.App.Timezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres.
	pgCfg := postgres.DefaultConfig(cfg.Database.URL)
	pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
		return err
	}
	log.Info("database ready")

	store := postgres.NewStore(conn)

	// Redis is optional; the leaderboard degrades to postgres reads.
	var board gamification.Leaderboard
	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(redis.Config{
			URL:          cfg.Redis.URL,
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("redis unavailable, leaderboard cache disabled", "error", err)
		} else {
			defer cache.Close()
			board = redis.NewLeaderboardCache(cache)
			log.Info("redis ready")
		}
	}

	// Event bus.
	bus := messaging.NewInMemoryEventBus(log)
	defer bus.Close()

	if board != nil {
		refresher := eventhandler.NewLeaderboardRefresher(board, store.Repos().Users, nil)
		bus.Subscribe(shared.EventArchiveCompleted, refresher.Handle)
	}

	// Scheduler with the daily archive job.
	clock := timeutil.NewClock(cfg.App.Location)
	generator := quest.NewGenerator(quest.DefaultTemplates(), nil)

	archiveJob := jobs.NewDailyArchiveJob(
		store,
		store.Repos().Users,
		generator,
		clock,
		bus,
		log,
		jobs.Config{
			Concurrency:      cfg.Archiver.Concurrency,
			UserTimeout:      cfg.Archiver.UserTimeout,
			RetryAttempts:    cfg.Archiver.RetryAttempts,
			FailureThreshold: cfg.Archiver.FailureThreshold,
		},
	)

	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	if cfg.Scheduler.Enabled {
		if err := sched.Register(archiveJob, scheduler.NewDailySchedule(clock)); err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		log.Info("scheduler running", "next_boundary", clock.NextResetBoundary(clock.Now()).Format(time.RFC3339))
	} else {
		log.Warn("scheduler disabled by configuration")
	}

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if sched.IsRunning() {
			_ = sched.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("worker stopped")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout exceeded, exiting")
	}

	return nil
}

// newLogger builds the process logger from observability settings.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Observability.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Observability.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
