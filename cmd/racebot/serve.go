package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/bootstrap"
	"github.com/osse101/RaceBot_Go/internal/challenge"
	"github.com/osse101/RaceBot_Go/internal/concurrency"
	"github.com/osse101/RaceBot_Go/internal/config"
	"github.com/osse101/RaceBot_Go/internal/database"
	"github.com/osse101/RaceBot_Go/internal/database/memory"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/internal/handler"
	"github.com/osse101/RaceBot_Go/internal/race"
	"github.com/osse101/RaceBot_Go/internal/racing"
	"github.com/osse101/RaceBot_Go/internal/rewards"
	"github.com/osse101/RaceBot_Go/internal/scheduler"
	"github.com/osse101/RaceBot_Go/internal/server"
	"github.com/osse101/RaceBot_Go/internal/settlement"
	"github.com/osse101/RaceBot_Go/internal/sse"
	"github.com/osse101/RaceBot_Go/internal/worker"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	memory      bool
	autoMigrate bool
}

func newServeCmd() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "keep all state in memory instead of PostgreSQL")
	cmd.Flags().BoolVar(&opts.autoMigrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if version != "" {
		cfg.Version = version
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repos  *bootstrap.Repositories
		dbPool *pgxpool.Pool
		pinger handler.Pinger
	)
	if opts.memory {
		repos = bootstrap.InitializeMemoryRepositories(memory.NewStore())
	} else {
		connString := cfg.GetDBConnString()
		if opts.autoMigrate {
			if err := database.Migrate(ctx, connString); err != nil {
				return err
			}
		}
		dbPool, err = database.NewPool(ctx, connString, database.PoolConfig{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return err
		}
		repos = bootstrap.InitializeRepositories(dbPool)
		pinger = dbPool
	}

	_, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	settlementService, err := settlement.NewService(repos.Ledger, settlement.Config{
		MinBet:    cfg.MinBet,
		MaxBet:    cfg.MaxBet,
		CacheSize: cfg.SettledCacheSize,
	})
	if err != nil {
		return err
	}
	activityService := activitylog.NewService(repos.Activity)
	keyService := gacha.NewService(repos.Keys)
	registry := challenge.NewRegistry(cfg.ChallengeTTL)
	raceService := racing.NewService(
		race.NewEngine(),
		settlementService,
		rewards.NewResolver(repos.Keys, publisher),
		repos.Races,
		registry,
		concurrency.NewLockManager(),
		publisher,
	)

	if err := bootstrap.RegisterEventHandlers(bootstrap.EventHandlerDependencies{
		EventBus:        publisher,
		ActivityService: activityService,
	}); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	pool := worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize)
	pool.Start()
	sched := scheduler.NewWithLocation(pool, loc)
	sched.Schedule(cfg.ChallengeSweepEvery, challenge.NewSweepJob(registry, publisher))
	sched.Schedule(cfg.ReconcileEvery, racing.NewReconcileJob(raceService, cfg.ReconcileGrace))
	if err := sched.ScheduleCron(cfg.ActivityCleanupCron, activitylog.NewCleanupJob(activityService, cfg.ActivityRetentionDays)); err != nil {
		return fmt.Errorf("failed to schedule activity cleanup: %w", err)
	}
	sched.Start()

	hub := sse.NewHub()
	hub.Start()
	sse.NewSubscriber(hub).Subscribe(publisher)

	srv := server.NewServer(cfg.Port, server.Dependencies{
		Version:    cfg.Version,
		DB:         pinger,
		Racing:     raceService,
		Settlement: settlementService,
		Keys:       keyService,
		Activity:   activityService,
		Stream:     hub,
	})
	components := bootstrap.ShutdownComponents{
		StreamHub:          hub,
		Server:             srv,
		Scheduler:          sched,
		WorkerPool:         pool,
		ResilientPublisher: publisher,
	}
	if dbPool != nil {
		components.Database = dbPool
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
		if runErr != nil {
			slog.Error("Server failed", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, components)
	return runErr
}
