package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/scheduler"
	"github.com/osse101/RaceBot_Go/internal/server"
	"github.com/osse101/RaceBot_Go/internal/sse"
	"github.com/osse101/RaceBot_Go/internal/worker"
)

// closer is satisfied by *pgxpool.Pool
type closer interface {
	Close()
}

// ShutdownComponents holds all components that need graceful shutdown.
// Every field may be nil.
type ShutdownComponents struct {
	StreamHub          *sse.Hub
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	ResilientPublisher *event.ResilientPublisher
	Database           closer
}

// GracefulShutdown stops components in dependency order:
// 1. Event streams, then the HTTP server (streams never finish on their own)
// 2. Scheduler, then the worker pool (finish queued sweeps and cleanups)
// 3. Event publisher (flush pending retries)
// 4. Database pool
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	if components.StreamHub != nil {
		components.StreamHub.Stop()
	}

	slog.Info(LogMsgShuttingDownServer)
	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	slog.Info(LogMsgStoppingBackgroundJobs)
	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if components.Database != nil {
		slog.Info(LogMsgClosingDatabase)
		components.Database.Close()
	}

	slog.Info(LogMsgServerStopped)
}
