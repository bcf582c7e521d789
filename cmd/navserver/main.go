package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/navgrid/internal/config"
	"github.com/udisondev/navgrid/internal/db"
	"github.com/udisondev/navgrid/internal/pathreq"
	"github.com/udisondev/navgrid/internal/routeapi"
	"github.com/udisondev/navgrid/internal/world"
)

const (
	ConfigPath   = "config/navserver.yaml"
	drainTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("NAVGRID_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	})))
	slog.Info("navserver starting", "config", cfgPath, "log_level", cfg.Log.Level)

	w, err := world.New(cfg)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// The journal outlives the API so outcomes delivered while draining are still written.
	journalCtx, stopJournal := context.WithCancel(context.Background())
	defer stopJournal()

	var coordOpts []pathreq.Option
	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		version, err := db.RunMigrations(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "version", version)

		journal := db.NewJournal(database.Routes(), cfg.Journal.QueueSize, cfg.Journal.BatchSize, cfg.Journal.FlushInterval)
		coordOpts = append(coordOpts, pathreq.WithObserver(journal.Observe))

		g.Go(func() error {
			slog.Info("starting route journal", "interval", cfg.Journal.FlushInterval, "batch", cfg.Journal.BatchSize)
			if err := journal.Run(journalCtx); err != nil {
				return fmt.Errorf("route journal: %w", err)
			}
			slog.Info("route journal stopped", "written", journal.Written(), "dropped", journal.Dropped())
			return nil
		})
	}

	coord := pathreq.New(w.Engine, coordOpts...)
	api := routeapi.NewServer(cfg.HTTP, coord, w.Grid)

	g.Go(func() error {
		slog.Info("starting route api", "address", cfg.HTTP.Addr())
		if err := api.Run(gctx); err != nil {
			return fmt.Errorf("route api: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		coord.Close()
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := coord.Drain(drainCtx); err != nil {
			slog.Warn("path requests not drained", "error", err)
		}
		stopJournal()
		stats := coord.Stats()
		slog.Info("path coordinator stopped",
			"submitted", stats.Submitted,
			"completed", stats.Completed,
			"succeeded", stats.Succeeded,
			"canceled", stats.Canceled)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("navserver stopped")
	return nil
}
