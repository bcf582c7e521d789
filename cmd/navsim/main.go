// navsim runs headless agents that request routes across the configured world
// and walk them, then prints a summary.
//
// Usage:
//
//	go run ./cmd/navsim -agents 32 -trips 10
//	go run ./cmd/navsim -config config/navserver.yaml -seed 7
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/navgrid/internal/agent"
	"github.com/udisondev/navgrid/internal/config"
	"github.com/udisondev/navgrid/internal/pathreq"
	"github.com/udisondev/navgrid/internal/world"
)

type options struct {
	configPath string
	agents     int
	trips      int
	speed      float64
	tick       time.Duration
	seed       uint64
}

type summary struct {
	trips    atomic.Int64
	arrived  atomic.Int64
	refused  atomic.Int64
	ticks    atomic.Int64
	stranded atomic.Int64
}

// maxTicksPerTrip stops an agent that never reaches its last waypoint.
const maxTicksPerTrip = 100_000

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config/navserver.yaml", "server config with world and obstacles")
	flag.IntVar(&opts.agents, "agents", 16, "number of agents")
	flag.IntVar(&opts.trips, "trips", 5, "routes requested per agent")
	flag.Float64Var(&opts.speed, "speed", 4, "agent speed in world units per second")
	flag.DurationVar(&opts.tick, "tick", 50*time.Millisecond, "simulated time per tick")
	flag.Uint64Var(&opts.seed, "seed", 1, "random seed")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if opts.agents <= 0 || opts.trips <= 0 || !(opts.speed > 0) || opts.tick <= 0 {
		return errors.New("agents, trips, speed and tick must be positive")
	}

	if p := os.Getenv("NAVGRID_CONFIG"); p != "" {
		opts.configPath = p
	}
	cfg, err := config.LoadServer(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	})))

	w, err := world.New(cfg)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}

	coord := pathreq.New(w.Engine, pathreq.WithSearchContext(ctx))
	defer coord.Close()

	var sum summary
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := range opts.agents {
		rng := rand.New(rand.NewPCG(opts.seed, uint64(i)))
		g.Go(func() error {
			return simulate(gctx, w, coord, rng, opts, &sum)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := coord.Stats()
	fmt.Printf("agents:          %d\n", opts.agents)
	fmt.Printf("trips:           %d\n", sum.trips.Load())
	fmt.Printf("arrived:         %d\n", sum.arrived.Load())
	fmt.Printf("refused:         %d\n", sum.refused.Load())
	fmt.Printf("stranded:        %d\n", sum.stranded.Load())
	fmt.Printf("ticks:           %d\n", sum.ticks.Load())
	fmt.Printf("requests:        %d (succeeded %d)\n", stats.Completed, stats.Succeeded)
	fmt.Printf("wall time:       %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}

// simulate drives one agent through opts.trips routes.
func simulate(ctx context.Context, w *world.World, coord *pathreq.Coordinator, rng *rand.Rand, opts options, sum *summary) error {
	home, ok := w.RandomWalkable(rng)
	if !ok {
		return errors.New("world has no walkable cell")
	}
	f := agent.NewFollower(home, opts.speed)

	for range opts.trips {
		target, _ := w.RandomWalkable(rng)
		sum.trips.Add(1)

		res, err := f.RequestPath(coord, target).Wait(ctx)
		if err != nil {
			// Interrupted; keep what was simulated so far.
			return nil
		}
		if !res.Success {
			sum.refused.Add(1)
			slog.Debug("route refused", "from", f.Position(), "to", target, "reason", res.Reason)
			continue
		}

		ticks := 0
		for f.Tick(opts.tick) {
			ticks++
			if ticks >= maxTicksPerTrip {
				sum.stranded.Add(1)
				break
			}
		}
		sum.ticks.Add(int64(ticks))
		if !f.Following() {
			sum.arrived.Add(1)
		}
	}
	return nil
}
