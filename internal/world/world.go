// Package world assembles the navigation grid and search engine from config.
package world

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/navgrid/internal/config"
	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
	"github.com/udisondev/navgrid/internal/pathfinding"
)

// World is a built grid with the engine searching it.
type World struct {
	Grid   *grid.Grid
	Engine *pathfinding.Engine
}

// New builds the grid described by cfg.World and cfg.Obstacles.
func New(cfg config.Server) (*World, error) {
	obstacles, err := cfg.ObstacleSet()
	if err != nil {
		return nil, fmt.Errorf("building obstacles: %w", err)
	}

	var blocked geo.ObstacleFunc
	if len(obstacles) > 0 {
		blocked = obstacles.Blocked
	}

	g, err := grid.New(cfg.World.Origin(), cfg.World.Size(), cfg.World.CellRadius, blocked)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	engine := pathfinding.NewEngine(g, EngineOptions(cfg.Pathfinding)...)

	slog.Info("world built",
		"cols", g.Cols(),
		"rows", g.Rows(),
		"walkable", g.WalkableCount(),
		"obstacles", len(obstacles))

	return &World{Grid: g, Engine: engine}, nil
}

// EngineOptions maps pathfinding config to engine options.
func EngineOptions(cfg config.PathfindingConfig) []pathfinding.Option {
	opts := []pathfinding.Option{
		pathfinding.WithMaxExpansions(cfg.MaxExpansions),
		pathfinding.WithSmoothing(cfg.Smooth),
		pathfinding.WithCornerCutting(cfg.CornerCutting),
	}
	if cfg.YieldEvery > 0 {
		opts = append(opts, pathfinding.WithYieldEvery(cfg.YieldEvery))
	}
	return opts
}

// RandomWalkable returns the centre of a uniformly chosen walkable cell.
// ok is false when the grid has no walkable cell.
func (w *World) RandomWalkable(rng *rand.Rand) (geo.Vec2, bool) {
	n := w.Grid.WalkableCount()
	if n == 0 {
		return geo.Vec2{}, false
	}
	k := rng.IntN(n)
	for i := range w.Grid.Capacity() {
		node := w.Grid.NodeByIndex(i)
		if !node.Walkable {
			continue
		}
		if k == 0 {
			return node.World, true
		}
		k--
	}
	return geo.Vec2{}, false
}
