package pathfinding

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
)

// Options tune the search.
type Options struct {
	MaxExpansions int  // 0 = unlimited
	YieldEvery    int  // expansion passes between ctx checks; 0 disables
	Smooth        bool // drop waypoints that have line of sight past them
	CornerCutting bool // allow diagonal steps beside blocked cells
}

// Option modifies Options.
type Option func(*Options)

// WithMaxExpansions stops a search with ReasonLimit after n expansions.
func WithMaxExpansions(n int) Option {
	return func(o *Options) { o.MaxExpansions = n }
}

// WithYieldEvery sets how often FindPath checks its context and yields.
func WithYieldEvery(n int) Option {
	return func(o *Options) { o.YieldEvery = n }
}

// WithSmoothing enables line-of-sight waypoint reduction.
func WithSmoothing(on bool) Option {
	return func(o *Options) { o.Smooth = on }
}

// WithCornerCutting allows or forbids diagonal steps past blocked side cells.
func WithCornerCutting(on bool) Option {
	return func(o *Options) { o.CornerCutting = on }
}

// Engine runs A* over one grid. It is not safe for concurrent use: node
// scratch fields live in the grid, so callers must serialize searches
// (pathreq.Coordinator does).
type Engine struct {
	grid    *grid.Grid
	opts    Options
	scratch sync.Pool
}

// NewEngine creates an engine for g.
func NewEngine(g *grid.Grid, opts ...Option) *Engine {
	o := Options{
		YieldEvery:    DefaultYieldEvery,
		CornerCutting: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{grid: g, opts: o}
	e.scratch.New = func() any {
		return &scratch{
			open:   newOpenSet(g.Capacity()),
			closed: make([]bool, g.Capacity()),
			nbuf:   make([]*grid.Node, 0, 8),
		}
	}
	return e
}

// Grid returns the grid the engine searches.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// FindPath runs a search from start to end to completion. It never returns an
// error: every failure, including cancellation through ctx, is a Result with
// Success=false and a Reason.
func (e *Engine) FindPath(ctx context.Context, start, end geo.Vec2) Result {
	if ctx.Err() != nil {
		return Failed(ReasonCanceled)
	}

	s := e.Begin(start, end)
	for passes := 1; !s.Step(); passes++ {
		if e.opts.YieldEvery > 0 && passes%e.opts.YieldEvery == 0 {
			if ctx.Err() != nil {
				s.Abort(ReasonCanceled)
				break
			}
			runtime.Gosched()
		}
	}

	res := s.Result()
	slog.Debug("path search finished",
		"reason", res.Reason,
		"waypoints", len(res.Waypoints),
		"cost", res.Cost,
		"expanded", res.Expanded,
		"duration", res.Duration)
	return res
}

type scratch struct {
	open   *openSet
	closed []bool
	nbuf   []*grid.Node
}

func (e *Engine) acquire() *scratch {
	sc := e.scratch.Get().(*scratch)
	sc.open.reset()
	clear(sc.closed)
	return sc
}

func (e *Engine) release(sc *scratch) {
	e.scratch.Put(sc)
}
