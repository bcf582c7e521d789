// Package pathreq serializes path requests so that exactly one search runs
// against the shared grid at a time and callers are answered in submit order.
package pathreq

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathfinding"
)

// Finder runs one search to completion. *pathfinding.Engine implements it.
type Finder interface {
	FindPath(ctx context.Context, start, end geo.Vec2) pathfinding.Result
}

// State is the coordinator's position in its idle → searching → delivering cycle.
type State uint8

const (
	StateIdle State = iota
	StateSearching
	StateDelivering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateDelivering:
		return "delivering"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Outcome describes a delivered request.
type Outcome struct {
	ID          uint64
	Start, End  geo.Vec2
	SubmittedAt time.Time
	Queued      time.Duration // time spent in the backlog
	Result      pathfinding.Result
}

// Stats is a snapshot of coordinator counters.
type Stats struct {
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Succeeded uint64 `json:"succeeded"`
	Canceled  uint64 `json:"canceled"`
	Pending   int    `json:"pending"`
	State     string `json:"state"`
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver registers fn to be called after each request is delivered.
// fn runs on the dispatch goroutine and must not block.
func WithObserver(fn func(Outcome)) Option {
	return func(c *Coordinator) { c.observer = fn }
}

// WithSearchContext sets the context handed to every search. Canceling it
// aborts the running search with pathfinding.ReasonCanceled.
func WithSearchContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.searchCtx = ctx }
}

// Coordinator owns the request backlog for one grid. At most one search is in
// flight; the next request is dequeued only after the previous callback has
// returned, so callbacks fire in submit order.
type Coordinator struct {
	finder    Finder
	observer  func(Outcome)
	searchCtx context.Context

	mu      sync.Mutex
	backlog []*Ticket
	current *Ticket
	state   State
	closed  bool
	idle    chan struct{} // closed when the coordinator drains; nil if nobody waits
	nextID  uint64
	stats   Stats
}

// New creates a coordinator dispatching to finder.
func New(finder Finder, opts ...Option) *Coordinator {
	c := &Coordinator{
		finder:    finder,
		searchCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit queues a request and starts it right away if nothing is running.
// cb may be nil when the caller only uses the returned Ticket. Every submitted
// request gets exactly one completion, including after Close.
func (c *Coordinator) Submit(start, end geo.Vec2, cb Callback) *Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &Ticket{
		id:        c.nextID,
		start:     start,
		end:       end,
		callback:  cb,
		submitted: time.Now(),
		done:      make(chan struct{}),
	}
	c.backlog = append(c.backlog, t)
	c.stats.Submitted++

	slog.Debug("path request queued", "id", t.id, "pending", len(c.backlog))

	c.beginNextLocked()
	return t
}

// beginNextLocked dispatches the backlog head if the coordinator is idle.
func (c *Coordinator) beginNextLocked() {
	if c.state != StateIdle {
		return
	}
	if len(c.backlog) == 0 {
		if c.idle != nil {
			close(c.idle)
			c.idle = nil
		}
		return
	}

	t := c.backlog[0]
	c.backlog[0] = nil
	c.backlog = c.backlog[1:]
	c.current = t
	c.state = StateSearching
	t.started = time.Now()

	go c.process(t, c.closed)
}

func (c *Coordinator) process(t *Ticket, canceled bool) {
	var res pathfinding.Result
	if canceled {
		res = pathfinding.Failed(pathfinding.ReasonCanceled)
	} else {
		res = c.finder.FindPath(c.searchCtx, t.start, t.end)
	}
	c.complete(t, res)
}

// complete delivers res to t's callback, then frees the coordinator for the
// next request.
func (c *Coordinator) complete(t *Ticket, res pathfinding.Result) {
	if !res.Success {
		res.Waypoints = nil
	}

	c.mu.Lock()
	c.state = StateDelivering
	c.mu.Unlock()

	t.result = res
	c.deliver(t)
	close(t.done)

	if c.observer != nil {
		c.observer(Outcome{
			ID:          t.id,
			Start:       t.start,
			End:         t.end,
			SubmittedAt: t.submitted,
			Queued:      t.started.Sub(t.submitted),
			Result:      res,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Completed++
	switch {
	case res.Success:
		c.stats.Succeeded++
	case res.Reason == pathfinding.ReasonCanceled:
		c.stats.Canceled++
	}
	c.current = nil
	c.state = StateIdle
	c.beginNextLocked()
}

func (c *Coordinator) deliver(t *Ticket) {
	if t.callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("path callback panicked", "id", t.id, "panic", r)
		}
	}()
	// The callback owns its copy; the ticket and the observer keep theirs.
	t.callback(slices.Clone(t.result.Waypoints), t.result.Success)
}

// Close stops searching. The in-flight search finishes normally; every queued
// or later request completes with pathfinding.ReasonCanceled, still in order.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	slog.Info("path coordinator closed", "pending", len(c.backlog))
}

// Drain blocks until the backlog is empty and no request is in flight.
//
// A request counts as in flight until its callback returns, so Drain called
// from inside a callback cannot succeed: it blocks until ctx is done and then
// returns ctx's error. Callbacks that need to wait should hand off to another
// goroutine.
func (c *Coordinator) Drain(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateIdle && len(c.backlog) == 0 {
		c.mu.Unlock()
		return nil
	}
	if c.idle == nil {
		c.idle = make(chan struct{})
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("draining path requests: %w", ctx.Err())
	}
}

// State returns the current dispatch state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns how many requests wait behind the one in flight.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.backlog)
}

// Stats returns a snapshot of the counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Pending = len(c.backlog)
	s.State = c.state.String()
	return s
}
