package pathreq

import (
	"context"
	"time"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathfinding"
)

// Callback receives a finished request's waypoints and success flag.
type Callback func(waypoints []geo.Vec2, success bool)

// Ticket tracks one submitted request. It completes exactly once.
type Ticket struct {
	id        uint64
	start     geo.Vec2
	end       geo.Vec2
	callback  Callback
	submitted time.Time
	started   time.Time

	done   chan struct{}
	result pathfinding.Result
}

// ID returns the coordinator-assigned request number (1-based, in submit order).
func (t *Ticket) ID() uint64 { return t.id }

// Start returns the requested start point.
func (t *Ticket) Start() geo.Vec2 { return t.start }

// End returns the requested end point.
func (t *Ticket) End() geo.Vec2 { return t.end }

// Done is closed after the callback has returned.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Result returns the outcome and whether it is available yet.
func (t *Ticket) Result() (pathfinding.Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return pathfinding.Result{}, false
	}
}

// Wait blocks until the ticket completes or ctx ends.
func (t *Ticket) Wait(ctx context.Context) (pathfinding.Result, error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return pathfinding.Result{}, ctx.Err()
	}
}
