package agent

import (
	"slices"
	"sync"
	"time"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathreq"
)

// Requester submits path requests. *pathreq.Coordinator implements it.
type Requester interface {
	Submit(start, end geo.Vec2, cb pathreq.Callback) *pathreq.Ticket
}

// Follower walks a waypoint list at a fixed speed. Paths arrive on the
// coordinator's goroutine while Tick runs on the caller's loop, so state is
// guarded by a mutex.
type Follower struct {
	mu      sync.Mutex
	pos     geo.Vec2
	speed   float64 // world units per second
	path    []geo.Vec2
	index   int
	paths   int
	refused int
}

// NewFollower places a follower at pos.
func NewFollower(pos geo.Vec2, speed float64) *Follower {
	return &Follower{pos: pos, speed: speed}
}

// OnPath has the pathreq.Callback signature. A successful path replaces the
// current one; a failure leaves the follower holding its position.
func (f *Follower) OnPath(waypoints []geo.Vec2, success bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !success {
		f.refused++
		return
	}
	f.path = slices.Clone(waypoints)
	f.index = 0
	f.paths++
}

// RequestPath asks r for a route from the current position to target and
// follows it once delivered.
func (f *Follower) RequestPath(r Requester, target geo.Vec2) *pathreq.Ticket {
	return r.Submit(f.Position(), target, f.OnPath)
}

// Tick advances the follower by dt and reports whether it is still moving.
// Distance left over after reaching a waypoint carries on toward the next.
func (f *Follower) Tick(dt time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	budget := f.speed * dt.Seconds()
	for f.index < len(f.path) && budget > 0 {
		target := f.path[f.index]
		dist := geo.Distance(f.pos, target)
		if dist > budget {
			f.pos = geo.MoveTowards(f.pos, target, budget)
			return true
		}
		f.pos = target
		budget -= dist
		f.index++
	}
	return f.index < len(f.path)
}

// Position returns the current world position.
func (f *Follower) Position() geo.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

// Following reports whether waypoints remain.
func (f *Follower) Following() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index < len(f.path)
}

// Remaining returns the number of waypoints not yet reached.
func (f *Follower) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.path) - f.index
}

// Counts returns how many paths were accepted and refused.
func (f *Follower) Counts() (accepted, refused int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths, f.refused
}
