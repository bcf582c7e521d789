package pathfinding

import (
	"time"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
)

// Search is one A* run that can be advanced a pass at a time. A pass pops the
// best open node and fully relaxes its neighbours, so pausing between Step
// calls never leaves the frontier half-updated.
type Search struct {
	engine *Engine
	grid   *grid.Grid
	gen    uint32

	start, goal *grid.Node
	sc          *scratch

	expanded int
	began    time.Time
	done     bool
	result   Result
}

// Begin resolves start and end to cells and prepares a search. If either cell
// is blocked the search is already finished and no neighbour is examined.
func (e *Engine) Begin(start, end geo.Vec2) *Search {
	s := &Search{
		engine: e,
		grid:   e.grid,
		start:  e.grid.NodeAt(start),
		goal:   e.grid.NodeAt(end),
		began:  time.Now(),
	}

	switch {
	case !s.start.Walkable:
		s.finish(ReasonStartBlocked)
		return s
	case !s.goal.Walkable:
		s.finish(ReasonGoalBlocked)
		return s
	}

	s.gen = e.grid.BeginSearch()
	s.sc = e.acquire()

	s.start.Claim(s.gen)
	s.start.SetCost(0, Octile(s.start, s.goal))
	s.sc.open.add(s.start)
	return s
}

// Done reports whether the search reached a terminal state.
func (s *Search) Done() bool { return s.done }

// Expanded returns how many nodes have been closed so far.
func (s *Search) Expanded() int { return s.expanded }

// Result returns the outcome. It is the zero Result until Done.
func (s *Search) Result() Result { return s.result }

// Step performs one expansion pass and reports whether the search is done.
func (s *Search) Step() bool {
	if s.done {
		return true
	}

	open := s.sc.open
	if open.Len() == 0 {
		s.finish(ReasonExhausted)
		return true
	}
	if limit := s.engine.opts.MaxExpansions; limit > 0 && s.expanded >= limit {
		s.finish(ReasonLimit)
		return true
	}

	current := open.popMin()
	s.sc.closed[current.Index] = true
	s.expanded++

	if current == s.goal {
		s.finish(ReasonFound)
		return true
	}

	s.sc.nbuf = s.grid.Neighbors(current, s.sc.nbuf[:0])
	for _, nb := range s.sc.nbuf {
		if !nb.Walkable || s.sc.closed[nb.Index] {
			continue
		}
		if !s.engine.opts.CornerCutting && s.cutsCorner(current, nb) {
			continue
		}

		// A node's costs are trusted only while it sits in this search's open
		// set; anything else is stale and gets overwritten below.
		nb.Claim(s.gen)
		inOpen := open.contains(nb)

		g := current.G + Octile(current, nb)
		if g < nb.G || !inOpen {
			nb.SetCost(g, Octile(nb, s.goal))
			nb.Parent = current.Index
			if inOpen {
				open.update(nb)
			} else {
				open.add(nb)
			}
		}
	}
	return false
}

// Abort ends an unfinished search with the given reason.
func (s *Search) Abort(reason Reason) {
	if !s.done {
		s.finish(reason)
	}
}

// cutsCorner reports whether a diagonal step from a to b squeezes past a
// blocked orthogonal cell.
func (s *Search) cutsCorner(a, b *grid.Node) bool {
	if a.Col == b.Col || a.Row == b.Row {
		return false
	}
	side1 := s.grid.Node(b.Col, a.Row)
	side2 := s.grid.Node(a.Col, b.Row)
	return !side1.Walkable || !side2.Walkable
}

func (s *Search) finish(reason Reason) {
	s.done = true
	s.result = Result{
		Reason:   reason,
		Success:  reason == ReasonFound,
		Expanded: s.expanded,
	}
	if s.result.Success {
		nodes := s.retrace()
		if s.engine.opts.Smooth {
			nodes = smoothPath(s.grid, s.start, nodes, s.engine.opts.CornerCutting)
		}
		s.result.Waypoints = make([]geo.Vec2, len(nodes))
		for i, n := range nodes {
			s.result.Waypoints[i] = n.World
		}
		s.result.Cost = s.goal.G
	}
	s.result.Duration = time.Since(s.began)

	if s.sc != nil {
		s.engine.release(s.sc)
		s.sc = nil
	}
}

// retrace walks parents from the goal back to the start and returns the
// nodes in start-to-goal order, start excluded.
func (s *Search) retrace() []*grid.Node {
	var path []*grid.Node
	for n := s.goal; n != s.start; n = s.grid.NodeByIndex(n.Parent) {
		path = append(path, n)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
