package pathfinding

import "github.com/udisondev/navgrid/internal/grid"

// smoothPath removes intermediate waypoints that can be skipped: if waypoint N
// is in straight line of sight of the last kept point, waypoint N-1 goes.
// The start is an anchor only and is not part of the returned path. Line of
// sight obeys the same corner rule as the search.
func smoothPath(g *grid.Grid, start *grid.Node, path []*grid.Node, cornerCutting bool) []*grid.Node {
	for range smoothPasses {
		if len(path) < 2 {
			return path
		}

		changed := false
		smoothed := make([]*grid.Node, 0, len(path))
		prev := start

		for i := 0; i < len(path)-1; i++ {
			if g.LineWalkable(prev, path[i+1], cornerCutting) {
				changed = true
				continue
			}
			smoothed = append(smoothed, path[i])
			prev = path[i]
		}
		smoothed = append(smoothed, path[len(path)-1])
		path = smoothed

		if !changed {
			break
		}
	}
	return path
}
