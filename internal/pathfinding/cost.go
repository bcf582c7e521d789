package pathfinding

import (
	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
)

// Octile returns the 10/14 step-cost distance between two cells:
// 14*min(dx,dy) + 10*(max(dx,dy)-min(dx,dy)).
func Octile(a, b *grid.Node) int {
	return octile(geo.Abs(a.Col-b.Col), geo.Abs(a.Row-b.Row))
}

func octile(dx, dy int) int {
	if dx > dy {
		return StepDiagonal*dy + StepOrthogonal*(dx-dy)
	}
	return StepDiagonal*dx + StepOrthogonal*(dy-dx)
}

// Chebyshev returns the number of king moves between two cells.
func Chebyshev(a, b *grid.Node) int {
	return max(geo.Abs(a.Col-b.Col), geo.Abs(a.Row-b.Row))
}
