package grid

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/navgrid/internal/geo"
)

// Construction contract violations.
var (
	ErrInvalidExtent = errors.New("grid extent must be positive")
	ErrInvalidRadius = errors.New("cell radius must be positive")
	ErrEmptyGrid     = errors.New("grid has no cells")
)

// Grid is a fixed rectangle of square cells centred on a world origin.
// Its shape never changes after New; only node scratch fields are mutated,
// and only by the one search that currently owns them.
type Grid struct {
	origin     geo.Vec2
	size       geo.Vec2
	bottomLeft geo.Vec2
	cellRadius float64
	diameter   float64
	cols, rows int
	nodes      []Node // row-major: index = row*cols + col
	walkable   int
	gen        uint32
}

// New builds the grid covering size world units around origin. Each cell is
// 2*cellRadius wide; blocked decides walkability from the cell's centre.
// A nil blocked makes every cell walkable.
func New(origin, size geo.Vec2, cellRadius float64, blocked geo.ObstacleFunc) (*Grid, error) {
	if !(size.X > 0) || !(size.Y > 0) || math.IsInf(size.X, 0) || math.IsInf(size.Y, 0) {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidExtent, size.X, size.Y)
	}
	if !(cellRadius > 0) || math.IsInf(cellRadius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, cellRadius)
	}

	diameter := cellRadius * 2
	cols := int(math.RoundToEven(size.X / diameter))
	rows := int(math.RoundToEven(size.Y / diameter))
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %vx%v with cell diameter %v", ErrEmptyGrid, size.X, size.Y, diameter)
	}

	g := &Grid{
		origin:     origin,
		size:       size,
		bottomLeft: origin.Sub(size.Scale(0.5)),
		cellRadius: cellRadius,
		diameter:   diameter,
		cols:       cols,
		rows:       rows,
		nodes:      make([]Node, cols*rows),
	}

	for row := range rows {
		for col := range cols {
			center := geo.Vec2{
				X: g.bottomLeft.X + float64(col)*diameter + cellRadius,
				Y: g.bottomLeft.Y + float64(row)*diameter + cellRadius,
			}
			walkable := blocked == nil || !blocked(center, cellRadius)
			idx := row*cols + col
			g.nodes[idx] = Node{
				Walkable: walkable,
				World:    center,
				Col:      col,
				Row:      row,
				Index:    idx,
				Parent:   NoParent,
			}
			if walkable {
				g.walkable++
			}
		}
	}

	slog.Debug("grid built",
		"cols", cols,
		"rows", rows,
		"walkable", g.walkable,
		"cell_diameter", diameter)

	return g, nil
}

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Capacity returns the total cell count.
func (g *Grid) Capacity() int { return g.cols * g.rows }

// WalkableCount returns how many cells are walkable.
func (g *Grid) WalkableCount() int { return g.walkable }

// CellRadius returns half a cell's side length.
func (g *Grid) CellRadius() float64 { return g.cellRadius }

// CellDiameter returns a cell's side length.
func (g *Grid) CellDiameter() float64 { return g.diameter }

// Origin returns the world-space centre of the grid.
func (g *Grid) Origin() geo.Vec2 { return g.origin }

// Size returns the world-space extent the grid was built for.
func (g *Grid) Size() geo.Vec2 { return g.size }

// Node returns the node at (col, row) or nil when out of range.
func (g *Grid) Node(col, row int) *Node {
	if !g.InBounds(col, row) {
		return nil
	}
	return &g.nodes[row*g.cols+col]
}

// NodeByIndex returns the node with the given flat index or nil.
func (g *Grid) NodeByIndex(idx int) *Node {
	if idx < 0 || idx >= len(g.nodes) {
		return nil
	}
	return &g.nodes[idx]
}

// InBounds reports whether (col, row) lies inside the grid.
func (g *Grid) InBounds(col, row int) bool {
	return col >= 0 && col < g.cols && row >= 0 && row < g.rows
}

// NodeAt maps a world point to its cell. Points outside the world extent are
// clamped to the nearest edge cell rather than rejected.
func (g *Grid) NodeAt(p geo.Vec2) *Node {
	px := geo.Clamp01((p.X - g.bottomLeft.X) / g.size.X)
	py := geo.Clamp01((p.Y - g.bottomLeft.Y) / g.size.Y)

	col := int(math.RoundToEven(float64(g.cols-1) * px))
	row := int(math.RoundToEven(float64(g.rows-1) * py))
	return &g.nodes[row*g.cols+col]
}

// Neighbors appends the in-bounds Moore neighbours of n to dst and returns it.
// Walkability is not checked. Order is column-major from (-1,-1) to (+1,+1).
func (g *Grid) Neighbors(n *Node, dst []*Node) []*Node {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if nb := g.Node(n.Col+dx, n.Row+dy); nb != nil {
				dst = append(dst, nb)
			}
		}
	}
	return dst
}

// LineWalkable reports whether the straight segment between the centres of a
// and b crosses only walkable cells. Where the segment passes exactly through
// a cell corner, the two cells sharing that corner must be walkable as well
// unless cornerCutting allows squeezing past them.
func (g *Grid) LineWalkable(a, b *Node, cornerCutting bool) bool {
	it := geo.NewLineIterator(a.Col, a.Row, b.Col, b.Row)
	prevCol, prevRow := a.Col, a.Row
	for it.Next() {
		col, row := it.X(), it.Y()
		if !g.walkableAt(col, row) {
			return false
		}
		if it.Corner() && !cornerCutting {
			if !g.walkableAt(col, prevRow) || !g.walkableAt(prevCol, row) {
				return false
			}
		}
		prevCol, prevRow = col, row
	}
	return true
}

func (g *Grid) walkableAt(col, row int) bool {
	n := g.Node(col, row)
	return n != nil && n.Walkable
}

// BeginSearch returns a fresh generation for node scratch ownership. On
// counter wrap-around every stamp is cleared so no stale node can match.
func (g *Grid) BeginSearch() uint32 {
	g.gen++
	if g.gen == 0 {
		for i := range g.nodes {
			g.nodes[i].stamp = 0
		}
		g.gen = 1
	}
	return g.gen
}
