package grid

import "github.com/udisondev/navgrid/internal/geo"

// NoParent marks a node without a predecessor.
const NoParent = -1

// Node is one grid cell. Walkable, World, Col, Row and Index are fixed when the
// grid is built. G, H, F and Parent are scratch fields owned by the search
// whose generation last claimed the node; outside that search they mean nothing.
type Node struct {
	Walkable bool
	World    geo.Vec2
	Col, Row int
	Index    int

	G, H, F int
	Parent  int

	stamp uint32
}

// SetCost stores g and h and keeps F = G + H.
func (n *Node) SetCost(g, h int) {
	n.G = g
	n.H = h
	n.F = g + h
}

// Claim hands the scratch fields to search generation gen. The first claim by
// a generation wipes whatever an earlier search left behind and returns true.
func (n *Node) Claim(gen uint32) bool {
	if n.stamp == gen {
		return false
	}
	n.stamp = gen
	n.G, n.H, n.F = 0, 0, 0
	n.Parent = NoParent
	return true
}

// Owned reports whether the scratch fields belong to generation gen.
func (n *Node) Owned(gen uint32) bool {
	return n.stamp == gen
}

// Cell returns the node's grid coordinates.
func (n *Node) Cell() (col, row int) {
	return n.Col, n.Row
}
