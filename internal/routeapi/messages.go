package routeapi

import (
	"math"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathreq"
)

// Message types.
const (
	TypeRoute = "route"
	TypePing  = "ping"
	TypePong  = "pong"
	TypeError = "error"
)

// Point is a world position on the wire.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts p to a geo.Vec2.
func (p Point) Vec() geo.Vec2 { return geo.V(p.X, p.Y) }

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func pointOf(v geo.Vec2) Point { return Point{X: v.X, Y: v.Y} }

// ClientMessage is anything a client sends.
type ClientMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Start *Point `json:"start,omitempty"`
	End   *Point `json:"end,omitempty"`
}

// RouteReply answers one route request. Waypoints is empty on failure.
type RouteReply struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	Success   bool    `json:"success"`
	Reason    string  `json:"reason"`
	Waypoints []Point `json:"waypoints"`
}

// ErrorReply reports a rejected client message.
type ErrorReply struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// PongReply answers a ping.
type PongReply struct {
	Type string `json:"type"`
}

// Health is the /healthz document.
type Health struct {
	Status      string        `json:"status"`
	Cols        int           `json:"cols"`
	Rows        int           `json:"rows"`
	Walkable    int           `json:"walkable"`
	CellRadius  float64       `json:"cell_radius"`
	Coordinator pathreq.Stats `json:"coordinator"`
}
