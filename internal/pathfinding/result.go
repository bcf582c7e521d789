package pathfinding

import (
	"time"

	"github.com/udisondev/navgrid/internal/geo"
)

// Reason tells why a search ended.
type Reason uint8

const (
	ReasonFound        Reason = iota // goal reached
	ReasonStartBlocked               // start cell is not walkable
	ReasonGoalBlocked                // goal cell is not walkable
	ReasonExhausted                  // open set emptied before the goal
	ReasonLimit                      // expansion limit hit
	ReasonCanceled                   // context canceled or coordinator closed
)

func (r Reason) String() string {
	switch r {
	case ReasonFound:
		return "found"
	case ReasonStartBlocked:
		return "start_blocked"
	case ReasonGoalBlocked:
		return "goal_blocked"
	case ReasonExhausted:
		return "exhausted"
	case ReasonLimit:
		return "limit"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of one search. Waypoints run from the first step after
// the start to the goal cell centre; they are empty unless Success is true.
type Result struct {
	Waypoints []geo.Vec2
	Success   bool
	Reason    Reason
	Cost      int // g of the goal in 10/14 units
	Expanded  int // nodes moved to the closed set
	Duration  time.Duration
}

// Failed builds an unsuccessful result.
func Failed(reason Reason) Result {
	return Result{Reason: reason}
}
