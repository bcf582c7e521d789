package pathfinding

// Integer step costs: unit and sqrt(2) scaled by 10.
const (
	StepOrthogonal = 10
	StepDiagonal   = 14
)

// Search tuning defaults.
const (
	// DefaultYieldEvery is how many expansion passes FindPath runs between
	// context checks and scheduler yields.
	DefaultYieldEvery = 256

	// smoothPasses bounds waypoint reduction when smoothing is enabled.
	smoothPasses = 3
)
