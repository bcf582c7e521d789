package geo

// LineIterator walks every grid cell touched by the straight segment between
// two cell centres, start and end inclusive. Cells are unit squares centred on
// integer coordinates. Where the segment passes exactly through a cell corner
// it steps diagonally and Corner reports true for that step.
type LineIterator struct {
	x, y    int
	nx, ny  int
	ix, iy  int
	sx, sy  int
	corner  bool
	started bool
}

// NewLineIterator creates an iterator from cell (sx,sy) to cell (ex,ey).
func NewLineIterator(sx, sy, ex, ey int) *LineIterator {
	it := &LineIterator{
		x: sx, y: sy,
		nx: Abs(ex - sx),
		ny: Abs(ey - sy),
		sx: 1, sy: 1,
	}
	if ex < sx {
		it.sx = -1
	}
	if ey < sy {
		it.sy = -1
	}
	return it
}

// Next advances to the next cell. The first call yields the start cell.
// Returns false once the target has been yielded.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.ix >= it.nx && it.iy >= it.ny {
		return false
	}

	// Sign of the segment's offset from the next corner, scaled to integers:
	// negative crosses a vertical cell edge first, positive a horizontal one.
	decision := (1+2*it.ix)*it.ny - (1+2*it.iy)*it.nx
	it.corner = decision == 0
	switch {
	case decision == 0:
		it.x += it.sx
		it.y += it.sy
		it.ix++
		it.iy++
	case decision < 0:
		it.x += it.sx
		it.ix++
	default:
		it.y += it.sy
		it.iy++
	}
	return true
}

// X returns the current column.
func (it *LineIterator) X() int { return it.x }

// Y returns the current row.
func (it *LineIterator) Y() int { return it.y }

// Corner reports whether the last step went diagonally through a cell corner.
// The two cells sharing that corner were touched only at a point.
func (it *LineIterator) Corner() bool { return it.corner }

// Abs returns |x|.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
