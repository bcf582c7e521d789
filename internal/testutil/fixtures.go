package testutil

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/grid"
)

// Map is a grid parsed from an ASCII layout.
type Map struct {
	Grid  *grid.Grid
	Start geo.Vec2
	Goal  geo.Vec2
}

// OpenGrid builds a cols x rows grid of 1-unit cells with no obstacles.
// The bottom-left corner sits on the world origin, so cell (c, r) is centred
// at (c+0.5, r+0.5).
func OpenGrid(t testing.TB, cols, rows int) *grid.Grid {
	t.Helper()

	g, err := grid.New(
		geo.V(float64(cols)/2, float64(rows)/2),
		geo.V(float64(cols), float64(rows)),
		0.5,
		nil,
	)
	require.NoError(t, err)
	return g
}

// ParseMap builds a grid of 1-unit cells from an ASCII layout. Each non-empty
// line is one row, first line = row 0. '#' is blocked, 'S' and 'G' mark the
// start and goal cells, anything else is open. Cell (c, r) is centred at
// (c+0.5, r+0.5).
func ParseMap(t testing.TB, layout string) Map {
	t.Helper()

	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	require.NotEmpty(t, rows, "layout has no rows")

	cols := len(rows[0])
	var m Map
	for r, line := range rows {
		require.Len(t, line, cols, "row %d width", r)
		for c, ch := range line {
			switch ch {
			case 'S':
				m.Start = Cell(c, r)
			case 'G':
				m.Goal = Cell(c, r)
			}
		}
	}

	blocked := func(p geo.Vec2, _ float64) bool {
		c, r := int(math.Floor(p.X)), int(math.Floor(p.Y))
		return rows[r][c] == '#'
	}

	g, err := grid.New(
		geo.V(float64(cols)/2, float64(len(rows))/2),
		geo.V(float64(cols), float64(len(rows))),
		0.5,
		blocked,
	)
	require.NoError(t, err)
	m.Grid = g
	return m
}

// Cell returns the world centre of cell (col, row) on grids built by
// OpenGrid and ParseMap.
func Cell(col, row int) geo.Vec2 {
	return geo.V(float64(col)+0.5, float64(row)+0.5)
}
