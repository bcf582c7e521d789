package pathreq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathfinding"
	"github.com/udisondev/navgrid/internal/testutil"
)

func TestCoordinatorWithEngine(t *testing.T) {
	m := testutil.ParseMap(t, `
		S.......
		........
		..####..
		........
		.......G
	`)
	c := New(pathfinding.NewEngine(m.Grid))

	type answer struct {
		id        int
		waypoints []geo.Vec2
		ok        bool
	}
	answers := make(chan answer, 3)
	submit := func(id int, start, end geo.Vec2) {
		c.Submit(start, end, func(wp []geo.Vec2, ok bool) {
			answers <- answer{id, wp, ok}
		})
	}

	submit(1, m.Start, m.Goal)
	submit(2, m.Goal, m.Start)
	submit(3, m.Start, testutil.Cell(3, 2)) // blocked goal
	drain(t, c)
	close(answers)

	var got []answer
	for a := range answers {
		got = append(got, a)
	}
	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].id)
	assert.True(t, got[0].ok)
	assert.Equal(t, m.Goal, got[0].waypoints[len(got[0].waypoints)-1])

	assert.Equal(t, 2, got[1].id)
	assert.True(t, got[1].ok)
	assert.Equal(t, m.Start, got[1].waypoints[len(got[1].waypoints)-1])

	assert.Equal(t, 3, got[2].id)
	assert.False(t, got[2].ok)
	assert.Empty(t, got[2].waypoints)
}

func TestCoordinatorSearchContextCanceled(t *testing.T) {
	g := testutil.OpenGrid(t, 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(pathfinding.NewEngine(g), WithSearchContext(ctx))

	tk := c.Submit(testutil.Cell(0, 0), testutil.Cell(3, 3), nil)
	res, err := tk.Wait(testutil.ContextWithTimeout(t, time.Second))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, pathfinding.ReasonCanceled, res.Reason)
}
