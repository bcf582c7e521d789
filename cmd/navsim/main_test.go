package main

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgrid/internal/config"
	"github.com/udisondev/navgrid/internal/pathreq"
	"github.com/udisondev/navgrid/internal/world"
)

func TestSimulate_OpenWorld(t *testing.T) {
	cfg := config.DefaultServer()
	cfg.World = config.WorldConfig{Width: 20, Height: 20, CellRadius: 0.5}

	w, err := world.New(cfg)
	require.NoError(t, err)
	coord := pathreq.New(w.Engine)
	defer coord.Close()

	opts := options{agents: 1, trips: 4, speed: 5, tick: 100 * time.Millisecond}
	var sum summary
	rng := rand.New(rand.NewPCG(3, 4))

	require.NoError(t, simulate(context.Background(), w, coord, rng, opts, &sum))
	assert.Equal(t, int64(4), sum.trips.Load())
	assert.Equal(t, int64(4), sum.arrived.Load(), "every cell is reachable in an open world")
	assert.Zero(t, sum.refused.Load())
	assert.Zero(t, sum.stranded.Load())
}

func TestRun_RejectsBadOptions(t *testing.T) {
	err := run(context.Background(), options{agents: 0, trips: 1, speed: 1, tick: time.Millisecond})
	require.Error(t, err)
}
