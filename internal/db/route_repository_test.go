package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgrid/internal/testutil"
)

func TestRouteRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool := testutil.SetupTestDB(t)
	repo := NewRouteRepository(pool)
	ctx := context.Background()

	base := time.Unix(1700000000, 0).UTC()
	records := []RouteRecord{
		RecordFromOutcome(outcome(1, true)),
		RecordFromOutcome(outcome(2, false)),
		RecordFromOutcome(outcome(3, true)),
	}
	for i := range records {
		records[i].RequestedAt = base.Add(time.Duration(i) * time.Second)
	}

	t.Run("migrations are idempotent", func(t *testing.T) {
		version, err := RunMigrations(ctx, pool.Config().ConnString())
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)
	})

	t.Run("empty stats", func(t *testing.T) {
		s, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, s.Total)
		assert.Zero(t, s.SuccessRate())
	})

	t.Run("insert empty batch", func(t *testing.T) {
		require.NoError(t, repo.InsertBatch(ctx, nil))
	})

	t.Run("insert and read back", func(t *testing.T) {
		require.NoError(t, repo.InsertBatch(ctx, records))

		got, err := repo.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, uint64(3), got[0].RequestID)
		assert.Equal(t, uint64(2), got[1].RequestID)

		assert.True(t, got[0].Success)
		assert.Equal(t, "found", got[0].Reason)
		assert.Equal(t, 2, got[0].Waypoints)
		assert.Equal(t, 28, got[0].Cost)
		assert.Equal(t, 1500*time.Microsecond, got[0].Duration)
		assert.Equal(t, 250*time.Microsecond, got[0].Queued)
		assert.InDelta(t, 2.5, got[0].End.X, 1e-9)
		assert.True(t, got[0].RequestedAt.Equal(records[2].RequestedAt))

		assert.False(t, got[1].Success)
		assert.Equal(t, "exhausted", got[1].Reason)
	})

	t.Run("stats", func(t *testing.T) {
		s, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), s.Total)
		assert.Equal(t, int64(2), s.Succeeded)
		assert.InDelta(t, 2.0/3.0, s.SuccessRate(), 1e-9)
	})
}
