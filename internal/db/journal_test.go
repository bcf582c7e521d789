package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/navgrid/internal/geo"
	"github.com/udisondev/navgrid/internal/pathfinding"
	"github.com/udisondev/navgrid/internal/pathreq"
	"github.com/udisondev/navgrid/internal/testutil"
)

var errInsertRejected = errors.New("insert rejected")

type fakeWriter struct {
	mu      sync.Mutex
	batches [][]RouteRecord
	err     error
}

func (w *fakeWriter) InsertBatch(_ context.Context, records []RouteRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]RouteRecord(nil), records...))
	return nil
}

func (w *fakeWriter) records() []RouteRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []RouteRecord
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

func (w *fakeWriter) batchCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.batches)
}

func outcome(id uint64, success bool) pathreq.Outcome {
	res := pathfinding.Failed(pathfinding.ReasonExhausted)
	if success {
		res = pathfinding.Result{
			Success:   true,
			Reason:    pathfinding.ReasonFound,
			Waypoints: []geo.Vec2{geo.V(1, 1), geo.V(2, 2)},
			Cost:      28,
			Expanded:  3,
			Duration:  1500 * time.Microsecond,
		}
	}
	return pathreq.Outcome{
		ID:          id,
		Start:       geo.V(0.5, 0.5),
		End:         geo.V(2.5, 2.5),
		SubmittedAt: time.Unix(1700000000, 0).UTC(),
		Queued:      250 * time.Microsecond,
		Result:      res,
	}
}

func TestRecordFromOutcome(t *testing.T) {
	rec := RecordFromOutcome(outcome(7, true))
	assert.Equal(t, uint64(7), rec.RequestID)
	assert.True(t, rec.Success)
	assert.Equal(t, "found", rec.Reason)
	assert.Equal(t, 2, rec.Waypoints)
	assert.Equal(t, 28, rec.Cost)
	assert.Equal(t, 3, rec.Expanded)
	assert.Equal(t, 1500*time.Microsecond, rec.Duration)
	assert.Equal(t, geo.V(2.5, 2.5), rec.End)

	rec = RecordFromOutcome(outcome(8, false))
	assert.False(t, rec.Success)
	assert.Equal(t, "exhausted", rec.Reason)
	assert.Zero(t, rec.Waypoints)
}

func TestJournal_FlushOnBatchSize(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 16, 3, time.Hour)

	ctx, cancel := testutil.ContextWithCancel(t)
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	for i := range 3 {
		j.Observe(outcome(uint64(i+1), true))
	}

	require.Eventually(t, func() bool { return w.batchCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	recs := w.records()
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, uint64(i+1), rec.RequestID, "journal must keep delivery order")
	}

	cancel()
	require.NoError(t, testutil.Receive(t, done, 2*time.Second))
	assert.Equal(t, uint64(3), j.Written())
}

func TestJournal_FlushOnInterval(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 16, 100, 20*time.Millisecond)

	ctx, cancel := testutil.ContextWithCancel(t)
	defer cancel()
	go func() { _ = j.Run(ctx) }()

	j.Observe(outcome(1, false))
	require.Eventually(t, func() bool { return len(w.records()) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestJournal_FinalFlushOnCancel(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 16, 100, time.Hour)

	for i := range 5 {
		j.Observe(outcome(uint64(i+1), true))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))
	assert.Len(t, w.records(), 5)
	assert.Equal(t, uint64(5), j.Written())
}

func TestJournal_DropsWhenFull(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 2, 10, time.Hour)

	for i := range 5 {
		j.Observe(outcome(uint64(i+1), true))
	}
	assert.Equal(t, uint64(3), j.Dropped())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))
	recs := w.records()
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(1), recs[0].RequestID)
	assert.Equal(t, uint64(2), recs[1].RequestID)
}

func TestJournal_WriterError(t *testing.T) {
	w := &fakeWriter{err: errInsertRejected}
	j := NewJournal(w, 4, 10, time.Hour)
	j.Observe(outcome(1, true))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := j.Run(ctx)
	require.ErrorIs(t, err, errInsertRejected)
	assert.Equal(t, uint64(1), j.Failed())
	assert.Zero(t, j.Written())
}

func TestJournal_ObservesCoordinator(t *testing.T) {
	w := &fakeWriter{}
	j := NewJournal(w, 16, 100, time.Hour)

	g := testutil.OpenGrid(t, 6, 6)
	engine := pathfinding.NewEngine(g)
	c := pathreq.New(engine, pathreq.WithObserver(j.Observe))

	tk := c.Submit(geo.V(0.5, 0.5), geo.V(5.5, 5.5), func([]geo.Vec2, bool) {})
	_, err := tk.Wait(testutil.ContextWithTimeout(t, 2*time.Second))
	require.NoError(t, err)
	require.NoError(t, c.Drain(testutil.ContextWithTimeout(t, 2*time.Second)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))

	recs := w.records()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
	assert.Equal(t, 5, recs[0].Waypoints)
	assert.Equal(t, 70, recs[0].Cost)
}
