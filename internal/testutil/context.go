package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout returns a context that is canceled when the test ends or
// the timeout passes, whichever comes first.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// ContextWithCancel returns a context canceled at test cleanup at the latest.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}

// Receive waits for a value on ch or fails the test after d.
func Receive[T any](t testing.TB, ch <-chan T, d time.Duration) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(d):
		t.Fatalf("no value received within %s", d)
		var zero T
		return zero
	}
}
