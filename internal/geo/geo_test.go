package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec2
		delta    float64
		want     Vec2
	}{
		{"partial step", V(0, 0), V(10, 0), 3, V(3, 0)},
		{"exact arrival", V(0, 0), V(0, 4), 4, V(0, 4)},
		{"no overshoot", V(1, 1), V(2, 1), 5, V(2, 1)},
		{"already there", V(2, 2), V(2, 2), 1, V(2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.from, tt.to, tt.delta)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 0.25, Clamp01(0.25))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.0, Clamp01(math.NaN()))
	assert.Equal(t, 1.0, Clamp01(math.Inf(1)))
	assert.Equal(t, 0.0, Clamp01(math.Inf(-1)))
}

func TestCircleOverlaps(t *testing.T) {
	c := Circle{Center: V(0, 0), Radius: 1}

	assert.True(t, c.Overlaps(V(0.5, 0), 0.1))
	assert.True(t, c.Overlaps(V(1.4, 0), 0.5))
	assert.False(t, c.Overlaps(V(1.5, 0), 0.5), "touching does not overlap")
	assert.False(t, c.Overlaps(V(3, 3), 0.5))
}

func TestRectOverlaps(t *testing.T) {
	r := NewRect(V(2.5, 2.5), V(1, 1))

	assert.Equal(t, V(2, 2), r.Min)
	assert.Equal(t, V(3, 3), r.Max)
	assert.True(t, r.Overlaps(V(2.5, 2.5), 0.5), "center inside")
	assert.True(t, r.Overlaps(V(2.5, 2.5), 0), "center inside with zero radius")
	assert.False(t, r.Overlaps(V(1.5, 2.5), 0.5), "neighbouring cell only touches")
	assert.True(t, r.Overlaps(V(1.6, 2.5), 0.5))
}

func TestObstacleSetBlocked(t *testing.T) {
	set := ObstacleSet{
		Circle{Center: V(10, 10), Radius: 2},
		NewRect(V(0, 0), V(2, 2)),
	}

	assert.True(t, set.Blocked(V(10, 11), 0.5))
	assert.True(t, set.Blocked(V(0.5, 0.5), 0.1))
	assert.False(t, set.Blocked(V(5, 5), 0.5))

	var fn ObstacleFunc = set.Blocked
	assert.True(t, fn(V(0, 0), 0))
	assert.False(t, ObstacleSet(nil).Blocked(V(0, 0), 10))
}
