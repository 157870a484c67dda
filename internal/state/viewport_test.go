package state

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewport(t *testing.T) *Viewport {
	t.Helper()
	v, err := NewViewport(-5, 5)
	require.NoError(t, err)
	return v
}

func TestNewViewport_RejectsRangeWithoutZero(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{"Symmetric", -5, 5, false},
		{"ZoomInOnly", 0, 3, false},
		{"Fixed", 0, 0, false},
		{"AboveZero", 1, 5, true},
		{"BelowZero", -5, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewViewport(tt.min, tt.max)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidZoom)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, float32(1), v.Scale())
			assert.Equal(t, 0, v.Level())
		})
	}
}

func TestViewport_ScaleAfterZoomIn(t *testing.T) {
	v := newTestViewport(t)
	for k := 1; k <= 5; k++ {
		require.True(t, v.Zoom(1))
		assert.Equal(t, k, v.Level())
		assert.InDelta(t, math.Pow(1.1, float64(k)), float64(v.Scale()), 1e-5)
	}
}

func TestViewport_ZoomOutIsInverseOfZoomIn(t *testing.T) {
	v := newTestViewport(t)
	v.Zoom(1)
	v.Zoom(1)
	v.Zoom(-1)
	v.Zoom(-1)
	assert.Equal(t, 0, v.Level())
	assert.Equal(t, float32(1), v.Scale())

	v.Zoom(-1)
	assert.InDelta(t, 1/1.1, float64(v.Scale()), 1e-6)
}

func TestViewport_ZoomBeyondBoundsIsIgnored(t *testing.T) {
	v := newTestViewport(t)
	for i := 0; i < 5; i++ {
		v.Zoom(1)
	}
	scale := v.Scale()
	assert.False(t, v.Zoom(1))
	assert.Equal(t, 5, v.Level())
	assert.Equal(t, scale, v.Scale())

	for i := 0; i < 10; i++ {
		v.Zoom(-1)
	}
	assert.Equal(t, -5, v.Level())
	assert.False(t, v.Zoom(-1))
	assert.False(t, v.Zoom(0))
}

func TestViewport_LevelStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := newTestViewport(t)
	lo, hi := v.Bounds()
	for i := 0; i < 1000; i++ {
		v.Zoom(rng.Intn(3) - 1)
		require.GreaterOrEqual(t, v.Level(), lo)
		require.LessOrEqual(t, v.Level(), hi)
		require.InDelta(t, math.Pow(1.1, float64(v.Level())), float64(v.Scale()), 1e-5)
	}
}

func TestViewport_GridLines(t *testing.T) {
	v := newTestViewport(t)
	assert.Empty(t, v.GridLines(20), "no extent yet")

	v.Resize(Size{Width: 100, Height: 40})
	lines := v.GridLines(20)
	// x = 0,20,40,60,80 and y = 0,20
	require.Len(t, lines, 7)
	assert.Equal(t, Line{From: Point{X: 40}, To: Point{X: 40, Y: 40}}, lines[2])
	assert.Equal(t, Line{From: Point{Y: 20}, To: Point{X: 100, Y: 20}}, lines[6])

	v.Zoom(-1)
	for _, l := range v.GridLines(20) {
		assert.LessOrEqual(t, l.From.X, float32(100))
	}
	assert.Greater(t, len(v.GridLines(20)), 7, "zooming out tightens the grid")
}

func TestViewport_ScreenLogicalRoundTrip(t *testing.T) {
	v := newTestViewport(t)
	v.Zoom(1)
	v.Zoom(1)
	p := Point{X: 100, Y: 250}
	back := v.ToLogical(v.ToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-3)
	assert.InDelta(t, p.Y, back.Y, 1e-3)
}
