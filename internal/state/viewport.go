package state

import (
	"fmt"
	"math"
)

// ZoomFactor is the scale change of one zoom step.
const ZoomFactor = 1.1

// Viewport holds the zoom applied to the shape layer and the extent of the
// drawing surface.
type Viewport struct {
	scale  float32
	level  int
	min    int
	max    int
	extent Size
}

func NewViewport(minLevel, maxLevel int) (*Viewport, error) {
	if minLevel > 0 || maxLevel < 0 {
		return nil, fmt.Errorf("viewport [%d, %d]: %w", minLevel, maxLevel, ErrInvalidZoom)
	}
	return &Viewport{scale: 1, min: minLevel, max: maxLevel}, nil
}

func (v *Viewport) Scale() float32 { return v.scale }
func (v *Viewport) Level() int     { return v.level }
func (v *Viewport) Extent() Size   { return v.extent }

// Bounds returns the allowed zoom levels.
func (v *Viewport) Bounds() (int, int) { return v.min, v.max }

// Zoom steps one level in the direction of the sign of direction. Requests
// past the bounds, and a zero direction, change nothing and report false.
func (v *Viewport) Zoom(direction int) bool {
	switch {
	case direction > 0 && v.level < v.max:
		v.level++
	case direction < 0 && v.level > v.min:
		v.level--
	default:
		return false
	}
	v.scale = float32(math.Pow(ZoomFactor, float64(v.level)))
	return true
}

// Reset returns to level 0.
func (v *Viewport) Reset() {
	v.level = 0
	v.scale = 1
}

// Resize records the surface extent taken from the container.
func (v *Viewport) Resize(extent Size) {
	v.extent = extent
}

func (v *Viewport) ToScreen(p Point) Point { return p.Scale(v.scale) }

func (v *Viewport) ToLogical(p Point) Point {
	return Point{X: p.X / v.scale, Y: p.Y / v.scale}
}

// GridLines covers the extent with vertical then horizontal lines spaced
// step*scale apart, starting at the origin.
func (v *Viewport) GridLines(step float32) []Line {
	spacing := step * v.scale
	if spacing <= 0 || v.extent.Width <= 0 || v.extent.Height <= 0 {
		return nil
	}
	var lines []Line
	for x := float32(0); x < v.extent.Width; x += spacing {
		lines = append(lines, Line{From: Point{X: x}, To: Point{X: x, Y: v.extent.Height}})
	}
	for y := float32(0); y < v.extent.Height; y += spacing {
		lines = append(lines, Line{From: Point{Y: y}, To: Point{X: v.extent.Width, Y: y}})
	}
	return lines
}
