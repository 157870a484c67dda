package state

// Rect is an axis-aligned area in board coordinates.
type Rect struct {
	Min Point
	Max Point
}

func (r Rect) Width() float32  { return r.Max.X - r.Min.X }
func (r Rect) Height() float32 { return r.Max.Y - r.Min.Y }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Overlaps(o Rect) bool {
	return !(r.Max.X < o.Min.X || o.Max.X < r.Min.X ||
		r.Max.Y < o.Min.Y || o.Max.Y < r.Min.Y)
}

// Geometry is the drawable outline of a placed shape.
type Geometry interface {
	Bounds() Rect
	Contains(p Point) bool
}

type CircleGeometry struct {
	Center Point
	Radius float32
}

func (c CircleGeometry) Bounds() Rect {
	return Rect{
		Min: Point{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius},
		Max: Point{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius},
	}
}

func (c CircleGeometry) Contains(p Point) bool {
	d := p.Sub(c.Center)
	return d.X*d.X+d.Y*d.Y <= c.Radius*c.Radius
}

type RectGeometry struct {
	Rect
}

func (r RectGeometry) Bounds() Rect { return r.Rect }

type TriangleGeometry struct {
	A, B, C Point
}

func (t TriangleGeometry) Bounds() Rect {
	b := Rect{Min: t.A, Max: t.A}
	for _, p := range []Point{t.B, t.C} {
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	return b
}

// Contains uses the sign of the edge cross products, so it works for
// either winding order. Points on an edge count as inside.
func (t TriangleGeometry) Contains(p Point) bool {
	d1 := cross(t.A, t.B, p)
	d2 := cross(t.B, t.C, p)
	d3 := cross(t.C, t.A, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func (t TriangleGeometry) Vertices() []Point {
	return []Point{t.A, t.B, t.C}
}

func cross(a, b, p Point) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}
