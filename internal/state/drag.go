package state

// Drag tracks the shape being repositioned between pointer-down and
// pointer-up. The zero value is idle.
type Drag struct {
	active bool
	target string
	offset Point
}

// Begin starts dragging s. The offset is taken between the screen pointer
// and the shape's logical anchor. Beginning while already dragging switches
// the target.
func (d *Drag) Begin(s Shape, pointer Point) {
	d.active = true
	d.target = s.ID
	d.offset = pointer.Sub(s.Pos)
}

func (d *Drag) Active() bool { return d.active }

// Target returns the dragged shape ID, or false when idle.
func (d *Drag) Target() (string, bool) {
	return d.target, d.active
}

func (d *Drag) Offset() Point { return d.offset }

// Position maps a screen pointer to the target's new logical anchor,
// (pointer - offset) / scale.
func (d *Drag) Position(pointer Point, scale float32) (Point, bool) {
	if !d.active || scale == 0 {
		return Point{}, false
	}
	p := pointer.Sub(d.offset)
	return Point{X: p.X / scale, Y: p.Y / scale}, true
}

// End returns to idle wherever the pointer was released.
func (d *Drag) End() {
	*d = Drag{}
}
