package state

type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by s.
func (p Point) Scale(s float32) Point { return Point{X: p.X * s, Y: p.Y * s} }

type Size struct {
	Width  float32
	Height float32
}

// Line is a straight segment in screen coordinates.
type Line struct {
	From Point
	To   Point
}

type OpType string

const (
	OpAddShape  OpType = "add_shape"
	OpMoveShape OpType = "move_shape"
	OpLoad      OpType = "load"
)

// Op is a board mutation as it travels between sites. Shape carries the full
// shape for add and move; Shapes carries the whole board for load.
type Op struct {
	Type    OpType  `json:"type"`
	Shape   Shape   `json:"shape,omitzero"`
	Shapes  []Shape `json:"shapes,omitempty"`
	Lamport uint64  `json:"lamport"`
	Site    string  `json:"site"`
}
