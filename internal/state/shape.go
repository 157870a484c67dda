package state

import (
	"encoding/json"
	"fmt"
)

// Kind selects which primitive a shape is drawn as.
type Kind uint8

const (
	Circle Kind = iota + 1
	Square
	Triangle
)

// Style is the static look of a kind.
type Style struct {
	Color string
	Size  float32
}

type kindSpec struct {
	name     string
	style    Style
	geometry func(center Point, size float32) Geometry
}

var kinds = map[Kind]kindSpec{
	Circle: {
		name:  "circle",
		style: Style{Color: "blue", Size: 100},
		geometry: func(c Point, size float32) Geometry {
			return CircleGeometry{Center: c, Radius: size / 2}
		},
	},
	Square: {
		name:  "square",
		style: Style{Color: "red", Size: 100},
		geometry: func(c Point, size float32) Geometry {
			half := size / 2
			return RectGeometry{Rect{
				Min: Point{X: c.X - half, Y: c.Y - half},
				Max: Point{X: c.X + half, Y: c.Y + half},
			}}
		},
	},
	Triangle: {
		name:  "triangle",
		style: Style{Color: "green", Size: 100},
		geometry: func(c Point, size float32) Geometry {
			return TriangleGeometry{
				A: Point{X: c.X, Y: c.Y - size},
				B: Point{X: c.X - size/2, Y: c.Y + size/2},
				C: Point{X: c.X + size/2, Y: c.Y + size/2},
			}
		},
	},
}

// Kinds lists every known kind in toolbar order.
func Kinds() []Kind {
	return []Kind{Circle, Square, Triangle}
}

// ParseKind looks a kind up by its name. Unknown names report false.
func ParseKind(name string) (Kind, bool) {
	for k, spec := range kinds {
		if spec.name == name {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) String() string {
	if spec, ok := kinds[k]; ok {
		return spec.name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) Style() Style {
	return kinds[k].style
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal kind %d: %w", uint8(k), ErrUnknownKind)
	}
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseKind(name)
	if !ok {
		return fmt.Errorf("kind %q: %w", name, ErrUnknownKind)
	}
	*k = parsed
	return nil
}

// Shape is a placed primitive. Pos is the anchor its geometry is built
// around; for circles and squares that is the centre.
type Shape struct {
	ID    string  `json:"id"`
	Kind  Kind    `json:"kind"`
	Pos   Point   `json:"pos"`
	Size  float32 `json:"size"`
	Color string  `json:"color"`
}

// Geometry builds the outline of the shape from its kind.
func (s Shape) Geometry() Geometry {
	spec, ok := kinds[s.Kind]
	if !ok {
		return RectGeometry{Rect{Min: s.Pos, Max: s.Pos}}
	}
	return spec.geometry(s.Pos, s.Size)
}
