package state

// RGB is an opaque color shared by the screen and PDF renderers.
type RGB struct {
	R, G, B uint8
}

var palette = map[string]RGB{
	"black": {0, 0, 0},
	"blue":  {0, 0, 255},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
}

// ColorRGB resolves a named color. Unknown names fall back to black.
func ColorRGB(name string) RGB {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette["black"]
}
