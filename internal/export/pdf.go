package export

import (
	"fmt"
	"io"

	"NodeBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	margin     = 10.0
	// unitsPerMM is the largest scale used; bigger boards shrink to fit.
	unitsPerMM = 3.0
)

// WritePDF renders shapes onto a single A4 page.
func WritePDF(w io.Writer, shapes []state.Shape) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()

	origin, scale := fit(shapes)
	at := func(pt state.Point) (float64, float64) {
		return margin + float64(pt.X-origin.X)*scale, margin + float64(pt.Y-origin.Y)*scale
	}

	for _, s := range shapes {
		c := state.ColorRGB(s.Color)
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		switch g := s.Geometry().(type) {
		case state.CircleGeometry:
			x, y := at(g.Center)
			p.Circle(x, y, float64(g.Radius)*scale, "F")
		case state.RectGeometry:
			x, y := at(g.Min)
			p.Rect(x, y, float64(g.Width())*scale, float64(g.Height())*scale, "F")
		case state.TriangleGeometry:
			pts := make([]gofpdf.PointType, 0, 3)
			for _, v := range g.Vertices() {
				x, y := at(v)
				pts = append(pts, gofpdf.PointType{X: x, Y: y})
			}
			p.Polygon(pts, "F")
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// fit returns the board point mapped to the page margin and the mm per
// board unit that keeps every shape on the page.
func fit(shapes []state.Shape) (state.Point, float64) {
	if len(shapes) == 0 {
		return state.Point{}, 1 / unitsPerMM
	}
	bounds := shapes[0].Geometry().Bounds()
	for _, s := range shapes[1:] {
		b := s.Geometry().Bounds()
		bounds.Min.X = min(bounds.Min.X, b.Min.X)
		bounds.Min.Y = min(bounds.Min.Y, b.Min.Y)
		bounds.Max.X = max(bounds.Max.X, b.Max.X)
		bounds.Max.Y = max(bounds.Max.Y, b.Max.Y)
	}
	scale := 1 / unitsPerMM
	if w := float64(bounds.Width()); w > 0 {
		scale = min(scale, (pageWidth-2*margin)/w)
	}
	if h := float64(bounds.Height()); h > 0 {
		scale = min(scale, (pageHeight-2*margin)/h)
	}
	return bounds.Min, scale
}
