package ui

import (
	"fmt"
	"image/color"
	"io"

	"NodeBoard/internal/export"
	"NodeBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

var gridColor = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

// Surface is the diagram canvas: a grid scaled by the viewport with the
// board's shapes on top, draggable with the primary mouse button.
type Surface struct {
	widget.BaseWidget
	board    *state.Board
	view     *state.Viewport
	drag     state.Drag
	gridStep float32
	log      *zap.Logger

	// OnStatus receives short messages for the status bar.
	OnStatus func(string)
}

var _ fyne.Widget = (*Surface)(nil)
var _ fyne.Draggable = (*Surface)(nil)
var _ fyne.Scrollable = (*Surface)(nil)
var _ desktop.Mouseable = (*Surface)(nil)
var _ desktop.Hoverable = (*Surface)(nil)

func NewSurface(board *state.Board, view *state.Viewport, gridStep float32, log *zap.Logger) *Surface {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Surface{
		board:    board,
		view:     view,
		gridStep: gridStep,
		log:      log.Named("surface"),
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *Surface) Board() *state.Board       { return s.board }
func (s *Surface) Viewport() *state.Viewport { return s.view }

// Dragging reports whether a shape is currently held.
func (s *Surface) Dragging() bool { return s.drag.Active() }

// AddShape places a shape of the named kind; unknown kinds do nothing.
func (s *Surface) AddShape(kind string) {
	if _, ok := s.board.AddShape(kind); ok {
		s.Refresh()
	}
}

// Zoom steps the viewport; requests past the zoom bounds do nothing.
func (s *Surface) Zoom(direction int) {
	if s.view.Zoom(direction) {
		s.log.Debug("zoom", zap.Int("level", s.view.Level()), zap.Float32("scale", s.view.Scale()))
		s.Refresh()
	}
}

func (s *Surface) ZoomIn()  { s.Zoom(1) }
func (s *Surface) ZoomOut() { s.Zoom(-1) }

func (s *Surface) ResetZoom() {
	s.view.Reset()
	s.Refresh()
}

// RefreshAsync redraws from a goroutine other than the UI one.
func (s *Surface) RefreshAsync() {
	fyne.Do(s.Refresh)
}

// SetStatus forwards text to the status bar, if one is attached.
func (s *Surface) SetStatus(text string) {
	if s.OnStatus != nil {
		s.OnStatus(text)
	}
}

func (s *Surface) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case e.Scrolled.DY > 0:
		s.Zoom(1)
	case e.Scrolled.DY < 0:
		s.Zoom(-1)
	}
}

func (s *Surface) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	pointer := toPoint(e.Position)
	shape, ok := s.board.HitTest(s.view.ToLogical(pointer))
	if !ok {
		return
	}
	s.drag.Begin(shape, pointer)
}

func (s *Surface) MouseUp(*desktop.MouseEvent) {
	s.drag.End()
}

func (s *Surface) Dragged(e *fyne.DragEvent) {
	s.moveTo(e.Position)
}

func (s *Surface) DragEnd() {
	s.drag.End()
}

func (s *Surface) MouseMoved(e *desktop.MouseEvent) {
	s.moveTo(e.Position)
}

func (s *Surface) MouseIn(*desktop.MouseEvent) {}
func (s *Surface) MouseOut()                   {}

func (s *Surface) moveTo(pos fyne.Position) {
	p, ok := s.drag.Position(toPoint(pos), s.view.Scale())
	if !ok {
		return
	}
	id, _ := s.drag.Target()
	// Dragged and MouseMoved both report a held pointer; move once per position.
	if cur, ok := s.board.Lookup(id); !ok || cur.Pos == p {
		return
	}
	if s.board.Move(id, p) {
		s.Refresh()
	}
}

// SaveTo writes the board as JSON and closes w.
func (s *Surface) SaveTo(w io.WriteCloser) {
	defer func() {
		if err := w.Close(); err != nil {
			s.log.Warn("closing save target", zap.Error(err))
		}
	}()

	snap := s.board.Snapshot()
	if err := state.Encode(w, snap); err != nil {
		s.log.Error("save failed", zap.Error(err))
		s.SetStatus("Error saving file")
		return
	}
	s.log.Info("board saved", zap.Int("shapes", len(snap.Shapes)))
	s.SetStatus(fmt.Sprintf("Saved %d shapes", len(snap.Shapes)))
}

// LoadFrom replaces the board with the JSON document in r and closes r.
func (s *Surface) LoadFrom(r io.ReadCloser) {
	defer func() {
		if err := r.Close(); err != nil {
			s.log.Warn("closing load source", zap.Error(err))
		}
	}()

	snap, err := state.Decode(r)
	if err != nil {
		s.log.Error("load failed", zap.Error(err))
		s.SetStatus("Error reading file - invalid format")
		return
	}
	s.drag.End()
	s.board.Restore(snap)
	s.Refresh()
	s.SetStatus(fmt.Sprintf("Loaded %d shapes", s.board.Len()))
}

// ExportPDF renders the board to w and closes it.
func (s *Surface) ExportPDF(w io.WriteCloser) {
	defer func() {
		if err := w.Close(); err != nil {
			s.log.Warn("closing export target", zap.Error(err))
		}
	}()

	shapes := s.board.Shapes()
	if err := export.WritePDF(w, shapes); err != nil {
		s.log.Error("pdf export failed", zap.Error(err))
		s.SetStatus("Error exporting PDF")
		return
	}
	s.SetStatus(fmt.Sprintf("Exported %d shapes to PDF", len(shapes)))
}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	r := &surfaceRenderer{surface: s}
	r.background = canvas.NewRectangle(color.White)
	r.rebuild()
	return r
}

type surfaceRenderer struct {
	surface    *Surface
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

// Layout is where the surface learns its extent, so a window resize
// re-renders the grid.
func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.background.Move(fyne.NewPos(0, 0))
	r.background.Resize(size)
	r.surface.view.Resize(state.Size{Width: size.Width, Height: size.Height})
	r.rebuild()
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *surfaceRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.surface)
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *surfaceRenderer) Destroy() {}

func (r *surfaceRenderer) rebuild() {
	view := r.surface.view
	objects := []fyne.CanvasObject{r.background}

	for _, l := range view.GridLines(r.surface.gridStep) {
		line := canvas.NewLine(gridColor)
		line.StrokeWidth = 1
		line.Position1 = toPosition(l.From)
		line.Position2 = toPosition(l.To)
		objects = append(objects, line)
	}

	scale := view.Scale()
	for _, sh := range r.surface.board.Shapes() {
		objects = append(objects, shapeObject(sh, scale))
	}
	r.objects = objects
}

// shapeObject draws a shape with the shape layer's uniform scale applied.
func shapeObject(sh state.Shape, scale float32) fyne.CanvasObject {
	fill := toColor(sh.Color)
	var obj fyne.CanvasObject

	switch g := sh.Geometry().(type) {
	case state.CircleGeometry:
		obj = canvas.NewCircle(fill)
	case state.RectGeometry:
		obj = canvas.NewRectangle(fill)
	case state.TriangleGeometry:
		b := g.Bounds()
		obj = canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
			p := state.Point{
				X: b.Min.X + (float32(x)+0.5)/float32(w)*b.Width(),
				Y: b.Min.Y + (float32(y)+0.5)/float32(h)*b.Height(),
			}
			if g.Contains(p) {
				return fill
			}
			return color.Transparent
		})
	default:
		obj = canvas.NewRectangle(fill)
	}

	b := sh.Geometry().Bounds()
	obj.Move(toPosition(b.Min.Scale(scale)))
	obj.Resize(fyne.NewSize(b.Width()*scale, b.Height()*scale))
	return obj
}

func toPoint(p fyne.Position) state.Point { return state.Point{X: p.X, Y: p.Y} }

func toPosition(p state.Point) fyne.Position { return fyne.NewPos(p.X, p.Y) }

func toColor(name string) color.Color {
	c := state.ColorRGB(name)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
