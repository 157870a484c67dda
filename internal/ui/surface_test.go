package ui

import (
	"bytes"
	"io"
	"testing"

	"NodeBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	log := zaptest.NewLogger(t)
	view, err := state.NewViewport(-5, 5)
	require.NoError(t, err)
	s := NewSurface(state.NewBoard("test", log), view, 20, log)

	w := test.NewWindow(s)
	t.Cleanup(w.Close)
	w.Resize(fyne.NewSize(640, 480))
	return s
}

func press(s *Surface, x, y float32) {
	s.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func dragTo(s *Surface, x, y float32) {
	s.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func release(s *Surface) {
	s.MouseUp(&desktop.MouseEvent{Button: desktop.MouseButtonPrimary})
}

func TestSurface_AddShape(t *testing.T) {
	s := newTestSurface(t)
	s.AddShape("circle")
	s.AddShape("hexagon")
	s.AddShape("triangle")

	shapes := s.Board().Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, float32(100), shapes[0].Pos.X)
	assert.Equal(t, float32(200), shapes[1].Pos.X)
}

func TestSurface_DragMovesShape(t *testing.T) {
	s := newTestSurface(t)
	s.AddShape("square")
	id := s.Board().Shapes()[0].ID

	press(s, 110, 90)
	require.True(t, s.Dragging())
	dragTo(s, 310, 190)

	got, _ := s.Board().Lookup(id)
	assert.Equal(t, state.Point{X: 300, Y: 200}, got.Pos)

	release(s)
	assert.False(t, s.Dragging())
	dragTo(s, 0, 0)
	got, _ = s.Board().Lookup(id)
	assert.Equal(t, state.Point{X: 300, Y: 200}, got.Pos, "no drag after release")
}

func TestSurface_DragAtZoom(t *testing.T) {
	s := newTestSurface(t)
	s.AddShape("circle")
	id := s.Board().Shapes()[0].ID
	s.ZoomIn()
	s.ZoomIn()
	scale := s.Viewport().Scale()

	// The circle's centre (100,100) is drawn at (121,121).
	press(s, 121, 121)
	require.True(t, s.Dragging())
	dragTo(s, 400, 300)

	got, _ := s.Board().Lookup(id)
	offset := state.Point{X: 21, Y: 21}
	assert.InDelta(t, (400-offset.X)/scale, got.Pos.X, 1e-3)
	assert.InDelta(t, (300-offset.Y)/scale, got.Pos.Y, 1e-3)
	s.DragEnd()
	assert.False(t, s.Dragging())
}

func TestSurface_PointerMotionMovesOncePerPosition(t *testing.T) {
	s := newTestSurface(t)
	s.AddShape("circle")
	moves := 0
	s.Board().SetOnLocalOp(func(op state.Op) {
		if op.Type == state.OpMoveShape {
			moves++
		}
	})

	press(s, 100, 100)
	dragTo(s, 150, 160)
	s.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(150, 160)}})
	assert.Equal(t, 1, moves)

	s.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(155, 160)}})
	dragTo(s, 155, 160)
	assert.Equal(t, 2, moves)
	release(s)
}

func TestSurface_PressOnEmptySpaceDoesNotDrag(t *testing.T) {
	s := newTestSurface(t)
	s.AddShape("circle")
	press(s, 500, 400)
	assert.False(t, s.Dragging())

	s.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)},
		Button:     desktop.MouseButtonSecondary,
	})
	assert.False(t, s.Dragging())
}

func TestSurface_ScrollZooms(t *testing.T) {
	s := newTestSurface(t)
	s.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: 3}})
	assert.Equal(t, 1, s.Viewport().Level())
	s.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -3}})
	s.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DY: -3}})
	assert.Equal(t, -1, s.Viewport().Level())
	s.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.Delta{DX: 4}})
	assert.Equal(t, -1, s.Viewport().Level())

	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, 5, s.Viewport().Level())
	s.ResetZoom()
	assert.Equal(t, float32(1), s.Viewport().Scale())
}

func TestSurface_RendersGridAndShapes(t *testing.T) {
	s := newTestSurface(t)
	for _, k := range state.Kinds() {
		s.AddShape(k.String())
	}
	r := test.WidgetRenderer(s)
	r.Refresh()

	grid := s.Viewport().GridLines(20)
	require.NotEmpty(t, grid, "layout recorded the extent")
	objects := r.Objects()
	require.Len(t, objects, 1+len(grid)+3)

	shapes := objects[1+len(grid):]
	assert.IsType(t, &canvas.Circle{}, shapes[0])
	assert.IsType(t, &canvas.Rectangle{}, shapes[1])
	assert.IsType(t, &canvas.Raster{}, shapes[2])
	assert.Equal(t, fyne.NewPos(150, 50), shapes[1].Position())
	assert.Equal(t, fyne.NewSize(100, 100), shapes[1].Size())

	s.ZoomOut()
	r.Refresh()
	shapes = r.Objects()[1+len(s.Viewport().GridLines(20)):]
	assert.InDelta(t, 150/1.1, shapes[1].Position().X, 1e-3)
}

func TestSurface_SaveLoadExport(t *testing.T) {
	s := newTestSurface(t)
	var status string
	s.OnStatus = func(text string) { status = text }
	s.AddShape("circle")
	s.AddShape("square")

	saved := &closingBuffer{}
	s.SaveTo(saved)
	assert.True(t, saved.closed)
	assert.Equal(t, "Saved 2 shapes", status)

	view, err := state.NewViewport(-5, 5)
	require.NoError(t, err)
	other := NewSurface(state.NewBoard("other", nil), view, 20, nil)
	other.OnStatus = func(text string) { status = text }
	other.AddShape("triangle")
	other.LoadFrom(io.NopCloser(bytes.NewReader(saved.Bytes())))
	assert.Equal(t, s.Board().Shapes(), other.Board().Shapes())
	assert.Equal(t, "Loaded 2 shapes", status)

	other.LoadFrom(io.NopCloser(bytes.NewReader([]byte("{"))))
	assert.Equal(t, "Error reading file - invalid format", status)
	assert.Equal(t, 2, other.Board().Len(), "failed load keeps the board")

	pdf := &closingBuffer{}
	s.ExportPDF(pdf)
	assert.True(t, pdf.closed)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))
}
