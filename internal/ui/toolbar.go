package ui

import (
	"image/color"

	"NodeBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// shapeButton is a swatch in the kind's color that adds a shape of that
// kind when tapped. Kind is the name, as a browser button's data attribute.
type shapeButton struct {
	widget.BaseWidget
	Kind     string
	Color    color.Color
	OnTapped func(kind string)
}

func newShapeButton(k state.Kind, tapped func(string)) *shapeButton {
	b := &shapeButton{Kind: k.String(), Color: toColor(k.Style().Color), OnTapped: tapped}
	b.ExtendBaseWidget(b)
	return b
}

func (b *shapeButton) CreateRenderer() fyne.WidgetRenderer {
	swatch := canvas.NewRectangle(b.Color)
	swatch.SetMinSize(fyne.NewSize(16, 16))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	label := widget.NewLabel(b.Kind)
	return widget.NewSimpleRenderer(container.NewStack(border,
		container.NewHBox(container.NewCenter(swatch), label)))
}

func (b *shapeButton) Tapped(_ *fyne.PointEvent) {
	if b.OnTapped != nil {
		b.OnTapped(b.Kind)
	}
}

// NewToolbar builds the shape palette and the view and file actions.
func NewToolbar(s *Surface, win fyne.Window) fyne.CanvasObject {
	shapes := container.NewHBox()
	for _, k := range state.Kinds() {
		shapes.Add(newShapeButton(k, s.AddShape))
	}

	jsonFilter := storage.NewExtensionFileFilter([]string{".json"})
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ZoomInIcon(), s.ZoomIn),
		widget.NewToolbarAction(theme.ZoomOutIcon(), s.ZoomOut),
		widget.NewToolbarAction(theme.ZoomFitIcon(), s.ResetZoom),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if w != nil {
					s.SaveTo(w)
				}
			}, win)
			d.SetFileName("board.json")
			d.SetFilter(jsonFilter)
			d.Show()
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if r != nil {
					s.LoadFrom(r)
				}
			}, win)
			d.SetFilter(jsonFilter)
			d.Show()
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if w != nil {
					s.ExportPDF(w)
				}
			}, win)
			d.SetFileName("board.pdf")
			d.Show()
		}),
	)

	return container.NewHBox(
		widget.NewLabel("Add:"),
		shapes,
		widget.NewSeparator(),
		tb,
		layout.NewSpacer(),
	)
}
