package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Options configures the main window.
type Options struct {
	Title     string
	Size      fyne.Size
	ShareLink string
}

// RunApp shows the editor window and blocks until it is closed.
func RunApp(opts Options, surface *Surface) {
	myApp := app.New()
	myWindow := myApp.NewWindow(opts.Title)
	myWindow.Resize(opts.Size)

	status := widget.NewLabel("Ready")
	surface.OnStatus = func(text string) {
		fyne.Do(func() { status.SetText(text) })
	}

	var bottom fyne.CanvasObject = status
	if opts.ShareLink != "" {
		link := opts.ShareLink
		bottom = container.NewHBox(
			status,
			layout.NewSpacer(),
			widget.NewLabel("Share: "+link),
			widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
				myWindow.Clipboard().SetContent(link)
				status.SetText("Link copied")
			}),
		)
	}

	content := container.NewBorder(NewToolbar(surface, myWindow), bottom, nil, nil, surface)
	myWindow.SetContent(content)
	myWindow.ShowAndRun()
}
