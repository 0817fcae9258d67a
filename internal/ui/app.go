package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// NewMainWindow assembles the board window on a. Create it before starting
// anything that reports status, since status updates go through the app.
func NewMainWindow(a fyne.App, title string, size fyne.Size, shareLink string, surface *CanvasWidget) fyne.Window {
	myWindow := a.NewWindow(title)
	myWindow.Resize(size)

	toolbar := NewToolbar(myWindow, surface, shareLink)
	content := container.NewBorder(toolbar, surface.StatusBar(), nil, nil, surface)
	myWindow.SetContent(content)
	return myWindow
}
