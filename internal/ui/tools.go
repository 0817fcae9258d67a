package ui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ShapeBoard/internal/export"
)

// exportPDF writes the current board to w and reports the result in the
// status bar.
func exportPDF(surface *CanvasWidget, w fyne.URIWriteCloser) {
	defer w.Close()
	snap := surface.board.Snapshot()
	if err := export.WritePDF(w, snap); err != nil {
		log.Printf("[EXPORT] PDF to %s failed: %v", w.URI(), err)
		surface.SetStatus("Error exporting PDF")
		return
	}
	surface.SetStatus(fmt.Sprintf("Exported %d shapes to %s", len(snap.Shapes), w.URI().Name()))
}

func exportPNG(surface *CanvasWidget, w fyne.URIWriteCloser) {
	defer w.Close()
	snap := surface.board.Snapshot()
	size := surface.Size()
	if err := export.WritePNG(w, snap, int(size.Width), int(size.Height)); err != nil {
		log.Printf("[EXPORT] PNG to %s failed: %v", w.URI(), err)
		surface.SetStatus("Error exporting PNG")
		return
	}
	surface.SetStatus(fmt.Sprintf("Exported %d shapes to %s", len(snap.Shapes), w.URI().Name()))
}

func saveDialog(win fyne.Window, name string, write func(fyne.URIWriteCloser)) func() {
	return func() {
		d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			if w == nil {
				return
			}
			write(w)
		}, win)
		d.SetFileName(name)
		d.Show()
	}
}

// NewToolbar builds the export actions and the share link display.
func NewToolbar(win fyne.Window, surface *CanvasWidget, shareLink string) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), saveDialog(win, "board.pdf", func(w fyne.URIWriteCloser) {
			exportPDF(surface, w)
		})), // Export PDF
		widget.NewToolbarAction(theme.FileImageIcon(), saveDialog(win, "board.png", func(w fyne.URIWriteCloser) {
			exportPNG(surface, w)
		})), // Export PNG
	)

	items := []fyne.CanvasObject{
		widget.NewLabel("Export:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Double-click to add, right-click a circle or double-click a square to toggle, click two shapes to connect"),
		layout.NewSpacer(),
	}
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		link.Disable()
		items = append(items, widget.NewLabel("Share:"), link)
	}
	return container.NewHBox(items...)
}
