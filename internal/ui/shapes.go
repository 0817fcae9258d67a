package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"ShapeBoard/internal/state"
)

const pendingStroke = 3

// circleWidget is a draggable disc. Primary taps advance the connection,
// secondary taps toggle it into a square.
type circleWidget struct {
	widget.BaseWidget
	surface  *CanvasWidget
	id       state.ShapeID
	disc     *canvas.Circle
	dragging bool
	pointer  fyne.Position
}

var _ fyne.Tappable = (*circleWidget)(nil)
var _ fyne.SecondaryTappable = (*circleWidget)(nil)
var _ fyne.DoubleTappable = (*circleWidget)(nil)
var _ fyne.Draggable = (*circleWidget)(nil)

func newCircleWidget(surface *CanvasWidget, s state.Shape) *circleWidget {
	w := &circleWidget{surface: surface, id: s.ID, disc: canvas.NewCircle(color.Black)}
	w.ExtendBaseWidget(w)
	return w
}

func (w *circleWidget) update(fill color.Color, highlighted bool) {
	w.disc.FillColor = fill
	w.disc.StrokeColor = pendingColor
	w.disc.StrokeWidth = 0
	if highlighted {
		w.disc.StrokeWidth = pendingStroke
	}
	w.disc.Refresh()
}

func (w *circleWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.disc)
}

func (w *circleWidget) Tapped(*fyne.PointEvent) {
	w.surface.board.ClickShape(w.id)
}

func (w *circleWidget) TappedSecondary(*fyne.PointEvent) {
	w.dragging = false
	w.surface.board.ToggleShape(w.id)
}

// DoubleTapped keeps a double click on a circle from reaching the surface,
// where it would create a new shape underneath.
func (w *circleWidget) DoubleTapped(*fyne.PointEvent) {}

func (w *circleWidget) Dragged(e *fyne.DragEvent) {
	b := w.surface.board
	if !w.dragging {
		if !b.BeginDrag(w.id) {
			return
		}
		w.dragging = true
	}
	w.pointer = w.Position().Add(e.Position)
	b.DragMove(e.Dragged.DX, e.Dragged.DY)
}

// DragEnd drops the shape under the pointer when released over the surface,
// otherwise the shape stays where the last move left it.
func (w *circleWidget) DragEnd() {
	if !w.dragging {
		return
	}
	w.dragging = false
	b := w.surface.board
	if w.surface.contains(w.pointer) {
		b.Drop(w.pointer.X, w.pointer.Y)
	}
	b.EndDrag()
}

// squareWidget is an immovable square. Primary taps advance the connection,
// double taps toggle it back into a circle.
type squareWidget struct {
	widget.BaseWidget
	surface *CanvasWidget
	id      state.ShapeID
	rect    *canvas.Rectangle
}

var _ fyne.Tappable = (*squareWidget)(nil)
var _ fyne.DoubleTappable = (*squareWidget)(nil)

func newSquareWidget(surface *CanvasWidget, s state.Shape) *squareWidget {
	w := &squareWidget{surface: surface, id: s.ID, rect: canvas.NewRectangle(color.Black)}
	w.ExtendBaseWidget(w)
	return w
}

func (w *squareWidget) update(fill color.Color, highlighted bool) {
	w.rect.FillColor = fill
	w.rect.StrokeColor = pendingColor
	w.rect.StrokeWidth = 0
	if highlighted {
		w.rect.StrokeWidth = pendingStroke
	}
	w.rect.Refresh()
}

func (w *squareWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.rect)
}

func (w *squareWidget) Tapped(*fyne.PointEvent) {
	w.surface.board.ClickShape(w.id)
}

func (w *squareWidget) DoubleTapped(*fyne.PointEvent) {
	w.surface.board.ToggleShape(w.id)
}
