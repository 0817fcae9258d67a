package ui

import (
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"ShapeBoard/internal/export"
	"ShapeBoard/internal/state"
)

var (
	backgroundColor = color.NRGBA{R: 245, G: 246, B: 248, A: 255}
	connectorColor  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	pendingColor    = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
)

// CanvasWidget is the drawing surface. Double-tapping empty space creates a
// shape; shapes and connectors are rendered from the board on every refresh.
type CanvasWidget struct {
	widget.BaseWidget
	board     *state.Board
	statusBar *widget.Label
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.DoubleTappable = (*CanvasWidget)(nil)
var _ fyne.SecondaryTappable = (*CanvasWidget)(nil)

func NewCanvasWidget(b *state.Board) *CanvasWidget {
	c := &CanvasWidget{
		board:     b,
		statusBar: widget.NewLabel("Ready"),
	}
	c.ExtendBaseWidget(c)
	// Every board change, from a gesture or from a peer, redraws through
	// here. Peer changes reach the board via Replica, on the main goroutine.
	b.SetOnChange(c.Refresh)
	return c
}

func (c *CanvasWidget) Board() *state.Board { return c.board }

func (c *CanvasWidget) StatusBar() *widget.Label { return c.statusBar }

// SetStatus is safe to call from any goroutine once the app exists.
func (c *CanvasWidget) SetStatus(text string) {
	fyne.Do(func() {
		c.statusBar.SetText(text)
	})
}

func (c *CanvasWidget) DoubleTapped(e *fyne.PointEvent) {
	c.board.CreateShape(e.Position.X, e.Position.Y)
}

// TappedSecondary swallows right clicks on empty space so no context menu
// ever opens over the surface.
func (c *CanvasWidget) TappedSecondary(*fyne.PointEvent) {}

// contains reports whether a surface-local point lies on the surface.
func (c *CanvasWidget) contains(p fyne.Position) bool {
	size := c.Size()
	return state.Rect{Width: size.Width, Height: size.Height}.Contains(state.Point{X: p.X, Y: p.Y})
}

func (c *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &canvasRenderer{
		surface:    c,
		background: canvas.NewRectangle(backgroundColor),
		circles:    make(map[state.ShapeID]*circleWidget),
		squares:    make(map[state.ShapeID]*squareWidget),
	}
	r.rebuild()
	return r
}

type canvasRenderer struct {
	surface    *CanvasWidget
	background *canvas.Rectangle
	circles    map[state.ShapeID]*circleWidget
	squares    map[state.ShapeID]*squareWidget
	objects    []fyne.CanvasObject
	rebuilds   int
}

// rebuild lays out background, connector lines and shapes, bottom to top.
// Shape widgets are reused by id so an active drag keeps its target.
func (r *canvasRenderer) rebuild() {
	b := r.surface.board
	snap := b.Snapshot()
	pending, hasPending := b.PendingSource()

	objects := make([]fyne.CanvasObject, 0, 1+len(snap.Lines)+len(snap.Shapes))
	objects = append(objects, r.background)

	for _, l := range snap.Lines {
		line := canvas.NewLine(connectorColor)
		line.StrokeWidth = 2
		line.Position1 = fyne.NewPos(l.Start.X, l.Start.Y)
		line.Position2 = fyne.NewPos(l.End.X, l.End.Y)
		objects = append(objects, line)
	}

	for _, s := range snap.Shapes {
		fill, err := export.ParseHex(s.Color)
		if err != nil {
			log.Printf("[UI] Shape %d: %v", s.ID, err)
			fill = color.NRGBA{A: 255}
		}
		highlighted := hasPending && pending == s.ID

		var obj fyne.CanvasObject
		switch s.Kind {
		case state.KindSquare:
			delete(r.circles, s.ID)
			sw, ok := r.squares[s.ID]
			if !ok {
				sw = newSquareWidget(r.surface, s)
				r.squares[s.ID] = sw
			}
			sw.update(fill, highlighted)
			obj = sw
		default:
			delete(r.squares, s.ID)
			cw, ok := r.circles[s.ID]
			if !ok {
				cw = newCircleWidget(r.surface, s)
				r.circles[s.ID] = cw
			}
			cw.update(fill, highlighted)
			obj = cw
		}
		tl := s.TopLeft()
		obj.Move(fyne.NewPos(tl.X, tl.Y))
		obj.Resize(fyne.NewSquareSize(s.Size))
		objects = append(objects, obj)
	}
	r.objects = objects
	r.rebuilds++
}

func (r *canvasRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *canvasRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.surface)
}

func (r *canvasRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
}

func (r *canvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *canvasRenderer) Destroy() {}
