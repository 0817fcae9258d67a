package ui

import (
	"math/rand"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"

	"ShapeBoard/internal/state"
)

func newTestSurface(t *testing.T) (*CanvasWidget, *canvasRenderer) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	now := time.UnixMilli(1_000)
	b := state.NewBoard(state.Options{
		Rand: rand.New(rand.NewSource(7)),
		Now:  func() time.Time { return now },
	})
	surface := NewCanvasWidget(b)
	surface.Resize(fyne.NewSize(400, 300))
	r := test.WidgetRenderer(surface).(*canvasRenderer)
	return surface, r
}

func countLines(r *canvasRenderer) int {
	n := 0
	for _, o := range r.Objects() {
		if _, ok := o.(*canvas.Line); ok {
			n++
		}
	}
	return n
}

func TestDoubleTapCreatesCircle(t *testing.T) {
	surface, r := newTestSurface(t)
	surface.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(120, 80)})

	shapes := surface.Board().Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shape count = %d", len(shapes))
	}
	s := shapes[0]
	if s.Pos != (state.Point{X: 120, Y: 80}) || s.Kind != state.KindCircle {
		t.Errorf("shape = %+v", s)
	}
	cw, ok := r.circles[s.ID]
	if !ok {
		t.Fatal("no circle widget rendered")
	}
	if want := fyne.NewPos(120-s.Size/2, 80-s.Size/2); cw.Position() != want {
		t.Errorf("widget at %v, want %v", cw.Position(), want)
	}
	if cw.Size() != fyne.NewSquareSize(s.Size) {
		t.Errorf("widget size %v", cw.Size())
	}
}

func TestSecondaryTapAndDoubleTapToggle(t *testing.T) {
	surface, r := newTestSurface(t)
	s := surface.Board().CreateShape(50, 50)

	r.circles[s.ID].TappedSecondary(&fyne.PointEvent{})
	sq, ok := r.squares[s.ID]
	if !ok {
		t.Fatal("secondary tap did not turn the circle into a square")
	}
	if _, still := r.circles[s.ID]; still {
		t.Error("circle widget kept after toggle")
	}

	sq.DoubleTapped(&fyne.PointEvent{})
	if _, ok := r.circles[s.ID]; !ok {
		t.Error("double tap did not turn the square back into a circle")
	}
	got, _ := surface.Board().Shape(s.ID)
	if got != s {
		t.Errorf("round trip changed shape: %+v -> %+v", s, got)
	}
}

func TestSurfaceSwallowsSecondaryTap(t *testing.T) {
	surface, _ := newTestSurface(t)
	surface.TappedSecondary(&fyne.PointEvent{Position: fyne.NewPos(10, 10)})
	if n := len(surface.Board().Shapes()); n != 0 {
		t.Errorf("secondary tap on surface created %d shapes", n)
	}
}

func TestDragThenDropOnSurface(t *testing.T) {
	surface, r := newTestSurface(t)
	s := surface.Board().CreateShape(100, 100)
	cw := r.circles[s.ID]
	center := fyne.NewPos(s.Size/2, s.Size/2)

	cw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: center}, Dragged: fyne.NewDelta(10, 0)})
	if id, ok := surface.Board().Dragging(); !ok || id != s.ID {
		t.Fatal("first drag event did not start a drag")
	}
	moved, _ := surface.Board().Shape(s.ID)
	if moved.Pos != (state.Point{X: 110, Y: 100}) {
		t.Errorf("after move pos = %v", moved.Pos)
	}

	cw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: center}, Dragged: fyne.NewDelta(5, 5)})
	cw.DragEnd()

	got, _ := surface.Board().Shape(s.ID)
	if got.Pos != (state.Point{X: 110, Y: 100}) {
		t.Errorf("dropped at %v, want pointer position (110, 100)", got.Pos)
	}
	if _, ok := surface.Board().Dragging(); ok {
		t.Error("drag still active after drop")
	}
}

func TestDragEndOffSurfaceKeepsLastMove(t *testing.T) {
	surface, r := newTestSurface(t)
	s := surface.Board().CreateShape(100, 100)
	cw := r.circles[s.ID]

	far := fyne.NewPos(2000, 2000)
	cw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: far}, Dragged: fyne.NewDelta(3, 4)})
	cw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: far}, Dragged: fyne.NewDelta(-1, 1)})
	cw.DragEnd()

	got, _ := surface.Board().Shape(s.ID)
	if got.Pos != (state.Point{X: 102, Y: 105}) {
		t.Errorf("pos = %v, want start plus deltas", got.Pos)
	}
}

func TestSquareIgnoresDrag(t *testing.T) {
	surface, r := newTestSurface(t)
	s := surface.Board().CreateShape(100, 100)
	surface.Board().ToggleShape(s.ID)
	if _, ok := r.squares[s.ID]; !ok {
		t.Fatal("square not rendered")
	}
	if _, ok := interface{}(r.squares[s.ID]).(fyne.Draggable); ok {
		t.Error("square widget is draggable")
	}
}

func TestClickingTwoShapesDrawsConnector(t *testing.T) {
	surface, r := newTestSurface(t)
	a := surface.Board().CreateShape(20, 20)
	b := surface.Board().CreateShape(200, 150)
	surface.Board().ToggleShape(b.ID)

	r.circles[a.ID].Tapped(&fyne.PointEvent{})
	if r.circles[a.ID].disc.StrokeWidth == 0 {
		t.Error("pending source not highlighted")
	}
	r.squares[b.ID].Tapped(&fyne.PointEvent{})

	if n := countLines(r); n != 1 {
		t.Fatalf("line count = %d", n)
	}
	for _, o := range r.Objects() {
		if l, ok := o.(*canvas.Line); ok {
			if l.Position1 != fyne.NewPos(20, 20) || l.Position2 != fyne.NewPos(200, 150) {
				t.Errorf("line from %v to %v", l.Position1, l.Position2)
			}
		}
	}
	if r.circles[a.ID].disc.StrokeWidth != 0 {
		t.Error("highlight kept after connection")
	}
}

func TestEachGestureRebuildsOnce(t *testing.T) {
	surface, r := newTestSurface(t)

	before := r.rebuilds
	surface.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(100, 100)})
	if got := r.rebuilds - before; got != 1 {
		t.Errorf("double tap rebuilt %d times", got)
	}
	s := surface.Board().Shapes()[0]
	cw := r.circles[s.ID]

	steps := []struct {
		name string
		do   func()
	}{
		{"tap", func() { cw.Tapped(&fyne.PointEvent{}) }},
		{"drag", func() {
			cw.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(5, 5)}, Dragged: fyne.NewDelta(4, 0)})
		}},
		{"drop", cw.DragEnd},
		{"secondary tap", func() { cw.TappedSecondary(&fyne.PointEvent{}) }},
	}
	for _, step := range steps {
		before = r.rebuilds
		step.do()
		if got := r.rebuilds - before; got != 1 {
			t.Errorf("%s rebuilt %d times", step.name, got)
		}
	}

	before = r.rebuilds
	r.squares[s.ID].DoubleTapped(&fyne.PointEvent{})
	if got := r.rebuilds - before; got != 1 {
		t.Errorf("square double tap rebuilt %d times", got)
	}
}

func TestStatusFromGoroutineAfterWindowBuilt(t *testing.T) {
	a := test.NewApp()
	t.Cleanup(a.Quit)
	surface := NewCanvasWidget(state.NewBoard(state.Options{}))
	win := NewMainWindow(a, "board", fyne.NewSize(400, 300), "shapeboard://127.0.0.1:8080", surface)
	t.Cleanup(win.Close)

	done := make(chan struct{})
	go func() {
		defer close(done)
		surface.SetStatus("Connected to host")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("status update never returned")
	}
	if got := surface.StatusBar().Text; got != "Connected to host" {
		t.Errorf("status = %q", got)
	}
}

func TestReplicaApplyRedrawsSurface(t *testing.T) {
	surface, r := newTestSurface(t)

	remote := state.NewBoard(state.Options{Now: func() time.Time { return time.UnixMilli(5_000) }})
	s := remote.CreateShape(60, 40)
	history := remote.History()

	replica := surface.Replica()
	done := make(chan bool)
	go func() {
		done <- replica.Apply(history[0])
	}()
	if !<-done {
		t.Fatal("remote create not applied")
	}
	if _, ok := r.circles[s.ID]; !ok {
		t.Error("remote shape not drawn")
	}
	if n := len(replica.History()); n != 1 {
		t.Errorf("replica history = %d ops", n)
	}
}
