package state

import "testing"

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 50}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{X: 0, Y: 0}, true},
		{Point{X: 100, Y: 50}, true},
		{Point{X: 50, Y: 25}, true},
		{Point{X: -1, Y: 10}, false},
		{Point{X: 10, Y: 51}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestSnapshotBounds(t *testing.T) {
	snap := Snapshot{Shapes: []Shape{
		{Pos: Point{X: 50, Y: 50}, Size: 20},
		{Pos: Point{X: 200, Y: 100}, Size: 40},
	}}
	got := snap.Bounds(5)
	want := Rect{X: 35, Y: 35, Width: 190, Height: 90}
	if got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
	if !(Snapshot{}).Bounds(5).Empty() {
		t.Error("empty snapshot has bounds")
	}
}
