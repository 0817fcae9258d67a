package state

// Rect is an axis aligned area on the canvas.
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

func (r Rect) Empty() bool {
	return r.Width <= 0 && r.Height <= 0
}

// Union returns the smallest rect covering both.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	minX, minY := min(r.X, o.X), min(r.Y, o.Y)
	maxX := max(r.X+r.Width, o.X+o.Width)
	maxY := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Bounds is the square a shape occupies.
func (s Shape) Bounds() Rect {
	tl := s.TopLeft()
	return Rect{X: tl.X, Y: tl.Y, Width: s.Size, Height: s.Size}
}

// Bounds covers every shape in the snapshot plus padding on each side.
// Lines always end at shape centers, so they never extend it.
func (s Snapshot) Bounds(padding float32) Rect {
	var r Rect
	for _, sh := range s.Shapes {
		r = r.Union(sh.Bounds())
	}
	if r.Empty() {
		return r
	}
	return Rect{
		X:      r.X - padding,
		Y:      r.Y - padding,
		Width:  r.Width + 2*padding,
		Height: r.Height + 2*padding,
	}
}
