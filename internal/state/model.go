package state

import "time"

// Point is a position on the canvas in surface-local pixels.
type Point struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func (p Point) Add(dx, dy float32) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// ShapeID identifies a shape. It is derived from the creation time in
// milliseconds and is unique on a single site.
type ShapeID int64

type Kind string

const (
	KindCircle Kind = "circle"
	KindSquare Kind = "square"
)

// Toggle returns the other kind.
func (k Kind) Toggle() Kind {
	if k == KindCircle {
		return KindSquare
	}
	return KindCircle
}

// Shape is a user placed circle or square. Pos is the center; Size is the
// diameter or side length.
type Shape struct {
	ID    ShapeID `json:"id"`
	Kind  Kind    `json:"kind"`
	Pos   Point   `json:"pos"`
	Size  float32 `json:"size"`
	Color string  `json:"color"`
}

// TopLeft is the corner the shape is drawn from.
func (s Shape) TopLeft() Point {
	return Point{X: s.Pos.X - s.Size/2, Y: s.Pos.Y - s.Size/2}
}

// Connector links two shapes by id. Its endpoints are resolved against the
// live shape list, never stored.
type Connector struct {
	ID   string  `json:"id"`
	From ShapeID `json:"from"`
	To   ShapeID `json:"to"`
}

// Line is a connector with its endpoints resolved.
type Line struct {
	ID    string
	Start Point
	End   Point
}

// Snapshot is a read-only copy of the board used for rendering and export.
type Snapshot struct {
	Shapes []Shape
	Lines  []Line
	Taken  time.Time
}

type OpType string

const (
	OpCreateShape OpType = "create_shape"
	OpSetKind     OpType = "set_kind"
	OpMoveShape   OpType = "move_shape"
	OpConnect     OpType = "connect"
)

// Op is one shared mutation of the board, broadcast to peers.
type Op struct {
	ID        string     `json:"id"`
	Type      OpType     `json:"type"`
	Site      string     `json:"site"`
	Lamport   uint64     `json:"lamport"`
	ShapeID   ShapeID    `json:"shape_id,omitempty"`
	Shape     *Shape     `json:"shape,omitempty"`
	Kind      Kind       `json:"kind,omitempty"`
	Pos       *Point     `json:"pos,omitempty"`
	Connector *Connector `json:"connector,omitempty"`
}
