package state

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPalette is the fixed set of fill colors new shapes draw from.
var DefaultPalette = []string{
	"#FF5733",
	"#33FF57",
	"#5733FF",
	"#FF33F7",
	"#33F7FF",
	"#F7FF33",
	"#333333",
	"#666666",
	"#990000",
	"#FFFF33",
}

const (
	DefaultMinSize = 30
	DefaultMaxSize = 80
)

// Options configures a Board. Zero values fall back to the defaults.
type Options struct {
	Palette []string
	MinSize int
	MaxSize int
	Rand    *rand.Rand
	Now     func() time.Time
	Clock   *Clock
}

type activeDrag struct {
	id     ShapeID
	origin Point
}

// Board owns the shapes, the connectors and the transient interaction state
// of one canvas. All methods are safe for concurrent use; UI gestures and
// remote operations may arrive on different goroutines.
type Board struct {
	mu         sync.RWMutex
	shapes     []Shape
	connectors []Connector
	drag       *activeDrag
	pending    *ShapeID
	lastID     ShapeID

	palette []string
	minSize int
	maxSize int
	rnd     *rand.Rand
	now     func() time.Time
	clock   *Clock

	history    []Op
	seen       map[string]bool
	kindStamps map[ShapeID]stamp
	posStamps  map[ShapeID]stamp

	hooks     sync.RWMutex
	onLocalOp func(Op)
	onChange  func()

	Debug bool
}

func NewBoard(opts Options) *Board {
	b := &Board{
		palette:    opts.Palette,
		minSize:    opts.MinSize,
		maxSize:    opts.MaxSize,
		rnd:        opts.Rand,
		now:        opts.Now,
		clock:      opts.Clock,
		seen:       make(map[string]bool),
		kindStamps: make(map[ShapeID]stamp),
		posStamps:  make(map[ShapeID]stamp),
	}
	if len(b.palette) == 0 {
		b.palette = DefaultPalette
	}
	if b.minSize <= 0 {
		b.minSize = DefaultMinSize
	}
	if b.maxSize <= 0 {
		b.maxSize = DefaultMaxSize
	}
	if b.maxSize < b.minSize {
		b.maxSize = b.minSize
	}
	if b.rnd == nil {
		b.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.clock == nil {
		b.clock = NewClock()
	}
	return b
}

// SetOnLocalOp installs the receiver of every shared mutation made through
// this board. It may be called while ops are being applied.
func (b *Board) SetOnLocalOp(fn func(Op)) {
	b.hooks.Lock()
	b.onLocalOp = fn
	b.hooks.Unlock()
}

// SetOnChange installs the callback fired after any state change, local or
// remote.
func (b *Board) SetOnChange(fn func()) {
	b.hooks.Lock()
	b.onChange = fn
	b.hooks.Unlock()
}

// Site returns the id this board stamps its operations with.
func (b *Board) Site() string { return b.clock.Site() }

func (b *Board) debugf(format string, args ...any) {
	if b.Debug {
		log.Printf("[BOARD] "+format, args...)
	}
}

// CreateShape appends a new circle centered at (x, y) with a random size and
// palette color.
func (b *Board) CreateShape(x, y float32) Shape {
	b.mu.Lock()
	id := ShapeID(b.now().UnixMilli())
	if id <= b.lastID {
		id = b.lastID + 1
	}
	for b.indexOf(id) >= 0 {
		id++
	}
	b.lastID = id
	s := Shape{
		ID:    id,
		Kind:  KindCircle,
		Pos:   Point{X: x, Y: y},
		Size:  float32(b.minSize + b.rnd.Intn(b.maxSize-b.minSize+1)),
		Color: b.palette[b.rnd.Intn(len(b.palette))],
	}
	b.shapes = append(b.shapes, s)
	shape := s
	op := b.stampLocal(Op{Type: OpCreateShape, ShapeID: id, Shape: &shape})
	b.kindStamps[id] = stamp{op.Lamport, op.Site}
	b.posStamps[id] = stamp{op.Lamport, op.Site}
	b.mu.Unlock()

	b.debugf("created shape %d at (%.0f, %.0f)", id, x, y)
	b.commit(op)
	return s
}

// ToggleShape flips the kind of a shape. Toggling the shape being dragged
// cancels the drag. It reports whether the shape exists.
func (b *Board) ToggleShape(id ShapeID) bool {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return false
	}
	b.shapes[i].Kind = b.shapes[i].Kind.Toggle()
	if b.drag != nil && b.drag.id == id {
		b.drag = nil
	}
	op := b.stampLocal(Op{Type: OpSetKind, ShapeID: id, Kind: b.shapes[i].Kind})
	b.kindStamps[id] = stamp{op.Lamport, op.Site}
	b.mu.Unlock()

	b.debugf("toggled shape %d to %s", id, op.Kind)
	b.commit(op)
	return true
}

// BeginDrag starts moving a shape. Only circles can be dragged.
func (b *Board) BeginDrag(id ShapeID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 || b.shapes[i].Kind != KindCircle {
		return false
	}
	b.drag = &activeDrag{id: id, origin: b.shapes[i].Pos}
	return true
}

// DragMove advances the dragged shape by a relative delta.
func (b *Board) DragMove(dx, dy float32) bool {
	b.mu.Lock()
	if b.drag == nil {
		b.mu.Unlock()
		return false
	}
	i := b.indexOf(b.drag.id)
	if i < 0 {
		b.drag = nil
		b.mu.Unlock()
		return false
	}
	b.shapes[i].Pos = b.shapes[i].Pos.Add(dx, dy)
	b.mu.Unlock()

	b.commit()
	return true
}

// EndDrag leaves the drag without a final positional commit beyond the last
// move. Peers are told the position the shape ended at.
func (b *Board) EndDrag() {
	b.mu.Lock()
	if b.drag == nil {
		b.mu.Unlock()
		return
	}
	d := b.drag
	b.drag = nil
	i := b.indexOf(d.id)
	if i < 0 || b.shapes[i].Pos == d.origin {
		b.mu.Unlock()
		return
	}
	op := b.moveOp(d.id, b.shapes[i].Pos)
	b.mu.Unlock()

	b.commit(op)
}

// Drop commits the dragged shape to an absolute surface position and ends
// the drag. Connectors follow automatically since they reference shape ids.
func (b *Board) Drop(x, y float32) bool {
	b.mu.Lock()
	if b.drag == nil {
		b.mu.Unlock()
		return false
	}
	d := b.drag
	b.drag = nil
	i := b.indexOf(d.id)
	if i < 0 {
		b.mu.Unlock()
		return false
	}
	pos := Point{X: x, Y: y}
	b.shapes[i].Pos = pos
	op := b.moveOp(d.id, pos)
	b.mu.Unlock()

	b.debugf("dropped shape %d at (%.0f, %.0f)", d.id, x, y)
	b.commit(op)
	return true
}

// ClickShape advances the connection state machine. The first click records
// a pending source; the second creates a connector from the source to the
// clicked shape when both still exist, and always clears the source.
func (b *Board) ClickShape(id ShapeID) (Connector, bool) {
	b.mu.Lock()
	if b.pending == nil {
		src := id
		b.pending = &src
		b.mu.Unlock()
		b.commit()
		return Connector{}, false
	}
	src := *b.pending
	b.pending = nil
	if b.indexOf(src) < 0 || b.indexOf(id) < 0 {
		b.mu.Unlock()
		b.debugf("connection %d-%d skipped: shape missing", src, id)
		b.commit()
		return Connector{}, false
	}
	c := Connector{ID: fmt.Sprintf("%d-%d", src, id), From: src, To: id}
	b.connectors = append(b.connectors, c)
	conn := c
	op := b.stampLocal(Op{Type: OpConnect, Connector: &conn})
	b.mu.Unlock()

	b.debugf("connected %s", c.ID)
	b.commit(op)
	return c, true
}

func (b *Board) Shape(id ShapeID) (Shape, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(id)
	if i < 0 {
		return Shape{}, false
	}
	return b.shapes[i], true
}

// Shapes returns a copy of the shapes in creation order.
func (b *Board) Shapes() []Shape {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Shape, len(b.shapes))
	copy(out, b.shapes)
	return out
}

func (b *Board) Connectors() []Connector {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Connector, len(b.connectors))
	copy(out, b.connectors)
	return out
}

// Dragging returns the id of the shape being dragged.
func (b *Board) Dragging() (ShapeID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.drag == nil {
		return 0, false
	}
	return b.drag.id, true
}

// PendingSource returns the id waiting for a second click.
func (b *Board) PendingSource() (ShapeID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.pending == nil {
		return 0, false
	}
	return *b.pending, true
}

// Endpoints resolves a connector against the current shape positions. ok is
// false when either shape is gone.
func (b *Board) Endpoints(c Connector) (start, end Point, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.endpoints(c)
}

func (b *Board) endpoints(c Connector) (start, end Point, ok bool) {
	from, to := b.indexOf(c.From), b.indexOf(c.To)
	if from < 0 || to < 0 {
		return Point{}, Point{}, false
	}
	return b.shapes[from].Pos, b.shapes[to].Pos, true
}

// Snapshot copies the board with connector endpoints resolved.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := Snapshot{
		Shapes: make([]Shape, len(b.shapes)),
		Lines:  make([]Line, 0, len(b.connectors)),
		Taken:  b.now(),
	}
	copy(snap.Shapes, b.shapes)
	for _, c := range b.connectors {
		if start, end, ok := b.endpoints(c); ok {
			snap.Lines = append(snap.Lines, Line{ID: c.ID, Start: start, End: end})
		}
	}
	return snap
}

func (b *Board) indexOf(id ShapeID) int {
	for i := range b.shapes {
		if b.shapes[i].ID == id {
			return i
		}
	}
	return -1
}

// moveOp must be called with mu held.
func (b *Board) moveOp(id ShapeID, pos Point) Op {
	p := pos
	op := b.stampLocal(Op{Type: OpMoveShape, ShapeID: id, Pos: &p})
	b.posStamps[id] = stamp{op.Lamport, op.Site}
	return op
}

// stampLocal must be called with mu held.
func (b *Board) stampLocal(op Op) Op {
	op.ID = uuid.NewString()
	op.Site = b.clock.Site()
	op.Lamport = b.clock.Tick()
	b.seen[op.ID] = true
	b.history = append(b.history, op)
	return op
}

// commit runs the callbacks outside the lock.
func (b *Board) commit(ops ...Op) {
	b.hooks.RLock()
	onLocalOp, onChange := b.onLocalOp, b.onChange
	b.hooks.RUnlock()

	if onLocalOp != nil {
		for _, op := range ops {
			onLocalOp(op)
		}
	}
	if onChange != nil {
		onChange()
	}
}
