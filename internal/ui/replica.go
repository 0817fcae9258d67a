package ui

import (
	"fyne.io/fyne/v2"

	"ShapeBoard/internal/state"
)

// Replica hands the board to network goroutines. Remote ops are applied on
// the Fyne main goroutine so the redraw they trigger runs there too.
type Replica struct {
	board *state.Board
}

func (c *CanvasWidget) Replica() *Replica {
	return &Replica{board: c.board}
}

func (r *Replica) Apply(op state.Op) bool {
	var changed bool
	fyne.DoAndWait(func() {
		changed = r.board.Apply(op)
	})
	return changed
}

func (r *Replica) History() []state.Op {
	return r.board.History()
}
