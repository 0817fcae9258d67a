package state

import "log"

// Apply merges an operation received from another site and reports whether
// it changed the board. Duplicate operations are ignored. Kind and position
// are last-writer-wins registers per shape, ordered by (lamport, site).
func (b *Board) Apply(op Op) bool {
	b.mu.Lock()
	if op.ID == "" || b.seen[op.ID] {
		b.mu.Unlock()
		return false
	}
	b.seen[op.ID] = true
	b.clock.Observe(op.Lamport)
	st := stamp{lamport: op.Lamport, site: op.Site}

	changed := false
	switch op.Type {
	case OpCreateShape:
		changed = b.applyCreate(op, st)
	case OpSetKind:
		changed = b.applyKind(op, st)
	case OpMoveShape:
		changed = b.applyMove(op, st)
	case OpConnect:
		if op.Connector != nil {
			b.connectors = append(b.connectors, *op.Connector)
			changed = true
		}
	default:
		log.Printf("[CRDT] Ignoring op %s of unknown type %q", op.ID, op.Type)
	}
	if changed {
		b.history = append(b.history, op)
	}
	b.mu.Unlock()

	if changed {
		b.debugf("applied remote %s from site %s", op.Type, op.Site)
		b.commit()
	}
	return changed
}

func (b *Board) applyCreate(op Op, st stamp) bool {
	if op.Shape == nil || b.indexOf(op.Shape.ID) >= 0 {
		return false
	}
	b.shapes = append(b.shapes, *op.Shape)
	b.kindStamps[op.Shape.ID] = st
	b.posStamps[op.Shape.ID] = st
	return true
}

func (b *Board) applyKind(op Op, st stamp) bool {
	i := b.indexOf(op.ShapeID)
	if i < 0 || (op.Kind != KindCircle && op.Kind != KindSquare) {
		return false
	}
	if !st.after(b.kindStamps[op.ShapeID]) {
		return false
	}
	b.kindStamps[op.ShapeID] = st
	b.shapes[i].Kind = op.Kind
	if op.Kind != KindCircle && b.drag != nil && b.drag.id == op.ShapeID {
		b.drag = nil
	}
	return true
}

func (b *Board) applyMove(op Op, st stamp) bool {
	i := b.indexOf(op.ShapeID)
	if i < 0 || op.Pos == nil {
		return false
	}
	if !st.after(b.posStamps[op.ShapeID]) {
		return false
	}
	b.posStamps[op.ShapeID] = st
	b.shapes[i].Pos = *op.Pos
	return true
}

// History returns every operation that shaped the board, in the order it
// was recorded. Replaying it on an empty board reproduces the shared state.
func (b *Board) History() []Op {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Op, len(b.history))
	copy(out, b.history)
	return out
}
