package ir

// Walker is a cursor into a BasicBlock's instruction list that survives
// insertion and erasure anywhere in the block - the instruction it points
// at is tracked by pointer identity, not by a slice index, so a pass that
// holds several Walkers over the same block never has to re-derive them
// after another pass mutates it. A nil current instruction means the
// cursor sits at the block's end.
type Walker struct {
	block *BasicBlock
	ins   *Instruction
}

// Has reports whether the cursor is positioned at a real instruction.
func (w *Walker) Has() bool { return w.ins != nil }

// Get returns the instruction the cursor currently points at, or nil at
// the end of the block.
func (w *Walker) Get() *Instruction { return w.ins }

// Block returns the block this cursor walks.
func (w *Walker) Block() *BasicBlock { return w.block }

// Emplace inserts ins immediately before the cursor's current position
// and moves the cursor onto it, so a chain of bare Emplace calls inserts
// instructions in reverse order; Emplace followed by NextInBlock keeps
// them in the order they were given.
func (w *Walker) Emplace(ins *Instruction) *Walker {
	var prev *Instruction
	if w.ins != nil {
		prev = w.ins.prev
	} else {
		prev = w.block.last
	}
	w.block.link(ins, prev, w.ins)
	w.ins = ins
	return w
}

// Erase removes the current instruction and advances the cursor to the
// one that follows it. Erasing at the end of the block is a no-op.
func (w *Walker) Erase() *Walker {
	old := w.ins
	if old == nil {
		return w
	}
	next := old.next
	w.block.unlink(old)
	w.ins = next
	return w
}

// Reset replaces the current instruction's identity in place with ins,
// preserving its position: equivalent to Erase followed by Emplace but
// without disturbing neighboring instructions twice.
func (w *Walker) Reset(ins *Instruction) *Walker {
	old := w.ins
	if old == nil {
		return w.Emplace(ins)
	}
	prev, next := old.prev, old.next
	w.block.unlink(old)
	w.block.link(ins, prev, next)
	w.ins = ins
	return w
}

// NextInBlock advances the cursor by one instruction without crossing a
// block boundary; at the last instruction it becomes an end-of-block
// cursor (Has() == false).
func (w *Walker) NextInBlock() *Walker {
	if w.ins != nil {
		w.ins = w.ins.next
	}
	return w
}

// PreviousInBlock moves the cursor back by one instruction. Stepping back
// from end-of-block lands on the block's last instruction.
func (w *Walker) PreviousInBlock() *Walker {
	if w.ins == nil {
		w.ins = w.block.last
	} else {
		w.ins = w.ins.prev
	}
	return w
}

// Next advances the cursor, following the method's block order onto the
// next block's first instruction once the current block is exhausted.
// Returns false once there is no further block to move into.
func (w *Walker) Next() bool {
	if w.ins != nil {
		w.ins = w.ins.next
		if w.ins != nil {
			return true
		}
	}
	for nb := w.block.nextBlock; nb != nil; nb = nb.nextBlock {
		if nb.first != nil {
			w.block = nb
			w.ins = nb.first
			return true
		}
	}
	return false
}

// AtEndOfBlock reports whether the cursor has run off the end of its
// current block (regardless of whether further blocks follow).
func (w *Walker) AtEndOfBlock() bool { return w.ins == nil }
