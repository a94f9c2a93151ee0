package ir

// BasicBlock is a linear run of instructions with a single entry label and
// a single set of terminating branches/return. Instructions are held in an
// intrusive doubly-linked list rather than a slice: inserting or erasing an
// instruction elsewhere in the method must never invalidate a cursor
// another pass is holding on this block, which a slice index would.
type BasicBlock struct {
	Label *Local

	method      *Method
	first, last *Instruction
	size        int

	// nextBlock links blocks in method layout order, so a Walker can step
	// across a block boundary without the caller re-deriving it from Method.
	nextBlock *BasicBlock
}

// NewBasicBlock creates an empty block under the given label. The label
// itself is emitted as the block's first instruction by Method.AddBlock.
func NewBasicBlock(label *Local) *BasicBlock {
	return &BasicBlock{Label: label}
}

// Empty reports whether the block holds no instructions (not even its own
// label, which is normally present as the first entry).
func (b *BasicBlock) Empty() bool { return b.first == nil }

// Size returns the number of instructions, including the label and any
// terminating branch/return.
func (b *BasicBlock) Size() int { return b.size }

// First / Last expose the boundary instructions for callers that want to
// start a Walker without going through begin()/end().
func (b *BasicBlock) First() *Instruction { return b.first }
func (b *BasicBlock) Last() *Instruction  { return b.last }

// link wires ins between prev (nil for new-first) and next (nil for
// new-last) and records use-def edges for every local it touches.
func (b *BasicBlock) link(ins, prev, next *Instruction) {
	ins.block = b
	ins.prev = prev
	ins.next = next
	if prev != nil {
		prev.next = ins
	} else {
		b.first = ins
	}
	if next != nil {
		next.prev = ins
	} else {
		b.last = ins
	}
	b.size++
	for local, role := range ins.UsedLocals() {
		local.addUser(ins, role)
	}
}

// unlink removes ins from the list and drops its use-def edges. Does not
// clear ins.block/prev/next, so an Erase()'d instruction remains briefly
// inspectable by the caller that just removed it.
func (b *BasicBlock) unlink(ins *Instruction) {
	if ins.prev != nil {
		ins.prev.next = ins.next
	} else {
		b.first = ins.next
	}
	if ins.next != nil {
		ins.next.prev = ins.prev
	} else {
		b.last = ins.prev
	}
	b.size--
	for local, role := range ins.UsedLocals() {
		local.removeUser(ins, role)
	}
}

// PushBack appends ins as the new last instruction of the block.
func (b *BasicBlock) PushBack(ins *Instruction) *Instruction {
	b.link(ins, b.last, nil)
	return ins
}

// Begin returns a Walker positioned at the first instruction.
func (b *BasicBlock) Begin() *Walker { return &Walker{block: b, ins: b.first} }

// End returns a Walker positioned one-past-the-last instruction (ins ==
// nil), matching the usual half-open iteration idiom.
func (b *BasicBlock) End() *Walker { return &Walker{block: b, ins: nil} }

// Terminator returns the block's final instruction if it is a Branch or
// Return, or nil if the block falls through.
func (b *BasicBlock) Terminator() *Instruction {
	if b.last == nil {
		return nil
	}
	switch b.last.Kind {
	case KindBranch, KindReturn:
		return b.last
	default:
		return nil
	}
}

// FallsThrough reports whether control can reach the next block in method
// order without an explicit branch.
func (b *BasicBlock) FallsThrough() bool { return b.Terminator() == nil }

// ForEach visits every instruction from first to last in order. fn may
// erase the current instruction (via a Walker obtained separately) but
// must not otherwise mutate the block while ForEach is iterating.
func (b *BasicBlock) ForEach(fn func(*Instruction)) {
	for ins := b.first; ins != nil; {
		next := ins.next
		fn(ins)
		ins = next
	}
}
