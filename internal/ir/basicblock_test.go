package ir

import "testing"

func TestTerminatorReturnsNilWhenBlockFallsThrough(t *testing.T) {
	m := NewMethod("k", Int32)
	b := m.AddBlock(NewLocal("k.entry", DataType{}))
	dest := LocalValue(m.AddNewLocal("x", Int32))
	b.PushBack(NewMove(dest, LiteralValue(IntLiteral(1), Int32)))

	if b.Terminator() != nil {
		t.Error("expected no terminator on a block ending in a plain move")
	}
	if !b.FallsThrough() {
		t.Error("expected FallsThrough to be true")
	}
}

func TestTerminatorRecognizesBranchAndReturn(t *testing.T) {
	m := NewMethod("k", Int32)
	b := m.AddBlock(NewLocal("k.entry", DataType{}))
	target := NewLocal("k.exit", DataType{})
	branch := NewBranch(target, CondAlways, LiteralValue(IntLiteral(0), Int32))
	b.PushBack(branch)

	if b.Terminator() != branch {
		t.Error("expected the branch to be reported as the terminator")
	}
	if b.FallsThrough() {
		t.Error("expected FallsThrough to be false when the block ends in a branch")
	}
}

func TestTerminatorOnEmptyBlockIsNil(t *testing.T) {
	m := NewMethod("k", Int32)
	b := m.AddBlock(NewLocal("k.entry", DataType{}))

	if b.Terminator() != nil {
		t.Error("expected an empty block to have no terminator")
	}
}
