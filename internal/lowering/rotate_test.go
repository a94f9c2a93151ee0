package lowering

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xyproto/vc4c/internal/ir"
)

func newTestWalker(name string) (*ir.Method, *ir.Walker) {
	m := ir.NewMethod(name, ir.Int32)
	label := ir.NewLocal(name+".entry", ir.DataType{})
	b := m.AddBlock(label)
	return m, b.End()
}

func instructionKinds(b *ir.BasicBlock) []ir.Kind {
	var out []ir.Kind
	b.ForEach(func(ins *ir.Instruction) { out = append(out, ins.Kind) })
	return out
}

func TestRotateVectorLiteralSourceIsAMove(t *testing.T) {
	m, w := newTestWalker("k")
	src := ir.LiteralValue(ir.IntLiteral(7), ir.Int32)
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))

	RotateVector(w, m, dest, src, ir.LiteralValue(ir.IntLiteral(3), ir.Int32), true)

	kinds := instructionKinds(w.Block())
	if len(kinds) != 2 || kinds[1] != ir.KindMove { // [0] is the block's label
		t.Fatalf("expected label+move, got %v", kinds)
	}
}

func TestRotateVectorLiteralOffsetInsertsWaitRegisterNop(t *testing.T) {
	m, w := newTestWalker("k")
	src := ir.LocalValue(m.AddNewLocal("src", ir.Int32))
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))

	RotateVector(w, m, dest, src, ir.LiteralValue(ir.IntLiteral(3), ir.Int32), true)

	kinds := instructionKinds(w.Block())
	// label, (no move needed to reach accumulator since src is a local),
	// Nop(wait-register), VectorRotation.
	want := []ir.Kind{ir.KindBranchLabel, ir.KindNop, ir.KindVectorRotation}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("instruction sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestRotateVectorZeroOffsetCollapsesToMove(t *testing.T) {
	m, w := newTestWalker("k")
	src := ir.LocalValue(m.AddNewLocal("src", ir.Int32))
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))

	RotateVector(w, m, dest, src, ir.LiteralValue(ir.IntLiteral(0), ir.Int32), true)

	kinds := instructionKinds(w.Block())
	if len(kinds) != 2 || kinds[1] != ir.KindMove {
		t.Fatalf("expected label+move (zero rotation collapses), got %v", kinds)
	}
}

func TestRotateVectorDownNormalizesOffset(t *testing.T) {
	m, w := newTestWalker("k")
	src := ir.LocalValue(m.AddNewLocal("src", ir.Int32))
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))

	RotateVector(w, m, dest, src, ir.LiteralValue(ir.IntLiteral(3), ir.Int32), false)

	var rotation *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindVectorRotation {
			rotation = ins
		}
	})
	if rotation == nil {
		t.Fatal("expected a VectorRotation instruction")
	}
	if rotation.Offset.Small.Value != 13 { // (16-3) mod 16
		t.Errorf("expected normalized down-rotation offset 13, got %d", rotation.Offset.Small.Value)
	}
}

func TestRotateVectorDynamicDownOffsetGatesFixupOnOffsetItself(t *testing.T) {
	m, w := newTestWalker("k")
	src := ir.LocalValue(m.AddNewLocal("src", ir.Int32))
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))
	offset := ir.LocalValue(m.AddNewLocal("offset", ir.Int32))

	RotateVector(w, m, dest, src, offset, false)

	var setFlags *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.SetFlags == ir.FlagsSet && setFlags == nil {
			setFlags = ins
		}
	})
	if setFlags == nil {
		t.Fatal("expected a set-flags instruction establishing the zero-offset fix-up condition")
	}
	if len(setFlags.Args) != 1 || !setFlags.Args[0].IsLocal() || setFlags.Args[0].Local != offset.Local {
		t.Errorf("expected the set-flags instruction to test offset itself, got args %v", setFlags.Args)
	}
}
