package intrinsics

import (
	"testing"

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

func TestWorkDimReadsWellKnownLocal(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))

	WorkDim(w, m, dest)

	var mv *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindMove {
			mv = ins
		}
	})
	if mv == nil {
		t.Fatal("expected a move instruction")
	}
	if !mv.Decor.Has(ir.DecorBuiltinWorkDimensions) {
		t.Error("expected the move to carry DecorBuiltinWorkDimensions")
	}
	if !mv.Args[0].IsLocal() || mv.Args[0].Local.Name != "%work_dim" {
		t.Errorf("expected a read of %%work_dim, got %s", mv.Args[0])
	}
}

func TestGroupIDWithLiteralDimReadsDirectly(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	dim := ir.LiteralValue(ir.IntLiteral(1), ir.Int32)

	GroupID(w, m, dest, dim)

	var mv *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindMove {
			mv = ins
		}
	})
	if mv == nil || !mv.Args[0].IsLocal() || mv.Args[0].Local.Name != "%group_id_y" {
		t.Fatalf("expected a direct read of %%group_id_y, got %v", mv)
	}
}

func TestGroupIDWithDynamicDimBuildsDecisionTree(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	dim := ir.LocalValue(m.AddNewLocal("dim", ir.Int32))

	GroupID(w, m, dest, dim)

	xorCount, condMoveCount := 0, 0
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindOperation && ins.Op.Name == "xor" {
			xorCount++
		}
		if ins.Kind == ir.KindMove && ins.HasConditionalExecution() {
			condMoveCount++
		}
	})
	if xorCount != 3 || condMoveCount != 3 {
		t.Errorf("expected 3 xor comparisons and 3 conditional moves, got %d/%d", xorCount, condMoveCount)
	}
}

func TestGlobalSizeComposesLocalSizeAndNumGroups(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	dim := ir.LiteralValue(ir.IntLiteral(0), ir.Int32)

	GlobalSize(w, m, dest, dim)

	var mul *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindOperation && ins.Op.Name == "mul24" {
			mul = ins
		}
	})
	if mul == nil {
		t.Fatal("expected a mul24 combining local size and num groups")
	}
	if !mul.Decor.Has(ir.DecorBuiltinGlobalSize) {
		t.Error("expected the mul24 to carry DecorBuiltinGlobalSize")
	}
}
