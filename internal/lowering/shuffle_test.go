package lowering

import (
	"testing"

	"github.com/xyproto/vc4c/internal/ir"
)

func vecLiteral(vals ...int64) ir.Value {
	t := ir.VectorOf(ir.Int32, len(vals))
	elems := make([]ir.Value, len(vals))
	for i, v := range vals {
		elems[i] = ir.LiteralValue(ir.IntLiteral(v), ir.Int32)
	}
	return ir.ContainerValue(elems, t)
}

func TestShuffleUndefinedMaskIsError(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	source0 := ir.LocalValue(m.AddNewLocal("s0", ir.VectorOf(ir.Int32, 4)))

	_, err := Shuffle(w, m, dest, source0, source0, ir.Undefined(ir.VectorOf(ir.Int32, 4)))
	if err == nil {
		t.Fatal("expected an error for an undefined mask")
	}
}

func TestShuffleAscendingIdentityCollapsesToMove(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	source0 := ir.LocalValue(m.AddNewLocal("s0", ir.VectorOf(ir.Int32, 4)))
	mask := vecLiteral(0, 1, 2, 3)

	if _, err := Shuffle(w, m, dest, source0, source0, mask); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := instructionKinds(w.Block())
	if len(kinds) != 2 || kinds[1] != ir.KindMove {
		t.Fatalf("expected label+move, got %v", kinds)
	}
}

func TestShuffleAllSameMaskReplicates(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	source0 := ir.LocalValue(m.AddNewLocal("s0", ir.VectorOf(ir.Int32, 4)))
	mask := vecLiteral(2, 2, 2, 2)

	if _, err := Shuffle(w, m, dest, source0, source0, mask); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := instructionKinds(w.Block())
	found := false
	for _, k := range kinds {
		if k == ir.KindVectorRotation || k == ir.KindMove {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an extract (rotation/move) + replicate sequence, got %v", kinds)
	}
}

func TestShuffleNonConstantMaskIsError(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	source0 := ir.LocalValue(m.AddNewLocal("s0", ir.VectorOf(ir.Int32, 4)))
	mask := ir.LocalValue(m.AddNewLocal("mask", ir.VectorOf(ir.Int32, 4)))

	_, err := Shuffle(w, m, dest, source0, source0, mask)
	if err == nil {
		t.Fatal("expected an error for a non-constant mask")
	}
}
