package intrinsics

import (
	"testing"

	"github.com/xyproto/vc4c/internal/ir"
)

func newCall(m *ir.Method, dest *ir.Value, name string, args ...ir.Value) *ir.Instruction {
	return ir.NewMethodCall(dest, name, args...)
}

func TestRewriteCallMutexLockBecomesMutexLockInstruction(t *testing.T) {
	m, w := newTestWalker("k")
	call := newCall(m, nil, "vc4cl_mutex_lock")
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected mutex_lock to be handled")
	}
	var found *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindMutexLock {
			found = ins
		}
	})
	if found == nil || !found.MutexAcquire {
		t.Fatalf("expected a MutexLock(acquire=true), got %v", found)
	}
}

func TestRewriteCallSemaphoreWithLiteralIDBecomesSemaphoreAdjustment(t *testing.T) {
	m, w := newTestWalker("k")
	id := ir.LiteralValue(ir.IntLiteral(3), ir.UInt32)
	call := newCall(m, nil, "vc4cl_semaphore_increment", id)
	w.Emplace(call)

	if _, err := RewriteCall(w, m, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindSemaphoreAdjustment {
			found = ins
		}
	})
	if found == nil {
		t.Fatal("expected a SemaphoreAdjustment instruction")
	}
	if found.SemaphoreID != 3 || !found.SemaphoreIncrement {
		t.Errorf("expected semaphore 3 increment, got id=%d increment=%v", found.SemaphoreID, found.SemaphoreIncrement)
	}
}

func TestRewriteCallSemaphoreWithNonLiteralIDIsError(t *testing.T) {
	m, w := newTestWalker("k")
	id := ir.LocalValue(m.AddNewLocal("id", ir.UInt32))
	call := newCall(m, nil, "vc4cl_semaphore_decrement", id)
	w.Emplace(call)

	_, err := RewriteCall(w, m, call)
	if err == nil {
		t.Fatal("expected an error for a non-literal semaphore id")
	}
}

func TestRewriteCallElementNumberReadsRegister(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	call := newCall(m, &dest, "vc4cl_element_number")
	w.Emplace(call)

	if _, err := RewriteCall(w, m, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var mv *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindMove {
			mv = ins
		}
	})
	if mv == nil || !mv.Args[0].IsRegister() || !mv.Args[0].Register.Equal(ir.RegElementNumber) {
		t.Fatalf("expected a move reading RegElementNumber, got %v", mv)
	}
}

func TestRewriteCallSFURecipInsertsWaitSequence(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Float32))
	arg := ir.LocalValue(m.AddNewLocal("arg", ir.Float32))
	call := newCall(m, &dest, "vc4cl_recip", arg)
	w.Emplace(call)

	if _, err := RewriteCall(w, m, call); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	kinds := instructionKinds(w.Block())
	// label, move-into-sfu, nop, nop, move-out
	if len(kinds) != 5 {
		t.Fatalf("expected 5 instructions, got %d (%v)", len(kinds), kinds)
	}
	wantKinds := []ir.Kind{ir.KindBranchLabel, ir.KindMove, ir.KindNop, ir.KindNop, ir.KindMove}
	for i, k := range kinds {
		if k != wantKinds[i] {
			t.Fatalf("instruction %d: expected %v, got %v (%v)", i, wantKinds[i], k, kinds)
		}
	}
}

func TestRewriteCallBinaryOpcodeMatchesShr(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	a := ir.LocalValue(m.AddNewLocal("a", ir.UInt32))
	b := ir.LiteralValue(ir.IntLiteral(2), ir.UInt32)
	call := newCall(m, &dest, "vc4cl_shr", a, b)
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected shr to be handled")
	}
	ops := opNamesIn(w.Block())
	if len(ops) != 1 || ops[0] != "shr" {
		t.Fatalf("expected a single shr, got %v", ops)
	}
}

func TestRewriteCallUnknownNameIsUnhandled(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.UInt32))
	call := newCall(m, &dest, "printf")
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled {
		t.Fatal("expected an unrecognized call name to be left unhandled")
	}
}

func TestRewriteCallShuffleVectorIsHandled(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	source0 := ir.LocalValue(m.AddNewLocal("s0", ir.VectorOf(ir.Int32, 4)))
	mask := ir.ContainerValue([]ir.Value{
		ir.LiteralValue(ir.IntLiteral(0), ir.Int32),
		ir.LiteralValue(ir.IntLiteral(1), ir.Int32),
		ir.LiteralValue(ir.IntLiteral(2), ir.Int32),
		ir.LiteralValue(ir.IntLiteral(3), ir.Int32),
	}, ir.VectorOf(ir.Int32, 4))
	call := newCall(m, &dest, "shufflevector", source0, source0, mask)
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected shufflevector to be handled")
	}
}

func TestRewriteCallExtractElementWithLiteralIndexIsHandled(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))
	container := ir.LocalValue(m.AddNewLocal("v", ir.VectorOf(ir.Int32, 4)))
	idx := ir.LiteralValue(ir.IntLiteral(2), ir.Int32)
	call := newCall(m, &dest, "extractelement", container, idx)
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected extractelement to be handled")
	}
	kinds := instructionKinds(w.Block())
	found := false
	for _, k := range kinds {
		if k == ir.KindVectorRotation {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a rotation extracting the lane, got %v", kinds)
	}
}

func TestRewriteCallExtractElementWithDynamicIndexIsError(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.Int32))
	container := ir.LocalValue(m.AddNewLocal("v", ir.VectorOf(ir.Int32, 4)))
	idx := ir.LocalValue(m.AddNewLocal("idx", ir.Int32))
	call := newCall(m, &dest, "extractelement", container, idx)
	w.Emplace(call)

	if _, err := RewriteCall(w, m, call); err == nil {
		t.Fatal("expected an error for a non-literal extractelement index")
	}
}

func TestRewriteCallInsertElementIsHandled(t *testing.T) {
	m, w := newTestWalker("k")
	dest := ir.LocalValue(m.AddNewLocal("dest", ir.VectorOf(ir.Int32, 4)))
	container := ir.LocalValue(m.AddNewLocal("v", ir.VectorOf(ir.Int32, 4)))
	value := ir.LocalValue(m.AddNewLocal("x", ir.Int32))
	idx := ir.LiteralValue(ir.IntLiteral(1), ir.Int32)
	call := newCall(m, &dest, "insertelement", container, value, idx)
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected insertelement to be handled")
	}
}

func TestRewriteCallGetElementPtrIsHandled(t *testing.T) {
	m, w := newTestWalker("k")
	arrayType := ir.ArrayOf(ir.Int32, 8)
	ptrType := ir.PointerTo(arrayType, ir.AddressPrivate, 4)
	dest := ir.LocalValue(m.AddNewLocal("dest", ptrType))
	base := ir.LocalValue(m.AddNewLocal("base", ptrType))
	idx := ir.LiteralValue(ir.IntLiteral(3), ir.Int32)
	call := newCall(m, &dest, "getelementptr", base, idx)
	w.Emplace(call)

	handled, err := RewriteCall(w, m, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("expected getelementptr to be handled")
	}
	var add *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindOperation && ins.Op.Name == "add" {
			add = ins
		}
	})
	if add == nil || !add.Args[1].IsLiteral() || add.Args[1].Literal.Int() != 12 {
		t.Fatalf("expected a folded add offset of 12, got %v", add)
	}
}

func TestSFUFunctionNameRecognizesKnownSubstrings(t *testing.T) {
	if substr, ok := SFUFunctionName("vc4cl_rsqrt"); !ok || substr != "rsqrt" {
		t.Errorf("expected rsqrt to be recognized, got %q %v", substr, ok)
	}
	if _, ok := SFUFunctionName("vc4cl_barrier"); ok {
		t.Error("expected barrier to not be recognized as an SFU function")
	}
}
