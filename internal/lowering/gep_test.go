package lowering

import (
	"testing"

	"github.com/xyproto/vc4c/internal/ir"
)

func TestCalculateIndexFoldsConstantArrayOffset(t *testing.T) {
	m, w := newTestWalker("k")
	arrayType := ir.ArrayOf(ir.Int32, 8)
	base := ir.LocalValue(m.AddNewLocal("base", ir.PointerTo(arrayType, ir.AddressPrivate, 4)))
	dest := ir.LocalValue(m.AddNewLocal("dest", base.Type))
	idx := Index{Value: ir.LiteralValue(ir.IntLiteral(3), ir.Int32)}

	if _, err := CalculateIndex(w, m, dest, base, []Index{idx}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var add *ir.Instruction
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindOperation && ins.Op.Name == "add" {
			add = ins
		}
	})
	if add == nil {
		t.Fatal("expected an add instruction")
	}
	if !add.Args[1].IsLiteral() || add.Args[1].Literal.Int() != 96 {
		t.Errorf("expected a folded offset of 96 (3 steps over the 32-byte pointee), got %v", add.Args[1])
	}
}

func TestCalculateIndexWithRuntimeIndexEmitsMul24AndAdd(t *testing.T) {
	m, w := newTestWalker("k")
	arrayType := ir.ArrayOf(ir.Int32, 8)
	base := ir.LocalValue(m.AddNewLocal("base", ir.PointerTo(arrayType, ir.AddressPrivate, 4)))
	dest := ir.LocalValue(m.AddNewLocal("dest", base.Type))
	runtimeIdx := ir.LocalValue(m.AddNewLocal("i", ir.Int32))
	idx := Index{Value: runtimeIdx}

	if _, err := CalculateIndex(w, m, dest, base, []Index{idx}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawMul24, sawAdd bool
	w.Block().ForEach(func(ins *ir.Instruction) {
		if ins.Kind == ir.KindOperation && ins.Op.Name == "mul24" {
			sawMul24 = true
		}
		if ins.Kind == ir.KindOperation && ins.Op.Name == "add" {
			sawAdd = true
		}
	})
	if !sawMul24 || !sawAdd {
		t.Error("expected a mul24 (index*width) followed by an add")
	}
}

func TestCalculateIndexRecordsReferenceOnDerivedLocal(t *testing.T) {
	m, w := newTestWalker("k")
	arrayType := ir.ArrayOf(ir.Int32, 8)
	base := ir.LocalValue(m.AddNewLocal("base", ir.PointerTo(arrayType, ir.AddressPrivate, 4)))
	dest := ir.LocalValue(m.AddNewLocal("dest", base.Type))
	idx := Index{Value: ir.LiteralValue(ir.IntLiteral(2), ir.Int32)}

	if _, err := CalculateIndex(w, m, dest, base, []Index{idx}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Local.Reference == nil {
		t.Fatal("expected the destination local to carry a Reference")
	}
	if dest.Local.Reference.Base != base.Local || dest.Local.Reference.Index != 2 {
		t.Errorf("expected Reference{Base: base, Index: 2}, got %+v", dest.Local.Reference)
	}
}

func TestCalculateIndexStructFieldRequiresLiteralIndex(t *testing.T) {
	m, w := newTestWalker("k")
	structType := ir.StructOf([]ir.DataType{ir.Int32, ir.Float32}, 4)
	base := ir.LocalValue(m.AddNewLocal("base", ir.PointerTo(structType, ir.AddressPrivate, 4)))
	dest := ir.LocalValue(m.AddNewLocal("dest", base.Type))
	deref := Index{Value: ir.LiteralValue(ir.IntLiteral(0), ir.Int32)}
	runtimeIdx := ir.LocalValue(m.AddNewLocal("i", ir.Int32))

	_, err := CalculateIndex(w, m, dest, base, []Index{deref, {Value: runtimeIdx}})
	if err == nil {
		t.Fatal("expected an error for a non-literal struct field index")
	}
}
