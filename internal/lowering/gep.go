package lowering

import (
	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
)

// Index is one step of a pointer/array/struct index chain: Value is the
// index operand (may be a runtime value for array/pointer steps, must be
// a compile-time literal for struct steps).
type Index struct {
	Value ir.Value
}

// CalculateIndex walks a chain of indices into base (a pointer/array/
// struct typed value), accumulating a byte offset and finally emitting
// `dest = add base, offset`. The resulting local's Reference records the
// base local and the first index, so later passes can recover which
// parameter the derived pointer aliases.
func CalculateIndex(w *ir.Walker, m *ir.Method, dest ir.Value, base ir.Value, indices []Index) (*ir.Walker, error) {
	offset := ir.LiteralValue(ir.IntLiteral(0), ir.Int32)
	t := base.Type
	add, _ := ir.LookupOpCode("add")
	mul, _ := ir.LookupOpCode("mul24")

	for i, idx := range indices {
		switch t.Kind {
		case ir.KindPointer, ir.KindArray:
			elem := t.ElementType()
			width := ir.LiteralValue(ir.IntLiteral(int64(elem.PhysicalWidth())), ir.Int32)
			if offset.IsLiteral() && idx.Value.IsLiteral() {
				offset = ir.LiteralValue(ir.IntLiteral(offset.Literal.Int()+idx.Value.Literal.Int()*int64(elem.PhysicalWidth())), ir.Int32)
			} else {
				step := newTemp(m, "gep.step", ir.Int32)
				emplace(w, ir.NewOperation(mul, step, idx.Value, width))
				sum := newTemp(m, "gep.offset", ir.Int32)
				emplace(w, ir.NewOperation(add, sum, offset, step))
				offset = sum
			}
			t = elem
		case ir.KindStruct:
			if !idx.Value.IsLiteral() {
				return w, cerror.New(cerror.StepOptimizer, "struct index must be a compile-time literal").WithOffending(idx.Value.String())
			}
			fieldIndex := int(idx.Value.Literal.Int())
			byteOffset := t.StructOffsetOf(fieldIndex)
			if offset.IsLiteral() {
				offset = ir.LiteralValue(ir.IntLiteral(offset.Literal.Int()+int64(byteOffset)), ir.Int32)
			} else {
				sum := newTemp(m, "gep.offset", ir.Int32)
				lit := ir.LiteralValue(ir.IntLiteral(int64(byteOffset)), ir.Int32)
				emplace(w, ir.NewOperation(add, sum, offset, lit))
				offset = sum
			}
			if fieldIndex < len(t.StructElems) {
				t = t.StructElems[fieldIndex]
			}
		default:
			return w, cerror.New(cerror.StepOptimizer, "index chain applied to non-aggregate type").WithOffending(t.String())
		}
		_ = i
	}

	emplace(w, ir.NewOperation(add, dest, base, offset))
	if dest.IsLocal() && base.IsLocal() {
		firstIndex := ir.AnyElement
		if len(indices) > 0 && indices[0].Value.IsLiteral() {
			firstIndex = int(indices[0].Value.Literal.Int())
		}
		dest.Local.Reference = &ir.Reference{Base: base.Local, Index: firstIndex}
	}
	return w, nil
}
