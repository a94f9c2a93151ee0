package lowering

import "github.com/xyproto/vc4c/internal/ir"

// ExtractElement extracts lane i of container into the scalar dest by
// rotating the container down by i, which places the desired lane at
// position 0.
func ExtractElement(w *ir.Walker, m *ir.Method, dest, container ir.Value, i int) *ir.Walker {
	offset := ir.LiteralValue(ir.IntLiteral(int64(i)), ir.Int32)
	return RotateVector(w, m, dest, container, offset, false)
}

// InsertElement inserts scalar value at lane i of container (in place):
// rotate value up by i into a temporary, then conditionally move the
// temporary into container wherever the lane's element number equals i,
// tagging the conditional move with the element-insertion decoration so
// later passes recognize the partial write.
func InsertElement(w *ir.Walker, m *ir.Method, container ir.Value, value ir.Value, i int) *ir.Walker {
	rotated := newTemp(m, "insert.rotated", container.Type)
	offset := ir.LiteralValue(ir.IntLiteral(int64(i)), ir.Int32)
	RotateVector(w, m, rotated, value, offset, true)

	idx := ir.LiteralValue(ir.IntLiteral(int64(i)), ir.Int32)
	xor, _ := ir.LookupOpCode("xor")
	pred := newTemp(m, "insert.pred", ir.Int32)
	emplace(w, ir.NewOperation(xor, pred, ir.RegisterValue(ir.RegElementNumber, ir.Int32), idx).WithSetFlags(ir.FlagsSet))
	mv := ir.NewMove(container, rotated).WithCondition(ir.CondZeroSet)
	mv.WithDecoration(ir.DecorElementInsertion)
	emplace(w, mv)
	return w
}
