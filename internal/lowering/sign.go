package lowering

import "github.com/xyproto/vc4c/internal/ir"

// MakePositive computes |x| branch-free: set flags from the sign bit
// (x >> (width-1)), then under the negative predicate compute bitwise-NOT
// then +1 (two's complement negation), else leave x unchanged via a plain
// copy.
func MakePositive(w *ir.Walker, m *ir.Method, dest, x ir.Value) *ir.Walker {
	return InvertSign(w, m, dest, x, signBitSet(w, m, x))
}

// InvertSign negates x under the supplied condition (evaluated by the
// caller via a preceding set-flags instruction) and copies it unchanged
// otherwise - the shared branch-free two's-complement pattern behind both
// MakePositive and explicit sign inversion.
func InvertSign(w *ir.Walker, m *ir.Method, dest, x ir.Value, cond ir.Condition) *ir.Walker {
	notOp, _ := ir.LookupOpCode("not")
	inverted := newTemp(m, "sign.inverted", x.Type)
	emplace(w, ir.NewOperation(notOp, inverted, x))
	addOp, _ := ir.LookupOpCode("add")
	one := ir.LiteralValue(ir.IntLiteral(1), x.Type)
	emplace(w, ir.NewOperation(addOp, dest, inverted, one).WithCondition(cond))
	emplace(w, ir.NewMove(dest, x).WithCondition(cond.Invert()))
	return w
}

// signBitSet emits the set-flags instruction testing x's sign bit and
// returns the condition under which x is negative.
func signBitSet(w *ir.Walker, m *ir.Method, x ir.Value) ir.Condition {
	shr, _ := ir.LookupOpCode("shr")
	shift := ir.LiteralValue(ir.IntLiteral(int64(x.Type.ScalarBitWidth()-1)), ir.Int32)
	sign := newTemp(m, "sign.bit", x.Type)
	emplace(w, ir.NewOperation(shr, sign, x, shift).WithSetFlags(ir.FlagsSet))
	return ir.CondZeroClear
}
