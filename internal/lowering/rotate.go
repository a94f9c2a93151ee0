package lowering

import "github.com/xyproto/vc4c/internal/ir"

// RotateVector rotates the 16 lanes of src by offset lanes (up or down),
// writing dest. Grounded on the rotation cases described for the mul-ALU
// "rotate" pseudo-opcode: a rotation's input must be an accumulator and it
// may not read a register the immediately preceding instruction wrote, so
// a Nop(wait-register) always precedes a real (non-zero) rotation.
func RotateVector(w *ir.Walker, m *ir.Method, dest, src, offset ir.Value, up bool) *ir.Walker {
	// (a) A uniform (literal/same-everywhere) source is unaffected by any
	// rotation: lower to a plain move.
	if src.IsLiteral() {
		emplace(w, ir.NewMove(dest, src))
		return w
	}

	acc := ensureAccumulator(w, m, src)

	// (b) Compile-time-constant rotation amount.
	if offset.IsLiteral() {
		k := int(offset.Literal.Int()) % 16
		if !up {
			k = (16 - k) % 16
		}
		if k == 0 {
			emplace(w, ir.NewMove(dest, acc))
			return w
		}
		emplace(w, ir.NewNop(ir.DelayWaitRegister))
		small := ir.FromRotationOffset(k)
		emplace(w, ir.NewVectorRotation(dest, acc, ir.SmallImmValue(small, offset.Type)))
		return w
	}

	// (c) Offset already encoded as "rotate by accumulator r5".
	if offset.IsSmallImm() && offset.Small.Kind == ir.SmallImmRotationByAccumulator {
		emplace(w, ir.NewNop(ir.DelayWaitRegister))
		emplace(w, ir.NewVectorRotation(dest, acc, offset))
		return w
	}

	// (d) Dynamic rotation amount: move it (or 16-offset for a down
	// rotation, with a fix-up so 16-0 doesn't wrap to 16) into r5 first.
	// The fix-up is gated on offset itself being zero, not on the
	// computed difference - setting flags from 16-offset would instead
	// fire on offset==16, a value that never occurs.
	amount := offset
	if !up {
		sixteen := ir.LiteralValue(ir.IntLiteral(16), offset.Type)
		sub, _ := ir.LookupOpCode("sub")
		diff := newTemp(m, "rot.amount", offset.Type)
		emplace(w, ir.NewOperation(sub, diff, sixteen, offset))
		zero := ir.Int32Zero
		fixed := newTemp(m, "rot.amount.fixed", offset.Type)
		emplace(w, ir.NewMove(fixed, offset).WithSetFlags(ir.FlagsSet))
		emplace(w, ir.NewMove(fixed, diff).WithCondition(ir.CondZeroClear))
		emplace(w, ir.NewMove(fixed, zero).WithCondition(ir.CondZeroSet))
		amount = fixed
	}
	emplace(w, ir.NewMove(ir.RegisterValue(ir.RegReplicateAll, offset.Type), amount))
	emplace(w, ir.NewNop(ir.DelayWaitRegister))
	emplace(w, ir.NewVectorRotation(dest, acc, ir.SmallImmValue(ir.RotationByAccumulator, offset.Type)))
	return w
}

// ensureAccumulator returns a Value guaranteed to read from an accumulator
// register, inserting a move into one of the scratch accumulators if src
// is not already one.
func ensureAccumulator(w *ir.Walker, m *ir.Method, src ir.Value) ir.Value {
	if src.IsRegister() && src.Register.IsAccumulator() {
		return src
	}
	if src.IsLocal() {
		// Locals are register-allocated later; treat as already suitable
		// for an accumulator-constrained read and let allocation pin it.
		return src
	}
	tmp := newTemp(m, "rot.src", src.Type)
	emplace(w, ir.NewMove(tmp, src))
	return tmp
}
