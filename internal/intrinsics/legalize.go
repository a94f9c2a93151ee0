package intrinsics

import (
	"math"
	"math/bits"

	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
	"github.com/xyproto/vc4c/internal/lowering"
)

// reciprocalConstant is the empirical scale factor used when deriving a
// constant-reciprocal multiply for division by a fixed divisor.
const reciprocalConstant = 16100

// LegalizeOperation rewrites a single abstract Operation instruction
// (mul, udiv, urem, sdiv, srem, fdiv, trunc, fptrunc, ashr, lshr, sitofp,
// uitofp, fptosi, fptoui, sext, zext) in place at the walker's current
// position into native opcodes and/or a multi-instruction sequence.
// Returns handled=false for opcodes this pass does not recognize (i.e.
// already-native hardware opcodes), which the caller leaves untouched.
func LegalizeOperation(w *ir.Walker, m *ir.Method, ins *ir.Instruction) (handled bool, err error) {
	dest := *ins.Output
	switch ins.Op.Name {
	case "mul":
		w.Erase()
		lowerMul(w, m, dest, ins.Args[0], ins.Args[1], dest.Type.ElementType().SignedHint)
		return true, nil
	case "udiv":
		w.Erase()
		return true, lowerUDiv(w, m, dest, ins.Args[0], ins.Args[1], false)
	case "urem":
		w.Erase()
		return true, lowerUDiv(w, m, dest, ins.Args[0], ins.Args[1], true)
	case "sdiv":
		w.Erase()
		return true, lowerSDiv(w, m, dest, ins.Args[0], ins.Args[1], false)
	case "srem":
		w.Erase()
		return true, lowerSDiv(w, m, dest, ins.Args[0], ins.Args[1], true)
	case "fdiv":
		w.Erase()
		lowerFDiv(w, m, dest, ins.Args[0], ins.Args[1], ins.Decor)
		return true, nil
	case "trunc":
		w.Erase()
		lowering.TruncateToWriterWidth(w, dest, ins.Args[0], dest.Type.ScalarBitWidth(), dest.Type.SignedHint, ins.Decor.Has(ir.DecorSaturatedConversion))
		return true, nil
	case "fptrunc":
		w.Erase()
		emplace(w, ir.NewMove(dest, ins.Args[0]).WithPack(ir.PackInt32ToShortSaturate))
		return true, nil
	case "ashr":
		op, _ := ir.LookupOpCode("asr")
		w.Reset(ir.NewOperation(op, dest, ins.Args...).CopyExtrasFrom(ins))
		return true, nil
	case "lshr":
		op, _ := ir.LookupOpCode("shr")
		w.Reset(ir.NewOperation(op, dest, ins.Args...).CopyExtrasFrom(ins))
		return true, nil
	case "sitofp":
		op, _ := ir.LookupOpCode("itof")
		w.Reset(ir.NewOperation(op, dest, ins.Args[0]).CopyExtrasFrom(ins))
		return true, nil
	case "uitofp":
		w.Erase()
		lowerUIToFP(w, m, dest, ins.Args[0])
		return true, nil
	case "fptosi":
		op, _ := ir.LookupOpCode("ftoi")
		w.Reset(ir.NewOperation(op, dest, ins.Args[0]).CopyExtrasFrom(ins))
		return true, nil
	case "fptoui":
		op, _ := ir.LookupOpCode("ftoi")
		w.Reset(ir.NewOperation(op, dest, ins.Args[0]).CopyExtrasFrom(ins))
		return true, nil
	case "sext":
		w.Erase()
		lowering.SignExtend(w, m, dest, ins.Args[0], ins.Args[0].Type.ScalarBitWidth())
		return true, nil
	case "zext":
		w.Erase()
		lowering.ZeroExtend(w, m, dest, ins.Args[0], ins.Args[0].Type.ScalarBitWidth())
		return true, nil
	default:
		return false, nil
	}
}

// lowerMul implements the multiply legalization: literal folding, shift
// for power-of-two constants, the native 24-bit multiplier when both
// operands fit, and otherwise the 16-bit half-split algorithm. Signed
// multiplication runs the unsigned routine on the absolute values of both
// operands and conditionally inverts the result under the XOR of their
// signs.
func lowerMul(w *ir.Walker, m *ir.Method, dest, a, b ir.Value, signed bool) {
	if a.IsLiteral() && b.IsLiteral() {
		emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.IntLiteral(a.Literal.Int()*b.Literal.Int()), dest.Type)))
		return
	}
	if litIsA, pow, ok := literalPowerOfTwo(a, b); ok {
		shl, _ := ir.LookupOpCode("shl")
		shift := ir.LiteralValue(ir.IntLiteral(int64(pow)), ir.Int32)
		other := b
		if !litIsA {
			other = a
		}
		emplace(w, ir.NewOperation(shl, dest, other, shift))
		return
	}
	if fitsBits(a, 24) && fitsBits(b, 24) {
		mul24, _ := ir.LookupOpCode("mul24")
		emplace(w, ir.NewOperation(mul24, dest, a, b))
		return
	}
	if !signed {
		unsignedMulSplit(w, m, dest, a, b)
		return
	}

	negA := newTemp(m, "mul.negA", a.Type)
	lowering.MakePositive(w, m, negA, a)
	negB := newTemp(m, "mul.negB", b.Type)
	lowering.MakePositive(w, m, negB, b)
	tmp := newTemp(m, "mul.abs", dest.Type)
	unsignedMulSplit(w, m, tmp, negA, negB)

	xor, _ := ir.LookupOpCode("xor")
	signA := newTemp(m, "mul.signA", a.Type)
	shrAmt := ir.LiteralValue(ir.IntLiteral(int64(a.Type.ScalarBitWidth()-1)), ir.Int32)
	shr, _ := ir.LookupOpCode("shr")
	emplace(w, ir.NewOperation(shr, signA, a, shrAmt))
	signB := newTemp(m, "mul.signB", b.Type)
	emplace(w, ir.NewOperation(shr, signB, b, shrAmt))
	diffSign := newTemp(m, "mul.diffsign", ir.Int32)
	emplace(w, ir.NewOperation(xor, diffSign, signA, signB).WithSetFlags(ir.FlagsSet))
	lowering.InvertSign(w, m, dest, tmp, ir.CondZeroClear)
}

// unsignedMulSplit emits out = a_lo*b_lo + (a_lo*b_hi << 16) + (a_hi*b_lo << 16).
func unsignedMulSplit(w *ir.Walker, m *ir.Method, dest, a, b ir.Value) {
	and, _ := ir.LookupOpCode("and")
	shr, _ := ir.LookupOpCode("shr")
	shl, _ := ir.LookupOpCode("shl")
	mul24, _ := ir.LookupOpCode("mul24")
	add, _ := ir.LookupOpCode("add")

	lowMask := ir.LiteralValue(ir.IntLiteral(0xFFFF), dest.Type)
	shift16 := ir.LiteralValue(ir.IntLiteral(16), ir.Int32)

	aLo := newTemp(m, "mul.alo", dest.Type)
	emplace(w, ir.NewOperation(and, aLo, a, lowMask))
	aHi := newTemp(m, "mul.ahi", dest.Type)
	emplace(w, ir.NewOperation(shr, aHi, a, shift16))
	bLo := newTemp(m, "mul.blo", dest.Type)
	emplace(w, ir.NewOperation(and, bLo, b, lowMask))
	bHi := newTemp(m, "mul.bhi", dest.Type)
	emplace(w, ir.NewOperation(shr, bHi, b, shift16))

	loLo := newTemp(m, "mul.lolo", dest.Type)
	emplace(w, ir.NewOperation(mul24, loLo, aLo, bLo))

	sum := loLo
	if !isKnownZeroHalf(a, true) && !isKnownZeroHalf(b, false) {
		loHi := newTemp(m, "mul.lohi", dest.Type)
		emplace(w, ir.NewOperation(mul24, loHi, aLo, bHi))
		loHiShifted := newTemp(m, "mul.lohi.shl", dest.Type)
		emplace(w, ir.NewOperation(shl, loHiShifted, loHi, shift16))
		next := newTemp(m, "mul.partial1", dest.Type)
		emplace(w, ir.NewOperation(add, next, sum, loHiShifted))
		sum = next
	}
	if !isKnownZeroHalf(a, false) && !isKnownZeroHalf(b, true) {
		hiLo := newTemp(m, "mul.hilo", dest.Type)
		emplace(w, ir.NewOperation(mul24, hiLo, aHi, bLo))
		hiLoShifted := newTemp(m, "mul.hilo.shl", dest.Type)
		emplace(w, ir.NewOperation(shl, hiLoShifted, hiLo, shift16))
		next := newTemp(m, "mul.partial2", dest.Type)
		emplace(w, ir.NewOperation(add, next, sum, hiLoShifted))
		sum = next
	}
	emplace(w, ir.NewMove(dest, sum))
}

// isKnownZeroHalf reports whether v is a literal whose high (wantHigh)
// or low (!wantHigh) 16 bits are statically zero, letting the split
// multiply skip a provably-zero partial product.
func isKnownZeroHalf(v ir.Value, wantHigh bool) bool {
	if !v.IsLiteral() {
		return false
	}
	if wantHigh {
		return (v.Literal.Uint() >> 16) == 0
	}
	return (v.Literal.Uint() & 0xFFFF) == 0
}

// literalPowerOfTwo reports whether a or b is a power-of-two literal,
// returning which side it was on (litIsA) and its log2.
func literalPowerOfTwo(a, b ir.Value) (litIsA bool, pow int, ok bool) {
	if a.IsLiteral() {
		u := a.Literal.Uint()
		if u != 0 && u&(u-1) == 0 {
			return true, bits.TrailingZeros64(u), true
		}
	}
	if b.IsLiteral() {
		u := b.Literal.Uint()
		if u != 0 && u&(u-1) == 0 {
			return false, bits.TrailingZeros64(u), true
		}
	}
	return false, 0, false
}

func fitsBits(v ir.Value, n int) bool {
	if !v.IsLiteral() {
		return v.Type.ScalarBitWidth() <= n
	}
	return v.Literal.Uint() < (uint64(1) << uint(n))
}

// lowerUDiv implements the unsigned-division family (remainder when rem
// is true): literal folding, shift/mask for a power-of-two divisor,
// constant-reciprocal multiply for any other literal divisor against a
// dividend no wider than 16 bits, and iterative restoring division
// otherwise.
func lowerUDiv(w *ir.Walker, m *ir.Method, dest, n, d ir.Value, rem bool) error {
	if n.IsLiteral() && d.IsLiteral() {
		if d.Literal.Uint() == 0 {
			return cerror.New(cerror.StepOptimizer, "division by zero literal").WithOffending(d.String())
		}
		var result uint64
		if rem {
			result = n.Literal.Uint() % d.Literal.Uint()
		} else {
			result = n.Literal.Uint() / d.Literal.Uint()
		}
		emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.UintLiteral(result), dest.Type)))
		return nil
	}

	if d.IsLiteral() {
		dv := d.Literal.Uint()
		if dv != 0 && dv&(dv-1) == 0 {
			shiftAmt := bits.TrailingZeros64(dv)
			if rem {
				and, _ := ir.LookupOpCode("and")
				mask := ir.LiteralValue(ir.UintLiteral(dv-1), dest.Type)
				emplace(w, ir.NewOperation(and, dest, n, mask))
			} else {
				shr, _ := ir.LookupOpCode("shr")
				shift := ir.LiteralValue(ir.IntLiteral(int64(shiftAmt)), ir.Int32)
				emplace(w, ir.NewOperation(shr, dest, n, shift))
			}
			return nil
		}
		if n.Type.ScalarBitWidth() <= 16 {
			return reciprocalDivide(w, m, dest, n, dv, rem)
		}
	}

	iterativeDivide(w, m, dest, n, d, rem)
	return nil
}

// reciprocalDivide emits q = (n * factor) >> shift with shift and factor
// derived from the fixed divisor dv, followed by the correction that
// fixes the approximation's at-most-one-off error - including the case
// of an exact multiple of the divisor, which the uncorrected shift alone
// returns one too small for - then (for a remainder request) n - q*dv.
// Rejects a divisor whose derived shift or factor would overflow the
// hardware's 32-bit shift and 16-bit multiply-factor range, exactly as
// the relative accuracy constant's documented safe range requires.
func reciprocalDivide(w *ir.Walker, m *ir.Method, dest, n ir.Value, dv uint64, rem bool) error {
	shift := int(math.Log2(float64(dv)*reciprocalConstant)) + 2
	factor := uint64(math.Round(math.Pow(2, float64(shift)) / float64(dv)))
	if shift > 31 {
		return cerror.Newf(cerror.StepOptimizer, "unsigned division by constant generated invalid shift offset: %d", shift)
	}
	if factor >= 65536 {
		return cerror.Newf(cerror.StepOptimizer, "unsigned division by constant generated invalid multiplication factor: %d", factor)
	}

	mul24, _ := ir.LookupOpCode("mul24")
	shr, _ := ir.LookupOpCode("shr")
	sub, _ := ir.LookupOpCode("sub")
	add, _ := ir.LookupOpCode("add")

	prod := newTemp(m, "div.prod", ir.UInt32)
	emplace(w, ir.NewOperation(mul24, prod, n, ir.LiteralValue(ir.UintLiteral(factor), ir.UInt32)))
	q := newTemp(m, "div.q", ir.UInt32)
	emplace(w, ir.NewOperation(shr, q, prod, ir.LiteralValue(ir.IntLiteral(int64(shift)), ir.Int32)))

	qd := newTemp(m, "div.qd", ir.UInt32)
	emplace(w, ir.NewOperation(mul24, qd, q, ir.LiteralValue(ir.UintLiteral(dv), ir.UInt32)))
	r := newTemp(m, "div.r", ir.UInt32)
	emplace(w, ir.NewOperation(sub, r, n, qd))
	cmp := newTemp(m, "div.cmp", ir.UInt32)
	emplace(w, ir.NewOperation(sub, cmp, ir.LiteralValue(ir.UintLiteral(dv), ir.UInt32), r).WithSetFlags(ir.FlagsSet))

	qFixed := newTemp(m, "div.qfixed", ir.UInt32)
	one := ir.LiteralValue(ir.IntLiteral(1), ir.UInt32)
	emplace(w, ir.NewMove(qFixed, q))
	emplace(w, ir.NewOperation(add, qFixed, q, one).WithCondition(ir.CondNegativeSet))
	emplace(w, ir.NewOperation(add, qFixed, q, one).WithCondition(ir.CondZeroSet))

	if !rem {
		emplace(w, ir.NewMove(dest, qFixed))
		return nil
	}
	qdFixed := newTemp(m, "div.qdfixed", ir.UInt32)
	emplace(w, ir.NewOperation(mul24, qdFixed, qFixed, ir.LiteralValue(ir.UintLiteral(dv), ir.UInt32)))
	emplace(w, ir.NewOperation(sub, dest, n, qdFixed))
	return nil
}

// iterativeDivide implements restoring binary long division for the
// general (non-constant or too-wide) divisor case: for each bit position
// from the top down, double the remainder, bring down the next numerator
// bit, and conditionally subtract the divisor while recording the
// quotient bit.
func iterativeDivide(w *ir.Walker, m *ir.Method, dest, n, d ir.Value, rem bool) {
	width := n.Type.ScalarBitWidth()
	shl, _ := ir.LookupOpCode("shl")
	or, _ := ir.LookupOpCode("or")
	sub, _ := ir.LookupOpCode("sub")
	and, _ := ir.LookupOpCode("and")

	remainder := newTemp(m, "div.iter.r", ir.UInt32)
	emplace(w, ir.NewMove(remainder, ir.LiteralValue(ir.IntLiteral(0), ir.UInt32)))
	quotient := newTemp(m, "div.iter.q", ir.UInt32)
	emplace(w, ir.NewMove(quotient, ir.LiteralValue(ir.IntLiteral(0), ir.UInt32)))

	for i := width - 1; i >= 0; i-- {
		shiftedR := newTemp(m, "div.iter.rshift", ir.UInt32)
		emplace(w, ir.NewOperation(shl, shiftedR, remainder, ir.Int32One))
		bit := newTemp(m, "div.iter.bit", ir.UInt32)
		emplace(w, ir.NewOperation(and, bit, newShiftedBit(w, m, n, i), ir.Int32One))
		withBit := newTemp(m, "div.iter.withbit", ir.UInt32)
		emplace(w, ir.NewOperation(or, withBit, shiftedR, bit))

		cmp := newTemp(m, "div.iter.cmp", ir.UInt32)
		emplace(w, ir.NewOperation(sub, cmp, withBit, d).WithSetFlags(ir.FlagsSet))
		afterSub := newTemp(m, "div.iter.aftersub", ir.UInt32)
		emplace(w, ir.NewMove(afterSub, cmp).WithCondition(ir.CondNegativeClear))
		emplace(w, ir.NewMove(afterSub, withBit).WithCondition(ir.CondNegativeSet))
		remainder = afterSub

		qBit := newTemp(m, "div.iter.qshift", ir.UInt32)
		emplace(w, ir.NewOperation(shl, qBit, quotient, ir.Int32One))
		setBit := ir.LiteralValue(ir.IntLiteral(1), ir.UInt32)
		nextQ := newTemp(m, "div.iter.q2", ir.UInt32)
		emplace(w, ir.NewOperation(or, nextQ, qBit, setBit).WithCondition(ir.CondNegativeClear))
		emplace(w, ir.NewMove(nextQ, qBit).WithCondition(ir.CondNegativeSet))
		quotient = nextQ
	}

	if rem {
		emplace(w, ir.NewMove(dest, remainder))
	} else {
		emplace(w, ir.NewMove(dest, quotient))
	}
}

func newShiftedBit(w *ir.Walker, m *ir.Method, n ir.Value, i int) ir.Value {
	shr, _ := ir.LookupOpCode("shr")
	amt := ir.LiteralValue(ir.IntLiteral(int64(i)), ir.Int32)
	out := newTemp(m, "div.iter.nbit", ir.UInt32)
	emplace(w, ir.NewOperation(shr, out, n, amt))
	return out
}

// lowerSDiv wraps the unsigned routine with sign-aware pre/post
// processing, mirroring the signed multiply pattern: operate on absolute
// values, then fix up the sign of the result (division negates when the
// operand signs differ; remainder follows the dividend's sign).
func lowerSDiv(w *ir.Walker, m *ir.Method, dest, n, d ir.Value, rem bool) error {
	if n.IsLiteral() && d.IsLiteral() {
		if d.Literal.Int() == 0 {
			return cerror.New(cerror.StepOptimizer, "division by zero literal").WithOffending(d.String())
		}
		var result int64
		if rem {
			result = n.Literal.Int() % d.Literal.Int()
		} else {
			result = n.Literal.Int() / d.Literal.Int()
		}
		emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.IntLiteral(result), dest.Type)))
		return nil
	}

	absN := newTemp(m, "sdiv.absn", n.Type)
	lowering.MakePositive(w, m, absN, n)
	absD := newTemp(m, "sdiv.absd", d.Type)
	lowering.MakePositive(w, m, absD, d)
	tmp := newTemp(m, "sdiv.tmp", dest.Type)
	if err := lowerUDiv(w, m, tmp, absN, absD, rem); err != nil {
		return err
	}

	if rem {
		shr, _ := ir.LookupOpCode("shr")
		signN := newTemp(m, "sdiv.signn", ir.Int32)
		shiftAmt := ir.LiteralValue(ir.IntLiteral(int64(n.Type.ScalarBitWidth()-1)), ir.Int32)
		emplace(w, ir.NewOperation(shr, signN, n, shiftAmt).WithSetFlags(ir.FlagsSet))
		lowering.InvertSign(w, m, dest, tmp, ir.CondZeroClear)
		return nil
	}

	xor, _ := ir.LookupOpCode("xor")
	shr, _ := ir.LookupOpCode("shr")
	shiftAmt := ir.LiteralValue(ir.IntLiteral(int64(n.Type.ScalarBitWidth()-1)), ir.Int32)
	signN := newTemp(m, "sdiv.signn", ir.Int32)
	emplace(w, ir.NewOperation(shr, signN, n, shiftAmt))
	signD := newTemp(m, "sdiv.signd", ir.Int32)
	emplace(w, ir.NewOperation(shr, signD, d, shiftAmt))
	diff := newTemp(m, "sdiv.diffsign", ir.Int32)
	emplace(w, ir.NewOperation(xor, diff, signN, signD).WithSetFlags(ir.FlagsSet))
	lowering.InvertSign(w, m, dest, tmp, ir.CondZeroClear)
	return nil
}

// lowerFDiv implements the float-division cascade: literal folding,
// multiply-by-reciprocal for a literal divisor, a single SFU reciprocal
// under fast-math/allow-reciprocal, or five Newton-Raphson refinement
// iterations seeded by the SFU's reciprocal estimate.
func lowerFDiv(w *ir.Walker, m *ir.Method, dest, n, d ir.Value, decor ir.Decoration) {
	if n.IsLiteral() && d.IsLiteral() {
		emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.RealLiteral(n.Literal.Float()/d.Literal.Float()), dest.Type)))
		return
	}
	if d.IsLiteral() {
		recip := ir.LiteralValue(ir.RealLiteral(1.0/d.Literal.Float()), dest.Type)
		fmul, _ := ir.LookupOpCode("fmul")
		emplace(w, ir.NewOperation(fmul, dest, n, recip))
		return
	}
	if decor.Has(ir.DecorFastMath) || decor.Has(ir.DecorAllowRecip) {
		sfuRecipSequence(w, dest, d)
		return
	}

	p := newTemp(m, "fdiv.p0", dest.Type)
	sfuRecipSequence(w, p, d)

	fmul, _ := ir.LookupOpCode("fmul")
	fsub, _ := ir.LookupOpCode("fsub")
	two := ir.LiteralValue(ir.RealLiteral(2.0), dest.Type)
	for i := 0; i < 5; i++ {
		dp := newTemp(m, "fdiv.dp", dest.Type)
		emplace(w, ir.NewOperation(fmul, dp, d, p))
		correction := newTemp(m, "fdiv.corr", dest.Type)
		emplace(w, ir.NewOperation(fsub, correction, two, dp))
		next := newTemp(m, "fdiv.p", dest.Type)
		emplace(w, ir.NewOperation(fmul, next, p, correction))
		p = next
	}
	fmulFinal, _ := ir.LookupOpCode("fmul")
	emplace(w, ir.NewOperation(fmulFinal, dest, n, p))
}

func sfuRecipSequence(w *ir.Walker, dest, arg ir.Value) {
	emplace(w, ir.NewMove(ir.RegisterValue(ir.RegSFURecip, arg.Type), arg))
	emplace(w, ir.NewNop(ir.DelayWaitSFU))
	emplace(w, ir.NewNop(ir.DelayWaitSFU))
	emplace(w, ir.NewMove(dest, ir.RegisterValue(ir.RegSFUOutput, dest.Type)))
}

// lowerUIToFP converts an unsigned 32-bit integer to float. Restores the
// correction the distilled source carried only as a comment: values with
// the high bit set must add 2^31 after the native conversion, since the
// hardware's itof treats the input as signed.
func lowerUIToFP(w *ir.Walker, m *ir.Method, dest, src ir.Value) {
	itof, _ := ir.LookupOpCode("itof")
	converted := newTemp(m, "uitofp.converted", dest.Type)
	emplace(w, ir.NewOperation(itof, converted, src))

	shr, _ := ir.LookupOpCode("shr")
	msb := newTemp(m, "uitofp.msb", ir.UInt32)
	shiftAmt := ir.LiteralValue(ir.IntLiteral(31), ir.Int32)
	emplace(w, ir.NewOperation(shr, msb, src, shiftAmt).WithSetFlags(ir.FlagsSet))

	fadd, _ := ir.LookupOpCode("fadd")
	correction := ir.LiteralValue(ir.RealLiteral(2147483648.0), dest.Type)
	emplace(w, ir.NewOperation(fadd, dest, converted, correction).WithCondition(ir.CondZeroClear))
	emplace(w, ir.NewMove(dest, converted).WithCondition(ir.CondZeroSet))
}
