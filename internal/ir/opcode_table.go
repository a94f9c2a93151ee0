package ir

import "math"

// foldInt implements the common "both arguments are literals" shortcut
// that feeds every integer ALU opcode's pre-calculation entry.
func foldInt(f func(a, b int64) int64) PrecalcFunc {
	return func(args ...Value) (Value, bool) {
		if len(args) != 2 || !args[0].IsLiteral() || !args[1].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(IntLiteral(f(args[0].Literal.Int(), args[1].Literal.Int())), args[0].Type), true
	}
}

func foldUint(f func(a, b uint64) uint64) PrecalcFunc {
	return func(args ...Value) (Value, bool) {
		if len(args) != 2 || !args[0].IsLiteral() || !args[1].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(UintLiteral(f(args[0].Literal.Uint(), args[1].Literal.Uint())), args[0].Type), true
	}
}

func foldFloat(f func(a, b float64) float64) PrecalcFunc {
	return func(args ...Value) (Value, bool) {
		if len(args) != 2 || !args[0].IsLiteral() || !args[1].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(RealLiteral(f(args[0].Literal.Float(), args[1].Literal.Float())), args[0].Type), true
	}
}

func foldUnaryInt(f func(a int64) int64) PrecalcFunc {
	return func(args ...Value) (Value, bool) {
		if len(args) != 1 || !args[0].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(IntLiteral(f(args[0].Literal.Int())), args[0].Type), true
	}
}

func init() {
	// Integer ALU, add side.
	RegisterOpCode(OpCode{Name: "add", Side: SideAdd, Operands: 2, Precalc: foldInt(func(a, b int64) int64 { return a + b })})
	RegisterOpCode(OpCode{Name: "sub", Side: SideAdd, Operands: 2, Precalc: foldInt(func(a, b int64) int64 { return a - b })})
	RegisterOpCode(OpCode{Name: "shr", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return a >> b })})
	RegisterOpCode(OpCode{Name: "asr", Side: SideAdd, Operands: 2, Precalc: foldInt(func(a, b int64) int64 { return a >> uint(b) })})
	RegisterOpCode(OpCode{Name: "ror", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 {
		b %= 32
		return (a >> b) | (a << (32 - b) & 0xFFFFFFFF)
	})})
	RegisterOpCode(OpCode{Name: "shl", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return a << b })})
	RegisterOpCode(OpCode{Name: "min", Side: SideAdd, Operands: 2, Precalc: foldInt(func(a, b int64) int64 {
		if a < b {
			return a
		}
		return b
	})})
	RegisterOpCode(OpCode{Name: "max", Side: SideAdd, Operands: 2, Precalc: foldInt(func(a, b int64) int64 {
		if a > b {
			return a
		}
		return b
	})})
	RegisterOpCode(OpCode{Name: "and", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return a & b })})
	RegisterOpCode(OpCode{Name: "or", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return a | b })})
	RegisterOpCode(OpCode{Name: "xor", Side: SideAdd, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return a ^ b })})
	RegisterOpCode(OpCode{Name: "not", Side: SideAdd, Operands: 1, Precalc: foldUnaryInt(func(a int64) int64 { return ^a })})
	RegisterOpCode(OpCode{Name: "clz", Side: SideAdd, Operands: 1, Precalc: foldUnaryInt(func(a int64) int64 {
		n := uint32(a)
		c := int64(0)
		for i := 31; i >= 0; i-- {
			if n&(1<<uint(i)) != 0 {
				break
			}
			c++
		}
		return c
	})})

	// Floating point, add side.
	RegisterOpCode(OpCode{Name: "fadd", Side: SideAdd, Operands: 2, Precalc: foldFloat(func(a, b float64) float64 { return a + b })})
	RegisterOpCode(OpCode{Name: "fsub", Side: SideAdd, Operands: 2, Precalc: foldFloat(func(a, b float64) float64 { return a - b })})
	RegisterOpCode(OpCode{Name: "fmin", Side: SideAdd, Operands: 2, Precalc: foldFloat(math.Min)})
	RegisterOpCode(OpCode{Name: "fmax", Side: SideAdd, Operands: 2, Precalc: foldFloat(math.Max)})
	RegisterOpCode(OpCode{Name: "fminabs", Side: SideAdd, Operands: 2, Precalc: foldFloat(func(a, b float64) float64 { return math.Min(math.Abs(a), math.Abs(b)) })})
	RegisterOpCode(OpCode{Name: "fmaxabs", Side: SideAdd, Operands: 2, Precalc: foldFloat(func(a, b float64) float64 { return math.Max(math.Abs(a), math.Abs(b)) })})
	RegisterOpCode(OpCode{Name: "ftoi", Side: SideAdd, Operands: 1, Precalc: func(args ...Value) (Value, bool) {
		if len(args) != 1 || !args[0].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(IntLiteral(int64(args[0].Literal.Float())), Int32), true
	}})
	RegisterOpCode(OpCode{Name: "itof", Side: SideAdd, Operands: 1, Precalc: func(args ...Value) (Value, bool) {
		if len(args) != 1 || !args[0].IsLiteral() {
			return Value{}, false
		}
		return LiteralValue(RealLiteral(float64(args[0].Literal.Int())), Float32), true
	}})

	// Multiply side.
	RegisterOpCode(OpCode{Name: "mul24", Side: SideMul, Operands: 2, Precalc: foldUint(func(a, b uint64) uint64 { return (a & 0xFFFFFF) * (b & 0xFFFFFF) })})
	RegisterOpCode(OpCode{Name: "fmul", Side: SideMul, Operands: 2, Precalc: foldFloat(func(a, b float64) float64 { return a * b })})
	RegisterOpCode(OpCode{Name: "v8adds", Side: SideEither, Operands: 2})
	RegisterOpCode(OpCode{Name: "v8subs", Side: SideEither, Operands: 2})
	RegisterOpCode(OpCode{Name: "v8min", Side: SideMul, Operands: 2})
	RegisterOpCode(OpCode{Name: "v8max", Side: SideMul, Operands: 2})

	// Move and rotation pseudo-opcodes live on the mul side in hardware
	// but are modeled as their own instruction variants (MoveOperation,
	// VectorRotation) rather than generic Operation nodes.
}
