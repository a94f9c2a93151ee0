package asm

import "github.com/xyproto/vc4c/internal/ir"

// scheduledWord is one 64-bit instruction slot: either a genuine add/mul
// pair, or (Mul == nil) a single instruction using the degenerate
// one-ALU encoding.
type scheduledWord struct {
	Add, Mul *ir.Instruction
}

// combinableSide reports which ALU slot(s) ins may occupy when paired with
// a neighbor, or sideNone if it can never share a word - every
// control-flow, signal-bearing or unresolved-call form stands alone.
type combinableSide int

const (
	sideNone combinableSide = iota
	sideAddOnly
	sideMulOnly
	sideEither
)

func combinableSideOf(ins *ir.Instruction) combinableSide {
	switch ins.Kind {
	case ir.KindMove, ir.KindVectorRotation, ir.KindLoadImmediate:
		return sideMulOnly
	case ir.KindOperation:
		switch ins.Op.Side {
		case ir.SideAdd:
			return sideAddOnly
		case ir.SideMul:
			return sideMulOnly
		default:
			return sideEither
		}
	default:
		return sideNone
	}
}

// schedulePairs groups a block's instruction sequence into instruction
// words, pairing adjacent instructions onto the add and mul ALUs wherever
// tryPair allows it. Pairing only ever considers direct neighbors, so it
// never reorders an instruction past another - it either combines two
// instructions that were already going to execute back to back, or emits
// them as two separate words exactly as before.
func schedulePairs(instrs []*ir.Instruction) []scheduledWord {
	words := make([]scheduledWord, 0, len(instrs))
	for i := 0; i < len(instrs); {
		if i+1 < len(instrs) {
			if add, mul, ok := tryPair(instrs[i], instrs[i+1]); ok {
				words = append(words, scheduledWord{Add: add, Mul: mul})
				i += 2
				continue
			}
		}
		words = append(words, scheduledWord{Add: instrs[i]})
		i++
	}
	return words
}

// tryPair decides whether first and second can share one instruction
// word: one on the add ALU, the other on mul, with disjoint destinations,
// no same-cycle data dependency between them (the hardware doesn't
// forward a result to the other ALU within the cycle that produces it),
// at most one of them setting flags, packing, or using the small
// immediate field (the word carries exactly one of each), and no more
// distinct register-file operands between them than the word's two read
// ports can address.
func tryPair(first, second *ir.Instruction) (addIns, mulIns *ir.Instruction, ok bool) {
	sideFirst, sideSecond := combinableSideOf(first), combinableSideOf(second)
	if sideFirst == sideNone || sideSecond == sideNone {
		return nil, nil, false
	}
	if writesSameDestination(first, second) {
		return nil, nil, false
	}
	if readsOthersOutput(first, second) || readsOthersOutput(second, first) {
		return nil, nil, false
	}
	if usesSmallImmediate(first) && usesSmallImmediate(second) {
		return nil, nil, false
	}
	if first.SetFlags == ir.FlagsSet && second.SetFlags == ir.FlagsSet {
		return nil, nil, false
	}
	if first.Pack != ir.PackNone && second.Pack != ir.PackNone {
		return nil, nil, false
	}
	if _, _, fits := distinctReadRegisters(first, second); !fits {
		return nil, nil, false
	}

	if sideFirst != sideMulOnly && sideSecond != sideAddOnly {
		return first, second, true
	}
	if sideFirst != sideAddOnly && sideSecond != sideMulOnly {
		return second, first, true
	}
	return nil, nil, false
}

func usesSmallImmediate(ins *ir.Instruction) bool {
	if ins.Kind == ir.KindVectorRotation && ins.Offset.IsSmallImm() {
		return true
	}
	for _, a := range ins.Args {
		if a.IsSmallImm() {
			return true
		}
	}
	return false
}

func sameValue(a, b ir.Value) bool {
	switch {
	case a.IsRegister() && b.IsRegister():
		return a.Register.Equal(b.Register)
	case a.IsLocal() && b.IsLocal():
		return a.Local == b.Local
	default:
		return false
	}
}

func writesSameDestination(a, b *ir.Instruction) bool {
	if a.Output == nil || b.Output == nil {
		return false
	}
	return sameValue(*a.Output, *b.Output)
}

// readsOthersOutput reports whether reader takes writer's output as an
// operand - pairing them would need writer's result visible to reader's
// ALU in the very cycle that produces it.
func readsOthersOutput(reader, writer *ir.Instruction) bool {
	if writer.Output == nil {
		return false
	}
	for _, a := range reader.Args {
		if sameValue(a, *writer.Output) {
			return true
		}
	}
	if reader.Kind == ir.KindVectorRotation && sameValue(reader.Offset, *writer.Output) {
		return true
	}
	return false
}

// distinctReadRegisters collects the register operands a and b need
// between them, deduplicated. The word's ReadAddrA/ReadAddrB are shared
// by both ALUs in the same cycle, so fits is false once a third distinct
// register would be needed.
func distinctReadRegisters(a, b *ir.Instruction) (regs [2]ir.Register, n int, fits bool) {
	add := func(r ir.Register) bool {
		for i := 0; i < n; i++ {
			if regs[i].Equal(r) {
				return true
			}
		}
		if n >= 2 {
			return false
		}
		regs[n] = r
		n++
		return true
	}
	fits = true
	for _, ins := range [2]*ir.Instruction{a, b} {
		for _, arg := range ins.Args {
			if arg.IsRegister() && !add(arg.Register) {
				fits = false
			}
		}
		if ins.Kind == ir.KindVectorRotation && ins.Offset.IsRegister() && !add(ins.Offset.Register) {
			fits = false
		}
	}
	return regs, n, fits
}
