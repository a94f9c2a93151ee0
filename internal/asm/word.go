// Package asm packs the optimized IR into the fixed binary layout:
// 64-bit instruction words, kernel-info/parameter records, a module
// header, and the global-data segment, in binary, hex, or assembler
// textual form.
package asm

import "github.com/xyproto/vc4c/internal/ir"

// Bitfield offsets within a packed 64-bit instruction word. The add and
// mul pipelines each get an opcode field, a write address and a
// condition code; the remaining bits are shared fields (small immediate,
// signal, pack, two read addresses, set-flags, write-swap and the
// uses-small-immediate bit).
const (
	shiftAddOpcode  = 0
	shiftMulOpcode  = 5
	shiftWriteAddA  = 10
	shiftWriteAddB  = 16
	shiftReadAddA   = 22
	shiftReadAddB   = 28
	shiftSmallImm   = 34
	shiftSignal     = 41
	shiftPack       = 45
	shiftCondAdd    = 49
	shiftCondMul    = 52
	shiftSetFlags   = 55
	shiftWriteSwap  = 56
	shiftUsesSmall  = 57

	maskOpcode    = 0x1F
	maskAddress   = 0x3F
	maskSmallImm  = 0x7F
	maskSignal    = 0xF
	maskPack      = 0xF
	maskCondition = 0x7
)

// InstructionWord is the packed 64-bit encoding of one machine
// instruction word - either a real add/mul-ALU pair built by EncodePair,
// or the degenerate single-ALU encoding EncodeInstruction produces for
// anything schedulePairs left unpaired (a lone ALU op, or a control-flow/
// signal-only instruction - branch, semaphore, mutex, nop - which only
// ever uses the add-side fields).
type InstructionWord struct {
	AddOpcode, MulOpcode     uint8
	WriteAddrA, WriteAddrB   uint8
	ReadAddrA, ReadAddrB     uint8
	SmallImmediate           uint8
	UsesSmallImmediate       bool
	Signal                   uint8
	Pack                     uint8
	CondAdd, CondMul         uint8
	SetFlags                 bool
	WriteSwap                bool
}

// Encode packs the word's fields into their fixed bit positions.
func (iw InstructionWord) Encode() uint64 {
	var v uint64
	v |= uint64(iw.AddOpcode&maskOpcode) << shiftAddOpcode
	v |= uint64(iw.MulOpcode&maskOpcode) << shiftMulOpcode
	v |= uint64(iw.WriteAddrA&maskAddress) << shiftWriteAddA
	v |= uint64(iw.WriteAddrB&maskAddress) << shiftWriteAddB
	v |= uint64(iw.ReadAddrA&maskAddress) << shiftReadAddA
	v |= uint64(iw.ReadAddrB&maskAddress) << shiftReadAddB
	v |= uint64(iw.SmallImmediate&maskSmallImm) << shiftSmallImm
	v |= uint64(iw.Signal&maskSignal) << shiftSignal
	v |= uint64(iw.Pack&maskPack) << shiftPack
	v |= uint64(iw.CondAdd&maskCondition) << shiftCondAdd
	v |= uint64(iw.CondMul&maskCondition) << shiftCondMul
	if iw.SetFlags {
		v |= 1 << shiftSetFlags
	}
	if iw.WriteSwap {
		v |= 1 << shiftWriteSwap
	}
	if iw.UsesSmallImmediate {
		v |= 1 << shiftUsesSmall
	}
	return v
}

// encodeCondition maps an ir.Condition to its 3-bit hardware encoding.
func encodeCondition(c ir.Condition) uint8 {
	switch c {
	case ir.CondAlways:
		return 0
	case ir.CondZeroSet:
		return 1
	case ir.CondZeroClear:
		return 2
	case ir.CondNegativeSet:
		return 3
	case ir.CondNegativeClear:
		return 4
	case ir.CondCarrySet:
		return 5
	case ir.CondCarryClear:
		return 6
	default:
		return 0
	}
}

func encodePack(p ir.PackMode) uint8 {
	switch p {
	case ir.PackNone:
		return 0
	case ir.PackInt32ToChar:
		return 1
	case ir.PackInt32ToUCharSaturate:
		return 2
	case ir.PackInt32ToShortSaturate:
		return 3
	case ir.PackInt32ToUShortTruncate:
		return 4
	case ir.PackInt32Saturate:
		return 5
	default:
		return 0
	}
}

// EncodeInstruction lowers one already-register-allocated *ir.Instruction
// into its own degenerate, single-ALU word: the encoding schedulePairs
// falls back to for anything tryPair couldn't combine with a neighbor.
// Register allocation (assigning physical file-A/B slots to every
// surviving Local) happens upstream of this package; here every Value
// referencing a Local is expected to already carry a concrete Register.
func EncodeInstruction(ins *ir.Instruction) InstructionWord {
	var w InstructionWord
	w.CondAdd = encodeCondition(ins.Cond)
	w.CondMul = w.CondAdd
	w.SetFlags = ins.SetFlags == ir.FlagsSet
	w.Pack = encodePack(ins.Pack)

	switch ins.Kind {
	case ir.KindOperation:
		if ins.Op.Side == ir.SideMul {
			w.MulOpcode = opcodeNumber(ins.Op.Name)
		} else {
			w.AddOpcode = opcodeNumber(ins.Op.Name)
		}
	case ir.KindMove, ir.KindLoadImmediate:
		w.MulOpcode = opcodeMove
	case ir.KindVectorRotation:
		w.MulOpcode = opcodeMove
		if ins.Offset.IsSmallImm() {
			w.UsesSmallImmediate = true
			w.SmallImmediate = uint8(ins.Offset.Small.Value & 0x7F)
		}
	case ir.KindNop:
		w.Signal = signalForDelay(ins.DelayReason)
	case ir.KindBranch:
		w.Signal = signalBranch
	case ir.KindSemaphoreAdjustment:
		w.Signal = signalSemaphore
		w.SmallImmediate = uint8(ins.SemaphoreID & 0xF)
		w.UsesSmallImmediate = true
		if ins.SemaphoreIncrement {
			w.WriteSwap = true
		}
	case ir.KindMutexLock:
		w.Signal = signalMutex
		w.WriteSwap = ins.MutexAcquire
	}

	if ins.Output != nil && ins.Output.IsRegister() {
		w.WriteAddrA = registerAddress(ins.Output.Register)
	}
	for i, a := range ins.Args {
		if !a.IsRegister() {
			continue
		}
		if i == 0 {
			w.ReadAddrA = registerAddress(a.Register)
		} else {
			w.ReadAddrB = registerAddress(a.Register)
		}
	}
	for _, a := range ins.Args {
		if a.IsSmallImm() {
			w.UsesSmallImmediate = true
			w.SmallImmediate = uint8(a.Small.Value & 0x7F)
		}
	}
	return w
}

// EncodePair packs add (assigned the add ALU) and mul (assigned the mul
// ALU) into one word. The caller - schedulePairs, via tryPair - has
// already confirmed they write disjoint destinations, neither reads the
// other's output, and together they need at most one shared small
// immediate/pack/set-flags use and at most two distinct register-file
// operands.
func EncodePair(add, mul *ir.Instruction) InstructionWord {
	var w InstructionWord
	w.CondAdd = encodeCondition(add.Cond)
	w.CondMul = encodeCondition(mul.Cond)
	w.SetFlags = add.SetFlags == ir.FlagsSet || mul.SetFlags == ir.FlagsSet
	if add.Pack != ir.PackNone {
		w.Pack = encodePack(add.Pack)
	} else {
		w.Pack = encodePack(mul.Pack)
	}

	w.AddOpcode = opcodeNumber(add.Op.Name)
	w.MulOpcode = mulSlotOpcode(mul)

	if add.Output != nil && add.Output.IsRegister() {
		w.WriteAddrA = registerAddress(add.Output.Register)
	}
	if mul.Output != nil && mul.Output.IsRegister() {
		w.WriteAddrB = registerAddress(mul.Output.Register)
	}

	regs, n, _ := distinctReadRegisters(add, mul)
	if n > 0 {
		w.ReadAddrA = registerAddress(regs[0])
	}
	if n > 1 {
		w.ReadAddrB = registerAddress(regs[1])
	}

	if mul.Kind == ir.KindVectorRotation && mul.Offset.IsSmallImm() {
		w.UsesSmallImmediate = true
		w.SmallImmediate = uint8(mul.Offset.Small.Value & 0x7F)
	}
	for _, ins := range [2]*ir.Instruction{add, mul} {
		for _, a := range ins.Args {
			if a.IsSmallImm() {
				w.UsesSmallImmediate = true
				w.SmallImmediate = uint8(a.Small.Value & 0x7F)
			}
		}
	}
	return w
}

// mulSlotOpcode maps a mul-ALU-assigned instruction to its opcode number:
// a move/rotation/load-immediate always lowers to the fixed move opcode on
// this pipeline, matching EncodeInstruction's degenerate case.
func mulSlotOpcode(ins *ir.Instruction) uint8 {
	switch ins.Kind {
	case ir.KindMove, ir.KindVectorRotation, ir.KindLoadImmediate:
		return opcodeMove
	default:
		return opcodeNumber(ins.Op.Name)
	}
}

const opcodeMove = 1

// Signal field values for non-ALU instruction forms: covers the hardware's
// "signal" bits used for branch delay, semaphore, and mutex operations,
// distinct from the add/mul opcode space.
const (
	signalNone      = 0
	signalBranch    = 1
	signalSemaphore = 2
	signalMutex     = 3
	signalWaitSFU   = 4
	signalWaitTMU   = 5
	signalWaitVPM   = 6
)

func signalForDelay(r ir.DelayReason) uint8 {
	switch r {
	case ir.DelayWaitSFU:
		return signalWaitSFU
	case ir.DelayWaitTMU, ir.DelayWaitUniform:
		return signalWaitTMU
	case ir.DelayWaitVPM:
		return signalWaitVPM
	case ir.DelayBranch:
		return signalBranch
	default:
		return signalNone
	}
}

// opcodeNumber maps a fixed hardware opcode name to a stable small
// integer for encoding. Grounded on the fixed table in internal/ir;
// numbers are assigned by registration order rather than hand-picked, so
// adding an opcode to the table never collides with an existing number.
var opcodeNumbers = buildOpcodeNumbers()

func buildOpcodeNumbers() map[string]uint8 {
	names := []string{
		"add", "sub", "shr", "asr", "ror", "shl", "min", "max", "and", "or", "xor", "not", "clz",
		"fadd", "fsub", "fmin", "fmax", "fminabs", "fmaxabs", "ftoi", "itof",
		"mul24", "fmul", "v8adds", "v8subs", "v8min", "v8max",
	}
	out := make(map[string]uint8, len(names)+2)
	out["move"] = opcodeMove
	for i, n := range names {
		out[n] = uint8(i + 2)
	}
	return out
}

func opcodeNumber(name string) uint8 { return opcodeNumbers[name] }

// registerAddress maps a Register to its 6-bit file address.
func registerAddress(r ir.Register) uint8 {
	base := uint8(r.Index & 0x3F)
	switch r.File {
	case ir.FileB, ir.FilePeripheral:
		return base | 0x20
	default:
		return base
	}
}
