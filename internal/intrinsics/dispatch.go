package intrinsics

import (
	"strings"

	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
	"github.com/xyproto/vc4c/internal/lowering"
)

// unaryOpcodes and binaryOpcodes are substring-matched against a call's
// name to find a direct hardware-opcode replacement, per the nonary/
// unary/binary dispatch tables.
var unaryOpcodes = map[string]string{
	"ftoi": "ftoi",
	"itof": "itof",
	"clz":  "clz",
	"not":  "not",
}

var binaryOpcodes = map[string]string{
	"fmax":    "fmax",
	"fmin":    "fmin",
	"fmaxabs": "fmaxabs",
	"fminabs": "fminabs",
	"shr":     "shr",
	"asr":     "asr",
	"ror":     "ror",
	"shl":     "shl",
	"min":     "min",
	"max":     "max",
	"and":     "and",
	"mul24":   "mul24",
	"v8adds":  "v8adds",
	"v8subs":  "v8subs",
}

var sfuRegisters = map[string]ir.Register{
	"recip": ir.RegSFURecip,
	"rsqrt": ir.RegSFURecipSqrt,
	"exp2":  ir.RegSFUExp2,
	"log2":  ir.RegSFULog2,
}

// RewriteCall attempts to replace call (the instruction the walker
// currently points at) with its native lowering, in dispatch-table order:
// vector shuffle/insert/extract and getelementptr forms, mutex/semaphore
// forms, element/QPU number reads, SFU sequences, then unary/binary ALU
// opcode matches. Returns handled=false when call's name
// matches nothing here, leaving it for the caller to treat as either an
// abstract arithmetic op or an unresolved external call.
func RewriteCall(w *ir.Walker, m *ir.Method, call *ir.Instruction) (handled bool, err error) {
	name := call.MethodName

	switch {
	case strings.Contains(name, "shufflevector"):
		return rewriteShuffleVector(w, m, call)
	case strings.Contains(name, "insertelement"):
		return rewriteInsertElement(w, m, call)
	case strings.Contains(name, "extractelement"):
		return rewriteExtractElement(w, m, call)
	case strings.Contains(name, "getelementptr"):
		return rewriteGetElementPtr(w, m, call)
	case strings.Contains(name, "mutex_lock"):
		w.Erase()
		emplace(w, ir.NewMutexLock(true))
		return true, nil
	case strings.Contains(name, "mutex_unlock"):
		w.Erase()
		emplace(w, ir.NewMutexLock(false))
		return true, nil
	case strings.Contains(name, "semaphore_increment"), strings.Contains(name, "semaphore_decrement"):
		id, ok := literalSemaphoreID(call)
		if !ok {
			return false, cerror.New(cerror.StepOptimizer, "semaphore id must be a compile-time literal in [0,15]").WithOffending(call.String())
		}
		w.Erase()
		emplace(w, ir.NewSemaphoreAdjustment(id, strings.Contains(name, "increment")))
		return true, nil
	case strings.Contains(name, "element_number"):
		dest := *call.Output
		w.Erase()
		emplace(w, ir.NewMove(dest, ir.RegisterValue(ir.RegElementNumber, dest.Type)))
		return true, nil
	case strings.Contains(name, "qpu_number"):
		dest := *call.Output
		w.Erase()
		emplace(w, ir.NewMove(dest, ir.RegisterValue(ir.RegQPUNumber, dest.Type)))
		return true, nil
	}

	for substr, reg := range sfuRegisters {
		if strings.Contains(name, substr) {
			lowerSFU(w, call, reg)
			return true, nil
		}
	}

	for substr, opname := range unaryOpcodes {
		if strings.Contains(name, substr) && len(call.Args) == 1 {
			op, _ := ir.LookupOpCode(opname)
			dest := *call.Output
			arg := call.Args[0]
			w.Erase()
			if folded, ok := op.Precalc(arg); ok {
				emplace(w, ir.NewMove(dest, folded))
			} else {
				emplace(w, ir.NewOperation(op, dest, arg))
			}
			return true, nil
		}
	}

	for substr, opname := range binaryOpcodes {
		if strings.Contains(name, substr) && len(call.Args) == 2 {
			op, _ := ir.LookupOpCode(opname)
			dest := *call.Output
			a, b := call.Args[0], call.Args[1]
			w.Erase()
			if op.Precalc != nil {
				if folded, ok := op.Precalc(a, b); ok {
					emplace(w, ir.NewMove(dest, folded))
					return true, nil
				}
			}
			emplace(w, ir.NewOperation(op, dest, a, b))
			return true, nil
		}
	}

	return false, nil
}

// lowerSFU inserts the fixed SFU sequence: move the argument into the
// SFU's dedicated input register (the write triggers the unit), two
// wait-sfu Nops to cover the two-bubble result latency, then a move from
// the shared SFU output accumulator into the call's destination.
func lowerSFU(w *ir.Walker, call *ir.Instruction, inputReg ir.Register) {
	dest := *call.Output
	arg := call.Args[0]
	w.Erase()
	emplace(w, ir.NewMove(ir.RegisterValue(inputReg, arg.Type), arg))
	emplace(w, ir.NewNop(ir.DelayWaitSFU))
	emplace(w, ir.NewNop(ir.DelayWaitSFU))
	emplace(w, ir.NewMove(dest, ir.RegisterValue(ir.RegSFUOutput, dest.Type)))
}

func literalSemaphoreID(call *ir.Instruction) (int, bool) {
	if len(call.Args) != 1 || !call.Args[0].IsLiteral() {
		return 0, false
	}
	id := int(call.Args[0].Literal.Int())
	if id < 0 || id > 15 {
		return 0, false
	}
	return id, true
}

// rewriteShuffleVector lowers the three-argument __builtin_shufflevector
// form (source0, source1, mask) via the lowering package's per-lane
// extract/insert sequence.
func rewriteShuffleVector(w *ir.Walker, m *ir.Method, call *ir.Instruction) (bool, error) {
	if call.Output == nil || len(call.Args) != 3 {
		return false, cerror.New(cerror.StepOptimizer, "shufflevector requires a destination and three arguments").WithOffending(call.String())
	}
	dest := *call.Output
	source0, source1, mask := call.Args[0], call.Args[1], call.Args[2]
	w.Erase()
	if _, err := lowering.Shuffle(w, m, dest, source0, source1, mask); err != nil {
		return false, err
	}
	return true, nil
}

// rewriteExtractElement lowers a two-argument extractelement(container,
// index) call, requiring a compile-time-constant lane index (the helper
// it delegates to rotates by a fixed amount).
func rewriteExtractElement(w *ir.Walker, m *ir.Method, call *ir.Instruction) (bool, error) {
	if call.Output == nil || len(call.Args) != 2 {
		return false, cerror.New(cerror.StepOptimizer, "extractelement requires a destination and two arguments").WithOffending(call.String())
	}
	container, idxValue := call.Args[0], call.Args[1]
	if !idxValue.IsLiteral() {
		return false, cerror.New(cerror.StepOptimizer, "extractelement index must be a compile-time literal").WithOffending(call.String())
	}
	dest := *call.Output
	idx := int(idxValue.Literal.Int())
	w.Erase()
	lowering.ExtractElement(w, m, dest, container, idx)
	return true, nil
}

// rewriteInsertElement lowers a three-argument insertelement(container,
// value, index) call. The destination local first receives a copy of the
// source container (unless it already is that container) so the
// conditional-move insert sequence has a full vector to overwrite one
// lane of.
func rewriteInsertElement(w *ir.Walker, m *ir.Method, call *ir.Instruction) (bool, error) {
	if call.Output == nil || len(call.Args) != 3 {
		return false, cerror.New(cerror.StepOptimizer, "insertelement requires a destination and three arguments").WithOffending(call.String())
	}
	container, value, idxValue := call.Args[0], call.Args[1], call.Args[2]
	if !idxValue.IsLiteral() {
		return false, cerror.New(cerror.StepOptimizer, "insertelement index must be a compile-time literal").WithOffending(call.String())
	}
	dest := *call.Output
	idx := int(idxValue.Literal.Int())
	w.Erase()
	if !sameLocal(dest, container) {
		emplace(w, ir.NewMove(dest, container))
	}
	lowering.InsertElement(w, m, dest, value, idx)
	return true, nil
}

// rewriteGetElementPtr lowers a getelementptr(base, index...) call into
// the pointer/array/struct offset-accumulation sequence.
func rewriteGetElementPtr(w *ir.Walker, m *ir.Method, call *ir.Instruction) (bool, error) {
	if call.Output == nil || len(call.Args) < 2 {
		return false, cerror.New(cerror.StepOptimizer, "getelementptr requires a destination, a base and at least one index").WithOffending(call.String())
	}
	dest := *call.Output
	base := call.Args[0]
	indices := make([]lowering.Index, 0, len(call.Args)-1)
	for _, a := range call.Args[1:] {
		indices = append(indices, lowering.Index{Value: a})
	}
	w.Erase()
	if _, err := lowering.CalculateIndex(w, m, dest, base, indices); err != nil {
		return false, err
	}
	return true, nil
}

func sameLocal(a, b ir.Value) bool {
	return a.IsLocal() && b.IsLocal() && a.Local == b.Local
}

// SFUFunctionName reports which SFU function substring (recip, rsqrt,
// exp2, log2) name contains, if any.
func SFUFunctionName(name string) (string, bool) {
	for substr := range sfuRegisters {
		if strings.Contains(name, substr) {
			return substr, true
		}
	}
	return "", false
}
