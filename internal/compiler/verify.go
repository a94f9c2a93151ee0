package compiler

import (
	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
)

// verifyHazards checks the two scheduling invariants the lowering passes
// are responsible for establishing and that no later pass may reorder
// away: a vector rotation reading a non-accumulator register hardware
// register must be preceded by a wait-register Nop, and a write to one of
// the four SFU input registers must be followed by exactly two wait-sfu
// Nops before its result is read.
func verifyHazards(m *ir.Method) error {
	for _, b := range m.Blocks() {
		var prev *ir.Instruction
		pendingSFUBubbles := -1 // -1: none outstanding

		w := b.Begin()
		for w.Has() {
			ins := w.Get()

			if ins.Kind == ir.KindVectorRotation && rotationSourceNeedsWait(ins) {
				if prev == nil || prev.Kind != ir.KindNop || prev.DelayReason != ir.DelayWaitRegister {
					return cerror.New(cerror.StepVerifier, "vector rotation of a hardware register must be preceded by Nop(wait-register)").
						WithOffending(ins.String())
				}
			}

			if writesSFUInput(ins) {
				pendingSFUBubbles = 2
			} else if pendingSFUBubbles > 0 {
				if ins.Kind != ir.KindNop || ins.DelayReason != ir.DelayWaitSFU {
					return cerror.New(cerror.StepVerifier, "SFU input write must be followed by two Nop(wait-sfu) before any other instruction").
						WithOffending(ins.String())
				}
				pendingSFUBubbles--
			} else if pendingSFUBubbles == 0 && readsSFUOutput(ins) {
				pendingSFUBubbles = -1
			}

			prev = ins
			w.NextInBlock()
		}
	}
	return nil
}

func rotationSourceNeedsWait(ins *ir.Instruction) bool {
	if len(ins.Args) == 0 {
		return false
	}
	src := ins.Args[0]
	return src.IsRegister() && !src.Register.IsAccumulator()
}

func writesSFUInput(ins *ir.Instruction) bool {
	if ins.Output == nil || !ins.Output.IsRegister() {
		return false
	}
	switch ins.Output.Register {
	case ir.RegSFURecip, ir.RegSFURecipSqrt, ir.RegSFUExp2, ir.RegSFULog2:
		return true
	default:
		return false
	}
}

func readsSFUOutput(ins *ir.Instruction) bool {
	return ins.ReadsRegister(ir.RegSFUOutput)
}
