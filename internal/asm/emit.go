package asm

import (
	"io"

	"github.com/xyproto/vc4c/internal/ir"
)

// Emit serializes a fully lowered module to out in the given Mode: the
// doubled magic number and module-info header, one KernelInfo record per
// kernel, a zero-word delimiter, the global-data segment, a second
// zero-word delimiter, then every kernel's instruction stream back to
// back, offsets into which the kernel-info table already points.
func Emit(mod *ir.Module, mode Mode, out io.Writer) error {
	w := newWriter(out, mode)

	data, offsets, err := generateDataSegment(mod.Globals)
	if err != nil {
		return err
	}
	_ = offsets // available to a future relocation pass; UNIFORMs reference globals by name today.

	kernels := mod.Kernels()
	infos := make([]KernelInfo, 0, len(kernels))
	var cursor uint32
	for _, k := range kernels {
		var length uint32 // in emitted words, as emitMethod pairs them
		for _, b := range k.Blocks() {
			instrs := make([]*ir.Instruction, 0, b.Size())
			b.ForEach(func(ins *ir.Instruction) { instrs = append(instrs, ins) })
			length += uint32(len(schedulePairs(instrs)))
		}
		infos = append(infos, kernelInfoFromMethod(k, cursor, length))
		cursor += length
	}

	mi := ModuleInfo{
		Version:          formatVersion,
		KernelCount:      uint32(len(kernels)),
		GlobalDataOffset: 0, // header + kernel-info table precede it; computed below once its size is known.
		GlobalDataSize:   uint32(len(data) / 8),
	}
	sizing := newWriter(io.Discard, ModeBinary)
	if err := mi.write(sizing); err != nil {
		return err
	}
	for _, ki := range infos {
		if err := ki.write(sizing); err != nil {
			return err
		}
	}
	mi.GlobalDataOffset = uint32(sizing.n) + 1 // + the delimiter word before the data
	if err := mi.write(w); err != nil {
		return err
	}

	for _, ki := range infos {
		if err := ki.write(w); err != nil {
			return err
		}
	}

	if err := w.writeWord(0); err != nil { // delimiter between kernel-info table and global data
		return err
	}
	if err := writeDataSegment(w, data); err != nil {
		return err
	}
	if err := w.writeWord(0); err != nil { // delimiter between global data and code
		return err
	}

	for _, k := range kernels {
		if err := emitMethod(w, k); err != nil {
			return err
		}
	}
	return nil
}

// emitMethod writes one kernel's instruction words. Within each block, an
// add-ALU and a mul-ALU instruction that schedulePairs finds combinable
// share one 64-bit word; anything left over (including every
// control-flow/signal-only instruction) falls back to the degenerate
// single-ALU encoding.
func emitMethod(w *writer, m *ir.Method) error {
	if w.mode != ModeBinary {
		w.comment("kernel %s", m.Name)
	}
	for _, b := range m.Blocks() {
		instrs := make([]*ir.Instruction, 0, b.Size())
		b.ForEach(func(ins *ir.Instruction) { instrs = append(instrs, ins) })
		for _, sw := range schedulePairs(instrs) {
			if err := emitWord(w, sw); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitWord(w *writer, sw scheduledWord) error {
	if sw.Mul == nil {
		if w.mode == ModeAssembler {
			w.comment("%s", sw.Add.String())
		}
		return w.writeWord(EncodeInstruction(sw.Add).Encode())
	}
	if w.mode == ModeAssembler {
		w.comment("%s ; %s", sw.Add.String(), sw.Mul.String())
	}
	return w.writeWord(EncodePair(sw.Add, sw.Mul).Encode())
}
