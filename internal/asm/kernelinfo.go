package asm

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xyproto/vc4c/internal/ir"
)

// Mode selects how a module is rendered to its writer.
type Mode int

const (
	ModeBinary Mode = iota
	ModeHex
	ModeAssembler
)

// magicNumber identifies a compiled module; written twice back to back at
// the start of every output, so a reader that mis-detects endianness still
// sees a recognizable pattern.
const magicNumber uint64 = 0xDEADBEAF

// ParamInfo flags, packed into one bitfield alongside the parameter's byte
// size and element count.
const (
	paramFlagPointer  = 1 << 0
	paramFlagInput    = 1 << 1
	paramFlagOutput   = 1 << 2
	paramFlagConstant = 1 << 3
	paramFlagRestrict = 1 << 4
	paramFlagVolatile = 1 << 5
	paramFlagSigned   = 1 << 6
	paramFlagFloating = 1 << 7
)

// ParamInfo describes one kernel parameter for the runtime's argument
// marshaller: its size, qualifiers, address space, and the source name and
// type name a debugger or the --kernel-info flag reports back.
type ParamInfo struct {
	Name     string
	TypeName string

	SizeBytes int
	Elements  int

	AddressSpace ir.AddressSpace
	Pointer      bool
	Input        bool
	Output       bool
	Constant     bool
	Restrict     bool
	Volatile     bool
	Signed       bool
	Floating     bool
}

func paramInfoFromParameter(p ir.Parameter) ParamInfo {
	t := p.Local.Type
	pi := ParamInfo{
		Name:      p.Local.Name,
		TypeName:  t.String(),
		SizeBytes: t.ElementType().PhysicalWidth(),
		Elements:  t.Width(),
		Signed:    t.ElementType().SignedHint,
		Floating:  t.IsFloat(),
	}
	if t.IsPointer() {
		pi.Pointer = true
		pi.AddressSpace = t.AddressSpace
		pi.Input = true
		pi.Output = t.AddressSpace != ir.AddressConstant
		pi.Constant = t.AddressSpace == ir.AddressConstant
	} else {
		pi.Input = true
	}
	return pi
}

func (pi ParamInfo) flags() uint32 {
	var f uint32
	if pi.Pointer {
		f |= paramFlagPointer
	}
	if pi.Input {
		f |= paramFlagInput
	}
	if pi.Output {
		f |= paramFlagOutput
	}
	if pi.Constant {
		f |= paramFlagConstant
	}
	if pi.Restrict {
		f |= paramFlagRestrict
	}
	if pi.Volatile {
		f |= paramFlagVolatile
	}
	if pi.Signed {
		f |= paramFlagSigned
	}
	if pi.Floating {
		f |= paramFlagFloating
	}
	return f
}

// bitfieldWord packs size, element count, address space and flags into the
// single 64-bit word a ParamInfo record opens with.
func (pi ParamInfo) bitfieldWord() uint64 {
	return uint64(pi.SizeBytes&0xFFFF) |
		uint64(pi.Elements&0xFF)<<16 |
		uint64(pi.AddressSpace&0x7)<<24 |
		uint64(pi.flags())<<32
}

func (pi ParamInfo) write(w *writer) error {
	if w.mode != ModeBinary {
		w.comment("parameter %q : %s", pi.Name, pi.TypeName)
	}
	if err := w.writeWord(pi.bitfieldWord()); err != nil {
		return err
	}
	if err := w.writeName(pi.Name); err != nil {
		return err
	}
	return w.writeName(pi.TypeName)
}

// Kernel-info bitfield flags.
const (
	kernelFlagHasWorkGroupSizeHint = 1 << 0
)

// Kernel-info bitfield layout: Offset and Length each get a 24-bit field -
// generous enough for any real kernel's instruction-word count or code
// offset - leaving the high 16 bits entirely free for flags, so the
// work-group-size-hint bit never lands on a bit Offset or Length itself
// occupies.
const (
	kernelOffsetBits = 24
	kernelLengthBits = 24
	kernelOffsetMask = uint64(1)<<kernelOffsetBits - 1
	kernelLengthMask = uint64(1)<<kernelLengthBits - 1
)

// KernelInfo describes one kernel entry point: its code offset and length
// in instruction words, the required/hinted work-group size, and its
// parameter list.
type KernelInfo struct {
	Name   string
	Offset uint32 // instruction-word offset of the kernel's first instruction
	Length uint32 // instruction-word count

	RequiredWorkGroupSize [3]uint32
	Parameters            []ParamInfo
}

func kernelInfoFromMethod(m *ir.Method, offset, length uint32) KernelInfo {
	ki := KernelInfo{Name: m.Name, Offset: offset, Length: length, RequiredWorkGroupSize: m.WorkGroupSize}
	for _, p := range m.Parameters {
		ki.Parameters = append(ki.Parameters, paramInfoFromParameter(p))
	}
	return ki
}

func (ki KernelInfo) bitfieldWord() uint64 {
	var flags uint64
	if ki.RequiredWorkGroupSize[0] != 0 {
		flags |= kernelFlagHasWorkGroupSizeHint
	}
	return uint64(ki.Offset)&kernelOffsetMask |
		(uint64(ki.Length)&kernelLengthMask)<<kernelOffsetBits |
		flags<<(kernelOffsetBits+kernelLengthBits)
}

func packWorkGroupSize(size [3]uint32) uint64 {
	return uint64(size[0]&0x1FFFFF) | uint64(size[1]&0x1FFFFF)<<21 | uint64(size[2]&0x1FFFFF)<<42
}

func (ki KernelInfo) write(w *writer) error {
	if w.mode != ModeBinary {
		w.comment("kernel %q, %d parameter(s), %d work-item(s)/group", ki.Name, len(ki.Parameters),
			ki.RequiredWorkGroupSize[0]*maxUint(1, ki.RequiredWorkGroupSize[1])*maxUint(1, ki.RequiredWorkGroupSize[2]))
	}
	if err := w.writeWord(ki.bitfieldWord()); err != nil {
		return err
	}
	if err := w.writeWord(packWorkGroupSize(ki.RequiredWorkGroupSize)); err != nil {
		return err
	}
	if err := w.writeName(ki.Name); err != nil {
		return err
	}
	if err := w.writeWord(uint64(len(ki.Parameters))); err != nil {
		return err
	}
	for _, p := range ki.Parameters {
		if err := p.write(w); err != nil {
			return err
		}
	}
	return nil
}

func maxUint(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// ModuleInfo is the fixed-size header preceding the kernel-info table: the
// format version, kernel count, and the global-data segment's location
// within the output, expressed in 64-bit words from the start of the file.
type ModuleInfo struct {
	Version          uint32
	KernelCount       uint32
	GlobalDataOffset  uint32
	GlobalDataSize    uint32
	StackFrameSize    uint32
}

const formatVersion = 1

func (mi ModuleInfo) write(w *writer) error {
	if w.mode != ModeBinary {
		w.comment("module with %d kernel(s), %d word(s) of global data", mi.KernelCount, mi.GlobalDataSize)
	}
	if err := w.writeWord(magicNumber); err != nil {
		return err
	}
	if err := w.writeWord(magicNumber); err != nil {
		return err
	}
	bitfield := uint64(mi.Version) |
		uint64(mi.KernelCount)<<16 |
		uint64(mi.GlobalDataOffset)<<32 |
		uint64(mi.GlobalDataSize)<<48
	if err := w.writeWord(bitfield); err != nil {
		return err
	}
	return w.writeWord(uint64(mi.StackFrameSize))
}

// writer wraps the destination io.Writer with the active output Mode and a
// running word index, used by both the binary raw-word path and the
// hex/assembler textual paths.
type writer struct {
	out  io.Writer
	mode Mode
	n    uint64
}

func newWriter(out io.Writer, mode Mode) *writer { return &writer{out: out, mode: mode} }

func (w *writer) writeWord(v uint64) error {
	w.n++
	switch w.mode {
	case ModeBinary:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		_, err := w.out.Write(buf[:])
		return err
	case ModeHex:
		_, err := fmt.Fprintf(w.out, "0x%08x, 0x%08x,\n", uint32(v), uint32(v>>32))
		return err
	default: // ModeAssembler
		_, err := fmt.Fprintf(w.out, "%d:\t0x%016x\n", w.n-1, v)
		return err
	}
}

func (w *writer) comment(format string, args ...any) {
	if w.mode == ModeBinary {
		return
	}
	fmt.Fprintf(w.out, "// "+format+"\n", args...)
}

// writeName writes a string as copyName does in the original tool: padded
// to an 8-byte-word boundary with NUL bytes so a fixed-stride reader can
// skip over names without a length prefix, in binary mode; just the
// literal text (one word's worth of commentary) otherwise.
func (w *writer) writeName(s string) error {
	if w.mode != ModeBinary {
		w.comment("name: %q", s)
		return nil
	}
	padded := (len(s) + 8) / 8 * 8
	buf := make([]byte, padded)
	copy(buf, s)
	n, err := w.out.Write(buf)
	w.n += uint64(n) / 8
	return err
}
