package asm

import (
	"encoding/binary"

	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
)

// toBinary recursively serializes a compile-time constant Value into its
// little-endian byte representation: containers flatten lane by lane,
// literals write their scalar width, and undefined lanes zero-fill rather
// than error, so a partially-initialized global still has a fixed size.
func toBinary(v ir.Value, width int) ([]byte, error) {
	switch v.Kind {
	case ir.ValueContainer:
		out := make([]byte, 0, width*len(v.Elements))
		elemWidth := v.Type.ElementType().PhysicalWidth()
		for _, e := range v.Elements {
			b, err := toBinary(e, elemWidth)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	case ir.ValueUndefined:
		return make([]byte, width), nil
	case ir.ValueLiteral:
		return literalBytes(v.Literal, width), nil
	default:
		return nil, cerror.New(cerror.StepCodeGeneration, "global initializer must be a compile-time constant").
			WithOffending(v.String())
	}
}

func literalBytes(l ir.Literal, width int) []byte {
	buf := make([]byte, 8)
	if l.Kind == ir.LiteralReal && width == 4 {
		binary.LittleEndian.PutUint32(buf, l.ToImmediate())
	} else {
		binary.LittleEndian.PutUint64(buf, l.Uint())
	}
	if width > len(buf) {
		width = len(buf)
	}
	return buf[:width]
}

// padTo appends zero bytes until len(b) is a multiple of n.
func padTo(b []byte, n int) []byte {
	if rem := len(b) % n; rem != 0 {
		b = append(b, make([]byte, n-rem)...)
	}
	return b
}

// generateDataSegment lays out every global back to back: each global is
// padded to its own declared alignment before being appended, and the
// whole segment is padded to an 8-byte (one instruction word) multiple
// afterward so the code that follows starts on a word boundary.
func generateDataSegment(globals []*ir.Global) ([]byte, map[string]int, error) {
	var out []byte
	offsets := make(map[string]int, len(globals))
	for _, g := range globals {
		align := g.Alignment
		if align <= 0 {
			align = 4
		}
		out = padTo(out, align)
		offsets[g.Local.Name] = len(out)
		width := g.Local.Type.PhysicalWidth()
		b, err := toBinary(g.Initial, width)
		if err != nil {
			return nil, nil, err
		}
		if len(b) < width {
			b = append(b, make([]byte, width-len(b))...)
		}
		out = append(out, b...)
	}
	out = padTo(out, 8)
	return out, offsets, nil
}

// writeDataSegment emits the raw bytes in the active Mode: binary mode
// writes them verbatim, textual modes render them as a sequence of packed
// 64-bit words via the same writer used for instructions and records, so
// the whole output stays word-aligned in every mode.
func writeDataSegment(w *writer, data []byte) error {
	if w.mode != ModeBinary {
		w.comment("global data segment, %d byte(s)", len(data))
	}
	if w.mode == ModeBinary {
		_, err := w.out.Write(data)
		w.n += uint64(len(data)) / 8
		return err
	}
	for i := 0; i < len(data); i += 8 {
		chunk := data[i:min(i+8, len(data))]
		var buf [8]byte
		copy(buf[:], chunk)
		if err := w.writeWord(binary.LittleEndian.Uint64(buf[:])); err != nil {
			return err
		}
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
