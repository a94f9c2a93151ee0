package lowering

import "github.com/xyproto/vc4c/internal/ir"

// ZeroExtend widens a narrow integer already living in a 32-bit register
// to its full-width zero-extended value by masking off everything above
// the source width.
func ZeroExtend(w *ir.Walker, m *ir.Method, dest, src ir.Value, srcWidth int) *ir.Walker {
	and, _ := ir.LookupOpCode("and")
	mask := ir.LiteralValue(ir.UintLiteral((uint64(1)<<uint(srcWidth))-1), ir.UInt32)
	emplace(w, ir.NewOperation(and, dest, src, mask))
	return w
}

// SignExtend widens a narrow signed integer by shifting it up against the
// register's top bit and arithmetic-shifting back down by the same
// amount, replicating the sign bit into every higher bit.
func SignExtend(w *ir.Walker, m *ir.Method, dest, src ir.Value, srcWidth int) *ir.Walker {
	shl, _ := ir.LookupOpCode("shl")
	asr, _ := ir.LookupOpCode("asr")
	amount := ir.LiteralValue(ir.IntLiteral(int64(32-srcWidth)), ir.Int32)
	shifted := newTemp(m, "sext.shifted", ir.Int32)
	emplace(w, ir.NewOperation(shl, shifted, src, amount))
	emplace(w, ir.NewOperation(asr, dest, shifted, amount))
	return w
}

// TruncateToWriterWidth narrows a 32-bit value to destWidth via a move
// carrying the matching pack mode, choosing the saturating variant when
// requested.
func TruncateToWriterWidth(w *ir.Walker, dest, src ir.Value, destWidth int, signed, saturate bool) *ir.Walker {
	pack := selectPackMode(destWidth, signed, saturate)
	emplace(w, ir.NewMove(dest, src).WithPack(pack))
	return w
}

func selectPackMode(destWidth int, signed, saturate bool) ir.PackMode {
	switch {
	case destWidth <= 8 && saturate && !signed:
		return ir.PackInt32ToUCharSaturate
	case destWidth <= 8:
		return ir.PackInt32ToChar
	case destWidth <= 16 && saturate:
		return ir.PackInt32ToShortSaturate
	case destWidth <= 16 && !signed:
		return ir.PackInt32ToUShortTruncate
	case saturate:
		return ir.PackInt32Saturate
	default:
		return ir.PackNone
	}
}

// SaturateLiteral statically clamps a literal input to the representable
// range of a signed/unsigned integer of the given width, the compile-time
// counterpart of TruncateToWriterWidth's pack-mode saturation.
func SaturateLiteral(v int64, width int, signed bool) int64 {
	if signed {
		max := int64(1)<<uint(width-1) - 1
		min := -(int64(1) << uint(width-1))
		if v > max {
			return max
		}
		if v < min {
			return min
		}
		return v
	}
	max := int64(1)<<uint(width) - 1
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}
