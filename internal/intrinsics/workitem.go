// Package intrinsics rewrites abstract method calls and generic arithmetic
// operations into the target's native ALU opcodes, SFU sequences, and
// multi-instruction algorithms.
package intrinsics

import (
	"fmt"

	"github.com/xyproto/vc4c/internal/ir"
)

// wellKnownLocal returns the method-scoped local the runtime populates via
// UNIFORMs before kernel dispatch, creating it on first reference.
func wellKnownLocal(m *ir.Method, name string) ir.Value {
	if l, ok := m.FindLocal(name); ok {
		return l.AsValue()
	}
	return m.AddNewLocal(name, ir.UInt32).AsValue()
}

func dimLocal(m *ir.Method, prefix string, dim int) ir.Value {
	axis := [3]string{"x", "y", "z"}[dim]
	return wellKnownLocal(m, fmt.Sprintf("%%%s_%s", prefix, axis))
}

// lowerByDim picks the dim'th of three well-known locals, either directly
// (dim is a compile-time literal) or via a decision tree comparing dim
// against 0, 1, 2 with set-flags XOR tests and conditional moves.
func lowerByDim(w *ir.Walker, m *ir.Method, dest ir.Value, dim ir.Value, prefix string, decor ir.Decoration) *ir.Walker {
	if dim.IsLiteral() {
		d := int(dim.Literal.Int())
		if d < 0 || d > 2 {
			emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.IntLiteral(0), dest.Type)).WithDecoration(decor))
			return w
		}
		emplace(w, ir.NewMove(dest, dimLocal(m, prefix, d)).WithDecoration(decor))
		return w
	}
	xor, _ := ir.LookupOpCode("xor")
	for d := 0; d < 3; d++ {
		cmp := newTemp(m, "dim.cmp", ir.Int32)
		lit := ir.LiteralValue(ir.IntLiteral(int64(d)), ir.Int32)
		emplace(w, ir.NewOperation(xor, cmp, dim, lit).WithSetFlags(ir.FlagsSet))
		emplace(w, ir.NewMove(dest, dimLocal(m, prefix, d)).WithCondition(ir.CondZeroSet).WithDecoration(decor))
	}
	return w
}

// WorkDim lowers get_work_dim() to a read of the well-known %work_dim
// local.
func WorkDim(w *ir.Walker, m *ir.Method, dest ir.Value) *ir.Walker {
	emplace(w, ir.NewMove(dest, wellKnownLocal(m, "%work_dim")).WithDecoration(ir.DecorBuiltinWorkDimensions))
	return w
}

func NumGroups(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	return lowerByDim(w, m, dest, dim, "num_groups", ir.DecorBuiltinNumGroups)
}

func GroupID(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	return lowerByDim(w, m, dest, dim, "group_id", ir.DecorBuiltinGroupID)
}

func GlobalOffset(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	return lowerByDim(w, m, dest, dim, "global_offset", ir.DecorBuiltinGlobalOffset)
}

// unpackByte extracts byte index dim (0,1,2) from a single 3-bytes-per-word
// UNIFORM: dest = (packed >> (dim*8)) & 0xFF.
func unpackByte(w *ir.Walker, m *ir.Method, dest, packed, dim ir.Value, decor ir.Decoration) *ir.Walker {
	shl, _ := ir.LookupOpCode("shl")
	shr, _ := ir.LookupOpCode("shr")
	and, _ := ir.LookupOpCode("and")
	three := ir.LiteralValue(ir.IntLiteral(3), ir.Int32) // dim << 3 == dim*8
	shift := newTemp(m, "byteoffset.shift", ir.Int32)
	if dim.IsLiteral() {
		shift = ir.LiteralValue(ir.IntLiteral(dim.Literal.Int()*8), ir.Int32)
	} else {
		emplace(w, ir.NewOperation(shl, shift, dim, three))
	}
	shifted := newTemp(m, "byteoffset.val", ir.UInt32)
	emplace(w, ir.NewOperation(shr, shifted, packed, shift))
	mask := ir.LiteralValue(ir.IntLiteral(0xFF), ir.UInt32)
	emplace(w, ir.NewOperation(and, dest, shifted, mask).WithDecoration(decor))
	return w
}

func LocalSize(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	packed := wellKnownLocal(m, "%local_sizes")
	return unpackByte(w, m, dest, packed, dim, ir.DecorBuiltinLocalSize)
}

func LocalID(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	packed := wellKnownLocal(m, "%local_ids")
	return unpackByte(w, m, dest, packed, dim, ir.DecorBuiltinLocalID)
}

// GlobalSize lowers get_global_size(dim) = local_size(dim) * num_groups(dim).
func GlobalSize(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	ls := newTemp(m, "global_size.ls", ir.UInt32)
	LocalSize(w, m, ls, dim)
	ng := newTemp(m, "global_size.ng", ir.UInt32)
	NumGroups(w, m, ng, dim)
	mul, _ := ir.LookupOpCode("mul24")
	emplace(w, ir.NewOperation(mul, dest, ls, ng).WithDecoration(ir.DecorBuiltinGlobalSize))
	return w
}

// GlobalID lowers get_global_id(dim) =
// global_offset(dim) + group_id(dim)*local_size(dim) + local_id(dim).
func GlobalID(w *ir.Walker, m *ir.Method, dest, dim ir.Value) *ir.Walker {
	off := newTemp(m, "global_id.off", ir.UInt32)
	GlobalOffset(w, m, off, dim)
	gid := newTemp(m, "global_id.gid", ir.UInt32)
	GroupID(w, m, gid, dim)
	ls := newTemp(m, "global_id.ls", ir.UInt32)
	LocalSize(w, m, ls, dim)
	lid := newTemp(m, "global_id.lid", ir.UInt32)
	LocalID(w, m, lid, dim)

	mul, _ := ir.LookupOpCode("mul24")
	add, _ := ir.LookupOpCode("add")
	groupOffset := newTemp(m, "global_id.groupoffset", ir.UInt32)
	emplace(w, ir.NewOperation(mul, groupOffset, gid, ls))
	sum1 := newTemp(m, "global_id.sum1", ir.UInt32)
	emplace(w, ir.NewOperation(add, sum1, off, groupOffset))
	emplace(w, ir.NewOperation(add, dest, sum1, lid).WithDecoration(ir.DecorBuiltinGlobalID))
	return w
}
