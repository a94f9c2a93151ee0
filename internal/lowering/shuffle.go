package lowering

import (
	"github.com/xyproto/vc4c/internal/cerror"
	"github.com/xyproto/vc4c/internal/ir"
)

// Shuffle produces dest from source0/source1 under mask, a vector of lane
// indices: index < width(source0) selects from source0, otherwise from
// source1 with the width subtracted off. Special cases are checked in
// order before falling back to the general per-lane extract/insert form.
func Shuffle(w *ir.Walker, m *ir.Method, dest, source0, source1, mask ir.Value) (*ir.Walker, error) {
	if mask.IsUndefined() {
		return w, cerror.New(cerror.StepOptimizer, "vector shuffle mask is undefined").WithOffending(mask.String())
	}
	if mask.IsZeroInitializer() {
		return ExtractThenReplicate(w, m, dest, source0, 0), nil
	}
	if !mask.IsContainer() {
		return w, cerror.New(cerror.StepOptimizer, "vector shuffle mask is not a compile-time constant").WithOffending(mask.String())
	}

	width0 := source0.Type.Width()

	if isAscendingIdentity(mask, width0) {
		emplace(w, ir.NewMove(dest, source0))
		return w, nil
	}

	if lit, ok := mask.AllElementsSame(); ok {
		idx := int(lit.Int())
		src, lane := pickSource(source0, source1, width0, idx)
		return ExtractThenReplicate(w, m, dest, src, lane), nil
	}

	preZeroed := false
	for i, elemMask := range mask.Elements {
		if elemMask.IsUndefined() {
			// An undefined mask lane leaves that lane of dest untouched.
			// An ascending mask longer than source0's width is not
			// rejected: it fails the identity check above and reaches
			// this per-lane loop like any other constant mask.
			continue
		}
		if !elemMask.IsLiteral() {
			return w, cerror.New(cerror.StepOptimizer, "vector shuffle mask lane is not a literal").WithOffending(mask.String())
		}
		idx := int(elemMask.Literal.Int())
		src, lane := pickSource(source0, source1, width0, idx)

		if !preZeroed {
			if dest.IsLocal() && !dest.Local.HasWriter() {
				emplace(w, ir.NewMove(dest, ir.LiteralValue(ir.IntLiteral(0), dest.Type)))
			}
			preZeroed = true
		}

		extracted := newTemp(m, "shuffle.lane", dest.Type.ElementType())
		ExtractElement(w, m, extracted, src, lane)
		InsertElement(w, m, dest, extracted, i)
	}
	return w, nil
}

// ExtractThenReplicate extracts lane i of src and broadcasts it across
// dest via the replicate-all register.
func ExtractThenReplicate(w *ir.Walker, m *ir.Method, dest, src ir.Value, i int) *ir.Walker {
	if i == 0 {
		Replicate(w, src, &dest)
		return w
	}
	lane := newTemp(m, "shuffle.lane0", src.Type.ElementType())
	ExtractElement(w, m, lane, src, i)
	Replicate(w, lane, &dest)
	return w
}

func pickSource(source0, source1 ir.Value, width0, idx int) (ir.Value, int) {
	if idx < width0 {
		return source0, idx
	}
	return source1, idx - width0
}

func isAscendingIdentity(mask ir.Value, width0 int) bool {
	return mask.IsElementNumberSequence() && len(mask.Elements) <= width0
}
