package ir

// TryPrecalculate folds an Operation instruction whose arguments are all
// compile-time constants into an equivalent MoveOperation carrying the
// computed value, using the opcode table's Precalc function. Vector
// containers are folded lane-by-lane against any scalar operands.
// Returns ok=false when the opcode isn't foldable or an argument isn't
// constant.
func TryPrecalculate(ins *Instruction) (*Instruction, bool) {
	if ins.Kind != KindOperation || ins.Op.Precalc == nil || ins.Output == nil {
		return nil, false
	}
	for _, a := range ins.Args {
		if !a.IsCompileTimeConstant() {
			return nil, false
		}
	}

	width := 1
	for _, a := range ins.Args {
		if a.IsContainer() {
			width = len(a.Elements)
		}
	}

	var folded Value
	if width == 1 {
		v, ok := ins.Op.Precalc(ins.Args...)
		if !ok {
			return nil, false
		}
		folded = v
	} else {
		elems := make([]Value, width)
		for i := 0; i < width; i++ {
			lane := make([]Value, len(ins.Args))
			for j, a := range ins.Args {
				if a.IsContainer() {
					lane[j] = a.Elements[i]
				} else {
					lane[j] = a
				}
			}
			v, ok := ins.Op.Precalc(lane...)
			if !ok {
				return nil, false
			}
			elems[i] = v
		}
		folded = ContainerValue(elems, ins.Output.Type)
	}

	mv := NewMove(*ins.Output, folded)
	mv.CopyExtrasFrom(ins)
	return mv, true
}
