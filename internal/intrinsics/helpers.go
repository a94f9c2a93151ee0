package intrinsics

import "github.com/xyproto/vc4c/internal/ir"

// emplace inserts ins before the walker's current position and advances
// past it, same idiom as internal/lowering's.
func emplace(w *ir.Walker, ins *ir.Instruction) {
	w.Emplace(ins)
	w.NextInBlock()
}

func newTemp(m *ir.Method, baseName string, t ir.DataType) ir.Value {
	return m.AddNewLocal(baseName, t).AsValue()
}
