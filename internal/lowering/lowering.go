// Package lowering implements the canonical instruction sequences used to
// express any operation that is not a single native ALU instruction:
// vector rotation, replication, extract/insert, shuffle, sign handling,
// extension/saturation, and pointer index calculation.
package lowering

import "github.com/xyproto/vc4c/internal/ir"

// emplace inserts ins immediately before the walker's current position and
// advances the walker past it, the "insert and move past" idiom every
// lowering helper uses to append a sequence without disturbing the
// instruction the walker started on.
func emplace(w *ir.Walker, ins *ir.Instruction) {
	w.Emplace(ins)
	w.NextInBlock()
}

// newTemp adds a fresh local of type t to m, named after baseName, and
// returns it as a value.
func newTemp(m *ir.Method, baseName string, t ir.DataType) ir.Value {
	return m.AddNewLocal(baseName, t).AsValue()
}
