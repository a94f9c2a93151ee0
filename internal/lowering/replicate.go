package lowering

import "github.com/xyproto/vc4c/internal/ir"

// Replicate writes src into the replicate-all register; every lane then
// reads back the value of its own quad's lane 0. When dest is non-nil the
// replicated value is additionally materialized into a normal local with
// a trailing move, for callers that need it as an ordinary operand rather
// than read directly off the register.
func Replicate(w *ir.Walker, src ir.Value, dest *ir.Value) *ir.Walker {
	emplace(w, ir.NewMove(ir.RegisterValue(ir.RegReplicateAll, src.Type), src))
	if dest != nil {
		emplace(w, ir.NewMove(*dest, ir.RegisterValue(ir.RegReplicateAll, dest.Type)))
	}
	return w
}
