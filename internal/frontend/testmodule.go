package frontend

import "github.com/xyproto/vc4c/internal/ir"

// BuildTestModule assembles a minimal single-kernel Module by hand, for
// tests that exercise the core pipeline without a real front-end: one
// kernel named name, taking params in order, with its body built by fill
// against the returned walker.
func BuildTestModule(name string, params []ir.Parameter, fill func(w *ir.Walker, m *ir.Method)) *ir.Module {
	mod := ir.NewModule("test")
	m := ir.NewMethod(name, ir.DataType{Kind: ir.KindScalar})
	m.IsKernel = true
	for _, p := range params {
		m.AddParameter(p)
	}
	entry := m.AddBlock(ir.NewLocal(name+".entry", ir.DataType{}))
	if fill != nil {
		fill(entry.End(), m)
	}
	mod.AddMethod(m)
	return mod
}
