package ir

// Global is a module-scope value placed in the global-data segment: a
// constant, a __constant/__local-initialized buffer, or a literal table
// generated by the lowering passes (e.g. the per-lane rotation masks).
type Global struct {
	Local      *Local
	Initial    Value
	Constant   bool
	Alignment  int
}

// Module is a complete compilation unit: every kernel and helper Method
// plus the Globals they reference. A frontend produces exactly one Module
// per input source file.
type Module struct {
	Methods []*Method
	Globals []*Global

	// SourceName is the input file this module was parsed from, carried
	// through to diagnostics; the emitted binary does not record it.
	SourceName string
}

// NewModule creates an empty module.
func NewModule(sourceName string) *Module {
	return &Module{SourceName: sourceName}
}

// AddMethod appends m to the module and wires its back-reference.
func (mod *Module) AddMethod(m *Method) *Method {
	m.module = mod
	mod.Methods = append(mod.Methods, m)
	return m
}

// AddGlobal appends a new global and registers its local for lookup.
func (mod *Module) AddGlobal(g *Global) *Global {
	mod.Globals = append(mod.Globals, g)
	return g
}

// Kernels returns every method flagged as a kernel entry point, in
// declaration order.
func (mod *Module) Kernels() []*Method {
	var out []*Method
	for _, m := range mod.Methods {
		if m.IsKernel {
			out = append(out, m)
		}
	}
	return out
}

// MethodByName looks up a non-kernel helper or kernel by name.
func (mod *Module) MethodByName(name string) (*Method, bool) {
	for _, m := range mod.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// GlobalByName looks up a global by its local's name.
func (mod *Module) GlobalByName(name string) (*Global, bool) {
	for _, g := range mod.Globals {
		if g.Local.Name == name {
			return g, true
		}
	}
	return nil, false
}
