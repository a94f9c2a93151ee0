package ir

import "fmt"

// Parameter is one formal argument of a Method: a kernel parameter carries
// additional decorations (builtin work-item value, pointer address space)
// that the intrinsics legalization pass consults when wiring UNIFORM reads.
type Parameter struct {
	Local *Local
	Decor Decoration

	// MaxValue bounds a builtin parameter's possible values (e.g. local
	// size is capped by the hardware's maximum work-group size), used to
	// pick the narrowest legal lowering of an otherwise generic load.
	MaxValue uint32
}

// StackAllocation reserves a fixed-size, fixed-alignment private-memory
// slot for a Method, addressed relative to the per-QPU stack-frame base.
type StackAllocation struct {
	Local     *Local
	Size      int
	Alignment int
}

// Method is one kernel or helper function: an ordered sequence of basic
// blocks, its formal parameters, and the pool of locals it defines.
type Method struct {
	Name       string
	ReturnType DataType
	Parameters []Parameter

	IsKernel      bool
	WorkGroupSize [3]uint32 // 0 == unconstrained

	blocks    []*BasicBlock
	locals    map[string]*Local
	localSeq  int
	StackAllocs []StackAllocation

	module *Module
}

// NewMethod creates an empty method with no blocks and no locals.
func NewMethod(name string, returnType DataType) *Method {
	return &Method{Name: name, ReturnType: returnType, locals: make(map[string]*Local)}
}

// AddParameter appends a formal parameter and registers its local in the
// method's local pool.
func (m *Method) AddParameter(p Parameter) {
	m.Parameters = append(m.Parameters, p)
	m.locals[p.Local.Name] = p.Local
}

// AddNewLocal creates and registers a fresh Local, disambiguating baseName
// against every name already used in this method by appending a numeric
// suffix - mirroring how a compiler mints temporaries for lowered
// sub-expressions that had no source-level name.
func (m *Method) AddNewLocal(baseName string, t DataType) *Local {
	name := baseName
	for {
		if _, exists := m.locals[name]; !exists {
			break
		}
		m.localSeq++
		name = fmt.Sprintf("%s.%d", baseName, m.localSeq)
	}
	l := NewLocal(name, t)
	m.locals[name] = l
	return l
}

// FindLocal looks up a previously created local by name.
func (m *Method) FindLocal(name string) (*Local, bool) {
	l, ok := m.locals[name]
	return l, ok
}

// AddStackAllocation reserves a private-memory slot and returns the local
// used to address it.
func (m *Method) AddStackAllocation(baseName string, t DataType, size, alignment int) *Local {
	l := m.AddNewLocal(baseName, PointerTo(t, AddressPrivate, alignment))
	m.StackAllocs = append(m.StackAllocs, StackAllocation{Local: l, Size: size, Alignment: alignment})
	return l
}

// AddBlock appends a new basic block under label to the method's layout
// order and emits the label as the block's first instruction.
func (m *Method) AddBlock(label *Local) *BasicBlock {
	b := NewBasicBlock(label)
	b.method = m
	if n := len(m.blocks); n > 0 {
		m.blocks[n-1].nextBlock = b
	}
	m.blocks = append(m.blocks, b)
	b.PushBack(NewBranchLabel(label))
	return b
}

// Blocks returns the method's basic blocks in layout order. Callers must
// not mutate the returned slice.
func (m *Method) Blocks() []*BasicBlock { return m.blocks }

// BlockByLabelName finds the block whose label carries the given name.
func (m *Method) BlockByLabelName(name string) (*BasicBlock, bool) {
	for _, b := range m.blocks {
		if b.Label != nil && b.Label.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Walk returns a Walker positioned at the first instruction of the
// method's first block, or an exhausted Walker if the method is empty.
func (m *Method) Walk() *Walker {
	if len(m.blocks) == 0 {
		return &Walker{}
	}
	return m.blocks[0].Begin()
}

// CountInstructions sums instruction counts across every block, useful for
// size-based heuristics (e.g. whether a method is worth inlining).
func (m *Method) CountInstructions() int {
	n := 0
	for _, b := range m.blocks {
		n += b.Size()
	}
	return n
}

func (m *Method) String() string {
	return fmt.Sprintf("%s (%d params, %d blocks)", m.Name, len(m.Parameters), len(m.blocks))
}
