package ir

import "fmt"

// Kind discriminates which instruction variant an *Instruction represents.
// Modeled as a flat tagged union rather than a variant-per-type hierarchy:
// the hot paths (pre-calculation, the walker, use-def maintenance) read and
// write one concrete struct instead of going through virtual dispatch, and
// an *Instruction's address is stable identity for the lifetime of its
// owning block - exactly what the local/instruction back-references need.
type Kind int

const (
	KindMove Kind = iota
	KindOperation
	KindVectorRotation
	KindMethodCall
	KindBranch
	KindBranchLabel
	KindReturn
	KindNop
	KindSemaphoreAdjustment
	KindMutexLock
	KindLoadImmediate
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindOperation:
		return "op"
	case KindVectorRotation:
		return "rotate"
	case KindMethodCall:
		return "call"
	case KindBranch:
		return "branch"
	case KindBranchLabel:
		return "label"
	case KindReturn:
		return "return"
	case KindNop:
		return "nop"
	case KindSemaphoreAdjustment:
		return "semaphore"
	case KindMutexLock:
		return "mutex"
	case KindLoadImmediate:
		return "loadimm"
	default:
		return "?"
	}
}

// DelayReason tags why a Nop was inserted, so later passes know which
// hazard it exists to cover and whether it may be replaced by real work.
type DelayReason int

const (
	DelayBranch DelayReason = iota
	DelayWaitSFU
	DelayWaitTMU
	DelayWaitRegister
	DelayThreadEnd
	DelayWaitUniform
	DelayWaitVPM
)

func (d DelayReason) String() string {
	switch d {
	case DelayBranch:
		return "branch-delay"
	case DelayWaitSFU:
		return "wait-sfu"
	case DelayWaitTMU:
		return "wait-tmu"
	case DelayWaitRegister:
		return "wait-register"
	case DelayThreadEnd:
		return "thread-end"
	case DelayWaitUniform:
		return "wait-uniform"
	case DelayWaitVPM:
		return "wait-vpm"
	default:
		return "?"
	}
}

// Instruction is the single concrete instruction type; Kind selects which
// of the variant-specific fields below are meaningful. It lives only by
// owning reference from exactly one BasicBlock via the intrusive prev/next
// list; copying an *Instruction after insertion is a programming error,
// since its identity is used as a map key in locals' user-sets.
type Instruction struct {
	Kind Kind

	prev, next *Instruction
	block      *BasicBlock

	Output *Value
	Args   []Value

	Cond     Condition
	SetFlags SetFlags
	Pack     PackMode
	Unpack   UnpackMode
	Decor    Decoration

	// KindOperation
	Op OpCode

	// KindVectorRotation: Args[0] is the source, Offset the rotation amount
	// (literal, small-immediate, or a register/local value).
	Offset Value

	// KindMethodCall
	MethodName string

	// KindBranch: Target is the label being jumped to. KindBranchLabel:
	// Target is the label this instruction defines.
	Target *Local

	// KindNop
	DelayReason DelayReason

	// KindSemaphoreAdjustment
	SemaphoreID        int
	SemaphoreIncrement bool

	// KindMutexLock
	MutexAcquire bool

	// KindLoadImmediate
	Immediate Literal
}

func NewMove(dest, src Value) *Instruction {
	d := dest
	return &Instruction{Kind: KindMove, Output: &d, Args: []Value{src}, Cond: CondAlways}
}

func NewOperation(op OpCode, dest Value, args ...Value) *Instruction {
	d := dest
	return &Instruction{Kind: KindOperation, Output: &d, Args: args, Op: op, Cond: CondAlways}
}

func NewVectorRotation(dest, src, offset Value) *Instruction {
	d := dest
	return &Instruction{Kind: KindVectorRotation, Output: &d, Args: []Value{src}, Offset: offset, Cond: CondAlways}
}

func NewMethodCall(dest *Value, name string, args ...Value) *Instruction {
	return &Instruction{Kind: KindMethodCall, Output: dest, MethodName: name, Args: args, Cond: CondAlways}
}

func NewBranch(target *Local, cond Condition, condValue Value) *Instruction {
	return &Instruction{Kind: KindBranch, Target: target, Args: []Value{condValue}, Cond: cond}
}

func NewBranchLabel(label *Local) *Instruction {
	return &Instruction{Kind: KindBranchLabel, Target: label, Cond: CondAlways}
}

func NewReturn(val *Value) *Instruction {
	var args []Value
	if val != nil {
		args = []Value{*val}
	}
	return &Instruction{Kind: KindReturn, Args: args, Cond: CondAlways}
}

func NewNop(reason DelayReason) *Instruction {
	return &Instruction{Kind: KindNop, DelayReason: reason, Cond: CondAlways}
}

func NewSemaphoreAdjustment(id int, increase bool) *Instruction {
	return &Instruction{Kind: KindSemaphoreAdjustment, SemaphoreID: id, SemaphoreIncrement: increase, Cond: CondAlways}
}

func NewMutexLock(acquire bool) *Instruction {
	return &Instruction{Kind: KindMutexLock, MutexAcquire: acquire, Cond: CondAlways}
}

func NewLoadImmediate(dest Value, lit Literal) *Instruction {
	d := dest
	return &Instruction{Kind: KindLoadImmediate, Output: &d, Immediate: lit, Cond: CondAlways}
}

// CopyExtrasFrom copies condition, set-flags, pack/unpack and decorations
// from src onto ins, leaving the variant-specific payload untouched.
func (ins *Instruction) CopyExtrasFrom(src *Instruction) *Instruction {
	ins.Cond = src.Cond
	ins.SetFlags = src.SetFlags
	ins.Pack = src.Pack
	ins.Unpack = src.Unpack
	ins.Decor = src.Decor
	return ins
}

func (ins *Instruction) WithCondition(c Condition) *Instruction { ins.Cond = c; return ins }
func (ins *Instruction) WithSetFlags(s SetFlags) *Instruction    { ins.SetFlags = s; return ins }
func (ins *Instruction) WithDecoration(d Decoration) *Instruction {
	ins.Decor |= d
	return ins
}
func (ins *Instruction) WithPack(p PackMode) *Instruction     { ins.Pack = p; return ins }
func (ins *Instruction) WithUnpack(u UnpackMode) *Instruction { ins.Unpack = u; return ins }

// HasConditionalExecution reports whether this instruction only fires
// under a non-default condition.
func (ins *Instruction) HasConditionalExecution() bool { return ins.Cond != CondAlways }

// forEachLocalArg invokes fn for every argument that references a Local.
func (ins *Instruction) forEachLocalArg(fn func(*Local)) {
	for _, a := range ins.Args {
		if a.IsLocal() {
			fn(a.Local)
		}
	}
	if ins.Kind == KindVectorRotation && ins.Offset.IsLocal() {
		fn(ins.Offset.Local)
	}
}

// UsedLocals reports every local this instruction reads or writes, tagged
// with its role, for use-def maintenance and for precalculation checks.
func (ins *Instruction) UsedLocals() map[*Local]UserRole {
	out := make(map[*Local]UserRole)
	ins.forEachLocalArg(func(l *Local) { out[l] = RoleReader })
	if ins.Output != nil && ins.Output.IsLocal() {
		out[ins.Output.Local] = RoleWriter
	}
	return out
}

// ReadsLocal / WritesLocal answer the narrower, more common queries.
func (ins *Instruction) ReadsLocal(l *Local) bool {
	found := false
	ins.forEachLocalArg(func(c *Local) {
		if c == l {
			found = true
		}
	})
	return found
}

func (ins *Instruction) WritesLocal(l *Local) bool {
	return ins.Output != nil && ins.Output.IsLocal() && ins.Output.Local == l
}

// ReadsRegister / WritesRegister mirror the local queries for register
// operands, used by the hazard-insertion passes.
func (ins *Instruction) ReadsRegister(r Register) bool {
	for _, a := range ins.Args {
		if a.IsRegister() && a.Register.Equal(r) {
			return true
		}
	}
	return false
}

func (ins *Instruction) WritesRegister(r Register) bool {
	return ins.Output != nil && ins.Output.IsRegister() && ins.Output.Register.Equal(r)
}

func (ins *Instruction) String() string {
	cond := ""
	if ins.Cond != CondAlways {
		cond = " if." + ins.Cond.String()
	}
	switch ins.Kind {
	case KindMove:
		return fmt.Sprintf("%s = mov %s%s", ins.Output, ins.Args[0], cond)
	case KindOperation:
		argStrs := ""
		for i, a := range ins.Args {
			if i > 0 {
				argStrs += ", "
			}
			argStrs += a.String()
		}
		return fmt.Sprintf("%s = %s %s%s", ins.Output, ins.Op.Name, argStrs, cond)
	case KindVectorRotation:
		return fmt.Sprintf("%s = rotate %s by %s%s", ins.Output, ins.Args[0], ins.Offset, cond)
	case KindMethodCall:
		return fmt.Sprintf("call %s(...)%s", ins.MethodName, cond)
	case KindBranch:
		return fmt.Sprintf("br %s%s", ins.Target.Name, cond)
	case KindBranchLabel:
		return fmt.Sprintf("%s:", ins.Target.Name)
	case KindReturn:
		return "ret"
	case KindNop:
		return fmt.Sprintf("nop (%s)", ins.DelayReason)
	case KindSemaphoreAdjustment:
		op := "decrement"
		if ins.SemaphoreIncrement {
			op = "increment"
		}
		return fmt.Sprintf("semaphore.%s %d", op, ins.SemaphoreID)
	case KindMutexLock:
		if ins.MutexAcquire {
			return "mutex.acquire"
		}
		return "mutex.release"
	case KindLoadImmediate:
		return fmt.Sprintf("%s = loadimm %s%s", ins.Output, ins.Immediate, cond)
	default:
		return "?"
	}
}
