package ir

// UserRole is the role a Local plays in a single instruction: reader or
// writer. An instruction can hold both roles for the same local (e.g. a
// read-modify-write conditional move), which is why the user-set keys on
// (instruction, role) rather than just instruction.
type UserRole int

const (
	RoleReader UserRole = iota
	RoleWriter
)

// LocalUser records one instruction's use of a Local together with the
// role it plays there.
type LocalUser struct {
	Instruction *Instruction
	Role        UserRole
}

// Reference propagates the identity of a pointer/struct base through a
// chain of index computations, so later passes can recognize which
// parameter a derived pointer aliases.
type Reference struct {
	Base  *Local
	Index int // literal index when known, or AnyElement
}

const AnyElement = -1

// Local is a named, typed SSA-like location belonging to a Method. Its
// address is its identity: locals are never copied or moved once created.
type Local struct {
	Name  string
	Type  DataType
	users []LocalUser

	// Reference links a derived pointer/struct-GEP local back to the base
	// local and the first index used to compute it.
	Reference *Reference
}

// NewLocal is exported for package-external construction, e.g. by the
// lowering helpers that call Method.AddNewLocal instead.
func NewLocal(name string, t DataType) *Local {
	return &Local{Name: name, Type: t}
}

// addUser is the single funnel through which the use-def bookkeeping is
// maintained; called only from BasicBlock insert/erase.
func (l *Local) addUser(ins *Instruction, role UserRole) {
	if l == nil {
		return
	}
	l.users = append(l.users, LocalUser{Instruction: ins, Role: role})
}

func (l *Local) removeUser(ins *Instruction, role UserRole) {
	if l == nil {
		return
	}
	for i, u := range l.users {
		if u.Instruction == ins && u.Role == role {
			l.users = append(l.users[:i], l.users[i+1:]...)
			return
		}
	}
}

// Users returns every recorded user of the given role.
func (l *Local) Users(role UserRole) []LocalUser {
	var out []LocalUser
	for _, u := range l.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

// Writers is a convenience for Users(RoleWriter).
func (l *Local) Writers() []LocalUser { return l.Users(RoleWriter) }

// Readers is a convenience for Users(RoleReader).
func (l *Local) Readers() []LocalUser { return l.Users(RoleReader) }

// HasWriter reports whether any instruction writes this local.
func (l *Local) HasWriter() bool { return len(l.Writers()) > 0 }

// AsValue wraps the local in a Value for use as an instruction operand.
func (l *Local) AsValue() Value { return LocalValue(l) }
