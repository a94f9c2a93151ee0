package ir

import "strings"

// ValueKind discriminates the operand abstraction.
type ValueKind int

const (
	ValueLiteral ValueKind = iota
	ValueSmallImmediate
	ValueRegister
	ValueLocal
	ValueContainer
	ValueUndefined
)

// Value is the operand abstraction used as instruction argument and
// output: a literal, a small immediate, a register, a reference to a
// Local, a container of values (a vector constant), or undefined.
type Value struct {
	Kind     ValueKind
	Type     DataType
	Literal  Literal
	Small    SmallImmediate
	Register Register
	Local    *Local
	Elements []Value // ValueContainer: one per lane, length == Type.Width()
}

func LiteralValue(l Literal, t DataType) Value   { return Value{Kind: ValueLiteral, Literal: l, Type: t} }
func SmallImmValue(s SmallImmediate, t DataType) Value {
	return Value{Kind: ValueSmallImmediate, Small: s, Type: t}
}
func RegisterValue(r Register, t DataType) Value { return Value{Kind: ValueRegister, Register: r, Type: t} }
func LocalValue(l *Local) Value                  { return Value{Kind: ValueLocal, Local: l, Type: l.Type} }
func ContainerValue(elems []Value, t DataType) Value {
	return Value{Kind: ValueContainer, Elements: elems, Type: t}
}
func Undefined(t DataType) Value { return Value{Kind: ValueUndefined, Type: t} }

var (
	Int32Zero = LiteralValue(IntLiteral(0), Int32)
	Int32One  = LiteralValue(IntLiteral(1), Int32)
)

func (v Value) IsLiteral() bool   { return v.Kind == ValueLiteral }
func (v Value) IsContainer() bool { return v.Kind == ValueContainer }
func (v Value) IsUndefined() bool { return v.Kind == ValueUndefined }
func (v Value) IsLocal() bool     { return v.Kind == ValueLocal }
func (v Value) IsRegister() bool  { return v.Kind == ValueRegister }
func (v Value) IsSmallImm() bool  { return v.Kind == ValueSmallImmediate }

// IsCompileTimeConstant reports whether the value is a literal or a
// container of (recursively) compile-time constant elements, i.e. whether
// it is eligible for pre-calculation.
func (v Value) IsCompileTimeConstant() bool {
	switch v.Kind {
	case ValueLiteral:
		return true
	case ValueContainer:
		for _, e := range v.Elements {
			if !e.IsCompileTimeConstant() && !e.IsUndefined() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// HasLiteralValue reports whether v is a literal equal to l.
func (v Value) HasLiteralValue(l Literal) bool {
	return v.Kind == ValueLiteral && v.Literal.Bits == l.Bits && v.Literal.Kind == l.Kind
}

// IsZeroInitializer reports whether v is the literal zero, or a container
// whose every element is the literal zero.
func (v Value) IsZeroInitializer() bool {
	switch v.Kind {
	case ValueLiteral:
		return v.Literal.IsZero()
	case ValueContainer:
		for _, e := range v.Elements {
			if !e.IsZeroInitializer() {
				return false
			}
		}
		return len(v.Elements) > 0
	default:
		return false
	}
}

// IsElementNumberSequence reports whether v is a container [0, 1, 2, ...]
// matching the native element-numbering of a vector of its own width.
func (v Value) IsElementNumberSequence() bool {
	if v.Kind != ValueContainer {
		return false
	}
	for i, e := range v.Elements {
		if e.IsUndefined() {
			continue
		}
		if !e.IsLiteral() || e.Literal.Int() != int64(i) {
			return false
		}
	}
	return true
}

// AllElementsSame reports whether every defined element of a container
// value carries the same literal value, returning that literal.
func (v Value) AllElementsSame() (Literal, bool) {
	if v.Kind != ValueContainer || len(v.Elements) == 0 {
		return Literal{}, false
	}
	var first Literal
	found := false
	for _, e := range v.Elements {
		if e.IsUndefined() {
			continue
		}
		if !e.IsLiteral() {
			return Literal{}, false
		}
		if !found {
			first = e.Literal
			found = true
		} else if e.Literal.Bits != first.Bits {
			return Literal{}, false
		}
	}
	return first, found
}

func (v Value) String() string {
	switch v.Kind {
	case ValueLiteral:
		return v.Literal.String()
	case ValueSmallImmediate:
		return v.Small.String()
	case ValueRegister:
		return v.Register.String()
	case ValueLocal:
		return v.Local.Name
	case ValueContainer:
		parts := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			parts[i] = e.String()
		}
		return "<" + strings.Join(parts, ", ") + ">"
	case ValueUndefined:
		return "undef"
	default:
		return "?"
	}
}
