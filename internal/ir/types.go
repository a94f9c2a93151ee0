// Package ir implements the typed, SSA-style linear IR that every backend
// pass operates on: values, locals, basic blocks, methods and modules.
package ir

import "fmt"

// AddressSpace is the storage class a pointer type points into.
type AddressSpace int

const (
	AddressPrivate AddressSpace = iota
	AddressLocal
	AddressGlobal
	AddressConstant
	AddressGeneric
)

func (a AddressSpace) String() string {
	switch a {
	case AddressPrivate:
		return "private"
	case AddressLocal:
		return "local"
	case AddressGlobal:
		return "global"
	case AddressConstant:
		return "constant"
	case AddressGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// DataKind discriminates the category of a DataType.
type DataKind int

const (
	KindScalar DataKind = iota
	KindVector
	KindPointer
	KindArray
	KindStruct
	KindImage
)

// DataType describes the type of a Value. Only one of the kind-specific
// fields is meaningful for a given Kind.
type DataType struct {
	Kind         DataKind
	BitWidth     int  // scalar bit-width: 1, 8, 16, 32 or 64
	Float        bool // integer if false
	SignedHint   bool

	VectorWidth int       // KindVector: lane count, power of two, <= 16
	Elem        *DataType // KindVector/KindPointer/KindArray element type

	AddressSpace AddressSpace // KindPointer
	Alignment    int          // KindPointer, KindStruct

	ArrayLength int // KindArray

	StructElems []DataType // KindStruct, ordered
}

// Scalar bit-width constants used throughout the lowering and intrinsics
// passes.
var (
	Bool   = DataType{Kind: KindScalar, BitWidth: 1}
	Int8   = DataType{Kind: KindScalar, BitWidth: 8, SignedHint: true}
	UInt8  = DataType{Kind: KindScalar, BitWidth: 8}
	Int16  = DataType{Kind: KindScalar, BitWidth: 16, SignedHint: true}
	UInt16 = DataType{Kind: KindScalar, BitWidth: 16}
	Int32  = DataType{Kind: KindScalar, BitWidth: 32, SignedHint: true}
	UInt32 = DataType{Kind: KindScalar, BitWidth: 32}
	Int64  = DataType{Kind: KindScalar, BitWidth: 64, SignedHint: true}
	UInt64 = DataType{Kind: KindScalar, BitWidth: 64}
	Float32 = DataType{Kind: KindScalar, BitWidth: 32, Float: true}
	Float64 = DataType{Kind: KindScalar, BitWidth: 64, Float: true}
)

// VectorOf returns the vector type with the given lane count over elem.
// Native operations require width <= 16; wider vectors exist only
// transiently in the front-end.
func VectorOf(elem DataType, width int) DataType {
	e := elem
	return DataType{Kind: KindVector, VectorWidth: width, Elem: &e}
}

// PointerTo returns a pointer-to-elem type in the given address space.
func PointerTo(elem DataType, space AddressSpace, alignment int) DataType {
	e := elem
	return DataType{Kind: KindPointer, Elem: &e, AddressSpace: space, Alignment: alignment}
}

// ArrayOf returns an array-of-elem type with the given length.
func ArrayOf(elem DataType, length int) DataType {
	e := elem
	return DataType{Kind: KindArray, Elem: &e, ArrayLength: length}
}

// StructOf returns a struct type with the given ordered element types.
func StructOf(elems []DataType, alignment int) DataType {
	return DataType{Kind: KindStruct, StructElems: elems, Alignment: alignment}
}

// ScalarBitWidth returns the per-lane bit-width: the type's own width for a
// scalar, or the element's width for a vector.
func (t DataType) ScalarBitWidth() int {
	if t.Kind == KindVector {
		return t.Elem.ScalarBitWidth()
	}
	return t.BitWidth
}

// Width returns the vector lane count, or 1 for a scalar type.
func (t DataType) Width() int {
	if t.Kind == KindVector {
		return t.VectorWidth
	}
	return 1
}

// ElementType returns the per-lane type of a vector, or the type itself for
// a scalar.
func (t DataType) ElementType() DataType {
	if t.Kind == KindVector && t.Elem != nil {
		return *t.Elem
	}
	return t
}

// PhysicalWidth returns the number of bytes this type occupies when
// materialized in memory.
func (t DataType) PhysicalWidth() int {
	switch t.Kind {
	case KindScalar:
		if t.BitWidth <= 8 {
			return 1
		}
		return t.BitWidth / 8
	case KindVector:
		return t.Elem.PhysicalWidth() * t.VectorWidth
	case KindPointer:
		return 4 // all addresses inside the QPU's 32-bit address space
	case KindArray:
		return t.Elem.PhysicalWidth() * t.ArrayLength
	case KindStruct:
		size := 0
		for _, e := range t.StructElems {
			size += e.PhysicalWidth()
		}
		return size
	case KindImage:
		return 4
	default:
		return 0
	}
}

// StructOffsetOf returns the byte offset of struct element index.
func (t DataType) StructOffsetOf(index int) int {
	offset := 0
	for i := 0; i < index && i < len(t.StructElems); i++ {
		offset += t.StructElems[i].PhysicalWidth()
	}
	return offset
}

func (t DataType) IsPointer() bool { return t.Kind == KindPointer }
func (t DataType) IsVector() bool  { return t.Kind == KindVector }
func (t DataType) IsFloat() bool   { return t.ElementType().Float }

func (t DataType) String() string {
	switch t.Kind {
	case KindScalar:
		prefix := "i"
		if t.Float {
			prefix = "f"
		} else if !t.SignedHint {
			prefix = "u"
		}
		return fmt.Sprintf("%s%d", prefix, t.BitWidth)
	case KindVector:
		return fmt.Sprintf("%s<%d>", t.Elem.String(), t.VectorWidth)
	case KindPointer:
		return fmt.Sprintf("%s*%s", t.Elem.String(), t.AddressSpace)
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Elem.String(), t.ArrayLength)
	case KindStruct:
		return "struct"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}
