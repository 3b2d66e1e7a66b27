// Package types defines the element type alphabet shared by the array runtime.
//
// Every array value in the runtime (vectors, matrices, string lists) stores
// elements of one of the named types below. Collaborators refer to these
// aliases verbatim, so they are aliases rather than distinct defined types:
// a DLong is an int32 and converts freely.
package types

// SizeT counts elements and indexes into arrays.
type SizeT = uint64

// RangeT is a signed index, used where ranges may run backwards.
type RangeT = int64

// Element types.
type (
	DByte       = uint8
	DInt        = int16
	DUInt       = uint16
	DLong       = int32
	DULong      = uint32
	DLong64     = int64
	DULong64    = uint64
	DFloat      = float32
	DDouble     = float64
	DComplex    = complex64
	DComplexDbl = complex128
	DString     = string
)

// DPtr is a handle into the pointer heap. The heap itself lives outside this
// module; arrays only carry the handle value.
type DPtr = SizeT

// DObj is a handle into the object heap.
type DObj = DPtr

// Integer is satisfied by every integral element type, handles included.
type Integer interface {
	~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64
}

// Float is satisfied by the real floating point element types.
type Float interface {
	~float32 | ~float64
}

// Complex is satisfied by the complex element types.
type Complex interface {
	~complex64 | ~complex128
}

// Numeric is satisfied by every element type that supports + and -.
type Numeric interface {
	Integer | Float | Complex
}

// Element is the full alphabet an array may hold.
type Element interface {
	Numeric | ~string
}
