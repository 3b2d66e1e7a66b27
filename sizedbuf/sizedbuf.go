// Package sizedbuf implements the array container behind every array value.
//
// A Buffer holds up to SmallArraySize elements inline, inside the Buffer
// itself, and moves to a heap store of exactly Len elements once it grows
// past that. Scalars and short vectors therefore never touch the heap
// allocator. Exactly one store is active at a time; OnHeap reports which.
//
// Operations that cannot complete (the heap store cannot be obtained, a
// growth-only resize is asked to shrink, operand sizes differ) raise a
// failure through core.Raise and leave the Buffer as it was before the
// call. Buffers are not safe for concurrent mutation.
package sizedbuf

import (
	"fmt"

	"github.com/sbl8/arraycore/core"
	"github.com/sbl8/arraycore/kernels"
)

// SmallArraySize is the inline capacity of every Buffer.
const SmallArraySize = 27

type store uint8

const (
	inlineStore store = iota
	heapStore
)

// Buffer is a small-buffer-optimized array of T. The zero value is an empty
// Buffer ready to use. A Buffer must not be copied after first use; use
// Clone or Assign.
type Buffer[T any] struct {
	_      noCopy
	inline [SmallArraySize]T
	heap   []T
	kind   store
	sz     int
}

// New returns a Buffer of n zero elements.
func New[T any](n int) *Buffer[T] {
	b := &Buffer[T]{}
	b.init(n, "sizedbuf.New")
	return b
}

// NewFill returns a Buffer of n copies of v.
func NewFill[T any](v T, n int) *Buffer[T] {
	b := &Buffer[T]{}
	b.init(n, "sizedbuf.NewFill")
	kernels.Fill(b.Slice(), v)
	return b
}

// FromSlice returns a Buffer holding a copy of src.
func FromSlice[T any](src []T) *Buffer[T] {
	b := &Buffer[T]{}
	b.init(len(src), "sizedbuf.FromSlice")
	kernels.Copy(b.Slice(), src)
	return b
}

// NewScalar returns a one element Buffer.
func NewScalar[T any](v T) *Buffer[T] {
	b := &Buffer[T]{sz: 1}
	b.inline[0] = v
	return b
}

func (b *Buffer[T]) init(n int, op string) {
	if n < 0 {
		core.Raise(core.KindInvalidInput, op, "negative array size %d", n)
	}
	if n > SmallArraySize {
		b.heap = AllocHeap[T](n, op)
		b.kind = heapStore
	}
	b.sz = n
}

// Clone returns a deep copy of b.
func (b *Buffer[T]) Clone() *Buffer[T] {
	c := &Buffer[T]{}
	c.init(b.sz, "sizedbuf.Clone")
	kernels.Copy(c.Slice(), b.Slice())
	return c
}

// Assign makes b an elementwise copy of other. Equal sizes copy into the
// active store. Differing sizes replace the store, so Assign doubles as a
// resize; the new store is obtained before b is modified.
func (b *Buffer[T]) Assign(other *Buffer[T]) {
	if b == other {
		return
	}
	if b.sz == other.sz {
		kernels.Copy(b.Slice(), other.Slice())
		return
	}

	n := other.sz
	var h []T
	if n > SmallArraySize {
		h = AllocHeap[T](n, "sizedbuf.Assign")
	}
	b.dropHeap()
	if h != nil {
		b.heap, b.kind = h, heapStore
	}
	b.sz = n
	kernels.Copy(b.Slice(), other.Slice())
}

// Resize grows b to n elements, keeping the existing elements at their
// indices and zeroing the new tail. Growth past the inline capacity moves
// to a heap store of exactly n elements; there is no spare capacity, so
// callers should resize to the final size where they know it.
//
// Resize only grows. n <= Len raises a resize failure.
func (b *Buffer[T]) Resize(n int) {
	if n <= b.sz {
		core.Raise(core.KindResize, "sizedbuf.Resize",
			"growth-only resize asked to go from %d to %d elements", b.sz, n)
	}

	if n > SmallArraySize {
		h := AllocHeap[T](n, "sizedbuf.Resize")
		kernels.Copy(h[:b.sz], b.Slice())
		b.dropHeap()
		b.heap, b.kind = h, heapStore
		b.sz = n
		return
	}

	// Only a store installed through SetBuffer can be on the heap here.
	if b.kind == heapStore {
		copy(b.inline[:b.sz], b.heap[:b.sz])
		b.dropHeap()
	}
	clear(b.inline[b.sz:n])
	b.sz = n
}

// Release frees the heap store, if any, and empties b.
func (b *Buffer[T]) Release() {
	b.dropHeap()
	b.sz = 0
}

func (b *Buffer[T]) dropHeap() {
	if b.kind != heapStore {
		return
	}
	FreeHeap(b.heap)
	b.heap = nil
	b.kind = inlineStore
}

// Len returns the number of logical elements.
func (b *Buffer[T]) Len() int { return b.sz }

// OnHeap reports whether the active store is a heap store.
func (b *Buffer[T]) OnHeap() bool { return b.kind == heapStore }

// At returns element i.
func (b *Buffer[T]) At(i int) T { return b.Slice()[i] }

// Set stores v at index i.
func (b *Buffer[T]) Set(i int, v T) { b.Slice()[i] = v }

// Ref returns a pointer to element i, valid until the store changes.
func (b *Buffer[T]) Ref(i int) *T { return &b.Slice()[i] }

// Slice returns the logical elements. The slice aliases the active store
// and is invalidated by Assign with a different size, Resize, Release and
// SetBuffer.
func (b *Buffer[T]) Slice() []T {
	return b.store()[:b.sz]
}

func (b *Buffer[T]) store() []T {
	if b.kind == heapStore {
		return b.heap
	}
	return b.inline[:]
}

// Buffer returns the whole active store, including any elements beyond Len.
//
// Buffer, SetBuffer and SetLen bypass the container's bookkeeping. They
// exist for lower-level code that fills a store directly, e.g. from a bulk
// read, and must be followed by calls that leave Len within the store.
func (b *Buffer[T]) Buffer() []T {
	return b.store()
}

// SetBuffer installs s as the active store without releasing the current
// one; retrieve it with Buffer first if it needs FreeHeap. A nil s switches
// back to the inline store. Len is left unchanged.
//
// b takes ownership of s and later returns it through FreeHeap, so s must
// come from AllocHeap. Installing any other slice skews ReadStats.
func (b *Buffer[T]) SetBuffer(s []T) {
	if s == nil {
		b.heap, b.kind = nil, inlineStore
		return
	}
	b.heap, b.kind = s, heapStore
}

// SetLen sets the logical size without touching the store.
func (b *Buffer[T]) SetLen(n int) {
	b.sz = n
}

// Format implements fmt.Formatter by formatting the logical elements.
func (b *Buffer[T]) Format(state fmt.State, verb rune) {
	fmt.Fprintf(state, fmt.FormatString(state, verb), b.Slice())
}

// Equal reports whether a and b hold the same elements.
func Equal[T comparable](a, b *Buffer[T]) bool {
	if a.sz != b.sz {
		return false
	}
	x, y := a.Slice(), b.Slice()
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// noCopy may be embedded into structs which must not be copied after first
// use; go vet's copylocks check reports violations.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
