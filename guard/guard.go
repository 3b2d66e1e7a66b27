// Package guard provides scope guards that undo partial mutation when a
// scope is left, whether by normal return or by a failure unwinding the
// stack.
//
// A guard records a baseline when it is created and restores it when its
// Restore (or Free) method runs. Guards are meant to be deferred right after
// construction:
//
//	g := guard.NewStack(&calls)
//	defer g.Restore()
//
// Construction never mutates the guarded entity. Restore is idempotent,
// never allocates, and only shrinks state, so it is safe to run while a
// failure is propagating. Guards over the same entity must be restored in
// reverse order of creation, which defer does naturally. A guard belongs to
// the goroutine that created it.
package guard

import (
	"go.uber.org/zap"

	"github.com/sbl8/arraycore/core"
)

// Container is a stack-like collection that guards can truncate.
type Container[E any] interface {
	Len() int
	Back() E
	PopBack()
}

// Destroyer is implemented by elements owned by their container. Destroy
// must not fail.
type Destroyer interface {
	Destroy()
}

// truncate pops c down to size elements, handing each popped element to
// destroy when it is non-nil. It returns the number of elements removed.
func truncate[E any](c Container[E], size int, destroy func(E)) int {
	removed := 0
	for c.Len() > size {
		if destroy != nil {
			destroy(c.Back())
		}
		c.PopBack()
		removed++
	}
	return removed
}

func destroy[E Destroyer](e E) { e.Destroy() }

func logRollback(kind string, removed int) {
	if removed == 0 {
		return
	}
	if ce := core.Logger().Check(zap.DebugLevel, "guard rollback"); ce != nil {
		ce.Write(zap.String("guard", kind), zap.Int("removed", removed))
	}
}

// Stack restores an owning container to its size at creation, destroying
// every element pushed since.
type Stack[E Destroyer] struct {
	c    Container[E]
	size int
	done bool
}

// NewStack guards c.
func NewStack[E Destroyer](c Container[E]) Stack[E] {
	return Stack[E]{c: c, size: c.Len()}
}

// Restore pops and destroys the elements added since NewStack.
func (g *Stack[E]) Restore() {
	if g.done {
		return
	}
	g.done = true
	logRollback("stack", truncate(g.c, g.size, destroy[E]))
}

// StackSize restores a container to its size at creation without
// destroying the removed elements; they are owned elsewhere.
type StackSize[E any] struct {
	c    Container[E]
	size int
	done bool
}

// NewStackSize guards c.
func NewStackSize[E any](c Container[E]) StackSize[E] {
	return StackSize[E]{c: c, size: c.Len()}
}

// Restore pops the elements added since NewStackSize.
func (g *StackSize[E]) Restore() {
	if g.done {
		return
	}
	g.done = true
	logRollback("stack_size", truncate[E](g.c, g.size, nil))
}

// Value restores a variable to the value it held at creation.
type Value[T any] struct {
	p    *T
	old  T
	done bool
}

// NewValue guards *p.
func NewValue[T any](p *T) Value[T] {
	return Value[T]{p: p, old: *p}
}

// Restore writes the saved value back, whatever *p holds now.
func (g *Value[T]) Restore() {
	if g.done {
		return
	}
	g.done = true
	*g.p = g.old
}

// Ptr is a Stack guard that can be released. Release disarms it so the
// container keeps whatever it holds when the scope ends.
type Ptr[E Destroyer] struct {
	c    Container[E]
	size int
}

// NewPtr guards c.
func NewPtr[E Destroyer](c Container[E]) Ptr[E] {
	return Ptr[E]{c: c, size: c.Len()}
}

// Release disarms the guard and returns the container. There is no way to
// re-arm it.
func (g *Ptr[E]) Release() Container[E] {
	c := g.c
	g.c = nil
	return c
}

// Released reports whether the guard no longer restores anything.
func (g *Ptr[E]) Released() bool { return g.c == nil }

// Restore pops and destroys the elements added since NewPtr, unless the
// guard was released.
func (g *Ptr[E]) Restore() {
	if g.c == nil {
		return
	}
	c := g.c
	g.c = nil
	logRollback("ptr", truncate(c, g.size, destroy[E]))
}

// Array owns one heap array and frees it when the scope ends.
type Array[T any] struct {
	s    []T
	free func([]T)
}

// NewArray takes ownership of s. free releases the array; nil means the
// array is simply dropped for the garbage collector.
func NewArray[T any](s []T, free func([]T)) Array[T] {
	return Array[T]{s: s, free: free}
}

// Get returns the guarded array.
func (g *Array[T]) Get() []T { return g.s }

// Reset frees the current array and takes ownership of s.
func (g *Array[T]) Reset(s []T) {
	g.Free()
	g.s = s
}

// Release hands the array back to the caller without freeing it. The guard
// holds nothing afterwards.
func (g *Array[T]) Release() []T {
	s := g.s
	g.s = nil
	return s
}

// Free releases the guarded array. Calling it again is a no-op.
func (g *Array[T]) Free() {
	if g.s == nil {
		return
	}
	s := g.s
	g.s = nil
	if g.free != nil {
		g.free(s)
	}
}
