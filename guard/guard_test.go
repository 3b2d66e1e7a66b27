package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbl8/arraycore/core"
	"github.com/sbl8/arraycore/sizedbuf"
	"github.com/sbl8/arraycore/types"
)

type object struct {
	name      string
	destroyed bool
}

func (o *object) Destroy() { o.destroyed = true }

func newObjects(names ...string) []*object {
	objs := make([]*object, len(names))
	for i, n := range names {
		objs[i] = &object{name: n}
	}
	return objs
}

func TestStackRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	pre := newObjects("a", "b")
	var stack Slice[*object]
	for _, o := range pre {
		stack.Push(o)
	}

	pushed := newObjects("c", "d", "e")
	var partial *object
	err := core.Catch(func() {
		g := NewStack[*object](&stack)
		defer g.Restore()

		for _, o := range pushed {
			stack.Push(o)
		}
		partial = &object{name: "f"}
		core.Raise(core.KindAllocation, "push", "no room for %s", partial.name)
		stack.Push(partial)
	})
	require.ErrorIs(t, err, core.ErrAllocation)

	require.Equal(t, 2, stack.Len())
	assert.Same(t, pre[0], stack[0])
	assert.Same(t, pre[1], stack[1])
	for _, o := range pre {
		assert.False(t, o.destroyed, o.name)
	}
	for _, o := range pushed {
		assert.True(t, o.destroyed, o.name)
	}
	assert.False(t, partial.destroyed)
}

func TestStackRollsBackOnNormalExit(t *testing.T) {
	t.Parallel()
	var stack Slice[*object]
	objs := newObjects("x", "y")
	func() {
		g := NewStack[*object](&stack)
		defer g.Restore()
		stack.Push(objs[0])
		stack.Push(objs[1])
	}()
	assert.Zero(t, stack.Len())
	assert.True(t, objs[0].destroyed)
	assert.True(t, objs[1].destroyed)
}

func TestStackRestoreIsIdempotent(t *testing.T) {
	t.Parallel()
	var stack Slice[*object]
	g := NewStack[*object](&stack)
	stack.Push(&object{name: "x"})
	g.Restore()
	keep := &object{name: "keep"}
	stack.Push(keep)
	g.Restore()
	assert.Equal(t, 1, stack.Len())
	assert.False(t, keep.destroyed)
}

func TestNestedGuardsUnwindInOrder(t *testing.T) {
	t.Parallel()
	var stack Slice[*object]
	objs := newObjects("outer", "inner")
	err := core.Catch(func() {
		outer := NewStack[*object](&stack)
		defer outer.Restore()
		stack.Push(objs[0])

		inner := NewStack[*object](&stack)
		defer inner.Restore()
		stack.Push(objs[1])

		core.Fail("stop")
	})
	require.Error(t, err)
	assert.Zero(t, stack.Len())
	assert.True(t, objs[0].destroyed)
	assert.True(t, objs[1].destroyed)
}

func TestStackSizeDoesNotDestroy(t *testing.T) {
	t.Parallel()
	owned := newObjects("p", "q", "r")
	var stack Slice[*object]
	stack.Push(owned[0])

	err := core.Catch(func() {
		g := NewStackSize[*object](&stack)
		defer g.Restore()
		stack.Push(owned[1])
		stack.Push(owned[2])
		core.Raise(core.KindSizeMismatch, "op", "mismatch")
	})
	require.ErrorIs(t, err, core.ErrSizeMismatch)
	assert.Equal(t, 1, stack.Len())
	for _, o := range owned {
		assert.False(t, o.destroyed, o.name)
	}
}

func TestStackSizeWithValues(t *testing.T) {
	t.Parallel()
	ids := Slice[types.DString]{"A"}
	func() {
		g := NewStackSize[types.DString](&ids)
		defer g.Restore()
		ids.Push("B")
	}()
	assert.Equal(t, Slice[types.DString]{"A"}, ids)
}

func TestValueRestoresOnFailure(t *testing.T) {
	t.Parallel()
	x := types.DLong(10)
	err := core.Catch(func() {
		g := NewValue(&x)
		defer g.Restore()
		x = 20
		x = 30
		core.Fail("unwind")
	})
	require.Error(t, err)
	assert.Equal(t, types.DLong(10), x)
}

func TestValueRestoresOnNormalExit(t *testing.T) {
	t.Parallel()
	mode := "compile"
	func() {
		g := NewValue(&mode)
		defer g.Restore()
		mode = "run"
	}()
	assert.Equal(t, "compile", mode)
}

func TestPtrReleaseKeepsState(t *testing.T) {
	t.Parallel()
	var stack Slice[*object]
	objs := newObjects("m", "n")
	var got Container[*object]
	func() {
		g := NewPtr[*object](&stack)
		defer g.Restore()
		stack.Push(objs[0])
		stack.Push(objs[1])
		got = g.Release()
		assert.True(t, g.Released())
	}()
	assert.Same(t, &stack, got)
	assert.Equal(t, 2, stack.Len())
	assert.False(t, objs[0].destroyed)
	assert.False(t, objs[1].destroyed)
}

func TestPtrRollsBackUnlessReleased(t *testing.T) {
	t.Parallel()
	var stack Slice[*object]
	keep := &object{name: "keep"}
	stack.Push(keep)
	added := &object{name: "added"}

	err := core.Catch(func() {
		g := NewPtr[*object](&stack)
		defer g.Restore()
		stack.Push(added)
		core.Raise(core.KindAllocation, "op", "fail before release")
		g.Release()
	})
	require.ErrorIs(t, err, core.ErrAllocation)
	assert.Equal(t, 1, stack.Len())
	assert.True(t, added.destroyed)
	assert.False(t, keep.destroyed)
}

func TestArrayFreesOnExit(t *testing.T) {
	t.Parallel()
	var freed [][]types.DDouble
	free := func(s []types.DDouble) { freed = append(freed, s) }

	first := make([]types.DDouble, 4)
	second := make([]types.DDouble, 8)
	func() {
		g := NewArray(first, free)
		defer g.Free()
		assert.Len(t, g.Get(), 4)

		g.Reset(second)
		require.Len(t, freed, 1)
		assert.Len(t, freed[0], 4)
	}()
	require.Len(t, freed, 2)
	assert.Len(t, freed[1], 8)
}

func TestArrayResetNil(t *testing.T) {
	t.Parallel()
	freed := 0
	g := NewArray(make([]types.DByte, 3), func([]types.DByte) { freed++ })
	g.Reset(nil)
	assert.Equal(t, 1, freed)
	g.Free()
	assert.Equal(t, 1, freed)
}

func TestArrayRelease(t *testing.T) {
	t.Parallel()
	freed := 0
	s := make([]types.DByte, 3)
	func() {
		g := NewArray(s, func([]types.DByte) { freed++ })
		defer g.Free()
		assert.Len(t, g.Release(), 3)
		assert.Nil(t, g.Get())
	}()
	assert.Zero(t, freed)
}

func TestArrayNilFree(t *testing.T) {
	t.Parallel()
	g := NewArray(make([]types.DInt, 2), nil)
	assert.NotPanics(t, g.Free)
	assert.Nil(t, g.Get())
}

// A bulk fill that fails halfway frees its scratch store and leaves the
// destination buffer as it was.
func TestArrayGuardsHeapStoreHandOff(t *testing.T) {
	load := func(dst *sizedbuf.Buffer[types.DLong], src []types.DLong, failAt int) error {
		return core.Catch(func() {
			g := NewArray(sizedbuf.AllocHeap[types.DLong](len(src), "load"), sizedbuf.FreeHeap[types.DLong])
			defer g.Free()

			store := g.Get()
			for i, v := range src {
				if i == failAt {
					core.Raise(core.KindInvalidInput, "load", "bad element at %d", i)
				}
				store[i] = v
			}
			if dst.OnHeap() {
				sizedbuf.FreeHeap(dst.Buffer())
			}
			dst.SetBuffer(store)
			dst.SetLen(len(src))
			g.Release()
		})
	}

	src := make([]types.DLong, 40)
	for i := range src {
		src[i] = types.DLong(i)
	}

	before := sizedbuf.ReadStats()
	dst := sizedbuf.NewFill[types.DLong](1, 3)
	err := load(dst, src, 20)
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, []types.DLong{1, 1, 1}, dst.Slice())
	assert.Equal(t, before.LiveBytes, sizedbuf.ReadStats().LiveBytes)

	require.NoError(t, load(dst, src, -1))
	assert.Equal(t, src, dst.Slice())
	dst.Release()
	assert.Equal(t, before.LiveBytes, sizedbuf.ReadStats().LiveBytes)
}
