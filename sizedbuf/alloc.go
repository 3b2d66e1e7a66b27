package sizedbuf

import (
	"runtime"
	"sync/atomic"

	"github.com/sbl8/arraycore/config"
	"github.com/sbl8/arraycore/core"
)

// AllocEvent describes one heap store allocation or release.
type AllocEvent struct {
	Op    string // operation that requested the store; empty for frees
	Elems int
	Bytes uint64
	Free  bool
}

// AllocHook observes heap store traffic. It runs synchronously on the
// allocating goroutine and must not allocate heap stores itself.
type AllocHook func(AllocEvent)

// Stats counts heap store traffic since process start.
type Stats struct {
	Allocs    uint64
	Frees     uint64
	LiveBytes int64
}

var (
	allocHook atomic.Pointer[AllocHook]
	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
)

// SetAllocHook installs h and returns the previous hook. A nil h removes
// the hook.
func SetAllocHook(h AllocHook) AllocHook {
	var prev *AllocHook
	if h == nil {
		prev = allocHook.Swap(nil)
	} else {
		prev = allocHook.Swap(&h)
	}
	if prev == nil {
		return nil
	}
	return *prev
}

// ReadStats returns a snapshot of the heap store counters.
func ReadStats() Stats {
	return Stats{
		Allocs:    allocs.Load(),
		Frees:     frees.Load(),
		LiveBytes: liveBytes.Load(),
	}
}

// AllocHeap returns a zeroed heap store of exactly n elements. A store the
// process cannot address, either beyond the platform limit or beyond the
// configured MaxHeapBytes, is raised as an allocation failure naming op.
func AllocHeap[T any](n int, op string) []T {
	if n < 0 {
		core.Raise(core.KindInvalidInput, op, "negative array size %d", n)
	}
	if n > core.MaxElems[T](config.Current().MaxHeapBytes) {
		raiseExhausted(op, n)
	}
	size, _ := core.BytesFor[T](n)
	s, ok := makeHeap[T](n)
	if !ok {
		raiseExhausted(op, n)
	}

	allocs.Add(1)
	liveBytes.Add(int64(size))
	if h := allocHook.Load(); h != nil {
		(*h)(AllocEvent{Op: op, Elems: n, Bytes: size})
	}
	return s
}

// FreeHeap returns a store obtained from AllocHeap. The slice must not be
// used afterwards.
func FreeHeap[T any](s []T) {
	if s == nil {
		return
	}
	size, _ := core.BytesFor[T](cap(s))
	frees.Add(1)
	liveBytes.Add(-int64(size))
	if h := allocHook.Load(); h != nil {
		(*h)(AllocEvent{Elems: cap(s), Bytes: size, Free: true})
	}
}

// makeHeap converts the runtime's refusal of an oversized make into a flag.
func makeHeap[T any](n int) (s []T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isRuntime := r.(runtime.Error); !isRuntime {
				panic(r)
			}
			s, ok = nil, false
		}
	}()
	return make([]T, n), true
}

func raiseExhausted(op string, n int) {
	core.Raise(core.KindAllocation, op,
		"array requires more memory than the runtime can address (%d elements)", n)
}
