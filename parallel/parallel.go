// Package parallel runs order-independent elementwise loops, optionally
// spread over goroutines.
//
// A loop is split only when it is large enough to amortize the dispatch
// cost: the element count must reach MinElts and, when MaxElts is non-zero,
// must not exceed it. Every call returns only after all chunks finish, so
// the data it touched is consistent again when For returns.
package parallel

import (
	"sync"

	"github.com/sbl8/arraycore/config"
)

// Body processes the half-open element range [lo, hi).
type Body func(lo, hi int)

// Options decides whether and how wide a loop is split.
type Options struct {
	Threads int
	MinElts int
	MaxElts int // 0 = no upper bound
}

// FromTunables derives loop options from the process-wide tunables.
func FromTunables(t config.Tunables) Options {
	return Options{
		Threads: t.NThreads,
		MinElts: t.MinElts,
		MaxElts: t.MaxElts,
	}
}

// Enabled reports whether a loop over n elements should be split.
func (o Options) Enabled(n int) bool {
	if o.Threads < 2 || n < 2 {
		return false
	}
	if n < o.MinElts {
		return false
	}
	return o.MaxElts == 0 || n <= o.MaxElts
}

// Chunks returns how many contiguous ranges a loop over n elements is split
// into. A loop that is not Enabled is a single chunk.
func (o Options) Chunks(n int) int {
	if !o.Enabled(n) {
		return 1
	}
	if o.Threads > n {
		return n
	}
	return o.Threads
}

// For runs body over [0, n) using the process-wide tunables.
func For(n int, body Body) {
	ForWith(FromTunables(config.Current()), n, body)
}

// ForWith runs body over [0, n) using explicit options.
//
// A panic inside a chunk, including a raised failure, is carried back and
// re-raised on the calling goroutine once every chunk has stopped, so the
// caller's deferred guards see it.
func ForWith(o Options, n int, body Body) {
	if n <= 0 {
		return
	}
	chunks := o.Chunks(n)
	if chunks == 1 {
		body(0, n)
		return
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked any
	)
	size := (n + chunks - 1) / chunks
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if panicked == nil {
						panicked = r
					}
					mu.Unlock()
				}
			}()
			body(lo, hi)
		}(lo, hi)
	}
	wg.Wait()

	if panicked != nil {
		panic(panicked)
	}
}
