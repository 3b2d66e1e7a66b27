// Package arraycore is the memory substrate for array values in a numeric
// array-language runtime.
//
// Every array value the runtime manipulates (vectors, matrices, string
// lists) is backed by a sizedbuf.Buffer: a small-buffer-optimized container
// that keeps up to 27 elements inline and moves larger arrays to a heap
// store of exactly the requested size. Scope guards in package guard undo
// partial mutation when a failure unwinds through an operation, so no
// guarded container or variable is left half-updated.
//
// # Failure Model
//
// Unrecoverable conditions are not returned as errors. They are raised
// through the failure callback in package core, which by default panics
// with a *core.Error. Deferred guards run while the failure propagates, and
// the evaluator turns it back into an error at its boundary:
//
//	err := core.Catch(func() {
//		g := guard.NewValue(&state)
//		defer g.Restore()
//
//		b := sizedbuf.NewFill[types.DDouble](0, n)
//		b.Resize(2 * n)
//		...
//	})
//
// # Parallel Loops
//
// Elementwise loops (fill, copy, growth copy, compound updates) are order
// independent and run through package parallel, which splits a loop across
// goroutines only when its size falls inside the window configured by the
// process-wide tunables in package config.
//
// # Package Structure
//
//   - types: element type alphabet (DInt, DLong, DDouble, DComplex, ...)
//   - core: failure callback, structured errors, logger, size arithmetic
//   - config: process-wide tunables from environment or YAML
//   - parallel: threshold-gated parallel-for
//   - kernels: in-place elementwise loops over slices
//   - sizedbuf: the array container and its heap store allocator
//   - guard: scope guards for containers, variables and heap arrays
//   - cmd: command-line tools (arrperf)
package arraycore
