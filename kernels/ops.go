// Package kernels provides the elementwise loops behind array values.
//
// Every kernel works in place on plain Go slices and allocates no heap
// stores.
// Loops are order independent, so each one is dispatched through
// parallel.For and may be split across goroutines for large inputs.
//
// Available operations:
//   - Fill: broadcast a scalar to every position
//   - Copy: elementwise copy between equal-length slices
//   - AddInPlace, SubInPlace: a[i] op= b[i]
//   - AddScalar, SubScalar: a[i] op= s
//
// The two-operand kernels require equal lengths. A mismatch is raised as a
// size_mismatch failure naming both sizes.
package kernels

import (
	"github.com/sbl8/arraycore/core"
	"github.com/sbl8/arraycore/parallel"
	"github.com/sbl8/arraycore/types"
)

// Fill sets every element of dst to v.
func Fill[T any](dst []T, v T) {
	parallel.For(len(dst), func(lo, hi int) {
		d := dst[lo:hi]
		for i := range d {
			d[i] = v
		}
	})
}

// Copy copies src into dst elementwise.
func Copy[T any](dst, src []T) {
	checkLen("kernels.Copy", len(dst), len(src))
	parallel.For(len(src), func(lo, hi int) {
		copy(dst[lo:hi], src[lo:hi])
	})
}

// AddInPlace performs a[i] += b[i].
func AddInPlace[T types.Numeric](a, b []T) {
	checkLen("kernels.AddInPlace", len(a), len(b))
	parallel.For(len(a), func(lo, hi int) {
		x, y := a[lo:hi], b[lo:hi]
		for i := range x {
			x[i] += y[i]
		}
	})
}

// SubInPlace performs a[i] -= b[i].
func SubInPlace[T types.Numeric](a, b []T) {
	checkLen("kernels.SubInPlace", len(a), len(b))
	parallel.For(len(a), func(lo, hi int) {
		x, y := a[lo:hi], b[lo:hi]
		for i := range x {
			x[i] -= y[i]
		}
	})
}

// AddScalar performs a[i] += s.
func AddScalar[T types.Numeric](a []T, s T) {
	parallel.For(len(a), func(lo, hi int) {
		x := a[lo:hi]
		for i := range x {
			x[i] += s
		}
	})
}

// SubScalar performs a[i] -= s.
func SubScalar[T types.Numeric](a []T, s T) {
	parallel.For(len(a), func(lo, hi int) {
		x := a[lo:hi]
		for i := range x {
			x[i] -= s
		}
	})
}

func checkLen(op string, this, right int) {
	if this != right {
		core.Raise(core.KindSizeMismatch, op,
			"operands have not same size (this: %d, right: %d)", this, right)
	}
}
