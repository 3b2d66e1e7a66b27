package sizedbuf

import (
	"github.com/sbl8/arraycore/core"
	"github.com/sbl8/arraycore/kernels"
	"github.com/sbl8/arraycore/types"
)

// AddAssign performs b[i] += other[i]. The sizes must match; a mismatch is
// raised as a size_mismatch failure and b is left unchanged.
func AddAssign[T types.Numeric](b, other *Buffer[T]) {
	checkSameSize("sizedbuf.AddAssign", b, other)
	kernels.AddInPlace(b.Slice(), other.Slice())
}

// SubAssign performs b[i] -= other[i] with the same size rule as AddAssign.
func SubAssign[T types.Numeric](b, other *Buffer[T]) {
	checkSameSize("sizedbuf.SubAssign", b, other)
	kernels.SubInPlace(b.Slice(), other.Slice())
}

// AddScalar performs b[i] += s.
func AddScalar[T types.Numeric](b *Buffer[T], s T) {
	kernels.AddScalar(b.Slice(), s)
}

// SubScalar performs b[i] -= s.
func SubScalar[T types.Numeric](b *Buffer[T], s T) {
	kernels.SubScalar(b.Slice(), s)
}

func checkSameSize[T any](op string, b, other *Buffer[T]) {
	if b.sz != other.sz {
		core.Raise(core.KindSizeMismatch, op,
			"operands have not same size (this: %d, right: %d)", b.sz, other.sz)
	}
}
