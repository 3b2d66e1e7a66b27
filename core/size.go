package core

import (
	"math"
	"math/bits"
	"unsafe"
)

// maxAddressable is the largest heap store, in bytes, the Go runtime will
// hand out on this platform. Requests above it are reported as address-space
// exhaustion instead of reaching make.
var maxAddressable = func() uint64 {
	if bits.UintSize == 64 {
		return 1 << 48
	}
	return math.MaxInt32
}()

// AddressLimit returns the effective per-store byte limit for this platform.
func AddressLimit() uint64 {
	return maxAddressable
}

// ElemSize returns the size in bytes of one T.
func ElemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// BytesFor returns the byte footprint of n elements of T. ok is false when
// n is negative or the product overflows uint64.
func BytesFor[T any](n int) (size uint64, ok bool) {
	if n < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(n), ElemSize[T]())
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

// MaxElems returns how many elements of T fit in limit bytes. A limit of 0
// means the platform limit. Zero-sized types are unbounded.
func MaxElems[T any](limit uint64) int {
	if limit == 0 || limit > maxAddressable {
		limit = maxAddressable
	}
	sz := ElemSize[T]()
	if sz == 0 {
		return math.MaxInt
	}
	n := limit / sz
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}
