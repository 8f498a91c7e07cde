// Package bitutil provides the index arithmetic used by the Catena graphs:
// power-of-two rounding, bit reversal, and the butterfly neighbor function.
// All functions are pure.
package bitutil

import "math/bits"

// NearestPowerOfTwo returns the largest power of two p with p <= n, and
// the number of bits needed to index values below p (log2(p)).
//
// n must be at least 1.
func NearestPowerOfTwo(n uint64) (p uint64, nBits int) {
	if n == 0 {
		panic("bitutil: NearestPowerOfTwo of zero")
	}
	nBits = bits.Len64(n) - 1
	return uint64(1) << nBits, nBits
}

// ReverseBits reverses the low nBits bits of v. Bits above nBits are
// discarded.
//
// Example: ReverseBits(0b0011, 4) == 0b1100
func ReverseBits(v uint64, nBits int) uint64 {
	if nBits <= 0 {
		return 0
	}
	return bits.Reverse64(v) >> (64 - nBits)
}

// Butterfly returns the neighbor of index i in layer of a butterfly network
// over nBits-bit indices. Layers 0..nBits-1 flip bits from the most
// significant downwards; the remaining layers walk back up, giving a
// Benes network of 2*nBits-1 distinct layers.
//
// Butterfly is an involution for a fixed (nBits, layer).
func Butterfly(i uint64, nBits, layer int) uint64 {
	shift := nBits - 1
	if layer < nBits {
		return i ^ (uint64(1) << (shift - layer))
	}
	return i ^ (uint64(1) << (layer - shift))
}
