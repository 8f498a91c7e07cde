package compress

import (
	"encoding/binary"
)

const (
	// argon2BlockSize is the size of an Argon2 memory block in bytes.
	argon2BlockSize = 1024

	// qwordsInBlock is the number of 64-bit words in a block (1024 / 8).
	qwordsInBlock = 128
)

// block is a 1024-byte Argon2 memory block viewed as 128 little-endian
// 64-bit words. Argon2 mixes on words, not bytes.
type block [qwordsInBlock]uint64

// xor performs b[i] ^= other[i] for all i.
func (b *block) xor(other *block) {
	for i := range b {
		b[i] ^= other[i]
	}
}

// load reads the block from a 1024-byte slice.
func (b *block) load(data []byte) {
	for i := range b {
		b[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
}

// store writes the block into a 1024-byte slice.
func (b *block) store(data []byte) {
	for i := range b {
		binary.LittleEndian.PutUint64(data[i*8:], b[i])
	}
}

// argon2Permute applies the Argon2 compression permutation P to a
// 1024-byte state in place:
//
//	R = state
//	Q = rows(R), then columns(Q), each a BlaMka round over 16 words
//	state = Q XOR R
//
// The feed-forward XOR makes the map non-invertible.
func argon2Permute(state []byte) {
	var r, q block
	r.load(state)
	q = r

	// Rows: 8 groups of 16 consecutive words.
	for i := 0; i < qwordsInBlock; i += 16 {
		blamkaRound(
			&q[i+0], &q[i+1], &q[i+2], &q[i+3],
			&q[i+4], &q[i+5], &q[i+6], &q[i+7],
			&q[i+8], &q[i+9], &q[i+10], &q[i+11],
			&q[i+12], &q[i+13], &q[i+14], &q[i+15],
		)
	}

	// Columns: 8 groups of word pairs spaced 16 words apart.
	for i := 0; i < 16; i += 2 {
		blamkaRound(
			&q[i], &q[i+1], &q[i+16], &q[i+17],
			&q[i+32], &q[i+33], &q[i+48], &q[i+49],
			&q[i+64], &q[i+65], &q[i+80], &q[i+81],
			&q[i+96], &q[i+97], &q[i+112], &q[i+113],
		)
	}

	q.xor(&r)
	q.store(state)
}

// blamkaRound applies one Blake2b-style round (columns then diagonals) with
// the BlaMka multiplication-hardened G function.
func blamkaRound(v0, v1, v2, v3, v4, v5, v6, v7, v8, v9, v10, v11, v12, v13, v14, v15 *uint64) {
	*v0, *v4, *v8, *v12 = g(*v0, *v4, *v8, *v12)
	*v1, *v5, *v9, *v13 = g(*v1, *v5, *v9, *v13)
	*v2, *v6, *v10, *v14 = g(*v2, *v6, *v10, *v14)
	*v3, *v7, *v11, *v15 = g(*v3, *v7, *v11, *v15)

	*v0, *v5, *v10, *v15 = g(*v0, *v5, *v10, *v15)
	*v1, *v6, *v11, *v12 = g(*v1, *v6, *v11, *v12)
	*v2, *v7, *v8, *v13 = g(*v2, *v7, *v8, *v13)
	*v3, *v4, *v9, *v14 = g(*v3, *v4, *v9, *v14)
}

// g is the Argon2 variant of the Blake2b G function, with each addition
// replaced by fBlaMka.
func g(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a = fBlaMka(a, b)
	d = rotr64(d^a, 32)
	c = fBlaMka(c, d)
	b = rotr64(b^c, 24)

	a = fBlaMka(a, b)
	d = rotr64(d^a, 16)
	c = fBlaMka(c, d)
	b = rotr64(b^c, 63)

	return a, b, c, d
}

// fBlaMka computes x + y + 2*lo32(x)*lo32(y).
func fBlaMka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}

func rotr64(x uint64, n uint) uint64 {
	return (x >> n) | (x << (64 - n))
}
