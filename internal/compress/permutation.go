package compress

import (
	"golang.org/x/crypto/salsa20/salsa"
)

// permCompressor implements Compressor on top of a fixed-width permutation.
// Inputs are absorbed one at a time: acc = P(b_0), acc = P(acc XOR b_i).
// Absorbing sequentially keeps equal inputs from cancelling out.
type permCompressor struct {
	size        int
	permute     func(state []byte)
	xorThenHash bool
	acc         []byte
}

func newPermCompressor(size int, permute func([]byte), xorThenHash bool) *permCompressor {
	return &permCompressor{
		size:        size,
		permute:     permute,
		xorThenHash: xorThenHash,
		acc:         make([]byte, size),
	}
}

func (c *permCompressor) Size() int {
	return c.size
}

func (c *permCompressor) Clone() Compressor {
	return newPermCompressor(c.size, c.permute, c.xorThenHash)
}

func (c *permCompressor) Compress(dst []byte, blocks ...[]byte) error {
	if err := checkBlocks(c.size, dst, blocks); err != nil {
		return err
	}

	copy(c.acc, blocks[0])
	if c.xorThenHash {
		for _, b := range blocks[1:] {
			xorInto(c.acc, b)
		}
		c.permute(c.acc)
	} else {
		c.permute(c.acc)
		for _, b := range blocks[1:] {
			xorInto(c.acc, b)
			c.permute(c.acc)
		}
	}

	copy(dst, c.acc)
	return nil
}

// Expand uses the Argon2 variable-length hash, since a bare permutation has
// no domain separation for arbitrary-length input.
func (c *permCompressor) Expand(dst []byte, parts ...[]byte) error {
	var n int
	for _, p := range parts {
		n += len(p)
	}
	input := make([]byte, 0, n)
	for _, p := range parts {
		input = append(input, p...)
	}
	return blake2bLong(dst, input)
}

// salsaPermute applies the Salsa20/8 core to a 64-byte state, as used by
// scrypt's BlockMix.
func salsaPermute(state []byte) {
	var in, out [64]byte
	copy(in[:], state)
	salsa.Core208(&out, &in)
	copy(state, out[:])
}
