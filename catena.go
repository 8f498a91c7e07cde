package balloon

import (
	"github.com/opd-ai/go-balloon/internal/bitutil"
)

// catenaBRG is the single-buffer bit-reversal graph. Mixing is a no-op:
// the graph is evaluated by the accumulation walk in extract.
type catenaBRG struct {
	repeatedPasses
	nBits int
}

func (c *catenaBRG) mix(*hashState) error {
	return nil
}

// extract walks i = 0..n-1 with acc = Compress(acc, block[reverse(i)]),
// starting from the last block, and expands the final accumulator.
func (c *catenaBRG) extract(s *hashState, out []byte) error {
	acc := getBlock(s.blockSize)
	defer putBlock(acc)
	copy(acc, s.lastBlock())

	for i := uint64(0); i < s.nBlocks; i++ {
		neighbor := s.block(bitutil.ReverseBits(i, c.nBits))
		if err := s.comp.Compress(acc, acc, neighbor); err != nil {
			return err
		}
	}

	return s.expandFrom(out, acc)
}

// catenaDBG is the double-butterfly graph over two halves of the buffer.
// src and dst trade places after every layer.
type catenaDBG struct {
	nBits int // bits indexing one half
	src   view
	dst   view
}

// passes is always 1: a single mix call evaluates every layer.
func (c *catenaDBG) passes(uint64) uint64 {
	return 1
}

// mix runs 2*nBits-2 butterfly layers. In each layer
//
//	dst[i] = Compress(prev, dst[i], src[butterfly(i, layer)])
//
// where prev is dst[i-1], or the last block of src for i == 0.
func (c *catenaDBG) mix(s *hashState) error {
	half := c.src.length

	for layer := 0; layer < 2*c.nBits-2; layer++ {
		for i := uint64(0); i < half; i++ {
			cur := c.dst.block(s, i)

			var prev []byte
			if i == 0 {
				prev = c.src.last(s)
			} else {
				prev = c.dst.block(s, i-1)
			}
			neighbor := c.src.block(s, bitutil.Butterfly(i, c.nBits, layer))

			if err := s.comp.Compress(cur, prev, cur, neighbor); err != nil {
				return err
			}
		}

		c.src, c.dst = c.dst, c.src
	}

	return nil
}

// extract derives the output from the last block of the most recently
// written half, which is src after the final swap.
func (c *catenaDBG) extract(s *hashState, out []byte) error {
	return s.expandFrom(out, c.src.last(s))
}
