package compress

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// hashCompressor implements Compressor on top of a 64-byte hash.Hash.
type hashCompressor struct {
	kind        Kind
	mode        Mode
	xorThenHash bool

	h       hash.Hash
	sum     []byte // scratch for h.Sum
	acc     []byte // accumulator for XOR mode and xor-then-hash
	counter [8]byte
}

// newHash returns a fresh hash.Hash for kind.
func newHash(kind Kind) (hash.Hash, error) {
	switch kind {
	case Blake2b:
		return blake2b.New512(nil)
	case SHA512:
		return sha512.New(), nil
	case Keccak1600:
		return sha3.NewLegacyKeccak512(), nil
	case Blake3:
		return blake3.New(64, nil), nil
	default:
		return nil, fmt.Errorf("%w: %v is not hash-based", ErrUnsupported, kind)
	}
}

func newHashCompressor(kind Kind, mode Mode, xorThenHash bool) (*hashCompressor, error) {
	h, err := newHash(kind)
	if err != nil {
		return nil, err
	}
	size := h.Size()
	return &hashCompressor{
		kind:        kind,
		mode:        mode,
		xorThenHash: xorThenHash,
		h:           h,
		sum:         make([]byte, 0, size),
		acc:         make([]byte, size),
	}, nil
}

func (c *hashCompressor) Size() int {
	return c.h.Size()
}

func (c *hashCompressor) Clone() Compressor {
	// newHash only fails for kinds rejected at construction.
	clone, _ := newHashCompressor(c.kind, c.mode, c.xorThenHash)
	return clone
}

func (c *hashCompressor) Compress(dst []byte, blocks ...[]byte) error {
	if err := checkBlocks(c.Size(), dst, blocks); err != nil {
		return err
	}

	switch {
	case c.xorThenHash:
		copy(c.acc, blocks[0])
		for _, b := range blocks[1:] {
			xorInto(c.acc, b)
		}
		c.h.Reset()
		c.h.Write(c.acc)
		copy(dst, c.h.Sum(c.sum[:0]))

	case c.mode == XOR:
		for i := range c.acc {
			c.acc[i] = 0
		}
		for i, b := range blocks {
			binary.LittleEndian.PutUint64(c.counter[:], uint64(i))
			c.h.Reset()
			c.h.Write(c.counter[:])
			c.h.Write(b)
			xorInto(c.acc, c.h.Sum(c.sum[:0]))
		}
		copy(dst, c.acc)

	default:
		c.h.Reset()
		for _, b := range blocks {
			c.h.Write(b)
		}
		copy(dst, c.h.Sum(c.sum[:0]))
	}

	return nil
}

// Expand fills dst with H(le64(ctr) || parts...) for ctr = 0, 1, ...
// truncated to len(dst).
func (c *hashCompressor) Expand(dst []byte, parts ...[]byte) error {
	for ctr, off := uint64(0), 0; off < len(dst); ctr++ {
		binary.LittleEndian.PutUint64(c.counter[:], ctr)
		c.h.Reset()
		c.h.Write(c.counter[:])
		for _, p := range parts {
			c.h.Write(p)
		}
		off += copy(dst[off:], c.h.Sum(c.sum[:0]))
	}
	return nil
}
