// Package bitstream provides the deterministic pseudo-random stream used to
// pick neighbor blocks. The stream is AES-256 in counter mode keyed with
// Blake2b-256 of the seed, so any position can be reached directly, which
// lets parallel workers draw exactly the values a sequential walk would.
package bitstream

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// domain separates bitstream keys from other uses of the seed.
const domain = "balloon bitstream v1"

// Stream is a seekable pseudo-random byte stream. A Stream is not safe for
// concurrent use; derive one per goroutine with At.
type Stream struct {
	block cipher.Block
	ctr   cipher.Stream
	buf   [8]byte
}

// New creates a stream keyed from the concatenation of the seed parts,
// positioned at offset 0.
func New(seed ...[]byte) (*Stream, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte(domain))
	for _, s := range seed {
		var n [8]byte
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write(s)
	}
	key := h.Sum(nil)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	s := &Stream{block: block}
	s.seek(0)
	return s, nil
}

// At returns a new stream sharing the key of s, positioned at byte offset.
// s itself is not moved.
func (s *Stream) At(offset uint64) *Stream {
	at := &Stream{block: s.block}
	at.seek(offset)
	return at
}

// seek positions the stream at byte offset.
func (s *Stream) seek(offset uint64) {
	var iv [aes.BlockSize]byte
	binary.BigEndian.PutUint64(iv[8:], offset/aes.BlockSize)
	s.ctr = cipher.NewCTR(s.block, iv[:])

	if skip := offset % aes.BlockSize; skip > 0 {
		var discard [aes.BlockSize]byte
		s.ctr.XORKeyStream(discard[:skip], discard[:skip])
	}
}

// Read fills p with the next len(p) bytes of the stream. It never fails.
func (s *Stream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.ctr.XORKeyStream(p, p)
	return len(p), nil
}

// Uint64 returns the next 8 bytes of the stream as a little-endian integer.
func (s *Stream) Uint64() uint64 {
	s.buf = [8]byte{}
	s.ctr.XORKeyStream(s.buf[:], s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

// Uint64n returns a value in [0, n) drawn from the next 8 bytes of the
// stream. n must be positive. The modulo bias is below n/2^64.
func (s *Stream) Uint64n(n uint64) uint64 {
	return s.Uint64() % n
}
