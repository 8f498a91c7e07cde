// Package compress provides the compression primitives used by the
// memory-hard engine. A Compressor folds an ordered list of fixed-size
// blocks into one block of the same size, and expands arbitrary byte
// strings into output of any length with a counter.
//
// Two families are implemented:
//   - hash-based compressors (Blake2b, SHA-512, Keccak-1600, BLAKE3), which
//     hash the inputs according to a combine Mode;
//   - permutation-based compressors (Argon2 block permutation, Salsa20/8),
//     which absorb the inputs sponge-style: acc = P(acc XOR b_i).
//
// Compressors are not safe for concurrent use; call Clone to obtain an
// independent instance for each goroutine.
package compress

import (
	"errors"
	"fmt"
)

// Kind selects the underlying cryptographic primitive.
type Kind int

const (
	Blake2b Kind = iota
	SHA512
	Keccak1600
	Blake3
	Argon2
	Salsa208
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Blake2b:
		return "Blake2b"
	case SHA512:
		return "SHA512"
	case Keccak1600:
		return "Keccak1600"
	case Blake3:
		return "Blake3"
	case Argon2:
		return "Argon2"
	case Salsa208:
		return "Salsa208"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Mode selects how a hash-based compressor combines several inputs.
type Mode int

const (
	// Hash computes one hash over the concatenated inputs.
	Hash Mode = iota

	// XOR hashes each input prefixed with its position and XORs the
	// results together.
	XOR
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Hash:
		return "Hash"
	case XOR:
		return "XOR"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var (
	// ErrBlockSize is returned when an input or output block does not have
	// the compressor's native size.
	ErrBlockSize = errors.New("compress: block size mismatch")

	// ErrNoInputs is returned by Compress when called without input blocks.
	ErrNoInputs = errors.New("compress: no input blocks")

	// ErrUnsupported is returned by New for unknown or incompatible
	// kind/mode combinations.
	ErrUnsupported = errors.New("compress: unsupported configuration")
)

// Compressor combines fixed-size blocks into one block.
type Compressor interface {
	// Size returns the native block size in bytes.
	Size() int

	// Compress writes the combination of blocks into dst. dst may alias
	// any of the inputs.
	Compress(dst []byte, blocks ...[]byte) error

	// Expand fills dst with bytes derived from the concatenation of parts.
	Expand(dst []byte, parts ...[]byte) error

	// Clone returns an independent compressor with the same configuration.
	Clone() Compressor
}

// BlockSize returns the native block size of kind.
func BlockSize(kind Kind) (int, error) {
	switch kind {
	case Blake2b, SHA512, Keccak1600, Blake3, Salsa208:
		return 64, nil
	case Argon2:
		return argon2BlockSize, nil
	default:
		return 0, fmt.Errorf("%w: kind %v", ErrUnsupported, kind)
	}
}

// Permutation reports whether kind is a permutation-based primitive.
// Permutation primitives only support the Hash mode.
func Permutation(kind Kind) bool {
	return kind == Argon2 || kind == Salsa208
}

// New returns a compressor for the given kind and mode. When xorThenHash is
// set the inputs are XOR-folded into one block before a single hash call;
// this cannot be combined with the XOR mode.
func New(kind Kind, mode Mode, xorThenHash bool) (Compressor, error) {
	if mode != Hash && mode != XOR {
		return nil, fmt.Errorf("%w: mode %v", ErrUnsupported, mode)
	}
	if mode == XOR && xorThenHash {
		return nil, fmt.Errorf("%w: xor-then-hash with %v mode", ErrUnsupported, mode)
	}

	switch kind {
	case Blake2b, SHA512, Keccak1600, Blake3:
		return newHashCompressor(kind, mode, xorThenHash)
	case Argon2:
		if mode != Hash {
			return nil, fmt.Errorf("%w: %v with %v mode", ErrUnsupported, kind, mode)
		}
		return newPermCompressor(argon2BlockSize, argon2Permute, xorThenHash), nil
	case Salsa208:
		if mode != Hash {
			return nil, fmt.Errorf("%w: %v with %v mode", ErrUnsupported, kind, mode)
		}
		return newPermCompressor(64, salsaPermute, xorThenHash), nil
	default:
		return nil, fmt.Errorf("%w: kind %v", ErrUnsupported, kind)
	}
}

// checkBlocks validates dst and inputs against the block size.
func checkBlocks(size int, dst []byte, blocks [][]byte) error {
	if len(blocks) == 0 {
		return ErrNoInputs
	}
	if len(dst) != size {
		return fmt.Errorf("%w: output is %d bytes, want %d", ErrBlockSize, len(dst), size)
	}
	for i, b := range blocks {
		if len(b) != size {
			return fmt.Errorf("%w: input %d is %d bytes, want %d", ErrBlockSize, i, len(b), size)
		}
	}
	return nil
}

// xorInto XORs src into dst. Both must have the same length.
func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
