// Package balloon provides a pure-Go memory-hard hashing engine.
//
// A hash fills a buffer of blocks from a secret and a salt, rewires the
// data dependencies between the blocks over several mixing passes, and
// derives an output of any length from the final buffer. The mixing
// topology (Balloon, Catena bit-reversal or double-butterfly, Argon2-style,
// scrypt-style) and the compression primitive are chosen through Options.
//
// Example usage:
//
//	opts := balloon.DefaultOptions()
//	opts.MemoryCost = 1 << 20
//
//	out := make([]byte, 32)
//	if err := balloon.Hash(out, []byte("password"), []byte("salt"), &opts); err != nil {
//	    log.Fatal(err)
//	}
package balloon

import (
	"fmt"
	"sync"
)

// Hash computes the memory-hard hash of secret and salt under opts and
// writes len(out) bytes into out. The memory used is released before Hash
// returns, whether or not it succeeds.
func Hash(out, secret, salt []byte, opts *Options) error {
	if opts == nil {
		return fmt.Errorf("%w: nil options", ErrInvalidOptions)
	}
	if len(out) == 0 {
		return fmt.Errorf("%w: output length must be at least 1", ErrInvalidOptions)
	}

	s, err := newHashState(opts, salt)
	if err != nil {
		return err
	}
	defer s.release()

	if err := s.fill(secret, salt); err != nil {
		return err
	}

	for i, n := uint64(0), s.strat.passes(opts.TimeCost); i < n; i++ {
		if err := s.mix(); err != nil {
			return err
		}
	}

	return s.extract(out)
}

// Hasher computes hashes with a fixed set of options. It is safe for
// concurrent use; every call owns its own buffer.
type Hasher struct {
	opts   Options
	closed bool
	mu     sync.RWMutex // Protects closed
}

// New creates a Hasher for opts. The options are validated once here and
// copied, so later changes to opts do not affect the Hasher.
func New(opts Options) (*Hasher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{opts: opts}, nil
}

// Hash computes the hash of secret and salt into out.
func (h *Hasher) Hash(out, secret, salt []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}
	return Hash(out, secret, salt, &h.opts)
}

// Sum computes an n-byte hash of secret and salt and returns it.
func (h *Hasher) Sum(secret, salt []byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: output length must be at least 1, got %d", ErrInvalidOptions, n)
	}
	out := make([]byte, n)
	if err := h.Hash(out, secret, salt); err != nil {
		return nil, err
	}
	return out, nil
}

// Options returns a copy of the options the Hasher was created with.
func (h *Hasher) Options() Options {
	return h.opts
}

// Close marks the hasher closed. Calls in progress finish normally; later
// calls return ErrClosed.
func (h *Hasher) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	return nil
}

// IsReady returns true if the hasher can compute hashes.
func (h *Hasher) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.closed
}
