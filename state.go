package balloon

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/go-balloon/internal/compress"
)

// hashState is the block buffer of one hash computation together with its
// bookkeeping. A hashState is owned by a single computation and is never
// shared; after any stage fails it refuses further use.
type hashState struct {
	opts      Options
	comp      compress.Compressor
	blockSize int
	nBlocks   uint64
	buffer    []byte
	filled    uint64 // bytes derived by fill
	strat     strategy
	err       error
}

// newHashState validates opts, sets up the strategy and allocates the
// buffer. Either everything is ready or an error is returned and nothing
// is retained.
func newHashState(opts *Options, salt []byte) (*hashState, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	kind, _ := opts.Compression.kind()
	mode, _ := opts.Combine.mode()
	comp, err := compress.New(kind, mode, opts.XORThenHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	s := &hashState{
		opts:      *opts,
		comp:      comp,
		blockSize: comp.Size(),
	}
	s.nBlocks = opts.MemoryCost / uint64(s.blockSize)

	// Strategy setup may round nBlocks down, so it runs before allocation.
	strat, err := newStrategy(s, salt)
	if err != nil {
		return nil, err
	}

	buf, err := allocateBuffer(s.nBlocks, s.blockSize)
	if err != nil {
		return nil, err
	}

	s.strat = strat
	s.buffer = buf
	return s, nil
}

// release clears and drops the buffer and strategy state. Calling it more
// than once is harmless.
func (s *hashState) release() {
	if s.buffer != nil {
		zeroBytes(s.buffer)
		s.buffer = nil
	}
	s.strat = nil
	s.filled = 0
	s.err = ErrStateUnusable
}

// block returns block i of the buffer.
func (s *hashState) block(i uint64) []byte {
	off := i * uint64(s.blockSize)
	return s.buffer[off : off+uint64(s.blockSize) : off+uint64(s.blockSize)]
}

// lastBlock returns the final block of the buffer.
func (s *hashState) lastBlock() []byte {
	return s.block(s.nBlocks - 1)
}

// fill derives every block from (secret, salt) with a forward chain:
// block 0 expands the block count, secret and salt; block i compresses
// block i-1.
func (s *hashState) fill(secret, salt []byte) error {
	if s.err != nil {
		return s.err
	}

	var count [8]byte
	binary.LittleEndian.PutUint64(count[:], s.nBlocks)
	if err := s.comp.Expand(s.block(0), count[:], secret, salt); err != nil {
		return s.fail("fill", err)
	}

	for i := uint64(1); i < s.nBlocks; i++ {
		if err := s.comp.Compress(s.block(i), s.block(i-1)); err != nil {
			return s.fail("fill", err)
		}
	}

	s.filled = uint64(len(s.buffer))
	return nil
}

// mix runs one mix call of the configured strategy.
func (s *hashState) mix() error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.strat.mix(s); err != nil {
		return s.fail("mix", err)
	}
	return nil
}

// extract writes len(out) bytes derived from the buffer into out. The
// buffer is not modified.
func (s *hashState) extract(out []byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.strat.extract(s, out); err != nil {
		return s.fail("extract", err)
	}
	return nil
}

// ready reports whether the state can be mixed or extracted.
func (s *hashState) ready() error {
	if s.err != nil {
		return s.err
	}
	if s.filled != uint64(len(s.buffer)) || s.filled == 0 {
		return ErrNotFilled
	}
	return nil
}

// fail marks the state unusable and wraps a compression error.
func (s *hashState) fail(stage string, err error) error {
	s.err = ErrStateUnusable
	return fmt.Errorf("%w: %s: %w", ErrCompression, stage, err)
}

// expandFrom derives out from a single block with the primitive's counter
// expansion.
func (s *hashState) expandFrom(out, blk []byte) error {
	return s.comp.Expand(out, blk)
}
