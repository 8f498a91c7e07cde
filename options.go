package balloon

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/opd-ai/go-balloon/internal/bitutil"
	"github.com/opd-ai/go-balloon/internal/compress"
)

// Strategy selects the mixing topology applied to the block buffer.
type Strategy int

const (
	// StrategyBalloon mixes a single buffer in place; every block absorbs
	// its predecessor, itself, and Neighbors pseudo-random blocks.
	StrategyBalloon Strategy = iota

	// StrategyBalloonParallel splits the buffer in two halves and writes one
	// half from the other on each pass. It is the only strategy that runs
	// with more than one thread.
	StrategyBalloonParallel

	// StrategyCatenaBRG is Catena's single-buffer bit-reversal graph. The
	// work happens in one accumulation walk at extraction time.
	StrategyCatenaBRG

	// StrategyCatenaDBG is Catena's double-butterfly graph over two halves
	// of the buffer. One mix call runs every layer of the graph.
	StrategyCatenaDBG

	// StrategyArgon2Uniform mixes like Argon2 with one data-independent,
	// uniformly chosen reference block.
	StrategyArgon2Uniform

	// StrategyScrypt runs scrypt's data-dependent ROMix walk over the buffer.
	StrategyScrypt
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBalloon:
		return "Balloon"
	case StrategyBalloonParallel:
		return "BalloonParallel"
	case StrategyCatenaBRG:
		return "CatenaBRG"
	case StrategyCatenaDBG:
		return "CatenaDBG"
	case StrategyArgon2Uniform:
		return "Argon2Uniform"
	case StrategyScrypt:
		return "Scrypt"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyBalloon,
	StrategyBalloonParallel,
	StrategyCatenaBRG,
	StrategyCatenaDBG,
	StrategyArgon2Uniform,
	StrategyScrypt,
}

// Compression selects the primitive that combines blocks.
type Compression int

const (
	// CompressionBlake2b uses Blake2b-512 (64-byte blocks).
	CompressionBlake2b Compression = iota

	// CompressionSHA512 uses SHA-512 (64-byte blocks).
	CompressionSHA512

	// CompressionKeccak1600 uses Keccak-512 over the Keccak-f[1600]
	// permutation (64-byte blocks).
	CompressionKeccak1600

	// CompressionBlake3 uses BLAKE3 with 64 bytes of output.
	CompressionBlake3

	// CompressionArgon2 uses the Argon2 block permutation (1024-byte blocks).
	CompressionArgon2

	// CompressionSalsa208 uses the Salsa20/8 core from scrypt (64-byte blocks).
	CompressionSalsa208
)

// Compressions lists every supported compression primitive.
var Compressions = []Compression{
	CompressionBlake2b,
	CompressionSHA512,
	CompressionKeccak1600,
	CompressionBlake3,
	CompressionArgon2,
	CompressionSalsa208,
}

// String returns the string representation of the compression primitive.
func (c Compression) String() string {
	if k, ok := c.kind(); ok {
		return k.String()
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// BlockSize returns the block size in bytes the primitive works on, or 0
// for an unknown primitive.
func (c Compression) BlockSize() int {
	k, ok := c.kind()
	if !ok {
		return 0
	}
	size, err := compress.BlockSize(k)
	if err != nil {
		return 0
	}
	return size
}

func (c Compression) kind() (compress.Kind, bool) {
	switch c {
	case CompressionBlake2b:
		return compress.Blake2b, true
	case CompressionSHA512:
		return compress.SHA512, true
	case CompressionKeccak1600:
		return compress.Keccak1600, true
	case CompressionBlake3:
		return compress.Blake3, true
	case CompressionArgon2:
		return compress.Argon2, true
	case CompressionSalsa208:
		return compress.Salsa208, true
	default:
		return 0, false
	}
}

// Combine selects how several blocks are folded by the primitive.
type Combine int

const (
	// CombineHash hashes the concatenated blocks once. Permutation
	// primitives absorb the blocks one after another instead.
	CombineHash Combine = iota

	// CombineXOR hashes each block separately, prefixed with its position,
	// and XORs the digests. Not available for permutation primitives.
	CombineXOR
)

// Combines lists every supported combine mode.
var Combines = []Combine{CombineHash, CombineXOR}

// String returns the string representation of the combine mode.
func (c Combine) String() string {
	switch c {
	case CombineHash:
		return "Hash"
	case CombineXOR:
		return "XOR"
	default:
		return fmt.Sprintf("Combine(%d)", int(c))
	}
}

func (c Combine) mode() (compress.Mode, bool) {
	switch c {
	case CombineHash:
		return compress.Hash, true
	case CombineXOR:
		return compress.XOR, true
	default:
		return 0, false
	}
}

// Options holds the cost parameters and algorithm choices for one hash
// computation. Options are read-only once validated.
type Options struct {
	// MemoryCost is the buffer size in bytes. The block count is
	// MemoryCost / BlockSize, rounded down to a power of two for the
	// Catena strategies.
	MemoryCost uint64

	// TimeCost is the number of mixing passes.
	TimeCost uint64

	// Neighbors is the number of pseudo-random blocks each block absorbs
	// in the Balloon strategies. See NeighborCount.
	Neighbors uint32

	// Threads is the number of workers for StrategyBalloonParallel. All
	// other strategies require 1.
	Threads uint32

	// Compression selects the primitive that combines blocks.
	Compression Compression

	// Combine selects how the primitive folds several blocks.
	Combine Combine

	// XORThenHash folds the inputs of every compression call into one
	// block with XOR before hashing it once. Cannot be used with CombineXOR.
	XORThenHash bool

	// Strategy selects the mixing topology.
	Strategy Strategy
}

// DefaultOptions returns options for a 128 KiB Balloon hash with three
// passes over Blake2b.
func DefaultOptions() Options {
	opts := Options{
		MemoryCost:  128 * 1024,
		TimeCost:    3,
		Threads:     1,
		Compression: CompressionBlake2b,
		Combine:     CombineHash,
		Strategy:    StrategyBalloon,
	}
	opts.Neighbors = NeighborCount(&opts)
	return opts
}

// NeighborCount returns the recommended number of neighbors for opts.
// Fewer passes need more neighbors per block to keep the same
// memory-hardness; strategies that do not draw random neighbors use 1.
func NeighborCount(opts *Options) uint32 {
	switch opts.Strategy {
	case StrategyBalloon, StrategyBalloonParallel:
		switch {
		case opts.TimeCost >= 3:
			return 3
		case opts.TimeCost == 2:
			return 4
		default:
			return 7
		}
	default:
		return 1
	}
}

// parallel reports whether the strategy can run with more than one thread.
func (s Strategy) parallel() bool {
	return s == StrategyBalloonParallel
}

// minBlocks returns the smallest block count the strategy accepts, counted
// after any power-of-two rounding.
func (o *Options) minBlocks() uint64 {
	switch o.Strategy {
	case StrategyCatenaDBG:
		// Two halves indexed by at least 2 bits each.
		return 8
	case StrategyBalloonParallel:
		return 2 * uint64(o.Threads)
	case StrategyArgon2Uniform:
		return 2
	default:
		return 1
	}
}

// BlockCount returns the number of blocks a hash with these options
// allocates. The Catena strategies round down to a power of two and
// StrategyBalloonParallel to an even count, so the result can be smaller
// than MemoryCost / BlockSize.
func (o *Options) BlockCount() uint64 {
	size := o.Compression.BlockSize()
	if size == 0 {
		return 0
	}
	n := o.MemoryCost / uint64(size)
	switch o.Strategy {
	case StrategyCatenaBRG, StrategyCatenaDBG:
		if n > 0 {
			n, _ = bitutil.NearestPowerOfTwo(n)
		}
	case StrategyBalloonParallel:
		n &^= 1
	}
	return n
}

// MemoryUsed returns the number of buffer bytes a hash with these options
// allocates.
func (o *Options) MemoryUsed() uint64 {
	return o.BlockCount() * uint64(o.Compression.BlockSize())
}

// Validate checks that the options describe a computable hash. Every
// violated constraint is reported; the returned error wraps
// ErrInvalidOptions.
func (o *Options) Validate() error {
	var errs *multierror.Error

	known := true
	if o.Strategy < StrategyBalloon || o.Strategy > StrategyScrypt {
		errs = multierror.Append(errs, fmt.Errorf("unknown strategy %v", o.Strategy))
		known = false
	}
	kind, ok := o.Compression.kind()
	if !ok {
		errs = multierror.Append(errs, fmt.Errorf("unknown compression %v", o.Compression))
		known = false
	}
	if _, ok := o.Combine.mode(); !ok {
		errs = multierror.Append(errs, fmt.Errorf("unknown combine mode %v", o.Combine))
		known = false
	}

	if o.TimeCost == 0 {
		errs = multierror.Append(errs, fmt.Errorf("time cost must be at least 1"))
	}
	if o.Threads == 0 {
		errs = multierror.Append(errs, fmt.Errorf("thread count must be at least 1"))
	}
	if o.Neighbors == 0 {
		errs = multierror.Append(errs, fmt.Errorf("neighbor count must be at least 1"))
	}

	if known {
		if o.Threads > 1 && !o.Strategy.parallel() {
			errs = multierror.Append(errs,
				fmt.Errorf("strategy %v is single-threaded, got %d threads", o.Strategy, o.Threads))
		}
		if o.Combine == CombineXOR && compress.Permutation(kind) {
			errs = multierror.Append(errs,
				fmt.Errorf("combine mode %v is not available for %v", o.Combine, o.Compression))
		}
		if o.Combine == CombineXOR && o.XORThenHash {
			errs = multierror.Append(errs,
				fmt.Errorf("xor-then-hash cannot be used with combine mode %v", o.Combine))
		}

		size := uint64(o.Compression.BlockSize())
		switch {
		case o.MemoryCost < size:
			errs = multierror.Append(errs,
				fmt.Errorf("memory cost %d is below one %d-byte block", o.MemoryCost, size))
		case o.BlockCount() < o.minBlocks():
			errs = multierror.Append(errs,
				fmt.Errorf("memory cost %d gives %d blocks, strategy %v needs at least %d",
					o.MemoryCost, o.BlockCount(), o.Strategy, o.minBlocks()))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}
