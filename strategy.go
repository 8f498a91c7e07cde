package balloon

import (
	"fmt"

	"github.com/opd-ai/go-balloon/internal/bitstream"
	"github.com/opd-ai/go-balloon/internal/bitutil"
)

// strategy is the strategy-specific part of a hash state. The set of
// implementations is closed; newStrategy is the only place that picks one.
type strategy interface {
	// passes returns how many mix calls a hash with time cost tCost runs.
	passes(tCost uint64) uint64

	// mix runs one mix call over the buffer.
	mix(s *hashState) error

	// extract derives the output from the mixed buffer without modifying it.
	extract(s *hashState, out []byte) error
}

// view is a contiguous run of blocks inside the hash state buffer. The
// double-buffer strategies swap views instead of moving data.
type view struct {
	start  uint64
	length uint64
}

// block returns block i of the view.
func (v view) block(s *hashState, i uint64) []byte {
	return s.block(v.start + i)
}

// last returns the final block of the view.
func (v view) last(s *hashState) []byte {
	return v.block(s, v.length-1)
}

// newStrategy builds the strategy state for s.opts.Strategy. It may round
// s.nBlocks down; the buffer is allocated afterwards.
func newStrategy(s *hashState, salt []byte) (strategy, error) {
	switch s.opts.Strategy {
	case StrategyBalloon:
		stream, err := bitstream.New(salt)
		if err != nil {
			return nil, err
		}
		return &balloonSingle{stream: stream}, nil

	case StrategyBalloonParallel:
		stream, err := bitstream.New(salt)
		if err != nil {
			return nil, err
		}
		s.nBlocks &^= 1
		half := s.nBlocks / 2
		return &balloonParallel{
			stream: stream,
			src:    view{start: 0, length: half},
			dst:    view{start: half, length: half},
		}, nil

	case StrategyCatenaBRG:
		var nBits int
		s.nBlocks, nBits = bitutil.NearestPowerOfTwo(s.nBlocks)
		return &catenaBRG{nBits: nBits}, nil

	case StrategyCatenaDBG:
		var nBits int
		s.nBlocks, nBits = bitutil.NearestPowerOfTwo(s.nBlocks)
		half := s.nBlocks / 2
		// Each half is indexed with one bit less than the whole buffer.
		return &catenaDBG{
			nBits: nBits - 1,
			src:   view{start: 0, length: half},
			dst:   view{start: half, length: half},
		}, nil

	case StrategyArgon2Uniform:
		stream, err := bitstream.New(salt)
		if err != nil {
			return nil, err
		}
		return &argon2Uniform{stream: stream}, nil

	case StrategyScrypt:
		return &scryptROMix{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown strategy %v", ErrInvalidOptions, s.opts.Strategy)
	}
}

// lastBlockExtract is embedded by strategies whose output derives from the
// final block of the buffer.
type lastBlockExtract struct{}

func (lastBlockExtract) extract(s *hashState, out []byte) error {
	return s.expandFrom(out, s.lastBlock())
}

// repeatedPasses is embedded by strategies whose mix call is one pass.
type repeatedPasses struct{}

func (repeatedPasses) passes(tCost uint64) uint64 {
	return tCost
}
