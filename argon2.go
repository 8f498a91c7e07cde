package balloon

import (
	"github.com/opd-ai/go-balloon/internal/bitstream"
)

// argon2Uniform mixes like Argon2 with a single data-independent reference
// block per position, chosen uniformly over the whole buffer.
type argon2Uniform struct {
	repeatedPasses
	lastBlockExtract
	stream *bitstream.Stream
}

func (a *argon2Uniform) mix(s *hashState) error {
	for i := uint64(0); i < s.nBlocks; i++ {
		prev := s.block((i + s.nBlocks - 1) % s.nBlocks)
		cur := s.block(i)
		ref := s.block(a.stream.Uint64n(s.nBlocks))

		if err := s.comp.Compress(cur, prev, cur, ref); err != nil {
			return err
		}
	}
	return nil
}
