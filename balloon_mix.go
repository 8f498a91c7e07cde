package balloon

import (
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-balloon/internal/bitstream"
	"github.com/opd-ai/go-balloon/internal/compress"
)

// balloonSingle mixes one buffer in place. Neighbor indices are read from
// the bitstream sequentially across passes.
type balloonSingle struct {
	repeatedPasses
	lastBlockExtract
	stream *bitstream.Stream
}

func (b *balloonSingle) mix(s *hashState) error {
	delta := int(s.opts.Neighbors)
	inputs := make([][]byte, 0, 2+delta)

	for i := uint64(0); i < s.nBlocks; i++ {
		prev := s.block((i + s.nBlocks - 1) % s.nBlocks)
		cur := s.block(i)

		inputs = append(inputs[:0], prev, cur)
		for k := 0; k < delta; k++ {
			inputs = append(inputs, s.block(b.stream.Uint64n(s.nBlocks)))
		}

		if err := s.comp.Compress(cur, inputs...); err != nil {
			return err
		}
	}
	return nil
}

// balloonParallel writes dst from src on every pass and then swaps the two
// halves. The block range of a pass is split across Threads workers.
type balloonParallel struct {
	stream *bitstream.Stream
	src    view
	dst    view
	pass   uint64
}

func (b *balloonParallel) passes(tCost uint64) uint64 {
	return tCost
}

// mix runs one pass:
//
//	dst[i] = Compress(src[i-1], src[i], src[r_1], ..., src[r_delta])
//
// with i-1 wrapping inside src. Every worker reads its neighbor indices at
// the stream offset its first block would have in a sequential walk, so the
// result does not depend on the thread count.
func (b *balloonParallel) mix(s *hashState) error {
	half := b.src.length
	threads := uint64(s.opts.Threads)
	chunk := (half + threads - 1) / threads

	var g errgroup.Group
	for lo := uint64(0); lo < half; lo += chunk {
		hi := lo + chunk
		if hi > half {
			hi = half
		}

		comp := s.comp.Clone()
		offset := (b.pass*half + lo) * uint64(s.opts.Neighbors) * 8
		stream := b.stream.At(offset)
		g.Go(func() error {
			return b.mixRange(s, comp, stream, lo, hi)
		})
	}

	// Wait is the barrier between passes: dst is complete before it becomes
	// the next pass's src.
	if err := g.Wait(); err != nil {
		return err
	}

	b.src, b.dst = b.dst, b.src
	b.pass++
	return nil
}

// mixRange computes dst[lo:hi]. It only reads src and only writes its own
// range of dst.
func (b *balloonParallel) mixRange(s *hashState, comp compress.Compressor, stream *bitstream.Stream, lo, hi uint64) error {
	half := b.src.length
	delta := int(s.opts.Neighbors)
	inputs := make([][]byte, 0, 2+delta)

	for i := lo; i < hi; i++ {
		inputs = append(inputs[:0], b.src.block(s, (i+half-1)%half), b.src.block(s, i))
		for k := 0; k < delta; k++ {
			inputs = append(inputs, b.src.block(s, stream.Uint64n(half)))
		}

		if err := comp.Compress(b.dst.block(s, i), inputs...); err != nil {
			return err
		}
	}
	return nil
}

// extract derives the output from the last block of the half written by
// the most recent pass.
func (b *balloonParallel) extract(s *hashState, out []byte) error {
	return s.expandFrom(out, b.src.last(s))
}
