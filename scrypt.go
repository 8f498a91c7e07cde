package balloon

import (
	"encoding/binary"
)

// scryptROMix runs the data-dependent second loop of scrypt's ROMix over
// the filled buffer. The buffer itself plays the role of ROMix's V array.
type scryptROMix struct {
	repeatedPasses
	lastBlockExtract
}

// mix walks n steps of X = Compress(X, V[le64(X) mod n]) starting from the
// last block, then stores X back into the last block so that the next pass
// and the extraction see it.
func (r *scryptROMix) mix(s *hashState) error {
	x := getBlock(s.blockSize)
	defer putBlock(x)
	copy(x, s.lastBlock())

	for step := uint64(0); step < s.nBlocks; step++ {
		j := binary.LittleEndian.Uint64(x[:8]) % s.nBlocks
		if err := s.comp.Compress(x, x, s.block(j)); err != nil {
			return err
		}
	}

	copy(s.lastBlock(), x)
	return nil
}
