package compress

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// blake2bLong is the Argon2 variable-length hash H'. It writes len(dst)
// bytes derived from input into dst.
//
//   - len(dst) <= 64: Blake2b(le32(len(dst)) || input, len(dst))
//   - otherwise V1 = Blake2b-512(le32(len(dst)) || input), emit V1[:32],
//     then Vi = Blake2b-512(Vi-1) emitting 32 bytes each, and a final hash
//     sized to the remaining bytes.
func blake2bLong(dst, input []byte) error {
	outlen := len(dst)
	if outlen == 0 {
		return nil
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(outlen))

	if outlen <= blake2b.Size {
		h, err := blake2b.New(outlen, nil)
		if err != nil {
			return err
		}
		h.Write(prefix[:])
		h.Write(input)
		h.Sum(dst[:0])
		return nil
	}

	h, err := blake2b.New512(nil)
	if err != nil {
		return err
	}
	h.Write(prefix[:])
	h.Write(input)
	v := h.Sum(nil)
	copied := copy(dst, v[:32])

	for outlen-copied > blake2b.Size {
		v4 := blake2b.Sum512(v)
		v = v4[:]
		copied += copy(dst[copied:], v[:32])
	}

	last, err := blake2b.New(outlen-copied, nil)
	if err != nil {
		return err
	}
	last.Write(v)
	last.Sum(dst[copied:copied])
	return nil
}
