package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"golang.org/x/crypto/blake2b"
)

var allKinds = []Kind{Blake2b, SHA512, Keccak1600, Blake3, Argon2, Salsa208}

// testBlock returns a deterministic, non-trivial block of the given size.
func testBlock(size int, seed byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = seed ^ byte(i*7+3)
	}
	return b
}

func mustNew(t *testing.T, kind Kind, mode Mode, xorThenHash bool) Compressor {
	t.Helper()
	c, err := New(kind, mode, xorThenHash)
	if err != nil {
		t.Fatalf("New(%v, %v, %v) error = %v", kind, mode, xorThenHash, err)
	}
	return c
}

func TestBlockSize(t *testing.T) {
	for _, kind := range allKinds {
		size, err := BlockSize(kind)
		if err != nil {
			t.Fatalf("BlockSize(%v) error = %v", kind, err)
		}
		c := mustNew(t, kind, Hash, false)
		if c.Size() != size {
			t.Errorf("%v: Size() = %d, BlockSize() = %d", kind, c.Size(), size)
		}
	}

	if _, err := BlockSize(Kind(42)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("BlockSize(Kind(42)) error = %v, want ErrUnsupported", err)
	}
}

func TestNew_Unsupported(t *testing.T) {
	tests := []struct {
		name        string
		kind        Kind
		mode        Mode
		xorThenHash bool
	}{
		{"unknown kind", Kind(99), Hash, false},
		{"unknown mode", Blake2b, Mode(7), false},
		{"xor mode with xor-then-hash", Blake2b, XOR, true},
		{"argon2 xor mode", Argon2, XOR, false},
		{"salsa xor mode", Salsa208, XOR, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.kind, tt.mode, tt.xorThenHash)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("New() error = %v, want ErrUnsupported", err)
			}
		})
	}
}

// TestCompress_Modes runs every supported configuration through the basic
// contract: deterministic, input-sensitive, alias-safe.
func TestCompress_Modes(t *testing.T) {
	type config struct {
		kind        Kind
		mode        Mode
		xorThenHash bool
	}
	var configs []config
	for _, kind := range allKinds {
		configs = append(configs, config{kind, Hash, false}, config{kind, Hash, true})
		if !Permutation(kind) {
			configs = append(configs, config{kind, XOR, false})
		}
	}

	for _, cfg := range configs {
		name := cfg.kind.String() + "/" + cfg.mode.String()
		if cfg.xorThenHash {
			name += "/xor-then-hash"
		}
		t.Run(name, func(t *testing.T) {
			c := mustNew(t, cfg.kind, cfg.mode, cfg.xorThenHash)
			size := c.Size()
			a, b, d := testBlock(size, 1), testBlock(size, 2), testBlock(size, 3)

			out1 := make([]byte, size)
			if err := c.Compress(out1, a, b, d); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			out2 := make([]byte, size)
			if err := c.Clone().Compress(out2, a, b, d); err != nil {
				t.Fatalf("Clone().Compress() error = %v", err)
			}
			if !bytes.Equal(out1, out2) {
				t.Error("Compress is not deterministic across clones")
			}
			if bytes.Equal(out1, make([]byte, size)) {
				t.Error("Compress returned all zeros")
			}

			// Changing one input byte changes the output.
			b2 := append([]byte(nil), b...)
			b2[size/2] ^= 0x01
			out3 := make([]byte, size)
			if err := c.Compress(out3, a, b2, d); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if bytes.Equal(out1, out3) {
				t.Error("Compress output unchanged after flipping an input bit")
			}

			// dst aliasing an input gives the same result.
			alias := append([]byte(nil), b...)
			if err := c.Compress(alias, a, alias, d); err != nil {
				t.Fatalf("Compress() aliased error = %v", err)
			}
			if !bytes.Equal(alias, out1) {
				t.Error("Compress with aliased dst differs from non-aliased result")
			}
		})
	}
}

// TestCompress_EqualInputsDoNotCancel checks that duplicated inputs do not
// reduce the result to a constant in the modes that fold inputs.
func TestCompress_EqualInputsDoNotCancel(t *testing.T) {
	for _, kind := range []Kind{Blake2b, Argon2, Salsa208} {
		c := mustNew(t, kind, Hash, false)
		if kind == Blake2b {
			c = mustNew(t, kind, XOR, false)
		}
		size := c.Size()

		out1 := make([]byte, size)
		out2 := make([]byte, size)
		x, y := testBlock(size, 9), testBlock(size, 10)
		if err := c.Compress(out1, x, x); err != nil {
			t.Fatal(err)
		}
		if err := c.Compress(out2, y, y); err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(out1, out2) {
			t.Errorf("%v: Compress(x, x) == Compress(y, y)", kind)
		}
	}
}

func TestCompress_Errors(t *testing.T) {
	c := mustNew(t, Blake2b, Hash, false)
	size := c.Size()

	if err := c.Compress(make([]byte, size)); !errors.Is(err, ErrNoInputs) {
		t.Errorf("Compress() with no inputs error = %v, want ErrNoInputs", err)
	}
	if err := c.Compress(make([]byte, size), make([]byte, size-1)); !errors.Is(err, ErrBlockSize) {
		t.Errorf("Compress() short input error = %v, want ErrBlockSize", err)
	}
	if err := c.Compress(make([]byte, size+1), make([]byte, size)); !errors.Is(err, ErrBlockSize) {
		t.Errorf("Compress() long output error = %v, want ErrBlockSize", err)
	}
}

// TestCompress_HashModeMatchesBlake2b pins the Hash mode to a plain
// Blake2b-512 over the concatenated inputs.
func TestCompress_HashModeMatchesBlake2b(t *testing.T) {
	c := mustNew(t, Blake2b, Hash, false)
	a, b := testBlock(64, 4), testBlock(64, 5)

	got := make([]byte, 64)
	if err := c.Compress(got, a, b); err != nil {
		t.Fatal(err)
	}
	want := blake2b.Sum512(append(append([]byte(nil), a...), b...))
	if !bytes.Equal(got, want[:]) {
		t.Errorf("Compress() = %x, want %x", got, want)
	}
}

func TestExpand(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			c := mustNew(t, kind, Hash, false)

			long := make([]byte, 1000)
			if err := c.Expand(long, []byte("secret"), []byte("salt")); err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			again := make([]byte, 1000)
			if err := c.Expand(again, []byte("secret"), []byte("salt")); err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if !bytes.Equal(long, again) {
				t.Error("Expand is not deterministic")
			}

			other := make([]byte, 1000)
			if err := c.Expand(other, []byte("secret"), []byte("salT")); err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if bytes.Equal(long, other) {
				t.Error("Expand ignores its input")
			}

			// No 64-byte chunk of the expansion repeats.
			seen := make(map[string]bool)
			for off := 0; off+64 <= len(long); off += 64 {
				chunk := string(long[off : off+64])
				if seen[chunk] {
					t.Fatalf("Expand produced a repeated chunk at offset %d", off)
				}
				seen[chunk] = true
			}
		})
	}
}

// TestExpand_Counter pins the counter construction of hash-based expansion.
func TestExpand_Counter(t *testing.T) {
	c := mustNew(t, Blake2b, Hash, false)
	got := make([]byte, 100)
	if err := c.Expand(got, []byte("ab"), []byte("cd")); err != nil {
		t.Fatal(err)
	}

	var want []byte
	for ctr := uint64(0); ctr < 2; ctr++ {
		in := binary.LittleEndian.AppendUint64(nil, ctr)
		in = append(in, "abcd"...)
		sum := blake2b.Sum512(in)
		want = append(want, sum[:]...)
	}
	if !bytes.Equal(got, want[:100]) {
		t.Errorf("Expand() = %x, want %x", got, want[:100])
	}
}

func TestBlake2bLong(t *testing.T) {
	input := []byte("blake2b long input")

	// Short outputs are a single keyed-length Blake2b call.
	short := make([]byte, 32)
	if err := blake2bLong(short, input); err != nil {
		t.Fatal(err)
	}
	h, _ := blake2b.New(32, nil)
	h.Write([]byte{32, 0, 0, 0})
	h.Write(input)
	if want := h.Sum(nil); !bytes.Equal(short, want) {
		t.Errorf("blake2bLong(32) = %x, want %x", short, want)
	}

	// Long outputs start with the first half of V1.
	long := make([]byte, 1024)
	if err := blake2bLong(long, input); err != nil {
		t.Fatal(err)
	}
	prefix := binary.LittleEndian.AppendUint32(nil, 1024)
	v1 := blake2b.Sum512(append(prefix, input...))
	if !bytes.Equal(long[:32], v1[:32]) {
		t.Errorf("blake2bLong(1024)[:32] = %x, want %x", long[:32], v1[:32])
	}
	// The second chunk is the first half of V2 = Blake2b-512(V1).
	v2 := blake2b.Sum512(v1[:])
	if !bytes.Equal(long[32:64], v2[:32]) {
		t.Errorf("blake2bLong(1024)[32:64] = %x, want %x", long[32:64], v2[:32])
	}

	if err := blake2bLong(nil, input); err != nil {
		t.Errorf("blake2bLong(nil) error = %v", err)
	}
}

func TestArgon2Permute(t *testing.T) {
	state := testBlock(argon2BlockSize, 0x5a)
	orig := append([]byte(nil), state...)
	argon2Permute(state)

	if bytes.Equal(state, orig) {
		t.Fatal("argon2Permute left the state unchanged")
	}

	// Every 64-bit word is affected by a one-bit change anywhere.
	flipped := append([]byte(nil), orig...)
	flipped[0] ^= 1
	argon2Permute(flipped)

	var b1, b2 block
	b1.load(state)
	b2.load(flipped)
	for i := range b1 {
		if b1[i] == b2[i] {
			t.Errorf("word %d unchanged after flipping input bit 0", i)
		}
	}
}

func TestFBlaMka(t *testing.T) {
	if got := fBlaMka(1, 1); got != 4 {
		t.Errorf("fBlaMka(1, 1) = %d, want 4", got)
	}
	if got := fBlaMka(1<<32, 1<<32); got != 1<<33 {
		t.Errorf("fBlaMka(2^32, 2^32) = %d, want 2^33", got)
	}
}

func BenchmarkCompress(b *testing.B) {
	for _, kind := range allKinds {
		b.Run(kind.String(), func(b *testing.B) {
			c, err := New(kind, Hash, false)
			if err != nil {
				b.Fatal(err)
			}
			size := c.Size()
			in := [][]byte{testBlock(size, 1), testBlock(size, 2), testBlock(size, 3)}
			out := make([]byte, size)
			b.SetBytes(int64(3 * size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := c.Compress(out, in...); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
