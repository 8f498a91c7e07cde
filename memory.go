package balloon

import (
	"fmt"
	"math"
	"sync"
)

// Pools of scratch blocks used by the accumulating strategies, one per
// native block size.
var (
	smallBlockPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, 64)
			return &b
		},
	}

	largeBlockPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, 1024)
			return &b
		},
	}
)

// allocateBuffer allocates the block buffer for n blocks of size bytes.
// Sizes that do not fit in an int and allocations the runtime refuses are
// reported as ErrAllocation instead of crashing the caller.
func allocateBuffer(n uint64, size int) (buf []byte, err error) {
	if size <= 0 || n == 0 {
		return nil, fmt.Errorf("%w: %d blocks of %d bytes", ErrAllocation, n, size)
	}
	if n > uint64(math.MaxInt/size) {
		return nil, fmt.Errorf("%w: %d blocks of %d bytes overflows", ErrAllocation, n, size)
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()
	return make([]byte, int(n)*size), nil
}

// getBlock returns a scratch block of size bytes from the pool.
func getBlock(size int) []byte {
	var p *[]byte
	switch size {
	case 64:
		p = smallBlockPool.Get().(*[]byte)
	case 1024:
		p = largeBlockPool.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*p)[:size]
}

// putBlock clears a scratch block and returns it to its pool.
func putBlock(b []byte) {
	zeroBytes(b)
	switch len(b) {
	case 64:
		smallBlockPool.Put(&b)
	case 1024:
		largeBlockPool.Put(&b)
	}
}

// zeroBytes clears a byte slice. Buffers derived from the secret are
// cleared before they are dropped.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
