package util

import "sync"

// DefaultBufSize is the receive buffer size for one chat turn.
const DefaultBufSize = 1024

// BufPool hands out fixed-size receive buffers.  Every session served
// by one listener reads into buffers of the same size, so they are
// recycled across connections instead of reallocated.
type BufPool struct {
	size int
	pool sync.Pool
}

// NewBufPool returns a pool of size-byte buffers.  A non-positive size
// selects DefaultBufSize.
func NewBufPool(size int) *BufPool {
	if size <= 0 {
		size = DefaultBufSize
	}
	p := &BufPool{size: size}
	p.pool.New = func() interface{} {
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

// Size returns the length of every buffer in the pool.
func (p *BufPool) Size() int { return p.size }

// Get retrieves a buffer.  Callers must return it with [BufPool.Put].
func (p *BufPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool.  Buffers of the wrong size are
// dropped.
func (p *BufPool) Put(buf *[]byte) {
	if buf == nil || len(*buf) != p.size {
		return
	}
	p.pool.Put(buf)
}
