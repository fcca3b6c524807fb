package buffers

import (
	"errors"
	"sync"
)

const (
	// FrameSize is the size of an Ethernet frame without FCS.
	FrameSize = 1514
)

// ErrAllocation is returned when a buffer of the requested size cannot be
// obtained.
var ErrAllocation = errors.New("buffers: allocation failed")

// Allocator hands out fixed-size byte slices.
type Allocator interface {
	Get() ([]byte, error)
	Put([]byte)
}

// BufferPool maintains a pool of byte slices to reduce GC pressure
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with the specified buffer size
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
		size: size,
	}
}

// Size returns the length of the buffers handed out by the pool.
func (p *BufferPool) Size() int { return p.size }

// Get retrieves a buffer from the pool. The contents are not cleared.
func (p *BufferPool) Get() ([]byte, error) {
	bp, ok := p.pool.Get().(*[]byte)
	if !ok || bp == nil || cap(*bp) < p.size {
		return nil, ErrAllocation
	}
	return (*bp)[:p.size], nil
}

// Put returns a buffer to the pool
func (p *BufferPool) Put(buffer []byte) {
	if buffer == nil || cap(buffer) < p.size {
		return // Don't keep undersized buffers
	}

	buffer = buffer[:p.size]
	p.pool.Put(&buffer)
}

// FramePool holds buffers for whole Ethernet frames.
var FramePool = NewBufferPool(FrameSize)
