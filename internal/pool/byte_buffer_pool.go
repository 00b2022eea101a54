package pool

import (
	"encoding/binary"
	"io"
	"sync"
)

const (
	SnapshotBufferDefaultSize  = 1024 * 16       // 16KiB
	SnapshotBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is an append-only byte buffer used while encoding snapshots and models.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data to the buffer.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// WriteUvarint appends v as an unsigned varint.
func (bb *ByteBuffer) WriteUvarint(v uint64) {
	bb.B = binary.AppendUvarint(bb.B, v)
}

// Grow ensures the buffer can hold requiredBytes more bytes without reallocating.
//
// Small buffers grow by SnapshotBufferDefaultSize, larger ones by 25% of their capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	growBy := SnapshotBufferDefaultSize
	if cap(bb.B) > 4*SnapshotBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers that drops buffers above maxThreshold.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var snapshotDefaultPool = NewByteBufferPool(SnapshotBufferDefaultSize, SnapshotBufferMaxThreshold)

// GetSnapshotBuffer retrieves a ByteBuffer from the default snapshot pool.
func GetSnapshotBuffer() *ByteBuffer {
	return snapshotDefaultPool.Get()
}

// PutSnapshotBuffer returns a ByteBuffer to the default snapshot pool.
// The caller must not use bb, or any slice obtained from it, afterwards.
func PutSnapshotBuffer(bb *ByteBuffer) {
	snapshotDefaultPool.Put(bb)
}
