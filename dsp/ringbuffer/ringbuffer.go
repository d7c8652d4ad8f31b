package ringbuffer

import (
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Segment describes one contiguous run of elements in the backing
// store. Data holds Count*ElemSize bytes.
type Segment struct {
	Data  []byte
	Count int
}

// RingBuffer is a lock-free SPSC circular buffer of fixed-size
// elements. The write cursor is owned by the writer goroutine and the
// read cursor by the reader goroutine; each is read (never written)
// by the opposite side for space accounting. Cursors increase
// monotonically and are masked only when indexing the backing store,
// so their difference is always the occupied element count.
type RingBuffer struct {
	// The cursors live on their own cache lines so the producer and
	// consumer cores do not invalidate each other's lines on every
	// advance.
	writePtr atomic.Uint64
	_        cpu.CacheLinePad
	readPtr  atomic.Uint64
	_        cpu.CacheLinePad

	writeSize uint64
	sizeMask  uint64
	elemSize  uint64
	buf       []byte
}

// New creates a ring buffer holding at least minElements elements of
// elemSize bytes each. The capacity is rounded up to the next power
// of two strictly greater than minElements (even when minElements is
// already a power of two) so the requested amount is always writable.
//
// When limitWrites is true one element of capacity is reserved,
// keeping a completely full buffer distinguishable from an empty one
// by cursor position alone. The independent monotonic cursors make
// the reservation unnecessary for correctness, so limitWrites=false
// permits full utilization.
func New(minElements, elemSize int, limitWrites bool) (*RingBuffer, error) {
	if minElements < 0 {
		return nil, fmt.Errorf("ringbuffer: element count must be >= 0: %d", minElements)
	}

	if elemSize <= 0 {
		return nil, fmt.Errorf("ringbuffer: element size must be > 0: %d", elemSize)
	}

	shift := bits.Len64(uint64(minElements))
	if shift >= 32 {
		return nil, fmt.Errorf("ringbuffer: element count too large: %d", minElements)
	}

	capacity := uint64(1) << shift
	if capacity*uint64(elemSize) > math.MaxInt32 {
		return nil, fmt.Errorf("ringbuffer: buffer of %d elements x %d bytes too large",
			capacity, elemSize)
	}

	writeSize := capacity
	if limitWrites {
		writeSize = capacity - 1
	}

	return &RingBuffer{
		writeSize: writeSize,
		sizeMask:  capacity - 1,
		elemSize:  uint64(elemSize),
		buf:       make([]byte, capacity*uint64(elemSize)),
	}, nil
}

// Cap returns the physical capacity in elements.
func (rb *RingBuffer) Cap() int {
	return int(rb.sizeMask + 1)
}

// WriteSize returns the usable write size in elements. It is one less
// than Cap when the buffer was created with limitWrites.
func (rb *RingBuffer) WriteSize() int {
	return int(rb.writeSize)
}

// ElemSize returns the element size in bytes.
func (rb *RingBuffer) ElemSize() int {
	return int(rb.elemSize)
}

// ReadSpace returns the number of elements available for reading.
// Safe to call from either side at any time.
func (rb *RingBuffer) ReadSpace() int {
	w := rb.writePtr.Load()
	r := rb.readPtr.Load()

	// The cursors are monotonic and never more than writeSize apart,
	// so the plain difference is the occupied count. Masking it would
	// alias a completely full buffer to an empty one when writeSize
	// equals the capacity.
	return int(w - r)
}

// WriteSpace returns the number of elements available for writing.
// Safe to call from either side at any time.
func (rb *RingBuffer) WriteSpace() int {
	return int(rb.writeSize) - rb.ReadSpace()
}

// ReadVector returns up to two contiguous segments holding the
// currently readable data. The second segment is empty unless the
// readable region wraps the physical end of the store. Consume the
// bytes directly, then commit with [RingBuffer.ReadAdvance].
func (rb *RingBuffer) ReadVector() (first, second Segment) {
	w := rb.writePtr.Load()
	r := rb.readPtr.Load()

	readable := w - r
	offset := r & rb.sizeMask

	return rb.split(offset, readable)
}

// WriteVector returns up to two contiguous segments describing the
// currently writable region, split at the physical wrap point. Fill
// the bytes directly, then commit with [RingBuffer.WriteAdvance].
func (rb *RingBuffer) WriteVector() (first, second Segment) {
	w := rb.writePtr.Load()
	r := rb.readPtr.Load()

	writable := rb.writeSize - (w - r)
	offset := w & rb.sizeMask

	return rb.split(offset, writable)
}

// split carves count elements starting at element offset into at most
// two segments around the physical end of the store.
func (rb *RingBuffer) split(offset, count uint64) (first, second Segment) {
	size := rb.sizeMask + 1
	if offset+count > size {
		cnt1 := size - offset
		first = Segment{
			Data:  rb.buf[offset*rb.elemSize : size*rb.elemSize],
			Count: int(cnt1),
		}
		second = Segment{
			Data:  rb.buf[:(count-cnt1)*rb.elemSize],
			Count: int(count - cnt1),
		}

		return first, second
	}

	first = Segment{
		Data:  rb.buf[offset*rb.elemSize : (offset+count)*rb.elemSize],
		Count: int(count),
	}

	return first, Segment{Data: rb.buf[:0]}
}

// Read copies at most count elements into dst and advances the read
// cursor. It returns the number of elements actually copied, which is
// bounded by the available data and by len(dst). Never blocks.
// Reader goroutine only.
func (rb *RingBuffer) Read(dst []byte, count int) int {
	n := rb.copyOut(dst, count)
	if n > 0 {
		r := rb.readPtr.Load()
		rb.readPtr.Store(r + uint64(n))
	}

	return n
}

// Peek copies at most count elements into dst without advancing the
// read cursor. Reader goroutine only.
func (rb *RingBuffer) Peek(dst []byte, count int) int {
	return rb.copyOut(dst, count)
}

func (rb *RingBuffer) copyOut(dst []byte, count int) int {
	if count < 0 {
		return 0
	}

	if fit := len(dst) / int(rb.elemSize); count > fit {
		count = fit
	}

	if space := rb.ReadSpace(); count > space {
		count = space
	}

	if count == 0 {
		return 0
	}

	r := rb.readPtr.Load()
	offset := (r & rb.sizeMask) * rb.elemSize
	total := uint64(count) * rb.elemSize

	n := copy(dst[:total], rb.buf[offset:])
	if uint64(n) < total {
		copy(dst[n:total], rb.buf)
	}

	return count
}

// Write copies at most count elements from src and advances the write
// cursor. It returns the number of elements actually copied, which is
// bounded by the free space and by len(src). Never blocks. Writer
// goroutine only.
func (rb *RingBuffer) Write(src []byte, count int) int {
	if count < 0 {
		return 0
	}

	if fit := len(src) / int(rb.elemSize); count > fit {
		count = fit
	}

	if space := rb.WriteSpace(); count > space {
		count = space
	}

	if count == 0 {
		return 0
	}

	w := rb.writePtr.Load()
	offset := (w & rb.sizeMask) * rb.elemSize
	total := uint64(count) * rb.elemSize

	n := copy(rb.buf[offset:], src[:total])
	if uint64(n) < total {
		copy(rb.buf, src[n:total])
	}

	rb.writePtr.Store(w + uint64(count))

	return count
}

// ReadAdvance commits count elements consumed through a prior
// [RingBuffer.ReadVector]. count must not exceed the space that call
// reported; violating that is a caller contract error, not a
// recoverable condition. Reader goroutine only.
func (rb *RingBuffer) ReadAdvance(count int) {
	r := rb.readPtr.Load()
	rb.readPtr.Store(r + uint64(count))
}

// WriteAdvance commits count elements produced through a prior
// [RingBuffer.WriteVector]. count must not exceed the space that call
// reported. Writer goroutine only.
func (rb *RingBuffer) WriteAdvance(count int) {
	w := rb.writePtr.Load()
	rb.writePtr.Store(w + uint64(count))
}

// Reset zeroes both cursors, emptying the buffer. Not thread safe:
// the caller must guarantee no concurrent reader or writer.
func (rb *RingBuffer) Reset() {
	rb.writePtr.Store(0)
	rb.readPtr.Store(0)
}
