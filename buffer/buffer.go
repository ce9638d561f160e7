// Package buffer implements the byte-level envelope every codec and
// transport operates on: ReadableBuffer/WritableBuffer, their pool
// allocator, and the PipelineMessage envelope that lets byte chunks and
// decoded user messages share one pipeline (spec §3 "Buffer").
package buffer

// ReadableBuffer is a cursor over a contiguous byte region. advance and
// split_to both preserve the invariant that remaining drops by exactly the
// consumed length (spec Testable Property #4).
type ReadableBuffer interface {
	// Remaining returns the number of unread bytes.
	Remaining() int
	// Chunk returns a view of the next contiguous run of unread bytes. The
	// returned slice must not be retained past the next mutating call.
	Chunk() []byte
	// SplitTo detaches the first n bytes into a new ReadableBuffer that the
	// caller owns outright; this buffer is advanced past them. Panics if n
	// exceeds Remaining().
	SplitTo(n int) ReadableBuffer
	// Advance discards the first n bytes without copying them anywhere.
	// Panics if n exceeds Remaining().
	Advance(n int)
	// CopyInto copies min(Remaining(), len(dst)) bytes into dst without
	// consuming them, returning the count copied.
	CopyInto(dst []byte) int
	// TryIntoVec consumes the entire remaining region into a freshly
	// allocated, owned byte slice.
	TryIntoVec() []byte
}

// WritableBuffer is a growable write cursor a codec or transport fills in
// before handing the bytes onward.
type WritableBuffer interface {
	// Capacity returns the total number of bytes this buffer can hold
	// before it must grow.
	Capacity() int
	// RemainingMut returns how many more bytes can be written before the
	// buffer must grow.
	RemainingMut() int
	// Written returns the number of bytes written so far.
	Written() int
	// Reserve ensures at least n more bytes of capacity are available,
	// growing the backing storage if necessary.
	Reserve(n int)
	// PutSlice appends src, growing as needed.
	PutSlice(src []byte)
	// WriteFrom copies up to len(dst) bytes from src into the buffer, where
	// src is itself a ReadableBuffer, consuming what was copied. Returns
	// the count copied.
	WriteFrom(src ReadableBuffer) int
	// Clear resets the buffer to empty without releasing its capacity.
	Clear()
	// Freeze consumes the writable view and yields a ReadableBuffer
	// carrying exactly the bytes written so far (spec Testable Property
	// #5: freeze(write(data)).chunk() == data).
	Freeze() ReadableBuffer
}

// bytesBuffer is the concrete, slice-backed implementation shared by both
// interfaces during their respective lifetimes.
type bytesBuffer struct {
	data []byte
	off  int
}

// NewReadable wraps an existing byte slice as a ReadableBuffer. The slice is
// not copied; callers must not mutate it concurrently.
func NewReadable(data []byte) ReadableBuffer {
	return &bytesBuffer{data: data}
}

func (b *bytesBuffer) Remaining() int { return len(b.data) - b.off }

func (b *bytesBuffer) Chunk() []byte { return b.data[b.off:] }

func (b *bytesBuffer) SplitTo(n int) ReadableBuffer {
	if n > b.Remaining() {
		panic("buffer: SplitTo beyond remaining bytes")
	}

	head := b.data[b.off : b.off+n]
	b.off += n

	return &bytesBuffer{data: head}
}

func (b *bytesBuffer) Advance(n int) {
	if n > b.Remaining() {
		panic("buffer: Advance beyond remaining bytes")
	}

	b.off += n
}

func (b *bytesBuffer) CopyInto(dst []byte) int {
	return copy(dst, b.data[b.off:])
}

func (b *bytesBuffer) TryIntoVec() []byte {
	out := make([]byte, b.Remaining())
	copy(out, b.data[b.off:])
	b.off = len(b.data)

	return out
}

// writableBuffer is the growable write-side implementation.
type writableBuffer struct {
	data []byte
}

// NewWritable allocates a WritableBuffer with at least the given initial
// capacity.
func NewWritable(capacity int) WritableBuffer {
	return &writableBuffer{data: make([]byte, 0, capacity)}
}

func (w *writableBuffer) Capacity() int { return cap(w.data) }

func (w *writableBuffer) RemainingMut() int { return cap(w.data) - len(w.data) }

func (w *writableBuffer) Written() int { return len(w.data) }

func (w *writableBuffer) Reserve(n int) {
	if w.RemainingMut() >= n {
		return
	}

	grown := make([]byte, len(w.data), len(w.data)+n)
	copy(grown, w.data)
	w.data = grown
}

func (w *writableBuffer) PutSlice(src []byte) {
	w.Reserve(len(src))
	w.data = append(w.data, src...)
}

func (w *writableBuffer) WriteFrom(src ReadableBuffer) int {
	n := src.Remaining()
	w.Reserve(n)
	before := len(w.data)
	w.data = w.data[:before+n]
	src.CopyInto(w.data[before:])
	src.Advance(n)

	return n
}

func (w *writableBuffer) Clear() {
	w.data = w.data[:0]
}

func (w *writableBuffer) Freeze() ReadableBuffer {
	frozen := w.data
	w.data = nil

	return &bytesBuffer{data: frozen}
}
