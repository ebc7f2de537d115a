package crt

import "unsafe"

// Access selects the allocation intent for Allocate. The numeric values
// are stable so they can be passed through to the driver without
// translation.
type Access int

const (
	AccessReadOnly Access = iota
	AccessWriteOnly
	AccessReadWrite
)

// MapAccess selects the mapping intent for Map. MapWriteInvalidate
// signals that the existing buffer contents may be discarded, enabling a
// pure producer path that skips a device-to-host copy on map.
type MapAccess int

const (
	MapRead MapAccess = iota
	MapWriteInvalidate
	MapReadWrite
)

// Buffer is the typed memory handle (C3): an owning wrapper around a
// device buffer bound to the context that allocated it. Map returns a
// MappedBuffer, the only type through which the host pointer is
// reachable; kernels only accept Buffer arguments, never MappedBuffer.
// The *Buffer itself stays usable while it is mapped, and neither Map
// nor EnqueueRange1D tracks mapping state, so a kernel that references
// a still-mapped buffer is not rejected.
type Buffer struct {
	ctx    *Context
	h      handle
	bytes  int64
	access Access
}

// Context returns the context this buffer is bound to.
func (b *Buffer) Context() *Context { return b.ctx }

// Bytes returns the buffer's allocated size.
func (b *Buffer) Bytes() int64 { return b.bytes }

// MappedBuffer is a Buffer currently mapped into host-addressable memory.
// The mapped pointer is valid only until Unmap is called; using it after
// Unmap, or enqueuing a kernel that references the underlying buffer
// before Unmap, are both programmer errors.
type MappedBuffer struct {
	buf *Buffer
	ptr unsafe.Pointer
}

// Ptr returns the mapped host pointer.
func (m *MappedBuffer) Ptr() unsafe.Pointer { return m.ptr }

// Bytes reinterprets the mapped region as a byte slice of length n, for
// callers that want to read or write through Go slice operations instead
// of unsafe.Pointer arithmetic. n is not checked against the mapped
// length.
func (m *MappedBuffer) Bytes(n int) []byte {
	return unsafe.Slice((*byte)(m.ptr), n)
}

// Allocate allocates a host-mappable buffer bound to ctx. All buffers are
// pinned (host-accessible) to allow zero-copy mapping.
func (ctx *Context) Allocate(access Access, bytes int64) (*Buffer, error) {
	if bytes <= 0 {
		return nil, newError(ErrInvalidBufferSize, "allocate: bytes=%d", bytes)
	}
	h, err := ctx.drv.createBuffer(ctx.h, access, bytes)
	if err != nil {
		return nil, wrapError(ErrMemObjectAllocationFailure, err, "allocate %d bytes", bytes)
	}
	buf := &Buffer{ctx: ctx, h: h, bytes: bytes, access: access}
	ctx.trackBuffer(buf)
	return buf, nil
}

// Deallocate releases buf. buf must not be mapped and must not be
// referenced by any kernel still in flight on ctx's queue.
func (ctx *Context) Deallocate(buf *Buffer) {
	ctx.untrackBuffer(buf)
	ctx.drv.releaseBuffer(buf.h)
}

// Map blocks until buf's contents (for MapRead/MapReadWrite) are visible
// to the host and returns a MappedBuffer exposing the mapped region.
// Map must be called before any host access to buf, and the returned
// MappedBuffer must be passed to Unmap before any kernel referencing buf
// is enqueued.
func (ctx *Context) Map(access MapAccess, buf *Buffer, offset, bytes int64) (*MappedBuffer, error) {
	if offset < 0 || bytes <= 0 || offset+bytes > buf.bytes {
		return nil, newError(ErrInvalidBufferSize, "map: offset=%d bytes=%d buf.bytes=%d", offset, bytes, buf.bytes)
	}
	ptr, err := ctx.drv.mapBuffer(ctx.h, ctx.queue, buf.h, access, offset, bytes)
	if err != nil {
		return nil, wrapError(ErrInvalidHostPtr, err, "map")
	}
	return &MappedBuffer{buf: buf, ptr: ptr}, nil
}

// Unmap releases the host mapping. m must not be used after Unmap
// returns.
func (ctx *Context) Unmap(m *MappedBuffer) error {
	if err := ctx.drv.unmapBuffer(ctx.h, ctx.queue, m.buf.h, m.ptr); err != nil {
		return wrapError(ErrInvalidMemObject, err, "unmap")
	}
	m.ptr = nil
	return nil
}
