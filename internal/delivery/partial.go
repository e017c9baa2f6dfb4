package delivery

import (
	"errors"
	"fmt"
	"io"
)

// ErrOutOfRange marks a seek target outside a partial stream's window.
var ErrOutOfRange = errors.New("seek out of range")

// PartialStream presents the window [offset, offset+length) of an underlying
// seekable stream as its own readable, seekable stream. Position is relative
// to the window and starts at 0. The underlying stream is repositioned before
// every physical read, so several PartialStreams may not share one underlying
// stream concurrently.
type PartialStream struct {
	src    io.ReadSeeker
	offset int64
	length int64
	pos    int64
}

// NewPartialStream creates a window over src. offset and length must describe
// a valid slice of the underlying stream; that is the caller's responsibility
// (range parsing already validated it against the object size).
func NewPartialStream(src io.ReadSeeker, offset, length int64) *PartialStream {
	return &PartialStream{src: src, offset: offset, length: length}
}

// Length returns the window length in bytes.
func (p *PartialStream) Length() int64 { return p.length }

// Position returns the current window-relative position.
func (p *PartialStream) Position() int64 { return p.pos }

func (p *PartialStream) Read(buf []byte) (int, error) {
	remaining := p.length - p.pos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}

	if _, err := p.src.Seek(p.offset+p.pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to position underlying stream: %w", err)
	}

	n, err := p.src.Read(buf)
	p.pos += int64(n)
	if err == io.EOF && p.pos < p.length {
		// Underlying stream ended before the window did.
		return n, io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Seek moves the window-relative position. Targets outside [0, length] fail
// with ErrOutOfRange; a position equal to length is valid and reads EOF.
func (p *PartialStream) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = p.pos + offset
	case io.SeekEnd:
		target = p.length + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if target < 0 || target > p.length {
		return 0, fmt.Errorf("%w: position %d not in [0, %d]", ErrOutOfRange, target, p.length)
	}
	p.pos = target
	return target, nil
}

// BufferedPartialStream decorates a PartialStream with a fixed-size read-ahead
// buffer. HTTP response writers tend to issue many small reads; against a
// network-backed object store each of those would otherwise cost a seek plus a
// short read. The buffer refills with min(capacity, remaining-in-window) bytes
// so it never reads past the window.
type BufferedPartialStream struct {
	inner *PartialStream
	buf   []byte
	fill  int // valid bytes in buf
	off   int // consumed bytes in buf
}

// NewBufferedPartialStream wraps a window of src with a read-ahead buffer of
// the given capacity.
func NewBufferedPartialStream(src io.ReadSeeker, offset, length int64, capacity int) *BufferedPartialStream {
	return &BufferedPartialStream{
		inner: NewPartialStream(src, offset, length),
		buf:   make([]byte, capacity),
	}
}

// Length returns the window length in bytes.
func (b *BufferedPartialStream) Length() int64 { return b.inner.Length() }

// Position returns the window-relative position of the next logical read.
func (b *BufferedPartialStream) Position() int64 {
	return b.inner.Position() - int64(b.fill-b.off)
}

func (b *BufferedPartialStream) Read(p []byte) (int, error) {
	if b.off >= b.fill {
		if err := b.refill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, b.buf[b.off:b.fill])
	b.off += n
	return n, nil
}

func (b *BufferedPartialStream) refill() error {
	b.off, b.fill = 0, 0
	want := b.inner.Length() - b.inner.Position()
	if want <= 0 {
		return io.EOF
	}
	if want > int64(len(b.buf)) {
		want = int64(len(b.buf))
	}
	n, err := io.ReadFull(b.inner, b.buf[:want])
	if n > 0 {
		b.fill = n
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	return err
}

// Seek discards the buffer and repositions the window; the next read refills.
func (b *BufferedPartialStream) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent {
		offset -= int64(b.fill - b.off)
	}
	pos, err := b.inner.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	b.off, b.fill = 0, 0
	return pos, nil
}
