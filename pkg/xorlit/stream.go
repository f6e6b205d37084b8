package xorlit

import (
	"errors"
	"fmt"
	"io"
)

// Reader extends io.Reader, but also provides a way to reuse a key with a different source.
type Reader interface {
	io.Reader
	// Reset will use the provided io.Reader and reset the offset position within the key to its initial value.
	Reset(source io.Reader)
}

// Writer extends io.Writer, but also provides a way to reuse a key with a different target.
type Writer interface {
	io.Writer
	// Reset will use the provided io.Writer and reset the offset position within the key to its initial value.
	Reset(target io.Writer)
}

// ring screens bytes with a multi-byte key, wrapping back to the first key byte after the last.
// Embedded files use this rather than a single Key, since a longer key hides repetition in larger payloads.
type ring struct {
	key  []byte
	init int
	cur  int
}

func newRing(key []byte, offset ...int) (*ring, error) {
	if len(key) == 0 {
		return nil, errors.New("cannot use empty key")
	}
	r := &ring{key: key}
	if len(offset) > 0 {
		if offset[0] < 0 || offset[0] >= len(key) {
			return nil, fmt.Errorf("offset %d out of range for provided key of len %d", offset[0], len(key))
		}
		r.init = offset[0]
		r.cur = r.init
	}
	return r, nil
}

func (r *ring) apply(dst, src []byte) {
	for i, b := range src {
		dst[i] = b ^ r.key[r.cur]
		r.cur = (r.cur + 1) % len(r.key)
	}
}

func (r *ring) reset() {
	r.cur = r.init
}

var _ Reader = (*reader)(nil)

type reader struct {
	source io.Reader
	ring   *ring
}

// NewReader constructs a Reader that unscreens all bytes read with the provided key, starting at offset.
func NewReader(r io.Reader, key []byte, offset ...int) (Reader, error) {
	rg, err := newRing(key, offset...)
	if err != nil {
		return nil, err
	}
	return &reader{source: r, ring: rg}, nil
}

func (r *reader) Read(out []byte) (n int, err error) {
	n, err = r.source.Read(out)
	r.ring.apply(out[:n], out[:n])
	return n, err
}

func (r *reader) Reset(source io.Reader) {
	r.source = source
	r.ring.reset()
}

var _ Writer = (*writer)(nil)

type writer struct {
	target io.Writer
	ring   *ring
	buf    []byte
}

// NewWriter constructs a Writer that screens all bytes written with the provided key, starting at offset.
func NewWriter(target io.Writer, key []byte, offset ...int) (Writer, error) {
	rg, err := newRing(key, offset...)
	if err != nil {
		return nil, err
	}
	return &writer{target: target, ring: rg}, nil
}

func (w *writer) Write(in []byte) (n int, err error) {
	if cap(w.buf) < len(in) {
		w.buf = make([]byte, len(in))
	}
	buf := w.buf[:len(in)]
	w.ring.apply(buf, in)
	return w.target.Write(buf)
}

func (w *writer) Reset(target io.Writer) {
	w.target = target
	w.ring.reset()
}
