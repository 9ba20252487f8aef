// Package binread implements cursor-based decoding of the fixed binary
// primitives used by the game's data containers: little-endian integers,
// length-prefixed strings in two text encodings, padded int32 arrays, and
// 7-bit variable-length integers.
//
// A Reader never panics on truncated input; every read reports an explicit
// error once the cursor would run past the end of the buffer.
package binread

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// ErrShortBuffer is wrapped by every read that runs past end of input.
var ErrShortBuffer = fmt.Errorf("binread: short buffer")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// Reader decodes primitives from a byte buffer at a mutable offset.
type Reader struct {
	data []byte
	off  int
}

// New returns a Reader positioned at the start of data.
func New(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int { return r.off }

// Seek moves the cursor to an absolute offset.
func (r *Reader) Seek(off int) { r.off = off }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrShortBuffer, n, r.off, len(r.data)-r.off)
	}
	return nil
}

// Bytes consumes and returns the next n raw bytes.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Uint32 reads a little-endian unsigned 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// Int32 reads a little-endian signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// String reads a u32 length prefix followed by that many ASCII bytes.
func (r *Reader) String() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UTF16String reads a u32 code-unit count followed by count*2 bytes of
// UTF-16LE text. Malformed code units are replaced, not rejected; the
// shipped language files contain a handful of unpaired surrogates.
func (r *Reader) UTF16String() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n) * 2)
	if err != nil {
		return "", err
	}
	s, err := utf16le.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("binread: decode utf-16: %w", err)
	}
	return string(s), nil
}

// Int32Array reads a u32 element count, a 4-byte padding field, and then
// count little-endian int32 values.
func (r *Reader) Int32Array() ([]int32, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.Uint32(); err != nil { // padding
		return nil, err
	}
	if err := r.need(int(n) * 4); err != nil {
		return nil, err
	}
	vals := make([]int32, n)
	for i := range vals {
		vals[i] = int32(binary.LittleEndian.Uint32(r.data[r.off:]))
		r.off += 4
	}
	return vals, nil
}

// Uvarint reads a 7-bit variable-length unsigned integer: the low seven
// bits of each byte carry the value, the high bit marks continuation.
func (r *Reader) Uvarint() (uint64, error) {
	var v uint64
	var shift uint
	for {
		if err := r.need(1); err != nil {
			return 0, err
		}
		b := r.data[r.off]
		r.off++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("binread: varint overflow at offset %d", r.off)
		}
	}
}
