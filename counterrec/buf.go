package counterrec

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

// ErrInsufficientSpace is returned by bufEncoder when the caller-supplied
// buffer is too small to hold the record being written. Callers surface
// this to the host so it can retry with a larger buffer.
var ErrInsufficientSpace = errors.New("counterrec: insufficient space in destination buffer")

// errTruncated is returned by bufDecoder when the source buffer ends
// before a record does.
var errTruncated = errors.New("counterrec: truncated counter record")

// bufDecoder reads fixed- and variable-width fields from a byte slice,
// advancing its own view and tracking how many bytes it has consumed so
// callers can re-align to a record boundary. Every read is unaligned: the
// wire format may place any field at any byte offset.
type bufDecoder struct {
	buf      []byte
	order    binary.ByteOrder
	consumed int
}

func newBufDecoder(buf []byte) *bufDecoder {
	return &bufDecoder{buf: buf, order: binary.LittleEndian}
}

func (b *bufDecoder) need(n int) error {
	if len(b.buf) < n {
		return errTruncated
	}
	return nil
}

func (b *bufDecoder) skip(n int) error {
	if err := b.need(n); err != nil {
		return err
	}
	b.buf = b.buf[n:]
	b.consumed += n
	return nil
}

func (b *bufDecoder) bytes(n int) ([]byte, error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	x := make([]byte, n)
	copy(x, b.buf[:n])
	b.buf = b.buf[n:]
	b.consumed += n
	return x, nil
}

func (b *bufDecoder) u32() (uint32, error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	x := b.order.Uint32(b.buf)
	b.buf = b.buf[4:]
	b.consumed += 4
	return x, nil
}

func (b *bufDecoder) i32() (int32, error) {
	x, err := b.u32()
	return int32(x), err
}

func (b *bufDecoder) u64() (uint64, error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	x := b.order.Uint64(b.buf)
	b.buf = b.buf[8:]
	b.consumed += 8
	return x, nil
}

// align advances past zero padding until consumed is a multiple of n,
// counting from the start of this decoder (i.e. from the start of the
// record it was constructed for).
func (b *bufDecoder) align(n int) error {
	pad := (n - b.consumed%n) % n
	return b.skip(pad)
}

// u16cstring reads a fixed byteLen region as UTF-16LE and trims every
// trailing NUL, if any.
func (b *bufDecoder) u16cstring(byteLen int) (string, error) {
	raw, err := b.bytes(byteLen)
	if err != nil {
		return "", err
	}
	units := make([]uint16, 0, byteLen/2)
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(raw[i:]))
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}

// bufEncoder is the write-side mirror of bufDecoder: it tracks remaining
// space in the caller's buffer and fails with ErrInsufficientSpace rather
// than panicking or silently truncating.
type bufEncoder struct {
	buf      []byte
	order    binary.ByteOrder
	consumed int
}

func newBufEncoder(buf []byte) *bufEncoder {
	return &bufEncoder{buf: buf, order: binary.LittleEndian}
}

func (e *bufEncoder) reserve(n int) error {
	if len(e.buf) < n {
		return ErrInsufficientSpace
	}
	return nil
}

func (e *bufEncoder) putBytes(x []byte) error {
	if err := e.reserve(len(x)); err != nil {
		return err
	}
	copy(e.buf, x)
	e.buf = e.buf[len(x):]
	e.consumed += len(x)
	return nil
}

func (e *bufEncoder) putZero(n int) error {
	if err := e.reserve(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		e.buf[i] = 0
	}
	e.buf = e.buf[n:]
	e.consumed += n
	return nil
}

func (e *bufEncoder) putU32(v uint32) error {
	if err := e.reserve(4); err != nil {
		return err
	}
	e.order.PutUint32(e.buf, v)
	e.buf = e.buf[4:]
	e.consumed += 4
	return nil
}

func (e *bufEncoder) putI32(v int32) error { return e.putU32(uint32(v)) }

func (e *bufEncoder) putU64(v uint64) error {
	if err := e.reserve(8); err != nil {
		return err
	}
	e.order.PutUint64(e.buf, v)
	e.buf = e.buf[8:]
	e.consumed += 8
	return nil
}

func (e *bufEncoder) align(n int) error {
	pad := (n - e.consumed%n) % n
	return e.putZero(pad)
}

// putU16cstring writes s as NUL-terminated UTF-16LE and returns the byte
// length written (including the terminator), for the caller to record in
// a *Length field.
func (e *bufEncoder) putU16cstring(s string) (int, error) {
	units := utf16.Encode([]rune(s))
	units = append(units, 0)
	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	if err := e.putBytes(raw); err != nil {
		return 0, err
	}
	return len(raw), nil
}

// u16cstringByteLen reports the encoded byte length (including the NUL
// terminator) of s without writing anything, so callers can size headers
// before the encoder reaches that point.
func u16cstringByteLen(s string) int {
	return (len(utf16.Encode([]rune(s))) + 1) * 2
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
