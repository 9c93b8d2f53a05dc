package binary

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/stream"
)

// WriteNull encodes a null value, which occupies no bytes.
func WriteNull(w stream.Writer) error {
	return nil
}

// ReadNull decodes a null value, consuming no bytes.
func ReadNull(r stream.Reader) error {
	return nil
}

// WriteBoolean encodes a boolean as a single byte.
func WriteBoolean(w stream.Writer, v bool) error {
	b := [1]byte{0x00}
	if v {
		b[0] = 0x01
	}
	return writeAll(w, b[:])
}

// ReadBoolean decodes a boolean, rejecting any byte other than 0x00 or 0x01.
func ReadBoolean(r stream.Reader, v *bool) error {
	var b [1]byte
	if err := readAll(r, b[:]); err != nil {
		return err
	}
	switch b[0] {
	case 0x00:
		*v = false
	case 0x01:
		*v = true
	default:
		return avro.Errorf(avro.KindMalformed, "invalid boolean byte 0x%02x", b[0])
	}
	return nil
}

// WriteFloat encodes an IEEE-754 binary32 value, little-endian.
func WriteFloat(w stream.Writer, v float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return writeAll(w, buf[:])
}

// ReadFloat decodes an IEEE-754 binary32 value.
func ReadFloat(r stream.Reader, v *float32) error {
	var buf [4]byte
	if err := readAll(r, buf[:]); err != nil {
		return err
	}
	*v = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
	return nil
}

// WriteDouble encodes an IEEE-754 binary64 value, little-endian.
func WriteDouble(w stream.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return writeAll(w, buf[:])
}

// ReadDouble decodes an IEEE-754 binary64 value.
func ReadDouble(r stream.Reader, v *float64) error {
	var buf [8]byte
	if err := readAll(r, buf[:]); err != nil {
		return err
	}
	*v = math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
	return nil
}

// WriteBytes encodes a length-prefixed byte sequence.
func WriteBytes(w stream.Writer, v []byte) error {
	if err := WriteLong(w, int64(len(v))); err != nil {
		return err
	}
	return writeAll(w, v)
}

// ReadBytes decodes a length-prefixed byte sequence.
func ReadBytes(r stream.Reader, v *[]byte) error {
	var n int64
	if err := ReadLong(r, &n); err != nil {
		return err
	}
	buf, err := readSized(r, n)
	if err != nil {
		return err
	}
	*v = buf
	return nil
}

// WriteString encodes a length-prefixed UTF-8 string.
func WriteString(w stream.Writer, v string) error {
	if err := WriteLong(w, int64(len(v))); err != nil {
		return err
	}
	return writeAll(w, []byte(v))
}

// ReadString decodes a length-prefixed string, verifying UTF-8 validity.
func ReadString(r stream.Reader, v *string) error {
	var buf []byte
	if err := ReadBytes(r, &buf); err != nil {
		return err
	}
	if !utf8.Valid(buf) {
		return avro.Errorf(avro.KindMalformed, "string is not valid UTF-8")
	}
	*v = string(buf)
	return nil
}

// WriteFixed encodes raw bytes with no length prefix.
func WriteFixed(w stream.Writer, v []byte) error {
	return writeAll(w, v)
}

// ReadFixed decodes exactly size raw bytes.
func ReadFixed(r stream.Reader, size int, v *[]byte) error {
	buf, err := readSized(r, int64(size))
	if err != nil {
		return err
	}
	*v = buf
	return nil
}

// readSized reads n declared bytes, growing the result in bounded chunks
// so a corrupt length claim hits end-of-stream before exhausting memory.
func readSized(r stream.Reader, n int64) ([]byte, error) {
	if n < 0 {
		return nil, avro.Errorf(avro.KindMalformed, "negative length %d", n)
	}
	const chunk = 64 << 10
	if n <= chunk {
		buf := make([]byte, n)
		if err := readAll(r, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}
	buf := make([]byte, 0, chunk)
	var part [chunk]byte
	for n > 0 {
		step := int64(chunk)
		if step > n {
			step = n
		}
		if err := readAll(r, part[:step]); err != nil {
			return nil, err
		}
		buf = append(buf, part[:step]...)
		n -= step
	}
	return buf, nil
}
