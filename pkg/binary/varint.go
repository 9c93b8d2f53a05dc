package binary

import (
	"io"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/stream"
)

const (
	// MaxVarintLen32 is the widest legal encoding of an int.
	MaxVarintLen32 = 5

	// MaxVarintLen64 is the widest legal encoding of a long.
	MaxVarintLen64 = 10
)

// WriteInt encodes a 32-bit signed integer as a zigzag varint.
func WriteInt(w stream.Writer, v int32) error {
	u := (uint32(v) << 1) ^ uint32(v>>31)
	var buf [MaxVarintLen32]byte
	n := 0
	for u >= 0x80 {
		buf[n] = byte(u) | 0x80
		u >>= 7
		n++
	}
	buf[n] = byte(u)
	return writeAll(w, buf[:n+1])
}

// WriteLong encodes a 64-bit signed integer as a zigzag varint.
func WriteLong(w stream.Writer, v int64) error {
	u := (uint64(v) << 1) ^ uint64(v>>63)
	var buf [MaxVarintLen64]byte
	n := 0
	for u >= 0x80 {
		buf[n] = byte(u) | 0x80
		u >>= 7
		n++
	}
	buf[n] = byte(u)
	return writeAll(w, buf[:n+1])
}

// ReadInt decodes a zigzag varint into a 32-bit signed integer.
func ReadInt(r stream.Reader, v *int32) error {
	var u uint32
	var b [1]byte
	for i := 0; ; i++ {
		if i >= MaxVarintLen32 {
			return avro.Errorf(avro.KindMalformed, "varint exceeds %d bytes for int", MaxVarintLen32)
		}
		if err := readAll(r, b[:]); err != nil {
			return err
		}
		group := uint32(b[0] & 0x7f)
		shift := uint(7 * i)
		if shift == 28 && group > 0x0f {
			return avro.Errorf(avro.KindMalformed, "varint overflows int")
		}
		u |= group << shift
		if b[0]&0x80 == 0 {
			break
		}
	}
	*v = int32(u>>1) ^ -int32(u&1)
	return nil
}

// ReadLong decodes a zigzag varint into a 64-bit signed integer.
func ReadLong(r stream.Reader, v *int64) error {
	var u uint64
	var b [1]byte
	for i := 0; ; i++ {
		if i >= MaxVarintLen64 {
			return avro.Errorf(avro.KindMalformed, "varint exceeds %d bytes for long", MaxVarintLen64)
		}
		if err := readAll(r, b[:]); err != nil {
			return err
		}
		group := uint64(b[0] & 0x7f)
		shift := uint(7 * i)
		if shift == 63 && group > 0x01 {
			return avro.Errorf(avro.KindMalformed, "varint overflows long")
		}
		u |= group << shift
		if b[0]&0x80 == 0 {
			break
		}
	}
	*v = int64(u>>1) ^ -int64(u&1)
	return nil
}

// writeAll pushes p through the stream, classifying failures as KindIO.
func writeAll(w stream.Writer, p []byte) error {
	if err := w.Write(p); err != nil {
		return avro.Errorf(avro.KindIO, "write failed: %w", err)
	}
	return nil
}

// readAll fills p from the stream. Truncation is a wire-format error;
// anything else is a stream failure.
func readAll(r stream.Reader, p []byte) error {
	err := r.Read(p)
	switch {
	case err == nil:
		return nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return avro.Errorf(avro.KindMalformed, "unexpected end of stream: %w", err)
	default:
		return avro.Errorf(avro.KindIO, "read failed: %w", err)
	}
}
