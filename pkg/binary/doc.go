// Package binary implements the Avro primitive wire encoding over the
// stream interfaces. It is the layer both engines are built on.
//
// # Wire Format
//
// Values are encoded as follows:
//
//	null          0 bytes
//	boolean       1 byte: 0x00 false, 0x01 true
//	int, long     zigzag varint, at most 5 resp. 10 bytes
//	float         4 bytes, IEEE-754 binary32, little-endian
//	double        8 bytes, IEEE-754 binary64, little-endian
//	bytes         long length N, then N raw bytes
//	string        as bytes; contents must be valid UTF-8
//
// # Zigzag Varint
//
// Signed integers are interleaved onto the unsigned range so small
// magnitudes stay short: zz(n) = (n << 1) XOR (n >> bits-1). The unsigned
// result is emitted 7 bits per byte, least significant group first, with
// the high bit set on every byte except the last. Encodings are minimal
// length; the decoder rejects varints longer than the type's maximum
// width and values that overflow the target type.
//
// # Error Handling
//
// Truncated input and invalid byte patterns surface as KindMalformed
// errors; failures of the underlying stream surface as KindIO. The
// package never panics on wire input.
package binary
