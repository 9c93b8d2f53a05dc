// Package container reads and writes Avro object container files: a
// header carrying the writer's schema and codec, followed by blocks of
// serialized datums separated by a sync marker. Blocks are individually
// compressed, so a reader can resynchronize and skip without decoding.
package container

// Codec names the compression applied to each block's payload.
type Codec string

const (
	// CodecNull stores block payloads uncompressed.
	CodecNull Codec = "null"

	// CodecDeflate compresses payloads with a raw DEFLATE stream.
	CodecDeflate Codec = "deflate"

	// CodecSnappy compresses payloads with snappy and appends a CRC32
	// of the uncompressed bytes.
	CodecSnappy Codec = "snappy"
)

// magic identifies a container file: "Obj" and a format version byte.
var magic = [4]byte{'O', 'b', 'j', 0x01}

const (
	// syncSize is the length of the marker separating blocks.
	syncSize = 16

	metaSchemaKey = "avro.schema"
	metaCodecKey  = "avro.codec"
)
