package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/snappy"

	"github.com/rdblue/avro"
	avrobinary "github.com/rdblue/avro/pkg/binary"
	"github.com/rdblue/avro/pkg/codec"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// ReaderConfig holds configuration for a container reader.
type ReaderConfig struct {
	Path string // Source file path

	// Schema is the reader's schema. When nil, datums decode under the
	// schema stored in the file header.
	Schema schema.Schema

	// Defaults supplies reader-side field defaults during resolution.
	Defaults codec.DefaultSource
}

// Reader iterates over the datums of a container file.
type Reader struct {
	file     *os.File
	in       *stream.FileReader
	writer   schema.Schema
	reader   schema.Schema
	defaults codec.DefaultSource
	comp     Codec
	sync     [syncSize]byte

	block     *stream.MemoryReader
	remaining int64
}

// NewReader opens path and parses the container header.
func NewReader(config ReaderConfig) (*Reader, error) {
	file, err := os.Open(config.Path)
	if err != nil {
		return nil, avro.Errorf(avro.KindIO, "open container file: %w", err)
	}
	r := &Reader{
		file:     file,
		in:       stream.NewFileReader(file),
		reader:   config.Schema,
		defaults: config.Defaults,
	}
	if err := r.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	if r.reader == nil {
		r.reader = r.writer
	}
	return r, nil
}

// Schema returns the schema stored in the file header.
func (r *Reader) Schema() schema.Schema {
	return r.writer
}

func (r *Reader) readHeader() error {
	var m [4]byte
	if err := r.in.Read(m[:]); err != nil {
		return avro.Errorf(avro.KindMalformed, "read magic: %w", err)
	}
	if m != magic {
		return avro.Errorf(avro.KindMalformed, "not a container file")
	}

	meta := map[string][]byte{}
	for {
		var count int64
		if err := avrobinary.ReadLong(r.in, &count); err != nil {
			return err
		}
		if count == 0 {
			break
		}
		if count < 0 {
			count = -count
			var size int64
			if err := avrobinary.ReadLong(r.in, &size); err != nil {
				return err
			}
		}
		for i := int64(0); i < count; i++ {
			var key string
			if err := avrobinary.ReadString(r.in, &key); err != nil {
				return err
			}
			var value []byte
			if err := avrobinary.ReadBytes(r.in, &value); err != nil {
				return err
			}
			meta[key] = value
		}
	}

	schemaJSON, ok := meta[metaSchemaKey]
	if !ok {
		return avro.Errorf(avro.KindMalformed, "container has no %s entry", metaSchemaKey)
	}
	parsed, err := schema.ParseJSON(schemaJSON)
	if err != nil {
		return err
	}
	r.writer = parsed

	r.comp = CodecNull
	if c, ok := meta[metaCodecKey]; ok {
		r.comp = Codec(c)
	}
	switch r.comp {
	case CodecNull, CodecDeflate, CodecSnappy:
	default:
		return avro.Errorf(avro.KindMalformed, "unknown codec %q", r.comp)
	}

	if err := r.in.Read(r.sync[:]); err != nil {
		return avro.Errorf(avro.KindMalformed, "read sync marker: %w", err)
	}
	return nil
}

// Next decodes the next datum, loading new blocks as needed. It returns
// io.EOF at the clean end of the file.
func (r *Reader) Next() (datum.Datum, error) {
	for r.remaining == 0 {
		if err := r.nextBlock(); err != nil {
			return nil, err
		}
	}
	d, err := codec.ReadWithDefaults(r.block, r.writer, r.reader, r.defaults)
	if err != nil {
		return nil, err
	}
	r.remaining--
	return d, nil
}

func (r *Reader) nextBlock() error {
	var count int64
	if err := avrobinary.ReadLong(r.in, &count); err != nil {
		// A clean EOF at a block boundary ends the file.
		if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}
	if count < 0 {
		return avro.Errorf(avro.KindMalformed, "negative block count %d", count)
	}
	var size int64
	if err := avrobinary.ReadLong(r.in, &size); err != nil {
		return err
	}
	if size < 0 {
		return avro.Errorf(avro.KindMalformed, "negative block size %d", size)
	}
	payload := make([]byte, size)
	if err := r.in.Read(payload); err != nil {
		return avro.Errorf(avro.KindMalformed, "read block: %w", err)
	}
	var marker [syncSize]byte
	if err := r.in.Read(marker[:]); err != nil {
		return avro.Errorf(avro.KindMalformed, "read sync marker: %w", err)
	}
	if marker != r.sync {
		return avro.Errorf(avro.KindMalformed, "sync marker mismatch")
	}
	data, err := decompress(r.comp, payload)
	if err != nil {
		return err
	}
	r.block = stream.NewMemoryReader(data)
	r.remaining = count
	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func decompress(comp Codec, payload []byte) ([]byte, error) {
	switch comp {
	case CodecNull:
		return payload, nil

	case CodecDeflate:
		fr := flate.NewReader(bytes.NewReader(payload))
		defer fr.Close()
		data, err := io.ReadAll(fr)
		if err != nil {
			return nil, avro.Errorf(avro.KindMalformed, "inflate: %w", err)
		}
		return data, nil

	case CodecSnappy:
		if len(payload) < 4 {
			return nil, avro.Errorf(avro.KindMalformed, "snappy block too short")
		}
		body, crc := payload[:len(payload)-4], payload[len(payload)-4:]
		data, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, avro.Errorf(avro.KindMalformed, "snappy: %w", err)
		}
		if crc32.ChecksumIEEE(data) != binary.BigEndian.Uint32(crc) {
			return nil, avro.Errorf(avro.KindMalformed, "snappy checksum mismatch")
		}
		return data, nil

	default:
		return nil, avro.Errorf(avro.KindMalformed, "unknown codec %q", comp)
	}
}
