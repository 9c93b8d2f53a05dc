package container

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/snappy"

	"github.com/rdblue/avro"
	avrobinary "github.com/rdblue/avro/pkg/binary"
	"github.com/rdblue/avro/pkg/codec"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// WriterConfig holds configuration for a container writer.
type WriterConfig struct {
	Path         string        // Destination file path
	Schema       schema.Schema // Frozen schema all appended datums conform to
	Codec        Codec         // Block compression, CodecNull when empty
	BlockRecords int           // Records per block before an automatic flush
}

// Writer appends datums to a container file, buffering them into blocks.
type Writer struct {
	file   *os.File
	out    *stream.FileWriter
	schema schema.Schema
	comp   Codec
	sync   [syncSize]byte
	block  *stream.BufferWriter
	count  int
	limit  int
}

// NewWriter creates the destination file and writes the container header.
func NewWriter(config WriterConfig) (*Writer, error) {
	if config.Schema == nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "container writer needs a schema")
	}
	comp := config.Codec
	if comp == "" {
		comp = CodecNull
	}
	switch comp {
	case CodecNull, CodecDeflate, CodecSnappy:
	default:
		return nil, avro.Errorf(avro.KindInvalidSchema, "unknown codec %q", comp)
	}
	limit := config.BlockRecords
	if limit <= 0 {
		limit = 100
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0750); err != nil {
		return nil, avro.Errorf(avro.KindIO, "create directory: %w", err)
	}
	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, avro.Errorf(avro.KindIO, "open container file: %w", err)
	}

	w := &Writer{
		file:   file,
		out:    stream.NewFileWriter(file),
		schema: config.Schema,
		comp:   comp,
		block:  stream.NewBufferWriter(),
		limit:  limit,
	}
	if _, err := rand.Read(w.sync[:]); err != nil {
		file.Close()
		return nil, avro.Errorf(avro.KindIO, "generate sync marker: %w", err)
	}
	if err := w.writeHeader(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	if err := w.out.Write(magic[:]); err != nil {
		return avro.Errorf(avro.KindIO, "write magic: %w", err)
	}
	schemaJSON, err := schema.ToJSON(w.schema)
	if err != nil {
		return err
	}
	// The header metadata is itself an Avro map<string, bytes>.
	if err := avrobinary.WriteLong(w.out, 2); err != nil {
		return err
	}
	if err := avrobinary.WriteString(w.out, metaCodecKey); err != nil {
		return err
	}
	if err := avrobinary.WriteBytes(w.out, []byte(w.comp)); err != nil {
		return err
	}
	if err := avrobinary.WriteString(w.out, metaSchemaKey); err != nil {
		return err
	}
	if err := avrobinary.WriteBytes(w.out, schemaJSON); err != nil {
		return err
	}
	if err := avrobinary.WriteLong(w.out, 0); err != nil {
		return err
	}
	if err := w.out.Write(w.sync[:]); err != nil {
		return avro.Errorf(avro.KindIO, "write sync marker: %w", err)
	}
	return nil
}

// Append serializes d into the current block, flushing the block once it
// reaches the configured record count.
func (w *Writer) Append(d datum.Datum) error {
	if err := codec.Write(w.schema, d, w.block); err != nil {
		return err
	}
	w.count++
	if w.count >= w.limit {
		return w.flushBlock()
	}
	return nil
}

func (w *Writer) flushBlock() error {
	if w.count == 0 {
		return nil
	}
	payload, err := compress(w.comp, w.block.Bytes())
	if err != nil {
		return err
	}
	if err := avrobinary.WriteLong(w.out, int64(w.count)); err != nil {
		return err
	}
	if err := avrobinary.WriteLong(w.out, int64(len(payload))); err != nil {
		return err
	}
	if err := w.out.Write(payload); err != nil {
		return avro.Errorf(avro.KindIO, "write block: %w", err)
	}
	if err := w.out.Write(w.sync[:]); err != nil {
		return avro.Errorf(avro.KindIO, "write sync marker: %w", err)
	}
	w.count = 0
	w.block.Reset()
	return nil
}

// Flush writes any buffered block and pushes bytes to the kernel.
func (w *Writer) Flush() error {
	if err := w.flushBlock(); err != nil {
		return err
	}
	if err := w.out.Flush(); err != nil {
		return avro.Errorf(avro.KindIO, "flush: %w", err)
	}
	return nil
}

// Close flushes, syncs, and closes the file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.out.Sync(); err != nil {
		w.file.Close()
		return avro.Errorf(avro.KindIO, "sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return avro.Errorf(avro.KindIO, "close: %w", err)
	}
	return nil
}

func compress(comp Codec, data []byte) ([]byte, error) {
	switch comp {
	case CodecNull:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil

	case CodecDeflate:
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, avro.Errorf(avro.KindIO, "deflate: %w", err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, avro.Errorf(avro.KindIO, "deflate: %w", err)
		}
		if err := fw.Close(); err != nil {
			return nil, avro.Errorf(avro.KindIO, "deflate: %w", err)
		}
		return buf.Bytes(), nil

	case CodecSnappy:
		out := snappy.Encode(nil, data)
		var crc [4]byte
		binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(data))
		return append(out, crc[:]...), nil

	default:
		return nil, avro.Errorf(avro.KindInvalidSchema, "unknown codec %q", comp)
	}
}
