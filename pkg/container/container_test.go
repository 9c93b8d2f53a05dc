package container

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/codec"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
)

func eventSchema(t *testing.T) schema.Schema {
	t.Helper()
	record := schema.NewRecord("Event")
	require.NoError(t, record.AppendField("id", schema.Long()))
	require.NoError(t, record.AppendField("message", schema.String()))
	frozen, err := schema.Freeze(record)
	require.NoError(t, err)
	return frozen
}

func event(id int64, message string) datum.Datum {
	return datum.NewRecord().
		Set("id", datum.Long(id)).
		Set("message", datum.String(message))
}

func TestContainer_RoundTrip(t *testing.T) {
	for _, comp := range []Codec{CodecNull, CodecDeflate, CodecSnappy} {
		t.Run(string(comp), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "events.avro")
			s := eventSchema(t)

			writer, err := NewWriter(WriterConfig{
				Path:         path,
				Schema:       s,
				Codec:        comp,
				BlockRecords: 3, // force multiple blocks
			})
			require.NoError(t, err)

			const total = 10
			for i := 0; i < total; i++ {
				require.NoError(t, writer.Append(event(int64(i), "message")))
			}
			require.NoError(t, writer.Close())

			reader, err := NewReader(ReaderConfig{Path: path})
			require.NoError(t, err)
			defer reader.Close()

			assert.True(t, schema.Equal(s, reader.Schema()), "header carries the writer schema")

			for i := 0; i < total; i++ {
				d, err := reader.Next()
				require.NoError(t, err, "datum %d", i)
				assert.True(t, event(int64(i), "message").Equal(d), "datum %d = %s", i, d)
			}
			_, err = reader.Next()
			assert.True(t, errors.Is(err, io.EOF))
		})
	}
}

func TestContainer_ReaderSchemaResolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.avro")

	writer, err := NewWriter(WriterConfig{Path: path, Schema: eventSchema(t)})
	require.NoError(t, err)
	require.NoError(t, writer.Append(event(7, "hello")))
	require.NoError(t, writer.Close())

	// The reader dropped message and added a defaulted field.
	readerSchema := schema.NewRecord("Event")
	require.NoError(t, readerSchema.AppendField("id", schema.Long()))
	require.NoError(t, readerSchema.AppendField("source", schema.String()))
	frozen, err := schema.Freeze(readerSchema)
	require.NoError(t, err)

	reader, err := NewReader(ReaderConfig{
		Path:     path,
		Schema:   frozen,
		Defaults: codec.FieldDefaults{"Event.source": datum.String("unknown")},
	})
	require.NoError(t, err)
	defer reader.Close()

	d, err := reader.Next()
	require.NoError(t, err)
	expected := datum.NewRecord().
		Set("id", datum.Long(7)).
		Set("source", datum.String("unknown"))
	assert.True(t, expected.Equal(d), "got %s", d)
}

func TestContainer_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.avro")

	writer, err := NewWriter(WriterConfig{Path: path, Schema: eventSchema(t)})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := NewReader(ReaderConfig{Path: path})
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestContainer_RejectsWrongMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.avro")
	require.NoError(t, os.WriteFile(path, []byte("not an avro file"), 0600))

	_, err := NewReader(ReaderConfig{Path: path})
	require.Error(t, err)
	assert.True(t, avro.IsKind(err, avro.KindMalformed))
}

func TestContainer_DetectsSyncMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.avro")

	writer, err := NewWriter(WriterConfig{Path: path, Schema: eventSchema(t)})
	require.NoError(t, err)
	require.NoError(t, writer.Append(event(1, "x")))
	require.NoError(t, writer.Close())

	// Corrupt the final sync marker.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0600))

	reader, err := NewReader(ReaderConfig{Path: path})
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.Error(t, err)
	assert.True(t, avro.IsKind(err, avro.KindMalformed))
}

func TestContainer_UnknownCodecRejected(t *testing.T) {
	_, err := NewWriter(WriterConfig{
		Path:   filepath.Join(t.TempDir(), "x.avro"),
		Schema: eventSchema(t),
		Codec:  Codec("zstd"),
	})
	require.Error(t, err)
	assert.True(t, avro.IsKind(err, avro.KindInvalidSchema))
}
