package codec

import (
	"io"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/binary"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// Skip advances r past one value of schema s without materializing it.
// It is used for writer-only record fields during resolution and honors
// the byte-size prefix on negative block counts to jump whole blocks.
func Skip(r stream.Reader, s schema.Schema) error {
	s = schema.Resolve(s)

	switch s.Type() {
	case schema.TypeNull:
		return nil

	case schema.TypeBoolean:
		return skipN(r, 1)

	case schema.TypeInt:
		var v int32
		return binary.ReadInt(r, &v)

	case schema.TypeLong, schema.TypeEnum:
		var v int64
		return binary.ReadLong(r, &v)

	case schema.TypeFloat:
		return skipN(r, 4)

	case schema.TypeDouble:
		return skipN(r, 8)

	case schema.TypeBytes, schema.TypeString:
		var n int64
		if err := binary.ReadLong(r, &n); err != nil {
			return err
		}
		if n < 0 {
			return avro.Errorf(avro.KindMalformed, "negative length %d", n)
		}
		return skipN(r, n)

	case schema.TypeFixed:
		return skipN(r, int64(s.(*schema.FixedSchema).Size()))

	case schema.TypeUnion:
		u := s.(*schema.UnionSchema)
		var index int64
		if err := binary.ReadLong(r, &index); err != nil {
			return err
		}
		branch, ok := u.Branch(int(index))
		if !ok {
			return avro.Errorf(avro.KindMalformed, "union branch %d out of range [0,%d)", index, len(u.Branches()))
		}
		return Skip(r, branch)

	case schema.TypeRecord:
		for _, field := range s.(*schema.RecordSchema).Fields() {
			if err := Skip(r, field.Schema); err != nil {
				return err
			}
		}
		return nil

	case schema.TypeArray:
		return skipBlocks(r, func() error {
			return Skip(r, s.(*schema.ArraySchema).Items())
		})

	case schema.TypeMap:
		values := s.(*schema.MapSchema).Values()
		return skipBlocks(r, func() error {
			var n int64
			if err := binary.ReadLong(r, &n); err != nil {
				return err
			}
			if n < 0 {
				return avro.Errorf(avro.KindMalformed, "negative length %d", n)
			}
			if err := skipN(r, n); err != nil {
				return err
			}
			return Skip(r, values)
		})

	default:
		return avro.Errorf(avro.KindSchemaMismatch, "cannot skip %s schema", s.Type())
	}
}

// skipBlocks walks the block framing, jumping sized blocks in one skip
// and falling back to per-entry skips for unsized ones.
func skipBlocks(r stream.Reader, skipEntry func() error) error {
	for {
		var count int64
		if err := binary.ReadLong(r, &count); err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			var size int64
			if err := binary.ReadLong(r, &size); err != nil {
				return err
			}
			if size < 0 {
				return avro.Errorf(avro.KindMalformed, "negative block size %d", size)
			}
			if err := skipN(r, size); err != nil {
				return err
			}
			continue
		}
		for i := int64(0); i < count; i++ {
			if err := skipEntry(); err != nil {
				return err
			}
		}
	}
}

func skipN(r stream.Reader, n int64) error {
	err := r.Skip(n)
	switch {
	case err == nil:
		return nil
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return avro.Errorf(avro.KindMalformed, "unexpected end of stream: %w", err)
	default:
		return avro.Errorf(avro.KindIO, "skip failed: %w", err)
	}
}
