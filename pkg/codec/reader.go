package codec

import (
	"math"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/binary"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// Read decodes one value written under writerSchema into a datum
// conforming to readerSchema. A nil readerSchema defaults to the writer's.
// Missing reader fields fail the decode; use ReadWithDefaults to supply a
// policy for them.
func Read(r stream.Reader, writerSchema, readerSchema schema.Schema) (datum.Datum, error) {
	return ReadWithDefaults(r, writerSchema, readerSchema, NoDefaults{})
}

// ReadWithDefaults is Read with an explicit source for reader-side record
// field defaults.
func ReadWithDefaults(r stream.Reader, writerSchema, readerSchema schema.Schema, defaults DefaultSource) (datum.Datum, error) {
	if writerSchema == nil {
		return nil, avro.Errorf(avro.KindSchemaMismatch, "no writer schema")
	}
	if readerSchema == nil {
		readerSchema = writerSchema
	}
	if defaults == nil {
		defaults = NoDefaults{}
	}
	return read(r, writerSchema, readerSchema, defaults)
}

func read(r stream.Reader, w, rs schema.Schema, defaults DefaultSource) (datum.Datum, error) {
	w, rs = schema.Resolve(w), schema.Resolve(rs)
	if !schema.Match(w, rs) {
		return nil, avro.Errorf(avro.KindSchemaMismatch, "writer %s does not resolve to reader %s", w.Type(), rs.Type())
	}

	// Union resolution first: branch selection decides which concrete
	// pair the value decodes under.
	if wu, ok := w.(*schema.UnionSchema); ok {
		var index int64
		if err := binary.ReadLong(r, &index); err != nil {
			return nil, err
		}
		branch, ok := wu.Branch(int(index))
		if !ok {
			return nil, avro.Errorf(avro.KindMalformed, "union branch %d out of range [0,%d)", index, len(wu.Branches()))
		}
		if ru, ok := rs.(*schema.UnionSchema); ok {
			rb := firstMatching(branch, ru)
			if rb == nil {
				return nil, avro.Errorf(avro.KindSchemaMismatch, "reader union has no branch for writer %s", schema.Resolve(branch).Type())
			}
			return read(r, branch, rb, defaults)
		}
		return read(r, branch, rs, defaults)
	}
	if ru, ok := rs.(*schema.UnionSchema); ok {
		rb := firstMatching(w, ru)
		if rb == nil {
			return nil, avro.Errorf(avro.KindSchemaMismatch, "reader union has no branch for writer %s", w.Type())
		}
		return read(r, w, rb, defaults)
	}

	switch w.Type() {
	case schema.TypeNull:
		if err := binary.ReadNull(r); err != nil {
			return nil, err
		}
		return datum.Null{}, nil

	case schema.TypeBoolean:
		var v bool
		if err := binary.ReadBoolean(r, &v); err != nil {
			return nil, err
		}
		return datum.Boolean(v), nil

	case schema.TypeInt:
		var v int32
		if err := binary.ReadInt(r, &v); err != nil {
			return nil, err
		}
		return widenInt(v, rs), nil

	case schema.TypeLong:
		var v int64
		if err := binary.ReadLong(r, &v); err != nil {
			return nil, err
		}
		return widenLong(v, rs), nil

	case schema.TypeFloat:
		var v float32
		if err := binary.ReadFloat(r, &v); err != nil {
			return nil, err
		}
		if rs.Type() == schema.TypeDouble {
			return datum.Double(float64(v)), nil
		}
		return datum.Float(v), nil

	case schema.TypeDouble:
		var v float64
		if err := binary.ReadDouble(r, &v); err != nil {
			return nil, err
		}
		return datum.Double(v), nil

	case schema.TypeBytes:
		var v []byte
		if err := binary.ReadBytes(r, &v); err != nil {
			return nil, err
		}
		return datum.Bytes(v), nil

	case schema.TypeString:
		var v string
		if err := binary.ReadString(r, &v); err != nil {
			return nil, err
		}
		return datum.String(v), nil

	case schema.TypeFixed:
		var v []byte
		if err := binary.ReadFixed(r, w.(*schema.FixedSchema).Size(), &v); err != nil {
			return nil, err
		}
		return datum.Fixed(v), nil

	case schema.TypeEnum:
		return readEnum(r, w.(*schema.EnumSchema), rs.(*schema.EnumSchema))

	case schema.TypeArray:
		return readArray(r, w.(*schema.ArraySchema), rs.(*schema.ArraySchema), defaults)

	case schema.TypeMap:
		return readMap(r, w.(*schema.MapSchema), rs.(*schema.MapSchema), defaults)

	case schema.TypeRecord:
		return readRecord(r, w.(*schema.RecordSchema), rs.(*schema.RecordSchema), defaults)

	default:
		return nil, avro.Errorf(avro.KindSchemaMismatch, "cannot read %s schema", w.Type())
	}
}

// firstMatching returns the first reader branch the writer schema
// resolves to, or nil.
func firstMatching(w schema.Schema, u *schema.UnionSchema) schema.Schema {
	for _, branch := range u.Branches() {
		if schema.Match(w, branch) {
			return branch
		}
	}
	return nil
}

func widenInt(v int32, rs schema.Schema) datum.Datum {
	switch rs.Type() {
	case schema.TypeLong:
		return datum.Long(int64(v))
	case schema.TypeFloat:
		return datum.Float(float32(v))
	case schema.TypeDouble:
		return datum.Double(float64(v))
	default:
		return datum.Int(v)
	}
}

func widenLong(v int64, rs schema.Schema) datum.Datum {
	switch rs.Type() {
	case schema.TypeFloat:
		return datum.Float(float32(v))
	case schema.TypeDouble:
		return datum.Double(float64(v))
	default:
		return datum.Long(v)
	}
}

func readEnum(r stream.Reader, w, rs *schema.EnumSchema) (datum.Datum, error) {
	var index int64
	if err := binary.ReadLong(r, &index); err != nil {
		return nil, err
	}
	symbol, ok := w.Symbol(int(index))
	if !ok {
		return nil, avro.Errorf(avro.KindMalformed, "enum %q index %d out of range [0,%d)", w.Name(), index, len(w.Symbols()))
	}
	if _, ok := rs.Index(symbol); !ok {
		return nil, avro.Errorf(avro.KindSchemaMismatch, "enum %q has no symbol %q", rs.Name(), symbol)
	}
	return datum.Enum(symbol), nil
}

// readBlockCount consumes one block header, normalizing the negative
// form. The byte-size prefix that accompanies negative counts is read
// and discarded; entries are decoded, not skipped.
func readBlockCount(r stream.Reader) (int64, error) {
	var count int64
	if err := binary.ReadLong(r, &count); err != nil {
		return 0, err
	}
	if count < 0 {
		if count == math.MinInt64 {
			return 0, avro.Errorf(avro.KindMalformed, "block count overflows")
		}
		count = -count
		var size int64
		if err := binary.ReadLong(r, &size); err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, avro.Errorf(avro.KindMalformed, "negative block size %d", size)
		}
	}
	return count, nil
}

func readArray(r stream.Reader, w, rs *schema.ArraySchema, defaults DefaultSource) (datum.Datum, error) {
	result := datum.Array{}
	for {
		count, err := readBlockCount(r)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return result, nil
		}
		for i := int64(0); i < count; i++ {
			item, err := read(r, w.Items(), rs.Items(), defaults)
			if err != nil {
				return nil, err
			}
			result = append(result, item)
		}
	}
}

func readMap(r stream.Reader, w, rs *schema.MapSchema, defaults DefaultSource) (datum.Datum, error) {
	result := datum.Map{}
	for {
		count, err := readBlockCount(r)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return result, nil
		}
		for i := int64(0); i < count; i++ {
			var key string
			if err := binary.ReadString(r, &key); err != nil {
				return nil, err
			}
			value, err := read(r, w.Values(), rs.Values(), defaults)
			if err != nil {
				return nil, err
			}
			result[key] = value
		}
	}
}

// readRecord walks the writer's fields in wire order, decoding the ones
// the reader wants and skipping the rest, then assembles the result in
// reader field order, pulling defaults for fields the writer never had.
func readRecord(r stream.Reader, w, rs *schema.RecordSchema, defaults DefaultSource) (datum.Datum, error) {
	decoded := map[string]datum.Datum{}
	for _, wf := range w.Fields() {
		rf, wanted := rs.Field(wf.Name)
		if !wanted {
			if err := Skip(r, wf.Schema); err != nil {
				return nil, err
			}
			continue
		}
		value, err := read(r, wf.Schema, rf.Schema, defaults)
		if err != nil {
			return nil, err
		}
		decoded[wf.Name] = value
	}

	result := datum.NewRecord()
	for _, rf := range rs.Fields() {
		value, ok := decoded[rf.Name]
		if !ok {
			value, ok = defaults.DefaultFor(rs, rf.Name)
			if !ok {
				return nil, avro.Errorf(avro.KindSchemaMismatch, "record %q: writer has no field %q and no default is available", rs.Name(), rf.Name)
			}
			if !datum.Validate(rf.Schema, value) {
				return nil, avro.Errorf(avro.KindSchemaMismatch, "record %q: default for field %q does not conform to its schema", rs.Name(), rf.Name)
			}
		}
		result.Set(rf.Name, value)
	}
	return result, nil
}
