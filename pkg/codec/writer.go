// Package codec contains the two engines: Write serializes a datum under
// a schema, Read decodes bytes written under one schema into a datum
// conforming to another, resolving the differences field by field.
package codec

import (
	"sort"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/binary"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// Write validates d against s and serializes it to w. Validation happens
// before any byte is written; once writing has started, an error leaves
// the stream poisoned mid-value.
func Write(s schema.Schema, d datum.Datum, w stream.Writer) error {
	if !datum.Validate(s, d) {
		return avro.Errorf(avro.KindSchemaMismatch, "datum %s does not conform to %s schema", d, schema.Resolve(s).Type())
	}
	return write(s, d, w)
}

func write(s schema.Schema, d datum.Datum, w stream.Writer) error {
	s = schema.Resolve(s)

	switch s.Type() {
	case schema.TypeNull:
		return binary.WriteNull(w)

	case schema.TypeBoolean:
		return binary.WriteBoolean(w, bool(d.(datum.Boolean)))

	case schema.TypeInt:
		v, _ := asLong(d)
		return binary.WriteInt(w, int32(v))

	case schema.TypeLong:
		v, _ := asLong(d)
		return binary.WriteLong(w, v)

	case schema.TypeFloat:
		return binary.WriteFloat(w, asFloat(d))

	case schema.TypeDouble:
		return binary.WriteDouble(w, asDouble(d))

	case schema.TypeBytes:
		return binary.WriteBytes(w, d.(datum.Bytes))

	case schema.TypeString:
		return binary.WriteString(w, string(d.(datum.String)))

	case schema.TypeFixed:
		return binary.WriteFixed(w, d.(datum.Fixed))

	case schema.TypeEnum:
		e := s.(*schema.EnumSchema)
		index, ok := e.Index(d.(datum.Enum).Symbol())
		if !ok {
			return avro.Errorf(avro.KindSchemaMismatch, "enum %q has no symbol %q", e.Name(), d.(datum.Enum).Symbol())
		}
		return binary.WriteLong(w, int64(index))

	case schema.TypeArray:
		items := s.(*schema.ArraySchema).Items()
		a := d.(datum.Array)
		if len(a) > 0 {
			if err := binary.WriteLong(w, int64(len(a))); err != nil {
				return err
			}
			for _, item := range a {
				if err := write(items, item, w); err != nil {
					return err
				}
			}
		}
		return binary.WriteLong(w, 0)

	case schema.TypeMap:
		values := s.(*schema.MapSchema).Values()
		m := d.(datum.Map)
		if len(m) > 0 {
			if err := binary.WriteLong(w, int64(len(m))); err != nil {
				return err
			}
			// Deterministic entry order keeps identical datums
			// byte-identical on the wire.
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if err := binary.WriteString(w, k); err != nil {
					return err
				}
				if err := write(values, m[k], w); err != nil {
					return err
				}
			}
		}
		return binary.WriteLong(w, 0)

	case schema.TypeUnion:
		u := s.(*schema.UnionSchema)
		index := datum.FirstMatch(u, d)
		if index < 0 {
			return avro.Errorf(avro.KindSchemaMismatch, "union has no branch matching %s", d)
		}
		if err := binary.WriteLong(w, int64(index)); err != nil {
			return err
		}
		branch, _ := u.Branch(index)
		return write(branch, d, w)

	case schema.TypeRecord:
		rec := s.(*schema.RecordSchema)
		r := d.(*datum.Record)
		for _, field := range rec.Fields() {
			value, _ := r.Get(field.Name)
			if err := write(field.Schema, value, w); err != nil {
				return err
			}
		}
		return nil

	default:
		return avro.Errorf(avro.KindSchemaMismatch, "cannot write %s schema", s.Type())
	}
}

// asLong widens any integer datum. Validation has already ruled out
// lossy combinations.
func asLong(d datum.Datum) (int64, bool) {
	switch v := d.(type) {
	case datum.Int:
		return int64(v), true
	case datum.Long:
		return int64(v), true
	}
	return 0, false
}

func asFloat(d datum.Datum) float32 {
	switch v := d.(type) {
	case datum.Float:
		return float32(v)
	case datum.Int:
		return float32(v)
	case datum.Long:
		return float32(v)
	}
	return 0
}

func asDouble(d datum.Datum) float64 {
	switch v := d.(type) {
	case datum.Double:
		return float64(v)
	case datum.Float:
		return float64(v)
	case datum.Int:
		return float64(v)
	case datum.Long:
		return float64(v)
	}
	return 0
}
