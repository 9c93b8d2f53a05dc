package datum

import (
	"math"

	"github.com/rdblue/avro/pkg/schema"
)

// Validate reports whether d conforms to s.
//
// Primitive tags must match exactly, with these widenings: an Int datum
// validates against long, float, and double schemas; a Long datum against
// float and double, and against int when its value fits in 32 bits; a
// Float datum against double. Links are followed. Recursion terminates
// because each step descends into the datum tree, which is finite by the
// ownership contract.
func Validate(s schema.Schema, d Datum) bool {
	if s == nil || d == nil {
		return false
	}
	s = schema.Resolve(s)

	switch s.Type() {
	case schema.TypeNull:
		_, ok := d.(Null)
		return ok

	case schema.TypeBoolean:
		_, ok := d.(Boolean)
		return ok

	case schema.TypeInt:
		switch v := d.(type) {
		case Int:
			return true
		case Long:
			return v >= math.MinInt32 && v <= math.MaxInt32
		}
		return false

	case schema.TypeLong:
		switch d.(type) {
		case Int, Long:
			return true
		}
		return false

	case schema.TypeFloat:
		switch d.(type) {
		case Int, Long, Float:
			return true
		}
		return false

	case schema.TypeDouble:
		switch d.(type) {
		case Int, Long, Float, Double:
			return true
		}
		return false

	case schema.TypeBytes:
		_, ok := d.(Bytes)
		return ok

	case schema.TypeString:
		_, ok := d.(String)
		return ok

	case schema.TypeEnum:
		e, ok := d.(Enum)
		if !ok {
			return false
		}
		_, ok = s.(*schema.EnumSchema).Index(string(e))
		return ok

	case schema.TypeFixed:
		f, ok := d.(Fixed)
		return ok && len(f) == s.(*schema.FixedSchema).Size()

	case schema.TypeArray:
		a, ok := d.(Array)
		if !ok {
			return false
		}
		items := s.(*schema.ArraySchema).Items()
		for _, item := range a {
			if !Validate(items, item) {
				return false
			}
		}
		return true

	case schema.TypeMap:
		m, ok := d.(Map)
		if !ok {
			return false
		}
		values := s.(*schema.MapSchema).Values()
		for _, v := range m {
			if !Validate(values, v) {
				return false
			}
		}
		return true

	case schema.TypeUnion:
		for _, branch := range s.(*schema.UnionSchema).Branches() {
			if Validate(branch, d) {
				return true
			}
		}
		return false

	case schema.TypeRecord:
		r, ok := d.(*Record)
		if !ok {
			return false
		}
		// Every schema field must be provided; reader-side defaults are
		// a decode-time policy, not a writer-side substitute.
		for _, field := range s.(*schema.RecordSchema).Fields() {
			value, present := r.Get(field.Name)
			if !present || !Validate(field.Schema, value) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// FirstMatch returns the index of the first union branch d validates
// against, or -1 when no branch matches.
func FirstMatch(u *schema.UnionSchema, d Datum) int {
	for i, branch := range u.Branches() {
		if Validate(branch, d) {
			return i
		}
	}
	return -1
}
