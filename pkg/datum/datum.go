// Package datum holds the in-memory value model: one concrete kind per
// schema tag, minus link, which is followed during encode and decode.
// Datums are plain trees owned by their caller; the engines never share
// or retain them.
package datum

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Datum is a tagged value. Concrete kinds are Null, Boolean, Int, Long,
// Float, Double, Bytes, String, Enum, Fixed, Array, Map, and *Record.
type Datum interface {
	// Equal reports deep structural equality. Values of different kinds
	// are never equal; floats compare by bit pattern so NaN payloads
	// survive round trips.
	Equal(other Datum) bool

	// Clone returns a deep copy sharing no mutable state.
	Clone() Datum

	String() string
	isDatum()
}

var (
	_ Datum = Null{}
	_ Datum = Boolean(true)
	_ Datum = Int(0)
	_ Datum = Long(0)
	_ Datum = Float(0)
	_ Datum = Double(0)
	_ Datum = Bytes(nil)
	_ Datum = String("")
	_ Datum = Enum("")
	_ Datum = Fixed(nil)
	_ Datum = Array(nil)
	_ Datum = Map(nil)
	_ Datum = (*Record)(nil)
)

// Null is the unit value.
type Null struct{}

func (Null) isDatum() {}
func (Null) Equal(other Datum) bool {
	_, ok := other.(Null)
	return ok
}
func (Null) Clone() Datum   { return Null{} }
func (Null) String() string { return "Null" }

// Boolean is a true/false value.
type Boolean bool

func (b Boolean) isDatum() {}
func (b Boolean) Equal(other Datum) bool {
	o, ok := other.(Boolean)
	return ok && o == b
}
func (b Boolean) Clone() Datum   { return b }
func (b Boolean) String() string { return fmt.Sprintf("Boolean(%v)", bool(b)) }

// Int is a 32-bit signed integer.
type Int int32

func (i Int) isDatum() {}
func (i Int) Equal(other Datum) bool {
	o, ok := other.(Int)
	return ok && o == i
}
func (i Int) Clone() Datum   { return i }
func (i Int) String() string { return fmt.Sprintf("Int(%d)", int32(i)) }

// Long is a 64-bit signed integer.
type Long int64

func (l Long) isDatum() {}
func (l Long) Equal(other Datum) bool {
	o, ok := other.(Long)
	return ok && o == l
}
func (l Long) Clone() Datum   { return l }
func (l Long) String() string { return fmt.Sprintf("Long(%d)", int64(l)) }

// Float is an IEEE-754 binary32 value.
type Float float32

func (f Float) isDatum() {}
func (f Float) Equal(other Datum) bool {
	o, ok := other.(Float)
	return ok && math.Float32bits(float32(o)) == math.Float32bits(float32(f))
}
func (f Float) Clone() Datum   { return f }
func (f Float) String() string { return fmt.Sprintf("Float(%v)", float32(f)) }

// Double is an IEEE-754 binary64 value.
type Double float64

func (d Double) isDatum() {}
func (d Double) Equal(other Datum) bool {
	o, ok := other.(Double)
	return ok && math.Float64bits(float64(o)) == math.Float64bits(float64(d))
}
func (d Double) Clone() Datum   { return d }
func (d Double) String() string { return fmt.Sprintf("Double(%v)", float64(d)) }

// Bytes is a variable-length byte sequence.
type Bytes []byte

func (b Bytes) isDatum() {}
func (b Bytes) Equal(other Datum) bool {
	o, ok := other.(Bytes)
	return ok && bytesEqual(b, o)
}
func (b Bytes) Clone() Datum {
	c := make(Bytes, len(b))
	copy(c, b)
	return c
}
func (b Bytes) String() string { return fmt.Sprintf("Bytes(%x)", []byte(b)) }

// String is a UTF-8 text value.
type String string

func (s String) isDatum() {}
func (s String) Equal(other Datum) bool {
	o, ok := other.(String)
	return ok && o == s
}
func (s String) Clone() Datum   { return s }
func (s String) String() string { return fmt.Sprintf("String(%s)", string(s)) }

// Enum is a symbol drawn from an enum schema's symbol list.
type Enum string

func (e Enum) isDatum() {}
func (e Enum) Equal(other Datum) bool {
	o, ok := other.(Enum)
	return ok && o == e
}
func (e Enum) Clone() Datum   { return e }
func (e Enum) String() string { return fmt.Sprintf("Enum(%s)", string(e)) }

// Symbol returns the enum's symbol.
func (e Enum) Symbol() string { return string(e) }

// Fixed is a byte sequence whose length is dictated by its schema.
type Fixed []byte

func (f Fixed) isDatum() {}
func (f Fixed) Equal(other Datum) bool {
	o, ok := other.(Fixed)
	return ok && bytesEqual(f, o)
}
func (f Fixed) Clone() Datum {
	c := make(Fixed, len(f))
	copy(c, f)
	return c
}
func (f Fixed) String() string { return fmt.Sprintf("Fixed(%x)", []byte(f)) }

// Array is an ordered sequence of datums.
type Array []Datum

func (a Array) isDatum() {}
func (a Array) Equal(other Datum) bool {
	o, ok := other.(Array)
	if !ok || len(o) != len(a) {
		return false
	}
	for i, item := range a {
		if !item.Equal(o[i]) {
			return false
		}
	}
	return true
}
func (a Array) Clone() Datum {
	c := make(Array, len(a))
	for i, item := range a {
		c[i] = item.Clone()
	}
	return c
}
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, item := range a {
		parts[i] = item.String()
	}
	return fmt.Sprintf("Array(%s)", strings.Join(parts, ", "))
}

// Map is a string-keyed collection of datums.
type Map map[string]Datum

func (m Map) isDatum() {}
func (m Map) Equal(other Datum) bool {
	o, ok := other.(Map)
	if !ok || len(o) != len(m) {
		return false
	}
	for k, v := range m {
		ov, present := o[k]
		if !present || !v.Equal(ov) {
			return false
		}
	}
	return true
}
func (m Map) Clone() Datum {
	c := make(Map, len(m))
	for k, v := range m {
		c[k] = v.Clone()
	}
	return c
}
func (m Map) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, m[k].String())
	}
	return fmt.Sprintf("Map(%s)", strings.Join(parts, ", "))
}

// Record is an ordered map from field name to datum. Field order is the
// insertion order, which callers align with the record schema.
type Record struct {
	order  []string
	fields map[string]Datum
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: map[string]Datum{}}
}

func (r *Record) isDatum() {}

// Set stores a field value. Setting an existing field replaces the value
// and keeps its position.
func (r *Record) Set(name string, d Datum) *Record {
	if _, present := r.fields[name]; !present {
		r.order = append(r.order, name)
	}
	r.fields[name] = d
	return r
}

// Get looks a field up by name.
func (r *Record) Get(name string) (Datum, bool) {
	d, ok := r.fields[name]
	return d, ok
}

// Fields returns the field names in insertion order. The returned slice
// is shared; callers must not mutate it.
func (r *Record) Fields() []string {
	return r.order
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.order)
}

func (r *Record) Equal(other Datum) bool {
	o, ok := other.(*Record)
	if !ok || len(o.order) != len(r.order) {
		return false
	}
	for i, name := range r.order {
		if o.order[i] != name {
			return false
		}
		if !r.fields[name].Equal(o.fields[name]) {
			return false
		}
	}
	return true
}

func (r *Record) Clone() Datum {
	c := NewRecord()
	for _, name := range r.order {
		c.Set(name, r.fields[name].Clone())
	}
	return c
}

func (r *Record) String() string {
	parts := make([]string, len(r.order))
	for i, name := range r.order {
		parts[i] = fmt.Sprintf("%s: %s", name, r.fields[name].String())
	}
	return fmt.Sprintf("Record(%s)", strings.Join(parts, ", "))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
