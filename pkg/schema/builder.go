package schema

import (
	"github.com/rdblue/avro"
)

// Null returns the null primitive schema.
func Null() Schema { return nullSchema }

// Boolean returns the boolean primitive schema.
func Boolean() Schema { return booleanSchema }

// Int returns the 32-bit integer primitive schema.
func Int() Schema { return intSchema }

// Long returns the 64-bit integer primitive schema.
func Long() Schema { return longSchema }

// Float returns the binary32 primitive schema.
func Float() Schema { return floatSchema }

// Double returns the binary64 primitive schema.
func Double() Schema { return doubleSchema }

// Bytes returns the variable-length bytes primitive schema.
func Bytes() Schema { return bytesSchema }

// String returns the UTF-8 string primitive schema.
func String() Schema { return stringSchema }

// NewRecord creates an unfrozen record with the given name and no fields.
func NewRecord(name string) *RecordSchema {
	return &RecordSchema{name: name, byName: map[string]int{}}
}

// AppendField appends a field to the record. Field names must be unique
// within the record.
func (r *RecordSchema) AppendField(name string, s Schema) error {
	if r.frozen {
		return avro.Errorf(avro.KindInvalidSchema, "record %q is frozen", r.name)
	}
	if name == "" {
		return avro.Errorf(avro.KindInvalidSchema, "record %q: empty field name", r.name)
	}
	if s == nil {
		return avro.Errorf(avro.KindInvalidSchema, "record %q: field %q has no schema", r.name, name)
	}
	if _, dup := r.byName[name]; dup {
		return avro.Errorf(avro.KindInvalidSchema, "record %q: duplicate field %q", r.name, name)
	}
	r.byName[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Schema: s})
	return nil
}

// NewEnum creates an unfrozen enum with the given name and no symbols.
func NewEnum(name string) *EnumSchema {
	return &EnumSchema{name: name, index: map[string]int{}}
}

// AppendSymbol appends a symbol to the enum. Symbols must be distinct.
func (e *EnumSchema) AppendSymbol(symbol string) error {
	if e.frozen {
		return avro.Errorf(avro.KindInvalidSchema, "enum %q is frozen", e.name)
	}
	if symbol == "" {
		return avro.Errorf(avro.KindInvalidSchema, "enum %q: empty symbol", e.name)
	}
	if _, dup := e.index[symbol]; dup {
		return avro.Errorf(avro.KindInvalidSchema, "enum %q: duplicate symbol %q", e.name, symbol)
	}
	e.index[symbol] = len(e.symbols)
	e.symbols = append(e.symbols, symbol)
	return nil
}

// NewFixed creates a fixed schema with the given name and size.
func NewFixed(name string, size int) *FixedSchema {
	return &FixedSchema{name: name, size: size}
}

// NewArray creates an array schema over the given item type.
func NewArray(items Schema) *ArraySchema {
	return &ArraySchema{items: items}
}

// NewMap creates a map schema over the given value type. Keys are always
// strings; the key child exists to keep the node shape uniform.
func NewMap(values Schema) *MapSchema {
	return &MapSchema{keys: stringSchema, values: values}
}

// NewUnion creates an unfrozen union with no branches.
func NewUnion() *UnionSchema {
	return &UnionSchema{}
}

// AppendBranch appends a branch to the union. A union may not contain
// another union.
func (u *UnionSchema) AppendBranch(s Schema) error {
	if u.frozen {
		return avro.Errorf(avro.KindInvalidSchema, "union is frozen")
	}
	if s == nil {
		return avro.Errorf(avro.KindInvalidSchema, "union branch has no schema")
	}
	if s.Type() == TypeUnion {
		return avro.Errorf(avro.KindInvalidSchema, "union may not contain a union")
	}
	u.branches = append(u.branches, s)
	return nil
}

// NewLink creates a back-reference to the named type declared earlier in
// the same tree. The reference is bound by Freeze.
func NewLink(name string) *LinkSchema {
	return &LinkSchema{name: name}
}

// Freeze validates the tree rooted at root, binds link nodes to their
// targets, and marks every node immutable. It returns root on success.
//
// Freeze enforces the structural invariants: named types carry non-empty
// unique names, enums have at least one symbol, fixeds have non-negative
// sizes, unions have at least two branches obeying the branch rules,
// links resolve to an earlier-declared named type, and no cycle exists
// that does not pass through a link.
func Freeze(root Schema) (Schema, error) {
	if root == nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "nil schema")
	}
	f := &freezer{
		names: map[string]Named{},
		stack: map[Schema]bool{},
	}
	if err := f.walk(root); err != nil {
		return nil, err
	}
	for _, s := range f.visited {
		setFrozen(s)
	}
	return root, nil
}

type freezer struct {
	names   map[string]Named
	stack   map[Schema]bool
	visited []Schema
}

// walk validates nodes in preorder, which is also name declaration order.
func (f *freezer) walk(s Schema) error {
	if f.stack[s] {
		return avro.Errorf(avro.KindInvalidSchema, "cycle without a link through %s", s.Type())
	}

	switch n := s.(type) {
	case *PrimitiveSchema:
		return nil

	case *LinkSchema:
		target, ok := f.names[n.name]
		if !ok {
			return avro.Errorf(avro.KindInvalidSchema, "link to undeclared type %q", n.name)
		}
		n.target = target
		f.visited = append(f.visited, s)
		return nil

	case *RecordSchema:
		if err := f.declare(n); err != nil {
			return err
		}
		f.stack[s] = true
		defer delete(f.stack, s)
		for _, field := range n.fields {
			if err := f.walk(field.Schema); err != nil {
				return err
			}
		}

	case *EnumSchema:
		if err := f.declare(n); err != nil {
			return err
		}
		if len(n.symbols) == 0 {
			return avro.Errorf(avro.KindInvalidSchema, "enum %q has no symbols", n.name)
		}

	case *FixedSchema:
		if err := f.declare(n); err != nil {
			return err
		}
		if n.size < 0 {
			return avro.Errorf(avro.KindInvalidSchema, "fixed %q has negative size %d", n.name, n.size)
		}

	case *ArraySchema:
		if n.items == nil {
			return avro.Errorf(avro.KindInvalidSchema, "array has no item schema")
		}
		f.stack[s] = true
		defer delete(f.stack, s)
		if err := f.walk(n.items); err != nil {
			return err
		}

	case *MapSchema:
		if n.values == nil {
			return avro.Errorf(avro.KindInvalidSchema, "map has no value schema")
		}
		f.stack[s] = true
		defer delete(f.stack, s)
		if err := f.walk(n.keys); err != nil {
			return err
		}
		if err := f.walk(n.values); err != nil {
			return err
		}

	case *UnionSchema:
		if len(n.branches) < 2 {
			return avro.Errorf(avro.KindInvalidSchema, "union needs at least two branches, has %d", len(n.branches))
		}
		f.stack[s] = true
		defer delete(f.stack, s)
		for _, branch := range n.branches {
			if err := f.walk(branch); err != nil {
				return err
			}
		}
		// Branches are checked after the walk so links are already bound.
		if err := checkUnionBranches(n); err != nil {
			return err
		}

	default:
		return avro.Errorf(avro.KindInvalidSchema, "unknown schema node %T", s)
	}

	f.visited = append(f.visited, s)
	return nil
}

func (f *freezer) declare(n Named) error {
	if n.Name() == "" {
		return avro.Errorf(avro.KindInvalidSchema, "%s has empty name", n.Type())
	}
	if _, dup := f.names[n.Name()]; dup {
		return avro.Errorf(avro.KindInvalidSchema, "duplicate declaration of %q", n.Name())
	}
	f.names[n.Name()] = n
	return nil
}

// checkUnionBranches rejects two branches of the same tag unless both are
// named types with distinct names. Links count as their target's tag.
func checkUnionBranches(u *UnionSchema) error {
	for i, a := range u.branches {
		for _, b := range u.branches[i+1:] {
			at, bt := branchTag(a), branchTag(b)
			if at != bt {
				continue
			}
			an, aNamed := branchName(a)
			bn, bNamed := branchName(b)
			if aNamed && bNamed && an != bn {
				continue
			}
			return avro.Errorf(avro.KindInvalidSchema, "union has duplicate branch type %s", at)
		}
	}
	return nil
}

// branchTag returns the tag a branch contributes to union uniqueness.
// Links count as their bound target's tag.
func branchTag(s Schema) Type {
	if l, ok := s.(*LinkSchema); ok {
		if l.target != nil {
			return l.target.Type()
		}
		return TypeLink
	}
	return s.Type()
}

func branchName(s Schema) (string, bool) {
	if l, ok := s.(*LinkSchema); ok {
		if l.target != nil {
			s = l.target
		} else {
			return l.name, true
		}
	}
	if n, ok := s.(Named); ok {
		return n.Name(), true
	}
	return "", false
}

func setFrozen(s Schema) {
	switch n := s.(type) {
	case *RecordSchema:
		n.frozen = true
	case *EnumSchema:
		n.frozen = true
	case *FixedSchema:
		n.frozen = true
	case *ArraySchema:
		n.frozen = true
	case *MapSchema:
		n.frozen = true
	case *UnionSchema:
		n.frozen = true
	case *LinkSchema:
		n.frozen = true
	}
}
