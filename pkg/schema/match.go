package schema

// Match reports whether data written under w can be resolved into values
// conforming to r. Matching is shallower than equality: records and enums
// match by name alone, unions match unconditionally (branch selection
// happens during decode), and writer primitives may promote to wider
// reader primitives.
//
// The promotion set is int to long, float, or double; long to float or
// double; float to double.
func Match(w, r Schema) bool {
	if w == nil || r == nil {
		return false
	}
	w, r = Resolve(w), Resolve(r)

	// Per-branch compatibility is resolved against the wire during
	// decode; at match time a union on either side is compatible.
	if w.Type() == TypeUnion || r.Type() == TypeUnion {
		return true
	}

	switch w.Type() {
	case TypeNull, TypeBoolean, TypeBytes, TypeString:
		return r.Type() == w.Type()

	case TypeInt:
		switch r.Type() {
		case TypeInt, TypeLong, TypeFloat, TypeDouble:
			return true
		}
		return false

	case TypeLong:
		switch r.Type() {
		case TypeLong, TypeFloat, TypeDouble:
			return true
		}
		return false

	case TypeFloat:
		switch r.Type() {
		case TypeFloat, TypeDouble:
			return true
		}
		return false

	case TypeDouble:
		return r.Type() == TypeDouble

	case TypeRecord:
		rr, ok := r.(*RecordSchema)
		return ok && w.(*RecordSchema).name == rr.name

	case TypeEnum:
		re, ok := r.(*EnumSchema)
		return ok && w.(*EnumSchema).name == re.name

	case TypeFixed:
		rf, ok := r.(*FixedSchema)
		if !ok {
			return false
		}
		wf := w.(*FixedSchema)
		return wf.name == rf.name && wf.size == rf.size

	case TypeArray:
		ra, ok := r.(*ArraySchema)
		return ok && Match(w.(*ArraySchema).items, ra.items)

	case TypeMap:
		rm, ok := r.(*MapSchema)
		return ok && Match(w.(*MapSchema).values, rm.values)

	default:
		return false
	}
}
