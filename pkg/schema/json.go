package schema

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/rdblue/avro"
)

var primitivesByName = map[string]Schema{
	"null":    nullSchema,
	"boolean": booleanSchema,
	"int":     intSchema,
	"long":    longSchema,
	"float":   floatSchema,
	"double":  doubleSchema,
	"bytes":   bytesSchema,
	"string":  stringSchema,
}

// ParseJSON parses the JSON schema syntax into a frozen schema. A schema
// is a string naming a primitive or a previously declared named type, an
// object with a "type" field, or an array of schemas denoting a union.
func ParseJSON(data []byte) (Schema, error) {
	value, vtype, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "invalid schema JSON: %w", err)
	}
	root, err := parseValue(value, vtype)
	if err != nil {
		return nil, err
	}
	return Freeze(root)
}

func parseValue(value []byte, vtype jsonparser.ValueType) (Schema, error) {
	switch vtype {
	case jsonparser.String:
		name, err := jsonparser.ParseString(value)
		if err != nil {
			return nil, avro.Errorf(avro.KindInvalidSchema, "invalid schema name: %w", err)
		}
		return byName(name), nil

	case jsonparser.Array:
		return parseUnion(value)

	case jsonparser.Object:
		return parseObject(value)

	default:
		return nil, avro.Errorf(avro.KindInvalidSchema, "schema JSON must be a string, object, or array")
	}
}

// byName maps a name string to a primitive or to a link that Freeze will
// bind to the earlier declaration of that name.
func byName(name string) Schema {
	if p, ok := primitivesByName[name]; ok {
		return p
	}
	return NewLink(name)
}

func parseUnion(value []byte) (Schema, error) {
	union := NewUnion()
	var branchErr error
	_, err := jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, cbErr error) {
		if branchErr != nil {
			return
		}
		if cbErr != nil {
			branchErr = avro.Errorf(avro.KindInvalidSchema, "invalid union branch: %w", cbErr)
			return
		}
		branch, err := parseValue(item, itemType)
		if err != nil {
			branchErr = err
			return
		}
		branchErr = union.AppendBranch(branch)
	})
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "invalid union: %w", err)
	}
	if branchErr != nil {
		return nil, branchErr
	}
	return union, nil
}

func parseObject(value []byte) (Schema, error) {
	typeName, err := jsonparser.GetString(value, "type")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "schema object has no type: %w", err)
	}

	switch typeName {
	case "record":
		return parseRecord(value)
	case "enum":
		return parseEnum(value)
	case "fixed":
		return parseFixed(value)
	case "array":
		itemValue, itemType, _, err := jsonparser.Get(value, "items")
		if err != nil {
			return nil, avro.Errorf(avro.KindInvalidSchema, "array has no items: %w", err)
		}
		items, err := parseValue(itemValue, itemType)
		if err != nil {
			return nil, err
		}
		return NewArray(items), nil
	case "map":
		valueValue, valueType, _, err := jsonparser.Get(value, "values")
		if err != nil {
			return nil, avro.Errorf(avro.KindInvalidSchema, "map has no values: %w", err)
		}
		values, err := parseValue(valueValue, valueType)
		if err != nil {
			return nil, err
		}
		return NewMap(values), nil
	default:
		// {"type": "int"} and {"type": "SomeName"} are both legal.
		return byName(typeName), nil
	}
}

func parseRecord(value []byte) (Schema, error) {
	name, err := jsonparser.GetString(value, "name")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "record has no name: %w", err)
	}
	record := NewRecord(name)
	var fieldErr error
	_, err = jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, cbErr error) {
		if fieldErr != nil {
			return
		}
		if cbErr != nil || itemType != jsonparser.Object {
			fieldErr = avro.Errorf(avro.KindInvalidSchema, "record %q: invalid field entry", name)
			return
		}
		fieldName, err := jsonparser.GetString(item, "name")
		if err != nil {
			fieldErr = avro.Errorf(avro.KindInvalidSchema, "record %q: field has no name: %w", name, err)
			return
		}
		typeValue, typeType, _, err := jsonparser.Get(item, "type")
		if err != nil {
			fieldErr = avro.Errorf(avro.KindInvalidSchema, "record %q: field %q has no type: %w", name, fieldName, err)
			return
		}
		fieldSchema, err := parseValue(typeValue, typeType)
		if err != nil {
			fieldErr = err
			return
		}
		fieldErr = record.AppendField(fieldName, fieldSchema)
	}, "fields")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "record %q has no fields array: %w", name, err)
	}
	if fieldErr != nil {
		return nil, fieldErr
	}
	return record, nil
}

func parseEnum(value []byte) (Schema, error) {
	name, err := jsonparser.GetString(value, "name")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "enum has no name: %w", err)
	}
	enum := NewEnum(name)
	var symErr error
	_, err = jsonparser.ArrayEach(value, func(item []byte, itemType jsonparser.ValueType, _ int, cbErr error) {
		if symErr != nil {
			return
		}
		if cbErr != nil || itemType != jsonparser.String {
			symErr = avro.Errorf(avro.KindInvalidSchema, "enum %q: symbols must be strings", name)
			return
		}
		symbol, err := jsonparser.ParseString(item)
		if err != nil {
			symErr = avro.Errorf(avro.KindInvalidSchema, "enum %q: invalid symbol: %w", name, err)
			return
		}
		symErr = enum.AppendSymbol(symbol)
	}, "symbols")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "enum %q has no symbols array: %w", name, err)
	}
	if symErr != nil {
		return nil, symErr
	}
	return enum, nil
}

func parseFixed(value []byte) (Schema, error) {
	name, err := jsonparser.GetString(value, "name")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "fixed has no name: %w", err)
	}
	size, err := jsonparser.GetInt(value, "size")
	if err != nil {
		return nil, avro.Errorf(avro.KindInvalidSchema, "fixed %q has no size: %w", name, err)
	}
	return NewFixed(name, int(size)), nil
}

// ToJSON renders a schema in the JSON schema syntax. The first occurrence
// of a named type renders its full definition; later occurrences and
// links render as the bare name.
func ToJSON(s Schema) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(&buf, s, map[string]bool{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func render(buf *bytes.Buffer, s Schema, seen map[string]bool) error {
	switch n := s.(type) {
	case *PrimitiveSchema:
		return renderString(buf, n.t.String())

	case *LinkSchema:
		return renderString(buf, n.name)

	case *RecordSchema:
		if seen[n.name] {
			return renderString(buf, n.name)
		}
		seen[n.name] = true
		buf.WriteString(`{"type":"record","name":`)
		if err := renderString(buf, n.name); err != nil {
			return err
		}
		buf.WriteString(`,"fields":[`)
		for i, field := range n.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"name":`)
			if err := renderString(buf, field.Name); err != nil {
				return err
			}
			buf.WriteString(`,"type":`)
			if err := render(buf, field.Schema, seen); err != nil {
				return err
			}
			buf.WriteByte('}')
		}
		buf.WriteString(`]}`)
		return nil

	case *EnumSchema:
		if seen[n.name] {
			return renderString(buf, n.name)
		}
		seen[n.name] = true
		buf.WriteString(`{"type":"enum","name":`)
		if err := renderString(buf, n.name); err != nil {
			return err
		}
		buf.WriteString(`,"symbols":[`)
		for i, symbol := range n.symbols {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderString(buf, symbol); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
		return nil

	case *FixedSchema:
		if seen[n.name] {
			return renderString(buf, n.name)
		}
		seen[n.name] = true
		buf.WriteString(`{"type":"fixed","name":`)
		if err := renderString(buf, n.name); err != nil {
			return err
		}
		buf.WriteString(`,"size":`)
		buf.WriteString(strconv.Itoa(n.size))
		buf.WriteByte('}')
		return nil

	case *ArraySchema:
		buf.WriteString(`{"type":"array","items":`)
		if err := render(buf, n.items, seen); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil

	case *MapSchema:
		buf.WriteString(`{"type":"map","values":`)
		if err := render(buf, n.values, seen); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil

	case *UnionSchema:
		buf.WriteByte('[')
		for i, branch := range n.branches {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := render(buf, branch, seen); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		return avro.Errorf(avro.KindInvalidSchema, "unknown schema node %T", s)
	}
}

func renderString(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)
	return nil
}
