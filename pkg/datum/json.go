package datum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ToJSON renders a datum as JSON. Bytes and fixed values render as JSON
// strings with each byte mapped to the code point of the same value, the
// convention the Avro JSON encoding uses for binary data.
func ToJSON(d Datum) ([]byte, error) {
	var buf bytes.Buffer
	if err := renderJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(buf *bytes.Buffer, d Datum) error {
	switch v := d.(type) {
	case Null:
		buf.WriteString("null")

	case Boolean:
		buf.WriteString(strconv.FormatBool(bool(v)))

	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))

	case Long:
		buf.WriteString(strconv.FormatInt(int64(v), 10))

	case Float:
		return renderFloat(buf, float64(v), 32)

	case Double:
		return renderFloat(buf, float64(v), 64)

	case String:
		return renderQuoted(buf, string(v))

	case Enum:
		return renderQuoted(buf, string(v))

	case Bytes:
		return renderBinary(buf, v)

	case Fixed:
		return renderBinary(buf, v)

	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case Map:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderQuoted(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := renderJSON(buf, v[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	case *Record:
		buf.WriteByte('{')
		for i, name := range v.Fields() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := renderQuoted(buf, name); err != nil {
				return err
			}
			buf.WriteByte(':')
			value, _ := v.Get(name)
			if err := renderJSON(buf, value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	default:
		return fmt.Errorf("json rendering for %T not implemented", d)
	}
	return nil
}

// renderFloat falls back to string form for values JSON numbers cannot
// carry.
func renderFloat(buf *bytes.Buffer, f float64, bits int) error {
	formatted := strconv.FormatFloat(f, 'g', -1, bits)
	switch formatted {
	case "NaN", "+Inf", "-Inf", "Inf":
		return renderQuoted(buf, formatted)
	}
	buf.WriteString(formatted)
	return nil
}

func renderQuoted(buf *bytes.Buffer, s string) error {
	quoted, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(quoted)
	return nil
}

// renderBinary writes raw bytes as a JSON string, one escaped code point
// per byte.
func renderBinary(buf *bytes.Buffer, b []byte) error {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return renderQuoted(buf, string(runes))
}
