package codec

import (
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
)

// DefaultSource supplies values for reader-schema record fields the
// writer schema does not carry. The resolver consults it once per missing
// field; returning false fails the decode with a schema mismatch.
//
// Field defaults are a policy of the schema's owner, not of the wire
// format, which is why they enter through this hook instead of living on
// the schema nodes.
type DefaultSource interface {
	DefaultFor(record *schema.RecordSchema, field string) (datum.Datum, bool)
}

// NoDefaults is the zero policy: every missing field is an error.
type NoDefaults struct{}

// DefaultFor always reports no default.
func (NoDefaults) DefaultFor(record *schema.RecordSchema, field string) (datum.Datum, bool) {
	return nil, false
}

// FieldDefaults maps "Record.field" keys to default datums. Values are
// cloned before they enter a decoded tree, so one source can serve many
// decodes.
type FieldDefaults map[string]datum.Datum

// DefaultFor looks up the default registered for record.field.
func (fd FieldDefaults) DefaultFor(record *schema.RecordSchema, field string) (datum.Datum, bool) {
	d, ok := fd[record.Name()+"."+field]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}
