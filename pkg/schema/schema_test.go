package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdblue/avro"
)

func mustRecord(t *testing.T, name string, fields ...Field) *RecordSchema {
	t.Helper()
	record := NewRecord(name)
	for _, field := range fields {
		require.NoError(t, record.AppendField(field.Name, field.Schema))
	}
	return record
}

func TestFreeze_ValidSchema(t *testing.T) {
	record := mustRecord(t, "Person",
		Field{Name: "name", Schema: String()},
		Field{Name: "age", Schema: Int()},
	)

	frozen, err := Freeze(record)
	require.NoError(t, err)
	assert.Same(t, Schema(record), frozen)

	// Frozen records reject further mutation.
	err = record.AppendField("extra", Long())
	assert.True(t, avro.IsKind(err, avro.KindInvalidSchema))
}

func TestAppendField_DuplicateName(t *testing.T) {
	record := NewRecord("Person")
	require.NoError(t, record.AppendField("name", String()))
	err := record.AppendField("name", Int())
	assert.True(t, avro.IsKind(err, avro.KindInvalidSchema))
}

func TestAppendBranch_UnionInUnion(t *testing.T) {
	inner := NewUnion()
	require.NoError(t, inner.AppendBranch(Null()))
	require.NoError(t, inner.AppendBranch(Int()))

	outer := NewUnion()
	err := outer.AppendBranch(inner)
	assert.True(t, avro.IsKind(err, avro.KindInvalidSchema))
}

func TestFreeze_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		build func(t *testing.T) Schema
	}{
		{
			name: "empty record name",
			build: func(t *testing.T) Schema {
				record := NewRecord("")
				require.NoError(t, record.AppendField("a", Int()))
				return record
			},
		},
		{
			name: "duplicate type name",
			build: func(t *testing.T) Schema {
				return mustRecord(t, "Outer",
					Field{Name: "a", Schema: NewFixed("Dup", 4)},
					Field{Name: "b", Schema: NewFixed("Dup", 8)},
				)
			},
		},
		{
			name: "empty enum",
			build: func(t *testing.T) Schema {
				return NewEnum("Empty")
			},
		},
		{
			name: "negative fixed size",
			build: func(t *testing.T) Schema {
				return NewFixed("Bad", -1)
			},
		},
		{
			name: "unknown link target",
			build: func(t *testing.T) Schema {
				return mustRecord(t, "Node",
					Field{Name: "next", Schema: NewLink("Missing")},
				)
			},
		},
		{
			name: "link before declaration",
			build: func(t *testing.T) Schema {
				// The link appears in preorder before the named type.
				return mustRecord(t, "Outer",
					Field{Name: "early", Schema: NewLink("Late")},
					Field{Name: "late", Schema: NewFixed("Late", 2)},
				)
			},
		},
		{
			name: "one-branch union",
			build: func(t *testing.T) Schema {
				union := NewUnion()
				require.NoError(t, union.AppendBranch(Null()))
				return union
			},
		},
		{
			name: "union with duplicate primitive branches",
			build: func(t *testing.T) Schema {
				union := NewUnion()
				require.NoError(t, union.AppendBranch(String()))
				require.NoError(t, union.AppendBranch(String()))
				return union
			},
		},
		{
			name: "cycle without a link",
			build: func(t *testing.T) Schema {
				record := NewRecord("Loop")
				require.NoError(t, record.AppendField("self", record))
				return record
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Freeze(tc.build(t))
			require.Error(t, err)
			assert.True(t, avro.IsKind(err, avro.KindInvalidSchema), "kind = %v", avro.KindOf(err))
		})
	}
}

func TestFreeze_UnionWithDistinctNamedTypes(t *testing.T) {
	union := NewUnion()
	a := NewFixed("A", 4)
	b := NewFixed("B", 4)
	require.NoError(t, union.AppendBranch(a))
	require.NoError(t, union.AppendBranch(b))

	_, err := Freeze(union)
	assert.NoError(t, err)
}

func TestFreeze_RecursiveViaLink(t *testing.T) {
	// A linked list: Node { value: long, next: union[null, Node] }
	node := NewRecord("Node")
	require.NoError(t, node.AppendField("value", Long()))
	next := NewUnion()
	require.NoError(t, next.AppendBranch(Null()))
	require.NoError(t, next.AppendBranch(NewLink("Node")))
	require.NoError(t, node.AppendField("next", next))

	frozen, err := Freeze(node)
	require.NoError(t, err)

	// The link now points back at the record itself.
	union := frozen.(*RecordSchema).Fields()[1].Schema.(*UnionSchema)
	link := union.Branches()[1].(*LinkSchema)
	assert.Same(t, Schema(node), link.Target())
}

func TestMapSchema_KeyChildIsString(t *testing.T) {
	m := NewMap(Long())
	assert.Equal(t, TypeString, m.Keys().Type())
	assert.Equal(t, TypeLong, m.Values().Type())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "record", TypeRecord.String())
	assert.Equal(t, "null", TypeNull.String())
	assert.Equal(t, "boolean", TypeBoolean.String())
}
