package datum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdblue/avro/pkg/schema"
)

func TestValidate_Primitives(t *testing.T) {
	testCases := []struct {
		name     string
		schema   schema.Schema
		datum    Datum
		expected bool
	}{
		{"null ok", schema.Null(), Null{}, true},
		{"null vs bool", schema.Null(), Boolean(false), false},
		{"bool ok", schema.Boolean(), Boolean(true), true},
		{"bool vs string", schema.Boolean(), String("true"), false},
		{"string ok", schema.String(), String("hi"), true},
		{"string vs bool", schema.String(), Boolean(true), false},
		{"bytes ok", schema.Bytes(), Bytes{1}, true},
		{"bytes vs string", schema.Bytes(), String("x"), false},

		{"int ok", schema.Int(), Int(5), true},
		{"int widens to long", schema.Long(), Int(5), true},
		{"int widens to float", schema.Float(), Int(5), true},
		{"int widens to double", schema.Double(), Int(5), true},
		{"long ok", schema.Long(), Long(5), true},
		{"long fits int", schema.Int(), Long(math.MaxInt32), true},
		{"long too wide for int", schema.Int(), Long(math.MaxInt32 + 1), false},
		{"long widens to float", schema.Float(), Long(5), true},
		{"long widens to double", schema.Double(), Long(5), true},
		{"float ok", schema.Float(), Float(1.5), true},
		{"float widens to double", schema.Double(), Float(1.5), true},
		{"double does not narrow", schema.Float(), Double(1.5), false},
		{"float does not narrow to int", schema.Int(), Float(1), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Validate(tc.schema, tc.datum))
		})
	}
}

func TestValidate_NamedTypes(t *testing.T) {
	enum := schema.NewEnum("Suit")
	require.NoError(t, enum.AppendSymbol("HEARTS"))
	require.NoError(t, enum.AppendSymbol("SPADES"))

	assert.True(t, Validate(enum, Enum("HEARTS")))
	assert.False(t, Validate(enum, Enum("CLUBS")))
	assert.False(t, Validate(enum, String("HEARTS")))

	fixed := schema.NewFixed("MD5", 4)
	assert.True(t, Validate(fixed, Fixed{1, 2, 3, 4}))
	assert.False(t, Validate(fixed, Fixed{1, 2, 3}))
	assert.False(t, Validate(fixed, Bytes{1, 2, 3, 4}))
}

func TestValidate_Containers(t *testing.T) {
	items := schema.NewArray(schema.Int())
	assert.True(t, Validate(items, Array{Int(1), Int(2)}))
	assert.True(t, Validate(items, Array{}))
	assert.False(t, Validate(items, Array{Int(1), String("x")}))

	values := schema.NewMap(schema.String())
	assert.True(t, Validate(values, Map{"a": String("x")}))
	assert.False(t, Validate(values, Map{"a": Int(1)}))
}

func TestValidate_Union(t *testing.T) {
	union := schema.NewUnion()
	require.NoError(t, union.AppendBranch(schema.Null()))
	require.NoError(t, union.AppendBranch(schema.String()))

	assert.True(t, Validate(union, Null{}))
	assert.True(t, Validate(union, String("x")))
	assert.False(t, Validate(union, Int(1)))

	assert.Equal(t, 1, FirstMatch(union, String("x")))
	assert.Equal(t, -1, FirstMatch(union, Int(1)))
}

func TestValidate_Record(t *testing.T) {
	record := schema.NewRecord("Person")
	require.NoError(t, record.AppendField("name", schema.String()))
	require.NoError(t, record.AppendField("age", schema.Int()))

	complete := NewRecord().Set("name", String("ada")).Set("age", Int(36))
	assert.True(t, Validate(record, complete))

	missing := NewRecord().Set("name", String("ada"))
	assert.False(t, Validate(record, missing), "every schema field must be provided")

	wrongType := NewRecord().Set("name", String("ada")).Set("age", String("36"))
	assert.False(t, Validate(record, wrongType))

	// Fields the schema does not know are ignored; they are simply
	// never written.
	extra := complete.Clone().(*Record).Set("extra", Boolean(true))
	assert.True(t, Validate(record, extra))
}

func TestValidate_RecursiveSchema(t *testing.T) {
	node := schema.NewRecord("Node")
	require.NoError(t, node.AppendField("value", schema.Long()))
	next := schema.NewUnion()
	require.NoError(t, next.AppendBranch(schema.Null()))
	require.NoError(t, next.AppendBranch(schema.NewLink("Node")))
	require.NoError(t, node.AppendField("next", next))
	frozen, err := schema.Freeze(node)
	require.NoError(t, err)

	list := NewRecord().
		Set("value", Long(1)).
		Set("next", NewRecord().
			Set("value", Long(2)).
			Set("next", Null{}))
	assert.True(t, Validate(frozen, list))

	broken := NewRecord().Set("value", Long(1)).Set("next", Int(7))
	assert.False(t, Validate(frozen, broken))
}
