package datum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual_DifferentKindsNeverEqual(t *testing.T) {
	values := []Datum{
		Null{},
		Boolean(true),
		Int(1),
		Long(1),
		Float(1),
		Double(1),
		Bytes("x"),
		String("x"),
		Enum("x"),
		Fixed("x"),
		Array{Int(1)},
		Map{"k": Int(1)},
		NewRecord().Set("f", Int(1)),
	}

	for i, a := range values {
		for j, b := range values {
			if i == j {
				assert.True(t, a.Equal(b), "%s should equal itself", a)
			} else {
				assert.False(t, a.Equal(b), "%s should not equal %s", a, b)
			}
		}
	}
}

func TestEqual_FloatBitPatterns(t *testing.T) {
	nan1 := Double(math.Float64frombits(0x7ff8000000000001))
	nan2 := Double(math.Float64frombits(0x7ff8000000000002))

	assert.True(t, nan1.Equal(nan1), "identical NaN payloads are equal")
	assert.False(t, nan1.Equal(nan2), "distinct NaN payloads differ")

	// Positive and negative zero have distinct bit patterns.
	assert.False(t, Double(0.0).Equal(Double(math.Copysign(0, -1))))
	assert.False(t, Float(0.0).Equal(Float(float32(math.Copysign(0, -1)))))
}

func TestClone_IsDeep(t *testing.T) {
	original := NewRecord().
		Set("items", Array{Int(1), Int(2)}).
		Set("labels", Map{"a": String("x")}).
		Set("raw", Bytes{1, 2, 3})

	clone := original.Clone().(*Record)
	require.True(t, original.Equal(clone))

	items, _ := clone.Get("items")
	items.(Array)[0] = Int(99)
	raw, _ := clone.Get("raw")
	raw.(Bytes)[0] = 0xff

	originalItems, _ := original.Get("items")
	assert.Equal(t, Int(1), originalItems.(Array)[0], "clone shares no slices")
	originalRaw, _ := original.Get("raw")
	assert.Equal(t, byte(1), originalRaw.(Bytes)[0], "clone shares no bytes")
}

func TestRecord_PreservesFieldOrder(t *testing.T) {
	record := NewRecord().
		Set("z", Int(1)).
		Set("a", Int(2)).
		Set("m", Int(3))

	assert.Equal(t, []string{"z", "a", "m"}, record.Fields())

	// Replacing a value keeps the original position.
	record.Set("a", Int(20))
	assert.Equal(t, []string{"z", "a", "m"}, record.Fields())
	value, ok := record.Get("a")
	require.True(t, ok)
	assert.Equal(t, Int(20), value)
}

func TestRecord_EqualRequiresSameOrder(t *testing.T) {
	a := NewRecord().Set("x", Int(1)).Set("y", Int(2))
	b := NewRecord().Set("y", Int(2)).Set("x", Int(1))
	assert.False(t, a.Equal(b))
}

func TestMap_EqualIgnoresOrder(t *testing.T) {
	a := Map{"x": Int(1), "y": Int(2)}
	b := Map{"y": Int(2), "x": Int(1)}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(Map{"x": Int(1)}))
}
