package flag

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = String("test")
	var _ Value = Array{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}
	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	obj := Object{"a": Int(1), "A": Int(2), "aa": Int(3), "aA": Int(4), "Aa": Int(5), "AA": Int(6)}
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null{}},
		{"bool", true, Bool(true)},
		{"int", 7, Int(7)},
		{"int64", int64(-3), Int(-3)},
		{"uint32", uint32(9), Int(9)},
		{"float64", 0.25, Float(0.25)},
		{"json int", json.Number("10"), Int(10)},
		{"json float", json.Number("10.5"), Float(10.5)},
		{"json exponent", json.Number("1e3"), Float(1000)},
		{"string", "x", String("x")},
		{"value passthrough", Int(3), Int(3)},
		{"array", []any{1, "a"}, Array{Int(1), String("a")}},
		{"object", map[string]any{"limit": 10}, Object{"limit": Int(10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOfRejectsUnsupported(t *testing.T) {
	_, err := ValueOf(struct{}{})
	assert.Error(t, err)

	_, err = ValueOf(map[string]any{"nested": []any{make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `object["nested"]`)
}

func TestUnmarshalValue(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"limit": 10, "ratio": 0.5, "tags": ["a", null], "on": true}`))
	require.NoError(t, err)

	want := Object{
		"limit": Int(10),
		"ratio": Float(0.5),
		"tags":  Array{String("a"), Null{}},
		"on":    Bool(true),
	}
	assert.True(t, Equal(want, v), "got %#v", v)
}

func TestUnmarshalValueKeepsIntegralFloats(t *testing.T) {
	data, err := MarshalCanonical(Float(2))
	require.NoError(t, err)

	v, err := UnmarshalValue(data)
	require.NoError(t, err)
	assert.Equal(t, Float(2), v)
}

func TestUnmarshalValueTrailingData(t *testing.T) {
	_, err := UnmarshalValue([]byte(`1 2`))
	assert.Error(t, err)
}

func TestInterface(t *testing.T) {
	v := Object{"a": Array{Int(1), Float(1.5), Bool(false), Null{}}, "b": String("x")}
	want := map[string]any{
		"a": []any{int64(1), 1.5, false, nil},
		"b": "x",
	}
	assert.Equal(t, want, Interface(v))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Int(1)))
	assert.False(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(Null{}, Null{}))
	assert.True(t, Equal(Array{Int(1), Object{"k": String("v")}}, Array{Int(1), Object{"k": String("v")}}))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
	assert.False(t, Equal(Object{"k": Int(1)}, Object{"j": Int(1)}))
	assert.False(t, Equal(Object{"k": Int(1)}, Array{Int(1)}))
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "bool", TypeName(Bool(true)))
	assert.Equal(t, "float", TypeName(Float(1)))
	assert.Equal(t, "object", TypeName(Object{}))
}
