package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueCompare(t *testing.T) {
	cmp, err := NewIntValue(1).Compare(NewIntValue(2))
	assert.Nil(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = NewIntValue(2).Compare(NewFloatValue(1.5))
	assert.Nil(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = NewFloatValue(1.5).Compare(NewFloatValue(1.5))
	assert.Nil(t, err)
	assert.Equal(t, 0, cmp)

	cmp, err = NewStringValue("a").Compare(NewStringValue("b"))
	assert.Nil(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = NewBoolValue(true).Compare(NewBoolValue(false))
	assert.Nil(t, err)
	assert.Equal(t, 1, cmp)
}

func TestValueCompareMismatch(t *testing.T) {
	_, err := NewIntValue(1).Compare(NewStringValue("1"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewBoolValue(true).Compare(NewIntValue(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValueAsFloat(t *testing.T) {
	f, err := NewIntValue(3).AsFloat()
	assert.Nil(t, err)
	assert.Equal(t, 3.0, f)

	f, err = NewFloatValue(1.25).AsFloat()
	assert.Nil(t, err)
	assert.Equal(t, 1.25, f)

	_, err = NewStringValue("x").AsFloat()
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "42", NewIntValue(42).String())
	assert.Equal(t, "a.com", NewStringValue("a.com").String())
	assert.Equal(t, "true", NewBoolValue(true).String())
}

// Encodings are type tagged so equal bit patterns of different kinds never
// land in the same group bucket.
func TestValueEncodeDistinct(t *testing.T) {
	seen := map[string]bool{}
	values := []Value{
		NewIntValue(0),
		NewFloatValue(0),
		NewStringValue(""),
		NewBoolValue(false),
		NewIntValue(1),
		NewStringValue("1"),
	}
	for _, value := range values {
		key := string(value.Encode())
		assert.False(t, seen[key])
		seen[key] = true
	}
	assert.Equal(t, string(NewIntValue(7).Encode()), string(NewIntValue(7).Encode()))
}

func TestMerge(t *testing.T) {
	a := Variables{"x": NewIntValue(1), "y": NewIntValue(2)}
	b := Variables{"y": NewIntValue(20), "z": NewIntValue(30)}

	merged := Merge(a, b)
	assert.Equal(t, NewIntValue(1), merged["x"])
	assert.Equal(t, NewIntValue(20), merged["y"])
	assert.Equal(t, NewIntValue(30), merged["z"])

	// inputs are untouched.
	assert.Equal(t, NewIntValue(2), a["y"])
	assert.Len(t, b, 2)
}

func TestDataSourceString(t *testing.T) {
	assert.Equal(t, "stdin", NewStdinSource().String())
	assert.Equal(t, "file(access.log)", NewFileSource("access.log").String())
}
