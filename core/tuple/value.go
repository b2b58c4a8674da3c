// Package tuple defines typed values and the schema-driven binary codec
// for tuples. Tuples are schema-less at the byte level; decoding always
// requires the table's column schema.
package tuple

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/catalog"
)

// ValueKind tags a Value's runtime type.
type ValueKind int

const (
	IntValue ValueKind = iota
	StringValue
)

// Value is one typed field of a tuple.
type Value struct {
	kind ValueKind
	i    int64
	s    string
}

// NewInt returns an integer value.
func NewInt(v int64) Value { return Value{kind: IntValue, i: v} }

// NewString returns a string value (VARCHAR or CHAR).
func NewString(v string) Value { return Value{kind: StringValue, s: v} }

// Kind returns the value's runtime type tag.
func (v Value) Kind() ValueKind { return v.kind }

// Int returns the integer payload. Valid only for IntValue.
func (v Value) Int() int64 { return v.i }

// Str returns the string payload. Valid only for StringValue.
func (v Value) Str() string { return v.s }

func (v Value) String() string {
	if v.kind == IntValue {
		return fmt.Sprintf("%d", v.i)
	}
	return v.s
}

// Matches reports whether the value's runtime type can be stored in a
// column of the given type.
func (v Value) Matches(t catalog.ColumnType) bool {
	switch t {
	case catalog.IntType:
		return v.kind == IntValue
	case catalog.VarcharType, catalog.CharType:
		return v.kind == StringValue
	default:
		return false
	}
}

// Compare orders v against other. Values of different kinds do not
// compare; the caller is expected to have type-checked first.
func (v Value) Compare(other Value) (int, error) {
	if v.kind != other.kind {
		return 0, fmt.Errorf("cannot compare %v with %v", v, other)
	}
	switch v.kind {
	case IntValue:
		switch {
		case v.i < other.i:
			return -1, nil
		case v.i > other.i:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		switch {
		case v.s < other.s:
			return -1, nil
		case v.s > other.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
}
