package tuple

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sushant-115/relicdb/core/catalog"
)

var ordersSchema = catalog.Schema{
	{Name: "id", Type: catalog.IntType},
	{Name: "name", Type: catalog.VarcharType, Size: 32},
	{Name: "code", Type: catalog.CharType, Size: 8},
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []Value{NewInt(-42), NewString("widget"), NewString("AB")}

	raw, err := Encode(ordersSchema, values)
	require.NoError(t, err)

	decoded, err := Decode(ordersSchema, raw)
	require.NoError(t, err)
	require.Equal(t, int64(-42), decoded[0].Int())
	require.Equal(t, "widget", decoded[1].Str())
	require.Equal(t, "AB", decoded[2].Str())
}

func TestEncodeArityMismatch(t *testing.T) {
	_, err := Encode(ordersSchema, []Value{NewInt(1)})
	require.ErrorIs(t, err, ErrArityMismatch)
}

func TestEncodeTypeMismatch(t *testing.T) {
	_, err := Encode(ordersSchema, []Value{NewString("oops"), NewString("x"), NewString("y")})
	require.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Encode(ordersSchema, []Value{NewInt(1), NewInt(2), NewString("y")})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestEncodeVarcharTooWide(t *testing.T) {
	_, err := Encode(ordersSchema, []Value{NewInt(1), NewString(strings.Repeat("a", 33)), NewString("x")})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

func TestEncodeValidatesBeforeProducing(t *testing.T) {
	// A bad value in the last column must fail without partial output.
	raw, err := Encode(ordersSchema, []Value{NewInt(1), NewString("ok"), NewInt(9)})
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Nil(t, raw)
}

func TestCharPadding(t *testing.T) {
	raw, err := Encode(ordersSchema, []Value{NewInt(1), NewString(""), NewString("ZZ")})
	require.NoError(t, err)

	// CHAR(8) occupies its full width on disk.
	require.Len(t, raw, 8+2+0+8)

	decoded, err := Decode(ordersSchema, raw)
	require.NoError(t, err)
	require.Equal(t, "ZZ", decoded[2].Str())
}

func TestDecodeTruncated(t *testing.T) {
	raw, err := Encode(ordersSchema, []Value{NewInt(1), NewString("abc"), NewString("d")})
	require.NoError(t, err)

	_, err = Decode(ordersSchema, raw[:len(raw)-3])
	require.Error(t, err)
}

func TestValueCompare(t *testing.T) {
	cmp, err := NewInt(1).Compare(NewInt(2))
	require.NoError(t, err)
	require.Negative(t, cmp)

	cmp, err = NewString("b").Compare(NewString("a"))
	require.NoError(t, err)
	require.Positive(t, cmp)

	_, err = NewInt(1).Compare(NewString("a"))
	require.Error(t, err)
}
