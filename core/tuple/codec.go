package tuple

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/sushant-115/relicdb/core/catalog"
)

var (
	ErrArityMismatch = errors.New("value count does not match column count")
	ErrTypeMismatch  = errors.New("value type does not match column type")
)

// Field encodings (little-endian):
//
//	INT        8 bytes, signed
//	VARCHAR(n) uint16 length prefix + that many bytes, length <= n
//	CHAR(n)    exactly n bytes, space-padded on the right
//
// Fields are concatenated in schema order with no per-tuple header.

// Encode serializes values against the schema. The whole row is
// validated before any bytes are produced.
func Encode(schema catalog.Schema, values []Value) ([]byte, error) {
	if len(values) != len(schema) {
		return nil, fmt.Errorf("%w: got %d values, table has %d columns", ErrArityMismatch, len(values), len(schema))
	}
	for i, col := range schema {
		if !values[i].Matches(col.Type) {
			return nil, fmt.Errorf("%w: column %s is %s", ErrTypeMismatch, col.Name, col.Type)
		}
		if col.Type == catalog.VarcharType || col.Type == catalog.CharType {
			if col.Size > 0 && len(values[i].Str()) > col.Size {
				return nil, fmt.Errorf("%w: value %q exceeds %s(%d) for column %s",
					ErrTypeMismatch, values[i].Str(), col.Type, col.Size, col.Name)
			}
		}
	}

	var buf []byte
	for i, col := range schema {
		switch col.Type {
		case catalog.IntType:
			var field [8]byte
			binary.LittleEndian.PutUint64(field[:], uint64(values[i].Int()))
			buf = append(buf, field[:]...)
		case catalog.VarcharType:
			s := values[i].Str()
			var prefix [2]byte
			binary.LittleEndian.PutUint16(prefix[:], uint16(len(s)))
			buf = append(buf, prefix[:]...)
			buf = append(buf, s...)
		case catalog.CharType:
			s := values[i].Str()
			buf = append(buf, s...)
			for pad := len(s); pad < col.Size; pad++ {
				buf = append(buf, ' ')
			}
		}
	}
	return buf, nil
}

// Decode deserializes raw tuple bytes using the schema that produced
// them.
func Decode(schema catalog.Schema, raw []byte) ([]Value, error) {
	values := make([]Value, 0, len(schema))
	pos := 0
	for _, col := range schema {
		switch col.Type {
		case catalog.IntType:
			if pos+8 > len(raw) {
				return nil, fmt.Errorf("truncated tuple: column %s", col.Name)
			}
			values = append(values, NewInt(int64(binary.LittleEndian.Uint64(raw[pos:]))))
			pos += 8
		case catalog.VarcharType:
			if pos+2 > len(raw) {
				return nil, fmt.Errorf("truncated tuple: column %s", col.Name)
			}
			n := int(binary.LittleEndian.Uint16(raw[pos:]))
			pos += 2
			if pos+n > len(raw) {
				return nil, fmt.Errorf("truncated tuple: column %s", col.Name)
			}
			values = append(values, NewString(string(raw[pos:pos+n])))
			pos += n
		case catalog.CharType:
			if pos+col.Size > len(raw) {
				return nil, fmt.Errorf("truncated tuple: column %s", col.Name)
			}
			s := strings.TrimRight(string(raw[pos:pos+col.Size]), " \x00")
			values = append(values, NewString(s))
			pos += col.Size
		}
	}
	if pos != len(raw) {
		return nil, fmt.Errorf("tuple has %d trailing bytes", len(raw)-pos)
	}
	return values, nil
}
