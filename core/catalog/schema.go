// Package catalog holds the metadata registry: table name to column
// schema and head page id. Only the in-memory lookup contract lives
// here; persisting the catalog is an external concern.
package catalog

import (
	"fmt"
	"strings"

	"github.com/sushant-115/relicdb/core/storage/page"
)

// ColumnType enumerates the supported column types.
type ColumnType int

const (
	// IntType is an 8-byte signed integer.
	IntType ColumnType = iota
	// VarcharType is a length-prefixed variable byte string with a
	// declared maximum width.
	VarcharType
	// CharType is a fixed-width string, space-padded to its width.
	CharType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "INT"
	case VarcharType:
		return "VARCHAR"
	case CharType:
		return "CHAR"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// Column describes one column: name, type, and declared width for the
// string types (ignored for INT).
type Column struct {
	Name string
	Type ColumnType
	Size int
}

// Schema is the ordered column list of a table.
type Schema []Column

// ColumnIndex returns the position of the named column, matching
// case-insensitively. The second result is false if the column is
// absent.
func (s Schema) ColumnIndex(name string) (int, bool) {
	for i, col := range s {
		if strings.EqualFold(col.Name, name) {
			return i, true
		}
	}
	return 0, false
}

// ColumnNames returns the column names in schema order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// TableInfo is one catalog entry.
type TableInfo struct {
	Name     string
	Schema   Schema
	HeadPage page.PageID
}
