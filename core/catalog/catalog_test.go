package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return New(logger)
}

func TestRegisterAndLookup(t *testing.T) {
	c := testCatalog(t)
	schema := Schema{{Name: "id", Type: IntType}}

	require.NoError(t, c.Register("orders", schema, 3))

	info, err := c.Lookup("orders")
	require.NoError(t, err)
	require.Equal(t, "orders", info.Name)
	require.Equal(t, schema, info.Schema)
	require.EqualValues(t, 3, info.HeadPage)
}

func TestLookupCaseInsensitive(t *testing.T) {
	c := testCatalog(t)
	require.NoError(t, c.Register("Orders", Schema{{Name: "id", Type: IntType}}, 0))

	for _, name := range []string{"orders", "ORDERS", "oRdErS"} {
		info, err := c.Lookup(name)
		require.NoError(t, err)
		require.Equal(t, "Orders", info.Name)
	}
	require.True(t, c.Exists("ORDERS"))
}

func TestRegisterDuplicate(t *testing.T) {
	c := testCatalog(t)
	require.NoError(t, c.Register("t", nil, 0))
	require.ErrorIs(t, c.Register("T", nil, 1), ErrDuplicateTable)
}

func TestLookupMissing(t *testing.T) {
	c := testCatalog(t)
	_, err := c.Lookup("ghost")
	require.ErrorIs(t, err, ErrTableNotFound)
}

func TestDrop(t *testing.T) {
	c := testCatalog(t)
	require.NoError(t, c.Register("t", nil, 0))
	require.NoError(t, c.Drop("T"))
	require.False(t, c.Exists("t"))
	require.ErrorIs(t, c.Drop("t"), ErrTableNotFound)
}

func TestSchemaColumnIndex(t *testing.T) {
	s := Schema{
		{Name: "id", Type: IntType},
		{Name: "Name", Type: VarcharType, Size: 16},
	}

	idx, ok := s.ColumnIndex("NAME")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = s.ColumnIndex("missing")
	require.False(t, ok)

	require.Equal(t, []string{"id", "Name"}, s.ColumnNames())
}
