package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sushant-115/relicdb/config"
	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/storage/page"
	"github.com/sushant-115/relicdb/core/tuple"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
	"github.com/sushant-115/relicdb/pkg/logger"
)

func testConfig(t *testing.T, policy string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataFile = filepath.Join(t.TempDir(), "db.data")
	cfg.PoolSize = 4
	cfg.EvictionPolicy = policy
	return cfg
}

func openTestDB(t *testing.T, policy string) (*DB, string) {
	t.Helper()
	cfg := testConfig(t, policy)

	log, err := logger.New(cfg.Logger)
	require.NoError(t, err)

	db, err := Open(cfg, log, nil, nil)
	require.NoError(t, err)
	return db, cfg.DataFile
}

func TestOpenRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.EvictionPolicy = "bogus"

	log, err := logger.New(cfg.Logger)
	require.NoError(t, err)

	_, err = Open(cfg, log, nil, nil)
	require.ErrorIs(t, err, config.ErrUnknownPolicy)
}

func TestEndToEndStatementFlow(t *testing.T) {
	for _, policy := range []string{config.PolicyLRU, config.PolicyFIFO} {
		t.Run(policy, func(t *testing.T) {
			db, _ := openTestDB(t, policy)
			defer db.Close()

			ctx := context.Background()
			_, err := db.Execute(ctx, plan.CreateTable{
				Name: "orders",
				Columns: []catalog.Column{
					{Name: "id", Type: catalog.IntType},
					{Name: "name", Type: catalog.VarcharType, Size: 16},
				},
			})
			require.NoError(t, err)

			_, err = db.Execute(ctx, plan.Insert{
				Table: "orders",
				Rows: [][]tuple.Value{
					{tuple.NewInt(1), tuple.NewString("a")},
					{tuple.NewInt(2), tuple.NewString("b")},
				},
			})
			require.NoError(t, err)

			result, err := db.Execute(ctx, plan.SeqScan{Table: "orders"})
			require.NoError(t, err)
			require.Len(t, result.Rows, 2)
		})
	}
}

func TestCloseFlushesPages(t *testing.T) {
	db, path := openTestDB(t, config.PolicyLRU)

	ctx := context.Background()
	_, err := db.Execute(ctx, plan.CreateTable{
		Name:    "t",
		Columns: []catalog.Column{{Name: "id", Type: catalog.IntType}},
	})
	require.NoError(t, err)
	_, err = db.Execute(ctx, plan.Insert{
		Table: "t",
		Rows:  [][]tuple.Value{{tuple.NewInt(7)}},
	})
	require.NoError(t, err)

	head, err := db.Catalog().Lookup("t")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// The head page reached the backing file with its slot directory
	// intact.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, page.PageSize, len(raw))
	start := int(head.HeadPage) * page.PageSize
	require.Equal(t, uint16(1), page.SlotCount(raw[start:start+page.PageSize]))
}

// counterTotal sums the data points of one int64 counter in a collected
// snapshot.
func counterTotal(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "instrument %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("instrument %s not collected", name)
	return 0
}

func TestMetricsRecordStatementWork(t *testing.T) {
	cfg := testConfig(t, config.PolicyLRU)
	log, err := logger.New(cfg.Logger)
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("relicdb-test")
	metrics, err := internaltelemetry.NewStorageMetrics(meter)
	require.NoError(t, err)

	db, err := Open(cfg, log, nil, metrics)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = db.Execute(ctx, plan.CreateTable{
		Name:    "events",
		Columns: []catalog.Column{{Name: "id", Type: catalog.IntType}},
	})
	require.NoError(t, err)
	_, err = db.Execute(ctx, plan.Insert{
		Table: "events",
		Rows: [][]tuple.Value{
			{tuple.NewInt(1)},
			{tuple.NewInt(2)},
			{tuple.NewInt(3)},
		},
	})
	require.NoError(t, err)
	result, err := db.Execute(ctx, plan.SeqScan{Table: "events"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	require.NoError(t, db.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	require.EqualValues(t, 3, counterTotal(t, rm, "relicdb.exec.statements_total"))
	require.EqualValues(t, 3, counterTotal(t, rm, "relicdb.heap.tuples_inserted_total"))
	// Insert and scan both refetch the resident head page.
	require.Positive(t, counterTotal(t, rm, "relicdb.buffer.hits_total"))
	// Close flushes the dirty head page to disk.
	require.Positive(t, counterTotal(t, rm, "relicdb.buffer.flushes_total"))
	require.Positive(t, counterTotal(t, rm, "relicdb.disk.writes_total"))
}
