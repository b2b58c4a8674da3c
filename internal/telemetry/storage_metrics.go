package internaltelemetry

import (
	"go.opentelemetry.io/otel/metric"
)

// StatementLatencyName is the statement duration histogram's instrument
// name; the metrics pipeline attaches its bucket view by this name.
const StatementLatencyName = "relicdb.exec.statement_duration"

// StorageMetrics holds all the metric instruments for the storage and
// execution layers. A nil *StorageMetrics is valid everywhere it is
// accepted; callers guard before recording.
type StorageMetrics struct {
	DiskReadsCounter      metric.Int64Counter
	DiskWritesCounter     metric.Int64Counter
	PoolHitsCounter       metric.Int64Counter
	PoolMissesCounter     metric.Int64Counter
	EvictionsCounter      metric.Int64Counter
	FlushesCounter        metric.Int64Counter
	TuplesInsertedCounter metric.Int64Counter
	TuplesDeletedCounter  metric.Int64Counter
	StatementsCounter     metric.Int64Counter
	StatementLatencyHist  metric.Int64Histogram
}

// NewStorageMetrics creates and registers all the metrics for the storage
// engine and the execution engine.
func NewStorageMetrics(meter metric.Meter) (*StorageMetrics, error) {
	diskReads, err := meter.Int64Counter(
		"relicdb.disk.reads_total",
		metric.WithDescription("Total number of whole-page reads from the backing file."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	diskWrites, err := meter.Int64Counter(
		"relicdb.disk.writes_total",
		metric.WithDescription("Total number of whole-page writes to the backing file."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	poolHits, err := meter.Int64Counter(
		"relicdb.buffer.hits_total",
		metric.WithDescription("Fetches served from a resident frame."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	poolMisses, err := meter.Int64Counter(
		"relicdb.buffer.misses_total",
		metric.WithDescription("Fetches that had to load the page from disk."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := meter.Int64Counter(
		"relicdb.buffer.evictions_total",
		metric.WithDescription("Frames reclaimed by the eviction policy."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	flushes, err := meter.Int64Counter(
		"relicdb.buffer.flushes_total",
		metric.WithDescription("Dirty frames written back to disk."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	tuplesInserted, err := meter.Int64Counter(
		"relicdb.heap.tuples_inserted_total",
		metric.WithDescription("Tuples appended to table page chains."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	tuplesDeleted, err := meter.Int64Counter(
		"relicdb.heap.tuples_deleted_total",
		metric.WithDescription("Tuples tombstoned by RID."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	statements, err := meter.Int64Counter(
		"relicdb.exec.statements_total",
		metric.WithDescription("Statements executed."),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	statementLatency, err := meter.Int64Histogram(
		StatementLatencyName,
		metric.WithDescription("The latency of statement execution."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &StorageMetrics{
		DiskReadsCounter:      diskReads,
		DiskWritesCounter:     diskWrites,
		PoolHitsCounter:       poolHits,
		PoolMissesCounter:     poolMisses,
		EvictionsCounter:      evictions,
		FlushesCounter:        flushes,
		TuplesInsertedCounter: tuplesInserted,
		TuplesDeletedCounter:  tuplesDeleted,
		StatementsCounter:     statements,
		StatementLatencyHist:  statementLatency,
	}, nil
}
