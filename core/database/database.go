// Package database assembles a relicdb instance: disk manager, buffer
// pool, catalog, storage engine, and execution engine, wired as one
// explicit object graph.
package database

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/config"
	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/execution"
	"github.com/sushant-115/relicdb/core/heap"
	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/storage/buffer"
	"github.com/sushant-115/relicdb/core/storage/disk"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
	"github.com/sushant-115/relicdb/pkg/logger"
)

// DB is one database instance. All shared state (catalog, buffer pool)
// is owned here and passed by reference into the engines.
type DB struct {
	disk    *disk.Manager
	pool    *buffer.Pool
	catalog *catalog.Catalog
	storage *heap.Engine
	engine  *execution.Engine
	logger  *zap.Logger
}

// Open builds the instance from its configuration. tracer and metrics
// may be nil when telemetry is disabled.
func Open(cfg config.Config, log *zap.Logger, tracer trace.Tracer, metrics *internaltelemetry.StorageMetrics) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dm, err := disk.Open(cfg.DataFile, logger.For(log, "disk"), metrics)
	if err != nil {
		return nil, err
	}

	var replacer buffer.Replacer
	switch cfg.EvictionPolicy {
	case config.PolicyFIFO:
		replacer = buffer.NewFIFOReplacer()
	default:
		replacer = buffer.NewLRUReplacer()
	}
	pool := buffer.NewPool(cfg.PoolSize, replacer, dm, logger.For(log, "buffer"), metrics)

	cat := catalog.New(logger.For(log, "catalog"))
	storage := heap.NewEngine(pool, cat, logger.For(log, "heap"), metrics)
	engine := execution.NewEngine(storage, cat, logger.For(log, "exec"), tracer, metrics)

	log.Info("database opened",
		zap.String("data_file", cfg.DataFile),
		zap.Int("pool_size", cfg.PoolSize),
		zap.String("eviction_policy", cfg.EvictionPolicy),
	)
	return &DB{
		disk:    dm,
		pool:    pool,
		catalog: cat,
		storage: storage,
		engine:  engine,
		logger:  log,
	}, nil
}

// Execute runs one statement's logical plan.
func (db *DB) Execute(ctx context.Context, node plan.Node) (*execution.Result, error) {
	return db.engine.Execute(ctx, node)
}

// Catalog exposes the metadata registry.
func (db *DB) Catalog() *catalog.Catalog { return db.catalog }

// Storage exposes the table-level storage engine.
func (db *DB) Storage() *heap.Engine { return db.storage }

// Pool exposes the buffer pool.
func (db *DB) Pool() *buffer.Pool { return db.pool }

// Close flushes all dirty pages and closes the backing file.
func (db *DB) Close() error {
	if err := db.pool.FlushAll(); err != nil {
		db.disk.Close()
		return fmt.Errorf("flushing buffer pool: %w", err)
	}
	if err := db.disk.Close(); err != nil {
		return err
	}
	db.logger.Info("database closed")
	return nil
}
