package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/heap"
	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/tuple"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
)

// Result is the materialized output of one statement. DDL and DML
// statements produce no rows.
type Result struct {
	Columns []string
	Rows    [][]tuple.Value
}

// Engine builds the operator tree for a logical plan (one operator per
// node) and drives it: open once, pull until end-of-stream, close once.
// It reports exactly one error per statement.
type Engine struct {
	storage *heap.Engine
	cat     *catalog.Catalog
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *internaltelemetry.StorageMetrics
}

// NewEngine wires the execution engine to the storage engine and the
// catalog, both passed explicitly.
func NewEngine(storage *heap.Engine, cat *catalog.Catalog, logger *zap.Logger, tracer trace.Tracer, metrics *internaltelemetry.StorageMetrics) *Engine {
	return &Engine{storage: storage, cat: cat, logger: logger, tracer: tracer, metrics: metrics}
}

// Execute runs one statement to completion and returns its result set.
// The operator tree is always closed, on error paths included, so every
// pin acquired during execution is released.
func (e *Engine) Execute(ctx context.Context, node plan.Node) (result *Result, err error) {
	stmtID := uuid.NewString()
	start := time.Now()

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.Start(ctx, "execution.Execute")
		defer span.End()
	}

	root, err := e.build(node)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := root.Close(); cerr != nil && err == nil {
			result = nil
			err = cerr
		}
		e.observe(ctx, stmtID, node, start, err)
	}()
	if err = root.Open(); err != nil {
		return nil, err
	}

	result = &Result{}
	for {
		row, err := root.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return result, nil
		}
		if result.Columns == nil {
			result.Columns = row.Schema.ColumnNames()
		}
		result.Rows = append(result.Rows, row.Values)
	}
}

// build maps each plan node 1:1 to an operator.
func (e *Engine) build(node plan.Node) (Operator, error) {
	switch n := node.(type) {
	case plan.CreateTable:
		return newCreateTableOp(e.storage, e.cat, n.Name, n.Columns), nil
	case plan.DropTable:
		return newDropTableOp(e.cat, n.Name), nil
	case plan.Insert:
		return newInsertOp(e.storage, e.cat, n.Table, n.Rows), nil
	case plan.SeqScan:
		return newSeqScanOp(e.storage, e.cat, n.Table), nil
	case plan.Filter:
		child, err := e.build(n.Child)
		if err != nil {
			return nil, err
		}
		return newFilterOp(child, n.Pred), nil
	case plan.Project:
		child, err := e.build(n.Child)
		if err != nil {
			return nil, err
		}
		return newProjectOp(child, n.Columns), nil
	case plan.Delete:
		child, err := e.build(n.Child)
		if err != nil {
			return nil, err
		}
		return newDeleteOp(e.storage, child), nil
	case plan.Update:
		child, err := e.build(n.Child)
		if err != nil {
			return nil, err
		}
		return newUpdateOp(e.storage, e.cat, n.Table, child, n.Assignments), nil
	default:
		return nil, fmt.Errorf("unsupported plan node %T", node)
	}
}

func (e *Engine) observe(ctx context.Context, stmtID string, node plan.Node, start time.Time, err error) {
	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.StatementsCounter.Add(ctx, 1)
		e.metrics.StatementLatencyHist.Record(ctx, elapsed.Milliseconds())
	}
	if err != nil {
		e.logger.Warn("statement failed",
			zap.String("statement_id", stmtID),
			zap.String("plan", fmt.Sprintf("%T", node)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("statement executed",
		zap.String("statement_id", stmtID),
		zap.String("plan", fmt.Sprintf("%T", node)),
		zap.Duration("elapsed", elapsed),
	)
}
