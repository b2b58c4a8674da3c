package execution

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/heap"
	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/tuple"
)

// seqScanOp reads every live tuple of a table, decodes it against the
// table's schema, and attaches the tuple's RID for downstream Delete and
// Update.
type seqScanOp struct {
	storage *heap.Engine
	cat     *catalog.Catalog
	table   string

	schema  catalog.Schema
	scanner *heap.Scanner
	state   opState
}

func newSeqScanOp(storage *heap.Engine, cat *catalog.Catalog, table string) *seqScanOp {
	return &seqScanOp{storage: storage, cat: cat, table: table}
}

func (op *seqScanOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("seq scan: operator already used")
	}
	op.state = stateOpened

	info, err := op.cat.Lookup(op.table)
	if err != nil {
		return err
	}
	op.schema = info.Schema

	scanner, err := op.storage.Scan(op.table)
	if err != nil {
		return err
	}
	op.scanner = scanner
	return nil
}

func (op *seqScanOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	rid, raw, err := op.scanner.Next()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	values, err := tuple.Decode(op.schema, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding tuple %v of table %s: %w", rid, op.table, err)
	}
	return &Row{Values: values, Schema: op.schema, RID: rid, HasRID: true}, nil
}

func (op *seqScanOp) Close() error {
	if op.state == stateClosed {
		return nil
	}
	op.state = stateClosed
	if op.scanner != nil {
		return op.scanner.Close()
	}
	return nil
}

// filterOp forwards only child rows matching the predicate. Once the
// child reports end-of-stream the child is never pulled again.
type filterOp struct {
	child     Operator
	pred      plan.Expr
	exhausted bool
	state     opState
}

func newFilterOp(child Operator, pred plan.Expr) *filterOp {
	return &filterOp{child: child, pred: pred}
}

func (op *filterOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("filter: operator already used")
	}
	op.state = stateOpened
	return op.child.Open()
}

func (op *filterOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	if op.exhausted {
		return nil, nil
	}
	for {
		row, err := op.child.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			op.exhausted = true
			return nil, nil
		}
		keep, err := evalPredicate(op.pred, row)
		if err != nil {
			return nil, err
		}
		if keep {
			return row, nil
		}
	}
}

func (op *filterOp) Close() error {
	if op.state == stateClosed {
		return nil
	}
	op.state = stateClosed
	return op.child.Close()
}

// projectOp selects and reorders columns of the child's output.
type projectOp struct {
	child   Operator
	columns []string
	state   opState
}

func newProjectOp(child Operator, columns []string) *projectOp {
	return &projectOp{child: child, columns: columns}
}

func (op *projectOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("project: operator already used")
	}
	op.state = stateOpened
	return op.child.Open()
}

func (op *projectOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	row, err := op.child.Next()
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	values := make([]tuple.Value, 0, len(op.columns))
	schema := make(catalog.Schema, 0, len(op.columns))
	for _, name := range op.columns {
		idx, ok := row.Schema.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
		values = append(values, row.Values[idx])
		schema = append(schema, row.Schema[idx])
	}
	return &Row{Values: values, Schema: schema, RID: row.RID, HasRID: row.HasRID}, nil
}

func (op *projectOp) Close() error {
	if op.state == stateClosed {
		return nil
	}
	op.state = stateClosed
	return op.child.Close()
}
