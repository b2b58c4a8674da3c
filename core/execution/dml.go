package execution

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/heap"
	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/tuple"
)

// insertOp bulk-inserts literal rows. Every row of the statement is
// encoded — and so arity/type checked — before the first page mutation;
// a multi-page insert that fails partway still leaves earlier pages
// mutated (no WAL, no atomicity guarantee). DML yields no result rows.
type insertOp struct {
	storage *heap.Engine
	cat     *catalog.Catalog
	table   string
	rows    [][]tuple.Value

	encoded [][]byte
	done    bool
	state   opState
}

func newInsertOp(storage *heap.Engine, cat *catalog.Catalog, table string, rows [][]tuple.Value) *insertOp {
	return &insertOp{storage: storage, cat: cat, table: table, rows: rows}
}

func (op *insertOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("insert: operator already used")
	}
	op.state = stateOpened

	info, err := op.cat.Lookup(op.table)
	if err != nil {
		return err
	}
	op.encoded = make([][]byte, 0, len(op.rows))
	for _, row := range op.rows {
		payload, err := tuple.Encode(info.Schema, row)
		if err != nil {
			return err
		}
		op.encoded = append(op.encoded, payload)
	}
	return nil
}

func (op *insertOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	if op.done {
		return nil, nil
	}
	op.done = true
	for _, payload := range op.encoded {
		if _, err := op.storage.Insert(op.table, payload); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (op *insertOp) Close() error {
	op.state = stateClosed
	return nil
}

// deleteOp tombstones every RID produced by its child subtree.
type deleteOp struct {
	storage *heap.Engine
	child   Operator
	done    bool
	state   opState
}

func newDeleteOp(storage *heap.Engine, child Operator) *deleteOp {
	return &deleteOp{storage: storage, child: child}
}

func (op *deleteOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("delete: operator already used")
	}
	op.state = stateOpened
	return op.child.Open()
}

func (op *deleteOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	if op.done {
		return nil, nil
	}
	op.done = true
	for {
		row, err := op.child.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, nil
		}
		if !row.HasRID {
			return nil, ErrNoRowID
		}
		if err := op.storage.Delete(row.RID); err != nil {
			return nil, err
		}
	}
}

func (op *deleteOp) Close() error {
	if op.state == stateClosed {
		return nil
	}
	op.state = stateClosed
	return op.child.Close()
}

// updateOp rewrites every row produced by its child with the literal
// assignments applied: the old tuple is tombstoned and the new one
// re-inserted, so RIDs may move. All matching rows are collected before
// any mutation so the rewrite never observes its own inserts.
type updateOp struct {
	storage     *heap.Engine
	cat         *catalog.Catalog
	table       string
	child       Operator
	assignments []plan.Assignment
	done        bool
	state       opState
}

func newUpdateOp(storage *heap.Engine, cat *catalog.Catalog, table string, child Operator, assignments []plan.Assignment) *updateOp {
	return &updateOp{storage: storage, cat: cat, table: table, child: child, assignments: assignments}
}

func (op *updateOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("update: operator already used")
	}
	op.state = stateOpened
	return op.child.Open()
}

func (op *updateOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	if op.done {
		return nil, nil
	}
	op.done = true

	info, err := op.cat.Lookup(op.table)
	if err != nil {
		return nil, err
	}

	// Resolve assignment targets up front so a bad column name fails
	// the statement even when nothing matches.
	targets := make([]int, len(op.assignments))
	for i, asg := range op.assignments {
		idx, ok := info.Schema.ColumnIndex(asg.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, asg.Column)
		}
		targets[i] = idx
	}

	// Materialize the matching rows first.
	var matched []*Row
	for {
		row, err := op.child.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		if !row.HasRID {
			return nil, ErrNoRowID
		}
		matched = append(matched, row)
	}

	for _, row := range matched {
		updated := make([]tuple.Value, len(row.Values))
		copy(updated, row.Values)
		for i, asg := range op.assignments {
			updated[targets[i]] = asg.Value
		}
		payload, err := tuple.Encode(info.Schema, updated)
		if err != nil {
			return nil, err
		}
		if err := op.storage.Delete(row.RID); err != nil {
			return nil, err
		}
		if _, err := op.storage.Insert(op.table, payload); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (op *updateOp) Close() error {
	if op.state == stateClosed {
		return nil
	}
	op.state = stateClosed
	return op.child.Close()
}
