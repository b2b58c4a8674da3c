package execution

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/heap"
)

// createTableOp registers the table and allocates its head page. DDL
// produces no result rows.
type createTableOp struct {
	storage *heap.Engine
	cat     *catalog.Catalog
	name    string
	columns []catalog.Column
	state   opState
}

func newCreateTableOp(storage *heap.Engine, cat *catalog.Catalog, name string, columns []catalog.Column) *createTableOp {
	return &createTableOp{storage: storage, cat: cat, name: name, columns: columns}
}

func (op *createTableOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("create table: operator already used")
	}
	op.state = stateOpened

	// Validate before mutating: the duplicate check runs ahead of any
	// page allocation.
	if op.cat.Exists(op.name) {
		return fmt.Errorf("%w: %s", catalog.ErrDuplicateTable, op.name)
	}
	return op.storage.CreateTable(op.name, catalog.Schema(op.columns))
}

func (op *createTableOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (op *createTableOp) Close() error {
	op.state = stateClosed
	return nil
}

// dropTableOp removes the catalog entry. The table's pages stay
// allocated; space reclamation is out of scope.
type dropTableOp struct {
	cat   *catalog.Catalog
	name  string
	state opState
}

func newDropTableOp(cat *catalog.Catalog, name string) *dropTableOp {
	return &dropTableOp{cat: cat, name: name}
}

func (op *dropTableOp) Open() error {
	if op.state != stateCreated {
		return fmt.Errorf("drop table: operator already used")
	}
	op.state = stateOpened
	return op.cat.Drop(op.name)
}

func (op *dropTableOp) Next() (*Row, error) {
	if err := op.state.checkNext(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (op *dropTableOp) Close() error {
	op.state = stateClosed
	return nil
}
