// Package plan defines the logical plan consumed by the execution
// engine: a tree of typed nodes, one per supported statement or
// operator, produced by the external compiler front end. Nodes arrive
// pre-validated (existing tables, matching arities); the engine
// re-checks only runtime data-level errors.
package plan

import (
	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/tuple"
)

// Node is one logical plan node. The node set is closed; the execution
// engine maps each variant 1:1 to an operator.
type Node interface {
	planNode()
}

// CreateTable registers a new table with the given columns.
type CreateTable struct {
	Name    string
	Columns []catalog.Column
}

// DropTable removes a table from the catalog.
type DropTable struct {
	Name string
}

// Insert appends literal rows to a table.
type Insert struct {
	Table string
	Rows  [][]tuple.Value
}

// SeqScan reads every live tuple of a table in chain/slot order.
type SeqScan struct {
	Table string
}

// Filter forwards only the child tuples matching Pred.
type Filter struct {
	Child Node
	Pred  Expr
}

// Project selects and reorders columns of the child's output.
type Project struct {
	Child   Node
	Columns []string
}

// Delete tombstones every tuple produced by the child subtree.
type Delete struct {
	Child Node
}

// Assignment sets one column to a literal value.
type Assignment struct {
	Column string
	Value  tuple.Value
}

// Update rewrites every tuple produced by the child subtree with the
// given assignments applied.
type Update struct {
	Table       string
	Child       Node
	Assignments []Assignment
}

func (CreateTable) planNode() {}
func (DropTable) planNode()   {}
func (Insert) planNode()      {}
func (SeqScan) planNode()     {}
func (Filter) planNode()      {}
func (Project) planNode()     {}
func (Delete) planNode()      {}
func (Update) planNode()      {}
