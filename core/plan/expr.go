package plan

import (
	"github.com/sushant-115/relicdb/core/tuple"
)

// CompareOp enumerates the comparison operators of the predicate
// language.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Expr is a predicate expression: a comparison of a column reference
// against a literal, or a boolean combination of such comparisons.
type Expr interface {
	exprNode()
}

// ColumnRef names a column of the input tuple.
type ColumnRef struct {
	Name string
}

// Literal is a constant operand.
type Literal struct {
	Value tuple.Value
}

// Compare applies op to its two operands.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

// And is true when both operands are true.
type And struct {
	Left  Expr
	Right Expr
}

// Or is true when either operand is true.
type Or struct {
	Left  Expr
	Right Expr
}

// Not negates its operand.
type Not struct {
	Expr Expr
}

func (ColumnRef) exprNode() {}
func (Literal) exprNode()   {}
func (Compare) exprNode()   {}
func (And) exprNode()       {}
func (Or) exprNode()        {}
func (Not) exprNode()       {}
