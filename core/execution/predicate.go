package execution

import (
	"fmt"

	"github.com/sushant-115/relicdb/core/plan"
	"github.com/sushant-115/relicdb/core/tuple"
)

// evalPredicate evaluates a boolean expression against one row.
func evalPredicate(e plan.Expr, row *Row) (bool, error) {
	switch expr := e.(type) {
	case plan.Compare:
		left, err := evalOperand(expr.Left, row)
		if err != nil {
			return false, err
		}
		right, err := evalOperand(expr.Right, row)
		if err != nil {
			return false, err
		}
		cmp, err := left.Compare(right)
		if err != nil {
			return false, err
		}
		switch expr.Op {
		case plan.Eq:
			return cmp == 0, nil
		case plan.Ne:
			return cmp != 0, nil
		case plan.Lt:
			return cmp < 0, nil
		case plan.Le:
			return cmp <= 0, nil
		case plan.Gt:
			return cmp > 0, nil
		case plan.Ge:
			return cmp >= 0, nil
		default:
			return false, fmt.Errorf("unsupported comparison operator %v", expr.Op)
		}
	case plan.And:
		left, err := evalPredicate(expr.Left, row)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return evalPredicate(expr.Right, row)
	case plan.Or:
		left, err := evalPredicate(expr.Left, row)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return evalPredicate(expr.Right, row)
	case plan.Not:
		inner, err := evalPredicate(expr.Expr, row)
		if err != nil {
			return false, err
		}
		return !inner, nil
	default:
		return false, fmt.Errorf("expression %T is not a boolean predicate", e)
	}
}

// evalOperand evaluates a value-level operand of a comparison.
func evalOperand(e plan.Expr, row *Row) (tuple.Value, error) {
	switch expr := e.(type) {
	case plan.Literal:
		return expr.Value, nil
	case plan.ColumnRef:
		idx, ok := row.Schema.ColumnIndex(expr.Name)
		if !ok {
			return tuple.Value{}, fmt.Errorf("%w: %s", ErrUnknownColumn, expr.Name)
		}
		return row.Values[idx], nil
	default:
		return tuple.Value{}, fmt.Errorf("expression %T is not a comparison operand", e)
	}
}
