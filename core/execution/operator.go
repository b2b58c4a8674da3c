// Package execution implements the pull-based operator tree and the
// engine that builds it from a logical plan and drives it to produce a
// statement's result set.
package execution

import (
	"errors"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/tuple"
)

var (
	ErrOperatorNotOpen = errors.New("operator is not open")
	ErrOperatorClosed  = errors.New("operator is closed")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNoRowID         = errors.New("input rows carry no row id")
)

// Row is one tuple flowing between operators, along with the schema
// needed to interpret it and, for rows originating in a table scan, the
// RID consumed by Delete and Update.
type Row struct {
	Values []tuple.Value
	Schema catalog.Schema
	RID    tuple.RID
	HasRID bool
}

// Operator is the uniform pull contract shared by every node of the
// tree. Lifecycle: Open once, Next until it returns (nil, nil), Close
// once. Close is idempotent, releases all resources the operator holds
// (pins included, even mid-scan), and is always called — on error paths
// too. Next before Open or after Close is a usage error.
type Operator interface {
	Open() error
	Next() (*Row, error)
	Close() error
}

type opState int

const (
	stateCreated opState = iota
	stateOpened
	stateClosed
)

// checkNext validates the state machine for a Next call.
func (s opState) checkNext() error {
	switch s {
	case stateCreated:
		return ErrOperatorNotOpen
	case stateClosed:
		return ErrOperatorClosed
	default:
		return nil
	}
}
