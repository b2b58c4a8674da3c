// Package heap is the table-level storage engine: it composes the
// buffer pool, the slotted page format, and the catalog into heap files
// — singly linked page chains appended at the logical level, scanned
// head to tail.
package heap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/core/catalog"
	"github.com/sushant-115/relicdb/core/storage/buffer"
	"github.com/sushant-115/relicdb/core/storage/page"
	"github.com/sushant-115/relicdb/core/tuple"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
)

var ErrTupleTooLarge = errors.New("tuple does not fit in an empty page")

// Engine is the storage engine. It borrows frame bytes only while
// holding a pin and never retains a reference past the matching unpin;
// all tuple payloads handed out are copies.
type Engine struct {
	pool    *buffer.Pool
	catalog *catalog.Catalog
	logger  *zap.Logger
	metrics *internaltelemetry.StorageMetrics
}

// NewEngine wires the storage engine to its collaborators. The catalog
// is passed explicitly so the engine stays testable in isolation.
func NewEngine(pool *buffer.Pool, cat *catalog.Catalog, logger *zap.Logger, metrics *internaltelemetry.StorageMetrics) *Engine {
	return &Engine{pool: pool, catalog: cat, logger: logger, metrics: metrics}
}

// CreateTable allocates and initializes the table's head page and
// registers the catalog entry.
func (e *Engine) CreateTable(name string, schema catalog.Schema) error {
	if e.catalog.Exists(name) {
		return fmt.Errorf("%w: %s", catalog.ErrDuplicateTable, name)
	}

	frame, err := e.pool.NewPage()
	if err != nil {
		return err
	}
	head := frame.ID()
	page.Init(frame.Data(), head)
	if err := e.pool.UnpinPage(head, true); err != nil {
		return err
	}

	if err := e.catalog.Register(name, schema, head); err != nil {
		return err
	}
	e.logger.Info("table created",
		zap.String("table", name),
		zap.Uint64("head_page", uint64(head)),
	)
	return nil
}

// Insert appends the encoded tuple to the table's page chain: the first
// page with enough free space takes it, and a full chain grows by one
// freshly allocated, linked page. Returns the RID of the slot written.
func (e *Engine) Insert(table string, payload []byte) (tuple.RID, error) {
	if len(payload) > page.MaxTupleSize {
		return tuple.RID{}, fmt.Errorf("%w: %d bytes, max %d", ErrTupleTooLarge, len(payload), page.MaxTupleSize)
	}

	info, err := e.catalog.Lookup(table)
	if err != nil {
		return tuple.RID{}, err
	}

	id := info.HeadPage
	for {
		frame, err := e.pool.FetchPage(id)
		if err != nil {
			return tuple.RID{}, err
		}

		slot, err := page.Insert(frame.Data(), payload)
		if err == nil {
			if uerr := e.pool.UnpinPage(id, true); uerr != nil {
				return tuple.RID{}, uerr
			}
			if e.metrics != nil {
				e.metrics.TuplesInsertedCounter.Add(context.Background(), 1)
			}
			return tuple.RID{PageID: id, Slot: slot}, nil
		}
		if !errors.Is(err, page.ErrPageFull) {
			e.pool.UnpinPage(id, false)
			return tuple.RID{}, err
		}

		// Page full: follow the chain, extending it at the tail.
		next := page.Next(frame.Data())
		if next != page.InvalidPageID {
			if uerr := e.pool.UnpinPage(id, false); uerr != nil {
				return tuple.RID{}, uerr
			}
			id = next
			continue
		}

		rid, err := e.extendChain(id, frame, payload)
		if err != nil {
			return tuple.RID{}, err
		}
		if e.metrics != nil {
			e.metrics.TuplesInsertedCounter.Add(context.Background(), 1)
		}
		return rid, nil
	}
}

// extendChain allocates a new tail page, links it from the current tail
// (still pinned by the caller), and inserts the payload there.
func (e *Engine) extendChain(tailID page.PageID, tail *buffer.Frame, payload []byte) (tuple.RID, error) {
	fresh, err := e.pool.NewPage()
	if err != nil {
		e.pool.UnpinPage(tailID, false)
		return tuple.RID{}, err
	}
	freshID := fresh.ID()
	page.Init(fresh.Data(), freshID)

	page.SetNext(tail.Data(), freshID)
	if err := e.pool.UnpinPage(tailID, true); err != nil {
		e.pool.UnpinPage(freshID, false)
		return tuple.RID{}, err
	}

	slot, err := page.Insert(fresh.Data(), payload)
	if err != nil {
		e.pool.UnpinPage(freshID, false)
		return tuple.RID{}, err
	}
	if err := e.pool.UnpinPage(freshID, true); err != nil {
		return tuple.RID{}, err
	}

	e.logger.Debug("page chain extended",
		zap.Uint64("tail_page", uint64(tailID)),
		zap.Uint64("new_page", uint64(freshID)),
	)
	return tuple.RID{PageID: freshID, Slot: slot}, nil
}

// Delete tombstones the tuple at rid. The slot stays allocated so other
// RIDs on the page remain valid; the space is not compacted.
func (e *Engine) Delete(rid tuple.RID) error {
	frame, err := e.pool.FetchPage(rid.PageID)
	if err != nil {
		return err
	}
	if err := page.Delete(frame.Data(), rid.Slot); err != nil {
		e.pool.UnpinPage(rid.PageID, false)
		return err
	}
	if err := e.pool.UnpinPage(rid.PageID, true); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.TuplesDeletedCounter.Add(context.Background(), 1)
	}
	return nil
}

// Scan returns a forward-only iterator over all live tuples of the
// table, in page-chain order and slot order within each page.
func (e *Engine) Scan(table string) (*Scanner, error) {
	info, err := e.catalog.Lookup(table)
	if err != nil {
		return nil, err
	}
	return &Scanner{
		pool:   e.pool,
		nextID: info.HeadPage,
	}, nil
}
