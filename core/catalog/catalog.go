package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/core/storage/page"
)

var (
	ErrDuplicateTable = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table not found")
)

// Catalog is the in-memory table registry. Table names are matched
// case-insensitively. The catalog is an explicitly passed dependency of
// the storage and execution engines, never a process-wide singleton.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*TableInfo // upper-cased name -> entry
	logger *zap.Logger
}

// New creates an empty catalog.
func New(logger *zap.Logger) *Catalog {
	return &Catalog{
		tables: make(map[string]*TableInfo),
		logger: logger,
	}
}

// Register adds a table entry. The stored entry keeps the name as given;
// lookups are case-insensitive.
func (c *Catalog) Register(name string, schema Schema, head page.PageID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToUpper(name)
	if _, ok := c.tables[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, name)
	}
	c.tables[key] = &TableInfo{Name: name, Schema: schema, HeadPage: head}
	c.logger.Info("table registered",
		zap.String("table", name),
		zap.Int("columns", len(schema)),
		zap.Uint64("head_page", uint64(head)),
	)
	return nil
}

// Lookup returns the entry for the named table.
func (c *Catalog) Lookup(name string) (*TableInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, ok := c.tables[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return info, nil
}

// Exists reports whether the named table is registered.
func (c *Catalog) Exists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.tables[strings.ToUpper(name)]
	return ok
}

// Drop removes the table entry. The table's pages are not reclaimed;
// free space management is out of scope, as with tombstone compaction.
func (c *Catalog) Drop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToUpper(name)
	if _, ok := c.tables[key]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	delete(c.tables, key)
	c.logger.Info("table dropped", zap.String("table", name))
	return nil
}

// Tables returns the registered table names.
func (c *Catalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tables))
	for _, info := range c.tables {
		names = append(names, info.Name)
	}
	return names
}
