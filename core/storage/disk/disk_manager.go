// Package disk owns the backing file and performs all raw page I/O.
// No other component touches the file handle; everything above works in
// whole pages addressed by PageID.
package disk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/core/storage/page"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
)

var (
	ErrIO            = errors.New("i/o error")
	ErrInvalidPageID = errors.New("page id out of allocated range")
)

// Manager performs fixed-size page I/O against a single flat file:
// page k lives at byte offset k*page.PageSize, ids dense from 0.
type Manager struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	numPages uint64

	logger  *zap.Logger
	metrics *internaltelemetry.StorageMetrics
}

// Open opens an existing database file or creates a new empty one.
// The file size must be a whole number of pages.
func Open(filePath string, logger *zap.Logger, metrics *internaltelemetry.StorageMetrics) (*Manager, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening file %s: %v", ErrIO, filePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: stating file %s: %v", ErrIO, filePath, err)
	}
	if info.Size()%page.PageSize != 0 {
		file.Close()
		return nil, fmt.Errorf("file %s size %d is not a multiple of page size %d", filePath, info.Size(), page.PageSize)
	}

	dm := &Manager{
		filePath: filePath,
		file:     file,
		numPages: uint64(info.Size() / page.PageSize),
		logger:   logger,
		metrics:  metrics,
	}
	logger.Info("disk manager opened",
		zap.String("file", filePath),
		zap.Uint64("pages", dm.numPages),
	)
	return dm, nil
}

// AllocatePage extends the file by one zero-filled page and returns its
// id. IDs are handed out densely and are never reused.
func (dm *Manager) AllocatePage() (page.PageID, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	id := page.PageID(dm.numPages)
	zeroes := make([]byte, page.PageSize)
	if _, err := dm.file.WriteAt(zeroes, int64(id)*page.PageSize); err != nil {
		return page.InvalidPageID, fmt.Errorf("%w: allocating page %d: %v", ErrIO, id, err)
	}
	dm.numPages++

	dm.logger.Debug("allocated page", zap.Uint64("page_id", uint64(id)))
	return id, nil
}

// ReadPage reads the whole page id into buf, which must be exactly one
// page long.
func (dm *Manager) ReadPage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := dm.checkBounds(id, buf); err != nil {
		return err
	}
	if _, err := dm.file.ReadAt(buf, int64(id)*page.PageSize); err != nil {
		return fmt.Errorf("%w: reading page %d: %v", ErrIO, id, err)
	}
	if dm.metrics != nil {
		dm.metrics.DiskReadsCounter.Add(context.Background(), 1)
	}
	return nil
}

// WritePage writes the whole page id from buf, which must be exactly one
// page long.
func (dm *Manager) WritePage(id page.PageID, buf []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := dm.checkBounds(id, buf); err != nil {
		return err
	}
	if _, err := dm.file.WriteAt(buf, int64(id)*page.PageSize); err != nil {
		return fmt.Errorf("%w: writing page %d: %v", ErrIO, id, err)
	}
	if dm.metrics != nil {
		dm.metrics.DiskWritesCounter.Add(context.Background(), 1)
	}
	return nil
}

func (dm *Manager) checkBounds(id page.PageID, buf []byte) error {
	if uint64(id) >= dm.numPages {
		return fmt.Errorf("%w: page %d, file has %d pages", ErrInvalidPageID, id, dm.numPages)
	}
	if len(buf) != page.PageSize {
		return fmt.Errorf("buffer must be exactly %d bytes, got %d", page.PageSize, len(buf))
	}
	return nil
}

// NumPages returns the number of pages currently allocated in the file.
func (dm *Manager) NumPages() uint64 {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.numPages
}

// Close syncs pending writes and closes the backing file.
func (dm *Manager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.file == nil {
		return nil
	}
	if err := dm.file.Sync(); err != nil {
		dm.file.Close()
		dm.file = nil
		return fmt.Errorf("%w: syncing file %s: %v", ErrIO, dm.filePath, err)
	}
	err := dm.file.Close()
	dm.file = nil
	if err != nil {
		return fmt.Errorf("%w: closing file %s: %v", ErrIO, dm.filePath, err)
	}
	dm.logger.Info("disk manager closed", zap.String("file", dm.filePath))
	return nil
}
