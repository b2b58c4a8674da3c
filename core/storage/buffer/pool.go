// Package buffer implements the page cache sitting between the storage
// engine and the disk manager: a fixed set of frames keyed by page id,
// with pin counting and a configurable eviction policy.
package buffer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sushant-115/relicdb/core/storage/disk"
	"github.com/sushant-115/relicdb/core/storage/page"
	internaltelemetry "github.com/sushant-115/relicdb/internal/telemetry"
)

var (
	ErrPoolExhausted = errors.New("buffer pool is full and no frame can be evicted")
	ErrPageNotPinned = errors.New("page is not pinned")
	ErrPageNotCached = errors.New("page is not resident in the buffer pool")
)

// Pool caches pages in a fixed number of frames. Every FetchPage or
// NewPage returns a pinned frame and must be matched by exactly one
// UnpinPage; an unbalanced unpin surfaces as ErrPageNotPinned. When the
// pool is full and every frame is pinned, admission fails with
// ErrPoolExhausted rather than blocking — execution is single-threaded,
// so there is nobody else to wait for.
type Pool struct {
	mu        sync.Mutex
	disk      *disk.Manager
	frames    []*Frame
	pageTable map[page.PageID]int // resident page id -> frame index
	freeList  []int               // frame indexes never yet used
	replacer  Replacer
	arrivals  uint64 // monotonically increasing load sequence

	logger  *zap.Logger
	metrics *internaltelemetry.StorageMetrics
}

// NewPool creates a pool with the given number of frames and eviction
// policy.
func NewPool(size int, replacer Replacer, dm *disk.Manager, logger *zap.Logger, metrics *internaltelemetry.StorageMetrics) *Pool {
	p := &Pool{
		disk:      dm,
		frames:    make([]*Frame, size),
		pageTable: make(map[page.PageID]int, size),
		freeList:  make([]int, 0, size),
		replacer:  replacer,
		logger:    logger,
		metrics:   metrics,
	}
	for i := range p.frames {
		p.frames[i] = newFrame()
		p.freeList = append(p.freeList, i)
	}
	return p
}

// FetchPage returns a pinned frame holding the given page, loading it
// from disk on a cache miss (evicting a victim first if the pool is
// full).
func (p *Pool) FetchPage(id page.PageID) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[id]; ok {
		frame := p.frames[idx]
		frame.pinCount++
		p.replacer.Forget(idx)
		if p.metrics != nil {
			p.metrics.PoolHitsCounter.Add(context.Background(), 1)
		}
		return frame, nil
	}

	idx, err := p.freeFrame()
	if err != nil {
		return nil, err
	}
	frame := p.frames[idx]
	if err := p.disk.ReadPage(id, frame.data); err != nil {
		// Put the frame back so a failed read does not leak capacity.
		p.freeList = append(p.freeList, idx)
		return nil, err
	}

	p.arrivals++
	frame.id = id
	frame.pinCount = 1
	frame.dirty = false
	frame.arrival = p.arrivals
	p.pageTable[id] = idx

	if p.metrics != nil {
		p.metrics.PoolMissesCounter.Add(context.Background(), 1)
	}
	p.logger.Debug("page loaded into buffer pool",
		zap.Uint64("page_id", uint64(id)),
		zap.Int("frame", idx),
	)
	return frame, nil
}

// NewPage allocates a fresh page on disk and returns it as a pinned,
// zeroed frame.
func (p *Pool) NewPage() (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, err := p.freeFrame()
	if err != nil {
		return nil, err
	}

	id, err := p.disk.AllocatePage()
	if err != nil {
		p.freeList = append(p.freeList, idx)
		return nil, err
	}

	frame := p.frames[idx]
	frame.reset()
	p.arrivals++
	frame.id = id
	frame.pinCount = 1
	frame.arrival = p.arrivals
	p.pageTable[id] = idx

	p.logger.Debug("new page installed in buffer pool",
		zap.Uint64("page_id", uint64(id)),
		zap.Int("frame", idx),
	)
	return frame, nil
}

// UnpinPage drops one pin on the page and ORs in the dirty flag. When
// the pin count reaches zero the frame becomes evictable.
func (p *Pool) UnpinPage(id page.PageID, dirty bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[id]
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotCached, id)
	}
	frame := p.frames[idx]
	if frame.pinCount == 0 {
		return fmt.Errorf("%w: page %d", ErrPageNotPinned, id)
	}
	frame.pinCount--
	if dirty {
		frame.dirty = true
	}
	if frame.pinCount == 0 {
		p.replacer.Remember(idx, frame.arrival)
	}
	return nil
}

// FlushPage writes the page to disk if it is dirty and clears the dirty
// flag. A no-op for clean resident pages.
func (p *Pool) FlushPage(id page.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[id]
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotCached, id)
	}
	return p.flushFrame(p.frames[idx])
}

// FlushAll writes every dirty resident page to disk.
func (p *Pool) FlushAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, idx := range p.pageTable {
		if err := p.flushFrame(p.frames[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) flushFrame(frame *Frame) error {
	if !frame.dirty {
		return nil
	}
	if err := p.disk.WritePage(frame.id, frame.data); err != nil {
		return err
	}
	frame.dirty = false
	if p.metrics != nil {
		p.metrics.FlushesCounter.Add(context.Background(), 1)
	}
	return nil
}

// freeFrame returns the index of a frame ready to receive a new page,
// evicting an unpinned victim if no frame is free. Caller holds p.mu.
func (p *Pool) freeFrame() (int, error) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return idx, nil
	}

	idx, ok := p.replacer.Victim()
	if !ok {
		return 0, fmt.Errorf("%w: %d frames, all pinned", ErrPoolExhausted, len(p.frames))
	}
	victim := p.frames[idx]
	if err := p.flushFrame(victim); err != nil {
		// The victim is already out of the replacer; re-register it so
		// a transient write failure does not strand the frame.
		p.replacer.Remember(idx, victim.arrival)
		return 0, err
	}
	delete(p.pageTable, victim.id)
	if p.metrics != nil {
		p.metrics.EvictionsCounter.Add(context.Background(), 1)
	}
	p.logger.Debug("evicted page",
		zap.Uint64("page_id", uint64(victim.id)),
		zap.Int("frame", idx),
	)
	victim.reset()
	return idx, nil
}

// Resident reports whether the page currently occupies a frame.
func (p *Pool) Resident(id page.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pageTable[id]
	return ok
}

// Size returns the pool capacity in frames.
func (p *Pool) Size() int { return len(p.frames) }
