package heap

import (
	"github.com/sushant-115/relicdb/core/storage/buffer"
	"github.com/sushant-115/relicdb/core/storage/page"
	"github.com/sushant-115/relicdb/core/tuple"
)

// Scanner walks a table's page chain head to tail, yielding each live
// tuple once. It is forward-only and not restartable. The current page
// stays pinned between Next calls and is unpinned (not dirty) before the
// scan advances to the next page; Close releases whatever pin is still
// held, so it is safe to abandon a scan midway.
type Scanner struct {
	pool   *buffer.Pool
	nextID page.PageID

	frame  *buffer.Frame // currently pinned page, nil between pages
	slot   uint16        // next slot to inspect on the current page
	closed bool
}

// Next returns the RID and payload copy of the next live tuple, or
// (zero, nil, nil) when the scan is exhausted.
func (s *Scanner) Next() (tuple.RID, []byte, error) {
	if s.closed {
		return tuple.RID{}, nil, nil
	}
	for {
		if s.frame == nil {
			if s.nextID == page.InvalidPageID {
				return tuple.RID{}, nil, nil
			}
			frame, err := s.pool.FetchPage(s.nextID)
			if err != nil {
				return tuple.RID{}, nil, err
			}
			s.frame = frame
			s.slot = 0
			s.nextID = page.Next(frame.Data())
		}

		data := s.frame.Data()
		for s.slot < page.SlotCount(data) {
			slot := s.slot
			s.slot++
			if !page.IsLive(data, slot) {
				continue
			}
			payload, err := page.Read(data, slot)
			if err != nil {
				s.releaseFrame()
				return tuple.RID{}, nil, err
			}
			return tuple.RID{PageID: s.frame.ID(), Slot: slot}, payload, nil
		}

		// Page exhausted: drop the pin before moving on.
		if err := s.releaseFrame(); err != nil {
			return tuple.RID{}, nil, err
		}
	}
}

func (s *Scanner) releaseFrame() error {
	if s.frame == nil {
		return nil
	}
	id := s.frame.ID()
	s.frame = nil
	return s.pool.UnpinPage(id, false)
}

// Close releases any pin still held. Idempotent; the scanner yields no
// further tuples afterward.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.releaseFrame()
}
