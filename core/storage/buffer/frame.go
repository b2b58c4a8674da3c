package buffer

import (
	"github.com/sushant-115/relicdb/core/storage/page"
)

// Frame is one buffer pool cache line: a page's bytes plus the metadata
// the pool needs to manage residency. The pool exclusively owns frame
// contents; callers borrow Data only while holding a pin and must not
// retain a reference past the matching unpin.
type Frame struct {
	id       page.PageID
	data     []byte
	pinCount uint32
	dirty    bool
	// arrival is the pool-wide sequence number assigned when the page
	// was loaded into this frame. The FIFO policy orders victims by it.
	arrival uint64
}

func newFrame() *Frame {
	return &Frame{
		id:   page.InvalidPageID,
		data: make([]byte, page.PageSize),
	}
}

// ID returns the id of the page currently resident in this frame.
func (f *Frame) ID() page.PageID { return f.id }

// Data returns the frame's page bytes. Valid only while pinned.
func (f *Frame) Data() []byte { return f.data }

// PinCount returns the current pin count.
func (f *Frame) PinCount() uint32 { return f.pinCount }

// IsDirty reports whether the frame has unflushed modifications.
func (f *Frame) IsDirty() bool { return f.dirty }

func (f *Frame) reset() {
	f.id = page.InvalidPageID
	f.pinCount = 0
	f.dirty = false
	f.arrival = 0
	for i := range f.data {
		f.data[i] = 0
	}
}
