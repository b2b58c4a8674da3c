// Package page defines the on-disk slotted page format and the
// operations that manipulate one page's raw bytes. Callers are expected
// to hold a buffer pool pin on the bytes for the duration of every call.
//
// Page binary layout (all values little-endian):
//
//	Offset  Size  Field
//	─────────────────────────────────────────────────────
//	0       8     PageID          uint64
//	8       8     NextPageID      uint64 — InvalidPageID ends the chain
//	16      2     SlotCount       uint16 — total slots (live + tombstone)
//	18      2     FreeSpaceOffset uint16 — start of the tuple data region
//	─────────────────────────────────────────────────────
//	20            HeaderSize
//
//	[ header 20B ][ slot dir → ][ free space ][ ← tuple data ]
//	0            20             ^             ^              4096
//	                            end of dir    FreeSpaceOffset
//
// The slot directory grows forward from HeaderSize; tuple data grows
// backward from PageSize. A slot entry is 4 bytes:
// [ Offset uint16 ][ Length uint16 ], with Length 0 marking a tombstone.
// Slots are never removed or reused, so a slot index stays valid for the
// lifetime of the page.
package page

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// PageSize is the fixed size of every page, the unit of disk I/O and of
// buffer pool caching.
const PageSize = 4096

// PageID identifies one fixed-size slot in the backing file. IDs are
// dense and monotonically increasing from 0; page k lives at byte
// offset k*PageSize.
type PageID uint64

// InvalidPageID is the reserved "no page" sentinel. IDs are allocated
// densely from 0, so the sentinel sits at the top of the range.
const InvalidPageID PageID = ^PageID(0)

const (
	offPageID    = 0
	offNextPage  = 8
	offSlotCount = 16
	offFreeSpace = 18

	// HeaderSize is the fixed page header size in bytes.
	HeaderSize = 20

	// SlotSize is the byte size of one slot directory entry.
	SlotSize = 4

	// MaxTupleSize is the largest payload that fits in an empty page
	// together with its slot directory entry.
	MaxTupleSize = PageSize - HeaderSize - SlotSize
)

var (
	ErrPageFull    = errors.New("not enough free space in page")
	ErrInvalidSlot = errors.New("invalid slot index")
)

// Init stamps an empty page header into b. All non-header bytes are left
// untouched; a freshly allocated page arrives zeroed from the disk
// manager and a recycled frame is overwritten as tuples are written.
func Init(b []byte, id PageID) {
	binary.LittleEndian.PutUint64(b[offPageID:], uint64(id))
	binary.LittleEndian.PutUint64(b[offNextPage:], uint64(InvalidPageID))
	binary.LittleEndian.PutUint16(b[offSlotCount:], 0)
	binary.LittleEndian.PutUint16(b[offFreeSpace:], PageSize)
}

// ID returns the page id stored in the header.
func ID(b []byte) PageID {
	return PageID(binary.LittleEndian.Uint64(b[offPageID:]))
}

// Next returns the id of the next page in the chain, or InvalidPageID at
// the end of the chain.
func Next(b []byte) PageID {
	return PageID(binary.LittleEndian.Uint64(b[offNextPage:]))
}

// SetNext links the page to its successor in the chain.
func SetNext(b []byte, id PageID) {
	binary.LittleEndian.PutUint64(b[offNextPage:], uint64(id))
}

// SlotCount returns the number of slot directory entries, tombstones
// included.
func SlotCount(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b[offSlotCount:])
}

func freeSpaceOffset(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b[offFreeSpace:])
}

// FreeSpace returns the byte count of the gap between the end of the
// slot directory and the start of the tuple data region.
func FreeSpace(b []byte) int {
	dirEnd := HeaderSize + int(SlotCount(b))*SlotSize
	return int(freeSpaceOffset(b)) - dirEnd
}

func slotAt(b []byte, slot uint16) (offset, length uint16) {
	base := HeaderSize + int(slot)*SlotSize
	return binary.LittleEndian.Uint16(b[base:]), binary.LittleEndian.Uint16(b[base+2:])
}

func writeSlot(b []byte, slot uint16, offset, length uint16) {
	base := HeaderSize + int(slot)*SlotSize
	binary.LittleEndian.PutUint16(b[base:], offset)
	binary.LittleEndian.PutUint16(b[base+2:], length)
}

// Insert writes payload into the tuple data region and appends a slot
// directory entry pointing at it. Returns ErrPageFull when the payload
// plus its slot entry does not fit in the remaining free space.
func Insert(b []byte, payload []byte) (uint16, error) {
	if len(payload) == 0 {
		return 0, fmt.Errorf("empty payload")
	}
	need := len(payload) + SlotSize
	if free := FreeSpace(b); need > free {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrPageFull, need, free)
	}

	newOffset := freeSpaceOffset(b) - uint16(len(payload))
	copy(b[newOffset:], payload)

	slot := SlotCount(b)
	writeSlot(b, slot, newOffset, uint16(len(payload)))
	binary.LittleEndian.PutUint16(b[offSlotCount:], slot+1)
	binary.LittleEndian.PutUint16(b[offFreeSpace:], newOffset)
	return slot, nil
}

// Read returns a copy of the payload stored in the given slot. The copy
// keeps the caller decoupled from the frame bytes once the pin is
// released. Tombstoned and out-of-range slots fail with ErrInvalidSlot.
func Read(b []byte, slot uint16) ([]byte, error) {
	if slot >= SlotCount(b) {
		return nil, fmt.Errorf("%w: slot %d, page has %d", ErrInvalidSlot, slot, SlotCount(b))
	}
	offset, length := slotAt(b, slot)
	if length == 0 {
		return nil, fmt.Errorf("%w: slot %d is deleted", ErrInvalidSlot, slot)
	}
	payload := make([]byte, length)
	copy(payload, b[offset:offset+length])
	return payload, nil
}

// Delete tombstones the given slot by zeroing its length. The slot entry
// itself is retained so the indices of later slots stay stable; the
// payload bytes are not reclaimed.
func Delete(b []byte, slot uint16) error {
	if slot >= SlotCount(b) {
		return fmt.Errorf("%w: slot %d, page has %d", ErrInvalidSlot, slot, SlotCount(b))
	}
	offset, length := slotAt(b, slot)
	if length == 0 {
		return fmt.Errorf("%w: slot %d already deleted", ErrInvalidSlot, slot)
	}
	writeSlot(b, slot, offset, 0)
	return nil
}

// IsLive reports whether the slot holds a non-tombstoned tuple.
func IsLive(b []byte, slot uint16) bool {
	if slot >= SlotCount(b) {
		return false
	}
	_, length := slotAt(b, slot)
	return length != 0
}
