package buffer

import (
	"container/list"
)

// Replacer tracks the set of evictable (pin count zero) frames and picks
// the next victim according to its policy. The pool calls Remember when a
// frame's pin count drops to zero, Forget when it is pinned again or
// evicted, and Victim when it needs a frame to reclaim.
type Replacer interface {
	// Remember marks the frame as evictable. arrival is the sequence
	// number assigned when the frame's page was loaded; only the FIFO
	// policy uses it.
	Remember(frame int, arrival uint64)
	// Forget removes the frame from the evictable set. A no-op if the
	// frame is not tracked.
	Forget(frame int)
	// Victim removes and returns the next frame to evict, or false when
	// no frame is evictable.
	Victim() (int, bool)
	// Len returns the number of evictable frames.
	Len() int
}

// lruReplacer evicts the frame least recently fetched or unpinned.
// Re-remembering a frame refreshes its recency.
type lruReplacer struct {
	order    *list.List            // front = least recently used
	elements map[int]*list.Element // frame index -> list element
}

// NewLRUReplacer returns a replacer with least-recently-used policy.
func NewLRUReplacer() Replacer {
	return &lruReplacer{
		order:    list.New(),
		elements: make(map[int]*list.Element),
	}
}

func (r *lruReplacer) Remember(frame int, _ uint64) {
	if elem, ok := r.elements[frame]; ok {
		r.order.MoveToBack(elem)
		return
	}
	r.elements[frame] = r.order.PushBack(frame)
}

func (r *lruReplacer) Forget(frame int) {
	if elem, ok := r.elements[frame]; ok {
		r.order.Remove(elem)
		delete(r.elements, frame)
	}
}

func (r *lruReplacer) Victim() (int, bool) {
	front := r.order.Front()
	if front == nil {
		return 0, false
	}
	frame := front.Value.(int)
	r.order.Remove(front)
	delete(r.elements, frame)
	return frame, true
}

func (r *lruReplacer) Len() int { return r.order.Len() }

// fifoReplacer evicts the frame whose page has resided longest,
// regardless of how recently it was accessed. Frames are ordered by
// their arrival sequence; a frame that was pinned and later unpinned
// re-enters the queue at its original position.
type fifoReplacer struct {
	order    *list.List            // front = oldest arrival
	elements map[int]*list.Element // frame index -> list element
	arrivals map[int]uint64
}

// NewFIFOReplacer returns a replacer with first-in-first-out policy.
func NewFIFOReplacer() Replacer {
	return &fifoReplacer{
		order:    list.New(),
		elements: make(map[int]*list.Element),
		arrivals: make(map[int]uint64),
	}
}

func (r *fifoReplacer) Remember(frame int, arrival uint64) {
	if _, ok := r.elements[frame]; ok {
		return
	}
	r.arrivals[frame] = arrival

	// Insert keeping the list sorted by arrival. Appending is the common
	// case since arrivals are handed out monotonically; walking backward
	// handles a frame re-entering after an unpin.
	for elem := r.order.Back(); elem != nil; elem = elem.Prev() {
		if r.arrivals[elem.Value.(int)] < arrival {
			r.elements[frame] = r.order.InsertAfter(frame, elem)
			return
		}
	}
	r.elements[frame] = r.order.PushFront(frame)
}

func (r *fifoReplacer) Forget(frame int) {
	if elem, ok := r.elements[frame]; ok {
		r.order.Remove(elem)
		delete(r.elements, frame)
		delete(r.arrivals, frame)
	}
}

func (r *fifoReplacer) Victim() (int, bool) {
	front := r.order.Front()
	if front == nil {
		return 0, false
	}
	frame := front.Value.(int)
	r.order.Remove(front)
	delete(r.elements, frame)
	delete(r.arrivals, frame)
	return frame, true
}

func (r *fifoReplacer) Len() int { return r.order.Len() }
