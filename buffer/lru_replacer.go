package buffer

import (
	"container/list"
	"sync"
)

const INVALID_FRAME_ID = -1

// NewLRUReplacer tracks the frames currently eligible for eviction, ordered
// from most recently unpinned at the front to the eviction candidate at the
// back. It never holds more than numPages entries.
func NewLRUReplacer(numPages int) *lruReplacer {
	return &lruReplacer{
		capacity: numPages,
		order:    list.New(),
		entries:  map[int]*list.Element{},
	}
}

// Victim removes and returns the frame that has gone longest without being
// pinned. Returns false when no frame is eligible.
func (lru *lruReplacer) Victim() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	back := lru.order.Back()
	if back == nil {
		return INVALID_FRAME_ID, false
	}

	frameId := back.Value.(int)
	lru.order.Remove(back)
	delete(lru.entries, frameId)

	return frameId, true
}

// Pin removes frameId from the eligible set; untracked ids are a no-op.
func (lru *lruReplacer) Pin(frameId int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if elem, ok := lru.entries[frameId]; ok {
		lru.order.Remove(elem)
		delete(lru.entries, frameId)
	}
}

// Unpin inserts frameId at the most recently used end. A frame that is
// already tracked keeps its position.
func (lru *lruReplacer) Unpin(frameId int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if _, ok := lru.entries[frameId]; ok {
		return
	}

	// capacity is structural, the pool never pushes past it
	for lru.order.Len() >= lru.capacity {
		back := lru.order.Back()
		lru.order.Remove(back)
		delete(lru.entries, back.Value.(int))
	}

	lru.entries[frameId] = lru.order.PushFront(frameId)
}

func (lru *lruReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	return lru.order.Len()
}

type lruReplacer struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[int]*list.Element
}
