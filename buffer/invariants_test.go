package buffer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omondi/tembo/storage/disk"
)

// Drives a random mix of operations against a small pool and checks the
// structural invariants after every step: each frame is in exactly one of
// free list / pinned-resident / unpinned-resident, the replacer tracks
// exactly the unpinned residents, the page table and frame back-references
// agree, and pin counts balance the caller's pins.
func TestPoolInvariantsUnderRandomWorkload(t *testing.T) {
	const poolSize = 5
	const steps = 2000

	bufferMgr, _ := newTestPool(poolSize)
	rng := rand.New(rand.NewSource(1))

	pins := map[int64]int{}
	known := []int64{}

	randomKnown := func() (int64, bool) {
		if len(known) == 0 {
			return disk.INVALID_PAGE_ID, false
		}
		return known[rng.Intn(len(known))], true
	}

	for step := 0; step < steps; step++ {
		switch rng.Intn(10) {
		case 0, 1: // new page
			page, err := bufferMgr.NewPage()
			if err == nil {
				pins[page.PageID()]++
				known = append(known, page.PageID())
			}
		case 2, 3, 4: // fetch
			pageId, ok := randomKnown()
			if !ok {
				continue
			}
			if _, err := bufferMgr.FetchPage(pageId); err == nil {
				pins[pageId]++
			}
		case 5, 6, 7: // unpin
			pageId, ok := randomKnown()
			if !ok {
				continue
			}
			if bufferMgr.UnpinPage(pageId, rng.Intn(2) == 0) {
				pins[pageId]--
			}
		case 8: // flush
			pageId, ok := randomKnown()
			if !ok {
				continue
			}
			bufferMgr.FlushPage(pageId)
		case 9: // delete
			pageId, ok := randomKnown()
			if !ok {
				continue
			}
			if bufferMgr.DeletePage(pageId) {
				delete(pins, pageId)
				for i, id := range known {
					if id == pageId {
						known = append(known[:i], known[i+1:]...)
						break
					}
				}
			}
		}

		checkPoolInvariants(t, bufferMgr, pins)
		if t.Failed() {
			t.Fatalf("invariants violated at step %d", step)
		}
	}
}

func checkPoolInvariants(t *testing.T, b *BufferPoolManager, pins map[int64]int) {
	t.Helper()

	poolSize := len(b.pages)

	// every frame id in exactly one of free list, pinned-resident,
	// unpinned-resident
	seen := map[int]int{}
	for _, frameId := range b.freeList {
		seen[frameId]++
	}
	for _, frameId := range b.pageTable {
		seen[frameId]++
	}
	require.Len(t, seen, poolSize)
	for frameId, count := range seen {
		require.Equal(t, 1, count, "frame %d appears %d times", frameId, count)
	}

	// the replacer holds exactly the resident frames with zero pins
	require.LessOrEqual(t, b.replacer.Size(), poolSize)
	for pageId, frameId := range b.pageTable {
		page := b.pages[frameId]
		_, tracked := b.replacer.entries[frameId]

		require.Equal(t, page.pinCount == 0, tracked,
			"frame %d pin=%d tracked=%v", frameId, page.pinCount, tracked)

		// table and back-reference agree
		require.Equal(t, pageId, page.pageId)
		require.NotEqual(t, disk.INVALID_PAGE_ID, pageId)

		// pins balance the driver's successful fetch/new minus unpins
		require.Equal(t, pins[pageId], page.pinCount, "page %d", pageId)
	}

	// free frames carry no page and no pins
	for _, frameId := range b.freeList {
		page := b.pages[frameId]
		require.Equal(t, disk.INVALID_PAGE_ID, page.pageId)
		require.Equal(t, 0, page.pinCount)
		require.False(t, page.isDirty)

		_, tracked := b.replacer.entries[frameId]
		require.False(t, tracked)
	}
}
