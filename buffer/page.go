package buffer

import (
	"github.com/omondi/tembo/storage/disk"
)

// Page is a frame slot: a fixed position in the pool's frame array holding
// the payload of whichever page is currently resident. Metadata is mutated
// only while the pool latch is held.
type Page struct {
	frameId  int
	pageId   int64
	data     []byte
	pinCount int
	isDirty  bool
}

// PageID returns the id of the resident page, or disk.INVALID_PAGE_ID when
// the frame is free.
func (p *Page) PageID() int64 {
	return p.pageId
}

func (p *Page) PinCount() int {
	return p.pinCount
}

func (p *Page) IsDirty() bool {
	return p.isDirty
}

// Data returns the page payload. The slice stays valid while the caller holds
// a pin; concurrent access to the payload is the caller's concern.
func (p *Page) Data() []byte {
	return p.data
}

func (p *Page) reset() {
	p.pageId = disk.INVALID_PAGE_ID
	p.pinCount = 0
	p.isDirty = false
	clear(p.data)
}
