package buffer

import (
	"sync"

	"github.com/omondi/tembo/recovery"
	"github.com/omondi/tembo/storage/disk"
	"github.com/omondi/tembo/util"
)

func NewBufferPoolManager(size int, replacer *lruReplacer, diskManager disk.Manager, logManager *recovery.LogManager) *BufferPoolManager {
	pages := make([]*Page, size)
	freeList := make([]int, size)

	for i := range size {
		pages[i] = &Page{
			frameId: i,
			pageId:  disk.INVALID_PAGE_ID,
			data:    make([]byte, disk.PAGE_SIZE),
		}
		freeList[i] = i
	}

	return &BufferPoolManager{
		pages:       pages,
		pageTable:   make(map[int64]int),
		freeList:    freeList,
		replacer:    replacer,
		diskManager: diskManager,
		logManager:  logManager,
	}
}

// FetchPage makes pageId resident, pins its frame and returns it. Resident
// pages are served without disk io; otherwise a frame is taken from the free
// list or evicted from the replacer and the page is read from disk.
func (b *BufferPoolManager) FetchPage(pageId int64) (*Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pageId == disk.INVALID_PAGE_ID {
		return nil, util.NewInvalidPageError()
	}

	if frameId, ok := b.pageTable[pageId]; ok {
		page := b.pages[frameId]
		page.pinCount++
		b.replacer.Pin(frameId)

		return page, nil
	}

	frameId, err := b.acquireFrame()
	if err != nil {
		return nil, err
	}

	data, err := b.diskManager.ReadPage(pageId)
	if err != nil {
		b.freeList = append(b.freeList, frameId)
		return nil, util.NewDiskError(err)
	}

	page := b.pages[frameId]
	copy(page.data, data)
	page.pageId = pageId
	page.pinCount = 1
	page.isDirty = false
	b.pageTable[pageId] = frameId
	b.replacer.Pin(frameId)

	return page, nil
}

// NewPage allocates a fresh page id from the disk manager and returns its
// zeroed, pinned frame. The frame is acquired first so that a full pool never
// leaks an allocated id.
func (b *BufferPoolManager) NewPage() (*Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameId, err := b.acquireFrame()
	if err != nil {
		return nil, err
	}

	pageId, err := b.diskManager.AllocatePage()
	if err != nil {
		b.freeList = append(b.freeList, frameId)
		return nil, util.NewDiskError(err)
	}

	page := b.pages[frameId]
	page.pageId = pageId
	page.pinCount = 1
	page.isDirty = false
	b.pageTable[pageId] = frameId
	b.replacer.Pin(frameId)

	return page, nil
}

// UnpinPage releases one pin on pageId. Returns false when the page is not
// resident or its pin count is already zero.
func (b *BufferPoolManager) UnpinPage(pageId int64, isDirty bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameId, ok := b.pageTable[pageId]
	if !ok {
		return false
	}

	page := b.pages[frameId]
	if isDirty {
		page.isDirty = true
	}

	if page.pinCount == 0 {
		return false
	}

	page.pinCount--
	if page.pinCount == 0 {
		b.replacer.Unpin(frameId)
	}

	return true
}

// FlushPage forces the resident contents of pageId to disk. Pin state is not
// altered.
func (b *BufferPoolManager) FlushPage(pageId int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pageId == disk.INVALID_PAGE_ID {
		return false
	}

	frameId, ok := b.pageTable[pageId]
	if !ok {
		return false
	}

	page := b.pages[frameId]
	if err := b.diskManager.WritePage(pageId, page.data); err != nil {
		return false
	}
	page.isDirty = false

	return true
}

// FlushAllPages writes every resident page to disk.
func (b *BufferPoolManager) FlushAllPages() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for pageId, frameId := range b.pageTable {
		if err := b.diskManager.WritePage(pageId, b.pages[frameId].data); err != nil {
			continue
		}
		b.pages[frameId].isDirty = false
	}
}

// DeletePage drops pageId from the pool and deallocates it on disk. A page
// that is not resident counts as deleted. Returns false while any pin is
// outstanding.
func (b *BufferPoolManager) DeletePage(pageId int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameId, ok := b.pageTable[pageId]
	if !ok {
		b.diskManager.DeallocatePage(pageId)
		return true
	}

	page := b.pages[frameId]
	if page.pinCount != 0 {
		return false
	}

	// a deleted page's contents are never needed again, discard without
	// write-back
	b.replacer.Pin(frameId)
	delete(b.pageTable, pageId)
	page.reset()
	b.freeList = append(b.freeList, frameId)
	b.diskManager.DeallocatePage(pageId)

	return true
}

// LogManager returns the recovery handle the pool was built with. The pool's
// own paths never consult it; layers above use it to order log flushes
// against page write-back.
func (b *BufferPoolManager) LogManager() *recovery.LogManager {
	return b.logManager
}

// acquireFrame detaches a frame from whatever page it held, taking the free
// list first and falling back to the replacer's victim. The returned frame is
// reset and belongs to the caller alone.
func (b *BufferPoolManager) acquireFrame() (int, error) {
	if len(b.freeList) > 0 {
		frameId := b.freeList[0]
		b.freeList = b.freeList[1:]

		return frameId, nil
	}

	frameId, ok := b.replacer.Victim()
	if !ok {
		return INVALID_FRAME_ID, util.NewPoolExhaustedError()
	}

	victim := b.pages[frameId]
	if victim.isDirty {
		if err := b.diskManager.WritePage(victim.pageId, victim.data); err != nil {
			// nothing has changed yet, hand the victim back
			b.replacer.Unpin(frameId)
			return INVALID_FRAME_ID, util.NewDiskError(err)
		}
	}

	delete(b.pageTable, victim.pageId)
	victim.reset()

	return frameId, nil
}

type BufferPoolManager struct {
	mu          sync.Mutex
	pages       []*Page
	pageTable   map[int64]int
	freeList    []int
	replacer    *lruReplacer
	diskManager disk.Manager
	logManager  *recovery.LogManager
}
