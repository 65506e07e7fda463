package disk

import (
	"fmt"
	"os"
	"sync"
)

const (
	PAGE_SIZE             = 4096
	INVALID_PAGE_ID int64 = -1

	DEFAULT_PAGE_CAPACITY = 16
)

// Manager is the capability the buffer pool consumes: page id allocation and
// fixed-size page io against stable storage.
type Manager interface {
	AllocatePage() (int64, error)
	DeallocatePage(pageId int64)
	ReadPage(pageId int64) ([]byte, error)
	WritePage(pageId int64, data []byte) error
}

func NewManager(file *os.File) *fileManager {
	dm := &fileManager{
		dbFile:      file,
		offsets:     map[int64]int64{},
		freeSlots:   []int64{},
		freePageIds: []int64{},
	}

	if info, err := file.Stat(); err == nil {
		dm.pageCapacity = int(info.Size() / PAGE_SIZE)
	}

	return dm
}

// AllocatePage hands out a page id distinct from every outstanding one,
// recycling deallocated ids before advancing the counter.
func (dm *fileManager) AllocatePage() (int64, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	var pageId int64
	if len(dm.freePageIds) > 0 {
		pageId = dm.freePageIds[0]
		dm.freePageIds = dm.freePageIds[1:]
	} else {
		pageId = dm.nextPageId
		dm.nextPageId++
	}

	if _, err := dm.slotFor(pageId); err != nil {
		return INVALID_PAGE_ID, err
	}

	return pageId, nil
}

// DeallocatePage releases the id and its file slot for reuse. Deallocating an
// id that is already free is a no-op.
func (dm *fileManager) DeallocatePage(pageId int64) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if offset, ok := dm.offsets[pageId]; ok {
		dm.freeSlots = append(dm.freeSlots, offset)
		dm.freePageIds = append(dm.freePageIds, pageId)
		delete(dm.offsets, pageId)
	}
}

func (dm *fileManager) ReadPage(pageId int64) ([]byte, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, err := dm.slotFor(pageId)
	if err != nil {
		return nil, err
	}

	// fresh slots live inside the truncated region and recycled slots are
	// cleared on reuse, so a page that was never written reads back as zeroes
	buf := make([]byte, PAGE_SIZE)
	if _, err := dm.dbFile.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("error reading page %d at offset %d: %v", pageId, offset, err)
	}

	return buf, nil
}

func (dm *fileManager) WritePage(pageId int64, data []byte) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset, err := dm.slotFor(pageId)
	if err != nil {
		return err
	}

	if _, err := dm.dbFile.WriteAt(data, offset); err != nil {
		return fmt.Errorf("error writing page %d at offset %d: %v", pageId, offset, err)
	}

	return nil
}

// slotFor returns the file offset backing pageId, assigning one on first use.
func (dm *fileManager) slotFor(pageId int64) (int64, error) {
	if offset, ok := dm.offsets[pageId]; ok {
		return offset, nil
	}

	if len(dm.freeSlots) > 0 {
		offset := dm.freeSlots[0]
		// a recycled slot still holds the deallocated page's bytes
		if _, err := dm.dbFile.WriteAt(make([]byte, PAGE_SIZE), offset); err != nil {
			return 0, fmt.Errorf("error clearing slot at offset %d: %v", offset, err)
		}
		dm.freeSlots = dm.freeSlots[1:]
		dm.offsets[pageId] = offset

		return offset, nil
	}

	if dm.nextOffset/PAGE_SIZE >= int64(dm.pageCapacity) {
		if dm.pageCapacity == 0 {
			dm.pageCapacity = DEFAULT_PAGE_CAPACITY
		} else {
			dm.pageCapacity *= 2
		}
		if err := os.Truncate(dm.dbFile.Name(), int64(dm.pageCapacity)*PAGE_SIZE); err != nil {
			return 0, fmt.Errorf("error resizing db file: %v", err)
		}
	}

	offset := dm.nextOffset
	dm.nextOffset += PAGE_SIZE
	dm.offsets[pageId] = offset

	return offset, nil
}

type fileManager struct {
	mu           sync.Mutex
	dbFile       *os.File
	offsets      map[int64]int64
	freeSlots    []int64
	freePageIds  []int64
	nextPageId   int64
	nextOffset   int64
	pageCapacity int
}
