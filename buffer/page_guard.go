package buffer

// Page guards are scoped pin holders: fetching through a guard pins the page,
// Drop releases the pin exactly once. Write guards mark the page dirty on
// release.

func (b *BufferPoolManager) FetchPageRead(pageId int64) (*ReadPageGuard, error) {
	page, err := b.FetchPage(pageId)
	if err != nil {
		return nil, err
	}

	return &ReadPageGuard{PageGuard{page: page, bpm: b}}, nil
}

func (b *BufferPoolManager) FetchPageWrite(pageId int64) (*WritePageGuard, error) {
	page, err := b.FetchPage(pageId)
	if err != nil {
		return nil, err
	}

	return &WritePageGuard{PageGuard{page: page, bpm: b}}, nil
}

func (pg *ReadPageGuard) Drop() {
	if pg == nil {
		return
	}
	pg.drop(false)
}

func (pg *ReadPageGuard) GetData() []byte {
	return pg.page.Data()
}

func (pg *WritePageGuard) Drop() {
	if pg == nil {
		return
	}
	pg.drop(true)
}

func (pg *WritePageGuard) GetDataMut() []byte {
	return pg.page.Data()
}

func (pg *PageGuard) PageID() int64 {
	return pg.page.PageID()
}

func (pg *PageGuard) drop(isDirty bool) {
	if pg == nil || pg.dropped {
		return
	}

	pg.dropped = true
	pg.bpm.UnpinPage(pg.page.PageID(), isDirty)
}

type PageGuard struct {
	page    *Page
	bpm     *BufferPoolManager
	dropped bool
}

type ReadPageGuard struct {
	PageGuard
}

type WritePageGuard struct {
	PageGuard
}
