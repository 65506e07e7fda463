package disk

// Scheduler funnels page io through a background worker goroutine. It wraps a
// Manager and satisfies Manager itself, so the buffer pool can be built over
// the raw manager or the scheduler interchangeably.
func NewScheduler(manager Manager) *Scheduler {
	ds := &Scheduler{
		reqCh:   make(chan DiskReq, 100),
		manager: manager,
	}

	go ds.worker()
	return ds
}

func NewRequest(pageId int64, data []byte, isWrite bool) DiskReq {
	return DiskReq{
		PageId: pageId,
		Data:   data,
		Write:  isWrite,
		RespCh: make(chan DiskResp, 1),
	}
}

// Schedule enqueues the request and returns immediately; the response channel
// receives exactly one DiskResp once the io completes.
func (ds *Scheduler) Schedule(req DiskReq) <-chan DiskResp {
	ds.reqCh <- req
	return req.RespCh
}

// Shutdown drains outstanding requests and stops the worker.
func (ds *Scheduler) Shutdown() {
	close(ds.reqCh)
}

func (ds *Scheduler) worker() {
	for req := range ds.reqCh {
		if req.Write {
			err := ds.manager.WritePage(req.PageId, req.Data)
			req.RespCh <- DiskResp{Success: err == nil, Err: err}
		} else {
			data, err := ds.manager.ReadPage(req.PageId)
			req.RespCh <- DiskResp{Success: err == nil, Data: data, Err: err}
		}
	}
}

func (ds *Scheduler) AllocatePage() (int64, error) {
	return ds.manager.AllocatePage()
}

func (ds *Scheduler) DeallocatePage(pageId int64) {
	ds.manager.DeallocatePage(pageId)
}

func (ds *Scheduler) ReadPage(pageId int64) ([]byte, error) {
	resp := <-ds.Schedule(NewRequest(pageId, nil, false))
	if !resp.Success {
		return nil, resp.Err
	}

	return resp.Data, nil
}

func (ds *Scheduler) WritePage(pageId int64, data []byte) error {
	resp := <-ds.Schedule(NewRequest(pageId, data, true))
	if !resp.Success {
		return resp.Err
	}

	return nil
}

type Scheduler struct {
	reqCh   chan DiskReq
	manager Manager
}

type DiskReq struct {
	PageId int64
	Data   []byte
	Write  bool
	RespCh chan DiskResp
}

type DiskResp struct {
	Success bool
	Data    []byte
	Err     error
}
