package notifystore

import (
	"context"
	"sync"

	"github.com/nhle/storefront/internal/model"
)

// pendingCall is a ListUnread call parked until the test replies.
type pendingCall struct {
	reply chan unreadReply
}

type unreadReply struct {
	items []model.Notification
	err   error
}

// fakeAPI is a scriptable API. When gateUnread is set, every ListUnread
// call is announced on gateUnread and blocks until answered.
type fakeAPI struct {
	mu         sync.Mutex
	all        []model.Notification
	unread     []model.Notification
	allErr     error
	unreadErr  error
	markErr    error
	markAllErr error
	calls      map[string]int
	gateUnread chan *pendingCall
	gateAll    chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: make(map[string]int)}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeAPI) ListAll(ctx context.Context) ([]model.Notification, error) {
	f.record("all")
	if f.gateAll != nil {
		<-f.gateAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]model.Notification(nil), f.all...), nil
}

func (f *fakeAPI) ListUnread(ctx context.Context) ([]model.Notification, error) {
	f.record("unread")
	if f.gateUnread != nil {
		call := &pendingCall{reply: make(chan unreadReply, 1)}
		f.gateUnread <- call
		r := <-call.reply
		return r.items, r.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unreadErr != nil {
		return nil, f.unreadErr
	}
	return append([]model.Notification(nil), f.unread...), nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	f.record("mark")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return nil, f.markErr
	}
	return &model.Notification{ID: id, IsRead: true}, nil
}

func (f *fakeAPI) MarkAllRead(ctx context.Context) error {
	f.record("mark_all")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.markAllErr
}
