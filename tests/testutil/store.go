package testutil

import (
	"context"
	"sync"
)

// StoreCall is one operation observed by RecordingStore.
type StoreCall struct {
	Op string
	ID int64
}

// RecordingStore records the store operations a view triggers without
// touching any data. Err, when set, is returned from every call.
type RecordingStore struct {
	Err error

	mu    sync.Mutex
	calls []StoreCall
}

// FetchAll records a "fetch_all" call.
func (s *RecordingStore) FetchAll(context.Context) error { return s.record("fetch_all", 0) }

// FetchUnread records a "fetch_unread" call.
func (s *RecordingStore) FetchUnread(context.Context) error { return s.record("fetch_unread", 0) }

// MarkRead records a "mark_read" call for id.
func (s *RecordingStore) MarkRead(_ context.Context, id int64) error {
	return s.record("mark_read", id)
}

// MarkAllRead records a "mark_all_read" call.
func (s *RecordingStore) MarkAllRead(context.Context) error { return s.record("mark_all_read", 0) }

// Calls returns the recorded calls in order.
func (s *RecordingStore) Calls() []StoreCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StoreCall(nil), s.calls...)
}

// Count returns how many calls of op were recorded.
func (s *RecordingStore) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *RecordingStore) record(op string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, StoreCall{Op: op, ID: id})
	return s.Err
}
