// Package notifystore is the session-scoped cache of the viewer's
// notifications. It keeps two independently fetched views, the full history
// and the unread set, and applies user mutations to both once the API has
// confirmed them.
package notifystore

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/storefront/internal/model"
)

// API is the subset of the notification API the store drives.
type API interface {
	ListAll(ctx context.Context) ([]model.Notification, error)
	ListUnread(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context) error
}

// UnreadOrdering decides which of several overlapping FetchUnread
// responses ends up in the unread view.
type UnreadOrdering int

const (
	// LastResponseWins applies every response as it resolves, so the one
	// that resolves last is kept even if it was requested first.
	LastResponseWins UnreadOrdering = iota

	// LatestRequestWins drops responses older than what the unread view
	// already reflects: a fetch issued before a newer fetch, or before a
	// confirmed mutation, is discarded.
	LatestRequestWins
)

// LocalInsert decides how AddLocal treats ids that are already cached.
type LocalInsert int

const (
	// AllowDuplicates prepends unconditionally.
	AllowDuplicates LocalInsert = iota

	// DedupeByID skips the insertion into any view already holding the id.
	DedupeByID
)

// Option configures a Store.
type Option func(*Store)

// WithUnreadOrdering selects the resolution rule for overlapping unread
// fetches. The default is LastResponseWins.
func WithUnreadOrdering(o UnreadOrdering) Option {
	return func(s *Store) { s.ordering = o }
}

// WithLocalInsert selects the AddLocal duplicate policy. The default is
// AllowDuplicates.
func WithLocalInsert(p LocalInsert) Option {
	return func(s *Store) { s.localInsert = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds the all and unread views plus the status of the most recent
// operation. Views are only modified when an API call completes; nothing is
// changed while a call is pending. Every method is safe for concurrent use.
type Store struct {
	api         API
	ordering    UnreadOrdering
	localInsert LocalInsert
	logger      *zap.Logger

	mu     sync.Mutex
	all    []model.Notification
	unread []model.Notification
	status Status
	closed bool

	// unreadIssued numbers FetchUnread requests; unreadApplied is the
	// generation the unread view currently reflects.
	unreadIssued  uint64
	unreadApplied uint64

	subs   map[int]chan Snapshot
	nextID int
}

// New creates an empty store backed by api.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		logger: zap.NewNop(),
		subs:   make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll replaces the all view with the API's full history. On failure
// the view is left as it was and the status records the error.
func (s *Store) FetchAll(ctx context.Context) error {
	s.begin()

	items, err := s.api.ListAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.fail("fetch all", err)
		return err
	}
	s.all = items
	s.status = Status{State: StateIdle}
	s.publish()
	return nil
}

// FetchUnread replaces the unread view with the API's unread set. Calls may
// overlap; see UnreadOrdering for which response is kept.
func (s *Store) FetchUnread(ctx context.Context) error {
	s.mu.Lock()
	s.unreadIssued++
	seq := s.unreadIssued
	s.loading()
	s.mu.Unlock()

	items, err := s.api.ListUnread(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.fail("fetch unread", err)
		return err
	}

	s.status = Status{State: StateIdle}
	if s.ordering == LatestRequestWins && seq < s.unreadApplied {
		s.logger.Debug("discarding stale unread response",
			zap.Uint64("seq", seq), zap.Uint64("applied", s.unreadApplied))
		s.publish()
		return nil
	}
	s.unread = items
	s.unreadApplied = seq
	s.publish()
	return nil
}

// MarkRead marks the notification read on the server and, once confirmed,
// flags it read in the all view and drops it from the unread view. An id
// missing from either view is not an error.
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	_, err := s.api.MarkRead(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.fail("mark read", err)
		return err
	}

	for i := range s.all {
		if s.all[i].ID == id {
			s.all[i].IsRead = true
		}
	}
	s.unread = slices.DeleteFunc(s.unread, func(n model.Notification) bool {
		return n.ID == id
	})
	s.bumpUnread()
	s.status = Status{State: StateIdle}
	s.publish()
	return nil
}

// MarkAllRead marks everything read on the server and, once confirmed,
// flags every cached record read and empties the unread view.
func (s *Store) MarkAllRead(ctx context.Context) error {
	err := s.api.MarkAllRead(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.fail("mark all read", err)
		return err
	}

	for i := range s.all {
		s.all[i].IsRead = true
	}
	s.unread = nil
	s.bumpUnread()
	s.status = Status{State: StateIdle}
	s.publish()
	return nil
}

// AddLocal prepends a notification received outside the fetch cycle to
// both views.
func (s *Store) AddLocal(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if s.localInsert != DedupeByID || !containsID(s.all, n.ID) {
		s.all = slices.Insert(s.all, 0, n)
	}
	if s.localInsert != DedupeByID || !containsID(s.unread, n.ID) {
		s.unread = slices.Insert(s.unread, 0, n)
	}
	s.bumpUnread()
	s.publish()
}

// All returns a copy of the all view, newest first.
func (s *Store) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// Unread returns a copy of the unread view, newest first.
func (s *Store) Unread() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.unread)
}

// UnreadCount returns the exact number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unread)
}

// Status returns the status of the most recent operation.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a consistent copy of both views and the status.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe returns a channel that receives a Snapshot after every change,
// and a cancel func. Only the newest snapshot is buffered, so a slow reader
// skips intermediate states rather than falling behind.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close ends the store's lifetime. Calls completing afterwards return
// their result without touching the store, and subscriptions are closed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// begin marks the store loading and publishes the change.
func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading()
}

// loading must be called with mu held.
func (s *Store) loading() {
	if s.closed {
		return
	}
	s.status = Status{State: StateLoading}
	s.publish()
}

// fail must be called with mu held.
func (s *Store) fail(op string, err error) {
	s.logger.Warn("notification operation failed", zap.String("op", op), zap.Error(err))
	s.status = Status{State: StateError, Err: err}
	s.publish()
}

// bumpUnread records a confirmed local change to the unread view so
// in-flight fetches issued before it are treated as stale. Must be called
// with mu held.
func (s *Store) bumpUnread() {
	s.unreadIssued++
	s.unreadApplied = s.unreadIssued
}

// snapshot must be called with mu held.
func (s *Store) snapshot() Snapshot {
	return Snapshot{
		All:    slices.Clone(s.all),
		Unread: slices.Clone(s.unread),
		Status: s.status,
	}
}

// publish must be called with mu held.
func (s *Store) publish() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshot()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func containsID(list []model.Notification, id int64) bool {
	return slices.ContainsFunc(list, func(n model.Notification) bool {
		return n.ID == id
	})
}
