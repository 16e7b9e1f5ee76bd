package notifystore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/storefront/internal/model"
)

var errBoom = errors.New("boom")

func note(id int64, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.TypeOrderAccepted,
		Title:     "n",
		CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		IsRead:    read,
	}
}

func ids(list []model.Notification) []int64 {
	out := make([]int64, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestStore_FetchAllReplacesWholesale(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(3, false), note(2, true), note(1, false)}
	s := New(api)

	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, api.all, s.All())

	api.all = []model.Notification{note(4, false)}
	require.NoError(t, s.FetchAll(context.Background()))
	assert.Equal(t, []int64{4}, ids(s.All()))
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestStore_FetchAllFailureKeepsData(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))

	api.allErr = errBoom
	err := s.FetchAll(context.Background())
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, []int64{1}, ids(s.All()))
	st := s.Status()
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, "boom", st.Reason())
}

func TestStore_FetchUnreadReplacesWholesale(t *testing.T) {
	api := newFakeAPI()
	api.unread = []model.Notification{note(5, false), note(4, false)}
	s := New(api)

	require.NoError(t, s.FetchUnread(context.Background()))
	assert.Equal(t, api.unread, s.Unread())
	assert.Equal(t, 2, s.UnreadCount())

	api.unread = nil
	require.NoError(t, s.FetchUnread(context.Background()))
	assert.Empty(t, s.Unread())
}

func TestStore_FetchUnreadFailureKeepsData(t *testing.T) {
	api := newFakeAPI()
	api.unread = []model.Notification{note(5, false)}
	s := New(api)
	require.NoError(t, s.FetchUnread(context.Background()))

	api.unreadErr = errBoom
	require.Error(t, s.FetchUnread(context.Background()))
	assert.Equal(t, []int64{5}, ids(s.Unread()))
	assert.Equal(t, StateError, s.Status().State)
}

func TestStore_LoadingWhilePendingAndNoEarlyMutation(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	api.gateAll = make(chan struct{})
	s := New(api)

	done := make(chan error, 1)
	go func() { done <- s.FetchAll(context.Background()) }()

	require.Eventually(t, func() bool {
		return s.Status().State == StateLoading
	}, time.Second, time.Millisecond)
	assert.Empty(t, s.All())

	close(api.gateAll)
	require.NoError(t, <-done)
	assert.Equal(t, []int64{1}, ids(s.All()))
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestStore_MarkRead(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(3, false), note(2, false), note(1, true)}
	api.unread = []model.Notification{note(3, false), note(2, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchUnread(context.Background()))

	require.NoError(t, s.MarkRead(context.Background(), 2))

	all := s.All()
	assert.Equal(t, []int64{3, 2, 1}, ids(all), "order is preserved")
	assert.False(t, all[0].IsRead)
	assert.True(t, all[1].IsRead)
	assert.Equal(t, []int64{3}, ids(s.Unread()))

	t.Run("second call is a no-op", func(t *testing.T) {
		require.NoError(t, s.MarkRead(context.Background(), 2))
		assert.Equal(t, []int64{3}, ids(s.Unread()))
		assert.True(t, s.All()[1].IsRead)
	})

	t.Run("unknown id is not an error", func(t *testing.T) {
		require.NoError(t, s.MarkRead(context.Background(), 99))
		assert.Equal(t, []int64{3}, ids(s.Unread()))
	})
}

func TestStore_MarkReadFailureLeavesViews(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	api.unread = []model.Notification{note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchUnread(context.Background()))

	api.markErr = errBoom
	require.ErrorIs(t, s.MarkRead(context.Background(), 1), errBoom)

	assert.False(t, s.All()[0].IsRead)
	assert.Equal(t, []int64{1}, ids(s.Unread()))
	assert.Equal(t, StateError, s.Status().State)
}

func TestStore_MarkAllRead(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(3, false), note(2, true), note(1, false)}
	api.unread = []model.Notification{note(3, false), note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchUnread(context.Background()))

	require.NoError(t, s.MarkAllRead(context.Background()))

	for _, n := range s.All() {
		assert.True(t, n.IsRead, "id %d", n.ID)
	}
	assert.Empty(t, s.Unread())
	assert.Equal(t, 0, s.UnreadCount())
	// No refetch is needed to reflect the change.
	assert.Equal(t, 1, api.count("all"))
	assert.Equal(t, 1, api.count("unread"))
}

func TestStore_MarkAllReadFailureLeavesViews(t *testing.T) {
	api := newFakeAPI()
	api.unread = []model.Notification{note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchUnread(context.Background()))

	api.markAllErr = errBoom
	require.Error(t, s.MarkAllRead(context.Background()))
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_AddLocal(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	api.unread = []model.Notification{note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchUnread(context.Background()))

	s.AddLocal(note(7, false))
	assert.Equal(t, []int64{7, 1}, ids(s.All()))
	assert.Equal(t, []int64{7, 1}, ids(s.Unread()))

	t.Run("duplicates are kept by default", func(t *testing.T) {
		s.AddLocal(note(7, false))
		assert.Equal(t, []int64{7, 7, 1}, ids(s.All()))
		assert.Equal(t, []int64{7, 7, 1}, ids(s.Unread()))
	})
}

func TestStore_AddLocalDedupeByID(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(2, true), note(1, false)}
	api.unread = []model.Notification{note(1, false)}
	s := New(api, WithLocalInsert(DedupeByID))
	require.NoError(t, s.FetchAll(context.Background()))
	require.NoError(t, s.FetchUnread(context.Background()))

	s.AddLocal(note(1, false))
	assert.Equal(t, []int64{2, 1}, ids(s.All()))
	assert.Equal(t, []int64{1}, ids(s.Unread()))

	// Known in all but not in unread: only unread gains it.
	s.AddLocal(note(2, false))
	assert.Equal(t, []int64{2, 1}, ids(s.All()))
	assert.Equal(t, []int64{2, 1}, ids(s.Unread()))

	s.AddLocal(note(9, false))
	assert.Equal(t, []int64{9, 2, 1}, ids(s.All()))
}

// startUnread launches FetchUnread and returns the parked API call and the
// channel the fetch result arrives on.
func startUnread(t *testing.T, s *Store, api *fakeAPI) (*pendingCall, <-chan error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.FetchUnread(context.Background()) }()
	select {
	case call := <-api.gateUnread:
		return call, done
	case <-time.After(time.Second):
		t.Fatal("FetchUnread did not reach the API")
		return nil, nil
	}
}

func TestStore_OverlappingUnread_LastResponseWins(t *testing.T) {
	api := newFakeAPI()
	api.gateUnread = make(chan *pendingCall)
	s := New(api, WithUnreadOrdering(LastResponseWins))

	older, olderDone := startUnread(t, s, api)
	newer, newerDone := startUnread(t, s, api)

	newer.reply <- unreadReply{items: []model.Notification{note(2, false)}}
	require.NoError(t, <-newerDone)
	assert.Equal(t, []int64{2}, ids(s.Unread()))

	// The older request resolves last and overwrites the fresher data.
	older.reply <- unreadReply{items: []model.Notification{note(2, false), note(1, false)}}
	require.NoError(t, <-olderDone)
	assert.Equal(t, []int64{2, 1}, ids(s.Unread()))
}

func TestStore_OverlappingUnread_LatestRequestWins(t *testing.T) {
	api := newFakeAPI()
	api.gateUnread = make(chan *pendingCall)
	s := New(api, WithUnreadOrdering(LatestRequestWins))

	older, olderDone := startUnread(t, s, api)
	newer, newerDone := startUnread(t, s, api)

	newer.reply <- unreadReply{items: []model.Notification{note(2, false)}}
	require.NoError(t, <-newerDone)

	older.reply <- unreadReply{items: []model.Notification{note(2, false), note(1, false)}}
	require.NoError(t, <-olderDone, "a discarded response is not an error")
	assert.Equal(t, []int64{2}, ids(s.Unread()))
	assert.Equal(t, StateIdle, s.Status().State)
}

func TestStore_LatestRequestWins_InOrderResponsesApply(t *testing.T) {
	api := newFakeAPI()
	api.gateUnread = make(chan *pendingCall)
	s := New(api, WithUnreadOrdering(LatestRequestWins))

	first, firstDone := startUnread(t, s, api)
	second, secondDone := startUnread(t, s, api)

	first.reply <- unreadReply{items: []model.Notification{note(1, false)}}
	require.NoError(t, <-firstDone)
	assert.Equal(t, []int64{1}, ids(s.Unread()))

	second.reply <- unreadReply{items: []model.Notification{note(2, false), note(1, false)}}
	require.NoError(t, <-secondDone)
	assert.Equal(t, []int64{2, 1}, ids(s.Unread()))
}

func TestStore_StaleUnreadAfterMarkRead(t *testing.T) {
	tests := []struct {
		name     string
		ordering UnreadOrdering
		want     []int64
	}{
		{name: "last response wins resurrects", ordering: LastResponseWins, want: []int64{2, 1}},
		{name: "latest request wins discards", ordering: LatestRequestWins, want: []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			s := New(api, WithUnreadOrdering(tt.ordering))
			api.unread = []model.Notification{note(2, false), note(1, false)}
			require.NoError(t, s.FetchUnread(context.Background()))

			api.gateUnread = make(chan *pendingCall)
			inFlight, done := startUnread(t, s, api)

			require.NoError(t, s.MarkRead(context.Background(), 2))
			assert.Equal(t, []int64{1}, ids(s.Unread()))

			// Response captured before the mark-read was confirmed.
			inFlight.reply <- unreadReply{items: []model.Notification{note(2, false), note(1, false)}}
			require.NoError(t, <-done)
			assert.Equal(t, tt.want, ids(s.Unread()))
		})
	}
}

func TestStore_ViewsAreCopies(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	s := New(api)
	require.NoError(t, s.FetchAll(context.Background()))

	got := s.All()
	got[0].IsRead = true
	assert.False(t, s.All()[0].IsRead)
}

func TestStore_SubscribeDeliversLatestSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.unread = []model.Notification{note(2, false), note(1, false)}
	s := New(api)
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.FetchUnread(context.Background()))

	snap := <-ch
	assert.Equal(t, 2, snap.UnreadCount())
	assert.Equal(t, StateIdle, snap.Status.State)

	select {
	case extra := <-ch:
		t.Fatalf("expected only the newest snapshot, got %+v", extra)
	default:
	}
}

func TestStore_CloseStopsApplying(t *testing.T) {
	api := newFakeAPI()
	api.all = []model.Notification{note(1, false)}
	api.gateAll = make(chan struct{})
	s := New(api)
	ch, _ := s.Subscribe()

	done := make(chan error, 1)
	go func() { done <- s.FetchAll(context.Background()) }()
	require.Eventually(t, func() bool { return api.count("all") == 1 }, time.Second, time.Millisecond)

	s.Close()
	close(api.gateAll)
	require.NoError(t, <-done)
	assert.Empty(t, s.All())

	for range ch {
		// Drain until closed.
	}

	s.AddLocal(note(5, false))
	assert.Empty(t, s.Unread())

	closedCh, cancel := s.Subscribe()
	cancel()
	_, ok := <-closedCh
	assert.False(t, ok)
}
