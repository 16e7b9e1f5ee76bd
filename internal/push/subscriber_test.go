package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/storefront/internal/model"
	"github.com/nhle/storefront/tests/testutil"
)

type recordingSink struct {
	mu  sync.Mutex
	got []model.Notification
}

func (r *recordingSink) AddLocal(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
}

func (r *recordingSink) received() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.got...)
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newFeed(t *testing.T, connects *atomic.Int32, messages ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connects.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+testutil.TestToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubscriber_ForwardsNotifications(t *testing.T) {
	var connects atomic.Int32
	srv := newFeed(t, &connects,
		`{"type":"ping"}`,
		`{"type":"notification","data":{"id":11,"notification_type":"new_order","title":"New order","is_read":false}}`,
		`{"type":"notification","data":"not an object"}`,
		`{"type":"notification","data":{"id":12,"notification_type":"order_ready","title":"Ready"}}`,
	)

	sink := &recordingSink{}
	sub := NewSubscriber(wsURL(srv), testutil.StaticToken(testutil.TestToken), sink,
		WithBackoff(5*time.Millisecond, 20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sink.received()) == 2 }, 2*time.Second, 5*time.Millisecond)
	got := sink.received()
	assert.Equal(t, int64(11), got[0].ID)
	assert.Equal(t, model.TypeNewOrder, got[0].Type)
	assert.Equal(t, int64(12), got[1].ID)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, int32(1), connects.Load())
}

func TestSubscriber_WithoutTokenDoesNotConnect(t *testing.T) {
	var connects atomic.Int32
	srv := newFeed(t, &connects)

	sub := NewSubscriber(wsURL(srv), testutil.StaticToken(""), &recordingSink{},
		WithBackoff(time.Millisecond, 5*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := sub.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(0), connects.Load())
}

func TestSubscriber_ReconnectsAfterRejection(t *testing.T) {
	var connects atomic.Int32
	srv := newFeed(t, &connects)

	sub := NewSubscriber(wsURL(srv), testutil.StaticToken("wrong"), &recordingSink{},
		WithBackoff(time.Millisecond, 4*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = sub.Run(ctx)

	assert.GreaterOrEqual(t, connects.Load(), int32(2))
}
