// Package push receives notifications from the storefront websocket feed
// and injects them into the local store outside the polling cycle.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nhle/storefront/internal/model"
)

// EventNotification is the envelope type carrying a new notification.
const EventNotification = "notification"

// Event is one message on the feed.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Injector receives pushed notifications. *notifystore.Store satisfies it.
type Injector interface {
	AddLocal(n model.Notification)
}

// TokenSource supplies the bearer token for the handshake.
type TokenSource interface {
	Token() string
}

// Subscriber keeps a websocket connection open and forwards every
// notification event to the injector, reconnecting with exponential
// backoff until its context ends.
type Subscriber struct {
	url        string
	tokens     TokenSource
	sink       Injector
	dialer     *websocket.Dialer
	logger     *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// Option configures a Subscriber.
type Option func(*Subscriber)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Subscriber) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBackoff sets the reconnect backoff bounds.
func WithBackoff(lo, hi time.Duration) Option {
	return func(s *Subscriber) {
		s.minBackoff = lo
		s.maxBackoff = hi
	}
}

// NewSubscriber creates a subscriber for the feed at url.
func NewSubscriber(url string, tokens TokenSource, sink Injector, opts ...Option) *Subscriber {
	s := &Subscriber{
		url:    url,
		tokens: tokens,
		sink:   sink,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger:     zap.NewNop(),
		minBackoff: time.Second,
		maxBackoff: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run connects and consumes the feed until ctx is cancelled. Without a
// session token it waits and retries rather than connecting anonymously.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := s.minBackoff
	for {
		err := s.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			backoff = s.minBackoff
		} else {
			s.logger.Debug("push feed disconnected",
				zap.Error(err), zap.Duration("retry_in", backoff))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err != nil {
			backoff *= 2
			if backoff > s.maxBackoff {
				backoff = s.maxBackoff
			}
		}
	}
}

var errNoToken = errors.New("no session token")

// consume runs one connection until it drops. A clean server close
// returns nil.
func (s *Subscriber) consume(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		return errNoToken
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dialing push feed: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dialing push feed: %w", err)
	}
	defer conn.Close()
	s.logger.Info("push feed connected", zap.String("url", s.url))

	// Unblock ReadJSON when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	})
	defer stop()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading push event: %w", err)
		}
		s.handle(ev)
	}
}

// handle forwards notification events and ignores everything else.
func (s *Subscriber) handle(ev Event) {
	if ev.Type != EventNotification {
		return
	}
	var n model.Notification
	if err := json.Unmarshal(ev.Data, &n); err != nil {
		s.logger.Warn("dropping malformed push notification", zap.Error(err))
		return
	}
	s.sink.AddLocal(n)
}
