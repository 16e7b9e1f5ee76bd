package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DefaultInterval is how often the unread set is refreshed.
const DefaultInterval = 30 * time.Second

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// UnreadFetcher refreshes the unread set. *notifystore.Store satisfies it.
type UnreadFetcher interface {
	FetchUnread(ctx context.Context) error
}

// AuthSource reports the current authentication state and announces
// changes. *session.Session satisfies it.
type AuthSource interface {
	Authenticated() bool
	Subscribe() (<-chan bool, func())
}

// PollResultMsg is a tea.Msg sent when a poll completes.
type PollResultMsg struct {
	Error error
	At    time.Time
}

// Poller refreshes the unread set while the viewer is authenticated: once
// immediately on becoming authenticated, then every interval. Losing
// authentication or calling Stop cancels the timer.
type Poller struct {
	fetcher  UnreadFetcher
	auth     AuthSource
	interval time.Duration
	logger   *zap.Logger
	resultCh chan PollResultMsg

	mu      gosync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	active  bool
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a stopped Poller.
func New(f UnreadFetcher, auth AuthSource, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  f,
		auth:     auth,
		interval: DefaultInterval,
		logger:   zap.NewNop(),
		resultCh: make(chan PollResultMsg, 16),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins watching the auth state and returns a tea.Cmd that waits
// for the first poll result. Starting a running poller returns nil.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	changes, unsubscribe := p.auth.Subscribe()
	go p.run(changes, unsubscribe, p.stopCh, p.doneCh)

	return p.waitForResult()
}

// Stop cancels the timer and waits for the watcher to exit. Once Stop
// returns no further fetches are issued; a fetch already in flight is
// left to finish on its own.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done
}

// Active reports whether the timer is currently armed.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// run owns the ticker. It arms it on authentication and disarms it on
// de-authentication, stop, or when the auth source goes away.
func (p *Poller) run(
	changes <-chan bool,
	unsubscribe func(),
	stopCh <-chan struct{},
	doneCh chan<- struct{},
) {
	defer close(doneCh)
	defer unsubscribe()

	var ticker *time.Ticker
	var tick <-chan time.Time

	arm := func() {
		if ticker != nil {
			return
		}
		p.setActive(true)
		p.logger.Debug("unread polling started", zap.Duration("interval", p.interval))
		p.dispatch()
		ticker = time.NewTicker(p.interval)
		tick = ticker.C
	}
	disarm := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker, tick = nil, nil
		p.setActive(false)
		p.logger.Debug("unread polling stopped")
	}
	defer disarm()

	if p.auth.Authenticated() {
		arm()
	}

	for {
		select {
		case <-stopCh:
			return
		case authed, ok := <-changes:
			if !ok {
				return
			}
			if authed {
				arm()
			} else {
				disarm()
			}
		case <-tick:
			p.dispatch()
		}
	}
}

// dispatch issues one fetch without waiting for it, so a slow response
// never delays the timer or Stop.
func (p *Poller) dispatch() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := p.fetcher.FetchUnread(ctx)
		if err != nil {
			p.logger.Debug("unread poll failed", zap.Error(err))
		}
		p.sendResult(PollResultMsg{Error: err, At: time.Now()})
	}()
}

func (p *Poller) setActive(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = v
}

// sendResult sends a PollResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg PollResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// This should be called after processing a PollResultMsg to continue
// listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
