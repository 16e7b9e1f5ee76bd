// Package session holds the process-wide viewer session: the bearer token
// used for API calls and an observer for authentication state changes.
package session

import (
	"errors"
	"fmt"
	"sync"
)

// TokenStore persists the session token between runs. Load returns an empty
// token and a nil error when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Remove() error
}

// Session is safe for concurrent use. The zero value is not usable; call New.
type Session struct {
	mu     sync.Mutex
	token  string
	store  TokenStore
	subs   map[int]chan bool
	nextID int
}

// New creates an unauthenticated session. store may be nil, in which case
// tokens live in memory only.
func New(store TokenStore) *Session {
	return &Session{
		store: store,
		subs:  make(map[int]chan bool),
	}
}

// Restore loads a previously saved token from the store. A missing token
// leaves the session unauthenticated.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("restoring session token: %w", err)
	}
	s.setToken(token)
	return nil
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Login stores token and marks the session authenticated.
func (s *Session) Login(token string) error {
	if token == "" {
		return errors.New("empty session token")
	}
	if s.store != nil {
		if err := s.store.Save(token); err != nil {
			return fmt.Errorf("saving session token: %w", err)
		}
	}
	s.setToken(token)
	return nil
}

// UseToken sets the token for this process without persisting it.
func (s *Session) UseToken(token string) {
	s.setToken(token)
}

// Logout clears the token from memory and from the store.
func (s *Session) Logout() error {
	s.setToken("")
	if s.store != nil {
		if err := s.store.Remove(); err != nil {
			return fmt.Errorf("removing session token: %w", err)
		}
	}
	return nil
}

// Subscribe returns a channel that receives the authentication state each
// time it changes, and a cancel func that closes the channel. Only the most
// recent state is buffered.
func (s *Session) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan bool, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// setToken swaps the token and notifies subscribers when the
// authenticated state flips.
func (s *Session) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	was := s.token != ""
	s.token = token
	now := token != ""
	if was == now {
		return
	}

	for _, ch := range s.subs {
		// Replace any undelivered state with the newest one.
		select {
		case <-ch:
		default:
		}
		ch <- now
	}
}
