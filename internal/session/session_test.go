package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory TokenStore.
type memStore struct {
	token   string
	saveErr error
	removed bool
}

func (m *memStore) Load() (string, error) { return m.token, nil }

func (m *memStore) Save(token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	return nil
}

func (m *memStore) Remove() error {
	m.token = ""
	m.removed = true
	return nil
}

func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for auth state")
		return false
	}
}

func TestSession_LoginLogout(t *testing.T) {
	store := &memStore{}
	s := New(store)
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Login("tok-1"))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok-1", s.Token())
	assert.Equal(t, "tok-1", store.token)

	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	assert.True(t, store.removed)
}

func TestSession_LoginRejectsEmptyToken(t *testing.T) {
	s := New(nil)
	require.Error(t, s.Login(""))
	assert.False(t, s.Authenticated())
}

func TestSession_LoginSaveFailureKeepsUnauthenticated(t *testing.T) {
	s := New(&memStore{saveErr: errors.New("keyring locked")})
	err := s.Login("tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring locked")
	assert.False(t, s.Authenticated())
}

func TestSession_Restore(t *testing.T) {
	s := New(&memStore{token: "saved"})
	require.NoError(t, s.Restore())
	assert.Equal(t, "saved", s.Token())

	empty := New(&memStore{})
	require.NoError(t, empty.Restore())
	assert.False(t, empty.Authenticated())
}

func TestSession_SubscribeReceivesTransitions(t *testing.T) {
	s := New(nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.UseToken("a")
	assert.True(t, receive(t, ch))

	// Token refresh without a state change is not announced.
	s.UseToken("b")
	select {
	case v := <-ch:
		t.Fatalf("unexpected state %v", v)
	default:
	}

	require.NoError(t, s.Logout())
	assert.False(t, receive(t, ch))
}

func TestSession_SubscribeKeepsLatestState(t *testing.T) {
	s := New(nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.UseToken("a")
	s.UseToken("")
	s.UseToken("c")

	assert.True(t, receive(t, ch))
	select {
	case v := <-ch:
		t.Fatalf("expected a single buffered state, got extra %v", v)
	default:
	}
}

func TestSession_CancelClosesChannel(t *testing.T) {
	s := New(nil)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Notifying after cancel must not panic.
	s.UseToken("x")
}
