package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/storefront/internal/notifystore"
)

// opTimeout bounds a single store operation started from the UI.
const opTimeout = 30 * time.Second

// Store is the notification store surface the views drive.
// *notifystore.Store satisfies it.
type Store interface {
	FetchAll(ctx context.Context) error
	FetchUnread(ctx context.Context) error
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
}

// Op names a store operation.
type Op int

const (
	OpFetchAll Op = iota
	OpFetchUnread
	OpMarkRead
	OpMarkAllRead
)

func (o Op) String() string {
	switch o {
	case OpFetchAll:
		return "fetch all"
	case OpFetchUnread:
		return "fetch unread"
	case OpMarkRead:
		return "mark read"
	case OpMarkAllRead:
		return "mark all read"
	default:
		return "unknown"
	}
}

// OpResultMsg is sent when a store operation started from the UI completes.
// The store itself already reflects the outcome; the message lets views
// react (e.g. surface an error in the status bar).
type OpResultMsg struct {
	Op  Op
	ID  int64
	Err error
}

// SnapshotMsg carries the store state after a change.
type SnapshotMsg struct {
	Snapshot notifystore.Snapshot
}

// NavigateMsg asks the app to follow a storefront link.
type NavigateMsg struct {
	Path string
}

func run(op Op, id int64, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return OpResultMsg{Op: op, ID: id, Err: fn(ctx)}
	}
}

// FetchAll returns a command running s.FetchAll.
func FetchAll(s Store) tea.Cmd {
	return run(OpFetchAll, 0, s.FetchAll)
}

// FetchUnread returns a command running s.FetchUnread.
func FetchUnread(s Store) tea.Cmd {
	return run(OpFetchUnread, 0, s.FetchUnread)
}

// MarkRead returns a command running s.MarkRead for id.
func MarkRead(s Store, id int64) tea.Cmd {
	return run(OpMarkRead, id, func(ctx context.Context) error {
		return s.MarkRead(ctx, id)
	})
}

// MarkAllRead returns a command running s.MarkAllRead.
func MarkAllRead(s Store) tea.Cmd {
	return run(OpMarkAllRead, 0, s.MarkAllRead)
}

// WaitForSnapshot returns a command that delivers the next snapshot from a
// store subscription. It yields nil once the subscription is closed.
func WaitForSnapshot(ch <-chan notifystore.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// Navigate returns a command emitting a NavigateMsg for path.
func Navigate(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg { return NavigateMsg{Path: path} }
}
