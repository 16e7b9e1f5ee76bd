// Package bell renders the header bell with its unread badge and owns the
// unread poller for as long as the bell is mounted.
package bell

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nhle/storefront/internal/notifystore"
	appsync "github.com/nhle/storefront/internal/sync"
	"github.com/nhle/storefront/internal/theme"
	"github.com/nhle/storefront/internal/ui"
)

const icon = "🔔"

// Model is the bell component.
type Model struct {
	poller  *appsync.Poller
	count   int
	status  notifystore.Status
	lastAt  time.Time
	lastErr error
}

// New creates an unmounted bell driven by poller.
func New(poller *appsync.Poller) Model {
	return Model{poller: poller}
}

// Mount starts the poller and returns the command that waits for its
// first result. Mounting a mounted bell returns nil.
func (m Model) Mount() tea.Cmd {
	return m.poller.Start()
}

// Unmount stops the poller. No fetch is issued after it returns, and
// unmounting twice is harmless.
func (m Model) Unmount() {
	m.poller.Stop()
}

// Update handles store snapshots and poll results.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		m.count = msg.Snapshot.UnreadCount()
		m.status = msg.Snapshot.Status

	case appsync.PollResultMsg:
		m.lastAt = msg.At
		m.lastErr = msg.Error
		return m, m.poller.WaitForNextResult()
	}
	return m, nil
}

// Count returns the exact unread count the badge is derived from.
func (m Model) Count() int { return m.count }

// Badge returns the badge text for the current count.
func (m Model) Badge() string { return notifystore.BadgeLabel(m.count) }

// View renders the bell and, when there is anything unread, its badge.
func (m Model) View() string {
	label := m.Badge()
	if label == "" {
		return icon
	}
	return icon + " " + theme.BadgeStyle.Render(label)
}

// SyncStatus describes the outcome of the most recent poll.
func (m Model) SyncStatus() string {
	switch {
	case m.status.State == notifystore.StateLoading:
		return "syncing…"
	case m.lastErr != nil:
		return theme.ErrorStyle.Render("sync failed")
	case m.lastAt.IsZero():
		return ""
	default:
		return "synced " + humanize.Time(m.lastAt)
	}
}
