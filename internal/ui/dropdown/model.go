// Package dropdown is the bell's pop-over listing the newest unread
// notifications.
package dropdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/storefront/internal/keys"
	"github.com/nhle/storefront/internal/model"
	"github.com/nhle/storefront/internal/notifystore"
	"github.com/nhle/storefront/internal/theme"
	"github.com/nhle/storefront/internal/ui"
)

// DefaultLimit is how many unread items are shown when no limit is set.
const DefaultLimit = 5

// Model is the dropdown component.
type Model struct {
	store  ui.Store
	keys   *keys.KeyMap
	limit  int
	open   bool
	cursor int
	unread []model.Notification
	status notifystore.Status
	width  int
}

// New creates a closed dropdown showing at most limit items.
func New(s ui.Store, k *keys.KeyMap, limit, width int) Model {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Model{store: s, keys: k, limit: limit, width: width}
}

// Open shows the dropdown and refreshes the unread set. Opening an
// already open dropdown does nothing.
func (m *Model) Open() tea.Cmd {
	if m.open {
		return nil
	}
	m.open = true
	m.cursor = 0
	return ui.FetchUnread(m.store)
}

// Close hides the dropdown. It has no effect on the store and may be
// called any number of times.
func (m *Model) Close() {
	m.open = false
	m.cursor = 0
}

// IsOpen reports whether the dropdown is visible.
func (m Model) IsOpen() bool { return m.open }

// Items returns the visible unread items, newest first.
func (m Model) Items() []model.Notification {
	return m.unread[:min(len(m.unread), m.limit)]
}

// Cursor returns the index of the highlighted item.
func (m Model) Cursor() int { return m.cursor }

// Update handles snapshots always and keys while open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		m.unread = msg.Snapshot.Unread
		m.status = msg.Snapshot.Status
		if n := len(m.Items()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if !m.open {
			return m, nil
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.Items()

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Select):
		if len(items) == 0 {
			return m, nil
		}
		n := items[m.cursor]
		var cmds []tea.Cmd
		if !n.IsRead {
			cmds = append(cmds, ui.MarkRead(m.store, n.ID))
		}
		if link := n.OrderLink(); link != "" {
			cmds = append(cmds, ui.Navigate(link))
			m.Close()
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, ui.MarkAllRead(m.store)

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Dropdown):
		m.Close()
	}
	return m, nil
}

// View renders the dropdown panel, or "" when closed.
func (m Model) View() string {
	if !m.open {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(fmt.Sprintf("Notifications (%d unread)", len(m.unread)))

	var body string
	items := m.Items()
	switch {
	case len(items) == 0 && m.status.State == notifystore.StateLoading:
		body = theme.DimmedStyle.Render("Loading notifications…")
	case len(items) == 0 && m.status.State == notifystore.StateError:
		body = theme.ErrorStyle.Render(m.status.Reason())
	case len(items) == 0:
		body = theme.DimmedStyle.Render("You're all caught up.")
	default:
		rows := make([]string, len(items))
		for i, n := range items {
			rows[i] = m.renderRow(n, i == m.cursor)
		}
		body = strings.Join(rows, "\n")
		if m.status.State == notifystore.StateError {
			body += "\n" + theme.ErrorStyle.Render(m.status.Reason())
		}
	}

	hint := theme.HelpStyle.Render("enter open · M mark all read · esc close")
	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint)

	width := m.width / 2
	if width < 40 {
		width = 40
	}
	return theme.PanelStyle.Width(width).Render(content)
}

func (m Model) renderRow(n model.Notification, selected bool) string {
	marker := " "
	if !n.IsRead {
		marker = theme.UnreadMarkerStyle.Render("●")
	}
	when := theme.DimmedStyle.Render(humanize.Time(n.CreatedAt))
	line := fmt.Sprintf("%s %s %s  %s", marker, theme.TypeStyle(n.Type).Render(theme.TypeIcon(n.Type)), n.Title, when)
	if n.Message != "" {
		line += "\n    " + theme.DimmedStyle.Render(n.Message)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetWidth updates the available width.
func (m *Model) SetWidth(width int) { m.width = width }
