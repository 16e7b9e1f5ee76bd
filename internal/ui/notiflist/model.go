// Package notiflist is the full notification history page.
package notiflist

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/storefront/internal/keys"
	"github.com/nhle/storefront/internal/model"
	"github.com/nhle/storefront/internal/notifystore"
	"github.com/nhle/storefront/internal/theme"
	"github.com/nhle/storefront/internal/ui"
)

// Model is the list page component.
type Model struct {
	list    list.Model
	spinner spinner.Model
	store   ui.Store
	keys    *keys.KeyMap
	filter  notifystore.Filter
	all     []model.Notification
	status  notifystore.Status
	width   int
	height  int
}

// New creates the list page showing every notification.
func New(s ui.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	m := Model{
		list:    l,
		spinner: sp,
		store:   s,
		keys:    k,
		filter:  notifystore.FilterAll,
		width:   width,
		height:  height,
	}
	m.list.Title = m.title()
	return m
}

// Enter is called when the page becomes visible. It refreshes the full
// history and starts the loading spinner.
func (m Model) Enter() tea.Cmd {
	return tea.Batch(ui.FetchAll(m.store), m.spinner.Tick)
}

// Filter returns the active filter.
func (m Model) Filter() notifystore.Filter { return m.filter }

// SetFilter switches the projection over the cached history.
func (m *Model) SetFilter(f notifystore.Filter) tea.Cmd {
	m.filter = f
	m.list.Title = m.title()
	return m.refreshItems()
}

// Visible returns the notifications currently listed.
func (m Model) Visible() []model.Notification {
	items := m.list.Items()
	out := make([]model.Notification, 0, len(items))
	for _, it := range items {
		if n, ok := it.(Item); ok {
			out = append(out, n.Notification)
		}
	}
	return out
}

// Update handles snapshots, spinner ticks and keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SnapshotMsg:
		m.all = msg.Snapshot.All
		m.status = msg.Snapshot.Status
		cmd := m.refreshItems()
		return m, cmd

	case spinner.TickMsg:
		if m.status.State != notifystore.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.FilterAll):
		cmd := m.SetFilter(notifystore.FilterAll)
		return m, cmd

	case key.Matches(msg, m.keys.FilterUnread):
		cmd := m.SetFilter(notifystore.FilterUnread)
		return m, cmd

	case key.Matches(msg, m.keys.FilterRead):
		cmd := m.SetFilter(notifystore.FilterRead)
		return m, cmd

	case key.Matches(msg, m.keys.CycleFilter):
		cmd := m.SetFilter(m.filter.Next())
		return m, cmd

	case key.Matches(msg, m.keys.MarkRead):
		n, ok := m.selected()
		if !ok || n.IsRead {
			return m, nil
		}
		return m, ui.MarkRead(m.store, n.ID)

	case key.Matches(msg, m.keys.Select):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		var cmds []tea.Cmd
		if !n.IsRead {
			cmds = append(cmds, ui.MarkRead(m.store, n.ID))
		}
		cmds = append(cmds, ui.Navigate(n.OrderLink()))
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, ui.MarkAllRead(m.store)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Enter()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// refreshItems rebuilds the list from the cached history under the active
// filter, keeping the cursor in range.
func (m *Model) refreshItems() tea.Cmd {
	var items []list.Item
	for n := range notifystore.Filtered(m.all, m.filter) {
		items = append(items, Item{Notification: n})
	}
	idx := m.list.Index()
	cmd := m.list.SetItems(items)
	if idx >= len(items) {
		idx = max(len(items)-1, 0)
	}
	m.list.Select(idx)
	return cmd
}

func (m Model) title() string {
	switch m.filter {
	case notifystore.FilterUnread:
		return "Notifications · unread"
	case notifystore.FilterRead:
		return "Notifications · read"
	default:
		return "Notifications · all"
	}
}

// View renders the list page.
func (m Model) View() string {
	var banner string
	switch m.status.State {
	case notifystore.StateLoading:
		banner = m.spinner.View() + " Loading notifications…"
	case notifystore.StateError:
		banner = theme.ErrorStyle.Render("Error: " + m.status.Reason())
	}

	var body string
	if len(m.list.Items()) == 0 {
		if m.status.State == notifystore.StateLoading {
			return banner
		}
		body = m.renderEmptyState()
	} else {
		body = m.list.View()
	}

	if banner == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, banner, body)
}

// renderEmptyState shows guidance text when nothing matches.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch m.filter {
	case notifystore.FilterUnread:
		return style.Render("No unread notifications.\nPress 1 to show all.")
	case notifystore.FilterRead:
		return style.Render("No read notifications.\nPress 1 to show all.")
	default:
		return style.Render("No notifications yet.\n\nNew orders and status changes will show up here.")
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
