package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/nhle/storefront/internal/keys"
	"github.com/nhle/storefront/internal/notifyapi"
	"github.com/nhle/storefront/internal/notifystore"
	appsync "github.com/nhle/storefront/internal/sync"
	"github.com/nhle/storefront/internal/theme"
	"github.com/nhle/storefront/internal/ui"
	"github.com/nhle/storefront/internal/ui/bell"
	"github.com/nhle/storefront/internal/ui/command"
	"github.com/nhle/storefront/internal/ui/dropdown"
	helpview "github.com/nhle/storefront/internal/ui/help"
	"github.com/nhle/storefront/internal/ui/notiflist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewHome ViewState = iota
	ViewList
	ViewHelp
	ViewCommand
)

// Session is the part of the viewer session the app needs.
type Session interface {
	Authenticated() bool
	Logout() error
}

// Deps are the long-lived services the root model drives.
type Deps struct {
	Store         *notifystore.Store
	Poller        *appsync.Poller
	Session       Session
	DropdownLimit int
	Logger        *zap.Logger
}

// Model is the root Bubble Tea model that manages view routing and
// fans store snapshots out to the notification views.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	store        *notifystore.Store
	session      Session
	logger       *zap.Logger

	changes     <-chan notifystore.Snapshot
	unsubscribe func()

	bell        bell.Model
	dropdown    dropdown.Model
	list        notiflist.Model
	helpView    helpview.Model
	commandView command.Model

	message string
	ready   bool
}

// New creates the root model and subscribes it to the store.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	changes, unsubscribe := d.Store.Subscribe()

	return Model{
		currentView: ViewHome,
		layout:      ui.NewLayout(80, 24),
		keys:        k,
		store:       d.Store,
		session:     d.Session,
		logger:      logger,
		changes:     changes,
		unsubscribe: unsubscribe,
		bell:        bell.New(d.Poller),
		dropdown:    dropdown.New(d.Store, k, d.DropdownLimit, 80),
		list:        notiflist.New(d.Store, k, 80, 22),
		helpView:    helpview.New(k, 80, 22),
		commandView: command.New(80, 22),
	}
}

// Init mounts the bell, which starts unread polling, and begins listening
// for store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ui.WaitForSnapshot(m.changes),
		m.bell.Mount(),
	)
}

// Shutdown stops polling and detaches from the store. It is safe to call
// more than once.
func (m Model) Shutdown() {
	m.bell.Unmount()
	m.unsubscribe()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		h := m.layout.ContentHeight()
		m.list.SetSize(msg.Width, h)
		m.helpView.SetSize(msg.Width, h)
		m.commandView.SetSize(msg.Width, h)
		m.dropdown.SetWidth(msg.Width)
		return m, nil

	case ui.SnapshotMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.bell, cmd = m.bell.Update(msg)
		cmds = append(cmds, cmd)
		m.dropdown, cmd = m.dropdown.Update(msg)
		cmds = append(cmds, cmd)
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		cmds = append(cmds, ui.WaitForSnapshot(m.changes))
		return m, tea.Batch(cmds...)

	case appsync.PollResultMsg:
		var cmd tea.Cmd
		m.bell, cmd = m.bell.Update(msg)
		return m, cmd

	case ui.OpResultMsg:
		m.message = describeResult(msg)
		if msg.Err != nil {
			m.logger.Debug("notification op failed",
				zap.Stringer("op", msg.Op), zap.Int64("id", msg.ID), zap.Error(msg.Err))
		}
		return m, nil

	case ui.NavigateMsg:
		m.logger.Info("navigate", zap.String("path", msg.Path))
		m.message = "order: " + msg.Path
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateActiveView(msg)
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Shutdown()
		return m, tea.Quit
	}

	switch m.currentView {
	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil
		}
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd

	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.dropdown.Close()
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.dropdown.Close()
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd
	}

	if m.dropdown.IsOpen() {
		var cmd tea.Cmd
		m.dropdown, cmd = m.dropdown.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Dropdown):
		cmd := m.dropdown.Open()
		return m, cmd

	case key.Matches(msg, m.keys.FullList) && m.currentView == ViewHome:
		cmd := m.showList()
		return m, cmd

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewList:
		m.currentView = ViewHome
		return m, nil

	case key.Matches(msg, m.keys.Refresh) && m.currentView == ViewHome:
		return m, ui.FetchUnread(m.store)
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}
	return m, cmd
}

func (m *Model) showList() tea.Cmd {
	m.dropdown.Close()
	m.currentView = ViewList
	return m.list.Enter()
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh":
		if m.currentView == ViewList {
			return m.list.Enter()
		}
		return ui.FetchUnread(m.store)
	case "all":
		return tea.Batch(m.showList(), m.list.SetFilter(notifystore.FilterAll))
	case "unread":
		return tea.Batch(m.showList(), m.list.SetFilter(notifystore.FilterUnread))
	case "read":
		return tea.Batch(m.showList(), m.list.SetFilter(notifystore.FilterRead))
	case "mark all":
		return ui.MarkAllRead(m.store)
	case "bell":
		m.currentView = ViewHome
		return m.dropdown.Open()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "logout":
		if m.session == nil {
			return nil
		}
		if err := m.session.Logout(); err != nil {
			m.message = "logout failed: " + err.Error()
			return nil
		}
		m.message = "signed out"
		return nil
	case "quit":
		m.Shutdown()
		return tea.Quit
	default:
		return nil
	}
}

// describeResult turns an operation outcome into a status bar message.
func describeResult(msg ui.OpResultMsg) string {
	switch {
	case msg.Err == nil:
		return ""
	case errors.Is(msg.Err, notifyapi.ErrAuthRequired):
		return "not signed in: run `storefront login`"
	default:
		return fmt.Sprintf("%s failed: %v", msg.Op, msg.Err)
	}
}

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	right := m.bell.View()
	if s := m.bell.SyncStatus(); s != "" {
		right += "  " + s
	}
	header := m.layout.RenderHeader("Storefront", right)

	var content string
	switch m.currentView {
	case ViewList:
		content = m.list.View()
	case ViewHelp:
		content = m.helpView.View()
	case ViewCommand:
		content = m.commandView.View()
	default:
		content = m.renderHome()
	}
	content = m.layout.RenderDropdown(content, m.dropdown.View())

	message := m.message
	if message != "" && m.store.Status().State == notifystore.StateError {
		message = theme.ErrorStyle.Render(message)
	}
	return m.layout.RenderWithFrame(header, content, m.layout.RenderStatusBar(m.keyHints(), message))
}

func (m Model) renderHome() string {
	style := lipgloss.NewStyle().
		Width(m.layout.Width).
		Height(m.layout.ContentHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.session != nil && !m.session.Authenticated() {
		return style.Render("You are signed out.\n\nRun `storefront login` to see notifications.")
	}

	n := m.bell.Count()
	summary := "No unread notifications."
	if n == 1 {
		summary = "1 unread notification."
	} else if n > 1 {
		summary = fmt.Sprintf("%d unread notifications.", n)
	}
	return style.Render(summary + "\n\nPress b to open the bell or l to see everything.")
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.dropdown.IsOpen() {
		return "j/k move | enter open | M mark all read | esc close"
	}
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewList:
		return "esc back | 1 all | 2 unread | 3 read | tab filter | m read | M all read | r refresh"
	default:
		return "q quit | ? help | b bell | l list | r refresh | : command"
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Message returns the status bar message.
func (m Model) Message() string { return m.message }
