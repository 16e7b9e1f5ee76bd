// Package help is the keyboard reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/storefront/internal/keys"
	"github.com/nhle/storefront/internal/theme"
)

// sectionTitles name the groups returned by KeyMap.FullHelp, in order.
var sectionTitles = []string{"Navigation", "Views", "List filters", "Actions"}

const badgeNote = "The bell badge shows the unread count, capped at 9+. " +
	"Unread notifications refresh every poll interval while you are signed in."

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help overlay for k.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShortSeparator = "   "
	return Model{keys: k, help: h, width: width, height: height}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders one titled line of bindings per group, then the badge note.
func (m Model) View() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	var b strings.Builder
	b.WriteString(heading.MarginBottom(1).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	for i, group := range m.keys.FullHelp() {
		title := "More"
		if i < len(sectionTitles) {
			title = sectionTitles[i]
		}
		b.WriteString("\n")
		b.WriteString(heading.Render(title))
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView(enabled(group)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Width(max(m.width-8, 20)).Render(badgeNote))

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(b.String())
}

func enabled(group []key.Binding) []key.Binding {
	out := make([]key.Binding, 0, len(group))
	for _, kb := range group {
		if kb.Enabled() {
			out = append(out, kb)
		}
	}
	return out
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 8
}
