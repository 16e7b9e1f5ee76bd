package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/storefront/internal/theme"
)

// Layout holds the terminal dimensions and the fixed chrome heights.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with one-line header and status bar.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentHeight returns the rows left between header and status bar.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// RenderHeader renders the title on the left and right (the bell and sync
// status) flush against the right edge.
func (l Layout) RenderHeader(title string, right string) string {
	return l.bar(theme.HeaderStyle, theme.HeaderStyle.Render(title), theme.HeaderStyle.Render(right))
}

// RenderStatusBar renders key hints on the left and message on the right.
func (l Layout) RenderStatusBar(hints string, message string) string {
	right := ""
	if message != "" {
		right = theme.StatusBarStyle.Render(message)
	}
	return l.bar(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints), right)
}

func (l Layout) bar(style lipgloss.Style, left, right string) string {
	gap := max(l.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderDropdown places panel at the top right of the content area, below
// the header bell. While panel is non-empty it replaces content.
func (l Layout) RenderDropdown(content string, panel string) string {
	if panel == "" {
		return content
	}
	return lipgloss.Place(
		l.Width, l.ContentHeight(),
		lipgloss.Right, lipgloss.Top,
		panel,
	)
}

// RenderWithFrame stacks header, content and status bar, padding content
// to the available height.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	body := lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}
