package notiflist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nhle/storefront/internal/model"
	"github.com/nhle/storefront/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification title.
func (i Item) Title() string { return i.Notification.Title }

// Description returns the type label and relative creation time.
func (i Item) Description() string {
	return i.Notification.Type.Label() + " | " + humanize.Time(i.Notification.CreatedAt)
}

// ItemDelegate implements list.ItemDelegate for notification rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a notification as a title line and a message line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	marker := " "
	if !n.IsRead {
		marker = theme.UnreadMarkerStyle.Render("●")
	}
	typeBadge := theme.TypeStyle(n.Type).Render(theme.TypeIcon(n.Type) + " " + n.Type.Label())
	when := theme.DimmedStyle.Render(humanize.Time(n.CreatedAt))

	title := fmt.Sprintf("%s %s %s  %s", marker, typeBadge, n.Title, when)
	msg := "    " + n.Message
	if n.IsRead {
		title = theme.DimmedStyle.Render(title)
	}
	msg = theme.DimmedStyle.Render(msg)

	line := title + "\n" + msg
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}
