package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "mark all", Normalize("  Mark   ALL "))
	assert.Equal(t, "", Normalize("   "))
}

func TestEnterEmitsKnownCommand(t *testing.T) {
	m := New(80, 24)
	m.input.SetValue(" Mark All ")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("mark all"), cmd())
	assert.Empty(t, m.input.Value())
	assert.Empty(t, m.Err())
}

func TestEnterRejectsUnknownCommand(t *testing.T) {
	m := New(80, 24)
	m.input.SetValue("configure")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "unknown command: configure", m.Err())
	assert.Contains(t, m.View(), "unknown command")

	m.Focus()
	assert.Empty(t, m.Err())
}

func TestEveryCommandIsKnown(t *testing.T) {
	for _, c := range Commands {
		assert.True(t, Known(c), c)
	}
	assert.False(t, Known("sync"))
}
