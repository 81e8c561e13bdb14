package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptweave/promptweave-cli/pkg/tasks"
)

// StatusMsg sets the text of the shared status bar.
type StatusMsg string

// SwitchViewMsg requests a navigation to another view. The request still
// goes through the dirty-state gate like a keyboard navigation.
type SwitchViewMsg struct {
	view sessionState
}

// taskOutcomeMsg carries the settled outcome of a background task back
// into the update loop.
type taskOutcomeMsg struct {
	outcome tasks.Outcome
}

// configSavedMsg is emitted after the settings view persists the config,
// so the generator can refresh its model list against the new endpoint.
type configSavedMsg struct{}

// awaitTask blocks on the task handle off the update loop and converts
// the outcome into a message.
func awaitTask(h *tasks.Handle) tea.Cmd {
	return func() tea.Msg {
		return taskOutcomeMsg{outcome: h.Wait()}
	}
}

func statusCmd(format string, args ...any) tea.Cmd {
	msg := StatusMsg(fmt.Sprintf(format, args...))
	return func() tea.Msg { return msg }
}
