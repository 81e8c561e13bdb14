package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptweave/promptweave-cli/pkg/session"
)

// PromptEditorModel edits the file bound to the generation save target.
// All buffer state lives in the shared edit session; the textarea is a
// projection of it.
type PromptEditorModel struct {
	env       *Env
	ta        textarea.Model
	pathInput textinput.Model
	opening   bool
	confirm   *ConfirmationModel
	width     int
	height    int
}

func NewPromptEditorModel(env *Env) *PromptEditorModel {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.Prompt = "  "
	ta.CharLimit = 0

	pathInput := textinput.New()
	pathInput.Placeholder = "path to prompt file"
	pathInput.CharLimit = 0

	return &PromptEditorModel{
		env:       env,
		ta:        ta,
		pathInput: pathInput,
		confirm:   NewConfirmation(),
	}
}

func (m *PromptEditorModel) Init() tea.Cmd {
	return nil
}

func (m *PromptEditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ta.SetWidth(width - 4)
	m.ta.SetHeight(max(height-10, 3))
	m.pathInput.Width = width - 20
}

// Entered reconciles the editor with the save target each time the view
// becomes visible, so a target picked on the generator view shows up
// here without reopening it by hand.
func (m *PromptEditorModel) Entered() tea.Cmd {
	err := m.env.Binding.Reconcile()
	if errors.Is(err, session.ErrDeclined) {
		target := filepath.Base(m.env.Binding.Target())
		m.confirm.Show(
			fmt.Sprintf("Discard unsaved changes and load %s?", target),
			true,
			func() tea.Cmd {
				if err := m.env.Binding.AdoptTarget(); err != nil {
					return statusCmd("Could not load %s: %v", target, err)
				}
				m.syncFromSession()
				return nil
			},
			func() tea.Cmd { return nil },
		)
	} else if err != nil {
		m.syncFromSession()
		return statusCmd("Could not load save target: %v", err)
	}

	m.syncFromSession()
	return nil
}

// syncFromSession projects the session buffer into the textarea.
func (m *PromptEditorModel) syncFromSession() {
	m.ta.SetValue(m.env.Editor.Content())
	if m.env.Editor.Enabled() {
		m.ta.Focus()
	} else {
		m.ta.Blur()
	}
}

func (m *PromptEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirm.Active() {
		return m, m.confirm.Update(keyMsg)
	}
	if m.opening {
		return m, m.updatePathInput(keyMsg)
	}

	switch keyMsg.String() {
	case "ctrl+o":
		m.opening = true
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		m.ta.Blur()
		return m, nil

	case "ctrl+s":
		return m, m.save()

	case "ctrl+w":
		return m, m.close()
	}

	if !m.env.Editor.Enabled() {
		return m, nil
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(keyMsg)
	if m.ta.Value() != m.env.Editor.Content() {
		m.env.Editor.Mutate(m.ta.Value())
	}
	return m, cmd
}

func (m *PromptEditorModel) updatePathInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.opening = false
		m.pathInput.Blur()
		m.syncFromSession()
		return nil

	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.opening = false
		m.pathInput.Blur()
		if path == "" {
			m.syncFromSession()
			return nil
		}
		return m.open(path)
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

func (m *PromptEditorModel) open(path string) tea.Cmd {
	err := m.env.Binding.EditorOpened(path)
	if errors.Is(err, session.ErrDeclined) {
		m.confirm.Show("Discard unsaved changes and open the new file?", true,
			func() tea.Cmd {
				if err := m.env.Binding.EditorClosed(true); err != nil {
					return statusCmd("Could not close current file: %v", err)
				}
				cmd := m.open(path)
				m.syncFromSession()
				return cmd
			},
			func() tea.Cmd { return nil },
		)
		return nil
	}
	if err != nil {
		m.syncFromSession()
		return statusCmd("Could not open %s: %v", filepath.Base(path), err)
	}

	m.syncFromSession()
	return statusCmd("Opened %s", filepath.Base(path))
}

func (m *PromptEditorModel) save() tea.Cmd {
	if !m.env.Editor.Enabled() {
		return statusCmd("No file open")
	}
	if err := m.env.Editor.Save(); err != nil {
		return statusCmd("Save failed: %v", err)
	}
	return statusCmd("Saved %s", filepath.Base(m.env.Editor.BackingPath()))
}

func (m *PromptEditorModel) close() tea.Cmd {
	if !m.env.Editor.Enabled() {
		return nil
	}

	err := m.env.Binding.EditorClosed(false)
	if errors.Is(err, session.ErrDeclined) {
		m.confirm.Show("Discard unsaved changes and close?", true,
			func() tea.Cmd {
				if err := m.env.Binding.EditorClosed(true); err != nil {
					return statusCmd("Could not close: %v", err)
				}
				m.syncFromSession()
				return statusCmd("File closed")
			},
			func() tea.Cmd { return nil },
		)
		return nil
	}
	if err != nil {
		return statusCmd("Could not close: %v", err)
	}

	m.syncFromSession()
	return statusCmd("File closed")
}

func (m *PromptEditorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Prompt Editor"))
	b.WriteString("  ")
	b.WriteString(m.renderFileLabel())
	b.WriteString("\n\n")

	if m.opening {
		b.WriteString("Open file: " + m.pathInput.View())
		b.WriteString("\n\n")
	}

	if m.env.Editor.Enabled() || m.opening {
		b.WriteString(m.ta.View())
	} else {
		b.WriteString(helpStyle.Render("No file open. Press ctrl+o to open one, or set a save target on the generator view."))
	}

	b.WriteString("\n")
	if m.confirm.Active() {
		b.WriteString(m.confirm.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("ctrl+o open • ctrl+s save • ctrl+w close"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *PromptEditorModel) renderFileLabel() string {
	if !m.env.Editor.Enabled() {
		return labelStyle.Render("(no file)")
	}

	label := filepath.Base(m.env.Editor.BackingPath())
	if m.env.Editor.Dirty() {
		label += dirtyStyle.Render(" *")
	}
	if m.env.Binding.State() == session.SyncOutOfSync {
		label += " " + outOfSyncStyle.Render("(out of sync)")
	}
	return label
}
