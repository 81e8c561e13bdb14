package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/presets"
)

type promptsFocus int

const (
	focusList promptsFocus = iota
	focusEditor
)

// SystemPromptsModel manages the preset library: a list pane for
// selecting, activating and deleting presets, and an editor pane backed
// by the preset edit session.
type SystemPromptsModel struct {
	env       *Env
	names     []string
	index     int
	loaded    string
	focus     promptsFocus
	ta        textarea.Model
	nameInput textinput.Model
	savingAs  bool
	confirm   *ConfirmationModel
	width     int
	height    int
}

func NewSystemPromptsModel(env *Env) *SystemPromptsModel {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Prompt = "  "
	ta.CharLimit = 0

	nameInput := textinput.New()
	nameInput.Placeholder = "new preset name"
	nameInput.CharLimit = 100

	return &SystemPromptsModel{
		env:       env,
		ta:        ta,
		nameInput: nameInput,
		confirm:   NewConfirmation(),
	}
}

func (m *SystemPromptsModel) Init() tea.Cmd {
	return nil
}

func (m *SystemPromptsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.ta.SetWidth(max(width-30, 20))
	m.ta.SetHeight(max(height-10, 3))
	m.nameInput.Width = 40
}

// Entered refreshes the preset list each time the view becomes visible.
func (m *SystemPromptsModel) Entered() tea.Cmd {
	return m.refresh()
}

func (m *SystemPromptsModel) refresh() tea.Cmd {
	names, err := presets.List()
	if err != nil {
		return statusCmd("Could not list presets: %v", err)
	}
	m.names = names
	if m.index >= len(m.names) {
		m.index = max(len(m.names)-1, 0)
	}
	return nil
}

func (m *SystemPromptsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirm.Active() {
		return m, m.confirm.Update(keyMsg)
	}
	if m.savingAs {
		return m, m.updateNameInput(keyMsg)
	}

	switch keyMsg.String() {
	case "ctrl+e":
		m.toggleFocus()
		return m, nil

	case "ctrl+s":
		return m, m.save()

	case "ctrl+n":
		return m, m.startSaveAs()

	case "ctrl+d":
		return m, m.deleteSelected()

	case "ctrl+a":
		return m, m.activateSelected()
	}

	if m.focus == focusList {
		switch keyMsg.String() {
		case "up", "k":
			if m.index > 0 {
				m.index--
			}
			return m, nil
		case "down", "j":
			if m.index < len(m.names)-1 {
				m.index++
			}
			return m, nil
		case "enter":
			return m, m.loadSelected()
		}
		return m, nil
	}

	if !m.env.Presets.Enabled() {
		return m, nil
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(keyMsg)
	if m.ta.Value() != m.env.Presets.Content() {
		m.env.Presets.Mutate(m.ta.Value())
	}
	return m, cmd
}

func (m *SystemPromptsModel) toggleFocus() {
	if m.focus == focusList && m.env.Presets.Enabled() {
		m.focus = focusEditor
		m.ta.Focus()
	} else {
		m.focus = focusList
		m.ta.Blur()
	}
}

func (m *SystemPromptsModel) selectedName() string {
	if m.index < 0 || m.index >= len(m.names) {
		return ""
	}
	return m.names[m.index]
}

func (m *SystemPromptsModel) loadSelected() tea.Cmd {
	name := m.selectedName()
	if name == "" {
		return nil
	}
	if name == m.loaded {
		return nil
	}

	if m.env.Presets.Dirty() {
		m.confirm.Show("Discard unsaved preset changes?", true,
			func() tea.Cmd { return m.doLoad(name) },
			func() tea.Cmd { return nil },
		)
		return nil
	}
	return m.doLoad(name)
}

func (m *SystemPromptsModel) doLoad(name string) tea.Cmd {
	if err := m.env.Presets.Load(presets.Path(name)); err != nil {
		return statusCmd("Could not load %s: %v", name, err)
	}
	m.loaded = name
	m.ta.SetValue(m.env.Presets.Content())
	m.focus = focusEditor
	m.ta.Focus()
	return statusCmd("Editing %s", name)
}

func (m *SystemPromptsModel) save() tea.Cmd {
	if m.loaded == "" || !m.env.Presets.Enabled() {
		return statusCmd("No preset loaded")
	}
	if err := m.env.Presets.Save(); err != nil {
		return statusCmd("Save failed: %v", err)
	}
	return statusCmd("Saved %s", m.loaded)
}

func (m *SystemPromptsModel) startSaveAs() tea.Cmd {
	if !m.env.Presets.Enabled() {
		return statusCmd("Load a preset to copy from first")
	}
	m.savingAs = true
	m.nameInput.SetValue("")
	m.nameInput.Focus()
	m.ta.Blur()
	return nil
}

func (m *SystemPromptsModel) updateNameInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.savingAs = false
		m.nameInput.Blur()
		return nil

	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		m.savingAs = false
		m.nameInput.Blur()
		if name == "" {
			return nil
		}
		return m.saveAs(name)
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return cmd
}

func (m *SystemPromptsModel) saveAs(name string) tea.Cmd {
	err := presets.SaveAs(name, m.ta.Value())
	if errors.Is(err, presets.ErrDefaultProtected) {
		return statusCmd("The default preset cannot be overwritten")
	}
	if err != nil {
		return statusCmd("Save as failed: %v", err)
	}

	refreshCmd := m.refresh()
	for i, n := range m.names {
		if strings.EqualFold(n, normalizeName(name)) {
			m.index = i
			break
		}
	}
	loadCmd := m.doLoad(normalizeName(name))
	return tea.Batch(refreshCmd, loadCmd)
}

func (m *SystemPromptsModel) deleteSelected() tea.Cmd {
	name := m.selectedName()
	if name == "" {
		return nil
	}
	if name == presets.DefaultName {
		return statusCmd("The default preset cannot be deleted")
	}

	m.confirm.Show("Delete preset "+name+"?", true,
		func() tea.Cmd { return m.doDelete(name) },
		func() tea.Cmd { return nil },
	)
	return nil
}

func (m *SystemPromptsModel) doDelete(name string) tea.Cmd {
	if err := presets.Delete(name); err != nil {
		return statusCmd("Delete failed: %v", err)
	}

	// Deleting the active preset falls back to the default so the
	// generator never points at a missing file.
	if m.env.Config.ActivePreset == name {
		m.env.Config.ActivePreset = presets.DefaultName
		if err := config.Save(m.env.Config); err != nil {
			return statusCmd("Deleted %s, but saving config failed: %v", name, err)
		}
	}

	if m.loaded == name {
		_ = m.env.Presets.Close(true)
		m.loaded = ""
		m.ta.SetValue("")
		m.ta.Blur()
		m.focus = focusList
	}

	refreshCmd := m.refresh()
	return tea.Batch(refreshCmd, statusCmd("Deleted %s", name))
}

func (m *SystemPromptsModel) activateSelected() tea.Cmd {
	name := m.selectedName()
	if name == "" {
		return nil
	}

	m.env.Config.ActivePreset = name
	if err := config.Save(m.env.Config); err != nil {
		return statusCmd("Could not save config: %v", err)
	}
	return statusCmd("Active system prompt: %s", name)
}

func (m *SystemPromptsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("System Prompts"))
	b.WriteString("\n\n")

	if m.savingAs {
		b.WriteString("Save as: " + m.nameInput.View())
		b.WriteString("\n\n")
	}

	list := m.renderList()
	editor := m.renderEditor()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", editor))

	b.WriteString("\n")
	if m.confirm.Active() {
		b.WriteString(m.confirm.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter edit • ctrl+e focus • ctrl+s save • ctrl+n save as • ctrl+d delete • ctrl+a set active"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *SystemPromptsModel) renderList() string {
	var b strings.Builder
	for i, name := range m.names {
		line := "  " + name
		if name == m.env.Config.ActivePreset {
			line += activeMarkStyle.Render(" (active)")
		}
		if name == m.loaded && m.env.Presets.Dirty() {
			line += dirtyStyle.Render(" *")
		}
		if i == m.index && m.focus == focusList {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(m.names) == 0 {
		b.WriteString(helpStyle.Render("  no presets"))
	}
	return lipgloss.NewStyle().Width(24).Render(b.String())
}

func (m *SystemPromptsModel) renderEditor() string {
	if !m.env.Presets.Enabled() {
		return helpStyle.Render("Select a preset and press enter to edit it.")
	}
	return m.ta.View()
}

func normalizeName(name string) string {
	if !strings.HasSuffix(name, ".txt") {
		return name + ".txt"
	}
	return name
}
