package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptweave/promptweave-cli/pkg/api"
	"github.com/promptweave/promptweave-cli/pkg/config"
)

type settingsField int

const (
	fieldEndpoint settingsField = iota
	fieldAPIType
	fieldAPIKey
	fieldCount
)

// SettingsModel edits the endpoint configuration. Nothing is persisted
// until the user saves; an invalid endpoint is rejected with the config
// on disk left untouched.
type SettingsModel struct {
	env      *Env
	endpoint textinput.Model
	apiKey   textinput.Model
	apiType  string
	focus    settingsField
	width    int
	height   int
}

func NewSettingsModel(env *Env) *SettingsModel {
	endpoint := textinput.New()
	endpoint.Placeholder = "http://localhost:11434"
	endpoint.CharLimit = 0
	endpoint.Focus()

	apiKey := textinput.New()
	apiKey.Placeholder = "optional"
	apiKey.CharLimit = 0
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.EchoCharacter = '•'

	m := &SettingsModel{
		env:      env,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
	m.Entered()
	return m
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.endpoint.Width = max(width-30, 20)
	m.apiKey.Width = max(width-30, 20)
}

// Entered reloads the form from the live config, dropping any edits that
// were never saved.
func (m *SettingsModel) Entered() {
	m.endpoint.SetValue(m.env.Config.Endpoint)
	m.apiKey.SetValue(m.env.Config.APIKey)
	m.apiType = m.env.Config.APIType
	m.setFocus(fieldEndpoint)
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case "down", "enter":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case "ctrl+s":
		return m, m.save()
	}

	switch m.focus {
	case fieldEndpoint:
		var cmd tea.Cmd
		m.endpoint, cmd = m.endpoint.Update(keyMsg)
		return m, cmd

	case fieldAPIKey:
		var cmd tea.Cmd
		m.apiKey, cmd = m.apiKey.Update(keyMsg)
		return m, cmd

	case fieldAPIType:
		switch keyMsg.String() {
		case "left", "right", " ":
			if m.apiType == string(api.TypeOllama) {
				m.apiType = string(api.TypeOpenAI)
			} else {
				m.apiType = string(api.TypeOllama)
			}
		}
		return m, nil
	}

	return m, nil
}

func (m *SettingsModel) setFocus(f settingsField) {
	m.focus = f
	m.endpoint.Blur()
	m.apiKey.Blur()
	switch f {
	case fieldEndpoint:
		m.endpoint.Focus()
	case fieldAPIKey:
		m.apiKey.Focus()
	}
}

func (m *SettingsModel) save() tea.Cmd {
	candidate := *m.env.Config
	candidate.Endpoint = strings.TrimSpace(m.endpoint.Value())
	candidate.APIType = m.apiType
	candidate.APIKey = strings.TrimSpace(m.apiKey.Value())

	if err := candidate.Validate(); err != nil {
		return statusCmd("Invalid settings: %v", err)
	}

	*m.env.Config = candidate
	if err := config.Save(m.env.Config); err != nil {
		return statusCmd("Could not save settings: %v", err)
	}

	// A new endpoint means the generator's model list is stale.
	return tea.Batch(
		statusCmd("Settings saved"),
		func() tea.Msg { return configSavedMsg{} },
	)
}

func (m *SettingsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	b.WriteString(m.renderLabel("API endpoint", fieldEndpoint))
	b.WriteString(m.endpoint.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderLabel("API type", fieldAPIType))
	b.WriteString(m.renderTypeToggle())
	b.WriteString("\n\n")

	b.WriteString(m.renderLabel("API key", fieldAPIKey))
	b.WriteString(m.apiKey.View())
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("up/down fields • left/right api type • ctrl+s save"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *SettingsModel) renderLabel(label string, f settingsField) string {
	if m.focus == f {
		return selectedStyle.Render("▸ " + label + ": ")
	}
	return labelStyle.Render("  " + label + ": ")
}

func (m *SettingsModel) renderTypeToggle() string {
	ollama := "ollama"
	openai := "openai"
	if m.apiType == string(api.TypeOpenAI) {
		openai = selectedStyle.Render("[" + openai + "]")
		ollama = labelStyle.Render(ollama)
	} else {
		ollama = selectedStyle.Render("[" + ollama + "]")
		openai = labelStyle.Render(openai)
	}
	return ollama + "  " + openai
}
