package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/presets"
	"github.com/promptweave/promptweave-cli/pkg/session"
)

type sessionState int

const (
	generatorView sessionState = iota
	promptEditorView
	systemPromptsView
	settingsView
)

var viewNames = [...]string{"Generator", "Prompt Editor", "System Prompts", "Settings"}

// Every view model must satisfy tea.Model for the routing in Update.
var (
	_ tea.Model = (*GeneratorModel)(nil)
	_ tea.Model = (*PromptEditorModel)(nil)
	_ tea.Model = (*SystemPromptsModel)(nil)
	_ tea.Model = (*SettingsModel)(nil)
)

func (s sessionState) next() sessionState {
	return (s + 1) % sessionState(len(viewNames))
}

func (s sessionState) prev() sessionState {
	return (s + sessionState(len(viewNames)) - 1) % sessionState(len(viewNames))
}

type App struct {
	state     sessionState
	env       *Env
	generator *GeneratorModel
	editor    *PromptEditorModel
	prompts   *SystemPromptsModel
	settings  *SettingsModel
	confirm   *ConfirmationModel
	width     int
	height    int
	statusMsg string
}

func NewApp(cfg *config.Config) *App {
	// An active preset pointing at a deleted file is healed at startup
	// rather than failing every generation.
	if _, err := presets.Load(cfg.ActivePreset); err != nil {
		cfg.ActivePreset = presets.DefaultName
		_ = config.Save(cfg)
	}

	env := NewEnv(cfg)
	return &App{
		state:     generatorView,
		env:       env,
		generator: NewGeneratorModel(env),
		editor:    NewPromptEditorModel(env),
		prompts:   NewSystemPromptsModel(env),
		settings:  NewSettingsModel(env),
		confirm:   NewConfirmation(),
	}
}

func (a *App) Init() tea.Cmd {
	return a.generator.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.generator.SetSize(msg.Width, msg.Height)
		a.editor.SetSize(msg.Width, msg.Height)
		a.prompts.SetSize(msg.Width, msg.Height)
		a.settings.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, a.requestQuit()
		}
		if a.confirm.Active() {
			return a, a.confirm.Update(msg)
		}
		switch msg.String() {
		case "tab":
			return a, a.requestSwitch(a.state.next())
		case "shift+tab":
			return a, a.requestSwitch(a.state.prev())
		}

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case SwitchViewMsg:
		return a, a.requestSwitch(msg.view)

	case taskOutcomeMsg, configSavedMsg:
		// Only the generator dispatches background work, and it must see
		// the outcome even when another view is active.
		var m tea.Model
		m, cmd := a.generator.Update(msg)
		if g, ok := m.(*GeneratorModel); ok {
			a.generator = g
		}
		return a, cmd
	}

	// Route updates to the active view
	var cmd tea.Cmd
	switch a.state {
	case generatorView:
		var m tea.Model
		m, cmd = a.generator.Update(msg)
		if g, ok := m.(*GeneratorModel); ok {
			a.generator = g
		}
	case promptEditorView:
		var m tea.Model
		m, cmd = a.editor.Update(msg)
		if e, ok := m.(*PromptEditorModel); ok {
			a.editor = e
		}
	case systemPromptsView:
		var m tea.Model
		m, cmd = a.prompts.Update(msg)
		if p, ok := m.(*SystemPromptsModel); ok {
			a.prompts = p
		}
	case settingsView:
		var m tea.Model
		m, cmd = a.settings.Update(msg)
		if s, ok := m.(*SettingsModel); ok {
			a.settings = s
		}
	}

	return a, cmd
}

// requestSwitch gates a navigation on the dirty state of the session the
// current view is responsible for. The target view does not change until
// the user confirms; a decline keeps the current view exactly as it was.
func (a *App) requestSwitch(target sessionState) tea.Cmd {
	if target == a.state || a.confirm.Active() {
		return nil
	}

	if sess := a.gateSession(a.state, target); sess != nil && sess.Dirty() {
		a.confirm.Show("Leave with unsaved changes?", true,
			func() tea.Cmd { return a.switchTo(target) },
			func() tea.Cmd { return nil },
		)
		return nil
	}

	return a.switchTo(target)
}

// gateSession picks the session whose unsaved work a transition away from
// view "from" would put at risk. The generator writes through the shared
// binding, so leaving it anywhere but the prompt editor gates on the
// editor session too.
func (a *App) gateSession(from, to sessionState) *session.Session {
	switch from {
	case promptEditorView:
		return a.env.Editor
	case systemPromptsView:
		return a.env.Presets
	case generatorView:
		if to != promptEditorView {
			return a.env.Editor
		}
	}
	return nil
}

func (a *App) switchTo(target sessionState) tea.Cmd {
	a.state = target
	a.statusMsg = ""
	switch target {
	case promptEditorView:
		return a.editor.Entered()
	case systemPromptsView:
		return a.prompts.Entered()
	case settingsView:
		a.settings.Entered()
	}
	return nil
}

func (a *App) requestQuit() tea.Cmd {
	if a.env.Editor.Dirty() || a.env.Presets.Dirty() {
		a.confirm.Show("Quit and discard unsaved changes?", true,
			func() tea.Cmd { return tea.Quit },
			func() tea.Cmd { return nil },
		)
		return nil
	}
	return tea.Quit
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var content string
	switch a.state {
	case generatorView:
		content = a.generator.View()
	case promptEditorView:
		content = a.editor.View()
	case systemPromptsView:
		content = a.prompts.View()
	case settingsView:
		content = a.settings.View()
	default:
		content = "Unknown view"
	}

	sections := []string{a.renderTabs(), content}

	if a.confirm.Active() {
		sections = append(sections, a.confirm.ViewWithWidth(a.width))
	}
	if a.statusMsg != "" {
		sections = append(sections, statusStyle.Render(a.statusMsg))
	}

	return lipgloss.JoinVertical(lipgloss.Top, sections...)
}

func (a *App) renderTabs() string {
	tabs := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		if sessionState(i) == a.state {
			tabs = append(tabs, tabActiveStyle.Render(name))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
