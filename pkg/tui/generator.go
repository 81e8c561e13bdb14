package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/promptweave/promptweave-cli/pkg/api"
	"github.com/promptweave/promptweave-cli/pkg/files"
	"github.com/promptweave/promptweave-cli/pkg/session"
	"github.com/promptweave/promptweave-cli/pkg/tasks"
	"github.com/promptweave/promptweave-cli/pkg/utils"
)

// generatorInput tracks which path prompt, if any, currently owns the
// keyboard.
type generatorInput int

const (
	inputNone generatorInput = iota
	inputExampleFile
	inputSaveTarget
)

// GeneratorModel drives the main view: pick a model, load an example
// file, describe the goal, generate, then append the result to the save
// target file.
type GeneratorModel struct {
	env *Env

	models     []string
	modelIndex int

	goal        textarea.Model
	pathInput   textinput.Model
	inputMode   generatorInput
	pendingSave bool

	exampleName string
	exampleText string

	output    viewport.Model
	generated string

	busy bool
	spin spinner.Model

	confirm *ConfirmationModel
	width   int
	height  int
}

func NewGeneratorModel(env *Env) *GeneratorModel {
	goal := textarea.New()
	goal.Placeholder = "Describe the prompt you want..."
	goal.CharLimit = 0
	goal.ShowLineNumbers = false
	goal.SetHeight(4)
	goal.Focus()

	pathInput := textinput.New()
	pathInput.CharLimit = 0

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = titleStyle

	return &GeneratorModel{
		env:       env,
		goal:      goal,
		pathInput: pathInput,
		output:    viewport.New(80, 10),
		spin:      sp,
		confirm:   NewConfirmation(),
	}
}

func (m *GeneratorModel) Init() tea.Cmd {
	return m.refreshModels()
}

func (m *GeneratorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.goal.SetWidth(width - 4)
	m.pathInput.Width = width - 20
	m.output.Width = width - 4
	m.output.Height = max(height-16, 3)
	if m.generated != "" {
		m.output.SetContent(wordwrap.String(m.generated, m.output.Width))
	}
}

func (m *GeneratorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskOutcomeMsg:
		return m, m.handleOutcome(msg.outcome)

	case configSavedMsg:
		return m, m.refreshModels()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.confirm.Active() {
			return m, m.confirm.Update(msg)
		}
		if m.inputMode != inputNone {
			return m, m.updatePathInput(msg)
		}
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *GeneratorModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+r":
		return m.refreshModels()

	case "ctrl+n":
		m.cycleModel(1)
		return nil

	case "ctrl+p":
		m.cycleModel(-1)
		return nil

	case "ctrl+e":
		m.startPathInput(inputExampleFile, m.examplePlaceholder())
		return nil

	case "ctrl+g":
		return m.generate()

	case "ctrl+s":
		return m.saveGenerated()

	case "ctrl+t":
		m.startPathInput(inputSaveTarget, m.targetPlaceholder())
		return nil

	case "ctrl+y":
		if m.generated == "" {
			return statusCmd("Nothing to copy yet")
		}
		if err := clipboard.WriteAll(m.generated); err != nil {
			return statusCmd("Clipboard copy failed: %v", err)
		}
		return statusCmd("Copied generated prompt to clipboard")

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.goal, cmd = m.goal.Update(msg)
	return cmd
}

func (m *GeneratorModel) startPathInput(mode generatorInput, placeholder string) {
	m.inputMode = mode
	m.pathInput.Placeholder = placeholder
	m.pathInput.SetValue("")
	m.pathInput.Focus()
	m.goal.Blur()
}

func (m *GeneratorModel) stopPathInput() {
	m.inputMode = inputNone
	m.pendingSave = false
	m.pathInput.Blur()
	m.goal.Focus()
}

func (m *GeneratorModel) examplePlaceholder() string {
	if m.exampleName != "" {
		return m.exampleName
	}
	return "path to example file"
}

func (m *GeneratorModel) targetPlaceholder() string {
	if t := m.env.Binding.Target(); t != "" {
		return t
	}
	return filepath.Join(files.GeneratedPath(), "prompts.txt")
}

func (m *GeneratorModel) updatePathInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.stopPathInput()
		return nil

	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		mode := m.inputMode
		wasPendingSave := m.pendingSave
		m.stopPathInput()
		if path == "" {
			return nil
		}
		switch mode {
		case inputExampleFile:
			return m.loadExampleFile(path)
		case inputSaveTarget:
			return m.applyTarget(path, wasPendingSave)
		}
		return nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return cmd
}

func (m *GeneratorModel) loadExampleFile(path string) tea.Cmd {
	text, err := files.ReadText(path)
	if err != nil {
		return statusCmd("Could not read example file: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return statusCmd("Example file %s is empty", filepath.Base(path))
	}
	m.exampleName = filepath.Base(path)
	m.exampleText = text
	return statusCmd("Loaded examples from %s", m.exampleName)
}

// applyTarget routes a new save target through the binding and, when the
// editor holds unsaved work for another file, runs the reconciliation
// choice before any pending append continues.
func (m *GeneratorModel) applyTarget(path string, pendingSave bool) tea.Cmd {
	err := m.env.Binding.SetTarget(path)
	switch {
	case errors.Is(err, session.ErrDeclined):
		m.confirm.Show(
			fmt.Sprintf("Editor has unsaved changes. Discard them and load %s?", filepath.Base(path)),
			true,
			func() tea.Cmd {
				if err := m.env.Binding.AdoptTarget(); err != nil {
					return statusCmd("Could not load target: %v", err)
				}
				if pendingSave {
					return m.saveGenerated()
				}
				return statusCmd("Save target set to %s", filepath.Base(path))
			},
			func() tea.Cmd {
				if pendingSave {
					return m.saveGenerated()
				}
				return statusCmd("Editor kept its changes (out of sync with %s)", filepath.Base(path))
			},
		)
		return nil

	case err != nil:
		return statusCmd("Could not set save target: %v", err)
	}

	if pendingSave {
		return m.saveGenerated()
	}
	return statusCmd("Save target set to %s", filepath.Base(path))
}

func (m *GeneratorModel) refreshModels() tea.Cmd {
	if m.busy {
		return statusCmd("A request is already running")
	}

	client := m.env.Client()
	h := m.env.Coordinator.Dispatch(tasks.KindFetchModels, func() (tasks.Result, error) {
		models, err := client.FetchModels(context.Background())
		if err != nil {
			return tasks.Result{}, err
		}
		return tasks.Result{Models: models}, nil
	})

	m.busy = true
	return tea.Batch(m.spin.Tick, awaitTask(h), statusCmd("Fetching models..."))
}

func (m *GeneratorModel) generate() tea.Cmd {
	if m.busy {
		return statusCmd("A request is already running")
	}

	model := m.selectedModel()
	if model == "" {
		return statusCmd("No model selected (ctrl+r to fetch models)")
	}
	if m.exampleText == "" {
		return statusCmd("Load an example file first (ctrl+e)")
	}
	goal := strings.TrimSpace(m.goal.Value())
	if goal == "" {
		return statusCmd("Describe what to generate first")
	}

	template, err := m.env.ActiveTemplate()
	if err != nil {
		return statusCmd("Could not load system prompt: %v", err)
	}

	client := m.env.Client()
	req := api.GenerateRequest{
		Model:          model,
		SystemTemplate: template,
		ExampleText:    m.exampleText,
		UserGoal:       goal,
	}

	h := m.env.Coordinator.Dispatch(tasks.KindGenerate, func() (tasks.Result, error) {
		text, err := client.Generate(context.Background(), req)
		if err != nil {
			return tasks.Result{}, err
		}
		return tasks.Result{Text: text}, nil
	})

	m.busy = true
	return tea.Batch(m.spin.Tick, awaitTask(h), statusCmd("Generating with %s...", model))
}

// handleOutcome applies a settled task outcome. The busy flag drops on
// every outcome, success or not, so the view can never wedge.
func (m *GeneratorModel) handleOutcome(out tasks.Outcome) tea.Cmd {
	m.busy = false

	if out.Err != nil {
		return statusCmd("Error: %v", out.Err)
	}

	switch out.Kind {
	case tasks.KindFetchModels:
		previous := m.selectedModel()
		m.models = out.Result.Models
		m.modelIndex = 0
		for i, name := range m.models {
			if name == previous {
				m.modelIndex = i
				break
			}
		}
		if len(m.models) == 0 {
			return statusCmd("The endpoint reported no models")
		}
		return statusCmd("%d models available", len(m.models))

	case tasks.KindGenerate:
		m.generated = utils.CleanResponse(out.Result.Text)
		m.output.SetContent(wordwrap.String(m.generated, m.output.Width))
		m.output.GotoTop()
		if m.generated == "" {
			return statusCmd("The model returned an empty response")
		}
		return statusCmd("Generation complete (ctrl+s to save, ctrl+y to copy)")
	}

	return nil
}

func (m *GeneratorModel) saveGenerated() tea.Cmd {
	if m.generated == "" {
		return statusCmd("No generated prompt to save")
	}

	if !m.env.Binding.HasTarget() {
		m.pendingSave = true
		m.inputMode = inputSaveTarget
		m.pathInput.Placeholder = m.targetPlaceholder()
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		m.goal.Blur()
		return nil
	}

	target := m.env.Binding.Target()
	err := m.env.Binding.Append(m.generated)
	switch {
	case errors.Is(err, session.ErrDeclined):
		// The append already landed on disk; the choice is only about
		// whether the editor buffer follows it.
		m.confirm.Show("Saved. Discard editor changes to show the updated file?", true,
			func() tea.Cmd {
				if err := m.env.Binding.AdoptTarget(); err != nil {
					return statusCmd("Could not reload target: %v", err)
				}
				return statusCmd("Saved to %s", filepath.Base(target))
			},
			func() tea.Cmd {
				return statusCmd("Saved to %s (editor out of sync)", filepath.Base(target))
			},
		)
		return nil

	case err != nil:
		return statusCmd("Save failed: %v", err)
	}

	return statusCmd("Saved to %s", filepath.Base(target))
}

func (m *GeneratorModel) selectedModel() string {
	if m.modelIndex < 0 || m.modelIndex >= len(m.models) {
		return ""
	}
	return m.models[m.modelIndex]
}

func (m *GeneratorModel) cycleModel(delta int) {
	if len(m.models) == 0 {
		return
	}
	m.modelIndex = (m.modelIndex + delta + len(m.models)) % len(m.models)
}

func (m *GeneratorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Generate Prompt"))
	b.WriteString("\n\n")

	model := m.selectedModel()
	if model == "" {
		model = "(none)"
	}
	b.WriteString(labelStyle.Render("Model: "))
	b.WriteString(selectedStyle.Render(model))
	if m.busy {
		b.WriteString("  " + m.spin.View())
	}
	b.WriteString("\n")

	example := m.exampleName
	if example == "" {
		example = "(none)"
	}
	b.WriteString(labelStyle.Render("Examples: "))
	b.WriteString(example)
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Save target: "))
	b.WriteString(m.renderTarget())
	b.WriteString("\n\n")

	if m.inputMode != inputNone {
		label := "Example file: "
		if m.inputMode == inputSaveTarget {
			label = "Save target: "
		}
		b.WriteString(label + m.pathInput.View())
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.goal.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.output.View())
	b.WriteString("\n")
	if m.confirm.Active() {
		b.WriteString(m.confirm.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("ctrl+g generate • ctrl+r models • ctrl+n/ctrl+p model • ctrl+e examples • ctrl+s save • ctrl+t target • ctrl+y copy"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *GeneratorModel) renderTarget() string {
	target := m.env.Binding.Target()
	if target == "" {
		return "(none)"
	}
	name := filepath.Base(target)
	if m.env.Binding.State() == session.SyncOutOfSync {
		return name + " " + outOfSyncStyle.Render("(editor out of sync)")
	}
	return name
}
