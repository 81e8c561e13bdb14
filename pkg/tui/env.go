package tui

import (
	"github.com/promptweave/promptweave-cli/pkg/api"
	"github.com/promptweave/promptweave-cli/pkg/config"
	"github.com/promptweave/promptweave-cli/pkg/presets"
	"github.com/promptweave/promptweave-cli/pkg/session"
	"github.com/promptweave/promptweave-cli/pkg/tasks"
)

// Env is the state shared across views: the live config, the task
// coordinator, the two edit sessions, and the binding that ties the
// generation save target to the prompt editor session.
type Env struct {
	Config      *config.Config
	Coordinator *tasks.Coordinator
	Editor      *session.Session
	Presets     *session.Session
	Binding     *session.Binding
}

func NewEnv(cfg *config.Config) *Env {
	editor := session.New()
	return &Env{
		Config:      cfg,
		Coordinator: tasks.New(),
		Editor:      editor,
		Presets:     session.New(),
		Binding:     session.NewBinding(editor, nil),
	}
}

// Client builds an API client from the current config. An unrecognized
// api_type is passed through so the client reports it on first use
// instead of silently substituting a backend.
func (e *Env) Client() *api.Client {
	t, err := api.ParseType(e.Config.APIType)
	if err != nil {
		t = api.Type(e.Config.APIType)
	}
	return api.NewClient(e.Config.Endpoint, t, e.Config.APIKey)
}

// ActiveTemplate reads the active system prompt preset from disk, so
// edits saved in the presets view take effect on the next generation.
func (e *Env) ActiveTemplate() (string, error) {
	return presets.Load(e.Config.ActivePreset)
}
