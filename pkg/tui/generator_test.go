package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/promptweave/promptweave-cli/pkg/files"
	"github.com/promptweave/promptweave-cli/pkg/tasks"
)

func statusOf(t *testing.T, cmdMsg any) string {
	t.Helper()
	s, ok := cmdMsg.(StatusMsg)
	if !ok {
		t.Fatalf("expected StatusMsg, got %#v", cmdMsg)
	}
	return string(s)
}

func TestGeneratorBusyBlocksSecondRequest(t *testing.T) {
	app := setupApp(t)
	g := app.generator
	g.busy = true

	cmd := g.generate()
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	if got := statusOf(t, cmd()); !strings.Contains(got, "already running") {
		t.Errorf("expected busy status, got %q", got)
	}

	cmd = g.refreshModels()
	if got := statusOf(t, cmd()); !strings.Contains(got, "already running") {
		t.Errorf("expected busy status, got %q", got)
	}
}

func TestGeneratorOutcomeClearsBusy(t *testing.T) {
	app := setupApp(t)
	g := app.generator
	g.busy = true

	g.handleOutcome(tasks.Outcome{Kind: tasks.KindGenerate, Err: os.ErrDeadlineExceeded})
	if g.busy {
		t.Error("an error outcome must clear the busy flag")
	}

	g.busy = true
	g.handleOutcome(tasks.Outcome{Kind: tasks.KindGenerate, Result: tasks.Result{Text: "ok"}})
	if g.busy {
		t.Error("a success outcome must clear the busy flag")
	}
}

func TestGeneratorModelSelectionSurvivesRefresh(t *testing.T) {
	app := setupApp(t)
	g := app.generator
	g.models = []string{"alpha", "beta", "gamma"}
	g.modelIndex = 1

	g.handleOutcome(tasks.Outcome{
		Kind:   tasks.KindFetchModels,
		Result: tasks.Result{Models: []string{"beta", "delta"}},
	})
	if g.selectedModel() != "beta" {
		t.Errorf("expected previous selection kept, got %q", g.selectedModel())
	}

	g.handleOutcome(tasks.Outcome{
		Kind:   tasks.KindFetchModels,
		Result: tasks.Result{Models: []string{"delta", "epsilon"}},
	})
	if g.selectedModel() != "delta" {
		t.Errorf("expected fallback to first model, got %q", g.selectedModel())
	}
}

func TestGeneratorCleansThinkBlocks(t *testing.T) {
	app := setupApp(t)
	g := app.generator
	g.SetSize(80, 24)

	g.handleOutcome(tasks.Outcome{
		Kind:   tasks.KindGenerate,
		Result: tasks.Result{Text: "<think>internal reasoning</think>\n\nA polished prompt."},
	})
	if g.generated != "A polished prompt." {
		t.Errorf("expected cleaned response, got %q", g.generated)
	}
}

func TestGeneratorValidatesBeforeDispatch(t *testing.T) {
	app := setupApp(t)
	g := app.generator

	cmd := g.generate()
	if got := statusOf(t, cmd()); !strings.Contains(got, "model") {
		t.Errorf("expected missing-model status, got %q", got)
	}

	g.models = []string{"alpha"}
	cmd = g.generate()
	if got := statusOf(t, cmd()); !strings.Contains(got, "example") {
		t.Errorf("expected missing-examples status, got %q", got)
	}

	g.exampleText = "some examples"
	cmd = g.generate()
	if got := statusOf(t, cmd()); !strings.Contains(got, "generate") {
		t.Errorf("expected missing-goal status, got %q", got)
	}
}

func TestGeneratorSaveWritesThroughBinding(t *testing.T) {
	app := setupApp(t)
	g := app.generator
	g.generated = "first result"

	target := filepath.Join(files.GeneratedPath(), "out.txt")
	if err := app.env.Binding.SetTarget(target); err != nil {
		t.Fatalf("set target: %v", err)
	}

	if cmd := g.saveGenerated(); cmd != nil {
		cmd()
	}
	g.generated = "second result"
	if cmd := g.saveGenerated(); cmd != nil {
		cmd()
	}

	got, err := files.ReadText(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	want := "first result" + files.AppendSeparator + "second result"
	if got != want {
		t.Errorf("target content = %q, want %q", got, want)
	}
}

func TestGeneratorSaveWithoutResult(t *testing.T) {
	app := setupApp(t)
	g := app.generator

	cmd := g.saveGenerated()
	if got := statusOf(t, cmd()); !strings.Contains(got, "No generated prompt") {
		t.Errorf("expected nothing-to-save status, got %q", got)
	}
}
