package presets

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

func setup(t *testing.T) {
	t.Helper()
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldWd) })
	os.Chdir(tempDir)
	if err := files.InitProjectStructure(); err != nil {
		t.Fatalf("InitProjectStructure failed: %v", err)
	}
	if err := EnsureDefault(); err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}
}

func TestEnsureDefaultCreatesPreset(t *testing.T) {
	setup(t)

	content, err := Load(DefaultName)
	if err != nil {
		t.Fatalf("Load(default) failed: %v", err)
	}
	for _, placeholder := range []string{"{example_text}", "{user_prompt}"} {
		if !strings.Contains(content, placeholder) {
			t.Errorf("Default preset missing placeholder %s", placeholder)
		}
	}
}

func TestEnsureDefaultDoesNotOverwrite(t *testing.T) {
	setup(t)

	if err := Save(DefaultName, "customized default"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := EnsureDefault(); err != nil {
		t.Fatalf("EnsureDefault failed: %v", err)
	}

	content, _ := Load(DefaultName)
	if content != "customized default" {
		t.Errorf("EnsureDefault overwrote an existing default preset")
	}
}

func TestListDefaultFirst(t *testing.T) {
	setup(t)

	if err := SaveAs("aardvark", "a"); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if err := SaveAs("zebra", "z"); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	names, err := List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 3 {
		t.Fatalf("Expected 3 presets, got %v", names)
	}
	if names[0] != DefaultName {
		t.Errorf("Expected default preset first, got %v", names)
	}
	if names[1] != "aardvark.txt" || names[2] != "zebra.txt" {
		t.Errorf("Expected remaining presets in lexical order, got %v", names)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setup(t)

	if err := SaveAs("concise", "Be concise."); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	content, err := Load("concise")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if content != "Be concise." {
		t.Errorf("Expected %q, got %q", "Be concise.", content)
	}

	// Name and filename are interchangeable.
	content, err = Load("concise.txt")
	if err != nil {
		t.Fatalf("Load by filename failed: %v", err)
	}
	if content != "Be concise." {
		t.Errorf("Expected %q, got %q", "Be concise.", content)
	}
}

func TestLoadMissingPreset(t *testing.T) {
	setup(t)

	_, err := Load("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveAsRejectsDefault(t *testing.T) {
	setup(t)

	for _, name := range []string{"default.txt", "default", "DEFAULT.TXT"} {
		if err := SaveAs(name, "overwrite attempt"); !errors.Is(err, ErrDefaultProtected) {
			t.Errorf("SaveAs(%q) should be rejected, got %v", name, err)
		}
	}

	content, _ := Load(DefaultName)
	if content == "overwrite attempt" {
		t.Error("Default preset was overwritten despite the guard")
	}
}

func TestDeleteRejectsDefault(t *testing.T) {
	setup(t)

	if err := Delete(DefaultName); !errors.Is(err, ErrDefaultProtected) {
		t.Errorf("Delete(default) should be rejected, got %v", err)
	}
	if _, err := os.Stat(Path(DefaultName)); err != nil {
		t.Errorf("Default preset file should still exist: %v", err)
	}
}

func TestDeletePreset(t *testing.T) {
	setup(t)

	if err := SaveAs("scratch", "s"); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if err := Delete("scratch"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := Load("scratch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected preset gone, got %v", err)
	}

	if err := Delete("scratch"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deleting a missing preset should report ErrNotFound, got %v", err)
	}
}
