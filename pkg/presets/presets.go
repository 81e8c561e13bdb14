// Package presets stores named system prompt templates as plain text files.
// One distinguished preset, default.txt, always exists and can never be
// deleted or overwritten through "save as".
package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

const DefaultName = "default.txt"

var (
	ErrNotFound         = errors.New("preset not found")
	ErrDefaultProtected = errors.New("the default preset cannot be deleted or overwritten")
)

const defaultContent = `You are provided with a collection of example text prompts.
Your task is to analyze these examples and determine their structure, wording patterns, and overall style.

Based on this analysis, generate a **new** text prompt that follows the same format and style as the provided examples.

Your response must:
- Match the format and style of the example prompts.
- Use common words, phrases, and patterns found in the examples.
- Be clear, coherent, and consistent with the example prompts.
- NOT introduce any new or unrelated styles.
- **ONLY return the generated text prompt. Do not include explanations, reasoning, or additional text.**

Example Text Prompts:
{example_text}

User Input:
{user_prompt}`

// EnsureDefault creates the presets directory and the default preset when
// either is missing.
func EnsureDefault() error {
	dir := files.PromptsPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create presets directory: %w", err)
	}

	path := filepath.Join(dir, DefaultName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return files.WriteText(path, defaultContent)
	}
	return nil
}

// Path returns the on-disk location of a preset. The .txt extension is
// added when absent so preset names and filenames stay interchangeable.
func Path(name string) string {
	return filepath.Join(files.PromptsPath(), normalize(name))
}

// List returns the available preset filenames with the default preset
// first when present.
func List() ([]string, error) {
	names, err := files.ListTextFiles(files.PromptsPath())
	if err != nil {
		return nil, err
	}

	for i, name := range names {
		if name == DefaultName {
			names = append(names[:i], names[i+1:]...)
			names = append([]string{DefaultName}, names...)
			break
		}
	}

	return names, nil
}

func Load(name string) (string, error) {
	path := Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, normalize(name))
	}
	return files.ReadText(path)
}

// Save writes a preset in place. Saving changes to an existing preset,
// including the default, is allowed.
func Save(name string, text string) error {
	return files.WriteText(Path(name), text)
}

// SaveAs creates a new preset and refuses to shadow the default.
func SaveAs(name string, text string) error {
	if isDefault(name) {
		return ErrDefaultProtected
	}
	return Save(name, text)
}

// Delete removes a preset. The default preset is rejected before any
// filesystem access.
func Delete(name string) error {
	if name == "" || isDefault(name) {
		return ErrDefaultProtected
	}

	path := Path(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, normalize(name))
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete preset %s: %w", name, err)
	}
	return nil
}

func normalize(name string) string {
	if !strings.HasSuffix(name, ".txt") {
		return name + ".txt"
	}
	return name
}

func isDefault(name string) bool {
	return strings.EqualFold(normalize(name), DefaultName)
}
