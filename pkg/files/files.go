package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AppDir       = ".promptweave"
	PromptsDir   = "prompts"
	GeneratedDir = "generated"

	// AppendSeparator is written between entries of a generation output
	// file. It is only inserted when the file already has content.
	AppendSeparator = "\n\n====================\n\n"
)

func InitProjectStructure() error {
	dirs := []string{
		AppDir,
		filepath.Join(AppDir, PromptsDir),
		filepath.Join(AppDir, GeneratedDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// PromptsPath returns the directory that holds system prompt presets.
func PromptsPath() string {
	return filepath.Join(AppDir, PromptsDir)
}

// GeneratedPath returns the default directory for generation output files.
func GeneratedPath() string {
	return filepath.Join(AppDir, GeneratedDir)
}

func ReadText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

func WriteText(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// AppendGenerated appends text to the generation output file at path,
// creating the file if it does not exist. A separator precedes the text
// only when the file already exists and is non-empty.
func AppendGenerated(path string, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	needsSeparator := false
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needsSeparator = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for appending: %w", path, err)
	}
	defer f.Close()

	if needsSeparator {
		text = AppendSeparator + text
	}
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}

	return nil
}

// ListTextFiles returns the names of all .txt files directly under dir,
// in lexical order. A missing directory yields an empty list.
func ListTextFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}
