package config

import (
	"os"
	"strings"
	"testing"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

func chtemp(t *testing.T) {
	t.Helper()
	tempDir := t.TempDir()
	oldWd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldWd) })
	os.Chdir(tempDir)
	if err := files.InitProjectStructure(); err != nil {
		t.Fatalf("InitProjectStructure failed: %v", err)
	}
}

func TestLoadCreatesDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Endpoint != "http://localhost:11434" {
		t.Errorf("Expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.APIType != "ollama" {
		t.Errorf("Expected default api type, got %q", cfg.APIType)
	}
	if cfg.ActivePreset != "default.txt" {
		t.Errorf("Expected default active preset, got %q", cfg.ActivePreset)
	}

	if _, err := os.Stat(Path()); err != nil {
		t.Errorf("Expected config file to be created: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	chtemp(t)

	cfg := &Config{
		Endpoint:     "http://127.0.0.1:1234",
		APIType:      "openai",
		APIKey:       "sk-test",
		ActivePreset: "terse.txt",
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Round trip mismatch: saved %+v, loaded %+v", cfg, got)
	}
}

func TestLoadCorruptConfigBacksUp(t *testing.T) {
	chtemp(t)

	if err := os.WriteFile(Path(), []byte("{not yaml: ["), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != Default().Endpoint {
		t.Errorf("Expected defaults after corrupt config, got %+v", cfg)
	}

	entries, _ := os.ReadDir(files.AppDir)
	foundBackup := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ConfigFile+".") && strings.HasSuffix(e.Name(), ".bak") {
			foundBackup = true
		}
	}
	if !foundBackup {
		t.Error("Expected a .bak backup of the corrupt config")
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	chtemp(t)

	partial := "api_endpoint: http://example.test:11434\n"
	if err := os.WriteFile(Path(), []byte(partial), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != "http://example.test:11434" {
		t.Errorf("Loaded endpoint overwritten: %q", cfg.Endpoint)
	}
	if cfg.APIType != "ollama" || cfg.ActivePreset != "default.txt" {
		t.Errorf("Missing fields not backfilled: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{"valid http", "http://localhost:11434", false},
		{"valid https", "https://api.example.com", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"missing scheme", "localhost:11434", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Endpoint = tt.endpoint
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
		})
	}
}
