package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promptweave/promptweave-cli/pkg/files"
)

const ConfigFile = "config.yaml"

// Config holds the settings the application persists between runs.
type Config struct {
	Endpoint     string `yaml:"api_endpoint"`
	APIType      string `yaml:"api_type"`
	APIKey       string `yaml:"api_key"`
	ActivePreset string `yaml:"active_prompt"`
}

func Default() *Config {
	return &Config{
		Endpoint:     "http://localhost:11434",
		APIType:      "ollama",
		APIKey:       "",
		ActivePreset: "default.txt",
	}
}

func Path() string {
	return filepath.Join(files.AppDir, ConfigFile)
}

// Load reads the configuration file, creating it with defaults when it is
// missing. A file that fails to parse is backed up with a timestamp suffix
// and replaced with defaults rather than aborting startup.
func Load() (*Config, error) {
	path := Path()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102150405"))
		// Best effort; the corrupt file is replaced either way.
		_ = os.WriteFile(backup, data, 0644)
		cfg = Default()
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if fillMissing(cfg) {
		if err := Save(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return files.WriteText(Path(), string(data))
}

// Validate checks the fields a user can break from the settings view.
func (c *Config) Validate() error {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		return fmt.Errorf("API endpoint URL cannot be empty")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return fmt.Errorf("API endpoint URL must start with http:// or https://")
	}
	return nil
}

// fillMissing backfills zero-valued fields from defaults and reports
// whether anything changed. The API key is legitimately empty.
func fillMissing(cfg *Config) bool {
	def := Default()
	changed := false
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
		changed = true
	}
	if cfg.APIType == "" {
		cfg.APIType = def.APIType
		changed = true
	}
	if cfg.ActivePreset == "" {
		cfg.ActivePreset = def.ActivePreset
		changed = true
	}
	return changed
}
