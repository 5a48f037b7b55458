package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix of override variables. Sections are separated
	// by a double underscore: LLM_SIDECAR_LLM__API_KEY -> llm.api_key.
	EnvPrefix = "LLM_SIDECAR_"

	// legacyEnvPrefix covers the variables read by the desktop backend.
	legacyEnvPrefix = "SILICONFLOW_"
)

// Load reads configuration from the given YAML file, then overlays
// environment variables. A .env file in the working directory is loaded
// first; it never overrides variables that are already set. Empty
// variables are ignored.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	_ = godotenv.Load()

	// SILICONFLOW_API_KEY -> llm.api_key, etc.
	if err := k.Load(env.ProviderWithValue(legacyEnvPrefix, ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return "llm." + strings.ToLower(strings.TrimPrefix(key, legacyEnvPrefix)), value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading legacy env: %w", err)
	}

	// LLM_SIDECAR_LOG__LEVEL -> log.level, etc.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		return strings.ReplaceAll(key, "__", "."), value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path. The file may
// hold an API key, so it is written owner-readable only.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validLogFormats is the set of recognized log formats.
var validLogFormats = map[LogFormat]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required")
	}
	if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid llm.base_url %q", c.LLM.BaseURL)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}

	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	if m := c.LLM.MaxTokens; m != nil && *m < 0 {
		return fmt.Errorf("llm.max_tokens must be non-negative")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of text, json", c.Log.Format)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	return nil
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", l.Level, err)
	}
	return level, nil
}
