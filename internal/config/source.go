package config

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// ErrMissingAPIKey is returned by the connection probe when no API key is configured.
var ErrMissingAPIKey = errors.New("API key is not set")

// Source serves the LLM configuration from the config file and environment.
// Every call re-reads the file, so edits are visible to the next InitClient.
type Source struct {
	path string
}

// NewSource creates a Source reading the config file at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// GetLLMConfig loads and validates the configuration and returns its LLM section.
func (s *Source) GetLLMConfig(ctx context.Context) (llm.Config, error) {
	cfg, err := Load(s.path)
	if err != nil {
		return llm.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return llm.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg.LLM.ToLLM(), nil
}

// TestLLMConnection checks that an API key is configured and that the
// backend answers a models-list request with it.
func (s *Source) TestLLMConnection(ctx context.Context) error {
	cfg, err := s.GetLLMConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("connection failed: %w", ErrMissingAPIKey)
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	if _, err := openai.NewClientWithConfig(apiCfg).ListModels(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}

// ToLLM converts the file representation to the facade's Config.
func (c LLMConfig) ToLLM() llm.Config {
	return llm.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
	}
}
