package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client adapts an OpenAI-compatible chat completion API to this
// package's message, request and response shapes. It caches the most
// recently fetched Config and the API client built from it.
type Client struct {
	source ConfigSource
	logger *slog.Logger

	mu     sync.RWMutex
	config *Config
	api    *openai.Client
}

// NewClient creates a Client backed by the given configuration source.
// No configuration is fetched until GetConfig or InitClient is called.
func NewClient(source ConfigSource) *Client {
	return &Client{
		source: source,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger used for failure reporting.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// InitClient fetches the configuration and rebuilds the API client bound
// to its base URL and API key. Calling it again picks up config changes.
func (c *Client) InitClient(ctx context.Context) error {
	cfg, err := c.GetConfig(ctx)
	if err != nil {
		return err
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	api := openai.NewClientWithConfig(apiCfg)

	c.mu.Lock()
	c.config = &cfg
	c.api = api
	c.mu.Unlock()

	c.logger.Debug("LLM client initialized", "base_url", cfg.BaseURL, "model", cfg.Model)
	return nil
}

// GetConfig fetches the current configuration, caches it and returns it.
func (c *Client) GetConfig(ctx context.Context) (Config, error) {
	cfg, err := c.source.GetLLMConfig(ctx)
	if err != nil {
		return Config{}, err
	}

	c.mu.Lock()
	c.config = &cfg
	c.mu.Unlock()
	return cfg, nil
}

// TestConnection probes the backend. Failures are logged, never returned.
func (c *Client) TestConnection(ctx context.Context) bool {
	if err := c.source.TestLLMConnection(ctx); err != nil {
		c.logger.Error("LLM connection test failed", "error", err)
		return false
	}
	return true
}

// ChatCompletion sends a one-shot chat completion request.
func (c *Client) ChatCompletion(ctx context.Context, req Request) (*Response, error) {
	api, apiReq, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		c.logger.Error("chat completion failed", "model", apiReq.Model, "error", err)
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("chat completion failed", "model", apiReq.Model, "error", ErrNoChoices)
		return nil, fmt.Errorf("chat completion: %w", ErrNoChoices)
	}

	id := resp.ID
	if id == "" {
		id = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	return &Response{
		ID: id,
		Choices: []Choice{
			{
				Message: ChoiceMessage{
					Role:    RoleAssistant,
					Content: resp.Choices[0].Message.Content,
				},
				FinishReason: FinishReasonStop,
			},
		},
		Usage: &Usage{
			InputTokens:  optionalCount(resp.Usage.PromptTokens),
			OutputTokens: optionalCount(resp.Usage.CompletionTokens),
			TotalTokens:  optionalCount(resp.Usage.TotalTokens),
		},
	}, nil
}

// ChatCompletionStream starts a streaming chat completion. Fragments are
// forwarded verbatim in arrival order; the caller must Close the stream.
func (c *Client) ChatCompletionStream(ctx context.Context, req Request) (ChatStream, error) {
	api, apiReq, err := c.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	apiReq.Stream = true

	stream, err := api.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		c.logger.Error("chat completion stream failed", "model", apiReq.Model, "error", err)
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	return newOpenAIStream(stream, c.logger), nil
}

// prepare loads the configuration when missing, checks that the API client
// exists and maps req onto the API request shape.
func (c *Client) prepare(ctx context.Context, req Request) (*openai.Client, openai.ChatCompletionRequest, error) {
	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()

	if cfg == nil {
		loaded, err := c.GetConfig(ctx)
		if err != nil {
			return nil, openai.ChatCompletionRequest{}, err
		}
		cfg = &loaded
	}

	c.mu.RLock()
	api := c.api
	c.mu.RUnlock()
	if api == nil {
		return nil, openai.ChatCompletionRequest{}, ErrClientNotInitialized
	}

	return api, toAPIRequest(req, cfg.Model), nil
}

func toAPIRequest(req Request, defaultModel string) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	temperature := float32(DefaultTemperature)
	if req.Temperature != nil {
		temperature = float32(*req.Temperature)
	}
	// go-openai omits a zero temperature from the request body.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	maxTokens := DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

func optionalCount(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
