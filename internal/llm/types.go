package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the roles accepted by the chat API.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// FinishReasonStop is the only finish reason reported by ChatCompletion.
const FinishReasonStop = "stop"

// Defaults applied when a request leaves temperature or max tokens unset.
// These are never merged with the configured defaults in Config.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// Config is the connection configuration fetched from the configuration
// collaborator. Temperature and MaxTokens are informational only.
type Config struct {
	APIKey      string   `json:"apiKey"`
	BaseURL     string   `json:"baseUrl"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
}

// Message represents a single message in a conversation. Order matters.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request with optional per-call overrides.
type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"maxTokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Response is the result of a one-shot chat completion.
type Response struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finishReason"`
}

// ChoiceMessage is the generated message of a Choice.
type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage holds token accounting. Each count is optional because
// OpenAI-compatible backends do not always report them. A count the
// backend reports as 0 is indistinguishable from a missing one and is
// left nil.
type Usage struct {
	InputTokens  *int `json:"inputTokens,omitempty"`
	OutputTokens *int `json:"outputTokens,omitempty"`
	TotalTokens  *int `json:"totalTokens,omitempty"`
}

// StreamChunk is one incremental delta received while streaming.
type StreamChunk struct {
	ID      string         `json:"id"`
	Choices []StreamChoice `json:"choices"`
}

// StreamChoice is the delta of a single choice within a StreamChunk.
type StreamChoice struct {
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finishReason,omitempty"`
}

// StreamDelta carries the partial role and content of a StreamChoice.
type StreamDelta struct {
	Role    Role   `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}
