package config

// LogFormat selects the slog handler used for stderr output.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config is the top-level sidecar configuration, corresponding to .llm-sidecar.yml.
type Config struct {
	LLM     LLMConfig     `yaml:"llm" koanf:"llm"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
	Journal JournalConfig `yaml:"journal" koanf:"journal"`
}

// LLMConfig holds the OpenAI-compatible backend settings.
type LLMConfig struct {
	APIKey      string   `yaml:"api_key" koanf:"api_key"`
	BaseURL     string   `yaml:"base_url" koanf:"base_url"`
	Model       string   `yaml:"model" koanf:"model"`
	Temperature *float64 `yaml:"temperature,omitempty" koanf:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty" koanf:"max_tokens"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string    `yaml:"level" koanf:"level"`
	Format LogFormat `yaml:"format" koanf:"format"`
}

// JournalConfig controls the SQLite command journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	Path    string `yaml:"path" koanf:"path"`
}
