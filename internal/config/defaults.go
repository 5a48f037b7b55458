package config

// DefaultPath is the config file used when --config is not given.
const DefaultPath = ".llm-sidecar.yml"

const (
	defaultBaseURL = "https://api.siliconflow.cn/v1"
	defaultModel   = "Qwen/Qwen2.5-7B-Instruct"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: defaultBaseURL,
			Model:   defaultModel,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    ".llm-sidecar/journal.db",
		},
	}
}
