package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_config_source.go -package=mocks github.com/ziadkadry99/llm-sidecar/internal/llm ConfigSource

import "context"

// ConfigSource is the configuration collaborator the Client consumes.
// It owns persistence of the LLM configuration and the connection probe.
type ConfigSource interface {
	// GetLLMConfig returns the current configuration. Errors propagate as-is.
	GetLLMConfig(ctx context.Context) (Config, error)
	// TestLLMConnection returns nil when the configured backend is reachable.
	TestLLMConnection(ctx context.Context) error
}

// ChatStream is a forward-only sequence of text fragments.
//
//	for stream.Next() {
//		fmt.Print(stream.Text())
//	}
//	if err := stream.Err(); err != nil { ... }
type ChatStream interface {
	// Next advances to the next fragment. It returns false when the
	// stream is exhausted or failed.
	Next() bool
	// Text returns the current fragment.
	Text() string
	// Chunk returns the delta the current fragment was taken from.
	Chunk() StreamChunk
	// Err returns the failure that stopped the stream, if any.
	Err() error
	// Close releases the underlying connection. It is safe to call at any point.
	Close() error
}
