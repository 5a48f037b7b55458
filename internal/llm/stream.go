package llm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// openAIStream pulls deltas from a go-openai stream one at a time.
type openAIStream struct {
	stream *openai.ChatCompletionStream
	logger *slog.Logger

	chunk StreamChunk
	text  string
	err   error
	done  bool
}

func newOpenAIStream(stream *openai.ChatCompletionStream, logger *slog.Logger) *openAIStream {
	return &openAIStream{stream: stream, logger: logger}
}

func (s *openAIStream) Next() bool {
	if s.done {
		return false
	}

	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			s.finish(nil)
			return false
		}
		if err != nil {
			s.logger.Error("chat completion stream failed", "error", err)
			s.finish(fmt.Errorf("chat completion stream: %w", err))
			return false
		}

		chunk := toStreamChunk(resp)
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}

		s.chunk = chunk
		s.text = chunk.Choices[0].Delta.Content
		return true
	}
}

func (s *openAIStream) Text() string { return s.text }

func (s *openAIStream) Chunk() StreamChunk { return s.chunk }

func (s *openAIStream) Err() error { return s.err }

func (s *openAIStream) Close() error {
	s.done = true
	s.text = ""
	return s.stream.Close()
}

func (s *openAIStream) finish(err error) {
	s.done = true
	s.err = err
	s.text = ""
}

func toStreamChunk(resp openai.ChatCompletionStreamResponse) StreamChunk {
	chunk := StreamChunk{ID: resp.ID}
	for _, choice := range resp.Choices {
		chunk.Choices = append(chunk.Choices, StreamChoice{
			Delta: StreamDelta{
				Role:    Role(choice.Delta.Role),
				Content: choice.Delta.Content,
			},
			FinishReason: string(choice.FinishReason),
		})
	}
	return chunk
}

// Collect drains stream and returns every fragment in order. The stream
// is closed on return. Fragments read before a failure are returned
// alongside the error.
func Collect(stream ChatStream) ([]string, error) {
	defer stream.Close()

	var fragments []string
	for stream.Next() {
		fragments = append(fragments, stream.Text())
	}
	return fragments, stream.Err()
}
