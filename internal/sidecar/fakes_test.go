package sidecar_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// fakeCompleter records requests and answers from canned values.
type fakeCompleter struct {
	mu       sync.Mutex
	requests []llm.Request

	resp      *llm.Response
	err       error
	fragments []string
	streamErr error
	connected bool
	panicWith any
}

func (f *fakeCompleter) record(req llm.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
}

func (f *fakeCompleter) ChatCompletion(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.record(req)
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeCompleter) ChatCompletionStream(_ context.Context, req llm.Request) (llm.ChatStream, error) {
	f.record(req)
	if f.err != nil {
		return nil, f.err
	}
	return &sliceStream{fragments: f.fragments, err: f.streamErr}, nil
}

func (f *fakeCompleter) TestConnection(context.Context) bool { return f.connected }

// sliceStream yields fixed fragments, then fails with err if set.
type sliceStream struct {
	fragments []string
	err       error
	pos       int
	cur       string
	done      bool
	closed    bool
}

func (s *sliceStream) Next() bool {
	if s.done || s.pos >= len(s.fragments) {
		s.done = true
		return false
	}
	s.cur = s.fragments[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Text() string { return s.cur }

func (s *sliceStream) Chunk() llm.StreamChunk {
	return llm.StreamChunk{Choices: []llm.StreamChoice{{Delta: llm.StreamDelta{Content: s.cur}}}}
}

func (s *sliceStream) Err() error {
	if s.done {
		return s.err
	}
	return nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// chunkReader returns one predefined chunk per Read call.
type chunkReader struct {
	chunks []string
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }
