package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ziadkadry99/llm-sidecar/internal/llm"
)

// Completer is the part of the LLM facade the handlers need.
type Completer interface {
	ChatCompletion(ctx context.Context, req llm.Request) (*llm.Response, error)
	ChatCompletionStream(ctx context.Context, req llm.Request) (llm.ChatStream, error)
	TestConnection(ctx context.Context) bool
}

// StreamResult is the data of a streamed requestLLM command.
type StreamResult struct {
	Content   string   `json:"content"`
	Fragments []string `json:"fragments"`
}

// ConnectionResult is the data of a testConnection command.
type ConnectionResult struct {
	Connected bool `json:"connected"`
}

// Dispatcher resolves commands to handlers and contains every failure
// inside the returned Response.
type Dispatcher struct {
	llm    Completer
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher backed by c.
func NewDispatcher(c Completer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{llm: c, logger: logger}
}

// Dispatch runs cmd and returns its response. It never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "id", cmd.ID, "func", cmd.Func, "panic", r)
			resp = Failure(cmd.ID, fmt.Sprint(r))
		}
	}()

	data, err := d.handle(ctx, cmd)
	if err != nil {
		d.logger.Debug("command failed", "id", cmd.ID, "func", cmd.Func, "error", err)
		return Failure(cmd.ID, err.Error())
	}

	resp, err = Success(cmd.ID, data)
	if err != nil {
		return Failure(cmd.ID, err.Error())
	}
	return resp
}

func (d *Dispatcher) handle(ctx context.Context, cmd Command) (any, error) {
	switch cmd.Func {
	case FuncRequestLLM:
		var req llm.Request
		if err := decodeParams(cmd, &req); err != nil {
			return nil, err
		}
		if err := req.Validate(); err != nil {
			return nil, &ParamsError{Func: cmd.Func, Err: err}
		}
		return d.requestLLM(ctx, req)
	case FuncTestConnection:
		return ConnectionResult{Connected: d.llm.TestConnection(ctx)}, nil
	default:
		return nil, &UnsupportedFuncError{Func: cmd.Func}
	}
}

func (d *Dispatcher) requestLLM(ctx context.Context, req llm.Request) (any, error) {
	if !req.Stream {
		return d.llm.ChatCompletion(ctx, req)
	}

	stream, err := d.llm.ChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	fragments, err := llm.Collect(stream)
	if err != nil {
		return nil, err
	}
	if fragments == nil {
		fragments = []string{}
	}
	return StreamResult{
		Content:   strings.Join(fragments, ""),
		Fragments: fragments,
	}, nil
}

// decodeParams unmarshals cmd.Params into v. Absent params decode as {}.
func decodeParams(cmd Command, v any) error {
	params := bytes.TrimSpace(cmd.Params)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		params = []byte("{}")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &ParamsError{Func: cmd.Func, Err: err}
	}
	return nil
}
