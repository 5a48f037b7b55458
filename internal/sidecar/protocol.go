package sidecar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Func names a supported sidecar operation. The set is closed; see Valid.
type Func string

const (
	FuncRequestLLM     Func = "requestLLM"
	FuncTestConnection Func = "testConnection"
)

// Funcs lists every supported operation.
var Funcs = []Func{FuncRequestLLM, FuncTestConnection}

// Valid reports whether f is a supported operation. Matching is case-sensitive.
func (f Func) Valid() bool {
	switch f {
	case FuncRequestLLM, FuncTestConnection:
		return true
	}
	return false
}

// Command is one request line.
type Command struct {
	ID     string          `json:"id"`
	Func   Func            `json:"func"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one reply line. Data is set iff Success; Error otherwise.
type Response struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

const unknownError = "unknown error"

// Success builds a successful response carrying v as data. A nil v
// encodes as JSON null so data is always present.
func Success(id string, v any) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("encoding result: %w", err)
	}
	return Response{ID: id, Success: true, Data: data}, nil
}

// Failure builds a failed response. An empty message is replaced by a
// generic one.
func Failure(id, msg string) Response {
	if msg == "" {
		msg = unknownError
	}
	return Response{ID: id, Success: false, Error: msg}
}

// DecodeCommand parses one line into a Command. The line must hold a
// single JSON object.
func DecodeCommand(line []byte) (Command, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return Command{}, errors.New("command must be a JSON object")
	}

	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// EncodeCommand renders cmd as one newline-terminated line.
func EncodeCommand(cmd Command) ([]byte, error) {
	return encodeLine(cmd)
}

// DecodeResponse parses one line into a Response.
func DecodeResponse(line []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(line), &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// EncodeResponse renders resp as one newline-terminated line.
func EncodeResponse(resp Response) ([]byte, error) {
	return encodeLine(resp)
}

func encodeLine(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
