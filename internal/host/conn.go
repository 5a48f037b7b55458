package host

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

// Conn correlates commands written to a sidecar with the responses it
// prints, by id. It is safe for concurrent use.
type Conn struct {
	logger *slog.Logger

	writeMu sync.Mutex
	w       io.Writer

	mu      sync.Mutex
	pending map[string]chan sidecar.Response
	err     error
	done    chan struct{}
}

// NewConn starts reading responses from r. Commands are written to w.
func NewConn(r io.Reader, w io.Writer, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		logger:  logger,
		w:       w,
		pending: make(map[string]chan sidecar.Response),
		done:    make(chan struct{}),
	}
	go c.readLoop(r)
	return c
}

// Done is closed once the response stream has ended.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns why the response stream ended, or nil while it is open.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Send writes cmd and waits for the response carrying the same id. The
// response is returned as-is, failures included.
func (c *Conn) Send(ctx context.Context, cmd sidecar.Command) (sidecar.Response, error) {
	ch := make(chan sidecar.Response, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return sidecar.Response{}, err
	}
	if _, dup := c.pending[cmd.ID]; dup {
		c.mu.Unlock()
		return sidecar.Response{}, fmt.Errorf("command id %q already in flight", cmd.ID)
	}
	c.pending[cmd.ID] = ch
	c.mu.Unlock()

	line, err := sidecar.EncodeCommand(cmd)
	if err != nil {
		c.forget(cmd.ID)
		return sidecar.Response{}, fmt.Errorf("encoding command: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.w.Write(line)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(cmd.ID)
		return sidecar.Response{}, fmt.Errorf("writing command: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		c.forget(cmd.ID)
		return sidecar.Response{}, ctx.Err()
	case <-c.done:
		// The response may have been delivered just before the stream ended.
		select {
		case resp := <-ch:
			return resp, nil
		default:
			return sidecar.Response{}, c.Err()
		}
	}
}

// Call issues fn with params under a fresh id and returns the response
// data. A failed response is returned as *RemoteError.
func (c *Conn) Call(ctx context.Context, fn sidecar.Func, params any) (json.RawMessage, error) {
	cmd := sidecar.Command{ID: uuid.NewString(), Func: fn}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding params: %w", err)
		}
		cmd.Params = raw
	}

	resp, err := c.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RemoteError{ID: resp.ID, Func: fn, Message: resp.Error}
	}
	return resp.Data, nil
}

// CallInto is Call followed by decoding the data into T.
func CallInto[T any](ctx context.Context, c *Conn, fn sidecar.Func, params any) (T, error) {
	var out T
	data, err := c.Call(ctx, fn, params)
	if err != nil {
		return out, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return out, &InvalidResponseError{Reason: "response contains no data"}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &InvalidResponseError{Reason: "failed to parse data", Err: err}
	}
	return out, nil
}

func (c *Conn) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// readLoop delivers responses to their waiting callers. Lines that do not
// decode or match no pending id are dropped.
func (c *Conn) readLoop(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			c.deliver(line)
		}
		if err != nil {
			c.close(err)
			return
		}
	}
}

func (c *Conn) deliver(line []byte) {
	resp, err := sidecar.DecodeResponse(line)
	if err != nil {
		c.logger.Debug("dropping undecodable sidecar output", "error", err)
		return
	}

	c.mu.Lock()
	ch, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("dropping uncorrelated sidecar response", "id", resp.ID, "success", resp.Success, "error", resp.Error)
		return
	}
	ch <- resp
}

func (c *Conn) close(err error) {
	if errors.Is(err, io.EOF) {
		err = ErrClosed
	} else {
		err = fmt.Errorf("%w: %w", ErrClosed, err)
	}

	c.mu.Lock()
	c.err = err
	c.pending = make(map[string]chan sidecar.Response)
	c.mu.Unlock()
	close(c.done)
}
