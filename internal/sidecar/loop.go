package sidecar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultChunkSize = 32 * 1024

// Handler turns one command into one response.
type Handler interface {
	Dispatch(ctx context.Context, cmd Command) Response
}

// Exchange is one processed line. Command is nil when the line did not decode.
type Exchange struct {
	Line     []byte
	Command  *Command
	Response Response
	Duration time.Duration
}

// Observer is notified after each response has been written.
type Observer interface {
	Observe(ctx context.Context, ex Exchange)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ex Exchange)

func (f ObserverFunc) Observe(ctx context.Context, ex Exchange) { f(ctx, ex) }

// Loop reads newline-delimited commands and writes one response line per
// non-blank input line, strictly in input order.
type Loop struct {
	handler   Handler
	logger    *slog.Logger
	observer  Observer
	newID     func() string
	chunkSize int
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithObserver registers an observer for processed lines.
func WithObserver(o Observer) Option {
	return func(l *Loop) { l.observer = o }
}

// WithIDGenerator replaces the generator of ids for undecodable lines.
func WithIDGenerator(fn func() string) Option {
	return func(l *Loop) { l.newID = fn }
}

// WithChunkSize sets the read buffer size.
func WithChunkSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.chunkSize = n
		}
	}
}

// NewLoop creates a Loop dispatching to h.
func NewLoop(h Handler, opts ...Option) *Loop {
	l := &Loop{
		handler:   h,
		logger:    slog.Default(),
		newID:     uuid.NewString,
		chunkSize: defaultChunkSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run processes r until it reaches end of stream or ctx is cancelled, both
// of which return nil. An unterminated trailing line at end of stream is
// discarded. Read errors other than EOF and write errors are returned.
func (l *Loop) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go l.read(ctx, r, chunks, readErr)

	var buf []byte
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("sidecar loop cancelled")
			return nil

		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				if len(bytes.TrimSpace(buf)) > 0 {
					l.logger.Warn("discarding unterminated line at end of input", "bytes", len(buf))
				}
				l.logger.Debug("sidecar input closed")
				return nil
			}
			return fmt.Errorf("reading commands: %w", err)

		case chunk := <-chunks:
			buf = append(buf, chunk...)
			lines := bytes.Split(buf, []byte{'\n'})
			// The last element is the partial line after the final newline.
			buf = append([]byte(nil), lines[len(lines)-1]...)

			for _, line := range lines[:len(lines)-1] {
				if len(bytes.TrimSpace(line)) == 0 {
					continue
				}
				if err := l.process(ctx, line, w); err != nil {
					return err
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		}
	}
}

// process handles one complete line. Only write failures are returned.
func (l *Loop) process(ctx context.Context, line []byte, w io.Writer) error {
	start := time.Now()

	var (
		cmdp *Command
		resp Response
	)
	cmd, err := DecodeCommand(line)
	if err != nil {
		resp = Failure(l.newID(), "failed to parse command: "+err.Error())
		l.logger.Warn("undecodable command", "id", resp.ID, "error", err)
	} else {
		cmdp = &cmd
		resp = l.handler.Dispatch(ctx, cmd)
	}

	// A cancellation that lands during dispatch suppresses the response.
	if ctx.Err() != nil {
		return nil
	}

	out, err := EncodeResponse(resp)
	if err != nil {
		// Data is already valid JSON, so this only fails on a broken handler.
		out, err = EncodeResponse(Failure(resp.ID, err.Error()))
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}

	if l.observer != nil {
		l.observer.Observe(ctx, Exchange{
			Line:     append([]byte(nil), line...),
			Command:  cmdp,
			Response: resp,
			Duration: time.Since(start),
		})
	}
	return nil
}

// read forwards raw chunks from r until it fails. The terminal error,
// io.EOF included, is delivered on errc after every chunk was taken.
func (l *Loop) read(ctx context.Context, r io.Reader, chunks chan<- []byte, errc chan<- error) {
	for {
		p := make([]byte, l.chunkSize)
		n, err := r.Read(p)
		if n > 0 {
			select {
			case chunks <- p[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errc <- err
			return
		}
	}
}
