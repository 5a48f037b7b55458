package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

const defaultStopTimeout = 5 * time.Second

// ProcessConfig describes how to launch the sidecar executable.
type ProcessConfig struct {
	Path string
	Args []string
	// Env is appended to the current environment.
	Env []string
	Dir string
	// StopTimeout bounds how long Stop waits for a clean exit before killing.
	StopTimeout time.Duration
}

// Process manages one sidecar child process and its connection.
type Process struct {
	cfg    ProcessConfig
	logger *slog.Logger

	mu      sync.RWMutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	conn    *Conn
	done    chan struct{}
	exitErr error
}

// NewProcess creates a stopped Process.
func NewProcess(cfg ProcessConfig, logger *slog.Logger) *Process {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Process{cfg: cfg, logger: logger}
}

// Start launches the sidecar with piped stdio. Cancelling ctx kills it.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running() {
		return fmt.Errorf("sidecar already running (pid %d)", p.cmd.Process.Pid)
	}

	cmd := exec.CommandContext(ctx, p.cfg.Path, p.cfg.Args...)
	cmd.Dir = p.cfg.Dir
	if len(p.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), p.cfg.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		_ = stderr.Close()
		return fmt.Errorf("start sidecar: %w", err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.conn = NewConn(stdout, stdin, p.logger)
	p.done = make(chan struct{})
	p.exitErr = nil

	stderrDone := make(chan struct{})
	go p.drainStderr(stderr, stderrDone)
	go p.waitForExit(cmd, p.conn, stderrDone, p.done)

	p.logger.Debug("sidecar started", "path", p.cfg.Path, "pid", cmd.Process.Pid)
	return nil
}

// Stop closes the sidecar's stdin so it exits on end of input, and kills
// it if it has not exited within the stop timeout.
func (p *Process) Stop() error {
	p.mu.Lock()
	if !p.running() {
		p.mu.Unlock()
		return nil
	}
	cmd, stdin, done := p.cmd, p.stdin, p.done
	p.mu.Unlock()

	_ = stdin.Close()

	select {
	case <-done:
	case <-time.After(p.cfg.StopTimeout):
		p.logger.Warn("sidecar did not exit, killing", "pid", cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-done
	}

	p.logger.Debug("sidecar stopped", "pid", cmd.Process.Pid)
	return p.ExitErr()
}

// IsRunning reports whether the child process is alive.
func (p *Process) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running()
}

func (p *Process) running() bool {
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done is closed when the child process exits.
func (p *Process) Done() <-chan struct{} {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.done
}

// ExitErr returns the error from the last exit, if any.
func (p *Process) ExitErr() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Conn returns the connection of the running sidecar.
func (p *Process) Conn() (*Conn, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running() {
		return nil, ErrNotRunning
	}
	return p.conn, nil
}

// Call issues one command on the running sidecar.
func (p *Process) Call(ctx context.Context, fn sidecar.Func, params any) (json.RawMessage, error) {
	conn, err := p.Conn()
	if err != nil {
		return nil, err
	}
	return conn.Call(ctx, fn, params)
}

// waitForExit reaps the child once its output has been fully read.
func (p *Process) waitForExit(cmd *exec.Cmd, conn *Conn, stderrDone <-chan struct{}, done chan<- struct{}) {
	<-conn.Done()
	<-stderrDone
	err := cmd.Wait()

	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()

	if err != nil {
		p.logger.Debug("sidecar exited", "error", err)
	}
	close(done)
}

// drainStderr forwards the sidecar's log lines.
func (p *Process) drainStderr(stderr io.Reader, done chan<- struct{}) {
	defer close(done)
	sc := bufio.NewScanner(stderr)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.logger.Debug("sidecar stderr", "line", sc.Text())
	}
	// Keep the pipe flowing past an oversized line.
	_, _ = io.Copy(io.Discard, stderr)
}
