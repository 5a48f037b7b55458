package host_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/llm-sidecar/internal/host"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

func TestConnCallInto(t *testing.T) {
	conn := startLoop(t)
	ctx := context.Background()

	res, err := host.CallInto[sidecar.ConnectionResult](ctx, conn, sidecar.FuncTestConnection, nil)
	require.NoError(t, err)
	assert.True(t, res.Connected)

	resp, err := host.CallInto[llm.Response](ctx, conn, sidecar.FuncRequestLLM, userParams("ping"))
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "ping", resp.Choices[0].Message.Content)
}

func TestConnRemoteErrors(t *testing.T) {
	conn := startLoop(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		fn      sidecar.Func
		params  any
		wantMsg string
	}{
		{"unsupported func", sidecar.Func("summarize"), nil, "unsupported function: summarize"},
		{"handler error", sidecar.FuncRequestLLM, userParams("fail"), "upstream rejected the request"},
		{"invalid params", sidecar.FuncRequestLLM, map[string]any{"messages": []any{}}, "invalid params for requestLLM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := conn.Call(ctx, tt.fn, tt.params)
			var remote *host.RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.fn, remote.Func)
			assert.Contains(t, remote.Message, tt.wantMsg)
		})
	}
}

func TestConnConcurrentCalls(t *testing.T) {
	conn := startLoop(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("message %d", i)
			resp, err := host.CallInto[llm.Response](ctx, conn, sidecar.FuncRequestLLM, userParams(want))
			if err != nil {
				errs <- err
				return
			}
			if got := resp.Choices[0].Message.Content; got != want {
				errs <- fmt.Errorf("got %q, want %q", got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// scriptedPeer reads commands from the connection and lets a test answer
// them by hand.
func scriptedPeer(t *testing.T) (*host.Conn, <-chan sidecar.Command, *io.PipeWriter) {
	t.Helper()
	cmdR, cmdW := io.Pipe()
	respR, respW := io.Pipe()
	t.Cleanup(func() {
		_ = cmdR.Close()
		_ = respW.Close()
	})

	cmds := make(chan sidecar.Command, 8)
	go func() {
		defer close(cmds)
		_ = sidecar.NewLoop(handlerFunc(func(_ context.Context, cmd sidecar.Command) sidecar.Response {
			cmds <- cmd
			return sidecar.Response{}
		})).Run(context.Background(), cmdR, io.Discard)
	}()

	return host.NewConn(respR, cmdW, nil), cmds, respW
}

type handlerFunc func(ctx context.Context, cmd sidecar.Command) sidecar.Response

func (f handlerFunc) Dispatch(ctx context.Context, cmd sidecar.Command) sidecar.Response {
	return f(ctx, cmd)
}

func writeResponse(t *testing.T, w io.Writer, resp sidecar.Response) {
	t.Helper()
	line, err := sidecar.EncodeResponse(resp)
	require.NoError(t, err)
	_, err = w.Write(line)
	require.NoError(t, err)
}

func TestConnDropsUncorrelatedOutput(t *testing.T) {
	conn, cmds, respW := scriptedPeer(t)

	result := make(chan error, 1)
	go func() {
		_, err := conn.Send(context.Background(), sidecar.Command{ID: "mine", Func: sidecar.FuncTestConnection})
		result <- err
	}()

	cmd := <-cmds
	assert.Equal(t, "mine", cmd.ID)

	_, err := respW.Write([]byte("not json\n\n"))
	require.NoError(t, err)
	writeResponse(t, respW, sidecar.Failure("someone-else", "ignored"))
	ok, err := sidecar.Success("mine", true)
	require.NoError(t, err)
	writeResponse(t, respW, ok)

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Send did not return")
	}
}

func TestConnNullData(t *testing.T) {
	conn, cmds, respW := scriptedPeer(t)

	result := make(chan error, 1)
	go func() {
		_, err := host.CallInto[sidecar.ConnectionResult](context.Background(), conn, sidecar.FuncTestConnection, nil)
		result <- err
	}()

	cmd := <-cmds
	resp, err := sidecar.Success(cmd.ID, nil)
	require.NoError(t, err)
	writeResponse(t, respW, resp)

	err = <-result
	var invalid *host.InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "no data")
}

func TestConnContextCancel(t *testing.T) {
	conn, cmds, _ := scriptedPeer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := conn.Send(ctx, sidecar.Command{ID: "slow", Func: sidecar.FuncTestConnection})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-cmds

	// The id is free again once the caller gave up.
	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	_, err = conn.Send(ctx2, sidecar.Command{ID: "slow", Func: sidecar.FuncTestConnection})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnClosedStream(t *testing.T) {
	conn, cmds, respW := scriptedPeer(t)

	result := make(chan error, 1)
	go func() {
		_, err := conn.Send(context.Background(), sidecar.Command{ID: "a", Func: sidecar.FuncTestConnection})
		result <- err
	}()
	<-cmds
	require.NoError(t, respW.Close())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, host.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("pending Send was not released")
	}

	<-conn.Done()
	_, err := conn.Send(context.Background(), sidecar.Command{ID: "b", Func: sidecar.FuncTestConnection})
	assert.ErrorIs(t, err, host.ErrClosed)
	assert.True(t, errors.Is(conn.Err(), host.ErrClosed))
}
