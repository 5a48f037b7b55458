package host_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/llm-sidecar/internal/host"
	"github.com/ziadkadry99/llm-sidecar/internal/llm"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

func helperProcess() *host.Process {
	return host.NewProcess(host.ProcessConfig{
		Path:        os.Args[0],
		Env:         []string{helperEnv + "=1"},
		StopTimeout: 5 * time.Second,
	}, nil)
}

func TestProcessLifecycle(t *testing.T) {
	p := helperProcess()
	ctx := context.Background()

	assert.False(t, p.IsRunning())
	_, err := p.Call(ctx, sidecar.FuncTestConnection, nil)
	assert.ErrorIs(t, err, host.ErrNotRunning)

	require.NoError(t, p.Start(ctx))
	t.Cleanup(func() { _ = p.Stop() })
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx), "second Start should fail")

	data, err := p.Call(ctx, sidecar.FuncTestConnection, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"connected":true}`, string(data))

	conn, err := p.Conn()
	require.NoError(t, err)
	resp, err := host.CallInto[llm.Response](ctx, conn, sidecar.FuncRequestLLM, userParams("over a real pipe"))
	require.NoError(t, err)
	assert.Equal(t, "over a real pipe", resp.Choices[0].Message.Content)

	require.NoError(t, p.Stop())
	assert.False(t, p.IsRunning())
	<-p.Done()

	_, err = p.Call(ctx, sidecar.FuncTestConnection, nil)
	assert.ErrorIs(t, err, host.ErrNotRunning)
}

func TestProcessRestart(t *testing.T) {
	p := helperProcess()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, p.Start(ctx))
		data, err := p.Call(ctx, sidecar.FuncTestConnection, nil)
		require.NoError(t, err)

		var res sidecar.ConnectionResult
		require.NoError(t, json.Unmarshal(data, &res))
		assert.True(t, res.Connected)
		require.NoError(t, p.Stop())
	}
}

func TestProcessStartMissingExecutable(t *testing.T) {
	p := host.NewProcess(host.ProcessConfig{Path: "/nonexistent/llm-sidecar"}, nil)
	err := p.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, p.IsRunning())
}

func TestProcessStopWhenStopped(t *testing.T) {
	assert.NoError(t, helperProcess().Stop())
}
