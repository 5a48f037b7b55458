package journal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/llm-sidecar/internal/db"
	"github.com/ziadkadry99/llm-sidecar/internal/sidecar"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndRecent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{CommandID: "1", Func: sidecar.FuncRequestLLM, Decoded: true, Success: true, Duration: 1500 * time.Millisecond, CreatedAt: base},
		{CommandID: "2", Func: sidecar.FuncTestConnection, Decoded: true, Success: true, CreatedAt: base.Add(time.Second)},
		{CommandID: "3", Func: sidecar.FuncRequestLLM, Decoded: true, Error: "boom", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, store.Record(ctx, e))
	}

	got, err := store.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{got[0].CommandID, got[1].CommandID, got[2].CommandID})

	first := got[2]
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, sidecar.FuncRequestLLM, first.Func)
	assert.True(t, first.Success)
	assert.Equal(t, 1500*time.Millisecond, first.Duration)
	assert.True(t, first.CreatedAt.Equal(base))
}

func TestRecentFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, e := range []Entry{
		{CommandID: "a", Func: sidecar.FuncRequestLLM, Success: true},
		{CommandID: "b", Func: sidecar.FuncRequestLLM, Error: "bad"},
		{CommandID: "c", Func: sidecar.FuncTestConnection, Success: true},
		{CommandID: "d", Error: "failed to parse command"},
	} {
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(ctx, e))
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by func", Filter{Func: sidecar.FuncRequestLLM}, []string{"b", "a"}},
		{"failed only", Filter{FailedOnly: true}, []string{"d", "b"}},
		{"limit", Filter{Limit: 1}, []string{"d"}},
		{"since", Filter{Since: ptr(base.Add(90 * time.Second))}, []string{"d", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Recent(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, e := range got {
				ids = append(ids, e.CommandID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Record(ctx, Entry{CommandID: "old", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, store.Record(ctx, Entry{CommandID: "new", CreatedAt: now}))

	n, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := store.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].CommandID)
}

func TestObserverRecordsLoopTraffic(t *testing.T) {
	store := setupStore(t)

	handler := handlerFunc(func(_ context.Context, cmd sidecar.Command) sidecar.Response {
		if cmd.Func != sidecar.FuncTestConnection {
			return sidecar.Failure(cmd.ID, "unsupported function: "+string(cmd.Func))
		}
		resp, _ := sidecar.Success(cmd.ID, map[string]bool{"connected": true})
		return resp
	})

	input := `{"id":"1","func":"testConnection"}` + "\n" +
		"garbage\n" +
		`{"id":"3","func":"nope"}` + "\n"
	var out strings.Builder
	loop := sidecar.NewLoop(handler, sidecar.WithObserver(store.Observer(nil)))
	require.NoError(t, loop.Run(context.Background(), strings.NewReader(input), &out))

	got, err := store.Recent(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)

	byID := map[string]Entry{}
	for _, e := range got {
		byID[e.CommandID] = e
	}

	ok := byID["1"]
	assert.True(t, ok.Success)
	assert.True(t, ok.Decoded)
	assert.Equal(t, sidecar.FuncTestConnection, ok.Func)
	assert.Equal(t, len(`{"connected":true}`), ok.ResponseBytes)

	bad := byID["3"]
	assert.False(t, bad.Success)
	assert.Equal(t, "unsupported function: nope", bad.Error)

	var undecoded *Entry
	for i := range got {
		if !got[i].Decoded {
			undecoded = &got[i]
		}
	}
	require.NotNil(t, undecoded)
	assert.Empty(t, undecoded.Func)
	assert.Equal(t, len("garbage"), undecoded.RequestBytes)
	assert.Contains(t, undecoded.Error, "failed to parse command")
}

type handlerFunc func(ctx context.Context, cmd sidecar.Command) sidecar.Response

func (f handlerFunc) Dispatch(ctx context.Context, cmd sidecar.Command) sidecar.Response {
	return f(ctx, cmd)
}

func ptr[T any](v T) *T { return &v }
