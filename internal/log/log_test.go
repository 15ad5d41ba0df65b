package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hues/internal/pubsub"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Info(CatRender, "pass finished", "view", 7, "regions", 3)

	line := buf.String()
	require.Contains(t, line, "[INFO] [render] pass finished view=7 regions=3")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	Warn(CatMatcher, "dangling", "key")

	require.Contains(t, buf.String(), "key=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	ErrorErr(CatIcon, "write failed", errors.New("disk full"), "path", "/tmp/x.png")
	ErrorErr(CatIcon, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [icon] write failed path=/tmp/x.png error=disk full")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	SetMinLevel(LevelWarn)
	Debug(CatScheduler, "hidden")
	Info(CatScheduler, "hidden")
	Warn(CatScheduler, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatScheduler, "muted")
	require.Empty(t, buf.String())
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	SetOutput(nil)
	require.NotPanics(t, func() { Info(CatConfig, "nobody listening") })
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_PublishesEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(nil) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	done := make(chan any, 1)
	go func() { done <- listener.Listen()() }()

	require.Eventually(t, func() bool {
		return SubscriberCount() == 1
	}, time.Second, 5*time.Millisecond)
	Debug(CatWatcher, "file changed", "path", "colors.css")

	select {
	case msg := <-done:
		event, ok := msg.(LogEvent)
		require.True(t, ok)
		require.Equal(t, pubsub.LoggedEvent, event.Type)
		require.Equal(t, LevelDebug, event.Payload.Level)
		require.Equal(t, CatWatcher, event.Payload.Category)
		require.Equal(t, "file changed", event.Payload.Message)
		require.Contains(t, event.Payload.String(), "[DEBUG] [watcher] file changed path=colors.css")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestInit_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0644))

	cleanup, err := Init(path, Options{MinLevel: LevelInfo})
	require.NoError(t, err)
	t.Cleanup(func() { SetOutput(nil) })

	Debug(CatDB, "below threshold")
	Info(CatDB, "Opened history", "path", ":memory:")
	cleanup()
	Error(CatDB, "after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	require.True(t, strings.HasPrefix(out, "earlier\n"))
	require.Contains(t, out, "[INFO] [db] Opened history path=:memory:")
	require.NotContains(t, out, "below threshold")
	require.NotContains(t, out, "after close")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"", LevelDebug, false},
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
