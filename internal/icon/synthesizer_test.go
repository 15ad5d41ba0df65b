package icon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/mocks"
	"github.com/zjrosen/hues/internal/tracing"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "FF0000FF_circle.png", FileName("#FF0000FF", Circle, Light))
	require.Equal(t, "FF0000FF_square-dark.png", FileName("#FF0000FF", Square, Dark))
	require.Equal(t, "FF0000FF_circle.png", FileName("#FF0000FF", "star", Light))
}

func TestSynthesizer_WritesOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hues.cache")
	s := NewSynthesizer(dir)
	ctx := context.Background()

	path, err := s.Path(ctx, "#f00", Circle, Light)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "FF0000FF_circle.png"), path)

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	again, err := s.Path(ctx, "#FF0000FF", Circle, Light)
	require.NoError(t, err)
	require.Equal(t, path, again)
	require.Equal(t, int64(1), s.Synthesized(), "second request must not re-encode")

	second, err := os.ReadFile(again)
	require.NoError(t, err)
	require.Equal(t, first, second)

	want, err := Encode(colors.RGBA{R: 0xff, A: 0xff}, Circle, Light)
	require.NoError(t, err)
	require.Equal(t, want, first)
}

func TestSynthesizer_ReusesFileFromPreviousRun(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	_, err := NewSynthesizer(dir).Path(ctx, "#00ff00", Square, Dark)
	require.NoError(t, err)

	restarted := NewSynthesizer(dir)
	path, err := restarted.Path(ctx, "#00ff00", Square, Dark)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "00FF00FF_square-dark.png"), path)
	require.Zero(t, restarted.Synthesized())
	require.Equal(t, int64(1), restarted.Reused())
}

func TestSynthesizer_DistinctKeys(t *testing.T) {
	s := NewSynthesizer(t.TempDir())
	ctx := context.Background()

	light, err := s.Path(ctx, "#123456", Fill, Light)
	require.NoError(t, err)
	dark, err := s.Path(ctx, "#123456", Fill, Dark)
	require.NoError(t, err)
	unknown, err := s.Path(ctx, "#123456", "triangle", Auto)
	require.NoError(t, err)

	require.NotEqual(t, light, dark)
	require.Equal(t, "123456FF_circle.png", filepath.Base(unknown))
	require.Equal(t, int64(3), s.Synthesized())
}

func TestSynthesizer_InvalidColor(t *testing.T) {
	s := NewSynthesizer(t.TempDir())
	_, err := s.Path(context.Background(), "red", Circle, Light)
	require.Error(t, err)
	require.Zero(t, s.Synthesized())
}

func TestSynthesizer_UnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := NewSynthesizer(filepath.Join(blocker, "icons"))
	_, err := s.Path(context.Background(), "#abc", Circle, Light)
	require.Error(t, err)
}

func TestSynthesizer_UsesCache(t *testing.T) {
	cache := mocks.NewMockCacheManager[string, string](t)
	cache.EXPECT().Get(mock.Anything, "AABBCCFF_circle.png").Return("/elsewhere/icon.png", true)

	s := NewSynthesizer(t.TempDir(), WithCache(cache))
	path, err := s.Path(context.Background(), "#abc", Circle, Light)
	require.NoError(t, err)
	require.Equal(t, "/elsewhere/icon.png", path)
	require.Zero(t, s.Synthesized())
}

func TestSynthesizer_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	s := NewSynthesizer(t.TempDir(), WithTracer(tp.Tracer("test")))
	_, err := s.Path(context.Background(), "#abc", Square, Light)
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Equal(t, tracing.SpanIcon, ended[0].Name())
}
