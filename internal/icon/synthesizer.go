package icon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/hues/internal/cachemanager"
	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/tracing"
)

// request identifies one icon file.
type request struct {
	color    colors.RGBA
	shape    Shape
	backdrop Backdrop
	name     string
}

// Synthesizer writes icons into a cache directory. Each file is produced at
// most once per process and never when it already exists on disk.
type Synthesizer struct {
	dir    string
	memo   *cachemanager.ReadThroughCache[string, string, request]
	tracer trace.Tracer

	synthesized atomic.Int64
	reused      atomic.Int64
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithTracer records a span for every synthesized icon.
func WithTracer(t trace.Tracer) Option {
	return func(s *Synthesizer) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithCache replaces the in-process memo store.
func WithCache(cm cachemanager.CacheManager[string, string]) Option {
	return func(s *Synthesizer) {
		s.memo = cachemanager.NewReadThroughCache(cm, s.load)
	}
}

// NewSynthesizer creates a synthesizer writing into dir.
func NewSynthesizer(dir string, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		dir:    dir,
		tracer: noop.NewTracerProvider().Tracer("icon"),
	}
	s.memo = cachemanager.NewReadThroughCache[string, string, request](
		cachemanager.NewInMemoryCacheManager[string, string]("icons", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
		s.load,
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the cache directory.
func (s *Synthesizer) Dir() string {
	return s.dir
}

// FileName returns the cache file name for an icon: RRGGBBAA_shape.png,
// with a -dark suffix before the extension for the dark backdrop.
func FileName(color string, shape Shape, backdrop Backdrop) string {
	name := strings.TrimPrefix(color, "#") + "_" + string(ParseShape(string(shape)))
	if backdrop == Dark {
		name += "-dark"
	}
	return name + ".png"
}

// Path returns the file of the icon for color, synthesizing it if needed.
// backdrop must already be resolved to Light or Dark.
func (s *Synthesizer) Path(ctx context.Context, color string, shape Shape, backdrop Backdrop) (string, error) {
	c, err := colors.Parse(color)
	if err != nil {
		return "", err
	}
	if backdrop != Dark {
		backdrop = Light
	}
	shape = ParseShape(string(shape))
	name := FileName(c.String(), shape, backdrop)
	return s.memo.Get(ctx, name, request{color: c, shape: shape, backdrop: backdrop, name: name}, cachemanager.NoExpiration)
}

// Synthesized returns how many icons this process encoded.
func (s *Synthesizer) Synthesized() int64 {
	return s.synthesized.Load()
}

// Reused returns how many icons were found already on disk.
func (s *Synthesizer) Reused() int64 {
	return s.reused.Load()
}

func (s *Synthesizer) load(ctx context.Context, req request) (string, error) {
	path := filepath.Join(s.dir, req.name)
	if _, err := os.Stat(path); err == nil {
		s.reused.Add(1)
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat icon: %w", err)
	}

	_, span := s.tracer.Start(ctx, tracing.SpanIcon, trace.WithAttributes(
		attribute.String(tracing.AttrColor, req.color.String()),
		attribute.String(tracing.AttrShape, string(req.shape)),
		attribute.String(tracing.AttrBackdrop, string(req.backdrop)),
	))
	defer span.End()

	data, err := Encode(req.color, req.shape, req.backdrop)
	if err != nil {
		tracing.RecordError(span, err)
		return "", err
	}
	if err := writeFileAtomic(path, data); err != nil {
		tracing.RecordError(span, err)
		log.ErrorErr(log.CatIcon, "Failed to write icon", err, "path", path)
		return "", err
	}
	s.synthesized.Add(1)
	log.Debug(log.CatIcon, "Synthesized icon", "path", path, "bytes", len(data))
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating icon directory: %w", err)
	}
	temp, err := os.CreateTemp(dir, ".icon.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
