package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/hues/internal/cachemanager"
	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/flags"
	"github.com/zjrosen/hues/internal/highlight"
	"github.com/zjrosen/hues/internal/history"
	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/matcher"
	"github.com/zjrosen/hues/internal/scheduler"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/tracing"
)

// services holds everything a command needs to run highlight passes.
type services struct {
	store     *config.Store
	tracer    *tracing.Provider
	history   *history.Store
	icons     *icon.Synthesizer
	flags     *flags.Registry
	workspace *surface.Workspace
	palette   *surface.Palette
}

func newServices(v *viper.Viper) (*services, error) {
	store, err := config.NewStore(v)
	if err != nil {
		return nil, err
	}
	cfg := store.Config()

	tracer, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	s := &services{
		store:  store,
		tracer: tracer,
		icons: icon.NewSynthesizer(cfg.Icons.CacheDir,
			icon.WithTracer(tracer.Tracer()),
			icon.WithCache(cachemanager.NewInMemoryCacheManager[string, string](
				"icons", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)),
		),
		flags:     flags.New(cfg.Flags),
		workspace: surface.NewWorkspace(),
		palette:   surface.NewPalette(),
	}

	if cfg.History.Enabled && cfg.History.Path != "" {
		h, err := history.Open(cfg.History.Path)
		if err != nil {
			// Passes still run, they just start from the default duration
			log.Warn(log.CatDB, "Timing history disabled", "path", cfg.History.Path, "error", err)
		} else {
			s.history = h
		}
	}
	return s, nil
}

// newScheduler creates a scheduler reporting to host, tuned from the config.
func (s *services) newScheduler(host scheduler.Host) *scheduler.Scheduler[surface.ViewID] {
	cfg := s.store.Config().Scheduler
	return scheduler.New[surface.ViewID](host, scheduler.Options{
		MaxDelay:   cfg.MaxDelay,
		BusyFactor: cfg.BusyFactor,
		RearmFloor: cfg.RearmFloor,
	})
}

// newHighlighter wires a highlighter to sched.
func (s *services) newHighlighter(sched *scheduler.Scheduler[surface.ViewID]) *highlight.Highlighter {
	cfg := s.store.Config()
	hc := highlight.Config{
		Settings:  s.store,
		Workspace: s.workspace,
		Registrar: s.palette,
		Scheduler: sched,
		Icons:     s.icons,
		Backdrop:  icon.ParseBackdrop(cfg.Icons.Backdrop),
		Delays:    cfg.DelayTable(),
		Matchers: matcher.NewCache(cachemanager.NewInMemoryCacheManager[string, *matcher.Compiled](
			"matchers", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval)),
		Tracer:             s.tracer.Tracer(),
		Flags:              s.flags,
		LargeFileThreshold: cfg.LargeFileThreshold,
		MaxSelections:      cfg.MaxSelections,
	}
	if s.history != nil {
		hc.Timings = s.history
	}
	return highlight.New(hc)
}

// Close flushes traces and closes the history.
func (s *services) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.tracer.Shutdown(ctx); err != nil {
		log.Warn(log.CatConfig, "Failed to flush traces", "error", err)
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			log.Warn(log.CatDB, "Failed to close history", "error", err)
		}
	}
}
