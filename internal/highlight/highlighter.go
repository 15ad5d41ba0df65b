// Package highlight runs highlight passes over views: it scans for color
// tokens, resolves them, and draws value and gutter icon overlays. Edits are
// funneled through the coalescing scheduler so a burst of events produces a
// single pass per view.
package highlight

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/hues/internal/cachemanager"
	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/delay"
	"github.com/zjrosen/hues/internal/flags"
	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/matcher"
	"github.com/zjrosen/hues/internal/pubsub"
	"github.com/zjrosen/hues/internal/scheduler"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/text"
	"github.com/zjrosen/hues/internal/tracing"
)

const (
	// DefaultDuration is assumed for a view that has not had a full pass.
	DefaultDuration = 100 * time.Millisecond
	// DefaultLargeFileThreshold is the size above which only the visible
	// lines are scanned.
	DefaultLargeFileThreshold = 512000
	// DefaultMaxSelections is the selection count above which edits trigger
	// a full pass.
	DefaultMaxSelections = 100
	// MoveDefer is how long cursor movement postpones a pending pass.
	MoveDefer = time.Second

	// IconSuffix is appended to a style key to name its gutter overlay.
	IconSuffix = "_icon"
	// GutterStyle is the style of every gutter overlay.
	GutterStyle = colors.StylePrefix + "gutter"
)

// Settings is the live configuration the highlighter reads on every pass.
type Settings interface {
	Colors() map[string]string
	Mode() config.Mode
	HighlightValues() bool
	GutterIcon() (icon.Shape, bool)
	MinDelay() time.Duration
	SetMode(mode config.Mode) error
}

// IconSource returns the file of a gutter icon.
type IconSource interface {
	Path(ctx context.Context, color string, shape icon.Shape, backdrop icon.Backdrop) (string, error)
}

// Timings persists full pass durations by file name.
type Timings interface {
	Record(ctx context.Context, fileName string, d time.Duration) error
	Last(ctx context.Context, fileName string) (time.Duration, error)
}

// ScanMode describes which part of a view a pass scanned.
type ScanMode string

const (
	ScanFull      ScanMode = "full"
	ScanSelection ScanMode = "selection"
	ScanVisible   ScanMode = "visible"
)

// PassEvent is published after every pass.
type PassEvent struct {
	PassID   string
	View     surface.ViewID
	FileName string
	Mode     ScanMode
	Lines    int
	Matches  int
	Groups   int
	Duration time.Duration
}

// Config wires a Highlighter. Settings, Workspace and Scheduler are required.
type Config struct {
	Settings  Settings
	Workspace *surface.Workspace
	Registrar surface.Registrar
	Scheduler *scheduler.Scheduler[surface.ViewID]
	// Icons is nil when gutter icons are never drawn.
	Icons    IconSource
	Backdrop icon.Backdrop
	Delays   delay.Table
	Matchers *matcher.Cache
	// Timings is nil when durations are not persisted.
	Timings            Timings
	Tracer             trace.Tracer
	Flags              *flags.Registry
	LargeFileThreshold int
	MaxSelections      int
	Now                func() time.Time
}

// viewState is what the highlighter remembers about one view.
type viewState struct {
	// duration of the last full pass
	duration time.Duration
	// colors of the style keys drawn on the view
	keys map[string]string
}

// Highlighter owns the per-view state and runs passes.
type Highlighter struct {
	cfg      Config
	ctx      context.Context
	compiled atomic.Pointer[matcher.Compiled]
	broker   *pubsub.Broker[PassEvent]

	mu     sync.Mutex
	states map[surface.ViewID]*viewState
}

// New creates a highlighter and compiles the configured color table.
func New(cfg Config) *Highlighter {
	if cfg.Registrar == nil {
		cfg.Registrar = surface.NewPalette()
	}
	if cfg.Matchers == nil {
		cfg.Matchers = matcher.NewCache(cachemanager.NewInMemoryCacheManager[string, *matcher.Compiled](
			"matchers", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval))
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("highlight")
	}
	if cfg.Backdrop == "" {
		cfg.Backdrop = icon.Light
	}
	if cfg.LargeFileThreshold <= 0 {
		cfg.LargeFileThreshold = DefaultLargeFileThreshold
	}
	if cfg.MaxSelections <= 0 {
		cfg.MaxSelections = DefaultMaxSelections
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Highlighter{
		cfg:    cfg,
		ctx:    context.Background(),
		broker: pubsub.NewBroker[PassEvent](),
		states: make(map[surface.ViewID]*viewState),
	}
	h.compile()
	return h
}

// Broker publishes a PassEvent after each pass and the view id on erase.
func (h *Highlighter) Broker() *pubsub.Broker[PassEvent] {
	return h.broker
}

// Matcher returns the current compiled matcher.
func (h *Highlighter) Matcher() *matcher.Compiled {
	return h.compiled.Load()
}

func (h *Highlighter) compile() {
	table := matcher.Table(h.cfg.Settings.Colors())
	_, span := h.cfg.Tracer.Start(h.ctx, tracing.SpanCompile)
	defer span.End()
	m := h.cfg.Matchers.Get(h.ctx, table)
	span.SetAttributes(
		attribute.String(tracing.AttrTableDigest, m.Digest()),
		attribute.Int(tracing.AttrTokens, len(m.Table())),
	)
	h.compiled.Store(m)
}

// Duration returns the last full pass duration of a view.
func (h *Highlighter) Duration(id surface.ViewID) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[id]
	if !ok {
		return 0, false
	}
	return st.duration, true
}

// Keys returns the style keys drawn on a view, sorted.
func (h *Highlighter) Keys(id surface.ViewID) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.states[id]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(st.keys))
	for k := range st.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// state returns the state of id, creating it. Must be called with mu held.
func (h *Highlighter) state(id surface.ViewID) *viewState {
	st, ok := h.states[id]
	if !ok {
		st = &viewState{
			duration: DefaultDuration,
			keys:     make(map[string]string),
		}
		h.states[id] = st
	}
	return st
}

// Pass highlights view now. With selection set, only the lines under the
// selections are rescanned and merged into what is already drawn.
func (h *Highlighter) Pass(ctx context.Context, view surface.View, selection bool) PassEvent {
	start := h.cfg.Now()
	ev := PassEvent{
		PassID:   uuid.NewString(),
		View:     view.ID(),
		FileName: view.FileName(),
		Mode:     ScanFull,
	}
	ctx, span := h.cfg.Tracer.Start(ctx, tracing.SpanPass, trace.WithAttributes(
		attribute.String(tracing.AttrPassID, ev.PassID),
		attribute.Int64(tracing.AttrViewID, int64(ev.View)),
		attribute.String(tracing.AttrFileName, ev.FileName),
	))
	defer span.End()

	sel := view.Selections()
	if len(sel) > h.cfg.MaxSelections {
		selection = false
	}

	var lines []text.Region
	if selection {
		for _, r := range sel {
			lines = append(lines, view.Lines(r)...)
		}
		ev.Mode = ScanSelection
	} else if view.Size() > h.cfg.LargeFileThreshold {
		lines = view.Lines(view.VisibleRegion())
		ev.Mode = ScanVisible
	}

	m := h.Matcher()
	var found []matcher.Match
	if len(lines) > 0 {
		found = m.FindLines(view, lines)
	} else {
		ev.Mode = ScanFull
		found = m.FindRegion(view, text.Region{Begin: 0, End: view.Size()})
	}
	ev.Lines = len(lines)
	ev.Matches = len(found)

	table := m.Table()
	background := view.Background()
	fresh := make(matcher.Groups)
	keyColors := make(map[string]string)
	for _, f := range found {
		c, ok := colors.Resolve(table, f.Token)
		if !ok {
			span.AddEvent(tracing.EventMatchDropped, trace.WithAttributes(attribute.String("token", f.Token)))
			continue
		}
		c = colors.AvoidBackground(c, background)
		key := h.cfg.Registrar.Register(c, table)
		fresh.Add(key, f.Region)
		keyColors[key] = c
	}
	h.cfg.Registrar.Update(view)

	h.mu.Lock()
	st := h.state(view.ID())
	var groups matcher.Groups
	if len(lines) > 0 {
		prior := make(matcher.Groups, len(st.keys))
		for key := range st.keys {
			prior[key] = view.Overlay(key)
		}
		groups = matcher.Merge(prior, fresh, lines)
		for key, regions := range groups {
			if len(regions) > 0 {
				continue
			}
			view.EraseOverlay(key)
			view.EraseOverlay(key + IconSuffix)
			delete(st.keys, key)
			delete(groups, key)
		}
		span.AddEvent(tracing.EventMerged, trace.WithAttributes(attribute.Int(tracing.AttrGroups, len(groups))))
	} else {
		h.eraseLocked(view, st)
		groups = fresh
	}
	for key := range groups {
		if c, ok := keyColors[key]; ok {
			st.keys[key] = c
		}
	}
	snapshot := make(map[string]string, len(groups))
	for key := range groups {
		snapshot[key] = st.keys[key]
	}
	h.mu.Unlock()

	h.render(ctx, span, view, groups, snapshot)

	elapsed := h.cfg.Now().Sub(start)
	ev.Duration = elapsed
	ev.Groups = len(groups)

	if !selection {
		h.mu.Lock()
		h.state(view.ID()).duration = elapsed
		h.mu.Unlock()
	}

	if !selection && h.cfg.Timings != nil && ev.FileName != "" {
		if err := h.cfg.Timings.Record(ctx, ev.FileName, elapsed); err != nil {
			log.ErrorErr(log.CatDB, "Failed to record pass timing", err, "file", ev.FileName)
		}
	}

	span.SetAttributes(
		attribute.String(tracing.AttrScanMode, string(ev.Mode)),
		attribute.Int(tracing.AttrLines, ev.Lines),
		attribute.Int(tracing.AttrMatches, ev.Matches),
		attribute.Int(tracing.AttrGroups, ev.Groups),
		attribute.Int64(tracing.AttrDurationMs, elapsed.Milliseconds()),
	)
	log.Debug(log.CatRender, "Highlight pass finished",
		"view", ev.View, "mode", ev.Mode, "lines", ev.Lines, "matches", ev.Matches, "groups", ev.Groups, "duration", elapsed)
	h.broker.Publish(pubsub.HighlightedEvent, ev)
	return ev
}

// render draws value and gutter overlays for every group. With values off
// the regions are still kept on the view, unstyled, so they follow edits.
func (h *Highlighter) render(ctx context.Context, span trace.Span, view surface.View, groups matcher.Groups, keyColors map[string]string) {
	values := h.cfg.Settings.HighlightValues()
	shape, icons := h.cfg.Settings.GutterIcon()
	icons = icons && h.cfg.Icons != nil
	backdrop := h.cfg.Backdrop.For(view.Background())

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		regions := groups[key]
		if values {
			view.AddOverlay(surface.Overlay{Key: key, Style: key, Regions: regions})
		} else {
			view.AddOverlay(surface.Overlay{Key: key, Regions: regions})
		}
		if !icons {
			continue
		}
		points := lineStarts(view, regions)
		if len(points) == 0 {
			view.AddOverlay(surface.Overlay{Key: key + IconSuffix, Style: GutterStyle})
			continue
		}
		path, err := h.cfg.Icons.Path(ctx, keyColors[key], shape, backdrop)
		if err != nil {
			log.ErrorErr(log.CatIcon, "Dropping gutter icon", err, "key", key)
			span.AddEvent(tracing.EventIconFailed, trace.WithAttributes(attribute.String(tracing.AttrColor, keyColors[key])))
			view.EraseOverlay(key + IconSuffix)
			continue
		}
		view.AddOverlay(surface.Overlay{Key: key + IconSuffix, Style: GutterStyle, Regions: points, Icon: path})
	}
}

// lineStarts returns one point per distinct line holding a region.
func lineStarts(view surface.View, regions []text.Region) []text.Region {
	seen := make(map[int]struct{}, len(regions))
	points := make([]text.Region, 0, len(regions))
	for _, r := range regions {
		begin := view.Line(r.Begin).Begin
		if _, ok := seen[begin]; ok {
			continue
		}
		seen[begin] = struct{}{}
		points = append(points, text.Point(begin))
	}
	text.SortRegions(points)
	return points
}

// Erase removes every overlay the highlighter drew on view.
func (h *Highlighter) Erase(view surface.View) {
	h.mu.Lock()
	st, ok := h.states[view.ID()]
	if ok {
		h.eraseLocked(view, st)
	}
	h.mu.Unlock()
	if ok {
		h.broker.Publish(pubsub.ErasedEvent, PassEvent{View: view.ID(), FileName: view.FileName()})
	}
}

// EraseAll erases every open view.
func (h *Highlighter) EraseAll() {
	for _, v := range h.cfg.Workspace.Views() {
		h.Erase(v)
	}
}

// eraseLocked must be called with mu held.
func (h *Highlighter) eraseLocked(view surface.View, st *viewState) {
	_, span := h.cfg.Tracer.Start(h.ctx, tracing.SpanErase, trace.WithAttributes(
		attribute.Int64(tracing.AttrViewID, int64(view.ID())),
		attribute.Int(tracing.AttrGroups, len(st.keys)),
	))
	defer span.End()
	for key := range st.keys {
		view.EraseOverlay(key)
		view.EraseOverlay(key + IconSuffix)
	}
	clear(st.keys)
}
