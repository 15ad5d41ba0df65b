package highlight

import (
	"maps"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hues/internal/config"
	"github.com/zjrosen/hues/internal/icon"
	"github.com/zjrosen/hues/internal/scheduler"
	"github.com/zjrosen/hues/internal/surface"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeSettings is an in-memory Settings.
type fakeSettings struct {
	mu      sync.Mutex
	colors  map[string]string
	mode    config.Mode
	values  bool
	shape   icon.Shape
	icons   bool
	min     time.Duration
	saveErr error
	saved   []config.Mode
}

func newFakeSettings(colors map[string]string) *fakeSettings {
	return &fakeSettings{
		colors: colors,
		mode:   config.ModeOn,
		values: true,
		shape:  icon.Circle,
		icons:  true,
	}
}

func (s *fakeSettings) Colors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.colors)
}

func (s *fakeSettings) setColors(c map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = c
}

func (s *fakeSettings) Mode() config.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *fakeSettings) HighlightValues() bool { return s.values }

func (s *fakeSettings) GutterIcon() (icon.Shape, bool) { return s.shape, s.icons }

func (s *fakeSettings) MinDelay() time.Duration { return s.min }

func (s *fakeSettings) SetMode(mode config.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mode = mode
	s.saved = append(s.saved, mode)
	return nil
}

type fakeTimer struct {
	due time.Time
	seq int
	fn  func()
}

// fakeHost is a virtual clock plus timer queue. Timers only run inside
// Advance; posted callbacks wait in a channel until the test runs them.
type fakeHost struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []fakeTimer
	posted chan func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{now: epoch, posted: make(chan func(), 64)}
}

func (h *fakeHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *fakeHost) After(d time.Duration, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.timers = append(h.timers, fakeTimer{due: h.now.Add(d), seq: h.seq, fn: fn})
}

func (h *fakeHost) Post(fn func()) {
	h.posted <- fn
}

func (h *fakeHost) Advance(d time.Duration) {
	h.mu.Lock()
	end := h.now.Add(d)
	h.mu.Unlock()

	for {
		h.mu.Lock()
		sort.Slice(h.timers, func(i, j int) bool {
			if h.timers[i].due.Equal(h.timers[j].due) {
				return h.timers[i].seq < h.timers[j].seq
			}
			return h.timers[i].due.Before(h.timers[j].due)
		})
		if len(h.timers) == 0 || h.timers[0].due.After(end) {
			h.now = end
			h.mu.Unlock()
			return
		}
		next := h.timers[0]
		h.timers = h.timers[1:]
		if next.due.After(h.now) {
			h.now = next.due
		}
		h.mu.Unlock()
		next.fn()
	}
}

// RunPosted waits for one posted callback and runs it.
func (h *fakeHost) RunPosted(t *testing.T) {
	t.Helper()
	select {
	case fn := <-h.posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no callback posted")
	}
}

// NothingPosted asserts the dispatcher posted nothing.
func (h *fakeHost) NothingPosted(t *testing.T) {
	t.Helper()
	select {
	case <-h.posted:
		t.Fatal("unexpected callback posted")
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	host     *fakeHost
	settings *fakeSettings
	ws       *surface.Workspace
	palette  *surface.Palette
	sched    *scheduler.Scheduler[surface.ViewID]
	h        *Highlighter
}

var testColors = map[string]string{
	"red":  "#f00",
	"blue": "#00f",
	"gold": "#ffd700",
}

const (
	redKey  = "hues.col_FF0000FF"
	blueKey = "hues.col_0000FFFF"
	goldKey = "hues.col_FFD700FF"
)

func newFixture(t *testing.T, mutate ...func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		host:     newFakeHost(),
		settings: newFakeSettings(maps.Clone(testColors)),
		ws:       surface.NewWorkspace(),
		palette:  surface.NewPalette(),
	}
	f.sched = scheduler.New[surface.ViewID](f.host, scheduler.Options{Name: t.Name(), Now: f.host.Now})
	require.NoError(t, f.sched.Start())
	t.Cleanup(f.sched.Stop)

	cfg := Config{
		Settings:  f.settings,
		Workspace: f.ws,
		Registrar: f.palette,
		Scheduler: f.sched,
		Icons:     icon.NewSynthesizer(t.TempDir()),
		Now:       f.host.Now,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	f.h = New(cfg)
	return f
}

func (f *fixture) open(fileName, content string) *surface.Memory {
	v := surface.NewMemory(f.ws.NextID(), fileName, content)
	f.ws.Open(v)
	return v
}

// steppingClock returns a clock that moves forward by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := epoch
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}
