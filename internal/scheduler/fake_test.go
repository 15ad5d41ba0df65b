package scheduler

import (
	"sort"
	"sync"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeTimer struct {
	due time.Time
	seq int
	fn  func()
}

// fakeHost is a virtual clock plus timer queue. Timers only run inside
// Advance, in due order, with the clock set to their due time.
type fakeHost struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []fakeTimer
	armed  int
	posted chan func()
}

func newFakeHost() *fakeHost {
	return &fakeHost{now: epoch, posted: make(chan func(), 1024)}
}

func (h *fakeHost) Now() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *fakeHost) Elapsed() time.Duration {
	return h.Now().Sub(epoch)
}

func (h *fakeHost) After(d time.Duration, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.armed++
	h.timers = append(h.timers, fakeTimer{due: h.now.Add(d), seq: h.seq, fn: fn})
}

func (h *fakeHost) Post(fn func()) {
	h.posted <- fn
}

// Armed returns how many timers were ever armed.
func (h *fakeHost) Armed() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.armed
}

// Advance moves the clock forward by d, running every timer that falls due.
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

func newTestScheduler(h *fakeHost, name string) *Scheduler[string] {
	return New[string](h, Options{Name: name, Now: h.Now})
}
