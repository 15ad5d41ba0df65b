package app

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a scheduler callback into Update.
type runMsg struct {
	fn func()
}

// Host runs scheduler callbacks inside the Bubble Tea update loop, which is
// the only goroutine allowed to touch the model.
type Host struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewHost creates a host. backlog bounds how many callbacks may wait for
// the update loop before Post blocks.
func NewHost(backlog int) *Host {
	if backlog <= 0 {
		backlog = 256
	}
	return &Host{
		queue: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
}

// After posts fn once d has elapsed.
func (h *Host) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { h.Post(fn) })
}

// Post queues fn for the update loop. Callbacks posted after Close are
// dropped.
func (h *Host) Post(fn func()) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case <-h.done:
	case h.queue <- fn:
	}
}

// Next returns a command delivering the next callback as a message.
func (h *Host) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-h.done:
			return nil
		case fn := <-h.queue:
			return runMsg{fn: fn}
		}
	}
}

// Close drops pending and future callbacks.
func (h *Host) Close() {
	h.once.Do(func() { close(h.done) })
}
