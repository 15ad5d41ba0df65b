package surface

import (
	"sync"
	"time"

	"github.com/zjrosen/hues/internal/log"
)

// Loop runs posted functions one at a time on a single goroutine, which
// plays the role of the UI thread. It implements scheduler.Host.
type Loop struct {
	queue chan func()
	stop  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewLoop starts a loop. backlog bounds how many functions may wait.
func NewLoop(backlog int) *Loop {
	if backlog <= 0 {
		backlog = 64
	}
	l := &Loop{
		queue: make(chan func(), backlog),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case fn := <-l.queue:
			l.call(fn)
		}
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatUI, "Posted function panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn. Posting to a stopped loop drops fn.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.stop:
		return
	default:
	}
	select {
	case <-l.stop:
	case l.queue <- fn:
	}
}

// After posts fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Stop ends the loop. Queued functions are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.stop) })
	<-l.done
}
