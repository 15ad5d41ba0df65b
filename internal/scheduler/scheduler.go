// Package scheduler coalesces bursts of per-buffer requests into a single
// deferred callback per buffer.
//
// Requests are recorded in a pending table keyed by buffer. A one-shot timer
// armed through the Host releases a binary gate once the target fire time has
// passed. A single dispatcher goroutine blocks on that gate, drains the whole
// table under the mutex and posts every callback back to the Host's UI-safe
// context outside the lock. Later requests move the target fire time, which
// turns earlier timers into no-ops when they tick.
package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/hues/internal/log"
)

const (
	// DefaultName is the worker name used when Options.Name is empty.
	DefaultName = "background color highlight"
	// DefaultMaxDelay bounds how long the first unconsumed request may wait.
	DefaultMaxDelay = 10 * time.Second
	// DefaultBusyFactor classifies a request as busy when it arrives within
	// delay×factor of the previous one.
	DefaultBusyFactor = 4
	// DefaultRearmFloor is the minimum spacing between non-preemptive re-arms.
	DefaultRearmFloor = 10 * time.Millisecond
	// tolerance is subtracted from every target so a timer firing on time
	// always sees its target as reached.
	tolerance = 10 * time.Millisecond
)

// Host is the execution context the scheduler reports to. Both functions
// must run fn on the UI-safe context, never inline on the caller.
type Host interface {
	// After runs fn once d has elapsed.
	After(d time.Duration, fn func())
	// Post runs fn as soon as possible.
	Post(fn func())
}

// Options configures a Scheduler. Zero values select the defaults.
type Options struct {
	Name       string
	MaxDelay   time.Duration
	BusyFactor int
	RearmFloor time.Duration
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// Stats reports counters since the scheduler was created.
type Stats struct {
	Enqueued   int64
	Coalesced  int64
	Throttled  int64
	StaleFires int64
	Releases   int64
	Dispatched int64
}

// Scheduler is the coalescing dispatcher. Create one with New and run it with
// Start; Enqueue may be called before Start, callbacks are posted once the
// worker runs.
type Scheduler[K comparable] struct {
	host Host
	opts Options
	id   string

	mu      sync.Mutex
	pending map[K]func()
	// last is when the most recent request arrived.
	last time.Time
	// target is when the armed timer may release the gate. The zero value
	// means nothing is armed.
	target time.Time
	// first is when the oldest unconsumed request arrived.
	first   time.Time
	lastArm time.Time

	gate chan struct{}

	lifeMu  sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
	stopped bool

	enqueued   atomic.Int64
	coalesced  atomic.Int64
	throttled  atomic.Int64
	staleFires atomic.Int64
	releases   atomic.Int64
	dispatched atomic.Int64
}

// New creates a stopped scheduler reporting to host.
func New[K comparable](host Host, opts Options) *Scheduler[K] {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.MaxDelay < 0 {
		opts.MaxDelay = 0
	} else if opts.MaxDelay == 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.BusyFactor <= 0 {
		opts.BusyFactor = DefaultBusyFactor
	}
	if opts.RearmFloor <= 0 {
		opts.RearmFloor = DefaultRearmFloor
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler[K]{
		host:    host,
		opts:    opts,
		id:      uuid.NewString(),
		pending: make(map[K]func()),
		gate:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// ID returns the unique id of this worker instance.
func (s *Scheduler[K]) ID() string {
	return s.id
}

// Name returns the worker name.
func (s *Scheduler[K]) Name() string {
	return s.opts.Name
}

// Enqueue records cb as the pending callback for key, replacing any earlier
// one, and arms the release timer. A request arriving within
// delay×BusyFactor of the previous one waits busy instead of delay.
// Preemptive requests fire as soon as possible.
func (s *Scheduler[K]) Enqueue(key K, cb func(), delay, busy time.Duration, preemptive bool) {
	s.enqueued.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	if _, ok := s.pending[key]; ok {
		s.coalesced.Add(1)
	}
	s.pending[key] = cb

	if preemptive {
		delay, busy = 0, 0
	}
	if !s.last.IsZero() && now.Before(s.last.Add(delay*time.Duration(s.opts.BusyFactor))) {
		delay = busy
	}
	s.last = now
	// A request always retargets to now first, so a re-arm dropped by the
	// floor below still lets the timer armed just before it release.
	s.target = now
	s.schedule(now, delay, preemptive)
	if s.first.IsZero() {
		s.first = now
	}
}

// Delay postpones the armed fire to d from now. It never brings a fire
// forward and does nothing when no fire is armed.
func (s *Scheduler[K]) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule(s.opts.Now(), d, false)
}

// schedule must be called with mu held.
func (s *Scheduler[K]) schedule(now time.Time, delay time.Duration, preemptive bool) {
	if !preemptive && !s.lastArm.IsZero() && !now.After(s.lastArm.Add(s.opts.RearmFloor)) {
		s.throttled.Add(1)
		return
	}

	if !s.first.IsZero() && s.opts.MaxDelay > 0 {
		elapsed := now.Sub(s.first)
		if elapsed+delay > s.opts.MaxDelay {
			delay = s.opts.MaxDelay - elapsed
			if delay < 0 {
				delay = 0
			}
		}
	}

	target := now.Add(delay - tolerance)
	armed := !s.target.Before(now.Add(-tolerance))
	if !armed || (!preemptive && target.Before(s.target.Add(-tolerance))) {
		return
	}
	s.target = target
	s.lastArm = now
	log.Debug(log.CatScheduler, "Armed timer", "delay", delay, "preemptive", preemptive, "pending", len(s.pending))
	s.host.After(delay, s.fire)
}

// fire runs when a timer ticks. Only a timer whose target is still current
// may release the gate.
func (s *Scheduler[K]) fire() {
	s.mu.Lock()
	now := s.opts.Now()
	if s.target.IsZero() || now.Before(s.target) {
		s.mu.Unlock()
		s.staleFires.Add(1)
		return
	}
	s.mu.Unlock()

	select {
	case s.gate <- struct{}{}:
		s.releases.Add(1)
	default:
		// already released, the dispatcher has not consumed it yet
	}
}

// Start launches the dispatcher. A worker already running under the same
// name is stopped and joined first, so one live worker exists per name.
func (s *Scheduler[K]) Start() error {
	s.lifeMu.Lock()
	if s.stopped {
		s.lifeMu.Unlock()
		return fmt.Errorf("scheduler %q has been stopped", s.opts.Name)
	}
	if s.started {
		s.lifeMu.Unlock()
		return nil
	}
	s.started = true
	s.lifeMu.Unlock()

	register(s.opts.Name, s)
	log.Info(log.CatScheduler, "Worker started", "name", s.opts.Name, "id", s.id)
	go s.loop()
	return nil
}

// Stop signals the dispatcher and waits for it to exit. Pending callbacks
// are discarded. Stop is idempotent.
func (s *Scheduler[K]) Stop() {
	s.lifeMu.Lock()
	if s.stopped {
		s.lifeMu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	close(s.stop)
	s.lifeMu.Unlock()

	if started {
		<-s.done
	}
	unregister(s.opts.Name, s)
	log.Info(log.CatScheduler, "Worker stopped", "name", s.opts.Name, "id", s.id)
}

// Done is closed once the dispatcher has exited.
func (s *Scheduler[K]) Done() <-chan struct{} {
	return s.done
}

// Pending returns how many buffers are waiting for dispatch.
func (s *Scheduler[K]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stats returns a snapshot of the counters.
func (s *Scheduler[K]) Stats() Stats {
	return Stats{
		Enqueued:   s.enqueued.Load(),
		Coalesced:  s.coalesced.Load(),
		Throttled:  s.throttled.Load(),
		StaleFires: s.staleFires.Load(),
		Releases:   s.releases.Load(),
		Dispatched: s.dispatched.Load(),
	}
}

func (s *Scheduler[K]) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-s.gate:
		}
		s.dispatch()
	}
}

// dispatch drains the pending table and posts each callback to the host.
func (s *Scheduler[K]) dispatch() {
	s.mu.Lock()
	s.first = time.Time{}
	s.last = time.Time{}
	s.target = time.Time{}
	s.lastArm = time.Time{}
	callbacks := make([]func(), 0, len(s.pending))
	for key, cb := range s.pending {
		callbacks = append(callbacks, cb)
		delete(s.pending, key)
	}
	s.mu.Unlock()

	log.Debug(log.CatScheduler, "Dispatching callbacks", "count", len(callbacks))
	for _, cb := range callbacks {
		s.post(cb)
	}
}

func (s *Scheduler[K]) post(cb func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatScheduler, "Host rejected callback", "panic", r)
		}
	}()
	s.host.Post(cb)
	s.dispatched.Add(1)
}
