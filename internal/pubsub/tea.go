package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a Bubble Tea command that waits for the next event on ch.
// The command yields nil once ctx is cancelled or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// ContinuousListener keeps one subscription alive across Update calls.
type ContinuousListener[T any] struct {
	ctx  context.Context
	ch   <-chan Event[T]
	keep func(T) bool
}

// NewContinuousListener subscribes to broker for as long as ctx lives.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	return NewFilteredListener(ctx, broker, nil)
}

// NewFilteredListener is NewContinuousListener delivering only events whose
// payload satisfies keep. A nil keep delivers everything.
func NewFilteredListener[T any](ctx context.Context, broker *Broker[T], keep func(T) bool) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx:  ctx,
		ch:   broker.Subscribe(ctx),
		keep: keep,
	}
}

// Listen returns a command for the next kept event. Call it again from
// Update after each event to keep listening.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	if l.keep == nil {
		return ListenCmd(l.ctx, l.ch)
	}
	return func() tea.Msg {
		for {
			select {
			case <-l.ctx.Done():
				return nil
			case event, ok := <-l.ch:
				if !ok {
					return nil
				}
				if l.keep(event.Payload) {
					return event
				}
			}
		}
	}
}
