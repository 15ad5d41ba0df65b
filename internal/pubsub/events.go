// Package pubsub provides a generic publish/subscribe event system.
//
// Highlight passes, overlay erasures and log entries are published through
// brokers so the viewer can react without polling.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// HighlightedEvent is published after a highlight pass rendered a buffer.
	HighlightedEvent EventType = "highlighted"
	// ErasedEvent is published when a buffer's overlays were cleared.
	ErasedEvent EventType = "erased"
	// LoggedEvent is published for every log entry written.
	LoggedEvent EventType = "logged"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
