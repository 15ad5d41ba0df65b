package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hues/internal/history"
)

// passData holds a pass to be recorded.
type passData struct {
	fileName string
	duration time.Duration
	repeat   int
}

// PassOption configures a recorded pass.
type PassOption func(*passData)

// Repeated records the pass n times, as n separate full passes would.
func Repeated(n int) PassOption {
	return func(p *passData) {
		p.repeat = n
	}
}

// Builder accumulates passes and records them in order.
type Builder struct {
	t      *testing.T
	store  *history.Store
	passes []passData
}

// NewBuilder creates a builder for the given history.
func NewBuilder(t *testing.T, store *history.Store) *Builder {
	t.Helper()
	return &Builder{t: t, store: store}
}

// WithPass adds a full pass over fileName that took d.
func (b *Builder) WithPass(fileName string, d time.Duration, opts ...PassOption) *Builder {
	p := passData{fileName: fileName, duration: d, repeat: 1}
	for _, opt := range opts {
		opt(&p)
	}
	b.passes = append(b.passes, p)
	return b
}

// Build records every accumulated pass.
func (b *Builder) Build() *history.Store {
	b.t.Helper()
	for _, p := range b.passes {
		for range p.repeat {
			require.NoError(b.t, b.store.Record(context.Background(), p.fileName, p.duration))
		}
	}
	return b.store
}
