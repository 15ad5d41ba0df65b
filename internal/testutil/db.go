// Package testutil provides test utilities for timing history setup.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hues/internal/history"
)

// NewHistory opens an in-memory timing history closed at test cleanup.
func NewHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
