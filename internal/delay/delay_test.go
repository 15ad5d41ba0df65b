package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const ms = time.Millisecond

func TestLookup(t *testing.T) {
	tests := []struct {
		name  string
		prev  time.Duration
		delay time.Duration
		busy  time.Duration
	}{
		{name: "below every threshold", prev: 5 * ms, delay: 50 * ms, busy: 100 * ms},
		{name: "exact threshold", prev: 100 * ms, delay: 100 * ms, busy: 300 * ms},
		{name: "between thresholds", prev: 150 * ms, delay: 100 * ms, busy: 300 * ms},
		{name: "busy lower than delay", prev: 1300 * ms, delay: 1200 * ms, busy: 1000 * ms},
		{name: "above every threshold", prev: 10 * time.Second, delay: 1600 * ms, busy: 3000 * ms},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier := Default().Lookup(tt.prev)
			require.Equal(t, tt.delay, tier.Delay)
			require.Equal(t, tt.busy, tier.Busy)
		})
	}
}

func TestLookup_EmptyTable(t *testing.T) {
	require.Equal(t, Tier{}, Table{}.Lookup(time.Second))
}

func TestPolicy_Delays(t *testing.T) {
	delay, busy := Policy{}.Delays(150 * ms)
	require.Equal(t, 100*ms, delay)
	require.Equal(t, 300*ms, busy)

	// a minimum above the busy delay replaces both
	delay, busy = Policy{Min: 500 * ms}.Delays(150 * ms)
	require.Equal(t, 500*ms, delay)
	require.Equal(t, 500*ms, busy)

	// a minimum not above the busy delay is ignored
	delay, busy = Policy{Min: 200 * ms}.Delays(150 * ms)
	require.Equal(t, 100*ms, delay)
	require.Equal(t, 300*ms, busy)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())
	require.Error(t, Table{}.Validate())
	require.Error(t, Table{{Threshold: 10 * ms}, {Threshold: 10 * ms}}.Validate())
	require.Error(t, Table{{Threshold: 10 * ms, Delay: -1}}.Validate())
}

func TestLookup_ThresholdNotAbovePrevious(t *testing.T) {
	table := Default()
	rapid.Check(t, func(t *rapid.T) {
		prev := time.Duration(rapid.Int64Range(0, int64(5*time.Second)).Draw(t, "prev"))
		tier := table.Lookup(prev)
		if prev >= table[0].Threshold && tier.Threshold > prev {
			t.Fatalf("tier threshold %s above %s", tier.Threshold, prev)
		}
		for _, other := range table {
			if other.Threshold <= prev && other.Threshold > tier.Threshold {
				t.Fatalf("tier %s is not the greatest threshold <= %s", tier.Threshold, prev)
			}
		}
	})
}
