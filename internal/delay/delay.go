// Package delay maps how long the last full highlight pass took to the
// debounce delays used before the next one.
package delay

import (
	"fmt"
	"sort"
	"time"
)

// Tier is one row of the delay table. A pass that took at least Threshold
// waits Delay before the next pass, or Busy while edits keep arriving.
type Tier struct {
	Threshold time.Duration `mapstructure:"threshold"`
	Delay     time.Duration `mapstructure:"delay"`
	Busy      time.Duration `mapstructure:"busy"`
}

// Table is a list of tiers ordered by ascending threshold.
type Table []Tier

// Default returns the built-in table.
func Default() Table {
	ms := time.Millisecond
	return Table{
		{Threshold: 50 * ms, Delay: 50 * ms, Busy: 100 * ms},
		{Threshold: 100 * ms, Delay: 100 * ms, Busy: 300 * ms},
		{Threshold: 200 * ms, Delay: 200 * ms, Busy: 500 * ms},
		{Threshold: 400 * ms, Delay: 400 * ms, Busy: 1000 * ms},
		{Threshold: 600 * ms, Delay: 600 * ms, Busy: 1500 * ms},
		{Threshold: 800 * ms, Delay: 800 * ms, Busy: 2000 * ms},
		{Threshold: 1200 * ms, Delay: 1200 * ms, Busy: 1000 * ms},
		{Threshold: 1600 * ms, Delay: 1600 * ms, Busy: 3000 * ms},
	}
}

// Validate checks that the table is non-empty, thresholds strictly increase
// and no duration is negative.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("delay table is empty")
	}
	for i, tier := range t {
		if tier.Threshold < 0 || tier.Delay < 0 || tier.Busy < 0 {
			return fmt.Errorf("delay tier %d has a negative duration", i)
		}
		if i > 0 && tier.Threshold <= t[i-1].Threshold {
			return fmt.Errorf("delay tier %d threshold %s must exceed %s", i, tier.Threshold, t[i-1].Threshold)
		}
	}
	return nil
}

// Lookup returns the tier with the greatest threshold not above d.
// Durations below every threshold get the first tier.
func (t Table) Lookup(d time.Duration) Tier {
	if len(t) == 0 {
		return Tier{}
	}
	i := sort.Search(len(t), func(i int) bool { return t[i].Threshold > d })
	if i == 0 {
		return t[0]
	}
	return t[i-1]
}

// Policy picks delays for a view from its previous pass duration.
type Policy struct {
	Table Table
	// Min is the user configured delay. When it exceeds the busy delay
	// both delays become Min, otherwise it has no effect.
	Min time.Duration
}

// Delays returns the delay and busy delay for a view whose previous full
// pass took prev.
func (p Policy) Delays(prev time.Duration) (delay, busy time.Duration) {
	table := p.Table
	if len(table) == 0 {
		table = Default()
	}
	tier := table.Lookup(prev)
	if p.Min > tier.Busy {
		return p.Min, p.Min
	}
	return tier.Delay, tier.Busy
}
