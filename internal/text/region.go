// Package text provides buffer positions, regions and an in-memory rune buffer.
//
// All offsets are code point (rune) offsets, matching how the matcher reports
// match positions.
package text

import "sort"

// Region is a half-open range [Begin, End) of code point offsets.
type Region struct {
	Begin int
	End   int
}

// NewRegion creates a region, swapping the bounds if they are reversed.
func NewRegion(a, b int) Region {
	if b < a {
		a, b = b, a
	}
	return Region{Begin: a, End: b}
}

// Point creates an empty region at p.
func Point(p int) Region {
	return Region{Begin: p, End: p}
}

// Len returns the number of code points covered.
func (r Region) Len() int {
	return r.End - r.Begin
}

// Empty reports whether the region covers nothing.
func (r Region) Empty() bool {
	return r.End <= r.Begin
}

// Contains reports whether other lies wholly inside r.
func (r Region) Contains(other Region) bool {
	return other.Begin >= r.Begin && other.End <= r.End
}

// Shift returns the region moved by delta.
func (r Region) Shift(delta int) Region {
	return Region{Begin: r.Begin + delta, End: r.End + delta}
}

// SortRegions orders regions by position in place.
func SortRegions(rs []Region) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Begin != rs[j].Begin {
			return rs[i].Begin < rs[j].Begin
		}
		return rs[i].End < rs[j].End
	})
}
