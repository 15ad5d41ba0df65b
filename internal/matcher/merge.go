package matcher

import "github.com/zjrosen/hues/internal/text"

// Groups maps a style key to its highlighted regions.
type Groups map[string][]text.Region

// Add appends r to the group key.
func (g Groups) Add(key string, r text.Region) {
	g[key] = append(g[key], r)
}

// Merge folds the results of a dirty-line scan into prior groups.
//
// A prior region wholly contained in one of the rescanned lines is dropped;
// every other prior region is kept unchanged. Fresh regions are added. Keys
// whose regions were all dropped stay in the result with an empty slice so the
// caller can clear them. Regions in the result are position ordered.
func Merge(prior, fresh Groups, lines []text.Region) Groups {
	out := make(Groups, len(prior)+len(fresh))
	for key, regions := range prior {
		kept := make([]text.Region, 0, len(regions))
		for _, r := range regions {
			if !insideAny(r, lines) {
				kept = append(kept, r)
			}
		}
		out[key] = kept
	}
	for key, regions := range fresh {
		out[key] = append(out[key], regions...)
	}
	for _, regions := range out {
		text.SortRegions(regions)
	}
	return out
}

func insideAny(r text.Region, lines []text.Region) bool {
	for _, line := range lines {
		if line.Contains(r) {
			return true
		}
	}
	return false
}
