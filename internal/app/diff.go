package app

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/hues/internal/text"
)

func lineDiff(prev, next string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, index := dmp.DiffLinesToChars(prev, next)
	return dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), index)
}

// changedLines returns the zero based lines of next that differ from prev,
// in ascending order, and whether both texts have the same number of lines.
// A deleted line marks the line that took its place.
func changedLines(prev, next string) ([]int, bool) {
	return linesOf(lineDiff(prev, next), prev, next)
}

func linesOf(diffs []diffmatchpatch.Diff, prev, next string) ([]int, bool) {
	changed := make(map[int]struct{})
	line := 0
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line += n
		case diffmatchpatch.DiffInsert:
			for i := 0; i < max(n, 1); i++ {
				changed[line+i] = struct{}{}
			}
			line += n
		case diffmatchpatch.DiffDelete:
			changed[line] = struct{}{}
		}
	}

	last := strings.Count(next, "\n")
	out := make([]int, 0, len(changed))
	for l := range changed {
		if l <= last {
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out, strings.Count(prev, "\n") == last
}

type replacer interface {
	Replace(r text.Region, s string)
}

// applyDiff replays diffs against dst as one Replace per hunk so anything
// anchored to unchanged lines moves with them.
func applyDiff(dst replacer, diffs []diffmatchpatch.Diff) {
	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			dst.Replace(text.Region{Begin: pos, End: pos + n}, "")
		case diffmatchpatch.DiffInsert:
			dst.Replace(text.Point(pos), d.Text)
			pos += n
		}
	}
}
