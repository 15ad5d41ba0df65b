package text

import (
	"sort"
	"sync"
)

// Buffer is a thread-safe in-memory text buffer addressed by code points.
type Buffer struct {
	mu    sync.RWMutex
	runes []rune
	// lineStarts holds the offset of the first code point of every line.
	lineStarts []int
}

// NewBuffer creates a buffer holding s.
func NewBuffer(s string) *Buffer {
	b := &Buffer{}
	b.Set(s)
	return b
}

// Set replaces the whole buffer content.
func (b *Buffer) Set(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runes = []rune(s)
	b.reindex()
}

// Replace substitutes the content of r with s.
func (b *Buffer) Replace(r Region, s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r = b.clamp(r)
	ins := []rune(s)
	out := make([]rune, 0, len(b.runes)-r.Len()+len(ins))
	out = append(out, b.runes[:r.Begin]...)
	out = append(out, ins...)
	out = append(out, b.runes[r.End:]...)
	b.runes = out
	b.reindex()
}

func (b *Buffer) reindex() {
	b.lineStarts = b.lineStarts[:0]
	b.lineStarts = append(b.lineStarts, 0)
	for i, c := range b.runes {
		if c == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
}

func (b *Buffer) clamp(r Region) Region {
	n := len(b.runes)
	if r.Begin < 0 {
		r.Begin = 0
	}
	if r.End > n {
		r.End = n
	}
	if r.Begin > r.End {
		r.Begin = r.End
	}
	return r
}

// Size returns the number of code points in the buffer.
func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.runes)
}

// String returns the whole buffer content.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.runes)
}

// Substr returns the text covered by r, clamped to the buffer.
func (b *Buffer) Substr(r Region) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r = b.clamp(r)
	return string(b.runes[r.Begin:r.End])
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lineStarts)
}

// Line returns the region of the line containing p, excluding the newline.
func (b *Buffer) Line(p int) Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.line(b.lineIndex(p))
}

// LineAt returns the region of line n (zero based).
func (b *Buffer) LineAt(n int) Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(b.lineStarts) {
		n = len(b.lineStarts) - 1
	}
	return b.line(n)
}

// RowOf returns the zero based line number containing p.
func (b *Buffer) RowOf(p int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineIndex(p)
}

// Lines returns every line intersecting r, each as a full line region.
func (b *Buffer) Lines(r Region) []Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r = b.clamp(r)
	first := b.lineIndex(r.Begin)
	last := b.lineIndex(r.End)
	lines := make([]Region, 0, last-first+1)
	for i := first; i <= last; i++ {
		lines = append(lines, b.line(i))
	}
	return lines
}

func (b *Buffer) lineIndex(p int) int {
	if p <= 0 {
		return 0
	}
	// Index of the last line start <= p.
	i := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > p })
	return i - 1
}

func (b *Buffer) line(i int) Region {
	begin := b.lineStarts[i]
	end := len(b.runes)
	if i+1 < len(b.lineStarts) {
		end = b.lineStarts[i+1] - 1
	}
	return Region{Begin: begin, End: end}
}
