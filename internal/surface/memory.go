package surface

import (
	"sort"
	"sync"

	"github.com/zjrosen/hues/internal/text"
)

// Memory is a View over an in-memory text.Buffer. Overlays follow edits
// made through Set and Replace.
type Memory struct {
	*text.Buffer

	id ViewID

	mu         sync.RWMutex
	fileName   string
	loading    bool
	selections []text.Region
	visible    *text.Region
	background string
	overlays   map[string]Overlay
}

// NewMemory creates a view holding content.
func NewMemory(id ViewID, fileName, content string) *Memory {
	return &Memory{
		Buffer:   text.NewBuffer(content),
		id:       id,
		fileName: fileName,
		overlays: make(map[string]Overlay),
	}
}

func (m *Memory) ID() ViewID { return m.id }

// Replace substitutes the content of r with s. Overlay regions after r move
// by the change in length; regions overlapping the replaced text are dropped.
func (m *Memory) Replace(r text.Region, s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r = clampRegion(r, m.Buffer.Size())
	m.Buffer.Replace(r, s)
	delta := len([]rune(s)) - r.Len()
	for key, o := range m.overlays {
		o.Regions = followEdit(o.Regions, r, delta)
		m.overlays[key] = o
	}
}

// Set replaces the whole content as one edit spanning everything between
// the common prefix and suffix of the old and new text.
func (m *Memory) Set(s string) {
	prev := []rune(m.Buffer.String())
	next := []rune(s)

	prefix := 0
	for prefix < len(prev) && prefix < len(next) && prev[prefix] == next[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(prev)-prefix && suffix < len(next)-prefix &&
		prev[len(prev)-1-suffix] == next[len(next)-1-suffix] {
		suffix++
	}
	if prefix == len(prev) && prefix == len(next) {
		return
	}
	m.Replace(text.Region{Begin: prefix, End: len(prev) - suffix}, string(next[prefix:len(next)-suffix]))
}

func clampRegion(r text.Region, size int) text.Region {
	r.Begin = min(max(r.Begin, 0), size)
	r.End = min(max(r.End, r.Begin), size)
	return r
}

// followEdit maps regions across replacing r with text delta code points
// longer or shorter. Regions ending at or before r.Begin stay, regions
// starting at or after r.End shift, and the rest touched replaced text.
func followEdit(regions []text.Region, r text.Region, delta int) []text.Region {
	out := make([]text.Region, 0, len(regions))
	for _, g := range regions {
		switch {
		case g.End <= r.Begin:
			out = append(out, g)
		case g.Begin >= r.End:
			out = append(out, g.Shift(delta))
		}
	}
	return out
}

func (m *Memory) FileName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fileName
}

// SetFileName renames the buffer, as a "save as" would.
func (m *Memory) SetFileName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileName = name
}

func (m *Memory) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Memory) SetLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *Memory) Selections() []text.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]text.Region, len(m.selections))
	copy(out, m.selections)
	return out
}

func (m *Memory) SetSelections(sel ...text.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selections = append(m.selections[:0], sel...)
}

// VisibleRegion defaults to the whole buffer.
func (m *Memory) VisibleRegion() text.Region {
	m.mu.RLock()
	visible := m.visible
	m.mu.RUnlock()
	if visible == nil {
		return text.Region{Begin: 0, End: m.Size()}
	}
	return *visible
}

func (m *Memory) SetVisibleRegion(r text.Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = &r
}

func (m *Memory) Background() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.background
}

func (m *Memory) SetBackground(color string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.background = color
}

func (m *Memory) Overlay(key string) []text.Region {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.overlays[key]
	if !ok {
		return nil
	}
	out := make([]text.Region, len(o.Regions))
	copy(out, o.Regions)
	return out
}

func (m *Memory) AddOverlay(o Overlay) {
	regions := make([]text.Region, len(o.Regions))
	copy(regions, o.Regions)
	o.Regions = regions

	m.mu.Lock()
	defer m.mu.Unlock()
	m.overlays[o.Key] = o
}

func (m *Memory) EraseOverlay(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overlays, key)
}

// Overlays returns every overlay ordered by key.
func (m *Memory) Overlays() []Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Overlay, 0, len(m.overlays))
	for _, o := range m.overlays {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
