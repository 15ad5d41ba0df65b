package surface

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Workspace tracks the open views.
type Workspace struct {
	mu     sync.RWMutex
	views  map[ViewID]View
	active ViewID
	nextID atomic.Int64
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{views: make(map[ViewID]View)}
}

// NextID returns a fresh view id.
func (w *Workspace) NextID() ViewID {
	return ViewID(w.nextID.Add(1))
}

// Open adds v and makes it active.
func (w *Workspace) Open(v View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.views[v.ID()] = v
	w.active = v.ID()
}

// Close removes the view with id.
func (w *Workspace) Close(id ViewID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.views, id)
	if w.active == id {
		w.active = 0
	}
}

// Contains reports whether a view with id is open.
func (w *Workspace) Contains(id ViewID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.views[id]
	return ok
}

// View returns the open view with id.
func (w *Workspace) View(id ViewID) (View, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.views[id]
	return v, ok
}

// Activate makes the view with id active. It reports false if id is not open.
func (w *Workspace) Activate(id ViewID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.views[id]; !ok {
		return false
	}
	w.active = id
	return true
}

// Active returns the active view.
func (w *Workspace) Active() (View, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.views[w.active]
	return v, ok
}

// Views returns the open views ordered by id.
func (w *Workspace) Views() []View {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]View, 0, len(w.views))
	for _, v := range w.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
