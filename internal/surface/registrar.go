package surface

import (
	"sync"

	"github.com/zjrosen/hues/internal/colors"
)

// Palette is the default Registrar. Style keys are derived from the color
// alone, so a color always maps to the same key.
type Palette struct {
	mu      sync.RWMutex
	styles  map[string]string
	pending map[string]string
	flushes int
}

// NewPalette creates an empty palette.
func NewPalette() *Palette {
	return &Palette{
		styles:  make(map[string]string),
		pending: make(map[string]string),
	}
}

// Register returns the style key for color. The table is not needed to
// derive the key.
func (p *Palette) Register(color string, table map[string]string) string {
	key := colors.StyleKey(color)
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.styles[key]; !ok {
		p.pending[key] = color
	}
	return key
}

// Update publishes pending styles.
func (p *Palette) Update(view View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return
	}
	for key, color := range p.pending {
		p.styles[key] = color
	}
	clear(p.pending)
	p.flushes++
}

// Color returns the color published under key.
func (p *Palette) Color(key string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.styles[key]
	return c, ok
}

// Len returns the number of published styles.
func (p *Palette) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.styles)
}

// Reset forgets every style.
func (p *Palette) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.styles)
	clear(p.pending)
}
