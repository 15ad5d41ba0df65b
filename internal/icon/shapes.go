package icon

import (
	"bytes"
	"compress/zlib"
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Shape names a gutter icon template.
type Shape string

const (
	Circle Shape = "circle"
	Square Shape = "square"
	Fill   Shape = "fill"

	// DefaultShape is used for unknown shape names.
	DefaultShape = Circle
)

// Shapes lists every known shape.
var Shapes = []Shape{Circle, Square, Fill}

// ParseShape maps a name to a known shape, falling back to DefaultShape.
func ParseShape(name string) Shape {
	switch s := Shape(strings.ToLower(strings.TrimSpace(name))); s {
	case Circle, Square, Fill:
		return s
	default:
		return DefaultShape
	}
}

// templates holds the zlib compressed scanlines of each shape. Every
// template decompresses to 32 rows of a filter byte followed by 32 RGBA
// pixels, with the sentinels 1F2F3F and 4F5F6F marking main and edge
// pixels.
//
//go:embed shapes/*.zz
var templates embed.FS

var (
	rawOnce sync.Once
	raw     map[Shape][]byte
	rawErr  error
)

// template returns the decompressed scanlines for shape. The returned slice
// is shared and must not be modified.
func template(shape Shape) ([]byte, error) {
	rawOnce.Do(func() {
		raw = make(map[Shape][]byte, len(Shapes))
		for _, s := range Shapes {
			data, err := loadTemplate(s)
			if err != nil {
				rawErr = err
				return
			}
			raw[s] = data
		}
	})
	if rawErr != nil {
		return nil, rawErr
	}
	return raw[ParseShape(string(shape))], nil
}

func loadTemplate(shape Shape) ([]byte, error) {
	compressed, err := templates.ReadFile("shapes/" + string(shape) + ".zz")
	if err != nil {
		return nil, fmt.Errorf("read %s template: %w", shape, err)
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open %s template: %w", shape, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate %s template: %w", shape, err)
	}
	if len(data) != rawSize {
		return nil, fmt.Errorf("%s template is %d bytes, want %d", shape, len(data), rawSize)
	}
	return data, nil
}
