// Package icon synthesizes the gutter icons drawn next to highlighted
// lines: 32×32 RGBA PNG files tinted to a color over a neutral backdrop.
package icon

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/zjrosen/hues/internal/colors"
)

const (
	// Size is the icon width and height in pixels.
	Size = 32
	// rawSize is the length of the uncompressed scanlines.
	rawSize = Size * (1 + Size*4)
)

var (
	pngSignature = []byte("\x89PNG\r\n\x1a\n")
	// IHDR chunk for 32×32, 8-bit depth, RGBA, no interlace.
	pngHeader = []byte{
		0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
		0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00, 0x20,
		0x08, 0x06, 0x00, 0x00, 0x00,
		0x73, 0x7a, 0x7a, 0xf4,
	}
	pngEnd = []byte{
		0x00, 0x00, 0x00, 0x00, 'I', 'E', 'N', 'D',
		0xae, 0x42, 0x60, 0x82,
	}

	mainSentinel = [3]byte{0x1f, 0x2f, 0x3f}
	edgeSentinel = [3]byte{0x4f, 0x5f, 0x6f}
)

// Backdrop is the neutral color an icon is composited over.
type Backdrop string

const (
	Light Backdrop = "light"
	Dark  Backdrop = "dark"
	// Auto picks Light or Dark from the view background.
	Auto Backdrop = "auto"
)

// ParseBackdrop accepts light, dark or auto. Anything else is Light.
func ParseBackdrop(name string) Backdrop {
	switch b := Backdrop(name); b {
	case Light, Dark, Auto:
		return b
	default:
		return Light
	}
}

// For resolves the policy against a view background. Only Auto consults
// the background.
func (b Backdrop) For(background string) Backdrop {
	if b != Auto {
		return b
	}
	if background == "" || colors.IsLight(background) {
		return Light
	}
	return Dark
}

// bases returns the backdrop values behind main and edge pixels.
func (b Backdrop) bases() (main, edge float64) {
	if b == Dark {
		return 0x99, 0x66
	}
	return 0xff, 0xcc
}

// Tint returns the main and edge RGB triples for c composited over b.
func Tint(c colors.RGBA, b Backdrop) (main, edge [3]byte) {
	a := float64(c.A) / 255.0
	baseMain, baseEdge := b.bases()
	src := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	for i, v := range src {
		main[i] = byte(int(v*a+baseMain*(1-a)) & 0xff)
		edge[i] = byte(int(v*a+baseEdge*(1-a)) & 0xff)
	}
	return main, edge
}

// Encode renders shape tinted to c over backdrop as a PNG file.
// The output is deterministic for equal inputs.
func Encode(c colors.RGBA, shape Shape, backdrop Backdrop) ([]byte, error) {
	tmpl, err := template(shape)
	if err != nil {
		return nil, err
	}
	main, edge := Tint(c, backdrop)
	pixels := substitute(tmpl, main, edge)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(pixels); err != nil {
		return nil, fmt.Errorf("compress icon: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress icon: %w", err)
	}

	var out bytes.Buffer
	out.Grow(len(pngSignature) + len(pngHeader) + 12 + compressed.Len() + len(pngEnd))
	out.Write(pngSignature)
	out.Write(pngHeader)
	writeChunk(&out, "IDAT", compressed.Bytes())
	out.Write(pngEnd)
	return out.Bytes(), nil
}

// substitute copies tmpl replacing every sentinel triple in a single left
// to right pass. Replaced bytes are never rescanned.
func substitute(tmpl []byte, main, edge [3]byte) []byte {
	out := make([]byte, len(tmpl))
	copy(out, tmpl)
	for i := 0; i+3 <= len(out); {
		switch [3]byte{out[i], out[i+1], out[i+2]} {
		case mainSentinel:
			copy(out[i:], main[:])
			i += 3
		case edgeSentinel:
			copy(out[i:], edge[:])
			i += 3
		default:
			i++
		}
	}
	return out
}

func writeChunk(w *bytes.Buffer, kind string, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	w.Write(length[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	w.WriteString(kind)
	w.Write(data)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.Write(sum[:])
}
