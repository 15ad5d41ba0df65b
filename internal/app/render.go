package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/hues/internal/colors"
	"github.com/zjrosen/hues/internal/highlight"
	"github.com/zjrosen/hues/internal/surface"
	"github.com/zjrosen/hues/internal/text"
)

// GutterGlyph is drawn in the gutter of a line that carries an icon overlay.
const GutterGlyph = "●"

// Source is the part of a view the renderer reads.
type Source interface {
	LineCount() int
	LineAt(n int) text.Region
	Substr(r text.Region) string
	Overlays() []surface.Overlay
}

// Styles resolves published style keys to colors.
type Styles interface {
	Color(key string) (string, bool)
}

// RenderOptions controls Render.
type RenderOptions struct {
	// Gutter reserves a column for gutter icons.
	Gutter bool
	// Numbers prefixes each line with its one based number.
	Numbers bool
	// Width truncates each rendered line. Zero disables truncation.
	Width int
	// TabWidth expands tabs. Zero keeps them.
	TabWidth int
}

// Render draws every line of src with its value overlays as colored
// backgrounds. Keys whose style has not been published are drawn plain.
func Render(src Source, styles Styles, opts RenderOptions) []string {
	n := src.LineCount()
	values, icons := collect(src, styles)

	digits := len(fmt.Sprint(n))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line := src.LineAt(i)
		var b strings.Builder
		if opts.Numbers {
			num := runewidth.FillLeft(fmt.Sprint(i+1), digits)
			b.WriteString(numberStyle.Render(num))
			b.WriteString(" ")
		}
		if opts.Gutter {
			if c, ok := icons[line.Begin]; ok {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(rgb(c))).Render(GutterGlyph))
			} else {
				b.WriteString(" ")
			}
			b.WriteString(" ")
		}
		b.WriteString(renderLine(src.Substr(line), line.Begin, values, opts.TabWidth))

		s := b.String()
		if opts.Width > 0 {
			s = ansi.Truncate(s, opts.Width, "…")
		}
		out = append(out, s)
	}
	return out
}

var numberStyle = lipgloss.NewStyle().Faint(true)

type span struct {
	region text.Region
	color  string
}

// collect splits overlays into value spans and gutter icons keyed by the
// line start they mark.
func collect(src Source, styles Styles) ([]span, map[int]string) {
	var values []span
	icons := make(map[int]string)
	for _, o := range src.Overlays() {
		if base, ok := strings.CutSuffix(o.Key, highlight.IconSuffix); ok {
			c, ok := styles.Color(base)
			if !ok {
				continue
			}
			for _, r := range o.Regions {
				icons[r.Begin] = c
			}
			continue
		}
		c, ok := styles.Color(o.Style)
		if !ok {
			continue
		}
		for _, r := range o.Regions {
			values = append(values, span{region: r, color: c})
		}
	}
	return values, icons
}

// renderLine styles the runes of one line starting at offset begin.
func renderLine(line string, begin int, values []span, tabWidth int) string {
	runes := []rune(line)
	paint := make([]string, len(runes))
	for _, s := range values {
		from := max(s.region.Begin, begin) - begin
		to := min(s.region.End, begin+len(runes)) - begin
		for j := from; j < to; j++ {
			paint[j] = s.color
		}
	}

	var b strings.Builder
	for j := 0; j < len(runes); {
		k := j
		for k < len(runes) && paint[k] == paint[j] {
			k++
		}
		chunk := string(runes[j:k])
		if tabWidth > 0 {
			chunk = strings.ReplaceAll(chunk, "\t", strings.Repeat(" ", tabWidth))
		}
		if c := paint[j]; c != "" {
			chunk = Swatch(c).Render(chunk)
		}
		b.WriteString(chunk)
		j = k
	}
	return b.String()
}

// Swatch draws text on color, picking a readable foreground.
func Swatch(color string) lipgloss.Style {
	fg := "#FFFFFF"
	if colors.IsLight(color) {
		fg = "#000000"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(rgb(color))).
		Foreground(lipgloss.Color(fg))
}

// rgb drops the alpha channel of a canonical color; terminals have none.
func rgb(color string) string {
	if len(color) == 9 {
		return color[:7]
	}
	return color
}
