// Package colors normalizes color specs into canonical #RRGGBBAA strings.
//
// Every comparison in hues is done on the canonical form: two specs name the
// same color if and only if their canonical strings are equal.
package colors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// StylePrefix prefixes every style key.
const StylePrefix = "hues.col_"

var canonicalRE = regexp.MustCompile(`^#[0-9A-F]{8}$`)

// RGBA is a color with 8-bit channels.
type RGBA struct {
	R, G, B, A uint8
}

// String returns the canonical #RRGGBBAA form.
func (c RGBA) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Normalize converts a raw spec to canonical #RRGGBBAA.
// Accepted forms are #rgb, #rgba, #rrggbb and #rrggbbaa; short forms are
// expanded by doubling each digit and a missing alpha means fully opaque.
// Anything else reports false.
func Normalize(spec string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(spec))
	if !strings.HasPrefix(c, "#") {
		return "", false
	}
	switch len(c) {
	case 4:
		c = "#" + strings.Repeat(c[1:2], 2) + strings.Repeat(c[2:3], 2) + strings.Repeat(c[3:4], 2) + "FF"
	case 5:
		c = "#" + strings.Repeat(c[1:2], 2) + strings.Repeat(c[2:3], 2) + strings.Repeat(c[3:4], 2) + strings.Repeat(c[4:5], 2)
	case 7:
		c += "FF"
	}
	if !canonicalRE.MatchString(c) {
		return "", false
	}
	return c, true
}

// Parse decodes a color into channels after normalizing it.
func Parse(spec string) (RGBA, error) {
	c, ok := Normalize(spec)
	if !ok {
		return RGBA{}, fmt.Errorf("invalid color %q", spec)
	}
	v, err := strconv.ParseUint(c[1:], 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("parsing color %q: %w", spec, err)
	}
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// Resolve looks up token in table and normalizes its spec.
// Reports false when the token is unknown or its spec is invalid.
func Resolve(table map[string]string, token string) (string, bool) {
	spec, ok := table[token]
	if !ok {
		return "", false
	}
	return Normalize(spec)
}

// AvoidBackground nudges color away from background when the two are equal.
// Each of R, G and B moves by one (down when above 1, otherwise up) and the
// alpha channel is kept.
func AvoidBackground(color, background string) string {
	bg, ok := Normalize(background)
	if !ok || bg != color {
		return color
	}
	c, err := Parse(color)
	if err != nil {
		return color
	}
	c.R = nudge(c.R)
	c.G = nudge(c.G)
	c.B = nudge(c.B)
	return c.String()
}

func nudge(v uint8) uint8 {
	if v > 1 {
		return v - 1
	}
	return v + 1
}

// StyleKey returns the style key used to render color.
func StyleKey(color string) string {
	return StylePrefix + strings.TrimPrefix(color, "#")
}

// IsLight reports whether color reads as a light color (CIE L* above 50).
// Invalid colors are treated as dark.
func IsLight(color string) bool {
	c, err := Parse(color)
	if err != nil {
		return false
	}
	cf := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
	l, _, _ := cf.Lab()
	return l > 0.5
}
