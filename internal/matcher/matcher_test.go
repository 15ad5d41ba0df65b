package matcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/hues/internal/cachemanager"
	"github.com/zjrosen/hues/internal/text"
)

func tokens(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Token
	}
	return out
}

func TestFind_OnlyStandaloneTokens(t *testing.T) {
	c := Compile(Table{"red": "#ff0000"})

	matches := c.Find("red redness xred", 0)
	require.Len(t, matches, 1)
	require.Equal(t, Match{Region: text.Region{Begin: 0, End: 3}, Token: "red"}, matches[0])
}

func TestFind_BoundaryCharacters(t *testing.T) {
	c := Compile(Table{"red": "#ff0000"})

	tests := []struct {
		input string
		count int
	}{
		{"red", 1},
		{"(red)", 1},
		{"red, red;", 2},
		{"red-x", 0},
		{"x-red", 0},
		{"a.red", 0},
		{"red.b", 0},
		{"red_", 0},
		{"réd red", 1},
		{"ared", 0},
		{"red2", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Len(t, c.Find(tt.input, 0), tt.count)
		})
	}
}

func TestFind_LongestTokenWins(t *testing.T) {
	c := Compile(Table{"light": "#eee", "light red": "#f88", "red": "#f00"})

	matches := c.Find("light red, light", 0)
	require.Equal(t, []string{"light red", "light"}, tokens(matches))
	require.Equal(t, text.Region{Begin: 0, End: 9}, matches[0].Region)
}

func TestFind_EscapesTokens(t *testing.T) {
	c := Compile(Table{"a+b": "#123", "(x)": "#456"})

	matches := c.Find("a+b aab (x)", 0)
	require.Equal(t, []string{"a+b", "(x)"}, tokens(matches))
}

func TestFind_OffsetsAreCodePoints(t *testing.T) {
	c := Compile(Table{"blue": "#00f"})

	matches := c.Find("ümlaut blue", 100)
	require.Len(t, matches, 1)
	require.Equal(t, text.Region{Begin: 107, End: 111}, matches[0].Region)
}

func TestCompile_EmptyTableUsesFallback(t *testing.T) {
	c := Compile(nil)
	require.Equal(t, Fallback(), c.Table())

	matches := c.Find("// if $$highlighter$$ is colored", 0)
	require.Equal(t, []string{FallbackToken}, tokens(matches))

	c = Compile(Table{"": "#fff"})
	require.Equal(t, Fallback(), c.Table(), "a table with only an empty key is empty")
}

func TestFind_Idempotent(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{2,6}`), 1, 6).Draw(r, "tokens")
		table := Table{}
		for _, w := range words {
			table[w] = "#abcdef"
		}
		c := Compile(table)

		pieces := rapid.SliceOfN(rapid.SampledFrom(append(words, " ", "-", ".", "x", "\n", "_")), 0, 40).Draw(r, "pieces")
		input := strings.Join(pieces, "")

		first := c.Find(input, 0)
		second := c.Find(input, 0)
		if len(first) != len(second) {
			r.Fatalf("scan not idempotent: %d vs %d matches", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				r.Fatalf("match %d differs: %+v vs %+v", i, first[i], second[i])
			}
			if i > 0 && first[i].Region.Begin < first[i-1].Region.End {
				r.Fatalf("matches out of order at %d", i)
			}
			if _, ok := table[first[i].Token]; !ok {
				r.Fatalf("matched unknown token %q", first[i].Token)
			}
		}
	})
}

func TestFindLines_OffsetsByLine(t *testing.T) {
	buf := text.NewBuffer("red\nno match\nblue red")
	c := Compile(Table{"red": "#f00", "blue": "#00f"})

	matches := c.FindLines(buf, []text.Region{buf.LineAt(0), buf.LineAt(2)})
	require.Equal(t, []Match{
		{Region: text.Region{Begin: 0, End: 3}, Token: "red"},
		{Region: text.Region{Begin: 13, End: 17}, Token: "blue"},
		{Region: text.Region{Begin: 18, End: 21}, Token: "red"},
	}, matches)
}

func TestDigest_ContentAddressed(t *testing.T) {
	a := Table{"red": "#f00", "blue": "#00f"}
	b := Table{"blue": "#00f", "red": "#f00"}
	require.Equal(t, a.Digest(), b.Digest())

	b["blue"] = "#00e"
	require.NotEqual(t, a.Digest(), b.Digest())
}

func TestCache_SameTableNoRebuild(t *testing.T) {
	cache := NewCache(cachemanager.NewInMemoryCacheManager[string, *Compiled]("matchers", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval))
	ctx := context.Background()

	first := cache.Get(ctx, Table{"red": "#f00"})
	second := cache.Get(ctx, Table{"red": "#f00"})
	require.Same(t, first, second)

	third := cache.Get(ctx, Table{"red": "#e00"})
	require.NotSame(t, first, third)
}
