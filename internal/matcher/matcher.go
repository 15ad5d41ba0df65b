// Package matcher finds color tokens in text.
//
// A Table is compiled into one alternation pattern whose alternatives are
// guarded by look-around assertions, so a token never matches inside a longer
// identifier ("redness", "xred") or next to '-' and '.' ("red-x", "a.red").
package matcher

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/hues/internal/log"
	"github.com/zjrosen/hues/internal/text"
)

// FallbackToken is matched when no colors are configured, so a comment
// mentioning it shows up highlighted.
const FallbackToken = "$$highlighter$$"

// DefaultMatchTimeout bounds a single regex evaluation.
const DefaultMatchTimeout = time.Second

const (
	boundaryBefore = `(?<![-.\w])`
	boundaryAfter  = `(?![-.\w])`
)

// Table maps tokens to raw color specs.
type Table map[string]string

// Fallback returns the table used when none is configured.
func Fallback() Table {
	return Table{FallbackToken: "#ffd700"}
}

// Digest returns a content hash of the table. Equal tables have equal digests.
func (t Table) Digest() string {
	keys := t.sortedKeys()
	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
		h.Write([]byte(t[k]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// sortedKeys orders keys longest first so the longest token wins at a position.
func (t Table) sortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Match is one token occurrence at absolute buffer offsets.
type Match struct {
	Region text.Region
	Token  string
}

// Source provides text by region.
type Source interface {
	Substr(r text.Region) string
}

// Compiled is the matcher built from a Table.
type Compiled struct {
	re     *regexp2.Regexp
	tokens []string // capture group i+1 matched tokens[i]
	table  Table
	digest string
}

// Compile builds the matcher for t. It never fails: an empty table, or one
// whose pattern cannot be compiled, is replaced by Fallback.
func Compile(t Table) *Compiled {
	if len(t.sortedKeys()) == 0 {
		log.Warn(log.CatMatcher, "No colors configured, using fallback table")
		t = Fallback()
	}
	c, err := compile(t)
	if err != nil {
		log.ErrorErr(log.CatMatcher, "Failed to compile color table, using fallback", err, "tokens", len(t))
		c, _ = compile(Fallback())
	}
	return c
}

func compile(t Table) (*Compiled, error) {
	tokens := t.sortedKeys()
	alts := make([]string, len(tokens))
	for i, tok := range tokens {
		alts[i] = "(" + regexp2.Escape(tok) + ")"
	}
	pattern := boundaryBefore + "(?:" + strings.Join(alts, "|") + ")" + boundaryAfter
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = DefaultMatchTimeout

	table := make(Table, len(t))
	for k, v := range t {
		table[k] = v
	}
	log.Debug(log.CatMatcher, "Compiled color table", "tokens", len(tokens))
	return &Compiled{
		re:     re,
		tokens: tokens,
		table:  table,
		digest: t.Digest(),
	}, nil
}

// Table returns the table the matcher was built from.
func (c *Compiled) Table() Table {
	return c.table
}

// Digest returns the digest of the source table.
func (c *Compiled) Digest() string {
	return c.digest
}

// Find returns every match in s, in position order. Offsets are shifted by base.
func (c *Compiled) Find(s string, base int) []Match {
	var matches []Match
	m, err := c.re.FindStringMatch(s)
	for m != nil && err == nil {
		matches = append(matches, Match{
			Region: text.Region{Begin: base + m.Index, End: base + m.Index + m.Length},
			Token:  c.token(m),
		})
		m, err = c.re.FindNextMatch(m)
	}
	if err != nil {
		log.ErrorErr(log.CatMatcher, "Match aborted", err, "found", len(matches))
	}
	return matches
}

func (c *Compiled) token(m *regexp2.Match) string {
	for i, tok := range c.tokens {
		if g := m.GroupByNumber(i + 1); g != nil && len(g.Captures) > 0 {
			return tok
		}
	}
	return m.String()
}

// FindRegion scans a single region of src.
func (c *Compiled) FindRegion(src Source, r text.Region) []Match {
	return c.Find(src.Substr(r), r.Begin)
}

// FindLines scans each line region of src independently and returns the
// matches of all lines in the order the lines were given.
func (c *Compiled) FindLines(src Source, lines []text.Region) []Match {
	var matches []Match
	for _, line := range lines {
		matches = append(matches, c.FindRegion(src, line)...)
	}
	return matches
}
