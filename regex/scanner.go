package regex

import (
	"strings"
	"sync"
)

// anchorBlock replaces a disallowed \A or \G so the pattern cannot match there.
const anchorBlock = `\uFFFF`

// Pattern is one entry of a Scanner. Origin names the grammar pattern
// Source was derived from; empty means Source itself.
type Pattern struct {
	Source string
	Origin string
}

// FindOptions selects which anchors may match during a search.
type FindOptions struct {
	// FirstLine allows \A.
	FirstLine bool
	// AtAnchor allows \G. It is true when the search position equals the
	// end of the previous begin or while match.
	AtAnchor bool
}

func (o FindOptions) variant() int {
	v := 0
	if o.FirstLine {
		v |= 1
	}
	if o.AtAnchor {
		v |= 2
	}
	return v
}

// Scanner searches several patterns at once and reports the leftmost
// match, ties going to the earlier pattern.
type Scanner struct {
	cache    *Cache
	patterns []Pattern
	anchored bool

	once     [4]sync.Once
	variants [4][]Regexp
}

// NewScanner returns a scanner over patterns. Nothing is compiled until the
// first search.
func NewScanner(cache *Cache, patterns []Pattern) *Scanner {
	s := &Scanner{cache: cache, patterns: patterns}
	for _, p := range patterns {
		if HasAnchor(p.Source) {
			s.anchored = true
			break
		}
	}
	return s
}

// Len returns the number of patterns.
func (s *Scanner) Len() int { return len(s.patterns) }

// FindNextMatch returns the index of the pattern with the leftmost match
// at or after pos and its capture ranges, or -1 when nothing matches.
func (s *Scanner) FindNextMatch(text []rune, pos int, opts FindOptions) (int, []Range) {
	best, bestCaps := -1, []Range(nil)
	for i, re := range s.compiled(opts) {
		caps := re.FindAt(text, pos)
		if caps == nil {
			continue
		}
		if best == -1 || caps[0].Start < bestCaps[0].Start {
			best, bestCaps = i, caps
			if caps[0].Start == pos {
				break
			}
		}
	}
	return best, bestCaps
}

func (s *Scanner) compiled(opts FindOptions) []Regexp {
	v := 0
	if s.anchored {
		v = opts.variant()
	}
	s.once[v].Do(func() {
		res := make([]Regexp, len(s.patterns))
		for i, p := range s.patterns {
			origin := p.Origin
			if origin == "" {
				origin = p.Source
			}
			src := p.Source
			if s.anchored {
				src = ResolveAnchors(src, opts.FirstLine, opts.AtAnchor)
			}
			res[i] = s.cache.get(src, origin)
		}
		s.variants[v] = res
	})
	return s.variants[v]
}

// HasAnchor reports whether source uses \A or \G outside an escape.
func HasAnchor(source string) bool {
	for i := 0; i+1 < len(source); i++ {
		if source[i] != '\\' {
			continue
		}
		if n := source[i+1]; n == 'A' || n == 'G' {
			return true
		}
		i++
	}
	return false
}

// ResolveAnchors blocks \A unless allowA and \G unless allowG.
func ResolveAnchors(source string, allowA, allowG bool) string {
	if allowA && allowG {
		return source
	}
	var b strings.Builder
	b.Grow(len(source))
	for i := 0; i < len(source); i++ {
		c := source[i]
		if c != '\\' || i+1 == len(source) {
			b.WriteByte(c)
			continue
		}
		n := source[i+1]
		switch {
		case n == 'A' && !allowA, n == 'G' && !allowG:
			b.WriteString(anchorBlock)
		default:
			b.WriteByte(c)
			b.WriteByte(n)
		}
		i++
	}
	return b.String()
}
