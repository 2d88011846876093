// Package regex adapts an Oniguruma-dialect regex engine for TextMate
// grammars: lazily compiled, cached patterns that degrade to a
// never-matching sentinel when they fail to compile, and a scanner that
// searches a list of patterns at once.
package regex

// Range is a half-open capture range in rune offsets. Groups that did not
// take part in the match are reported as {-1, -1}.
type Range struct {
	Start, End int
}

// Len returns the number of runes covered, zero for unmatched groups.
func (r Range) Len() int {
	if r.Start < 0 {
		return 0
	}
	return r.End - r.Start
}

var unmatched = Range{Start: -1, End: -1}

// Regexp is a compiled pattern.
type Regexp interface {
	// FindAt returns the capture ranges of the leftmost match starting at
	// or after pos, index 0 being the whole match, or nil.
	FindAt(text []rune, pos int) []Range
}

// Engine compiles pattern source into a Regexp.
type Engine interface {
	Compile(source string) (Regexp, error)
}

// sentinel never matches. Patterns that fail to compile are replaced by it.
type sentinel struct{}

func (sentinel) FindAt([]rune, int) []Range { return nil }

// IsSentinel reports whether re is the never-matching placeholder.
func IsSentinel(re Regexp) bool {
	_, ok := re.(sentinel)
	return ok
}
