package regex

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single match attempt.
const DefaultMatchTimeout = 250 * time.Millisecond

// Option configures an Oniguruma engine.
type Option func(*Oniguruma)

// WithMatchTimeout sets the per-match timeout. Zero disables it.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *Oniguruma) { o.timeout = d }
}

// Oniguruma compiles TextMate patterns with regexp2, which shares the
// backtracking feature set grammars rely on (lookbehind, backreferences,
// \G, atomic groups). Syntax regexp2 lacks is rewritten before compiling.
type Oniguruma struct {
	timeout time.Duration
}

// NewOniguruma returns the default engine.
func NewOniguruma(opts ...Option) *Oniguruma {
	o := &Oniguruma{timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Compile implements Engine.
func (o *Oniguruma) Compile(source string) (Regexp, error) {
	re, err := regexp2.Compile(Translate(source), regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	if o.timeout > 0 {
		re.MatchTimeout = o.timeout
	}
	return &onigRegexp{re: re}, nil
}

type onigRegexp struct {
	re *regexp2.Regexp
}

func (r *onigRegexp) FindAt(text []rune, pos int) []Range {
	if pos > len(text) {
		return nil
	}
	m, err := r.re.FindRunesMatchStartingAt(text, pos)
	if err != nil || m == nil {
		return nil
	}
	groups := m.Groups()
	caps := make([]Range, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			caps[i] = unmatched
			continue
		}
		caps[i] = Range{Start: g.Index, End: g.Index + g.Length}
	}
	return caps
}

var posixClasses = map[string]string{
	"alnum":  `a-zA-Z0-9`,
	"alpha":  `a-zA-Z`,
	"ascii":  `\x00-\x7f`,
	"blank":  ` \t`,
	"cntrl":  `\x00-\x1f\x7f`,
	"digit":  `0-9`,
	"graph":  `\x21-\x7e`,
	"lower":  `a-z`,
	"print":  `\x20-\x7e`,
	"punct":  `!-/:-@\[-` + "`" + `{-~`,
	"space":  `\s`,
	"upper":  `A-Z`,
	"word":   `\w`,
	"xdigit": `0-9A-Fa-f`,
}

// Translate rewrites Oniguruma-only syntax into the regexp2 dialect:
// \h and \H hex-digit classes, \x{HHHH} code points and POSIX bracket
// classes. Everything else passes through untouched.
func Translate(source string) string {
	if !strings.ContainsAny(source, `\[`) {
		return source
	}
	rs := []rune(source)
	var b strings.Builder
	b.Grow(len(source))
	inClass := false
	classStart := 0
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\' && i+1 < len(rs):
			n := rs[i+1]
			switch {
			case n == 'h':
				if inClass {
					b.WriteString(`0-9a-fA-F`)
				} else {
					b.WriteString(`[0-9a-fA-F]`)
				}
				i++
				continue
			case n == 'H' && !inClass:
				b.WriteString(`[^0-9a-fA-F]`)
				i++
				continue
			case n == 'x' && i+2 < len(rs) && rs[i+2] == '{':
				if end, ok := hexBrace(rs, i+3); ok {
					b.WriteString(`\u`)
					b.WriteString(strings.Repeat("0", 4-(end-i-3)))
					b.WriteString(string(rs[i+3 : end]))
					i = end
					continue
				}
			}
			b.WriteRune(c)
			b.WriteRune(n)
			i++
		case c == '[' && !inClass:
			inClass = true
			b.WriteRune(c)
			if i+1 < len(rs) && rs[i+1] == '^' {
				b.WriteRune('^')
				i++
			}
			classStart = i + 1
		case c == '[' && inClass && i+1 < len(rs) && rs[i+1] == ':':
			j := i + 2
			for j+1 < len(rs) && (rs[j] != ':' || rs[j+1] != ']') {
				j++
			}
			if j+1 < len(rs) {
				if cls, ok := posixClasses[string(rs[i+2:j])]; ok {
					b.WriteString(cls)
					i = j + 1
					continue
				}
			}
			b.WriteRune(c)
		case c == ']' && inClass && i != classStart:
			inClass = false
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// hexBrace reports the index of the closing brace when rs[from:] holds one
// to four hex digits followed by '}'.
func hexBrace(rs []rune, from int) (int, bool) {
	for j := from; j < len(rs) && j-from <= 4; j++ {
		switch c := rs[j]; {
		case c == '}':
			return j, j > from
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return 0, false
		}
	}
	return 0, false
}
