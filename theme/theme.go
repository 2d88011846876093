// Package theme resolves TextMate scope paths to colors and font styles
// using VS Code style theme rules.
package theme

import (
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/h0rv/tmhl/scope"
)

// Rule is one scope selector of a theme with the attributes it sets. Nil
// attributes are inherited from less specific rules.
type Rule struct {
	Scope string
	// Parents are the ancestor selectors, immediate parent first. A ">"
	// entry requires the following parent to be the direct parent.
	Parents    []string
	FontStyle  *FontStyle
	Foreground *Color
	Background *Color
	// Index orders rules by where they were declared across all sources.
	Index int
}

// ResolvedStyle is the style of a token.
type ResolvedStyle struct {
	Foreground Color
	Background Color
	FontStyle  FontStyle
}

// DefaultStyle is used when a theme declares no defaults.
var DefaultStyle = ResolvedStyle{
	Foreground: RGB(0x00, 0x00, 0x00),
	Background: RGB(0xFF, 0xFF, 0xFF),
}

// Theme is a set of rules. It is safe for concurrent use; Rules and
// Default must not change once Match has been called.
type Theme struct {
	Name string
	// Type is "dark" or "light" when the source says so.
	Type    string
	Default ResolvedStyle
	Rules   []Rule
	// Colors holds the workbench colors of the source, such as
	// "editor.lineHighlightBackground".
	Colors map[string]Color

	memo *gocache.Cache
}

// New returns a theme with the given defaults and rules.
func New(name string, def ResolvedStyle, rules []Rule) *Theme {
	return &Theme{
		Name:    name,
		Default: def,
		Rules:   rules,
		Colors:  map[string]Color{},
		memo:    gocache.New(gocache.NoExpiration, 0),
	}
}

// IsDark reports whether the theme has a dark background.
func (t *Theme) IsDark() bool {
	switch t.Type {
	case "dark", "hc":
		return true
	case "light":
		return false
	}
	return t.Default.Background.IsDark()
}

// Color returns a workbench color, or fallback when the theme has none.
func (t *Theme) Color(key string, fallback Color) Color {
	if c, ok := t.Colors[key]; ok {
		return c
	}
	return fallback
}

type candidate struct {
	rule  *Rule
	depth int
}

// Match resolves the style of a token with the given scope path. Every
// rule whose scope matches some scope of the path, with its parents
// matching further out, contributes the attributes it sets. Rules apply
// from least to most specific: matched deeper in the path, then more
// scope segments, then more parents, then declared later.
func (t *Theme) Match(path []string) ResolvedStyle {
	if len(path) == 0 {
		return t.Default
	}
	key := strings.Join(path, " ")
	if t.memo != nil {
		if v, ok := t.memo.Get(key); ok {
			return v.(ResolvedStyle)
		}
	}

	var cands []candidate
	for i := range t.Rules {
		r := &t.Rules[i]
		if d := scope.MatchDepth(path, r.Scope, r.Parents); d >= 0 {
			cands = append(cands, candidate{rule: r, depth: d})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		x, y := cands[a], cands[b]
		if x.depth != y.depth {
			return x.depth < y.depth
		}
		if sx, sy := scope.Segments(x.rule.Scope), scope.Segments(y.rule.Scope); sx != sy {
			return sx < sy
		}
		if px, py := scope.Specificity(x.rule.Parents), scope.Specificity(y.rule.Parents); px != py {
			return px < py
		}
		return x.rule.Index < y.rule.Index
	})

	style := t.Default
	for _, c := range cands {
		if c.rule.Foreground != nil {
			style.Foreground = *c.rule.Foreground
		}
		if c.rule.Background != nil {
			style.Background = *c.rule.Background
		}
		if c.rule.FontStyle != nil {
			style.FontStyle = *c.rule.FontStyle
		}
	}
	if t.memo != nil {
		t.memo.Set(key, style, gocache.NoExpiration)
	}
	return style
}

// parseSelector splits "meta.tag > string.quoted" into the scope and its
// parents, immediate parent first.
func parseSelector(sel string) (string, []string) {
	segs := strings.Fields(sel)
	if len(segs) == 0 {
		return "", nil
	}
	last := segs[len(segs)-1]
	var parents []string
	for i := len(segs) - 2; i >= 0; i-- {
		parents = append(parents, segs[i])
	}
	return last, parents
}
