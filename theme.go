package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/h0rv/tmhl/theme"
)

// UITheme holds the viewer chrome colors, derived from a token theme.
type UITheme struct {
	Name string

	Foreground theme.Color
	Background theme.Color
	Accent     theme.Color // keyword color
	Highlight  theme.Color // string color
	Added      theme.Color
	Removed    theme.Color
	Muted      theme.Color // comments, hunk headers
	LineNoFg   theme.Color

	// TintAdded and TintRemoved are the diff line backgrounds.
	TintAdded   theme.Color
	TintRemoved theme.Color

	Default     tcell.Style
	Dim         tcell.Style
	FileHeader  tcell.Style
	HunkHeader  tcell.Style
	DiffAdded   tcell.Style
	DiffRemoved tcell.Style
	LineNo      tcell.Style
	StatusBar   tcell.Style
	SearchCur   tcell.Style
	Flash       tcell.Style

	// Diff background tints, blended from the theme background.
	BgAdded   tcell.Color
	BgRemoved tcell.Color
}

var (
	fallbackAdded   = theme.RGB(0x3F, 0xB9, 0x50)
	fallbackRemoved = theme.RGB(0xF8, 0x51, 0x49)
)

// probe resolves the foreground of a scope inside a generic source scope,
// or fallback when the theme leaves it at the default.
func probe(th *theme.Theme, scope string, fallback theme.Color) theme.Color {
	fg := th.Match([]string{"source", scope}).Foreground
	if fg == th.Default.Foreground {
		return fallback
	}
	return fg
}

// NewUITheme derives the viewer styles from th.
func NewUITheme(th *theme.Theme) UITheme {
	fg, bg := th.Default.Foreground, th.Default.Background
	accent := probe(th, "keyword", theme.RGB(0x00, 0xAF, 0xFF))
	highlight := probe(th, "string", theme.RGB(0xFF, 0xD7, 0x00))
	comment := probe(th, "comment", fg.Blend(bg, 0.4))
	added := probe(th, "markup.inserted", fallbackAdded)
	removed := probe(th, "markup.deleted", fallbackRemoved)
	lineNo := th.Color("editorLineNumber.foreground", fg.Blend(bg, 0.55))

	base := tcell.StyleDefault.Foreground(tcellColor(fg, bg)).Background(tcellColor(bg, bg))
	mix := 0.18
	if !bg.IsDark() {
		mix = 0.12
	}
	tintAdded, tintRemoved := bg.Blend(added, mix), bg.Blend(removed, mix)

	return UITheme{
		Name:       th.Name,
		Foreground: fg,
		Background: bg,
		Accent:     accent,
		Highlight:  highlight,
		Added:      added,
		Removed:    removed,
		Muted:      comment,
		LineNoFg:   lineNo,

		TintAdded:   tintAdded,
		TintRemoved: tintRemoved,

		Default:     base,
		Dim:         base.Foreground(tcellColor(comment, bg)),
		FileHeader:  base.Bold(true),
		HunkHeader:  base.Foreground(tcellColor(comment, bg)),
		DiffAdded:   base.Foreground(tcellColor(added, bg)),
		DiffRemoved: base.Foreground(tcellColor(removed, bg)),
		LineNo:      base.Foreground(tcellColor(lineNo, bg)),
		StatusBar:   base.Background(tcellColor(accent, bg)).Foreground(tcellColor(contrastFg(accent), bg)),
		SearchCur:   base.Background(tcellColor(highlight, bg)).Foreground(tcellColor(contrastFg(highlight), bg)).Bold(true),
		Flash:       base.Foreground(tcellColor(added, bg)).Bold(true).Reverse(true),

		BgAdded:   tcellColor(tintAdded, bg),
		BgRemoved: tcellColor(tintRemoved, bg),
	}
}

// flatten composites a translucent color over bg.
func flatten(c, bg theme.Color) theme.Color {
	if c.A() == 0xFF {
		return c
	}
	opaque := theme.RGB(c.R(), c.G(), c.B())
	return theme.FromColorful(bg.Colorful().BlendRgb(opaque.Colorful(), float64(c.A())/255))
}

func tcellColor(c, bg theme.Color) tcell.Color {
	c = flatten(c, bg)
	return tcell.NewRGBColor(int32(c.R()), int32(c.G()), int32(c.B()))
}

// contrastFg returns black or white, whichever reads better on bg.
func contrastFg(bg theme.Color) theme.Color {
	l, _, _ := bg.Colorful().Lab()
	if l > 0.6 {
		return theme.RGB(0, 0, 0)
	}
	return theme.RGB(0xFF, 0xFF, 0xFF)
}

// spanStyle applies a resolved token style on top of base. The token
// background is used only when it differs from the theme background, so
// diff tints and the terminal background show through.
func (t UITheme) spanStyle(base tcell.Style, rs theme.ResolvedStyle) tcell.Style {
	style := base.Foreground(tcellColor(rs.Foreground, t.Background)).
		Bold(rs.FontStyle.Has(theme.Bold)).
		Italic(rs.FontStyle.Has(theme.Italic)).
		Underline(rs.FontStyle.Has(theme.Underline)).
		StrikeThrough(rs.FontStyle.Has(theme.Strikethrough))
	if rs.Background != t.Background {
		style = style.Background(tcellColor(rs.Background, t.Background))
	}
	return style
}

// loadTheme resolves a theme option: a built-in style name, or a comma
// separated list of theme files merged in order.
func loadTheme(name string, opts ...theme.Option) (*theme.Theme, error) {
	if th, ok := theme.Builtin(name); ok {
		return th, nil
	}
	var paths []string
	for _, p := range strings.Split(name, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no theme given")
	}
	th, err := theme.Load(paths, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}
	if th.Name == "" {
		th.Name = paths[len(paths)-1]
	}
	return th, nil
}

// nextBuiltinTheme returns the built-in theme after name, wrapping around.
func nextBuiltinTheme(name string) *theme.Theme {
	names := theme.BuiltinNames()
	if len(names) == 0 {
		return nil
	}
	next := names[0]
	for i, n := range names {
		if n == name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	th, _ := theme.Builtin(next)
	return th
}

// ListThemes writes the built-in theme names, dark ones marked.
func ListThemes(w io.Writer) {
	for _, name := range theme.BuiltinNames() {
		th, ok := theme.Builtin(name)
		if !ok {
			continue
		}
		kind := "light"
		if th.IsDark() {
			kind = "dark"
		}
		fmt.Fprintf(w, "%-24s %s\n", name, kind)
	}
}
