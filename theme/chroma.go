package theme

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// chromaScopes maps chroma token types to the TextMate scopes that play
// the same role in grammars.
var chromaScopes = []struct {
	token  chroma.TokenType
	scopes []string
}{
	{chroma.Comment, []string{"comment", "punctuation.definition.comment"}},
	{chroma.CommentPreproc, []string{"meta.preprocessor"}},
	{chroma.Keyword, []string{"keyword", "storage"}},
	{chroma.KeywordType, []string{"storage.type", "support.type"}},
	{chroma.KeywordConstant, []string{"constant.language"}},
	{chroma.Operator, []string{"keyword.operator"}},
	{chroma.Punctuation, []string{"punctuation"}},
	{chroma.NameVariable, []string{"variable"}},
	{chroma.NameFunction, []string{"entity.name.function", "support.function"}},
	{chroma.NameClass, []string{"entity.name.type", "entity.name.class", "entity.other.inherited-class"}},
	{chroma.NameTag, []string{"entity.name.tag"}},
	{chroma.NameAttribute, []string{"entity.other.attribute-name"}},
	{chroma.NameBuiltin, []string{"support", "variable.language"}},
	{chroma.NameConstant, []string{"constant.other", "variable.other.constant"}},
	{chroma.NameProperty, []string{"support.type.property-name", "variable.other.property"}},
	{chroma.NameDecorator, []string{"meta.decorator", "entity.name.function.decorator"}},
	{chroma.LiteralString, []string{"string"}},
	{chroma.LiteralStringEscape, []string{"constant.character.escape"}},
	{chroma.LiteralStringRegex, []string{"string.regexp"}},
	{chroma.LiteralStringInterpol, []string{"meta.embedded", "punctuation.section.embedded"}},
	{chroma.LiteralNumber, []string{"constant.numeric"}},
	{chroma.GenericHeading, []string{"markup.heading", "entity.name.section"}},
	{chroma.GenericEmph, []string{"markup.italic"}},
	{chroma.GenericStrong, []string{"markup.bold"}},
	{chroma.GenericUnderline, []string{"markup.underline"}},
	{chroma.GenericDeleted, []string{"markup.deleted"}},
	{chroma.GenericInserted, []string{"markup.inserted"}},
	{chroma.Error, []string{"invalid"}},
}

// FromChroma converts a chroma style into a theme. Only attributes that
// differ from the style's background entry become rules.
func FromChroma(style *chroma.Style) *Theme {
	bg := style.Get(chroma.Background)
	def := DefaultStyle
	if bg.Colour.IsSet() {
		def.Foreground = chromaColor(bg.Colour)
	}
	if bg.Background.IsSet() {
		def.Background = chromaColor(bg.Background)
	}

	var rules []Rule
	for i, m := range chromaScopes {
		e := style.Get(m.token)
		var r Rule
		if e.Colour.IsSet() && e.Colour != bg.Colour {
			c := chromaColor(e.Colour)
			r.Foreground = &c
		}
		if e.Background.IsSet() && e.Background != bg.Background {
			c := chromaColor(e.Background)
			r.Background = &c
		}
		if fs := chromaFontStyle(e); fs != None {
			r.FontStyle = &fs
		}
		if r.Foreground == nil && r.Background == nil && r.FontStyle == nil {
			continue
		}
		for _, s := range m.scopes {
			r.Scope, r.Index = s, i
			rules = append(rules, r)
		}
	}

	t := New(style.Name, def, rules)
	if def.Background.IsDark() {
		t.Type = "dark"
	} else {
		t.Type = "light"
	}
	if lh := style.Get(chroma.LineHighlight); lh.Background.IsSet() {
		t.Colors["editor.lineHighlightBackground"] = chromaColor(lh.Background)
	}
	if ln := style.Get(chroma.LineNumbers); ln.Colour.IsSet() {
		t.Colors["editorLineNumber.foreground"] = chromaColor(ln.Colour)
	}
	return t
}

func chromaColor(c chroma.Colour) Color {
	return RGB(c.Red(), c.Green(), c.Blue())
}

func chromaFontStyle(e chroma.StyleEntry) FontStyle {
	var fs FontStyle
	if e.Bold == chroma.Yes {
		fs |= Bold
	}
	if e.Italic == chroma.Yes {
		fs |= Italic
	}
	if e.Underline == chroma.Yes {
		fs |= Underline
	}
	return fs
}

// Builtin returns the chroma style with the given name as a theme.
func Builtin(name string) (*Theme, bool) {
	s, ok := styles.Registry[name]
	if !ok {
		return nil, false
	}
	return FromChroma(s), true
}

// BuiltinNames returns the names accepted by Builtin, sorted.
func BuiltinNames() []string {
	return styles.Names()
}
