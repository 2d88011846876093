package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTokenizeJSONScalars(t *testing.T) {
	g := jsonGrammar(t)
	tests := []struct {
		line string
		want []string
	}{
		{"true", []string{"true: source.json constant.language.json"}},
		{"42", []string{"42: source.json constant.numeric.json"}},
		{"-1.5e3 null", []string{
			"-1.5e3: source.json constant.numeric.json",
			" : source.json",
			"null: source.json constant.language.json",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := g.TokenizeLine(tt.line, nil)
			assert.Equal(t, tt.want, render(tt.line, res.Tokens))
			assert.False(t, res.StoppedEarly)
		})
	}
}

func TestTokenizeJSONObject(t *testing.T) {
	g := jsonGrammar(t)
	line := `{"key": "value"}`
	res := g.TokenizeLine(line, nil)

	const (
		dict  = "source.json meta.structure.dictionary.json"
		key   = dict + " string.json support.type.property-name.json"
		value = dict + " meta.structure.dictionary.value.json"
		str   = value + " string.quoted.double.json"
	)
	assert.Equal(t, []string{
		"{: " + dict + " punctuation.definition.dictionary.begin.json",
		`": ` + key + " punctuation.support.type.property-name.begin.json",
		"key: " + key,
		`": ` + key + " punctuation.support.type.property-name.end.json",
		":: " + value + " punctuation.separator.dictionary.key-value.json",
		" : " + value,
		`": ` + str + " punctuation.definition.string.begin.json",
		"value: " + str,
		`": ` + str + " punctuation.definition.string.end.json",
		"}: " + dict + " punctuation.definition.dictionary.end.json",
	}, render(line, res.Tokens))
	assert.Equal(t, 1, res.State.Depth())
}

func TestTokenizeStateAcrossLines(t *testing.T) {
	g := jsonGrammar(t)
	lines := []string{"{", `  "key": 1`, "}"}
	res := g.TokenizeLines(lines, nil)
	require.Len(t, res, 3)

	assert.Equal(t, []string{
		"{: source.json meta.structure.dictionary.json punctuation.definition.dictionary.begin.json",
	}, render(lines[0], res[0].Tokens))
	assert.Equal(t, 2, res[0].State.Depth())

	assert.Equal(t, "  : source.json meta.structure.dictionary.json", render(lines[1], res[1].Tokens)[0])
	assert.Contains(t, render(lines[1], res[1].Tokens),
		"1: source.json meta.structure.dictionary.json meta.structure.dictionary.value.json constant.numeric.json")
	assert.Equal(t, 3, res[1].State.Depth())

	assert.Equal(t, []string{
		"}: source.json meta.structure.dictionary.json punctuation.definition.dictionary.end.json",
	}, render(lines[2], res[2].Tokens))
	assert.Equal(t, 1, res[2].State.Depth())
}

func TestTokenizeArrayContinues(t *testing.T) {
	g := jsonGrammar(t)
	first := g.TokenizeLine("[", nil)
	second := g.TokenizeLine("1,", first.State)
	assert.Equal(t, []string{
		"1: source.json meta.structure.array.json constant.numeric.json",
		",: source.json meta.structure.array.json punctuation.separator.array.json",
	}, render("1,", second.Tokens))
	assert.True(t, second.State.Equals(first.State))
}

func TestTokenizeEmptyLine(t *testing.T) {
	g := jsonGrammar(t)
	res := g.TokenizeLine("", nil)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, Token{Start: 0, End: 0, Scopes: []string{"source.json"}}, res.Tokens[0])

	open := g.TokenizeLine(`"abc`, nil)
	res = g.TokenizeLine("", open.State)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, []string{"source.json", "string.quoted.double.json"}, res.Tokens[0].Scopes)
	assert.True(t, res.State.Equals(open.State))
}

func TestTokenizeByteOffsets(t *testing.T) {
	g := jsonGrammar(t)
	line := `"héllo" 7`
	res := g.TokenizeLine(line, nil)
	requireGapless(t, line, res.Tokens)
	assert.Equal(t, []string{
		`": source.json string.quoted.double.json punctuation.definition.string.begin.json`,
		"héllo: source.json string.quoted.double.json",
		`": source.json string.quoted.double.json punctuation.definition.string.end.json`,
		" : source.json",
		"7: source.json constant.numeric.json",
	}, render(line, res.Tokens))
	last := res.Tokens[len(res.Tokens)-1]
	assert.Equal(t, len(line)-1, last.Start)
}

func TestTokenizeCoalescesEqualScopes(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [{"match": "a"}, {"match": "b", "name": "b.t"}]}`)
	res := g.TokenizeLine("aaxaab", nil)
	assert.Equal(t, []string{"aaxaa: source.t", "b: source.t b.t"}, render("aaxaab", res.Tokens))
}

func TestTokenizeNilAndInitialAgree(t *testing.T) {
	g := jsonGrammar(t)
	a := g.TokenizeLine(`[1, {"a": null}]`, nil)
	b := g.TokenizeLine(`[1, {"a": null}]`, Initial)
	assert.Equal(t, a.Tokens, b.Tokens)
	assert.True(t, a.State.Equals(b.State))
}

func TestTokenizeProperties(t *testing.T) {
	g := jsonGrammar(t)
	alphabet := []rune(`{}[]":,. 0123456789-eE+truefalsnl\/*é` + "\t")
	lineGen := rapid.StringOfN(rapid.RuneFrom(alphabet), 0, 40, -1)

	rapid.Check(t, func(rt *rapid.T) {
		lines := rapid.SliceOfN(lineGen, 1, 5).Draw(rt, "lines")
		var state *StateStack
		for _, line := range lines {
			res := g.TokenizeLine(line, state)
			requireGapless(rt, line, res.Tokens)
			for i := 1; i < len(res.Tokens); i++ {
				require.NotEqual(rt, res.Tokens[i-1].Scopes, res.Tokens[i].Scopes)
			}
			for _, tok := range res.Tokens {
				require.NotEmpty(rt, tok.Scopes)
				require.Equal(rt, "source.json", tok.Scopes[0])
			}
			again := g.TokenizeLine(line, state)
			require.Equal(rt, res.Tokens, again.Tokens)
			require.True(rt, res.State.Equals(again.State))
			state = res.State
		}
	})
}

func TestTokenizeEmptyMatchTerminates(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [
		{"match": "(?:)", "name": "empty.t"},
		{"match": "a", "name": "a.t"}
	]}`)
	line := strings.Repeat("a", 50)
	res := g.TokenizeLine(line, nil)
	requireGapless(t, line, res.Tokens)
	assert.LessOrEqual(t, res.steps, 2*(len(line)+1))
	assert.False(t, res.StoppedEarly)
}

func TestTokenizeZeroWidthBeginEndTerminates(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [
		{"begin": "(?=x)", "end": "(?=x)", "name": "z.t"}
	]}`)
	line := strings.Repeat("x", 20)
	res := g.TokenizeLine(line, nil)
	requireGapless(t, line, res.Tokens)
	assert.LessOrEqual(t, res.steps, 4*(len(line)+1))

	next := g.TokenizeLine(line, res.State)
	requireGapless(t, line, next.Tokens)
}

func TestTokenizeMaxScanSteps(t *testing.T) {
	g := jsonGrammar(t, WithMaxScanSteps(3))
	line := "[1, 2, 3, 4, 5]"
	res := g.TokenizeLine(line, nil)
	assert.True(t, res.StoppedEarly)
	requireGapless(t, line, res.Tokens)
	assert.Equal(t, " 2, 3, 4, 5]", line[res.Tokens[len(res.Tokens)-1].Start:])

	unlimited := jsonGrammar(t).TokenizeLine(line, nil)
	assert.False(t, unlimited.StoppedEarly)
}

func TestTokenizeBeginWhile(t *testing.T) {
	g := markdownGrammar(t)

	const (
		quote = "text.html.markdown markup.quote.markdown"
		bold  = quote + " markup.bold.markdown"
	)
	lines := []string{"> a **b**", "> c", "d"}
	res := g.TokenizeLines(lines, nil)

	assert.Equal(t, []string{
		">: " + quote + " punctuation.definition.quote.begin.markdown",
		" a : " + quote,
		"**: " + bold + " punctuation.definition.bold.markdown",
		"b: " + bold,
		"**: " + bold + " punctuation.definition.bold.markdown",
	}, render(lines[0], res[0].Tokens))
	assert.Equal(t, 2, res[0].State.Depth())

	assert.Equal(t, []string{
		">: " + quote + " punctuation.definition.quote.begin.markdown",
		" c: " + quote,
	}, render(lines[1], res[1].Tokens))
	assert.Equal(t, 2, res[1].State.Depth())

	assert.Equal(t, []string{"d: text.html.markdown"}, render(lines[2], res[2].Tokens))
	assert.Equal(t, 1, res[2].State.Depth())
}

func TestTokenizeWhileMatchesAfterLineStart(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.w",
		"patterns": [{"begin": "^>", "while": "\\|", "name": "block.w",
			"whileCaptures": {"0": {"name": "bar.w"}}}]}`)

	lines := []string{">x", "ab|c", "abc"}
	res := g.TokenizeLines(lines, nil)

	assert.Equal(t, []string{">x: source.w block.w"}, render(lines[0], res[0].Tokens))
	assert.Equal(t, []string{
		"ab: source.w block.w",
		"|: source.w block.w bar.w",
		"c: source.w block.w",
	}, render(lines[1], res[1].Tokens))
	assert.Equal(t, 2, res[1].State.Depth())

	assert.Equal(t, []string{"abc: source.w"}, render(lines[2], res[2].Tokens))
	assert.Equal(t, 1, res[2].State.Depth())
}

func TestTokenizeCaptureRetokenize(t *testing.T) {
	g := markdownGrammar(t)

	const (
		heading = "text.html.markdown markup.heading.markdown"
		section = heading + " entity.name.section.markdown"
		bold    = section + " markup.bold.markdown"
	)
	line := "# Title **bold**"
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{
		"#: " + heading + " punctuation.definition.heading.markdown",
		" : " + heading,
		"Title : " + section,
		"**: " + bold + " punctuation.definition.bold.markdown",
		"bold: " + bold,
		"**: " + bold + " punctuation.definition.bold.markdown",
	}, render(line, res.Tokens))
	assert.Equal(t, 1, res.State.Depth())
}

func TestTokenizeInvalidPatternNeverMatches(t *testing.T) {
	g := markdownGrammar(t)

	line := "some ~~struck~~ text"
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{line + ": text.html.markdown"}, render(line, res.Tokens))
	assert.False(t, hasScope(res.Tokens, "markup.strikethrough"))
	assert.Equal(t, 1, g.SentinelCount())
}

func TestTokenizeNestedCaptures(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [{
		"match": "((\\w+)=(\\w+))",
		"name": "pair.t",
		"captures": {
			"1": {"name": "assign.t"},
			"2": {"name": "key.t"},
			"3": {"name": "val.t"}
		}
	}]}`)
	line := "x ab=cd"
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{
		"x : source.t",
		"ab: source.t pair.t assign.t key.t",
		"=: source.t pair.t assign.t",
		"cd: source.t pair.t assign.t val.t",
	}, render(line, res.Tokens))
}

func TestTokenizeCaptureReferencesInNames(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [{
		"match": "(\\w+)!",
		"name": "shout.${1:/downcase}.t",
		"captures": {"1": {"name": "word.$1"}}
	}]}`)
	line := "HEY!"
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{
		"HEY: source.t shout.hey.t word.HEY",
		"!: source.t shout.hey.t",
	}, render(line, res.Tokens))
}

func TestTokenizeBackReferenceEnd(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [{
		"begin": "<<(\\w+)",
		"end": "^\\1$",
		"name": "heredoc.t",
		"contentName": "body.t"
	}]}`)
	lines := []string{"<<EOF", "EOFX", "text", "EOF", "after"}
	res := g.TokenizeLines(lines, nil)
	assert.Equal(t, []string{"<<EOF: source.t heredoc.t"}, render(lines[0], res[0].Tokens))
	assert.Equal(t, []string{"EOFX: source.t heredoc.t body.t"}, render(lines[1], res[1].Tokens))
	assert.Equal(t, []string{"text: source.t heredoc.t body.t"}, render(lines[2], res[2].Tokens))
	assert.Equal(t, []string{"EOF: source.t heredoc.t"}, render(lines[3], res[3].Tokens))
	assert.Equal(t, []string{"after: source.t"}, render(lines[4], res[4].Tokens))

	// A different delimiter gets its own end pattern.
	other := g.TokenizeLines([]string{"<<END", "EOF", "END"}, nil)
	assert.Equal(t, 2, other[1].State.Depth())
	assert.Equal(t, 1, other[2].State.Depth())
}

func TestTokenizeApplyEndPatternLast(t *testing.T) {
	const tmpl = `{"scopeName": "source.t", "patterns": [{
		"begin": "<", "end": ">", "name": "tag.t", "applyEndPatternLast": %s,
		"patterns": [{"match": ">>", "name": "shift.t"}]
	}]}`
	line := "<a>>b>"

	last := mustGrammar(t, strings.Replace(tmpl, "%s", "1", 1))
	assert.Equal(t, []string{
		"<a: source.t tag.t",
		">>: source.t tag.t shift.t",
		"b>: source.t tag.t",
	}, render(line, last.TokenizeLine(line, nil).Tokens))

	first := mustGrammar(t, strings.Replace(tmpl, "%s", "false", 1))
	assert.Equal(t, []string{
		"<a>: source.t tag.t",
		">b>: source.t",
	}, render(line, first.TokenizeLine(line, nil).Tokens))
}

func TestTokenizeSelfInclude(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [
		{"begin": "\\(", "end": "\\)", "name": "paren.t", "patterns": [{"include": "$self"}]},
		{"match": "\\d+", "name": "num.t"}
	]}`)
	line := "(1(2))"
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{
		"(: source.t paren.t",
		"1: source.t paren.t num.t",
		"(: source.t paren.t paren.t",
		"2: source.t paren.t paren.t num.t",
		"): source.t paren.t paren.t",
		"): source.t paren.t",
	}, render(line, res.Tokens))
}

func TestTokenizeGAnchorAcrossLines(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t", "patterns": [{
		"begin": "=$\\n?", "end": "(?!\\G)", "name": "cont.t",
		"patterns": [{"match": "\\G\\s*\\w+", "name": "first.t"}]
	}]}`)
	res := g.TokenizeLines([]string{"a =", "bc de"}, nil)
	assert.Equal(t, []string{
		"bc: source.t cont.t first.t",
		" de: source.t",
	}, render("bc de", res[1].Tokens))
}
