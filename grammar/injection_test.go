package grammar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/tmhl/scope"
)

func injectionGrammar(t *testing.T, selector string, inner string) *Grammar {
	t.Helper()
	src := `{"scopeName": "source.t",
		"patterns": [{"begin": "\"", "end": "\"", "name": "string.t", "patterns": [%INNER%]}],
		"injections": {"%SEL%": {"patterns": [{"match": "\\w+", "name": "inj.t"}]}}}`
	src = strings.NewReplacer("%SEL%", selector, "%INNER%", inner).Replace(src)
	return mustGrammar(t, src)
}

func TestInjectionPriority(t *testing.T) {
	word := `{"match": "\\w+", "name": "word.t"}`
	tests := []struct {
		selector string
		want     string
	}{
		{"L:string.t", "inj.t"},
		{"string.t", "word.t"},
		{"R:string.t", "word.t"},
		{"comment.t", "word.t"},
		{"source.t string.t", "word.t"},
		{"L:source.t string.t", "inj.t"},
		{"L:string.t - source.t", "word.t"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			g := injectionGrammar(t, tt.selector, word)
			line := `"ab"`
			res := g.TokenizeLine(line, nil)
			assert.Equal(t, "ab: source.t string.t "+tt.want, render(line, res.Tokens)[1])
		})
	}
}

func TestInjectionEarlierMatchWins(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t",
		"patterns": [{"begin": "\"", "end": "\"", "name": "string.t"}],
		"injections": {"R:string.t": {"patterns": [{"match": "TODO", "name": "todo.t"}]}}}`)

	line := `TODO "a TODO"`
	res := g.TokenizeLine(line, nil)
	assert.Equal(t, []string{
		`TODO : source.t`,
		`"a : source.t string.t`,
		"TODO: source.t string.t todo.t",
		`": source.t string.t`,
	}, render(line, res.Tokens))
}

func TestInjectionsOrdered(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t",
		"patterns": [{"match": "x", "name": "x.t"}],
		"injections": {
			"R:source.t": {"patterns": [{"match": "r", "name": "r.t"}]},
			"source.t, L:comment.t": {"patterns": [{"match": "n", "name": "n.t"}]}
		}}`)
	inj := g.Injections()
	require.Len(t, inj, 3)
	assert.Equal(t, scope.High, inj[0].Priority)
	assert.Equal(t, "source.t, L:comment.t", inj[0].Selector)
	assert.Equal(t, scope.Normal, inj[1].Priority)
	assert.Equal(t, scope.Low, inj[2].Priority)
	assert.True(t, inj[1].Matches([]string{"source.t"}))
	assert.False(t, inj[0].Matches([]string{"source.t"}))
	assert.True(t, inj[0].Matches([]string{"source.t", "comment.t"}))
	assert.Equal(t, 3, g.Stats().Injections)

	line := "xnr"
	assert.Equal(t, []string{
		"x: source.t x.t",
		"n: source.t n.t",
		"r: source.t r.t",
	}, render(line, g.TokenizeLine(line, nil).Tokens))
}

func TestInjectionOpensBlock(t *testing.T) {
	g := mustGrammar(t, `{"scopeName": "source.t",
		"patterns": [{"begin": "#", "end": "$", "name": "comment.t"}],
		"injections": {"L:comment.t": {"patterns": [
			{"begin": "\\[", "end": "\\]", "name": "link.t"}
		]}}}`)
	res := g.TokenizeLines([]string{"# see [a", "b] done"}, nil)
	assert.True(t, res[0].State.Injected())
	assert.Equal(t, []string{"source.t", "comment.t", "link.t"}, res[0].State.Scopes())
	assert.Equal(t, "b]: source.t comment.t link.t", render("b] done", res[1].Tokens)[0])
}
