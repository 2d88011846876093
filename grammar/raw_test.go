package grammar

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFlagJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Flag
		err  bool
	}{
		{"true", true, false},
		{"false", false, false},
		{"1", true, false},
		{"0", false, false},
		{`"1"`, true, false},
		{`"true"`, true, false},
		{"null", false, false},
		{`"maybe"`, false, true},
		{"[]", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFlagYAML(t *testing.T) {
	var v struct {
		A Flag `yaml:"a"`
		B Flag `yaml:"b"`
		C Flag `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 1\nb: true\nc: 0\n"), &v))
	assert.True(t, bool(v.A))
	assert.True(t, bool(v.B))
	assert.False(t, bool(v.C))
}

func TestParseJSONComments(t *testing.T) {
	raw, err := ParseJSON([]byte(`{
		// the scope
		"scopeName": "source.t", /* inline */
		"patterns": [{"match": "a", "name": "a.t",},],
	}`))
	require.NoError(t, err)
	assert.Equal(t, "source.t", raw.ScopeName)
	require.Len(t, raw.Patterns, 1)
	assert.Equal(t, "a", raw.Patterns[0].Match)

	_, err = ParseJSON([]byte(`{"scopeName": `))
	assert.Error(t, err)
}

func TestParseJSONTrailingCommaBeforeComment(t *testing.T) {
	raw, err := ParseJSON([]byte("{\"scopeName\": \"source.t\", // trailing\n}"))
	require.NoError(t, err)
	assert.Equal(t, "source.t", raw.ScopeName)
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.tmLanguage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: KV
scopeName: source.kv
fileTypes: [kv]
patterns:
  - match: '^(\w+)(=)(.*)$'
    captures:
      "1": { name: variable.kv }
      "2": { name: keyword.operator.kv }
      "3": { name: string.kv }
  - begin: '\['
    end: '\]'
    name: section.kv
    applyEndPatternLast: 1
`), 0o644))

	raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "source.kv", raw.ScopeName)
	assert.True(t, bool(raw.Patterns[1].ApplyEndPatternLast))

	g, err := NewGrammar(raw)
	require.NoError(t, err)
	line := "key=va lue"
	assert.Equal(t, []string{
		"key: source.kv variable.kv",
		"=: source.kv keyword.operator.kv",
		"va lue: source.kv string.kv",
	}, render(line, g.TokenizeLine(line, nil).Tokens))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.tmLanguage.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIsGrammarFile(t *testing.T) {
	assert.True(t, IsGrammarFile("go.tmLanguage.json"))
	assert.True(t, IsGrammarFile("Markdown.tmLanguage.YAML"))
	assert.True(t, IsGrammarFile("x.tmGrammar.json"))
	assert.False(t, IsGrammarFile("package.json"))
	assert.False(t, IsGrammarFile("go.tmLanguage"))
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\rb\r\nc\r"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\r\rb"))
}
