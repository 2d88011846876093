package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshot(t *testing.T) {
	h := testHighlighter(t, "")
	docs := []*Document{
		newDocument("a.json", []byte("true\n42\n")),
		newDocument("notes.txt", []byte("<hi>\n")),
	}

	var buf bytes.Buffer
	require.NoError(t, writeSnapshot(&buf, h, docs))
	assert.JSONEq(t, `{
		"grammar": "source.json",
		"generatedWith": "tmhl dev",
		"files": [
			{"source": "a.json", "lines": [
				{"line": "true", "tokens": [{"value": "true", "scopes": ["source.json", "constant.language.json"]}]},
				{"line": "42", "tokens": [{"value": "42", "scopes": ["source.json", "constant.numeric.json"]}]}
			]},
			{"source": "notes.txt", "lines": [
				{"line": "<hi>", "tokens": []}
			]}
		]
	}`, buf.String())
	assert.Contains(t, buf.String(), `"line": "<hi>"`)
}

func TestBuildSnapshotGrammarFromFirstHighlighted(t *testing.T) {
	h := testHighlighter(t, "")
	docs := []*Document{
		newDocument("notes.txt", []byte("x")),
		newDocument("b.json", []byte("null")),
		newDocument("c.json", []byte("1")),
	}
	snap := buildSnapshot(h, docs)
	assert.Equal(t, "source.json", snap.Grammar)
	require.Len(t, snap.Files, 3)
	for _, f := range snap.Files {
		assert.Empty(t, f.Grammar, f.Source)
	}
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snap := buildSnapshot(testHighlighter(t, ""), nil)
	assert.Empty(t, snap.Grammar)
	assert.NotNil(t, snap.Files)
	assert.Empty(t, snap.Files)
}
