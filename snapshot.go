package main

import (
	"encoding/json"
	"io"

	"github.com/h0rv/tmhl/grammar"
)

// snapshot is the golden token dump written by --tokens. Each line lists
// its tokens with their text and full scope path.
type snapshot struct {
	Grammar       string         `json:"grammar"`
	GeneratedWith string         `json:"generatedWith"`
	Files         []snapshotFile `json:"files"`
}

type snapshotFile struct {
	Source  string         `json:"source"`
	Grammar string         `json:"grammar,omitempty"`
	Lines   []snapshotLine `json:"lines"`
}

type snapshotLine struct {
	Line   string          `json:"line"`
	Tokens []snapshotToken `json:"tokens"`
}

type snapshotToken struct {
	Value  string   `json:"value"`
	Scopes []string `json:"scopes"`
}

// buildSnapshot tokenizes docs. Documents without a grammar get no
// tokens. The top-level grammar is the one of the first document; files
// with a different grammar name theirs.
func buildSnapshot(h *Highlighter, docs []*Document) snapshot {
	snap := snapshot{GeneratedWith: "tmhl " + version, Files: []snapshotFile{}}
	for _, doc := range docs {
		g, results := h.Tokenize(doc.Name, doc.Lines)
		file := snapshotFile{Source: doc.Name, Lines: make([]snapshotLine, 0, len(doc.Lines))}
		if g != nil {
			if snap.Grammar == "" {
				snap.Grammar = g.ScopeName()
			}
			if g.ScopeName() != snap.Grammar {
				file.Grammar = g.ScopeName()
			}
		}
		for i, line := range doc.Lines {
			sl := snapshotLine{Line: line, Tokens: []snapshotToken{}}
			if g != nil {
				sl.Tokens = snapshotTokens(line, results[i].Tokens)
			}
			file.Lines = append(file.Lines, sl)
		}
		snap.Files = append(snap.Files, file)
	}
	return snap
}

func snapshotTokens(line string, toks []grammar.Token) []snapshotToken {
	res := make([]snapshotToken, 0, len(toks))
	for _, t := range toks {
		res = append(res, snapshotToken{Value: line[t.Start:t.End], Scopes: t.Scopes})
	}
	return res
}

// writeSnapshot writes the token dump of docs as indented JSON.
func writeSnapshot(w io.Writer, h *Highlighter, docs []*Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(buildSnapshot(h, docs))
}
