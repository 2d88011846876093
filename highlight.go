package main

import (
	"sync"

	"go.uber.org/zap"

	"github.com/h0rv/tmhl/grammar"
	"github.com/h0rv/tmhl/theme"
)

// StyledSpan is a run of text and the scopes it was tokenized with.
// Styles are resolved against the active theme when drawing, so switching
// themes does not retokenize.
type StyledSpan struct {
	Text   string
	Scopes []string
}

// Highlighter tokenizes documents with the grammars of a registry and
// resolves token styles with a theme.
type Highlighter struct {
	mu       sync.RWMutex
	registry *grammar.Registry
	theme    *theme.Theme
	lang     string
	logger   *zap.Logger
}

// NewHighlighter returns a highlighter. A non-empty lang forces that grammar
// scope for every file.
func NewHighlighter(reg *grammar.Registry, th *theme.Theme, lang string, logger *zap.Logger) *Highlighter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Highlighter{registry: reg, theme: th, lang: lang, logger: logger}
}

// Theme returns the active theme.
func (h *Highlighter) Theme() *theme.Theme {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.theme
}

// SetTheme switches the theme used by Style.
func (h *Highlighter) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}
	h.mu.Lock()
	h.theme = th
	h.mu.Unlock()
}

// Style resolves the style of a span. Spans without scopes get the theme
// default.
func (h *Highlighter) Style(sp StyledSpan) theme.ResolvedStyle {
	th := h.Theme()
	if len(sp.Scopes) == 0 {
		return th.Default
	}
	return th.Match(sp.Scopes)
}

// ScopeFor returns the grammar scope used for filename, or "" when no
// grammar applies.
func (h *Highlighter) ScopeFor(filename, firstLine string) string {
	if h.lang != "" {
		return h.lang
	}
	scope, _ := h.registry.ScopeForFile(filename, firstLine)
	return scope
}

// grammarFor returns the compiled grammar for filename, or nil.
func (h *Highlighter) grammarFor(filename, firstLine string) *grammar.Grammar {
	scope := h.ScopeFor(filename, firstLine)
	if scope == "" {
		return nil
	}
	g, err := h.registry.Grammar(scope)
	if err != nil {
		h.logger.Warn("Error compiling grammar",
			zap.String("file", filename),
			zap.String("scope", scope),
			zap.Error(err))
		return nil
	}
	return g
}

// Tokenize tokenizes lines as one document. It returns nil results when no
// grammar applies.
func (h *Highlighter) Tokenize(filename string, lines []string) (*grammar.Grammar, []grammar.LineResult) {
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	g := h.grammarFor(filename, first)
	if g == nil {
		return nil, nil
	}
	results := g.TokenizeLines(lines, nil)
	for i, r := range results {
		if r.StoppedEarly {
			h.logger.Debug("line tokenization stopped early",
				zap.String("file", filename),
				zap.Int("line", i+1))
		}
	}
	return g, results
}

// HighlightLines tokenizes lines as one document, threading the state from
// each line into the next, and returns the spans of every line.
func (h *Highlighter) HighlightLines(filename string, lines []string) [][]StyledSpan {
	g, results := h.Tokenize(filename, lines)
	out := make([][]StyledSpan, len(lines))
	for i, line := range lines {
		if g == nil {
			out[i] = plainSpans(line)
			continue
		}
		out[i] = toSpans(line, results[i].Tokens)
	}
	return out
}

// HighlightHunk returns the spans of every line of hunk. The state of the
// old side runs through context and removed lines; the new side runs
// through context and added lines.
func (h *Highlighter) HighlightHunk(hunk *Hunk) [][]StyledSpan {
	out := make([][]StyledSpan, len(hunk.Lines))
	first := ""
	if len(hunk.Lines) > 0 && hunk.NewStart <= 1 {
		first = hunk.Lines[0].Content
	}
	g := h.grammarFor(hunk.File, first)
	if g == nil {
		for i, l := range hunk.Lines {
			out[i] = plainSpans(l.Content)
		}
		return out
	}

	var oldState, newState *grammar.StateStack
	for i, l := range hunk.Lines {
		switch l.Op {
		case '-':
			r := g.TokenizeLine(l.Content, oldState)
			oldState = r.State
			out[i] = toSpans(l.Content, r.Tokens)
		case '+':
			r := g.TokenizeLine(l.Content, newState)
			newState = r.State
			out[i] = toSpans(l.Content, r.Tokens)
		default:
			r := g.TokenizeLine(l.Content, newState)
			out[i] = toSpans(l.Content, r.Tokens)
			if oldState.Equals(newState) {
				oldState = r.State
			} else {
				oldState = g.TokenizeLine(l.Content, oldState).State
			}
			newState = r.State
		}
	}
	return out
}

func toSpans(line string, toks []grammar.Token) []StyledSpan {
	spans := make([]StyledSpan, 0, len(toks))
	for _, t := range toks {
		if t.End <= t.Start {
			continue
		}
		spans = append(spans, StyledSpan{Text: line[t.Start:t.End], Scopes: t.Scopes})
	}
	return spans
}

func plainSpans(line string) []StyledSpan {
	if line == "" {
		return nil
	}
	return []StyledSpan{{Text: line}}
}
