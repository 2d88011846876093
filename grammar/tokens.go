package grammar

import "slices"

// Token is a half-open byte range of a line and the scope path in effect
// there, outermost scope first. Scopes may be shared between tokens and
// must not be modified.
type Token struct {
	Start  int
	End    int
	Scopes []string
}

// LineResult is the outcome of tokenizing one line.
type LineResult struct {
	Tokens []Token
	// State is passed to the call for the next line.
	State *StateStack
	// StoppedEarly is set when the scan step limit cut the line short; the
	// rest of the line is one token.
	StoppedEarly bool

	steps int
}

type rawToken struct {
	start, end int
	scopes     *ScopeList
}

// lineTokens accumulates tokens in rune offsets. Every produce call ends
// the current token at end, unless the line is already covered that far.
type lineTokens struct {
	toks    []rawToken
	lastEnd int
}

func (l *lineTokens) produce(stack *StateStack, end int) {
	l.produceScopes(stack.contentScopes, end)
}

func (l *lineTokens) produceScopes(scopes *ScopeList, end int) {
	if l.lastEnd >= end {
		return
	}
	l.toks = append(l.toks, rawToken{start: l.lastEnd, end: end, scopes: scopes})
	l.lastEnd = end
}

// result finishes a line of n runes scanned with a trailing newline and
// converts rune offsets to byte offsets of line.
func (l *lineTokens) result(line string, n int, stack *StateStack) []Token {
	if k := len(l.toks); k > 0 && l.toks[k-1].start == n {
		l.toks = l.toks[:k-1]
	}
	if len(l.toks) == 0 {
		l.lastEnd = -1
		l.produce(stack, n+1)
		l.toks[0].start = 0
	}

	offsets := make([]int, 0, n+1)
	for i := range line {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(line))

	res := make([]Token, 0, len(l.toks))
	for _, t := range l.toks {
		end := min(t.end, n)
		names := t.scopes.Names()
		if k := len(res); k > 0 && slices.Equal(res[k-1].Scopes, names) {
			res[k-1].End = offsets[end]
			continue
		}
		res = append(res, Token{Start: offsets[t.start], End: offsets[end], Scopes: names})
	}
	return res
}
