package scope

import "regexp"

// Priority orders injections against the host grammar's own patterns.
type Priority int

const (
	// High ("L:") injections win ties with the host grammar.
	High Priority = -1
	// Normal injections lose ties.
	Normal Priority = 0
	// Low ("R:") injections lose ties and are tried last.
	Low Priority = 1
)

// Matcher is one comma-separated alternative of a selector.
type Matcher struct {
	Priority Priority
	Match    func(path []string) bool
}

var selectorToken = regexp.MustCompile(`([LR]:|[\w.:][\w.:\-]*|[,|\-()])`)

var identifier = regexp.MustCompile(`[\w.:]+`)

// ParseSelector parses an injection selector such as
// "L:source.js -comment, text.html (string | comment)". Each top-level
// alternative becomes a Matcher. Identifiers separated by spaces must
// appear in the path in that order, not necessarily adjacent.
func ParseSelector(selector string) []Matcher {
	p := &selectorParser{tokens: selectorToken.FindAllString(selector, -1)}
	p.next()

	var res []Matcher
	for p.tok != "" {
		prio := Normal
		if len(p.tok) == 2 && p.tok[1] == ':' {
			switch p.tok[0] {
			case 'L':
				prio = High
			case 'R':
				prio = Low
			}
			p.next()
		}
		res = append(res, Matcher{Priority: prio, Match: p.conjunction()})
		if p.tok != "," {
			break
		}
		p.next()
	}
	return res
}

type selectorParser struct {
	tokens []string
	pos    int
	tok    string
}

func (p *selectorParser) next() {
	if p.pos >= len(p.tokens) {
		p.tok = ""
		return
	}
	p.tok = p.tokens[p.pos]
	p.pos++
}

func (p *selectorParser) operand() func([]string) bool {
	switch {
	case p.tok == "-":
		p.next()
		negated := p.operand()
		return func(path []string) bool {
			return negated != nil && !negated(path)
		}
	case p.tok == "(":
		p.next()
		inner := p.disjunction()
		if p.tok == ")" {
			p.next()
		}
		return inner
	case isIdentifier(p.tok):
		var names []string
		for isIdentifier(p.tok) {
			names = append(names, p.tok)
			p.next()
		}
		return func(path []string) bool { return matchSubsequence(path, names) }
	}
	return nil
}

func (p *selectorParser) conjunction() func([]string) bool {
	var all []func([]string) bool
	for m := p.operand(); m != nil; m = p.operand() {
		all = append(all, m)
	}
	return func(path []string) bool {
		for _, m := range all {
			if !m(path) {
				return false
			}
		}
		return true
	}
}

func (p *selectorParser) disjunction() func([]string) bool {
	var alts []func([]string) bool
	for {
		alts = append(alts, p.conjunction())
		if p.tok != "|" && p.tok != "," {
			break
		}
		for p.tok == "|" || p.tok == "," {
			p.next()
		}
	}
	return func(path []string) bool {
		for _, m := range alts {
			if m(path) {
				return true
			}
		}
		return false
	}
}

func isIdentifier(tok string) bool {
	return tok != "" && identifier.MatchString(tok)
}

// matchSubsequence reports whether names match scopes of path in order.
func matchSubsequence(path, names []string) bool {
	if len(path) < len(names) {
		return false
	}
	i := 0
	for _, name := range names {
		for i < len(path) && !MatchesScope(path[i], name) {
			i++
		}
		if i == len(path) {
			return false
		}
		i++
	}
	return true
}
