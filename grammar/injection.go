package grammar

import (
	"sort"

	"github.com/h0rv/tmhl/regex"
	"github.com/h0rv/tmhl/scope"
)

// Injection is a rule that applies wherever its selector matches the
// current scope path, regardless of which rule is open.
type Injection struct {
	Selector string
	Priority scope.Priority
	RuleID   RuleID

	match func([]string) bool
}

// Matches reports whether the injection applies to a scope path.
func (i Injection) Matches(path []string) bool {
	return i.match != nil && i.match(path)
}

func sortInjections(res []Injection) {
	sort.SliceStable(res, func(a, b int) bool { return res[a].Priority < res[b].Priority })
}

// matchResult is the outcome of one scan step.
type matchResult struct {
	id       RuleID
	caps     []regex.Range
	priority scope.Priority
	injected bool
}

// matchInjections returns the earliest match among injections whose
// selector accepts the current content scopes. Earlier injections win
// ties; a match at pos ends the search.
func (t *tokenizer) matchInjections(text []rune, firstLine bool, pos int, stack *StateStack, anchor int) *matchResult {
	path := stack.contentScopes.Names()
	var best *matchResult
	for _, inj := range t.g.injections {
		if !inj.Matches(path) {
			continue
		}
		p := t.g.injectionPlan(inj.RuleID)
		idx, caps := p.scanner.FindNextMatch(text, pos, regex.FindOptions{FirstLine: firstLine, AtAnchor: pos == anchor})
		if idx < 0 {
			continue
		}
		if best != nil && caps[0].Start >= best.caps[0].Start {
			continue
		}
		best = &matchResult{id: p.ids[idx], caps: caps, priority: inj.Priority, injected: true}
		if caps[0].Start == pos {
			break
		}
	}
	return best
}

// matchRuleOrInjections merges the open rule's match with the best
// injection match. The injection wins when it starts earlier, or at the
// same position with high priority.
func (t *tokenizer) matchRuleOrInjections(text []rune, firstLine bool, pos int, stack *StateStack, anchor int) *matchResult {
	m := t.matchRule(text, firstLine, pos, stack, anchor)
	if len(t.g.injections) == 0 {
		return m
	}
	inj := t.matchInjections(text, firstLine, pos, stack, anchor)
	switch {
	case inj == nil:
		return m
	case m == nil:
		return inj
	}
	is, ms := inj.caps[0].Start, m.caps[0].Start
	if is < ms || (is == ms && inj.priority == scope.High) {
		return inj
	}
	return m
}

func (t *tokenizer) matchRule(text []rune, firstLine bool, pos int, stack *StateStack, anchor int) *matchResult {
	p := t.g.rulePlan(stack.ruleID, stack.endRule)
	if p == nil {
		return nil
	}
	idx, caps := p.scanner.FindNextMatch(text, pos, regex.FindOptions{FirstLine: firstLine, AtAnchor: pos == anchor})
	if idx < 0 {
		return nil
	}
	return &matchResult{id: p.ids[idx], caps: caps}
}
