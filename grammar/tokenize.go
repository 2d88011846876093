package grammar

import (
	"github.com/h0rv/tmhl/regex"
)

// TokenizeLine tokenizes one line, without its line terminator, starting
// from the state returned for the previous line. A nil or Initial prev
// starts at the top of the grammar.
func (g *Grammar) TokenizeLine(line string, prev *StateStack) LineResult {
	t := &tokenizer{g: g}
	firstLine := prev == nil || prev == Initial || prev.depth == 0
	stack := prev
	if firstLine {
		stack = g.initial
	} else {
		t.prev = prev
	}

	text := []rune(line + "\n")
	stack = t.scan(text, firstLine, 0, stack, true)
	return LineResult{
		Tokens:       t.toks.result(line, len(text)-1, stack),
		State:        stack,
		StoppedEarly: t.stopped,
		steps:        t.steps,
	}
}

// TokenizeLines tokenizes consecutive lines, threading state from prev.
func (g *Grammar) TokenizeLines(lines []string, prev *StateStack) []LineResult {
	res := make([]LineResult, len(lines))
	for i, line := range lines {
		res[i] = g.TokenizeLine(line, prev)
		prev = res[i].State
	}
	return res
}

type tokenizer struct {
	g *Grammar
	// prev is the state the line started from. Its frames were pushed on
	// an earlier line, so their positions do not apply.
	prev    *StateStack
	toks    lineTokens
	steps   int
	stopped bool
}

// fromEarlierLine reports whether f belongs to the incoming state.
func (t *tokenizer) fromEarlierLine(f *StateStack) bool {
	p := t.prev
	for p != nil && p.depth > f.depth {
		p = p.parent
	}
	return p == f
}

func (t *tokenizer) enterPos(f *StateStack) int {
	if t.fromEarlierLine(f) {
		return -1
	}
	return f.enterPos
}

func (t *tokenizer) anchorPos(f *StateStack) int {
	if t.fromEarlierLine(f) {
		return -1
	}
	return f.anchorPos
}

// hasSameRuleAs reports whether a frame entered at the same position as
// pushed, on the way down from before, runs the same rule.
func (t *tokenizer) hasSameRuleAs(before, pushed *StateStack) bool {
	for f := before; f != nil && t.enterPos(f) == pushed.enterPos; f = f.parent {
		if f.ruleID == pushed.ruleID {
			return true
		}
	}
	return false
}

// scan tokenizes text from pos with stack open and returns the stack at
// the end. Capture retokenization calls it on a prefix of the line.
func (t *tokenizer) scan(text []rune, firstLine bool, pos int, stack *StateStack, checkWhile bool) *StateStack {
	lineLen := len(text)
	anchor := -1
	if checkWhile {
		stack, pos, anchor, firstLine = t.checkWhileConditions(text, firstLine, pos, stack)
	}

	for {
		if t.g.maxSteps > 0 && t.steps >= t.g.maxSteps {
			t.stopped = true
			t.toks.produce(stack, lineLen)
			return stack
		}
		t.steps++

		m := t.matchRuleOrInjections(text, firstLine, pos, stack, anchor)
		if m == nil {
			t.toks.produce(stack, lineLen)
			return stack
		}
		start, end := m.caps[0].Start, m.caps[0].End
		advanced := end > pos
		stuck := false

		if m.id == endRuleID {
			entered := stack
			rule, _ := t.g.Rule(stack.ruleID).(*BeginEndRule)
			t.toks.produce(stack, start)
			stack = stack.withContentScopes(stack.nameScopes)
			if rule != nil {
				t.handleCaptures(text, firstLine, stack, rule.EndCaptures, m.caps)
			}
			t.toks.produce(stack, end)
			if !advanced && t.enterPos(entered) == pos {
				// Pushed and popped at one position: stay inside.
				stack = entered
				stuck = true
			} else {
				stack = stack.parent
				anchor = t.anchorPos(entered)
			}
		} else {
			rule := t.g.Rule(m.id)
			t.toks.produce(stack, start)
			before := stack
			nameScopes := stack.contentScopes.Push(rule.base().nameFor(text, m.caps))
			stack = stack.push(m.id, pos, anchor, end == lineLen, "", nameScopes, nameScopes, m.injected)

			switch r := rule.(type) {
			case *BeginEndRule:
				t.handleCaptures(text, firstLine, stack, r.BeginCaptures, m.caps)
				t.toks.produce(stack, end)
				anchor = end
				stack = stack.withContentScopes(nameScopes.Push(r.contentNameFor(text, m.caps)))
				if r.endHasBackRefs {
					stack = stack.withEndRule(resolveBackRefs(r.End, text, m.caps))
				}
				if !advanced && t.hasSameRuleAs(before, stack) {
					stack = stack.parent
					stuck = true
				}
			case *BeginWhileRule:
				t.handleCaptures(text, firstLine, stack, r.BeginCaptures, m.caps)
				t.toks.produce(stack, end)
				anchor = end
				stack = stack.withContentScopes(nameScopes.Push(r.contentNameFor(text, m.caps)))
				if r.whileHasBackRefs {
					stack = stack.withEndRule(resolveBackRefs(r.While, text, m.caps))
				}
				if !advanced && t.hasSameRuleAs(before, stack) {
					stack = stack.parent
					stuck = true
				}
			case *MatchRule:
				t.handleCaptures(text, firstLine, stack, r.Captures, m.caps)
				t.toks.produce(stack, end)
				stack = stack.parent
				if !advanced {
					stuck = true
				}
			default:
				stack = stack.parent
				stuck = !advanced
			}
		}

		if advanced {
			pos = end
			firstLine = false
		}
		if stuck {
			// The same match would be offered again at pos; move past it.
			pos++
			firstLine = false
			if pos >= lineLen {
				t.toks.produce(stack, lineLen)
				return stack
			}
		}
	}
}

// checkWhileConditions re-checks the while pattern of every open
// begin/while rule, outermost first. The first failure closes that rule
// and everything opened inside it.
func (t *tokenizer) checkWhileConditions(text []rune, firstLine bool, pos int, stack *StateStack) (*StateStack, int, int, bool) {
	anchor := -1
	if stack.beginRuleCapturedEOL {
		anchor = 0
	}
	var whiles []*StateStack
	for f := stack; f != nil; f = f.parent {
		if _, ok := t.g.Rule(f.ruleID).(*BeginWhileRule); ok {
			whiles = append(whiles, f)
		}
	}
	for i := len(whiles) - 1; i >= 0; i-- {
		f := whiles[i]
		r := t.g.Rule(f.ruleID).(*BeginWhileRule)
		p := t.g.whilePlan(r, f.endRule)
		idx, caps := p.scanner.FindNextMatch(text, pos, regex.FindOptions{FirstLine: firstLine, AtAnchor: pos == anchor})
		if idx < 0 {
			stack = f.parent
			break
		}
		t.toks.produce(f, caps[0].Start)
		t.handleCaptures(text, firstLine, f, r.WhileCaptures, caps)
		t.toks.produce(f, caps[0].End)
		anchor = caps[0].End
		if caps[0].End > pos {
			pos = caps[0].End
			firstLine = false
		}
	}
	return stack, pos, anchor, firstLine
}

type captureFrame struct {
	scopes *ScopeList
	end    int
}

// handleCaptures emits tokens for the capture groups of a match. Nested
// groups stack their scopes; groups with patterns are rescanned.
func (t *tokenizer) handleCaptures(text []rune, firstLine bool, stack *StateStack, captures []*CaptureRule, caps []regex.Range) {
	if len(captures) == 0 {
		return
	}
	n := min(len(captures), len(caps))
	maxEnd := caps[0].End
	var local []captureFrame
	for i := 0; i < n; i++ {
		cr := captures[i]
		if cr == nil {
			continue
		}
		c := caps[i]
		if c.Len() == 0 {
			continue
		}
		if c.Start > maxEnd {
			break
		}
		for len(local) > 0 && local[len(local)-1].end <= c.Start {
			top := local[len(local)-1]
			t.toks.produceScopes(top.scopes, top.end)
			local = local[:len(local)-1]
		}
		if len(local) > 0 {
			t.toks.produceScopes(local[len(local)-1].scopes, c.Start)
		} else {
			t.toks.produce(stack, c.Start)
		}

		if cr.Retokenize != 0 {
			nameScopes := stack.contentScopes.Push(cr.nameFor(text, caps))
			contentScopes := nameScopes.Push(cr.contentNameFor(text, caps))
			sub := stack.push(cr.Retokenize, c.Start, -1, false, "", nameScopes, contentScopes, false)
			t.scan(text[:c.End], firstLine && c.Start == 0, c.Start, sub, false)
			continue
		}

		if name := cr.nameFor(text, caps); name != "" {
			base := stack.contentScopes
			if len(local) > 0 {
				base = local[len(local)-1].scopes
			}
			local = append(local, captureFrame{scopes: base.Push(name), end: c.End})
		}
	}
	for len(local) > 0 {
		top := local[len(local)-1]
		t.toks.produceScopes(top.scopes, top.end)
		local = local[:len(local)-1]
	}
}
