package grammar

import "strings"

// ScopeList is an immutable list of scope names, outermost first. Lists
// pushed from the same parent share it.
type ScopeList struct {
	parent *ScopeList
	scope  string
	names  []string
}

// Push returns l extended by scopePath. A path containing spaces pushes
// each of its names; an empty path returns l.
func (l *ScopeList) Push(scopePath string) *ScopeList {
	if scopePath == "" {
		return l
	}
	if !strings.Contains(scopePath, " ") {
		return l.pushOne(scopePath)
	}
	for _, s := range strings.Fields(scopePath) {
		l = l.pushOne(s)
	}
	return l
}

func (l *ScopeList) pushOne(scope string) *ScopeList {
	n := l.Len()
	names := make([]string, n+1)
	if l != nil {
		copy(names, l.names)
	}
	names[n] = scope
	return &ScopeList{parent: l, scope: scope, names: names}
}

// Names returns the scopes, outermost first. The slice is shared and must
// not be modified.
func (l *ScopeList) Names() []string {
	if l == nil {
		return nil
	}
	return l.names
}

// Len returns the number of scopes.
func (l *ScopeList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Equal reports whether both lists hold the same scopes.
func (l *ScopeList) Equal(o *ScopeList) bool {
	for l != o {
		if l == nil || o == nil || l.scope != o.scope || len(l.names) != len(o.names) {
			return false
		}
		l, o = l.parent, o.parent
	}
	return true
}

// StateStack records the rules open at the end of a line. It is immutable;
// the stack returned for one line shares every unchanged frame with the
// stack it was derived from.
type StateStack struct {
	parent *StateStack
	ruleID RuleID
	// enterPos and anchorPos are offsets into the line the frame was
	// pushed on. They mean nothing once that line is done.
	enterPos  int
	anchorPos int
	// beginRuleCapturedEOL is set when the begin match reached the end of
	// its line, which lets \G match at the start of the next one.
	beginRuleCapturedEOL bool
	// endRule is the end or while pattern with backreferences resolved.
	endRule       string
	nameScopes    *ScopeList
	contentScopes *ScopeList
	depth         int
	injected      bool
}

// Initial is the state before the first line. Passing nil is equivalent.
var Initial = &StateStack{}

func (s *StateStack) push(id RuleID, enterPos, anchorPos int, capturedEOL bool, endRule string, nameScopes, contentScopes *ScopeList, injected bool) *StateStack {
	return &StateStack{
		parent:               s,
		ruleID:               id,
		enterPos:             enterPos,
		anchorPos:            anchorPos,
		beginRuleCapturedEOL: capturedEOL,
		endRule:              endRule,
		nameScopes:           nameScopes,
		contentScopes:        contentScopes,
		depth:                s.depth + 1,
		injected:             injected,
	}
}

func (s *StateStack) withContentScopes(l *ScopeList) *StateStack {
	if s.contentScopes == l {
		return s
	}
	c := *s
	c.contentScopes = l
	return &c
}

func (s *StateStack) withEndRule(endRule string) *StateStack {
	if s.endRule == endRule {
		return s
	}
	c := *s
	c.endRule = endRule
	return &c
}

// Depth returns the number of frames, zero for Initial.
func (s *StateStack) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// RuleID returns the rule of the innermost frame.
func (s *StateStack) RuleID() RuleID {
	if s == nil {
		return 0
	}
	return s.ruleID
}

// Scopes returns the scope path in effect for content of the innermost
// frame. The slice must not be modified.
func (s *StateStack) Scopes() []string {
	if s == nil {
		return nil
	}
	return s.contentScopes.Names()
}

// Injected reports whether the innermost frame was opened by an injection.
func (s *StateStack) Injected() bool {
	return s != nil && s.injected
}

// Equals reports whether two stacks describe the same tokenizer state.
// Shared tails compare by identity.
func (s *StateStack) Equals(o *StateStack) bool {
	if s == nil {
		s = Initial
	}
	if o == nil {
		o = Initial
	}
	for s != o {
		if s == nil || o == nil {
			return false
		}
		if s.depth != o.depth ||
			s.ruleID != o.ruleID ||
			s.endRule != o.endRule ||
			s.beginRuleCapturedEOL != o.beginRuleCapturedEOL ||
			s.injected != o.injected ||
			!s.nameScopes.Equal(o.nameScopes) ||
			!s.contentScopes.Equal(o.contentScopes) {
			return false
		}
		s, o = s.parent, o.parent
	}
	return true
}

func (s *StateStack) String() string {
	var frames []string
	for f := s; f != nil && f.depth > 0; f = f.parent {
		frames = append(frames, "("+strings.Join(f.contentScopes.Names(), " ")+")")
	}
	for i, j := 0, len(frames)-1; i < j; i, j = i+1, j-1 {
		frames[i], frames[j] = frames[j], frames[i]
	}
	return "[" + strings.Join(frames, ", ") + "]"
}
