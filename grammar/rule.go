package grammar

import "github.com/h0rv/tmhl/regex"

// RuleID addresses a rule inside one compiled grammar. Zero is unused.
type RuleID int

const (
	// endRuleID marks the end pattern of a begin/end rule in a scan plan.
	endRuleID RuleID = -1
	// whileRuleID marks the while pattern of a begin/while rule.
	whileRuleID RuleID = -2
)

// Rule is one of *MatchRule, *BeginEndRule, *BeginWhileRule or
// *IncludeOnlyRule. Rules refer to each other by RuleID, so include
// cycles are plain id references.
type Rule interface {
	ID() RuleID
	// Name returns the scope name as written, capture references unresolved.
	Name() string
	base() *ruleBase
}

type ruleBase struct {
	id          RuleID
	name        string
	contentName string
	nameRefs    bool
	contentRefs bool
}

func newRuleBase(id RuleID, name, contentName string) ruleBase {
	return ruleBase{
		id:          id,
		name:        name,
		contentName: contentName,
		nameRefs:    hasCaptureRefs(name),
		contentRefs: hasCaptureRefs(contentName),
	}
}

func (b *ruleBase) ID() RuleID      { return b.id }
func (b *ruleBase) Name() string    { return b.name }
func (b *ruleBase) base() *ruleBase { return b }

// ContentName returns the content scope name as written.
func (b *ruleBase) ContentName() string { return b.contentName }

func (b *ruleBase) nameFor(text []rune, caps []regex.Range) string {
	if !b.nameRefs {
		return b.name
	}
	return resolveCaptureRefs(b.name, text, caps)
}

func (b *ruleBase) contentNameFor(text []rune, caps []regex.Range) string {
	if !b.contentRefs {
		return b.contentName
	}
	return resolveCaptureRefs(b.contentName, text, caps)
}

// CaptureRule scopes one capture group. When the capture has patterns of
// its own, Retokenize names the rule that rescans the captured text.
type CaptureRule struct {
	ruleBase
	Retokenize RuleID
}

// MatchRule emits one match and closes immediately.
type MatchRule struct {
	ruleBase
	Match    string
	Captures []*CaptureRule
}

// BeginEndRule stays open from its begin match to its end match.
type BeginEndRule struct {
	ruleBase
	Begin               string
	BeginCaptures       []*CaptureRule
	End                 string
	EndCaptures         []*CaptureRule
	ApplyEndPatternLast bool
	Patterns            []RuleID

	endHasBackRefs  bool
	missingPatterns bool
}

// BeginWhileRule stays open while its while pattern matches at the start
// of each following line.
type BeginWhileRule struct {
	ruleBase
	Begin         string
	BeginCaptures []*CaptureRule
	While         string
	WhileCaptures []*CaptureRule
	Patterns      []RuleID

	whileHasBackRefs bool
	missingPatterns  bool
}

// IncludeOnlyRule groups patterns without matching anything itself.
type IncludeOnlyRule struct {
	ruleBase
	Patterns []RuleID

	missingPatterns bool
}
