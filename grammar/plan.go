package grammar

import (
	"sync"

	"github.com/h0rv/tmhl/regex"
)

// plan is the pattern list scanned while a rule is open, with the rule id
// each pattern stands for.
type plan struct {
	scanner *regex.Scanner
	ids     []RuleID
}

type planSlot struct {
	once   sync.Once
	plan   *plan
	inject sync.Once
	ipl    *plan
	while  sync.Once
	wpl    *plan
}

type dynKey struct {
	id     RuleID
	source string
}

func (g *Grammar) newPlan(pats []regex.Pattern, ids []RuleID) *plan {
	return &plan{scanner: regex.NewScanner(g.cache, pats), ids: ids}
}

// rulePlan returns the plan for the rule on top of the stack. endSource is
// the frame's resolved end pattern, used when the rule's end has
// backreferences.
func (g *Grammar) rulePlan(id RuleID, endSource string) *plan {
	r := g.Rule(id)
	if r == nil {
		return nil
	}
	if be, ok := r.(*BeginEndRule); ok && be.endHasBackRefs && endSource != "" {
		key := dynKey{id: id, source: endSource}
		if p, ok := g.dynPlans.Load(key); ok {
			return p.(*plan)
		}
		p, _ := g.dynPlans.LoadOrStore(key, g.buildPlan(r, endSource))
		return p.(*plan)
	}
	slot := &g.plans[id]
	slot.once.Do(func() { slot.plan = g.buildPlan(r, "") })
	return slot.plan
}

func (g *Grammar) buildPlan(r Rule, endSource string) *plan {
	var pats []regex.Pattern
	var ids []RuleID
	switch r := r.(type) {
	case *BeginEndRule:
		end := regex.Pattern{Source: r.End}
		if endSource != "" {
			end = regex.Pattern{Source: endSource, Origin: r.End}
		}
		if !r.ApplyEndPatternLast {
			pats, ids = append(pats, end), append(ids, endRuleID)
		}
		g.collect(r.Patterns, &pats, &ids, map[RuleID]bool{})
		if r.ApplyEndPatternLast {
			pats, ids = append(pats, end), append(ids, endRuleID)
		}
	case *BeginWhileRule:
		g.collect(r.Patterns, &pats, &ids, map[RuleID]bool{})
	case *IncludeOnlyRule:
		g.collect(r.Patterns, &pats, &ids, map[RuleID]bool{r.id: true})
	}
	return g.newPlan(pats, ids)
}

// collect appends the patterns that open each rule, flattening groups.
func (g *Grammar) collect(list []RuleID, pats *[]regex.Pattern, ids *[]RuleID, seen map[RuleID]bool) {
	for _, id := range list {
		switch r := g.Rule(id).(type) {
		case *MatchRule:
			*pats = append(*pats, regex.Pattern{Source: r.Match})
			*ids = append(*ids, id)
		case *BeginEndRule:
			*pats = append(*pats, regex.Pattern{Source: r.Begin})
			*ids = append(*ids, id)
		case *BeginWhileRule:
			*pats = append(*pats, regex.Pattern{Source: r.Begin})
			*ids = append(*ids, id)
		case *IncludeOnlyRule:
			if seen[id] {
				continue
			}
			seen[id] = true
			g.collect(r.Patterns, pats, ids, seen)
		}
	}
}

// injectionPlan scans the injected rule as if it were listed as a pattern.
func (g *Grammar) injectionPlan(id RuleID) *plan {
	slot := &g.plans[id]
	slot.inject.Do(func() {
		var pats []regex.Pattern
		var ids []RuleID
		g.collect([]RuleID{id}, &pats, &ids, map[RuleID]bool{})
		slot.ipl = g.newPlan(pats, ids)
	})
	return slot.ipl
}

// whilePlan scans the while pattern of r, resolved for the frame when it
// has backreferences.
func (g *Grammar) whilePlan(r *BeginWhileRule, resolved string) *plan {
	if r.whileHasBackRefs && resolved != "" {
		key := dynKey{id: -r.id, source: resolved}
		if p, ok := g.dynPlans.Load(key); ok {
			return p.(*plan)
		}
		p, _ := g.dynPlans.LoadOrStore(key, g.newPlan([]regex.Pattern{{Source: resolved, Origin: r.While}}, []RuleID{whileRuleID}))
		return p.(*plan)
	}
	slot := &g.plans[r.id]
	slot.while.Do(func() {
		slot.wpl = g.newPlan([]regex.Pattern{{Source: r.While}}, []RuleID{whileRuleID})
	})
	return slot.wpl
}
