package grammar

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/h0rv/tmhl/scope"
)

// repository is a chain of named rules; nested repositories shadow the
// ones they are declared in.
type repository struct {
	entries map[string]*RawRule
	parent  *repository
}

func (r *repository) lookup(name string) *RawRule {
	for ; r != nil; r = r.parent {
		if rule, ok := r.entries[name]; ok {
			return rule
		}
	}
	return nil
}

// context is what include references resolve against while compiling.
type context struct {
	repo *repository
	self *RawRule
	base *RawRule
}

func (ctx context) with(entries map[string]*RawRule) context {
	if len(entries) == 0 {
		return ctx
	}
	ctx.repo = &repository{entries: entries, parent: ctx.repo}
	return ctx
}

type compiler struct {
	g        *Grammar
	resolver Resolver
	ids      map[*RawRule]RuleID
	roots    map[string]*RawRule
	raws     map[string]*RawGrammar

	unresolved int
}

func newCompiler(g *Grammar, resolver Resolver) *compiler {
	return &compiler{
		g:        g,
		resolver: resolver,
		ids:      make(map[*RawRule]RuleID),
		roots:    make(map[string]*RawRule),
		raws:     map[string]*RawGrammar{g.raw.ScopeName: g.raw},
	}
}

func (c *compiler) compileRoot() RuleID {
	root := c.rootOf(c.g.raw)
	return c.ruleID(root, c.grammarContext(c.g.raw, root))
}

// rootOf returns the synthetic top-level rule of a grammar, created once.
func (c *compiler) rootOf(raw *RawGrammar) *RawRule {
	if r, ok := c.roots[raw.ScopeName]; ok {
		return r
	}
	r := &RawRule{Name: raw.ScopeName, Patterns: raw.Patterns}
	c.roots[raw.ScopeName] = r
	return r
}

// grammarContext resolves $self to raw's root and keeps $base at the host
// root once one exists.
func (c *compiler) grammarContext(raw *RawGrammar, root *RawRule) context {
	base := c.roots[c.g.raw.ScopeName]
	if base == nil {
		base = root
	}
	return context{
		repo: &repository{entries: raw.Repository},
		self: root,
		base: base,
	}
}

func (c *compiler) alloc() RuleID {
	if len(c.g.rules) == 0 {
		c.g.rules = append(c.g.rules, nil)
	}
	c.g.rules = append(c.g.rules, nil)
	return RuleID(len(c.g.rules) - 1)
}

// ruleID compiles desc, or returns the id it already has. The id is
// assigned before any child is compiled so recursive includes find it.
func (c *compiler) ruleID(desc *RawRule, ctx context) RuleID {
	if id, ok := c.ids[desc]; ok {
		return id
	}
	id := c.alloc()
	c.ids[desc] = id
	ctx = ctx.with(desc.Repository)

	var r Rule
	switch {
	case desc.Match != "":
		r = &MatchRule{
			ruleBase: newRuleBase(id, desc.Name, ""),
			Match:    normalizeSource(desc.Match),
			Captures: c.captures(desc.Captures, ctx),
		}
	case desc.Begin == "":
		patterns := desc.Patterns
		if patterns == nil && desc.Include != "" {
			patterns = []*RawRule{{Include: desc.Include}}
		}
		ids, missing := c.patterns(patterns, ctx)
		r = &IncludeOnlyRule{
			ruleBase:        newRuleBase(id, desc.Name, desc.ContentName),
			Patterns:        ids,
			missingPatterns: missing,
		}
	case desc.While != "":
		ids, missing := c.patterns(desc.Patterns, ctx)
		r = &BeginWhileRule{
			ruleBase:         newRuleBase(id, desc.Name, desc.ContentName),
			Begin:            normalizeSource(desc.Begin),
			BeginCaptures:    c.captures(orCaptures(desc.BeginCaptures, desc.Captures), ctx),
			While:            normalizeSource(desc.While),
			WhileCaptures:    c.captures(orCaptures(desc.WhileCaptures, desc.Captures), ctx),
			Patterns:         ids,
			whileHasBackRefs: hasBackRefs(desc.While),
			missingPatterns:  missing,
		}
	default:
		ids, missing := c.patterns(desc.Patterns, ctx)
		r = &BeginEndRule{
			ruleBase:            newRuleBase(id, desc.Name, desc.ContentName),
			Begin:               normalizeSource(desc.Begin),
			BeginCaptures:       c.captures(orCaptures(desc.BeginCaptures, desc.Captures), ctx),
			End:                 normalizeSource(desc.End),
			EndCaptures:         c.captures(orCaptures(desc.EndCaptures, desc.Captures), ctx),
			ApplyEndPatternLast: bool(desc.ApplyEndPatternLast),
			Patterns:            ids,
			endHasBackRefs:      hasBackRefs(desc.End),
			missingPatterns:     missing,
		}
	}
	c.g.rules[id] = r
	return id
}

func orCaptures(specific, general map[string]*RawRule) map[string]*RawRule {
	if specific != nil {
		return specific
	}
	return general
}

func (c *compiler) captures(raw map[string]*RawRule, ctx context) []*CaptureRule {
	if len(raw) == 0 {
		return nil
	}
	highest := 0
	for key := range raw {
		if n, err := strconv.Atoi(key); err == nil && n > highest {
			highest = n
		}
	}
	res := make([]*CaptureRule, highest+1)
	for _, key := range sortedKeys(raw) {
		n, err := strconv.Atoi(key)
		desc := raw[key]
		if err != nil || n < 0 || desc == nil {
			continue
		}
		cr := &CaptureRule{ruleBase: newRuleBase(0, desc.Name, desc.ContentName)}
		if desc.Patterns != nil {
			cr.Retokenize = c.ruleID(desc, ctx)
		}
		res[n] = cr
	}
	return res
}

// patterns compiles a pattern list. Unresolvable includes are dropped and
// reported through missing; so are containers left empty by them.
func (c *compiler) patterns(list []*RawRule, ctx context) ([]RuleID, bool) {
	var ids []RuleID
	missing := false
	for _, p := range list {
		if p == nil || p.Disabled {
			continue
		}
		var id RuleID
		if p.Include != "" {
			id = c.include(p.Include, ctx)
		} else {
			id = c.ruleID(p, ctx)
		}
		if id == 0 {
			missing = true
			continue
		}
		if c.emptyAfterMissing(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, missing
}

// emptyAfterMissing reports whether id is a fully compiled rule whose
// every child pattern failed to resolve. Rules still being compiled are
// kept.
func (c *compiler) emptyAfterMissing(id RuleID) bool {
	switch r := c.g.rules[id].(type) {
	case *IncludeOnlyRule:
		return r.missingPatterns && len(r.Patterns) == 0
	case *BeginEndRule:
		return r.missingPatterns && len(r.Patterns) == 0
	case *BeginWhileRule:
		return r.missingPatterns && len(r.Patterns) == 0
	}
	return false
}

// include resolves an include reference to a rule id, zero if unknown.
func (c *compiler) include(ref string, ctx context) RuleID {
	switch {
	case ref == "$self":
		return c.ruleID(ctx.self, c.grammarContext(c.raws[ctx.self.Name], ctx.self))
	case ref == "$base":
		return c.ruleID(ctx.base, c.grammarContext(c.g.raw, ctx.base))
	case strings.HasPrefix(ref, "#"):
		if desc := ctx.repo.lookup(ref[1:]); desc != nil {
			return c.ruleID(desc, ctx)
		}
	default:
		scopeName, key, _ := strings.Cut(ref, "#")
		raw := c.external(scopeName)
		if raw == nil {
			break
		}
		root := c.rootOf(raw)
		ext := c.grammarContext(raw, root)
		if key == "" {
			return c.ruleID(root, ext)
		}
		if desc := raw.Repository[key]; desc != nil {
			return c.ruleID(desc, ext)
		}
	}
	c.unresolved++
	c.g.logger.Debug("unresolved include", zap.String("include", ref))
	return 0
}

func (c *compiler) external(scopeName string) *RawGrammar {
	if raw, ok := c.raws[scopeName]; ok {
		return raw
	}
	if c.resolver == nil {
		return nil
	}
	raw, ok := c.resolver.Lookup(scopeName)
	if !ok || raw == nil {
		return nil
	}
	c.raws[scopeName] = raw
	return raw
}

// collectInjections compiles the grammar's own injections and those of
// grammars that inject into it, ordered by priority.
func (c *compiler) collectInjections() []Injection {
	var res []Injection
	host := c.roots[c.g.raw.ScopeName]
	hostCtx := c.grammarContext(c.g.raw, host)
	for _, sel := range sortedKeys(c.g.raw.Injections) {
		desc := c.g.raw.Injections[sel]
		if desc == nil {
			continue
		}
		res = appendInjections(res, sel, c.ruleID(desc, hostCtx))
	}
	if c.resolver != nil {
		for _, name := range c.resolver.Injectors(c.g.raw.ScopeName) {
			raw := c.external(name)
			if raw == nil || raw.InjectionSelector == "" {
				continue
			}
			root := c.rootOf(raw)
			res = appendInjections(res, raw.InjectionSelector, c.ruleID(root, c.grammarContext(raw, root)))
		}
	}
	sortInjections(res)
	return res
}

func appendInjections(res []Injection, selector string, id RuleID) []Injection {
	for _, m := range scope.ParseSelector(selector) {
		res = append(res, Injection{
			Selector: selector,
			Priority: m.Priority,
			RuleID:   id,
			match:    m.Match,
		})
	}
	return res
}
