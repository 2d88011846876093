// Package grammar compiles TextMate grammars into rule graphs and
// tokenizes text line by line against them.
package grammar

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/h0rv/tmhl/regex"
)

// Resolver finds other grammars for cross-grammar includes and injections.
type Resolver interface {
	// Lookup returns the raw grammar with the given scope name.
	Lookup(scopeName string) (*RawGrammar, bool)
	// Injectors returns the scope names of grammars injecting into scopeName.
	Injectors(scopeName string) []string
}

// Option configures a Grammar.
type Option func(*options)

type options struct {
	engine   regex.Engine
	logger   *zap.Logger
	resolver Resolver
	maxSteps int
}

// WithEngine sets the regex engine. The default is regex.NewOniguruma().
func WithEngine(e regex.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithLogger sets the logger for compile diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithResolver enables includes and injections across grammars.
func WithResolver(r Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithMaxScanSteps bounds the scan steps spent on one line. Zero means
// unlimited.
func WithMaxScanSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

// Stats describes a compiled grammar.
type Stats struct {
	Rules              int
	Injections         int
	UnresolvedIncludes int
}

// Grammar is a compiled grammar. It is safe for concurrent use.
type Grammar struct {
	raw        *RawGrammar
	scopeName  string
	rules      []Rule
	root       RuleID
	injections []Injection
	initial    *StateStack

	cache    *regex.Cache
	plans    []planSlot
	dynPlans sync.Map
	maxSteps int
	logger   *zap.Logger
	stats    Stats
}

// NewGrammar validates and compiles raw.
func NewGrammar(raw *RawGrammar, opts ...Option) (*Grammar, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = regex.NewOniguruma()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if raw == nil {
		return nil, fmt.Errorf("nil grammar: %w", ErrMissingScopeName)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	g := &Grammar{
		raw:       raw,
		scopeName: raw.ScopeName,
		cache:     regex.NewCache(o.engine, o.logger),
		maxSteps:  o.maxSteps,
		logger:    o.logger.With(zap.String("grammar", raw.ScopeName)),
	}
	c := newCompiler(g, o.resolver)
	g.root = c.compileRoot()
	g.injections = c.collectInjections()
	g.plans = make([]planSlot, len(g.rules))
	g.stats = Stats{
		Rules:              len(g.rules) - 1,
		Injections:         len(g.injections),
		UnresolvedIncludes: c.unresolved,
	}

	scopes := (*ScopeList)(nil).Push(raw.ScopeName)
	g.initial = &StateStack{
		ruleID:        g.root,
		enterPos:      -1,
		anchorPos:     -1,
		nameScopes:    scopes,
		contentScopes: scopes,
		depth:         1,
	}
	return g, nil
}

// ScopeName returns the grammar's root scope.
func (g *Grammar) ScopeName() string { return g.scopeName }

// Raw returns the grammar as decoded.
func (g *Grammar) Raw() *RawGrammar { return g.raw }

// Rule returns the rule with the given id, or nil.
func (g *Grammar) Rule(id RuleID) Rule {
	if id <= 0 || int(id) >= len(g.rules) {
		return nil
	}
	return g.rules[id]
}

// RootID returns the id of the top-level rule.
func (g *Grammar) RootID() RuleID { return g.root }

// Injections returns the injections in the order they are tried.
func (g *Grammar) Injections() []Injection { return g.injections }

// Stats returns compile statistics.
func (g *Grammar) Stats() Stats { return g.stats }

// SentinelCount returns how many patterns failed to compile so far.
// Patterns compile on first use, so the count grows as rules are reached.
func (g *Grammar) SentinelCount() int { return g.cache.SentinelCount() }
