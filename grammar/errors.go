package grammar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	// ErrMissingScopeName is returned for grammars without a scopeName.
	ErrMissingScopeName = errors.New("grammar has no scopeName")
	// ErrMalformedRule is returned for pattern nodes that cannot form a rule.
	ErrMalformedRule = errors.New("malformed rule")
)

// CompileError reports a structural problem in a grammar, located by the
// path of the offending node, e.g. "repository.string.patterns[1]".
type CompileError struct {
	Scope string
	Path  string
	Msg   string
	Err   error
}

func (e *CompileError) Error() string {
	s := e.Scope
	if e.Path != "" {
		s += " " + e.Path
	}
	if s == "" {
		return e.Err.Error()
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s: %v", s, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %v", s, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Validate checks the structure of raw and returns the first problem found.
func Validate(raw *RawGrammar) error {
	if raw.ScopeName == "" {
		return &CompileError{Err: ErrMissingScopeName}
	}
	v := validator{scope: raw.ScopeName}
	if err := v.list("patterns", raw.Patterns); err != nil {
		return err
	}
	if err := v.repository("repository", raw.Repository); err != nil {
		return err
	}
	for _, sel := range sortedKeys(raw.Injections) {
		if err := v.node("injections."+sel, raw.Injections[sel], false); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	scope string
}

func (v validator) fail(path, msg string) error {
	return &CompileError{Scope: v.scope, Path: path, Msg: msg, Err: ErrMalformedRule}
}

func (v validator) list(path string, rules []*RawRule) error {
	for i, r := range rules {
		if err := v.node(path+"["+strconv.Itoa(i)+"]", r, true); err != nil {
			return err
		}
	}
	return nil
}

func (v validator) repository(path string, repo map[string]*RawRule) error {
	for _, key := range sortedKeys(repo) {
		if err := v.node(path+"."+key, repo[key], false); err != nil {
			return err
		}
	}
	return nil
}

// node checks one rule. Entries of a patterns list must say what they do;
// repository entries may be bare containers.
func (v validator) node(path string, r *RawRule, inList bool) error {
	if r == nil {
		if inList {
			return v.fail(path, "null pattern")
		}
		return nil
	}
	if r.Disabled {
		return nil
	}
	if inList && r.Include == "" && r.Match == "" && r.Begin == "" && r.Patterns == nil {
		return v.fail(path, "pattern has none of match, begin, include, patterns")
	}
	if r.Begin == "" && r.Match == "" && (r.End != "" || r.While != "") {
		return v.fail(path, "end or while without begin")
	}
	for _, c := range []struct {
		name string
		caps map[string]*RawRule
	}{
		{"captures", r.Captures},
		{"beginCaptures", r.BeginCaptures},
		{"endCaptures", r.EndCaptures},
		{"whileCaptures", r.WhileCaptures},
	} {
		for _, key := range sortedKeys(c.caps) {
			if _, err := strconv.Atoi(key); err != nil {
				return v.fail(path+"."+c.name, "capture key "+strconv.Quote(key)+" is not a number")
			}
			if cr := c.caps[key]; cr != nil {
				if err := v.list(path+"."+c.name+"."+key+".patterns", cr.Patterns); err != nil {
					return err
				}
			}
		}
	}
	if err := v.list(path+".patterns", r.Patterns); err != nil {
		return err
	}
	return v.repository(path+".repository", r.Repository)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
