package grammar

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/h0rv/tmhl/regex"
)

// ErrUnknownScope is returned when no grammar has the requested scope.
var ErrUnknownScope = errors.New("unknown grammar scope")

// Registry holds raw grammars by scope name and compiles them on demand.
// It resolves includes and injections between the grammars it holds.
type Registry struct {
	mu         sync.Mutex
	raws       map[string]*RawGrammar
	compiled   map[string]*Grammar
	injections map[string][]string
	opts       []Option
	logger     *zap.Logger
}

// NewRegistry returns an empty registry. opts apply to every grammar it
// compiles.
func NewRegistry(opts ...Option) *Registry {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		raws:       make(map[string]*RawGrammar),
		compiled:   make(map[string]*Grammar),
		injections: make(map[string][]string),
		opts:       opts,
		logger:     logger,
	}
}

// Add registers raw, replacing any grammar with the same scope. Compiled
// grammars are dropped so they pick up the change.
func (r *Registry) Add(raw *RawGrammar) error {
	if raw == nil || raw.ScopeName == "" {
		return &CompileError{Err: ErrMissingScopeName}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raws[raw.ScopeName] = raw
	clear(r.compiled)
	return nil
}

// AddFile loads and registers a grammar file.
func (r *Registry) AddFile(path string) error {
	raw, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := r.Add(raw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.logger.Debug("grammar loaded", zap.String("path", path), zap.String("scope", raw.ScopeName))
	return nil
}

// LoadDir registers every grammar file under dir. Files that fail to load
// are logged and skipped.
func (r *Registry) LoadDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsGrammarFile(d.Name()) {
			return nil
		}
		if err := r.AddFile(path); err != nil {
			r.logger.Error("Error loading grammar", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

// AddInjection makes injector inject into target in addition to the
// targets listed in its injectTo.
func (r *Registry) AddInjection(target, injector string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.injections[target] = append(r.injections[target], injector)
	delete(r.compiled, target)
}

// Lookup implements Resolver.
func (r *Registry) Lookup(scopeName string) (*RawGrammar, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.raws[scopeName]
	return raw, ok
}

// Injectors implements Resolver.
func (r *Registry) Injectors(scopeName string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := append([]string(nil), r.injections[scopeName]...)
	for _, name := range r.scopesLocked() {
		for _, target := range r.raws[name].InjectTo {
			if target == scopeName && !slices.Contains(res, name) {
				res = append(res, name)
			}
		}
	}
	return res
}

// Grammar returns the compiled grammar for scopeName.
func (r *Registry) Grammar(scopeName string) (*Grammar, error) {
	r.mu.Lock()
	if g, ok := r.compiled[scopeName]; ok {
		r.mu.Unlock()
		return g, nil
	}
	raw, ok := r.raws[scopeName]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scopeName)
	}

	opts := append(append([]Option(nil), r.opts...), WithResolver(r))
	g, err := NewGrammar(raw, opts...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.compiled[scopeName]; ok {
		return cur, nil
	}
	r.compiled[scopeName] = g
	return g, nil
}

// Scopes returns the registered scope names, sorted.
func (r *Registry) Scopes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scopesLocked()
}

func (r *Registry) scopesLocked() []string {
	res := make([]string, 0, len(r.raws))
	for name := range r.raws {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// ScopeForFile picks a grammar for a file by its name or extension as
// listed in fileTypes, falling back to firstLineMatch against firstLine.
func (r *Registry) ScopeForFile(filename, firstLine string) (string, bool) {
	base := filepath.Base(filename)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")

	r.mu.Lock()
	scopes := r.scopesLocked()
	raws := make([]*RawGrammar, len(scopes))
	for i, s := range scopes {
		raws[i] = r.raws[s]
	}
	r.mu.Unlock()

	for _, raw := range raws {
		for _, ft := range raw.FileTypes {
			if strings.EqualFold(ft, base) || (ext != "" && strings.EqualFold(strings.TrimPrefix(ft, "."), ext)) {
				return raw.ScopeName, true
			}
		}
	}
	if firstLine == "" {
		return "", false
	}
	engine := regex.NewOniguruma()
	for _, raw := range raws {
		if raw.FirstLineMatch == "" {
			continue
		}
		re, err := engine.Compile(raw.FirstLineMatch)
		if err == nil && re.FindAt([]rune(firstLine), 0) != nil {
			return raw.ScopeName, true
		}
	}
	return "", false
}
