package grammar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/h0rv/tmhl/internal/jsonc"
)

// RawGrammar is a grammar file as decoded from disk.
type RawGrammar struct {
	Name              string              `json:"name" yaml:"name"`
	ScopeName         string              `json:"scopeName" yaml:"scopeName"`
	FileTypes         []string            `json:"fileTypes" yaml:"fileTypes"`
	FirstLineMatch    string              `json:"firstLineMatch" yaml:"firstLineMatch"`
	Patterns          []*RawRule          `json:"patterns" yaml:"patterns"`
	Repository        map[string]*RawRule `json:"repository" yaml:"repository"`
	Injections        map[string]*RawRule `json:"injections" yaml:"injections"`
	InjectionSelector string              `json:"injectionSelector" yaml:"injectionSelector"`
	InjectTo          []string            `json:"injectTo" yaml:"injectTo"`
}

// RawRule is one pattern node of a grammar.
type RawRule struct {
	Include             string              `json:"include" yaml:"include"`
	Name                string              `json:"name" yaml:"name"`
	ContentName         string              `json:"contentName" yaml:"contentName"`
	Match               string              `json:"match" yaml:"match"`
	Begin               string              `json:"begin" yaml:"begin"`
	End                 string              `json:"end" yaml:"end"`
	While               string              `json:"while" yaml:"while"`
	Captures            map[string]*RawRule `json:"captures" yaml:"captures"`
	BeginCaptures       map[string]*RawRule `json:"beginCaptures" yaml:"beginCaptures"`
	EndCaptures         map[string]*RawRule `json:"endCaptures" yaml:"endCaptures"`
	WhileCaptures       map[string]*RawRule `json:"whileCaptures" yaml:"whileCaptures"`
	Patterns            []*RawRule          `json:"patterns" yaml:"patterns"`
	Repository          map[string]*RawRule `json:"repository" yaml:"repository"`
	ApplyEndPatternLast Flag                `json:"applyEndPatternLast" yaml:"applyEndPatternLast"`
	Disabled            Flag                `json:"disabled" yaml:"disabled"`
}

// Flag is a boolean that grammar files spell as true/false or 1/0.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b, err := flagValue(v)
	*f = Flag(b)
	return err
}

func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	b, err := flagValue(v)
	*f = Flag(b)
	return err
}

func flagValue(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n != 0, nil
		}
		return strconv.ParseBool(x)
	}
	return false, fmt.Errorf("invalid flag value %v", v)
}

// ParseJSON decodes a JSON or JSONC grammar.
func ParseJSON(data []byte) (*RawGrammar, error) {
	std, err := jsonc.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	var g RawGrammar
	if err := json.Unmarshal(std, &g); err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	return &g, nil
}

// ParseYAML decodes a YAML grammar.
func ParseYAML(data []byte) (*RawGrammar, error) {
	var g RawGrammar
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode grammar: %w", err)
	}
	return &g, nil
}

// LoadFile reads a grammar file, choosing the decoder by extension.
func LoadFile(path string) (*RawGrammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g *RawGrammar
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		g, err = ParseYAML(data)
	default:
		g, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// IsGrammarFile reports whether name looks like a grammar file.
func IsGrammarFile(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".tmlanguage.json", ".tmlanguage.yaml", ".tmlanguage.yml", ".tmgrammar.json"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
