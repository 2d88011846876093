package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/h0rv/tmhl/internal/jsonc"
)

// ErrInvalidTheme is returned for theme sources that are not valid JSON
// or not shaped like a theme.
var ErrInvalidTheme = errors.New("invalid theme")

// Option configures theme loading.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger for dropped attributes and includes.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

type rawTheme struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Include     string            `json:"include"`
	Colors      map[string]string `json:"colors"`
	TokenColors json.RawMessage   `json:"tokenColors"`
	Settings    []rawSetting      `json:"settings"`
}

type rawSetting struct {
	Name     string          `json:"name"`
	Scope    json.RawMessage `json:"scope"`
	Settings rawAttributes   `json:"settings"`
}

type rawAttributes struct {
	FontStyle  *string `json:"fontStyle"`
	Foreground *string `json:"foreground"`
	Background *string `json:"background"`
}

// builder accumulates sources in order. Index grows across sources so
// later sources win ties.
type builder struct {
	theme   *Theme
	next    int
	visited map[string]bool
	logger  *zap.Logger
}

func newBuilder(opts []Option) *builder {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &builder{
		theme:   New("", DefaultStyle, nil),
		visited: map[string]bool{},
		logger:  o.logger,
	}
}

// Read decodes a single theme source. Includes are not followed since
// there is no directory to resolve them against.
func Read(r io.Reader, opts ...Option) (*Theme, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := newBuilder(opts)
	if err := b.add(data, ""); err != nil {
		return nil, err
	}
	return b.theme, nil
}

// Load reads theme files in order and merges them; later files override
// earlier ones at equal specificity. A file's include is loaded before it.
func Load(paths []string, opts ...Option) (*Theme, error) {
	b := newBuilder(opts)
	for _, p := range paths {
		if err := b.addFile(p); err != nil {
			return nil, err
		}
	}
	return b.theme, nil
}

func (b *builder) addFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if b.visited[abs] {
		b.logger.Debug("theme already loaded", zap.String("path", path))
		return nil
	}
	b.visited[abs] = true
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := b.add(data, filepath.Dir(path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (b *builder) add(data []byte, dir string) error {
	var raw rawTheme
	std, err := jsonc.Standardize(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if err := json.Unmarshal(std, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	if raw.Include != "" {
		if dir == "" {
			b.logger.Debug("theme include ignored", zap.String("include", raw.Include))
		} else if err := b.addFile(filepath.Join(dir, raw.Include)); err != nil {
			return err
		}
	}

	t := b.theme
	if raw.Name != "" {
		t.Name = raw.Name
	}
	if raw.Type != "" {
		t.Type = strings.ToLower(raw.Type)
	}
	for _, key := range sortedKeys(raw.Colors) {
		if c, ok := ParseColor(raw.Colors[key]); ok {
			t.Colors[key] = c
		}
	}
	if c, ok := ParseColor(raw.Colors["editor.foreground"]); ok {
		t.Default.Foreground = c
	}
	if c, ok := ParseColor(raw.Colors["editor.background"]); ok {
		t.Default.Background = c
	}

	// The legacy settings list applies only to themes without tokenColors.
	settings := raw.Settings
	if len(raw.TokenColors) > 0 {
		var tc []rawSetting
		if err := json.Unmarshal(raw.TokenColors, &tc); err != nil {
			return fmt.Errorf("%w: tokenColors: %v", ErrInvalidTheme, err)
		}
		if tc != nil {
			settings = tc
		}
	}
	for _, s := range settings {
		b.addSetting(s)
	}
	return nil
}

func (b *builder) addSetting(s rawSetting) {
	fg := b.color(s.Settings.Foreground)
	bg := b.color(s.Settings.Background)
	var fs *FontStyle
	if s.Settings.FontStyle != nil {
		v := ParseFontStyle(*s.Settings.FontStyle)
		fs = &v
	}

	selectors := scopeList(s.Scope)
	if len(selectors) == 0 {
		d := &b.theme.Default
		if fg != nil {
			d.Foreground = *fg
		}
		if bg != nil {
			d.Background = *bg
		}
		if fs != nil {
			d.FontStyle = *fs
		}
		return
	}

	index := b.next
	b.next++
	for _, sel := range selectors {
		sc, parents := parseSelector(sel)
		if sc == "" {
			continue
		}
		b.theme.Rules = append(b.theme.Rules, Rule{
			Scope:      sc,
			Parents:    parents,
			FontStyle:  fs,
			Foreground: fg,
			Background: bg,
			Index:      index,
		})
	}
}

func (b *builder) color(s *string) *Color {
	if s == nil {
		return nil
	}
	c, ok := ParseColor(*s)
	if !ok {
		b.logger.Debug("invalid theme color", zap.String("color", *s))
		return nil
	}
	return &c
}

// scopeList decodes a scope given as a comma-separated string or a list.
func scopeList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	var s string
	if json.Unmarshal(raw, &s) == nil {
		list = strings.Split(s, ",")
	} else if json.Unmarshal(raw, &list) != nil {
		return nil
	}
	var res []string
	for _, sel := range list {
		if sel = strings.TrimSpace(sel); sel != "" {
			res = append(res, sel)
		}
	}
	return res
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
