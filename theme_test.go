package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h0rv/tmhl/theme"
)

func builtinTheme(t *testing.T, name string) *theme.Theme {
	t.Helper()
	th, ok := theme.Builtin(name)
	require.True(t, ok, name)
	return th
}

func TestNewUITheme(t *testing.T) {
	th := builtinTheme(t, "monokai")
	ut := NewUITheme(th)

	assert.Equal(t, "monokai", ut.Name)
	assert.Equal(t, th.Default.Foreground, ut.Foreground)
	assert.Equal(t, th.Default.Background, ut.Background)
	assert.Equal(t, th.Match([]string{"source", "keyword"}).Foreground, ut.Accent)
	assert.NotEqual(t, ut.Foreground, ut.Accent)
	assert.Equal(t, ut.Background.Blend(ut.Added, 0.18), ut.TintAdded)
	assert.Equal(t, ut.Background.Blend(ut.Removed, 0.18), ut.TintRemoved)

	_, bg, _ := ut.Default.Decompose()
	assert.Equal(t, tcellColor(ut.Background, ut.Background), bg)
	assert.Equal(t, tcellColor(ut.TintAdded, ut.Background), ut.BgAdded)
}

func TestNewUIThemeLight(t *testing.T) {
	ut := NewUITheme(builtinTheme(t, "github"))
	assert.False(t, ut.Background.IsDark())
	assert.Equal(t, ut.Background.Blend(ut.Added, 0.12), ut.TintAdded)
}

func TestProbeFallsBack(t *testing.T) {
	th := theme.New("bare", theme.DefaultStyle, nil)
	ut := NewUITheme(th)
	assert.Equal(t, fallbackAdded, ut.Added)
	assert.Equal(t, fallbackRemoved, ut.Removed)
	assert.Equal(t, theme.RGB(0x00, 0xAF, 0xFF), ut.Accent)
}

func TestFlatten(t *testing.T) {
	black := theme.RGB(0, 0, 0)
	tests := []struct {
		name string
		in   string
		want theme.Color
	}{
		{"opaque", "#12AB34", theme.RGB(0x12, 0xAB, 0x34)},
		{"half", "#FFFFFF80", theme.RGB(0x80, 0x80, 0x80)},
		{"transparent", "#FFFFFF00", black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := theme.ParseColor(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, flatten(c, black))
		})
	}
}

func TestContrastFg(t *testing.T) {
	assert.Equal(t, theme.RGB(0, 0, 0), contrastFg(theme.RGB(0xFF, 0xFF, 0xFF)))
	assert.Equal(t, theme.RGB(0xFF, 0xFF, 0xFF), contrastFg(theme.RGB(0x10, 0x10, 0x40)))
}

func TestSpanStyle(t *testing.T) {
	ut := NewUITheme(builtinTheme(t, "monokai"))
	base := ut.Default.Background(tcell.ColorDarkGreen)

	rs := theme.ResolvedStyle{
		Foreground: theme.RGB(0xFF, 0, 0),
		Background: ut.Background,
		FontStyle:  theme.Bold | theme.Italic,
	}
	fg, bg, attr := ut.spanStyle(base, rs).Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0, 0), fg)
	assert.Equal(t, tcell.ColorDarkGreen, bg, "theme background must not cover the diff tint")
	assert.NotZero(t, attr&tcell.AttrBold)
	assert.NotZero(t, attr&tcell.AttrItalic)
	assert.Zero(t, attr&tcell.AttrUnderline)

	rs.Background = theme.RGB(0, 0, 0xFF)
	_, bg, _ = ut.spanStyle(base, rs).Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0xFF), bg)
}

const tinyTheme = `{
	// comments and trailing commas are accepted
	"name": "Tiny",
	"type": "dark",
	"colors": {
		"editor.background": "#101010",
		"editor.foreground": "#E0E0E0",
	},
	"tokenColors": [
		{"scope": "keyword", "settings": {"foreground": "#FF0000"}},
	],
}`

func TestLoadTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.json")
	require.NoError(t, os.WriteFile(path, []byte(tinyTheme), 0o644))

	t.Run("builtin", func(t *testing.T) {
		th, err := loadTheme("dracula")
		require.NoError(t, err)
		assert.Equal(t, "dracula", th.Name)
	})
	t.Run("file", func(t *testing.T) {
		th, err := loadTheme(path)
		require.NoError(t, err)
		assert.Equal(t, "Tiny", th.Name)
		assert.Equal(t, theme.RGB(0x10, 0x10, 0x10), th.Default.Background)
		assert.Equal(t, theme.RGB(0xFF, 0, 0), th.Match([]string{"source.x", "keyword.control"}).Foreground)
	})
	t.Run("file list", func(t *testing.T) {
		override := filepath.Join(dir, "override.json")
		require.NoError(t, os.WriteFile(override,
			[]byte(`{"tokenColors": [{"scope": "keyword", "settings": {"foreground": "#00FF00"}}]}`), 0o644))
		th, err := loadTheme(path + ", " + override)
		require.NoError(t, err)
		assert.Equal(t, "Tiny", th.Name)
		assert.Equal(t, theme.RGB(0, 0xFF, 0), th.Match([]string{"keyword"}).Foreground)
	})
	t.Run("unnamed file", func(t *testing.T) {
		bare := filepath.Join(dir, "bare.json")
		require.NoError(t, os.WriteFile(bare, []byte(`{"tokenColors": []}`), 0o644))
		th, err := loadTheme(bare)
		require.NoError(t, err)
		assert.Equal(t, bare, th.Name)
	})
	t.Run("missing", func(t *testing.T) {
		_, err := loadTheme(filepath.Join(dir, "nope.json"))
		assert.ErrorContains(t, err, "loading theme")
	})
	t.Run("invalid", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"name": `), 0o644))
		_, err := loadTheme(bad)
		assert.ErrorIs(t, err, theme.ErrInvalidTheme)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := loadTheme(" , ")
		assert.EqualError(t, err, "no theme given")
	})
}

func TestNextBuiltinTheme(t *testing.T) {
	names := theme.BuiltinNames()
	require.NotEmpty(t, names)

	assert.Equal(t, names[1], nextBuiltinTheme(names[0]).Name)
	assert.Equal(t, names[0], nextBuiltinTheme(names[len(names)-1]).Name)
	assert.Equal(t, names[0], nextBuiltinTheme("not-a-theme").Name)
}

func TestListThemes(t *testing.T) {
	var buf bytes.Buffer
	ListThemes(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(theme.BuiltinNames()))

	var monokai string
	for _, l := range lines {
		if strings.HasPrefix(l, "monokai ") {
			monokai = l
		}
	}
	assert.Equal(t, "dark", strings.Fields(monokai)[1])
}
