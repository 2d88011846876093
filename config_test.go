package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// resetConfig clears the global config state around a test.
func resetConfig(t *testing.T) {
	t.Helper()
	reset := func() {
		viper.Reset()
		cfgFile, cfg, configErr = "", Config{}, nil
	}
	reset()
	t.Cleanup(reset)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "monokai", d.Theme)
	assert.True(t, d.LineNumbers)
	assert.True(t, d.Wrap)
	assert.True(t, d.Syntax)
	assert.True(t, d.DiffBg)
	assert.Equal(t, 3, d.ContextLines)
	assert.Equal(t, 10000, d.MaxScanSteps)
	assert.Equal(t, "auto", d.Color)
	assert.Empty(t, d.Debug)
}

func TestInitConfigDefaults(t *testing.T) {
	resetConfig(t)
	initConfig()
	require.NoError(t, configErr)
	assert.Equal(t, Defaults(), cfg)
}

func TestInitConfigFileAndEnv(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"theme: dracula\nwrap: false\ngrammar_dirs:\n  - /opt/grammars\n"), 0o644))
	t.Setenv("TMHL_CONTEXT_LINES", "7")
	cfgFile = path

	initConfig()
	require.NoError(t, configErr)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.False(t, cfg.Wrap)
	assert.True(t, cfg.LineNumbers)
	assert.Equal(t, []string{"/opt/grammars"}, cfg.GrammarDirs)
	assert.Equal(t, 7, cfg.ContextLines)
}

func TestInitConfigXDG(t *testing.T) {
	resetConfig(t)
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "tmhl")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("syntax: false\n"), 0o644))

	initConfig()
	require.NoError(t, configErr)
	assert.False(t, cfg.Syntax)
	assert.Equal(t, dir, configDir())
}

func TestInitConfigInvalidFile(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: [unclosed\n"), 0o644))
	cfgFile = path

	initConfig()
	assert.Error(t, configErr)
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("")
	require.NoError(t, err)
	assert.NotNil(t, l)

	path := filepath.Join(t.TempDir(), "debug.log")
	l, err = newLogger(path)
	require.NoError(t, err)
	l.Info("hello", zap.String("k", "v"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

const toyGrammar = `{
	"scopeName": "source.toy",
	"fileTypes": ["toy"],
	"patterns": [{"match": "\\btoy\\b", "name": "keyword.toy"}]
}`

func TestNewRegistry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toy.tmLanguage.json"), []byte(toyGrammar), 0o644))

	c := Defaults()
	c.GrammarDirs = []string{dir}
	reg, err := newRegistry(c, zap.NewNop())
	require.NoError(t, err)

	_, err = reg.Grammar("source.json")
	assert.NoError(t, err)

	scope, ok := reg.ScopeForFile("x.toy", "")
	assert.True(t, ok)
	assert.Equal(t, "source.toy", scope)

	g, err := reg.Grammar("source.toy")
	require.NoError(t, err)
	res := g.TokenizeLine("a toy", nil)
	require.Len(t, res.Tokens, 2)
	assert.Equal(t, []string{"source.toy", "keyword.toy"}, res.Tokens[1].Scopes)
}

func TestNewRegistryMissingDir(t *testing.T) {
	c := Defaults()
	c.GrammarDirs = []string{filepath.Join(t.TempDir(), "nope")}
	_, err := newRegistry(c, zap.NewNop())
	assert.Error(t, err)
}
