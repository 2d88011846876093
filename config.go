package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/h0rv/tmhl/grammar"
	"github.com/h0rv/tmhl/internal/builtin"
)

// Config is read from flags, TMHL_* environment variables and the config
// file, in that order of precedence.
type Config struct {
	Theme        string   `mapstructure:"theme"`
	GrammarDirs  []string `mapstructure:"grammar_dirs"`
	Lang         string   `mapstructure:"lang"`
	LineNumbers  bool     `mapstructure:"line_numbers"`
	Wrap         bool     `mapstructure:"wrap"`
	Syntax       bool     `mapstructure:"syntax"`
	DiffBg       bool     `mapstructure:"diff_bg"`
	ContextLines int      `mapstructure:"context_lines"`
	MaxScanSteps int      `mapstructure:"max_scan_steps"`
	Color        string   `mapstructure:"color"`
	Debug        string   `mapstructure:"debug"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Theme:        "monokai",
		LineNumbers:  true,
		Wrap:         true,
		Syntax:       true,
		DiffBg:       true,
		ContextLines: 3,
		MaxScanSteps: 10000,
		Color:        "auto",
	}
}

// configDir returns $XDG_CONFIG_HOME/tmhl, or ~/.config/tmhl.
func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tmhl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tmhl")
}

func initConfig() {
	defaults := Defaults()
	viper.SetDefault("theme", defaults.Theme)
	viper.SetDefault("grammar_dirs", defaults.GrammarDirs)
	viper.SetDefault("lang", defaults.Lang)
	viper.SetDefault("line_numbers", defaults.LineNumbers)
	viper.SetDefault("wrap", defaults.Wrap)
	viper.SetDefault("syntax", defaults.Syntax)
	viper.SetDefault("diff_bg", defaults.DiffBg)
	viper.SetDefault("context_lines", defaults.ContextLines)
	viper.SetDefault("max_scan_steps", defaults.MaxScanSteps)
	viper.SetDefault("color", defaults.Color)
	viper.SetDefault("debug", defaults.Debug)

	viper.SetEnvPrefix("tmhl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = err
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = err
	}
}

// newLogger writes development logs to path. The terminal belongs to the
// viewer, so without a path nothing is logged.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}

// newRegistry loads the embedded grammars, then the grammar directories,
// which may replace them.
func newRegistry(c Config, logger *zap.Logger) (*grammar.Registry, error) {
	reg := grammar.NewRegistry(grammar.WithLogger(logger), grammar.WithMaxScanSteps(c.MaxScanSteps))
	for _, g := range builtin.Grammars() {
		raw, err := grammar.ParseJSON(g.Data)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(raw); err != nil {
			return nil, err
		}
	}
	for _, dir := range c.GrammarDirs {
		if err := reg.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
