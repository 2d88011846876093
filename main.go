package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/h0rv/tmhl/theme"
)

var (
	version   = "dev"
	cfgFile   string
	cfg       Config
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "tmhl [flags] [file...] | tmhl --diff [ref] [ref2]",
	Short: "A terminal viewer that highlights files with TextMate grammars",
	Long: `tmhl tokenizes files with TextMate grammars and colors them with
VS Code themes or chroma styles. It shows a single file, a git diff, or a
diff read from a pipe.`,
	Example: `  tmhl main.json            View a file
  tmhl -g ~/grammars x.md   Load extra grammars
  tmhl --diff HEAD~3        Diff against 3 commits ago
  git diff | tmhl           Read a diff from a pipe
  tmhl --cat -t dracula f   Print highlighted lines
  tmhl --tokens f           Dump tokens as JSON`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: $XDG_CONFIG_HOME/tmhl/config.yaml)")

	f := rootCmd.Flags()
	f.StringP("theme", "t", "", "built-in theme name, or theme files separated by commas (env: TMHL_THEME)")
	f.Bool("themes", false, "list built-in themes")
	f.StringSliceP("grammars", "g", nil, "directory of .tmLanguage.json/.yaml files (repeatable)")
	f.StringP("lang", "l", "", "grammar scope to use, e.g. source.json")
	f.BoolP("diff", "d", false, "show git diff; arguments are refs")
	f.Bool("staged", false, "show staged changes (implies --diff)")
	f.IntP("context", "U", 3, "diff context lines")
	f.BoolP("no-line-numbers", "N", false, "disable line numbers")
	f.BoolP("no-wrap", "W", false, "disable line wrapping")
	f.BoolP("no-diff-bg", "B", false, "disable diff background tints")
	f.BoolP("no-syntax", "S", false, "disable syntax highlighting")
	f.Bool("cat", false, "print highlighted output instead of opening the viewer")
	f.Bool("tokens", false, "print a JSON snapshot of the tokens of each file")
	f.String("color", "auto", "color for --cat: auto, always or never")
	f.Int("max-scan-steps", 10000, "scan steps allowed per line, 0 for no limit")
	f.String("debug", "", "write debug logs to this file")

	_ = viper.BindPFlag("theme", f.Lookup("theme"))
	_ = viper.BindPFlag("grammar_dirs", f.Lookup("grammars"))
	_ = viper.BindPFlag("lang", f.Lookup("lang"))
	_ = viper.BindPFlag("context_lines", f.Lookup("context"))
	_ = viper.BindPFlag("color", f.Lookup("color"))
	_ = viper.BindPFlag("max_scan_steps", f.Lookup("max-scan-steps"))
	_ = viper.BindPFlag("debug", f.Lookup("debug"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyNegatedFlags turns the -N/-W/-B/-S switches off their settings.
func applyNegatedFlags(cmd *cobra.Command, c *Config) {
	for flag, field := range map[string]*bool{
		"no-line-numbers": &c.LineNumbers,
		"no-wrap":         &c.Wrap,
		"no-diff-bg":      &c.DiffBg,
		"no-syntax":       &c.Syntax,
	} {
		if v, _ := cmd.Flags().GetBool(flag); v {
			*field = false
		}
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return fmt.Errorf("reading config: %w", configErr)
	}
	out := cmd.OutOrStdout()
	if list, _ := cmd.Flags().GetBool("themes"); list {
		ListThemes(out)
		return nil
	}
	applyNegatedFlags(cmd, &cfg)

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg, err := newRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("loading grammars: %w", err)
	}
	th, err := loadTheme(cfg.Theme, theme.WithLogger(logger))
	if err != nil {
		return err
	}

	s := newState(cfg, NewHighlighter(reg, th, cfg.Lang, logger), logger)
	s.Staged, _ = cmd.Flags().GetBool("staged")
	diffMode, _ := cmd.Flags().GetBool("diff")
	if err := selectMode(s, args, diffMode || s.Staged, cmd.InOrStdin()); err != nil {
		return err
	}

	tokens, _ := cmd.Flags().GetBool("tokens")
	cat, _ := cmd.Flags().GetBool("cat")
	switch {
	case tokens:
		return runTokens(s, args, out)
	case cat:
		return runCat(s, args, out)
	default:
		return runTUI(s)
	}
}

func newState(c Config, hl *Highlighter, logger *zap.Logger) *State {
	return &State{
		ContextLines:    c.ContextLines,
		LineNumbers:     c.LineNumbers,
		Wrap:            c.Wrap,
		SyntaxHighlight: c.Syntax,
		DiffBg:          c.DiffBg,
		Theme:           NewUITheme(hl.Theme()),
		HL:              hl,
		SearchIdx:       -1,
		Logger:          logger,
	}
}

// selectMode decides between file and diff mode. Without file arguments a
// pipe is read; it is shown as a diff when it looks like one and no
// grammar was forced.
func selectMode(s *State, args []string, diffMode bool, stdin io.Reader) error {
	switch {
	case diffMode:
		s.Mode = ModeDiff
		s.Refs = args
	case len(args) > 0:
		s.Mode = ModeFile
		s.Path = args[0]
	case isPipe():
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		s.PipeMode, s.pipeData = true, data
		s.Mode = ModeFile
		if cfg.Lang == "" && looksLikeDiff(data) {
			s.Mode = ModeDiff
		}
	default:
		s.Mode = ModeDiff
	}
	s.WatchEnabled = !s.PipeMode
	return nil
}

func isPipe() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) == 0
}

// documents returns the documents named on the command line, or the piped
// input.
func documents(s *State, args []string) ([]*Document, error) {
	if s.PipeMode {
		return []*Document{newDocument("-", s.pipeData)}, nil
	}
	docs := make([]*Document, 0, len(args))
	for _, p := range args {
		doc, err := readDocument(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func runTokens(s *State, args []string, out io.Writer) error {
	if s.Mode == ModeDiff {
		return errors.New("--tokens needs files, not a diff")
	}
	docs, err := documents(s, args)
	if err != nil {
		return err
	}
	return writeSnapshot(out, s.HL, docs)
}

// runCat prints each file, or the diff, without opening the viewer.
func runCat(s *State, args []string, out io.Writer) error {
	s.Wrap = false
	r := newRenderer(out, cfg.Color)
	if s.Mode == ModeDiff || s.PipeMode {
		if err := loadContent(s); err != nil {
			return err
		}
		return writeANSI(out, r, s)
	}
	for _, p := range args {
		s.Path = p
		if err := loadContent(s); err != nil {
			return err
		}
		if len(args) > 1 {
			s.Lines = append([]DisplayLine{{Text: p, Style: StyleFileHeader, HunkIdx: -1}}, s.Lines...)
		}
		if err := writeANSI(out, r, s); err != nil {
			return err
		}
	}
	return nil
}

func runTUI(s *State) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	defer screen.Fini()

	s.Screen = screen
	s.Width, s.Height = screen.Size()
	if err := loadContent(s); err != nil {
		return err
	}
	Render(s)

	if !s.PipeMode {
		go watchAndUpdate(s, screen)
	}

	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if HandleKey(s, ev) {
				return nil
			}
		case *tcell.EventMouse:
			HandleMouse(s, ev)
		case *tcell.EventResize:
			s.Width, s.Height = ev.Size()
			s.BuildLines()
			s.ClampScroll()
			screen.Sync()
		case *EventReload:
			if !s.WatchEnabled {
				continue
			}
			reload(s)
		case nil:
			return nil
		}
		Render(s)
	}
}
