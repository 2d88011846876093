package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// HandleKey processes a key event, returns true if should quit
func HandleKey(s *State, ev *tcell.EventKey) bool {
	// Dismiss help overlay on any key
	if s.ShowHelp {
		s.ShowHelp = false
		return false
	}
	if s.SearchMode {
		return HandleSearchKey(s, ev)
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		if len(s.SearchMatches) > 0 {
			ClearSearch(s)
			return false
		}
		return true
	case tcell.KeyUp:
		s.ScrollBy(-1)
	case tcell.KeyDown:
		s.ScrollBy(1)
	case tcell.KeyLeft:
		if !s.Wrap {
			s.ScrollX = max(0, s.ScrollX-4)
		}
	case tcell.KeyRight:
		if !s.Wrap {
			s.ScrollX += 4
		}
	case tcell.KeyCtrlD:
		s.ScrollBy(s.Height / 2)
	case tcell.KeyCtrlU:
		s.ScrollBy(-s.Height / 2)
	case tcell.KeyRune:
		return handleRune(s, ev.Rune())
	}
	return false
}

func handleRune(s *State, r rune) bool {
	switch r {
	case 'q':
		return true
	case 'j':
		s.ScrollBy(1)
	case 'k':
		s.ScrollBy(-1)
	case 'd':
		s.ScrollBy(s.Height / 2)
	case 'u':
		s.ScrollBy(-s.Height / 2)
	case 'g':
		s.ScrollTo(0)
	case 'G':
		s.ScrollTo(s.MaxScroll())
	case ']':
		s.JumpToNextHunk()
	case '[':
		s.JumpToPrevHunk()
	case 'l':
		s.LineNumbers = !s.LineNumbers
		s.BuildLines()
		s.ClampScroll()
	case 'w':
		s.Wrap = !s.Wrap
		if s.Wrap {
			s.ScrollX = 0
		}
		s.BuildLines()
		s.ClampScroll()
	case 'h':
		s.SyntaxHighlight = !s.SyntaxHighlight
	case 'b':
		s.DiffBg = !s.DiffBg
	case 't':
		s.SwitchTheme()
	case '+', '=':
		if s.Mode == ModeDiff && !s.PipeMode {
			s.ContextLines++
			reload(s)
		}
	case '-':
		if s.Mode == ModeDiff && !s.PipeMode && s.ContextLines > 0 {
			s.ContextLines--
			reload(s)
		}
	case '/':
		StartSearch(s)
	case 'n':
		JumpToNextMatch(s)
	case 'N':
		JumpToPrevMatch(s)
	case 'y':
		if text, ok := s.CurrentLine(); ok {
			yank(s, text, "line")
		}
	case 'Y':
		if s.Mode == ModeDiff && len(s.Hunks) > 0 {
			yank(s, s.Hunks[s.CurrentHunkIndex()].AsPatch(), "hunk")
		}
	case 'o':
		if file := s.CurrentFile(); file != "" && !s.PipeMode {
			openInEditor(s, file, s.CurrentLineNo())
			reload(s)
		}
	case 'W':
		if !s.PipeMode {
			s.WatchEnabled = !s.WatchEnabled
			if s.WatchEnabled {
				s.flash(2*time.Second, "Watch mode enabled")
			} else {
				s.flash(2*time.Second, "Watch mode disabled")
			}
		}
	case '?':
		s.ShowHelp = true
	}
	return false
}

func yank(s *State, text, what string) {
	if err := copyToClipboard(text); err != nil {
		s.Logger.Warn("Error copying to clipboard", zap.Error(err))
		s.flash(2*time.Second, "Copy failed: %v", err)
		return
	}
	s.flash(2*time.Second, "Copied %s", what)
}

// HandleMouse scrolls on the wheel and copies the clicked line on a right
// click.
func HandleMouse(s *State, ev *tcell.EventMouse) {
	switch ev.Buttons() {
	case tcell.WheelUp:
		s.ScrollBy(-3)
	case tcell.WheelDown:
		s.ScrollBy(3)
	case tcell.WheelLeft:
		if !s.Wrap {
			s.ScrollX = max(0, s.ScrollX-4)
		}
	case tcell.WheelRight:
		if !s.Wrap {
			s.ScrollX += 4
		}
	case tcell.Button3:
		_, y := ev.Position()
		idx := s.Scroll + y
		if y < s.Height-1 && idx < len(s.Lines) && s.Lines[idx].Style.isContent() {
			yank(s, s.Lines[idx].Text, "line")
		}
	}
}
