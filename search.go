package main

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// StartSearch enters search mode.
func StartSearch(s *State) {
	s.SearchMode = true
	s.SearchQuery = ""
	s.SearchMatches = nil
	s.SearchIdx = -1
}

// EndSearch exits search mode but keeps matches highlighted.
func EndSearch(s *State) {
	s.SearchMode = false
}

// ClearSearch clears search entirely.
func ClearSearch(s *State) {
	s.SearchMode = false
	s.SearchQuery = ""
	s.SearchMatches = nil
	s.SearchIdx = -1
}

// HandleSearchKey handles key input during search mode. It never quits.
func HandleSearchKey(s *State, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ClearSearch(s)
	case tcell.KeyEnter:
		UpdateMatches(s)
		if len(s.SearchMatches) > 0 {
			s.SearchIdx = s.firstMatchFrom(s.Scroll)
			s.ScrollTo(s.SearchMatches[s.SearchIdx])
		}
		EndSearch(s)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if q := []rune(s.SearchQuery); len(q) > 0 {
			s.SearchQuery = string(q[:len(q)-1])
			UpdateMatches(s)
		}
	case tcell.KeyRune:
		s.SearchQuery += string(ev.Rune())
		UpdateMatches(s)
	}
	return false
}

// firstMatchFrom returns the index of the first match at or below line,
// wrapping to the first match.
func (s *State) firstMatchFrom(line int) int {
	for i, m := range s.SearchMatches {
		if m >= line {
			return i
		}
	}
	return 0
}

// UpdateMatches scans s.Lines for SearchQuery matches (case-insensitive).
// Blank separator lines never match.
func UpdateMatches(s *State) {
	s.SearchMatches = nil
	s.SearchIdx = -1
	if s.SearchQuery == "" {
		return
	}
	query := strings.ToLower(s.SearchQuery)
	for i, line := range s.Lines {
		if line.Style != StyleNormal && strings.Contains(strings.ToLower(line.Text), query) {
			s.SearchMatches = append(s.SearchMatches, i)
		}
	}
}

// JumpToNextMatch scrolls to the next search match.
func JumpToNextMatch(s *State) {
	if len(s.SearchMatches) == 0 {
		return
	}
	s.SearchIdx++
	if s.SearchIdx >= len(s.SearchMatches) {
		s.SearchIdx = 0
	}
	s.ScrollTo(s.SearchMatches[s.SearchIdx])
}

// JumpToPrevMatch scrolls to the previous search match.
func JumpToPrevMatch(s *State) {
	if len(s.SearchMatches) == 0 {
		return
	}
	s.SearchIdx--
	if s.SearchIdx < 0 {
		s.SearchIdx = len(s.SearchMatches) - 1
	}
	s.ScrollTo(s.SearchMatches[s.SearchIdx])
}

// drawSearchBar draws the query input on the row above the status bar.
func drawSearchBar(s *State) {
	y := max(0, s.Height-2)
	screen := s.Screen
	col := drawText(screen, 0, y, "/"+s.SearchQuery, s.Theme.FileHeader, s.Width-1)
	if col < s.Width {
		screen.SetContent(col, y, ' ', nil, s.Theme.Default.Reverse(true))
		col++
	}
	clearToEnd(s, screen, col, y, s.Width)
}
