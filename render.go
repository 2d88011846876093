package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Render draws the screen
func Render(s *State) {
	screen := s.Screen
	screen.Clear()

	visible := s.Height - 1
	if s.SearchMode {
		visible-- // search bar sits above the status bar
	}
	for i := 0; i < visible; i++ {
		if s.Scroll+i >= len(s.Lines) {
			clearToEnd(s, screen, 0, i, s.Width)
			continue
		}
		drawLine(s, i, s.Lines[s.Scroll+i], s.Scroll+i)
	}

	if s.SearchMode {
		drawSearchBar(s)
	}
	drawStatusBar(s)
	if s.ShowHelp {
		drawHelpOverlay(s)
	}
	screen.Show()
}

// drawText draws text cluster by cluster starting at col and returns the
// column after it.
func drawText(screen tcell.Screen, col, y int, text string, style tcell.Style, maxCol int) int {
	state := -1
	for text != "" {
		cluster, rest, w, newState := uniseg.FirstGraphemeClusterInString(text, state)
		text, state = rest, newState
		if w == 0 {
			continue
		}
		if col+w > maxCol {
			break
		}
		runes := []rune(cluster)
		screen.SetContent(col, y, runes[0], runes[1:], style)
		col += w
	}
	return col
}

// drawFileHeader renders ── filename ────────────
func drawFileHeader(s *State, screen tcell.Screen, y int, text string) {
	col := drawText(screen, 0, y, "── ", s.Theme.Dim, s.Width)
	col = drawText(screen, col, y, text, s.Theme.FileHeader, s.Width-1)
	col = drawText(screen, col, y, " ", s.Theme.Dim, s.Width)
	for col < s.Width {
		screen.SetContent(col, y, '─', nil, s.Theme.Dim)
		col++
	}
}

// drawLineNo draws a right-aligned line number, or blanks for 0.
func drawLineNo(s *State, screen tcell.Screen, col, y, num int) int {
	w := s.lineNoWidth()
	str := strings.Repeat(" ", w)
	if num > 0 {
		str = fmt.Sprintf("%*d ", w-1, num)
	}
	return drawText(screen, col, y, str, s.Theme.LineNo, col+w)
}

// clearToEnd fills the rest of the line with spaces
func clearToEnd(s *State, screen tcell.Screen, col, y, width int) {
	fillToEnd(screen, col, y, width, s.Theme.Default)
}

func fillToEnd(screen tcell.Screen, col, y, width int, style tcell.Style) {
	for col < width {
		screen.SetContent(col, y, ' ', nil, style)
		col++
	}
}

// diffStyle returns the chrome style of a line.
func diffStyle(s *State, ls LineStyle) tcell.Style {
	switch ls {
	case StyleFileHeader:
		return s.Theme.FileHeader
	case StyleHunkHeader:
		return s.Theme.HunkHeader
	case StyleAdded:
		return s.Theme.DiffAdded
	case StyleRemoved:
		return s.Theme.DiffRemoved
	default:
		return s.Theme.Default
	}
}

// applyDiffBg adds the background tint of added and removed lines.
func applyDiffBg(s *State, style tcell.Style, ls LineStyle) tcell.Style {
	if !s.DiffBg || s.Mode != ModeDiff {
		return style
	}
	switch ls {
	case StyleAdded:
		return style.Background(s.Theme.BgAdded)
	case StyleRemoved:
		return style.Background(s.Theme.BgRemoved)
	default:
		return style
	}
}

// searchHighlightStyle returns the style of a search match.
func searchHighlightStyle(s *State, base tcell.Style, isCurrent bool) tcell.Style {
	if isCurrent {
		return s.Theme.SearchCur
	}
	return base.Reverse(true)
}

// isCurrentMatchLine returns true if lineIdx is the line of the current search match.
func isCurrentMatchLine(s *State, lineIdx int) bool {
	if s.SearchIdx < 0 || s.SearchIdx >= len(s.SearchMatches) {
		return false
	}
	return s.SearchMatches[s.SearchIdx] == lineIdx
}

// buildSearchMask marks the bytes of text that are part of a
// case-insensitive match of the search query.
func buildSearchMask(s *State, text string) []bool {
	if s.SearchQuery == "" || len(s.SearchMatches) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	query := strings.ToLower(s.SearchQuery)
	if len(lower) != len(text) {
		// Case folding changed byte lengths; offsets would not line up.
		return nil
	}
	mask := make([]bool, len(text))
	for i := 0; i+len(query) <= len(lower); {
		j := strings.Index(lower[i:], query)
		if j < 0 {
			break
		}
		for k := i + j; k < i+j+len(query); k++ {
			mask[k] = true
		}
		i += j + max(1, len(query))
	}
	return mask
}

func drawLine(s *State, y int, line DisplayLine, lineIdx int) {
	screen := s.Screen
	switch line.Style {
	case StyleFileHeader:
		drawFileHeader(s, screen, y, line.Text)
		return
	case StyleNormal:
		clearToEnd(s, screen, 0, y, s.Width)
		return
	case StyleHunkHeader:
		col := 0
		if s.LineNumbers {
			col = drawLineNo(s, screen, col, y, 0)
		}
		col = drawText(screen, col, y, line.Text, s.Theme.HunkHeader, s.Width)
		clearToEnd(s, screen, col, y, s.Width)
		return
	}

	col := 0
	if s.LineNumbers {
		num := line.NewLineNo
		if line.Style == StyleRemoved {
			num = line.OldLineNo
		}
		col = drawLineNo(s, screen, col, y, num)
	}
	base := applyDiffBg(s, s.Theme.Default, line.Style)
	if s.Mode == ModeDiff {
		op := ' '
		if line.Op != 0 && !line.Continuation && line.Op != ' ' {
			op = line.Op
		}
		screen.SetContent(col, y, op, nil, applyDiffBg(s, diffStyle(s, line.Style), line.Style))
		col++
	}

	spans := lineSpans(line)
	scrollX := 0
	if !s.Wrap {
		scrollX = s.ScrollX
		spans = dropColumns(spans, scrollX)
	}
	col = drawSpans(s, screen, col, y, line, spans, base, lineIdx, scrollX > 0)
	fillToEnd(screen, col, y, s.Width, base)
}

// drawSpans draws the syntax spans of a content line, overlaying search
// matches. With syntax off, the diff style colors the whole line.
func drawSpans(s *State, screen tcell.Screen, col, y int, line DisplayLine, spans []StyledSpan, base tcell.Style, lineIdx int, scrolled bool) int {
	var mask []bool
	if !scrolled {
		mask = buildSearchMask(s, line.Text)
	}
	isCurrent := isCurrentMatchLine(s, lineIdx)
	dimmed := line.Style == StyleRemoved && !s.DiffBg

	pos := 0
	for _, sp := range spans {
		style := applyDiffBg(s, diffStyle(s, line.Style), line.Style)
		if s.SyntaxHighlight {
			style = s.Theme.spanStyle(base, s.HL.Style(sp))
			if dimmed {
				style = style.Dim(true)
			}
		}
		text, state := sp.Text, -1
		for text != "" {
			cluster, rest, w, newState := uniseg.FirstGraphemeClusterInString(text, state)
			text, state = rest, newState
			drawStyle := style
			if pos < len(mask) && mask[pos] {
				drawStyle = searchHighlightStyle(s, style, isCurrent)
			}
			pos += len(cluster)
			if w == 0 {
				continue
			}
			if col+w > s.Width {
				return col
			}
			runes := []rune(cluster)
			screen.SetContent(col, y, runes[0], runes[1:], drawStyle)
			col += w
		}
	}
	return col
}

func statusText(s *State) string {
	var status string
	switch s.Mode {
	case ModeDiff:
		added, removed := s.DiffStats()
		status = fmt.Sprintf(" tmhl %s • %d files • %d hunks • +%d -%d",
			s.RefDisplay(), s.UniqueFiles(), len(s.Hunks), added, removed)
	default:
		name, scope, n := s.Path, "plain text", 0
		if s.Doc != nil {
			name, n = s.Doc.Name, len(s.Doc.Lines)
			if s.Doc.Scope != "" {
				scope = s.Doc.Scope
			}
		}
		status = fmt.Sprintf(" tmhl %s • %s • %d lines", filepath.Base(name), scope, n)
	}
	status += " • " + s.Theme.Name

	if !s.PipeMode && !s.WatchEnabled {
		status += " [watch off]"
	}
	if !s.SyntaxHighlight {
		status += " [plain]"
	}
	if len(s.SearchMatches) > 0 && s.SearchQuery != "" {
		if s.SearchIdx >= 0 && s.SearchIdx < len(s.SearchMatches) {
			status += fmt.Sprintf(" • \"%s\" [%d/%d]", s.SearchQuery, s.SearchIdx+1, len(s.SearchMatches))
		} else {
			status += fmt.Sprintf(" • \"%s\" [%d matches]", s.SearchQuery, len(s.SearchMatches))
		}
	}
	return status
}

func drawStatusBar(s *State) {
	y := s.Height - 1
	if s.FlashMsg != "" && time.Now().Before(s.FlashExpiry) {
		col := drawText(s.Screen, 0, y, " "+s.FlashMsg+" ", s.Theme.Flash, s.Width)
		fillToEnd(s.Screen, col, y, s.Width, s.Theme.Flash)
		return
	}
	s.FlashMsg = ""

	status := statusText(s)
	help := "(/)search (l)ines (w)rap (h)l (t)heme (?)help (q)uit"
	if pad := s.Width - uniseg.StringWidth(status) - len(help) - 1; pad > 0 {
		status += strings.Repeat(" ", pad) + help
	}
	col := drawText(s.Screen, 0, y, status, s.Theme.StatusBar, s.Width)
	fillToEnd(s.Screen, col, y, s.Width, s.Theme.StatusBar)
}

func drawHelpOverlay(s *State) {
	lines := helpLines()
	boxW := 4
	for _, l := range lines {
		boxW = max(boxW, uniseg.StringWidth(l)+4)
	}
	boxH := len(lines) + 6

	screen := s.Screen
	border := s.Theme.Dim
	body := s.Theme.Default
	x0 := max(0, (s.Width-boxW)/2)
	y0 := max(0, (s.Height-boxH)/2)
	right, bottom := min(x0+boxW, s.Width), min(y0+boxH, s.Height)

	for row := y0; row < bottom; row++ {
		fillToEnd(screen, x0, row, right, body)
		screen.SetContent(x0, row, '│', nil, border)
		screen.SetContent(right-1, row, '│', nil, border)
	}
	for col := x0; col < right; col++ {
		screen.SetContent(col, y0, '─', nil, border)
		screen.SetContent(col, bottom-1, '─', nil, border)
	}
	screen.SetContent(x0, y0, '┌', nil, border)
	screen.SetContent(right-1, y0, '┐', nil, border)
	screen.SetContent(x0, bottom-1, '└', nil, border)
	screen.SetContent(right-1, bottom-1, '┘', nil, border)

	title := "tmhl - keyboard shortcuts"
	drawText(screen, x0+(boxW-len(title))/2, y0+1, title, body.Bold(true), right-1)
	for i, l := range lines {
		if y0+3+i >= bottom-1 {
			break
		}
		drawText(screen, x0+2, y0+3+i, l, body, right-2)
	}
	hint := "press any key to close"
	drawText(screen, x0+(boxW-len(hint))/2, bottom-2, hint, border, right-1)
}
