package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"go.uber.org/zap"

	"github.com/h0rv/tmhl/grammar"
)

// Mode selects what the viewer shows.
type Mode int

const (
	ModeFile Mode = iota
	ModeDiff
)

// Document is a source file split into lines.
type Document struct {
	Name  string
	Scope string
	Lines []string
	Spans [][]StyledSpan
}

// State holds the application state
type State struct {
	Mode     Mode
	Path     string // file shown in ModeFile
	Doc      *Document
	PipeMode bool
	pipeData []byte

	Refs         []string
	Staged       bool
	ContextLines int
	Hunks        []Hunk

	Scroll      int
	ScrollX     int
	Height      int
	Width       int
	Screen      tcell.Screen
	Lines       []DisplayLine
	LineNumbers bool
	Wrap        bool

	Theme           UITheme
	SyntaxHighlight bool
	HL              *Highlighter
	DiffBg          bool

	SearchMode    bool   // true when typing a search query
	SearchQuery   string // current search text
	SearchMatches []int  // line indices that match
	SearchIdx     int    // current match index (-1 if none)

	WatchEnabled bool
	ShowHelp     bool
	FlashMsg     string
	FlashExpiry  time.Time

	Logger *zap.Logger
}

// DisplayLine is one screen row.
type DisplayLine struct {
	Text  string
	Style LineStyle
	// Op is the diff operation of a hunk line, 0 in file mode.
	Op           rune
	Spans        []StyledSpan
	HunkIdx      int // -1 if not a hunk line
	OldLineNo    int // 0 = none
	NewLineNo    int // 0 = none
	Continuation bool
}

type LineStyle int

const (
	StyleNormal LineStyle = iota
	StyleFileHeader
	StyleHunkHeader
	StyleAdded
	StyleRemoved
	StyleContext
)

func (ls LineStyle) isContent() bool {
	return ls == StyleAdded || ls == StyleRemoved || ls == StyleContext
}

// flash shows msg in the status bar for d.
func (s *State) flash(d time.Duration, format string, args ...any) {
	s.FlashMsg = fmt.Sprintf(format, args...)
	s.FlashExpiry = time.Now().Add(d)
}

// newDocument splits data into a document named name.
func newDocument(name string, data []byte) *Document {
	return &Document{Name: name, Lines: grammar.SplitLines(string(data))}
}

func readDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newDocument(path, data), nil
}

// loadContent reads the file or diff for the current mode, highlights it
// and rebuilds the display lines.
func loadContent(s *State) error {
	switch s.Mode {
	case ModeDiff:
		raw := s.pipeData
		if !s.PipeMode {
			var err error
			if raw, err = runGitDiff(s.Refs, s.ContextLines, s.Staged); err != nil {
				return err
			}
		}
		hunks, err := parseDiff(raw)
		if err != nil {
			return err
		}
		for i := range hunks {
			hunks[i].Spans = s.HL.HighlightHunk(&hunks[i])
		}
		s.Hunks = hunks
	default:
		var doc *Document
		if s.PipeMode {
			doc = newDocument("-", s.pipeData)
		} else {
			var err error
			if doc, err = readDocument(s.Path); err != nil {
				return err
			}
		}
		first := ""
		if len(doc.Lines) > 0 {
			first = doc.Lines[0]
		}
		doc.Scope = s.HL.ScopeFor(doc.Name, first)
		doc.Spans = s.HL.HighlightLines(doc.Name, doc.Lines)
		s.Doc = doc
	}
	s.BuildLines()
	s.ClampScroll()
	return nil
}

// reload reloads content after a change on disk, keeping the scroll
// position where it still exists.
func reload(s *State) {
	prevFile := s.CurrentFile()
	prevScroll := s.Scroll
	if err := loadContent(s); err != nil {
		s.Logger.Error("Error reloading", zap.String("path", s.Path), zap.Error(err))
		s.flash(3*time.Second, "Reload failed: %v", err)
		return
	}
	s.Scroll = prevScroll
	if s.Mode == ModeDiff && prevFile != "" && s.CurrentFile() != prevFile {
		for i, line := range s.Lines {
			if line.Style == StyleFileHeader && line.Text == prevFile {
				s.Scroll = i
				break
			}
		}
	}
	s.ClampScroll()
}

// lineNoWidth returns the width of the line number column, including the
// trailing space.
func (s *State) lineNoWidth() int {
	maxNo := 0
	switch s.Mode {
	case ModeDiff:
		for _, h := range s.Hunks {
			maxNo = max(maxNo, h.OldStart+len(h.Lines), h.NewStart+len(h.Lines))
		}
	default:
		if s.Doc != nil {
			maxNo = len(s.Doc.Lines)
		}
	}
	return max(4, len(fmt.Sprint(maxNo))) + 1
}

// opWidth is the width of the +/- column.
func (s *State) opWidth() int {
	if s.Mode == ModeDiff {
		return 1
	}
	return 0
}

// textWidth returns the available display width for line content.
func (s *State) textWidth() int {
	w := s.Width - s.opWidth()
	if s.LineNumbers {
		w -= s.lineNoWidth()
	}
	if w < 1 {
		w = 1
	}
	return w
}

// BuildLines creates display lines from the document or hunks.
func (s *State) BuildLines() {
	for i := range s.Hunks {
		s.Hunks[i].StartLine = -1
	}
	if s.Mode == ModeDiff {
		s.buildDiffLines()
	} else {
		s.buildFileLines()
	}
	if s.Wrap {
		s.wrapLines()
	}
	// Refresh search matches since line indices changed
	if s.SearchQuery != "" {
		UpdateMatches(s)
	}
}

func (s *State) buildFileLines() {
	if s.Doc == nil {
		s.Lines = nil
		return
	}
	lines := make([]DisplayLine, 0, len(s.Doc.Lines))
	for i, text := range s.Doc.Lines {
		var spans []StyledSpan
		if i < len(s.Doc.Spans) {
			spans = s.Doc.Spans[i]
		}
		lines = append(lines, DisplayLine{
			Text:      text,
			Style:     StyleContext,
			Spans:     spans,
			HunkIdx:   -1,
			NewLineNo: i + 1,
		})
	}
	s.Lines = lines
}

func (s *State) buildDiffLines() {
	var lines []DisplayLine
	var currentFile string

	for i := range s.Hunks {
		h := &s.Hunks[i]

		if h.File != currentFile {
			if currentFile != "" {
				lines = append(lines, DisplayLine{Style: StyleNormal, HunkIdx: -1})
			}
			lines = append(lines, DisplayLine{Text: h.File, Style: StyleFileHeader, HunkIdx: -1})
			currentFile = h.File
		}

		h.StartLine = len(lines)
		lines = append(lines, DisplayLine{Text: h.Header, Style: StyleHunkHeader, HunkIdx: i})

		oldNo, newNo := h.OldStart, h.NewStart
		for j, dl := range h.Lines {
			line := DisplayLine{Text: dl.Content, Op: dl.Op, HunkIdx: i}
			if j < len(h.Spans) {
				line.Spans = h.Spans[j]
			}
			switch dl.Op {
			case '+':
				line.Style = StyleAdded
				line.NewLineNo = newNo
				newNo++
			case '-':
				line.Style = StyleRemoved
				line.OldLineNo = oldNo
				oldNo++
			default:
				line.Style = StyleContext
				line.OldLineNo, line.NewLineNo = oldNo, newNo
				oldNo++
				newNo++
			}
			lines = append(lines, line)
		}
	}
	s.Lines = lines
}

// wrapLines splits content lines wider than the text width into
// continuation lines, cutting spans at grapheme boundaries.
func (s *State) wrapLines() {
	tw := s.textWidth()
	var wrapped []DisplayLine
	for _, line := range s.Lines {
		if !line.Style.isContent() || uniseg.StringWidth(line.Text) <= tw {
			wrapped = append(wrapped, line)
			continue
		}
		for k, row := range splitSpans(lineSpans(line), tw) {
			part := DisplayLine{
				Text:    spansText(row),
				Style:   line.Style,
				Spans:   row,
				HunkIdx: line.HunkIdx,
			}
			if k == 0 {
				part.Op = line.Op
				part.OldLineNo, part.NewLineNo = line.OldLineNo, line.NewLineNo
			} else {
				part.Continuation = true
			}
			wrapped = append(wrapped, part)
		}
	}
	s.Lines = wrapped
	for i, line := range s.Lines {
		if line.Style == StyleHunkHeader && line.HunkIdx >= 0 {
			s.Hunks[line.HunkIdx].StartLine = i
		}
	}
}

// lineSpans returns the spans of a line, or the whole text as one span when
// it was not highlighted.
func lineSpans(line DisplayLine) []StyledSpan {
	if len(line.Spans) > 0 {
		return line.Spans
	}
	return plainSpans(line.Text)
}

func spansText(spans []StyledSpan) string {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// splitSpans cuts spans into rows at most width cells wide. A single
// grapheme wider than width gets a row of its own.
func splitSpans(spans []StyledSpan, width int) [][]StyledSpan {
	var rows [][]StyledSpan
	var row []StyledSpan
	w := 0
	for _, sp := range spans {
		rest := sp.Text
		state := -1
		for rest != "" {
			var sb strings.Builder
			for rest != "" {
				cluster, next, cw, newState := uniseg.FirstGraphemeClusterInString(rest, state)
				if w > 0 && w+cw > width {
					break
				}
				sb.WriteString(cluster)
				w += cw
				rest, state = next, newState
			}
			if sb.Len() > 0 {
				row = append(row, StyledSpan{Text: sb.String(), Scopes: sp.Scopes})
			}
			if rest != "" {
				rows = append(rows, row)
				row, w = nil, 0
			}
		}
	}
	return append(rows, row)
}

// dropColumns removes the first n cells of spans for horizontal scrolling.
func dropColumns(spans []StyledSpan, n int) []StyledSpan {
	if n <= 0 {
		return spans
	}
	var out []StyledSpan
	for _, sp := range spans {
		if n <= 0 {
			out = append(out, sp)
			continue
		}
		rest := sp.Text
		state := -1
		for rest != "" && n > 0 {
			_, next, cw, newState := uniseg.FirstGraphemeClusterInString(rest, state)
			n -= cw
			rest, state = next, newState
		}
		if rest != "" {
			out = append(out, StyledSpan{Text: rest, Scopes: sp.Scopes})
		}
	}
	return out
}

// ClampScroll ensures scroll position is within valid bounds
func (s *State) ClampScroll() {
	if s.Scroll < 0 {
		s.Scroll = 0
	}
	if m := s.MaxScroll(); s.Scroll > m {
		s.Scroll = m
	}
}

// MaxScroll returns the maximum valid scroll position
func (s *State) MaxScroll() int {
	visible := s.Height - 1
	if len(s.Lines) <= visible {
		return 0
	}
	return len(s.Lines) - visible
}

// ScrollBy adjusts scroll by delta and clamps
func (s *State) ScrollBy(delta int) {
	s.Scroll += delta
	s.ClampScroll()
}

// ScrollTo sets absolute scroll position and clamps
func (s *State) ScrollTo(pos int) {
	s.Scroll = pos
	s.ClampScroll()
}

// CurrentFile returns the file at the current scroll position.
func (s *State) CurrentFile() string {
	if s.Mode == ModeFile {
		return s.Path
	}
	for i := min(s.Scroll, len(s.Lines)-1); i >= 0; i-- {
		if s.Lines[i].Style == StyleFileHeader {
			return s.Lines[i].Text
		}
	}
	if len(s.Hunks) > 0 {
		return s.Hunks[s.CurrentHunkIndex()].File
	}
	return ""
}

// CurrentLineNo returns the new-side line number near the top of the
// screen, for opening an editor at the right line.
func (s *State) CurrentLineNo() int {
	for i := s.Scroll; i < len(s.Lines) && i < s.Scroll+5; i++ {
		if s.Lines[i].NewLineNo > 0 {
			return s.Lines[i].NewLineNo
		}
	}
	if idx := s.CurrentHunkIndex(); idx < len(s.Hunks) {
		return s.Hunks[idx].NewStart
	}
	return 1
}

// CurrentLine returns the text of the first content line on screen,
// following continuation lines back to where they start.
func (s *State) CurrentLine() (string, bool) {
	for i := s.Scroll; i < len(s.Lines); i++ {
		if !s.Lines[i].Style.isContent() {
			continue
		}
		start := i
		for start > 0 && s.Lines[start].Continuation {
			start--
		}
		text := s.Lines[start].Text
		for j := start + 1; j < len(s.Lines) && s.Lines[j].Continuation; j++ {
			text += s.Lines[j].Text
		}
		return text, true
	}
	return "", false
}

// CurrentHunkIndex returns the index of the hunk at current scroll position.
func (s *State) CurrentHunkIndex() int {
	for i := len(s.Hunks) - 1; i >= 0; i-- {
		if s.Hunks[i].StartLine >= 0 && s.Hunks[i].StartLine <= s.Scroll {
			return i
		}
	}
	return 0
}

// JumpToNextHunk navigates to the next hunk
func (s *State) JumpToNextHunk() {
	if len(s.Hunks) == 0 {
		return
	}
	idx := s.CurrentHunkIndex()
	if s.Hunks[idx].StartLine > s.Scroll {
		s.ScrollTo(s.Hunks[idx].StartLine)
		return
	}
	if idx+1 < len(s.Hunks) {
		s.ScrollTo(s.Hunks[idx+1].StartLine)
	}
}

// JumpToPrevHunk navigates to the previous hunk
func (s *State) JumpToPrevHunk() {
	if len(s.Hunks) == 0 {
		return
	}
	idx := s.CurrentHunkIndex()
	if s.Hunks[idx].StartLine < s.Scroll || idx == 0 {
		s.ScrollTo(s.Hunks[idx].StartLine)
		return
	}
	s.ScrollTo(s.Hunks[idx-1].StartLine)
}

// UniqueFiles returns the count of unique files in the diff
func (s *State) UniqueFiles() int {
	seen := make(map[string]struct{})
	for _, h := range s.Hunks {
		seen[h.File] = struct{}{}
	}
	return len(seen)
}

// DiffStats returns the number of added and removed lines.
func (s *State) DiffStats() (int, int) {
	var added, removed int
	for _, h := range s.Hunks {
		for _, l := range h.Lines {
			switch l.Op {
			case '+':
				added++
			case '-':
				removed++
			}
		}
	}
	return added, removed
}

// RefDisplay returns a display-friendly version of the ref
func (s *State) RefDisplay() string {
	if s.PipeMode {
		return "(pipe)"
	}
	if s.Staged {
		if len(s.Refs) > 0 {
			return strings.Join(s.Refs, "..") + " (staged)"
		}
		return "staged"
	}
	if len(s.Refs) == 0 {
		return "unstaged"
	}
	return strings.Join(s.Refs, "..")
}

// SwitchTheme makes the next built-in theme active.
func (s *State) SwitchTheme() {
	th := nextBuiltinTheme(s.Theme.Name)
	if th == nil {
		return
	}
	s.HL.SetTheme(th)
	s.Theme = NewUITheme(th)
	s.flash(2*time.Second, "Theme: %s", th.Name)
}
