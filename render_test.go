package main

import (
	"strconv"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simScreen attaches a simulation screen of the state's size.
func simScreen(t *testing.T, s *State) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(s.Width, s.Height)
	s.Screen = screen
	if s.HL == nil {
		s.HL = testHighlighter(t, "")
		s.Theme = NewUITheme(s.HL.Theme())
	}
	return screen
}

func screenRow(screen tcell.SimulationScreen, y int) string {
	cells, w, _ := screen.GetContents()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		runes := cells[y*w+x].Runes
		if len(runes) == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(string(runes))
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestRenderFile(t *testing.T) {
	s := fileState("alpha", "beta")
	s.Width, s.Height = 60, 4
	screen := simScreen(t, s)

	Render(s)
	assert.Equal(t, "   1 alpha", screenRow(screen, 0))
	assert.Equal(t, "   2 beta", screenRow(screen, 1))
	assert.Empty(t, screenRow(screen, 2))
	assert.True(t, strings.HasPrefix(screenRow(screen, 3), " tmhl notes.txt • plain text • 2 lines • monokai"))
}

func TestRenderDiff(t *testing.T) {
	s := fakeDiffState(t)
	s.Width, s.Height = 60, 12
	s.ScrollTo(15)
	require.Equal(t, 15, s.Scroll)
	screen := simScreen(t, s)

	Render(s)
	assert.True(t, strings.HasPrefix(screenRow(screen, 0), "── docs/notes.txt ──"))
	assert.Equal(t, "     @@ -0,0 +1,4 @@", screenRow(screen, 1))
	assert.Equal(t, "   1 +First line of notes", screenRow(screen, 2))
	assert.Equal(t, "   1 -package old", screenRow(screen, 9))
}

func TestRenderHorizontalScroll(t *testing.T) {
	s := fileState("0123456789")
	s.Width, s.Height = 30, 3
	s.ScrollX = 4
	screen := simScreen(t, s)

	Render(s)
	assert.Equal(t, "   1 456789", screenRow(screen, 0))
}

func TestRenderSearchBar(t *testing.T) {
	s := fileState("a", "b", "c")
	s.Width, s.Height = 30, 5
	screen := simScreen(t, s)
	StartSearch(s)
	s.SearchQuery = "b"

	Render(s)
	assert.Equal(t, "/b", screenRow(screen, 3))
}

func TestRenderHelpOverlay(t *testing.T) {
	s := fileState("a")
	s.Width, s.Height = 80, 40
	s.ShowHelp = true
	screen := simScreen(t, s)

	Render(s)
	var found bool
	for y := 0; y < s.Height; y++ {
		if strings.Contains(screenRow(screen, y), "tmhl - keyboard shortcuts") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestStatusText(t *testing.T) {
	s := fakeDiffState(t)
	s.Theme.Name = "monokai"
	s.SyntaxHighlight = true
	assert.Equal(t, " tmhl unstaged • 3 files • 4 hunks • +8 -8 • monokai [watch off]", statusText(s))

	s.WatchEnabled = true
	s.SyntaxHighlight = false
	s.SearchQuery = "config"
	UpdateMatches(s)
	require.NotEmpty(t, s.SearchMatches)
	assert.True(t, strings.HasSuffix(statusText(s), "[plain] • \"config\" ["+
		strconv.Itoa(len(s.SearchMatches))+" matches]"))

	JumpToNextMatch(s)
	assert.True(t, strings.HasSuffix(statusText(s), "[1/"+strconv.Itoa(len(s.SearchMatches))+"]"))
}
