package main

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Hunk is one fragment of a diff, highlighted with the grammar of its file.
type Hunk struct {
	File     string
	Header   string // raw @@ header, also used by AsPatch
	Comment  string // function context from the header
	OldStart int
	NewStart int
	Lines    []Line
	// Spans holds the syntax spans of each line in Lines.
	Spans     [][]StyledSpan
	StartLine int
}

// Line is a single line of a hunk.
type Line struct {
	Op      rune // '+', '-', ' '
	Content string
}

// OldSide returns the lines of the hunk as they read before the change.
func (h *Hunk) OldSide() []string {
	return h.side('-')
}

// NewSide returns the lines of the hunk as they read after the change.
func (h *Hunk) NewSide() []string {
	return h.side('+')
}

func (h *Hunk) side(op rune) []string {
	var lines []string
	for _, l := range h.Lines {
		if l.Op == op || l.Op == ' ' {
			lines = append(lines, l.Content)
		}
	}
	return lines
}

// AsPatch formats the hunk as a unified diff fragment.
func (h *Hunk) AsPatch() string {
	var sb strings.Builder
	sb.WriteString(h.Header)
	sb.WriteByte('\n')
	for _, l := range h.Lines {
		sb.WriteRune(l.Op)
		sb.WriteString(l.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// looksLikeDiff reports whether piped input is a unified diff rather than
// a source file.
func looksLikeDiff(data []byte) bool {
	for _, prefix := range []string{"diff --git ", "--- ", "@@ "} {
		if bytes.HasPrefix(data, []byte(prefix)) || bytes.Contains(data, []byte("\n"+prefix)) {
			return true
		}
	}
	return false
}

func runGitDiff(refs []string, contextLines int, staged bool) ([]byte, error) {
	args := []string{"diff", "--no-color", fmt.Sprintf("-U%d", contextLines)}
	if staged {
		args = append(args, "--staged")
	}
	args = append(args, refs...)

	out, err := exec.Command("git", args...).Output()
	if err != nil {
		// git diff exits non-zero in some configurations even when it
		// produced a diff.
		if _, ok := err.(*exec.ExitError); !ok {
			return nil, fmt.Errorf("running git diff: %w", err)
		}
	}
	return out, nil
}

func parseDiff(data []byte) ([]Hunk, error) {
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var hunks []Hunk
	for _, file := range files {
		filename := file.NewName
		if filename == "" || filename == "/dev/null" {
			filename = file.OldName
		}
		for _, frag := range file.TextFragments {
			hunks = append(hunks, Hunk{
				File:      filename,
				Header:    formatHeader(frag),
				Comment:   strings.TrimSpace(frag.Comment),
				OldStart:  int(frag.OldPosition),
				NewStart:  int(frag.NewPosition),
				Lines:     parseLines(frag),
				StartLine: -1,
			})
		}
	}
	return hunks, nil
}

func formatHeader(frag *gitdiff.TextFragment) string {
	comment := ""
	if frag.Comment != "" {
		comment = " " + frag.Comment
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@%s",
		frag.OldPosition, frag.OldLines,
		frag.NewPosition, frag.NewLines,
		comment)
}

func parseLines(frag *gitdiff.TextFragment) []Line {
	lines := make([]Line, 0, len(frag.Lines))
	for _, l := range frag.Lines {
		op := ' '
		switch l.Op {
		case gitdiff.OpAdd:
			op = '+'
		case gitdiff.OpDelete:
			op = '-'
		}
		lines = append(lines, Line{Op: op, Content: strings.TrimRight(l.Line, "\r\n")})
	}
	return lines
}
