package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/h0rv/tmhl/theme"
)

// newRenderer returns a lipgloss renderer for w. color is "always",
// "never" or "auto"; auto detects the profile from w.
func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch color {
	case "always":
		r.SetColorProfile(termenv.TrueColor)
	case "never":
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func lipglossColor(c, bg theme.Color) lipgloss.Color {
	return lipgloss.Color(flatten(c, bg).Hex())
}

// catStyle converts a resolved token style for lipgloss. The background is
// set only when it differs from the theme's.
func catStyle(r *lipgloss.Renderer, t UITheme, rs theme.ResolvedStyle) lipgloss.Style {
	st := r.NewStyle().
		Foreground(lipglossColor(rs.Foreground, t.Background)).
		Bold(rs.FontStyle.Has(theme.Bold)).
		Italic(rs.FontStyle.Has(theme.Italic)).
		Underline(rs.FontStyle.Has(theme.Underline)).
		Strikethrough(rs.FontStyle.Has(theme.Strikethrough))
	if rs.Background != t.Background {
		st = st.Background(lipglossColor(rs.Background, t.Background))
	}
	return st
}

// catLine renders one display line with ANSI styles.
func catLine(r *lipgloss.Renderer, s *State, line DisplayLine) string {
	t := s.Theme
	muted := r.NewStyle().Foreground(lipglossColor(t.Muted, t.Background))
	switch line.Style {
	case StyleNormal:
		return ""
	case StyleFileHeader:
		return muted.Render("── ") + r.NewStyle().Bold(true).Render(line.Text) + muted.Render(" ──")
	case StyleHunkHeader:
		return muted.Render(line.Text)
	}

	var sb strings.Builder
	if s.LineNumbers {
		num := line.NewLineNo
		if line.Style == StyleRemoved {
			num = line.OldLineNo
		}
		str := strings.Repeat(" ", s.lineNoWidth())
		if num > 0 {
			str = fmt.Sprintf("%*d ", s.lineNoWidth()-1, num)
		}
		sb.WriteString(r.NewStyle().Foreground(lipglossColor(t.LineNoFg, t.Background)).Render(str))
	}

	var tint *theme.Color
	if s.Mode == ModeDiff {
		op, color := " ", t.Foreground
		switch line.Style {
		case StyleAdded:
			op, color = "+", t.Added
			if s.DiffBg {
				tint = &t.TintAdded
			}
		case StyleRemoved:
			op, color = "-", t.Removed
			if s.DiffBg {
				tint = &t.TintRemoved
			}
		}
		st := r.NewStyle().Foreground(lipglossColor(color, t.Background))
		if tint != nil {
			st = st.Background(lipglossColor(*tint, t.Background))
		}
		sb.WriteString(st.Render(op))
	}

	for _, sp := range lineSpans(line) {
		var st lipgloss.Style
		if s.SyntaxHighlight {
			st = catStyle(r, t, s.HL.Style(sp))
		} else {
			st = r.NewStyle()
		}
		if tint != nil {
			st = st.Background(lipglossColor(*tint, t.Background))
		}
		sb.WriteString(st.Render(sp.Text))
	}
	return sb.String()
}

// writeANSI prints every display line of s.
func writeANSI(w io.Writer, r *lipgloss.Renderer, s *State) error {
	bw := bufio.NewWriter(w)
	for _, line := range s.Lines {
		if _, err := bw.WriteString(catLine(r, s, line) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
