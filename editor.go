package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// editorCommand returns the editor from $EDITOR or $VISUAL, falling back
// to vi, split into its program and arguments.
func editorCommand() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// editorArgs builds the argument list for opening path at lineNo. The
// +line form is understood by vim, nvim, nano, emacs and most others.
func editorArgs(cmd []string, path string, lineNo int) []string {
	args := append([]string(nil), cmd[1:]...)
	if lineNo > 0 {
		args = append(args, fmt.Sprintf("+%d", lineNo))
	}
	return append(args, path)
}

// openInEditor suspends the TUI, runs the editor on file and resumes.
func openInEditor(s *State, file string, lineNo int) {
	path := file
	if s.Mode == ModeDiff && !filepath.IsAbs(path) {
		if root, err := gitRoot(); err == nil {
			path = filepath.Join(root, file)
		}
	}
	if _, err := os.Stat(path); err != nil {
		s.flash(2*time.Second, "File not found: %s", file)
		return
	}

	editor := editorCommand()
	s.Screen.Fini()

	cmd := exec.Command(editor[0], editorArgs(editor, path, lineNo)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		s.Logger.Warn("Error running editor", zap.String("editor", editor[0]), zap.Error(err))
		s.flash(3*time.Second, "Editor error: %v", err)
	}

	if err := s.Screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: failed to reinitialize screen: %v\n", err)
		os.Exit(1)
	}
	s.Screen.Sync()
}

// gitRoot returns the top-level directory of the current git repository.
func gitRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\n"), nil
}
