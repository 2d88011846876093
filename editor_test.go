package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		name           string
		editor, visual string
		want           []string
	}{
		{"editor", "nvim", "code", []string{"nvim"}},
		{"editor with args", "emacs -nw", "", []string{"emacs", "-nw"}},
		{"visual", "", "hx", []string{"hx"}},
		{"blank editor", "  ", "nano", []string{"nano"}},
		{"fallback", "", "", []string{"vi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("EDITOR", tt.editor)
			t.Setenv("VISUAL", tt.visual)
			assert.Equal(t, tt.want, editorCommand())
		})
	}
}

func TestEditorArgs(t *testing.T) {
	assert.Equal(t, []string{"+12", "a.json"}, editorArgs([]string{"vim"}, "a.json", 12))
	assert.Equal(t, []string{"-nw", "+3", "/tmp/x"}, editorArgs([]string{"emacs", "-nw"}, "/tmp/x", 3))
	assert.Equal(t, []string{"a.json"}, editorArgs([]string{"vim"}, "a.json", 0))

	cmd := []string{"code", "--wait"}
	editorArgs(cmd, "f", 1)
	assert.Equal(t, []string{"code", "--wait"}, cmd)
}
