package main

import "fmt"

// KeyBinding documents one key of the viewer.
type KeyBinding struct {
	Keys  string
	Name  string
	Group string
	// DiffOnly bindings do nothing in file mode.
	DiffOnly bool
}

// keyBindings lists every binding in help order. HandleKey implements them.
var keyBindings = []KeyBinding{
	{Keys: "j/k", Name: "scroll down/up", Group: "Navigation"},
	{Keys: "d/u", Name: "half page down/up", Group: "Navigation"},
	{Keys: "^D/^U", Name: "half page down/up", Group: "Navigation"},
	{Keys: "g/G", Name: "top/bottom", Group: "Navigation"},
	{Keys: "←/→", Name: "scroll sideways (no wrap)", Group: "Navigation"},
	{Keys: "]/[", Name: "next/prev hunk", Group: "Navigation", DiffOnly: true},

	{Keys: "l", Name: "line numbers", Group: "Display"},
	{Keys: "w", Name: "wrap", Group: "Display"},
	{Keys: "h", Name: "syntax highlight", Group: "Display"},
	{Keys: "b", Name: "diff background", Group: "Display", DiffOnly: true},
	{Keys: "t", Name: "next built-in theme", Group: "Display"},
	{Keys: "+/-", Name: "more/less context", Group: "Display", DiffOnly: true},

	{Keys: "/", Name: "search", Group: "Search"},
	{Keys: "n/N", Name: "next/prev match", Group: "Search"},
	{Keys: "Esc", Name: "clear search", Group: "Search"},

	{Keys: "y", Name: "copy current line", Group: "Actions"},
	{Keys: "Y", Name: "copy current hunk as patch", Group: "Actions", DiffOnly: true},
	{Keys: "o", Name: "open in $EDITOR", Group: "Actions"},
	{Keys: "W", Name: "watch mode", Group: "Actions"},
	{Keys: "?", Name: "help", Group: "Actions"},
	{Keys: "q", Name: "quit", Group: "Actions"},
}

// helpLines renders keyBindings grouped under their headings.
func helpLines() []string {
	var lines []string
	group := ""
	for _, kb := range keyBindings {
		if kb.Group != group {
			if group != "" {
				lines = append(lines, "")
			}
			lines = append(lines, kb.Group)
			group = kb.Group
		}
		name := kb.Name
		if kb.DiffOnly {
			name += " (diff)"
		}
		lines = append(lines, fmt.Sprintf("  %-7s %s", kb.Keys, name))
	}
	return lines
}
