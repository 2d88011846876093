// Package builtin ships grammars embedded in the binary.
package builtin

import (
	"embed"
	"io/fs"
	"path"
	"sort"
)

//go:embed grammars/*.tmLanguage.json
var grammars embed.FS

// Grammar is an embedded grammar file.
type Grammar struct {
	Name string
	Data []byte
}

// Grammars returns the embedded grammar files, sorted by name.
func Grammars() []Grammar {
	entries, err := fs.ReadDir(grammars, "grammars")
	if err != nil {
		return nil
	}
	res := make([]Grammar, 0, len(entries))
	for _, e := range entries {
		data, err := grammars.ReadFile(path.Join("grammars", e.Name()))
		if err != nil {
			continue
		}
		res = append(res, Grammar{Name: e.Name(), Data: data})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// JSON returns the embedded JSON grammar.
func JSON() []byte {
	data, _ := grammars.ReadFile("grammars/json.tmLanguage.json")
	return data
}
