// Package jsonc reads JSON with comments and trailing commas, as written
// in editor grammar and theme files.
package jsonc

import (
	"bytes"

	"github.com/tailscale/hujson"
)

// Standardize returns data as plain JSON. Comments and trailing commas
// become spaces, so offsets in decoder errors still point into data. data
// itself is not modified.
func Standardize(data []byte) ([]byte, error) {
	return hujson.Standardize(bytes.Clone(data))
}
