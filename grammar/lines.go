package grammar

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines splits text at "\r\n", "\r" and "\n" into lines without
// terminators. A trailing line break does not start another line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(lineBreaks.Replace(text), "\n")
	return strings.Split(text, "\n")
}
