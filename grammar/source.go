package grammar

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/h0rv/tmhl/regex"
)

var (
	captureRef = regexp.MustCompile(`\$(\d+)|\$\{(\d+):/(downcase|upcase)\}`)
	backRef    = regexp.MustCompile(`\\(\d+)`)
)

func hasCaptureRefs(s string) bool { return s != "" && captureRef.MatchString(s) }

func hasBackRefs(s string) bool { return backRef.MatchString(s) }

// resolveCaptureRefs substitutes $N and ${N:/downcase|upcase} in a scope
// name with captured text. Leading dots of the text are dropped so a
// capture cannot produce an empty scope segment.
func resolveCaptureRefs(name string, text []rune, caps []regex.Range) string {
	return captureRef.ReplaceAllStringFunc(name, func(m string) string {
		sm := captureRef.FindStringSubmatch(m)
		idx, cmd := sm[1], ""
		if idx == "" {
			idx, cmd = sm[2], sm[3]
		}
		n, _ := strconv.Atoi(idx)
		if n >= len(caps) {
			return m
		}
		s := strings.TrimLeft(captured(text, caps[n]), ".")
		switch cmd {
		case "downcase":
			return strings.ToLower(s)
		case "upcase":
			return strings.ToUpper(s)
		}
		return s
	})
}

// resolveBackRefs substitutes \N in an end or while pattern with the
// escaped text of capture N of the begin match.
func resolveBackRefs(src string, text []rune, caps []regex.Range) string {
	return backRef.ReplaceAllStringFunc(src, func(m string) string {
		n, _ := strconv.Atoi(m[1:])
		if n >= len(caps) {
			return ""
		}
		return escapeRegExp(captured(text, caps[n]))
	})
}

func captured(text []rune, r regex.Range) string {
	if r.Start < 0 || r.End > len(text) {
		return ""
	}
	return string(text[r.Start:r.End])
}

func escapeRegExp(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`-\{}*+?|^$.,[]()#`, r) || unicode.IsSpace(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// normalizeSource rewrites \z, which the scanner cannot honour on a line
// that carries a trailing newline, into "end of input not after a newline".
func normalizeSource(src string) string {
	if !strings.Contains(src, `\z`) {
		return src
	}
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		if src[i] == '\\' && i+1 < len(src) {
			if src[i+1] == 'z' {
				b.WriteString(`$(?!\n)(?<!\n)`)
			} else {
				b.WriteByte(src[i])
				b.WriteByte(src[i+1])
			}
			i++
			continue
		}
		b.WriteByte(src[i])
	}
	return b.String()
}
