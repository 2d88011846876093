// Package scope matches TextMate scope names and scope paths against
// selectors.
package scope

import "strings"

// MatchesScope reports whether scope equals prefix or extends it by whole
// dot segments: "keyword" matches "keyword.control" but not "keywordx".
func MatchesScope(scope, prefix string) bool {
	if prefix == "" {
		return true
	}
	return scope == prefix ||
		(len(scope) > len(prefix) && scope[len(prefix)] == '.' && strings.HasPrefix(scope, prefix))
}

// MatchDepth returns the deepest position of path whose scope matches name
// while parents match the scopes further out, or -1. Parents are listed
// immediate parent first.
func MatchDepth(path []string, name string, parents []string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if MatchesScope(path[i], name) && MatchParents(path[:i], parents) {
			return i
		}
	}
	return -1
}

// MatchParents matches parents, immediate parent first, against ancestors
// from the end of path outward. Each parent takes a position further out
// than the previous one. A ">" entry requires the next parent to sit right
// above the previous match.
func MatchParents(ancestors []string, parents []string) bool {
	j := len(ancestors) - 1
	for k := 0; k < len(parents); k++ {
		p, direct := parents[k], false
		if p == ">" {
			if k+1 == len(parents) {
				return false
			}
			k++
			p, direct = parents[k], true
		}
		for j >= 0 && !MatchesScope(ancestors[j], p) {
			if direct {
				return false
			}
			j--
		}
		if j < 0 {
			return false
		}
		j--
	}
	return true
}

// Specificity counts the scope clauses of a selector, ignoring ">"
// combinators. Selectors with more clauses win.
func Specificity(clauses []string) int {
	n := 0
	for _, c := range clauses {
		if c != ">" {
			n++
		}
	}
	return n
}

// Segments returns the number of dot-separated segments in scope.
func Segments(scope string) int {
	if scope == "" {
		return 0
	}
	return strings.Count(scope, ".") + 1
}
