package search

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// words splits s into case-folded alphanumeric runs. Anything that is not a
// Unicode letter or digit separates runs.
func words(s string) []string {
	fold := cases.Fold()
	var out []string
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, fold.String(s[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, fold.String(s[start:]))
	}
	return out
}

// uniqueWords is words with duplicates removed, first occurrence wins.
func uniqueWords(s string) []string {
	ws := words(s)
	if len(ws) < 2 {
		return ws
	}
	seen := make(map[string]struct{}, len(ws))
	out := ws[:0]
	for _, w := range ws {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// substrings calls emit with every substring of w that is at most max runes
// long (all substrings when max <= 0). Duplicates are emitted as they occur;
// callers dedupe.
func substrings(w string, max int, emit func(string)) {
	// byte offsets of rune starts, plus len(w) as the final boundary
	offs := make([]int, 0, utf8.RuneCountInString(w)+1)
	for i := range w {
		offs = append(offs, i)
	}
	offs = append(offs, len(w))
	n := len(offs) - 1
	for i := 0; i < n; i++ {
		end := n
		if max > 0 && i+max < end {
			end = i + max
		}
		for j := i + 1; j <= end; j++ {
			emit(w[offs[i]:offs[j]])
		}
	}
}

// prefixRunes returns the first n runes of w (w itself when shorter).
func prefixRunes(w string, n int) string {
	if n <= 0 {
		return w
	}
	i := 0
	for pos := range w {
		if i == n {
			return w[:pos]
		}
		i++
	}
	return w
}
