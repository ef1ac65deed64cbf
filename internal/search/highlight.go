package search

import (
	"unicode"

	"golang.org/x/text/cases"
)

// Span is a piece of highlighted text.
type Span struct {
	Text    string `json:"text"`
	IsMatch bool   `json:"is_match"`
}

// Highlight splits text into spans whose concatenation is text, flagging
// every case-insensitive occurrence of a query word. Overlapping or adjacent
// occurrences come out as one span.
func Highlight(text, query string) []Span {
	if text == "" {
		return []Span{}
	}
	runes := []rune(text)
	matched := make([]bool, len(runes))

	qw := uniqueWords(query)
	if len(qw) > 0 {
		// fold rune by rune so every folded rune maps back to its source
		fold := cases.Fold()
		var folded []rune
		var owner []int
		for i, r := range runes {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				folded = append(folded, r)
				owner = append(owner, i)
				continue
			}
			for _, fr := range fold.String(string(r)) {
				folded = append(folded, fr)
				owner = append(owner, i)
			}
		}
		for _, w := range qw {
			markOccurrences(folded, []rune(w), owner, matched)
		}
	}

	var out []Span
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || matched[i] != matched[start] {
			out = append(out, Span{Text: string(runes[start:i]), IsMatch: matched[start]})
			start = i
		}
	}
	return out
}

func markOccurrences(hay, needle []rune, owner []int, matched []bool) {
	n := len(needle)
	if n == 0 || n > len(hay) {
		return
	}
	for i := 0; i+n <= len(hay); i++ {
		if !equalRunes(hay[i:i+n], needle) {
			continue
		}
		for j := owner[i]; j <= owner[i+n-1]; j++ {
			matched[j] = true
		}
	}
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
