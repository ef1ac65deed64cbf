package search

import (
	"reflect"
	"strings"
	"testing"
)

func join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestHighlight_Basic(t *testing.T) {
	got := Highlight("MyService-prod-eu", "prod")
	want := []Span{
		{Text: "MyService-", IsMatch: false},
		{Text: "prod", IsMatch: true},
		{Text: "-eu", IsMatch: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Highlight = %#v", got)
	}
}

func TestHighlight_CaseInsensitiveAllOccurrences(t *testing.T) {
	got := Highlight("Api-gw-API", "api")
	want := []Span{
		{Text: "Api", IsMatch: true},
		{Text: "-gw-", IsMatch: false},
		{Text: "API", IsMatch: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Highlight = %#v", got)
	}
}

func TestHighlight_MergesOverlappingAndAdjacent(t *testing.T) {
	// "abc" and "cde" overlap on c; "fg" is adjacent to "cde"
	got := Highlight("xabcdefgx", "abc cde fg")
	want := []Span{
		{Text: "x", IsMatch: false},
		{Text: "abcdefg", IsMatch: true},
		{Text: "x", IsMatch: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Highlight = %#v", got)
	}
}

func TestHighlight_QuerySeparatorsSplitWords(t *testing.T) {
	got := Highlight("sg-123,vpc-1", "123,vpc")
	if join(got) != "sg-123,vpc-1" {
		t.Fatalf("spans must reconstruct text: %#v", got)
	}
	var matched []string
	for _, s := range got {
		if s.IsMatch {
			matched = append(matched, s.Text)
		}
	}
	if !reflect.DeepEqual(matched, []string{"123", "vpc"}) {
		t.Fatalf("matched = %#v", matched)
	}
}

func TestHighlight_NoMatchEmptyAndUnicode(t *testing.T) {
	if got := Highlight("", "x"); len(got) != 0 {
		t.Fatalf("empty text should give no spans, got %#v", got)
	}
	got := Highlight("Lambda", "   ")
	if !reflect.DeepEqual(got, []Span{{Text: "Lambda"}}) {
		t.Fatalf("blank query = %#v", got)
	}
	got = Highlight("Größe-ÄRGER", "ärger")
	if len(got) != 2 || got[1].Text != "ÄRGER" || !got[1].IsMatch || join(got) != "Größe-ÄRGER" {
		t.Fatalf("unicode highlight = %#v", got)
	}
}
