package catalog

import (
	"strings"
	"testing"
)

func TestPages_AreWellFormed(t *testing.T) {
	ps := Pages()
	if len(ps) != Len() || Len() == 0 {
		t.Fatalf("Len mismatch: %d vs %d", len(ps), Len())
	}
	for _, p := range ps {
		if p.Name != strings.TrimSpace(p.Name) || p.Name == "" {
			t.Errorf("untrimmed or empty name %q", p.Name)
		}
		if !strings.HasPrefix(p.URL, "https://") {
			t.Errorf("%s: bad url %q", p.Name, p.URL)
		}
		if p.IsGroupEnd {
			t.Errorf("%s: catalog entries must not be flagged", p.Name)
		}
	}
	// mutating the copy must not affect the catalog
	ps[0].Name = "changed"
	if Pages()[0].Name == "changed" {
		t.Fatalf("Pages must return a copy")
	}
}

func TestSearch_LambdaPagesFlagLastOnly(t *testing.T) {
	got := Search("Lambda", 0)
	if len(got) != DefaultLimit {
		t.Fatalf("expected %d lambda pages, got %d", DefaultLimit, len(got))
	}
	if got[0].Name != "Lambda" {
		t.Fatalf("first hit = %q; want catalog order", got[0].Name)
	}
	for i, p := range got {
		if !strings.Contains(strings.ToLower(p.Name), "lambda") {
			t.Errorf("unexpected page %q", p.Name)
		}
		if p.IsGroupEnd != (i == len(got)-1) {
			t.Errorf("IsGroupEnd wrong at %d", i)
		}
	}
	// results must not leak the flag into the catalog
	for _, p := range Pages() {
		if p.IsGroupEnd {
			t.Fatalf("catalog mutated by Search")
		}
	}
}

func TestSearch_SubstringAndLimit(t *testing.T) {
	got := Search("ucket", 10)
	if len(got) != 1 || got[0].Name != "S3 / Buckets" {
		t.Fatalf("substring search = %+v", got)
	}
	if got := Search("s3", 2); len(got) != 2 || !got[1].IsGroupEnd {
		t.Fatalf("limit 2 = %+v", got)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   "} {
		got := Search(q, 5)
		if got == nil || len(got) != 0 {
			t.Fatalf("Search(%q) = %#v; want empty non-nil", q, got)
		}
	}
	if got := Search("nothing-like-this", 5); len(got) != 0 {
		t.Fatalf("no match = %+v", got)
	}
}
