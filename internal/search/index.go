// Package search provides the in-memory inverted index behind the navigator:
// every substring of every alphanumeric run in an entity's text is a token, so
// users can find `MyService-prod-eu` by typing `vice-pr`.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options (Option pattern)
//   - Unicode-aware, case-folded tokenization
//   - Immutable index after Build (safe for concurrent use)
//   - Deterministic ranking: matched query runes desc, then id asc
//
// Ids are dense and assigned in insertion order starting at 0, so callers can
// keep their records in a slice indexed by id.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Match is a ranked candidate.
type Match struct {
	ID    int
	Score int // runes of the query that matched
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	maxTokenRunes int
	defaultLimit  int
}

func defaultConfig() config {
	return config{
		maxTokenRunes: 24,
		defaultLimit:  20,
	}
}

// WithMaxTokenRunes caps the length of indexed substrings. Query words longer
// than the cap are still matched exactly (looked up by prefix, then verified).
// n <= 0 indexes every substring.
func WithMaxTokenRunes(n int) Option {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.maxTokenRunes = n
	}
}

// WithDefaultLimit sets the cap used when Search is called with limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

// ----------------------------------------------------------------------------
// Builder

// Builder accumulates entity texts. It is not safe for concurrent use; a load
// owns exactly one Builder and turns it into an Index with Build.
type Builder struct {
	cfg      config
	postings map[string][]int
	texts    []string
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Builder{cfg: cfg, postings: make(map[string][]int)}
}

// Add indexes text under the next id and returns that id.
func (b *Builder) Add(text string) int {
	id := len(b.texts)
	ws := words(text)
	b.texts = append(b.texts, strings.Join(ws, " "))
	for _, w := range ws {
		substrings(w, b.cfg.maxTokenRunes, func(tok string) {
			ids := b.postings[tok]
			// ids only grow, so the tail tells us if this entity is already posted
			if n := len(ids); n > 0 && ids[n-1] == id {
				return
			}
			b.postings[tok] = append(ids, id)
		})
	}
	return id
}

// Len reports how many texts were added.
func (b *Builder) Len() int { return len(b.texts) }

// Build freezes the accumulated postings into an Index. The Builder must not
// be used afterwards.
func (b *Builder) Build() *Index {
	ix := &Index{cfg: b.cfg, postings: b.postings, texts: b.texts}
	b.postings, b.texts = nil, nil
	return ix
}

// NewIndexFromStrings builds an Index where id i is texts[i].
func NewIndexFromStrings(texts []string, opts ...Option) *Index {
	b := NewBuilder(opts...)
	for _, t := range texts {
		b.Add(t)
	}
	return b.Build()
}

// ----------------------------------------------------------------------------
// Index

// Index is an immutable token → posting list mapping.
type Index struct {
	cfg      config
	postings map[string][]int
	texts    []string // folded words joined by a space, by id
}

// Len returns the number of indexed entities.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.texts)
}

// Tokens returns the number of distinct tokens.
func (ix *Index) Tokens() int {
	if ix == nil {
		return 0
	}
	return len(ix.postings)
}

// Search returns up to limit matches for q. Each query word contributes its
// rune length to the score of every entity containing it; ties keep id
// order. A query without letters or digits yields nil.
func (ix *Index) Search(q string, limit int) []Match {
	if ix.Len() == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if limit <= 0 {
		limit = ix.cfg.defaultLimit
	}
	qw := uniqueWords(q)
	if len(qw) == 0 {
		return nil
	}

	scores := make(map[int]int)
	for _, w := range qw {
		weight := utf8.RuneCountInString(w)
		for _, id := range ix.lookup(w) {
			scores[id] += weight
		}
	}
	if len(scores) == 0 {
		return nil
	}

	out := make([]Match, 0, len(scores))
	for id, s := range scores {
		out = append(out, Match{ID: id, Score: s})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].ID < out[b].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// lookup returns the ids whose text contains w.
func (ix *Index) lookup(w string) []int {
	max := ix.cfg.maxTokenRunes
	if max <= 0 || utf8.RuneCountInString(w) <= max {
		return ix.postings[w]
	}
	cands := ix.postings[prefixRunes(w, max)]
	var out []int
	for _, id := range cands {
		if strings.Contains(ix.texts[id], w) {
			out = append(out, id)
		}
	}
	return out
}
