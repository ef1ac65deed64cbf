// Package store holds the resource records of one load, addressed by the
// dense ids the search index assigns.
package store

import (
	"sort"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

// Store is an append-only list of records plus the distinct non-empty
// profiles and regions seen while appending. Once frozen it is read-only and safe for
// concurrent use.
type Store struct {
	records  []domain.ResourceRecord
	profiles map[string]struct{}
	regions  map[string]struct{}
	frozen   bool
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		profiles: make(map[string]struct{}),
		regions:  make(map[string]struct{}),
	}
}

// Append stores r under the next id and returns it. Appending to a frozen
// store panics: a frozen store may already be shared with readers.
func (s *Store) Append(r domain.ResourceRecord) int {
	if s.frozen {
		panic("store: append after freeze")
	}
	s.records = append(s.records, r)
	if r.Profile != "" {
		s.profiles[r.Profile] = struct{}{}
	}
	if r.Region != "" {
		s.regions[r.Region] = struct{}{}
	}
	return len(s.records) - 1
}

// Freeze makes the store read-only.
func (s *Store) Freeze() { s.frozen = true }

// Len returns the record count.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (domain.ResourceRecord, bool) {
	if s == nil || id < 0 || id >= len(s.records) {
		return domain.ResourceRecord{}, false
	}
	return s.records[id], true
}

// Profiles returns the sorted distinct profiles.
func (s *Store) Profiles() []string { return sortedKeys(s.profiles) }

// Regions returns the sorted distinct regions.
func (s *Store) Regions() []string { return sortedKeys(s.regions) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
