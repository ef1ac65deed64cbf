package store

import (
	"reflect"
	"testing"

	"github.com/tbourn/go-console-navigator/internal/domain"
)

func TestStore_AppendGetAndSets(t *testing.T) {
	s := New()
	rows := []domain.ResourceRecord{
		{Type: "lambda", Name: "a", Region: "us-east-1", Profile: "p2"},
		{Type: "sqs", Name: "b", Region: "eu-west-1", Profile: "p1"},
		{Type: "sqs", Name: "c", Region: "eu-west-1", Profile: "p1"},
	}
	for i, r := range rows {
		if id := s.Append(r); id != i {
			t.Fatalf("Append id = %d; want %d", id, i)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
	if got, ok := s.Get(1); !ok || got != rows[1] {
		t.Fatalf("Get(1) = %+v, %v", got, ok)
	}
	if _, ok := s.Get(3); ok {
		t.Fatalf("Get out of range should fail")
	}
	if _, ok := s.Get(-1); ok {
		t.Fatalf("Get negative should fail")
	}
	if !reflect.DeepEqual(s.Profiles(), []string{"p1", "p2"}) {
		t.Fatalf("Profiles = %v", s.Profiles())
	}
	if !reflect.DeepEqual(s.Regions(), []string{"eu-west-1", "us-east-1"}) {
		t.Fatalf("Regions = %v", s.Regions())
	}
	for id, want := range rows {
		if got, _ := s.Get(id); got != want {
			t.Fatalf("Get(%d) = %+v; want %+v", id, got, want)
		}
	}
}

func TestStore_FreezePanicsOnAppend(t *testing.T) {
	s := New()
	s.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on append after freeze")
		}
	}()
	s.Append(domain.ResourceRecord{Name: "x"})
}

func TestStore_NilSafe(t *testing.T) {
	var s *Store
	if s.Len() != 0 {
		t.Fatalf("nil store should be empty")
	}
	if _, ok := s.Get(0); ok {
		t.Fatalf("nil store Get should fail")
	}
}

func TestStore_EmptyTagsAreNotCollected(t *testing.T) {
	s := New()
	s.Append(domain.ResourceRecord{Name: "x"})
	if len(s.Profiles()) != 0 || len(s.Regions()) != 0 {
		t.Fatalf("empty profile/region should not be collected: %v %v", s.Profiles(), s.Regions())
	}
}
