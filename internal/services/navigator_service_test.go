package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/loader"
	"github.com/tbourn/go-console-navigator/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB) *NavigatorService {
	t.Helper()
	return NewNavigatorService(db, loader.New(loader.WithLogger(zerolog.Nop())))
}

func load(t *testing.T, s *NavigatorService, rows ...[]string) domain.IndexInfo {
	t.Helper()
	info, err := s.Load(context.Background(), "res.csv", loader.NewSliceSource(rows))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return info
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]SearchKind{"": KindBoth, "resources": KindResources, " Pages ": KindPages, "BOTH": KindBoth} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("all"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("invalid kind err = %v", err)
	}
}

func TestSearch_ResourceScenario(t *testing.T) {
	s := newService(t, nil)
	load(t, s, []string{"p1", "eu-west-1", "lambda", "MyFn"})

	hits, err := s.Search(context.Background(), "MyFn", KindResources, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].Entity.Resource == nil {
		t.Fatalf("hits = %+v", hits)
	}
	want := domain.ResourceRecord{Type: "lambda", Name: "MyFn", Region: "eu-west-1", Profile: "p1"}
	if *hits[0].Entity.Resource != want {
		t.Fatalf("record = %+v", *hits[0].Entity.Resource)
	}
	if hits[0].URL != "https://eu-west-1.console.aws.amazon.com/lambda/home?region=eu-west-1#/functions/MyFn" {
		t.Fatalf("url = %q", hits[0].URL)
	}
	if len(hits[0].Spans) != 1 || !hits[0].Spans[0].IsMatch {
		t.Fatalf("spans = %+v", hits[0].Spans)
	}
}

func TestSearch_BothPutsPagesFirstAndFlagsGroupEnd(t *testing.T) {
	s := newService(t, nil)
	load(t, s, []string{"p1", "eu-west-1", "lambda", "orders-handler"})

	hits, err := s.Search(context.Background(), "Lambda", KindBoth, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != s.PageLimit+1 {
		t.Fatalf("expected %d hits, got %d", s.PageLimit+1, len(hits))
	}
	for i, h := range hits[:s.PageLimit] {
		if h.Entity.Kind != domain.KindPage {
			t.Fatalf("hit %d is %s; pages must come first", i, h.Entity.Kind)
		}
		if h.Entity.Page.IsGroupEnd != (i == s.PageLimit-1) {
			t.Fatalf("IsGroupEnd wrong at %d", i)
		}
		if h.URL != h.Entity.Page.URL {
			t.Fatalf("page url = %q", h.URL)
		}
	}
	last := hits[len(hits)-1]
	if last.Entity.Kind != domain.KindResource || last.Entity.Resource.Name != "orders-handler" {
		t.Fatalf("last hit = %+v", last.Entity)
	}
}

func TestSearch_EmptyQueryAndNoIndex(t *testing.T) {
	s := newService(t, nil)
	for _, k := range []SearchKind{KindResources, KindPages, KindBoth} {
		hits, err := s.Search(context.Background(), "  ", k, 5)
		if err != nil || hits == nil || len(hits) != 0 {
			t.Fatalf("%s: empty query = %#v, %v", k, hits, err)
		}
	}
	// nothing loaded: resources are simply absent
	hits, err := s.Search(context.Background(), "s3", KindBoth, 0)
	if err != nil || len(hits) == 0 {
		t.Fatalf("pages should still match without an index: %v, %v", hits, err)
	}
	for _, h := range hits {
		if h.Entity.Kind != domain.KindPage {
			t.Fatalf("unexpected resource hit %+v", h)
		}
	}
	if _, err := s.Search(context.Background(), "x", SearchKind("nope"), 0); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("invalid kind err = %v", err)
	}
}

func TestSearch_LimitsAreCappedAndBounded(t *testing.T) {
	s := newService(t, nil)
	s.MaxLimit = 30
	rows := make([][]string, 50)
	for i := range rows {
		rows[i] = []string{"p", "eu-west-1", "sqs", fmt.Sprintf("queue-%02d", i)}
	}
	load(t, s, rows...)

	cases := []struct{ limit, want int }{{0, 20}, {7, 7}, {30, 30}}
	for _, tc := range cases {
		hits, _ := s.Search(context.Background(), "queue", KindResources, tc.limit)
		if len(hits) != tc.want {
			t.Errorf("limit %d: got %d hits; want %d", tc.limit, len(hits), tc.want)
		}
	}
	if _, err := s.Search(context.Background(), "queue", KindResources, 31); !errors.Is(err, ErrLimitTooLarge) {
		t.Fatalf("limit above max err = %v", err)
	}
	hits, _ := s.Search(context.Background(), "queue", KindResources, 3)
	for i, h := range hits {
		if want := fmt.Sprintf("queue-%02d", i); h.Entity.Resource.Name != want {
			t.Fatalf("hit %d = %q; want %q (id order)", i, h.Entity.Resource.Name, want)
		}
	}
	// pages-only honours an explicit limit
	if hits, _ := s.Search(context.Background(), "lambda", KindPages, 2); len(hits) != 2 {
		t.Fatalf("pages limit: %d", len(hits))
	}
}

func TestSearch_BothStaysWithinLimit(t *testing.T) {
	s := newService(t, nil)
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{"p", "eu-west-1", "lambda", fmt.Sprintf("fn-%02d", i)}
	}
	load(t, s, rows...)

	cases := []struct{ limit, pages, resources int }{
		{3, 3, 0},
		{7, s.PageLimit, 7 - s.PageLimit},
		{12, s.PageLimit, 12 - s.PageLimit},
	}
	for _, tc := range cases {
		hits, err := s.Search(context.Background(), "Lambda", KindBoth, tc.limit)
		if err != nil {
			t.Fatalf("limit %d: %v", tc.limit, err)
		}
		if len(hits) != tc.limit {
			t.Fatalf("limit %d: got %d hits", tc.limit, len(hits))
		}
		pages := 0
		for _, h := range hits {
			if h.Entity.Kind == domain.KindPage {
				pages++
			}
		}
		if pages != tc.pages || len(hits)-pages != tc.resources {
			t.Fatalf("limit %d: %d pages, %d resources", tc.limit, pages, len(hits)-pages)
		}
		if last := hits[pages-1]; !last.Entity.Page.IsGroupEnd {
			t.Fatalf("limit %d: last page hit not flagged", tc.limit)
		}
	}
}

func TestResolve_KnownAndUnknown(t *testing.T) {
	s := newService(t, nil)
	u, err := s.Resolve(context.Background(), domain.ResourceRecord{Type: "security-group", Name: "sg-123,vpc-1", Region: "eu-west-1"})
	if err != nil || u == "" {
		t.Fatalf("Resolve = %q, %v", u, err)
	}
	if _, err := s.Resolve(context.Background(), domain.ResourceRecord{Type: "made-up", Name: "x", Region: "eu-west-1", Profile: "p"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("unknown type err = %v", err)
	}
	if len(s.ResourceTypes()) == 0 {
		t.Fatalf("no resource types")
	}
	if pages, ver := s.Pages(); len(pages) == 0 || ver == "" {
		t.Fatalf("pages = %d, version %q", len(pages), ver)
	}
}

func TestInfoAndState(t *testing.T) {
	s := newService(t, nil)
	if _, err := s.Info(context.Background()); !errors.Is(err, ErrNoIndex) {
		t.Fatalf("Info before load = %v", err)
	}
	if st, err := s.State(); st != loader.StateIdle || err != nil {
		t.Fatalf("state = %v, %v", st, err)
	}
	info := load(t, s, []string{"p", "r", "t", "n"})
	got, err := s.Info(context.Background())
	if err != nil || got.LoadID != info.LoadID {
		t.Fatalf("Info = %+v, %v", got, err)
	}
}

type errSource struct{}

func (errSource) Next() ([]string, error) { return nil, errors.New("broken pipe") }

// gateSource blocks its first Next until release is closed.
type gateSource struct {
	started, release chan struct{}
}

func (g *gateSource) Next() ([]string, error) {
	close(g.started)
	<-g.release
	return nil, io.EOF
}

func TestLoad_RejectedLoadLeavesNoHistory(t *testing.T) {
	db := newTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	gate := &gateSource{started: make(chan struct{}), release: make(chan struct{})}
	done := make(chan error, 1)
	go func() {
		_, err := s.Loader.Load(ctx, "slow.csv", gate)
		done <- err
	}()
	<-gate.started

	if _, err := s.Load(ctx, "second.csv", loader.NewSliceSource(nil)); !errors.Is(err, loader.ErrLoadInProgress) {
		t.Fatalf("second load err = %v", err)
	}
	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}

	if _, total, err := s.History(ctx, 1, 10); err != nil || total != 0 {
		t.Fatalf("history total = %d, %v; rejected load must not be recorded", total, err)
	}
}

func TestLoad_RecordsHistory(t *testing.T) {
	db := newTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	info := load(t, s, []string{"dev", "eu-west-1", "lambda", "fn"})
	if _, err := s.Load(ctx, "bad.csv", errSource{}); !errors.Is(err, loader.ErrLoadFailed) {
		t.Fatalf("bad load err = %v", err)
	}

	items, total, err := s.History(ctx, 1, 10)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("History = %d items, total %d, %v", len(items), total, err)
	}
	byFile := map[string]domain.LoadRecord{}
	for _, it := range items {
		byFile[it.FileName] = it
	}
	if ok := byFile["res.csv"]; ok.Status != domain.LoadStatusReady || ok.ID != info.LoadID || ok.TotalNames != 1 {
		t.Fatalf("ready record = %+v", ok)
	}
	if bad := byFile["bad.csv"]; bad.Status != domain.LoadStatusFailed || bad.Error == "" {
		t.Fatalf("failed record = %+v", bad)
	}

	count, maxAt, err := s.HistoryVersion(ctx)
	if err != nil || count != 2 || maxAt == nil {
		t.Fatalf("HistoryVersion = %d, %v, %v", count, maxAt, err)
	}
}

func TestLoadFile_RecordsSuccessAndMissingFile(t *testing.T) {
	db := newTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "resources.csv")
	if err := os.WriteFile(path, []byte("dev,eu-west-1,sqs,orders\ndev,us-east-1,lambda,fn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	info, err := s.LoadFile(ctx, path)
	if err != nil || info.FileName != "resources.csv" || info.TotalNames != 2 {
		t.Fatalf("LoadFile = %+v, %v", info, err)
	}

	_, err = s.LoadFile(ctx, filepath.Join(dir, "missing.csv"))
	if !errors.Is(err, loader.ErrLoadFailed) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
	if cur, _ := s.Info(ctx); cur.LoadID != info.LoadID {
		t.Fatalf("failed load replaced index: %+v", cur)
	}

	items, total, err := s.History(ctx, 1, 10)
	if err != nil || total != 2 {
		t.Fatalf("History = %v, %d, %v", items, total, err)
	}
	var failed int
	for _, it := range items {
		if it.Status == domain.LoadStatusFailed && it.FileName == "missing.csv" {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("missing file not recorded: %+v", items)
	}
}

func TestHistory_WithoutDB(t *testing.T) {
	s := newService(t, nil)
	items, total, err := s.History(context.Background(), 0, 0)
	if err != nil || total != 0 || items == nil {
		t.Fatalf("History = %v, %d, %v", items, total, err)
	}
}

func TestIdempotency_RememberReplay(t *testing.T) {
	db := newTestDB(t)
	s := newService(t, db)
	ctx := context.Background()

	if _, ok := s.Replay(ctx, "c1", "k1"); ok {
		t.Fatalf("replay before remember")
	}
	info := load(t, s, []string{"p", "r", "lambda", "fn"})
	if err := s.Remember(ctx, "c1", "k1", info.LoadID, 201); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	// duplicate remember is not an error
	if err := s.Remember(ctx, "c1", "k1", info.LoadID, 201); err != nil {
		t.Fatalf("duplicate Remember: %v", err)
	}

	got, ok := s.Replay(ctx, "c1", "k1")
	if !ok || got.LoadID != info.LoadID || got.TotalNames != 1 {
		t.Fatalf("Replay = %+v, %v", got, ok)
	}
	if _, ok := s.Replay(ctx, "c2", "k1"); ok {
		t.Fatalf("replay leaked across clients")
	}

	exists, err := s.HasReplay(ctx, "c1", IdempotencyScope, "k1", time.Now().UTC())
	if err != nil || !exists {
		t.Fatalf("HasReplay = %v, %v", exists, err)
	}
	exists, err = s.HasReplay(ctx, "c1", IdempotencyScope, "other", time.Now().UTC())
	if err != nil || exists {
		t.Fatalf("HasReplay(other) = %v, %v", exists, err)
	}
}
