// Package services – NavigatorService
//
// NavigatorService is the single entry point the HTTP handlers and the CLI
// use. It owns no index state itself: the current store+index snapshot lives
// in loader.Loader, and every search reads exactly one snapshot.
//
// Load history and idempotency keys are persisted through repo when a DB is
// configured. Persistence is best effort: a failing write is logged and never
// fails a load.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-console-navigator/internal/catalog"
	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/loader"
	"github.com/tbourn/go-console-navigator/internal/navigate"
	"github.com/tbourn/go-console-navigator/internal/observability"
	"github.com/tbourn/go-console-navigator/internal/repo"
	"github.com/tbourn/go-console-navigator/internal/search"
)

// IdempotencyScope namespaces idempotency keys of POST /loads.
const IdempotencyScope = "loads"

// SearchKind selects which entities a search returns.
type SearchKind string

const (
	KindResources SearchKind = "resources"
	KindPages     SearchKind = "pages"
	KindBoth      SearchKind = "both"
)

// ParseKind validates s; an empty string means KindBoth.
func ParseKind(s string) (SearchKind, error) {
	switch k := SearchKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindBoth, nil
	case KindResources, KindPages, KindBoth:
		return k, nil
	}
	return "", ErrInvalidKind
}

// Hit is one search result ready for display: the entity, where it leads,
// and which parts of its name matched.
type Hit struct {
	Entity domain.Entity `json:"entity"`
	URL    string        `json:"url"`
	Spans  []search.Span `json:"spans"`
}

// NavigatorService coordinates loads, searches and deep-link resolution.
type NavigatorService struct {
	// DB is optional; nil disables load history and idempotency.
	DB     *gorm.DB
	Loader *loader.Loader

	ResourceLimit  int // default resource cap
	PageLimit      int // page cap
	MaxLimit       int // upper bound for caller supplied limits
	IdempotencyTTL time.Duration

	now func() time.Time
}

// NewNavigatorService constructs a NavigatorService with default caps.
func NewNavigatorService(db *gorm.DB, ld *loader.Loader) *NavigatorService {
	return &NavigatorService{
		DB:             db,
		Loader:         ld,
		ResourceLimit:  20,
		PageLimit:      catalog.DefaultLimit,
		MaxLimit:       100,
		IdempotencyTTL: 24 * time.Hour,
		now:            time.Now,
	}
}

func (s *NavigatorService) tracer() trace.Tracer {
	return observability.Tracer("services/NavigatorService")
}

func (s *NavigatorService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// logFrom returns the logger attached to ctx, or the global logger.
func logFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// ----------------------------------------------------------------------------
// Loading

// Load builds a new index from src and makes it current. The attempt is
// recorded in the load history when a DB is configured; a load rejected with
// loader.ErrLoadInProgress is not.
func (s *NavigatorService) Load(ctx context.Context, fileName string, src loader.RowSource) (domain.IndexInfo, error) {
	ctx, span := s.tracer().Start(ctx, "Load", trace.WithAttributes(attribute.String("file.name", fileName)))
	defer span.End()

	lg := logFrom(ctx)
	id := uuid.NewString()
	if s.DB != nil {
		if _, err := repo.CreateLoad(ctx, s.DB, id, fileName, s.clock()); err != nil {
			lg.Warn().Err(err).Str("load_id", id).Msg("record load start")
		}
	}

	info, err := s.Loader.LoadAs(ctx, id, fileName, src)
	if errors.Is(err, loader.ErrLoadInProgress) {
		// the load never started, so it leaves no history
		observability.Fail(span, err)
		if s.DB != nil {
			if derr := repo.DeleteLoad(ctx, s.DB, id); derr != nil {
				lg.Warn().Err(derr).Str("load_id", id).Msg("drop rejected load")
			}
		}
		return domain.IndexInfo{}, err
	}
	if err != nil {
		observability.Fail(span, err)
		if s.DB != nil {
			if ferr := repo.FailLoad(ctx, s.DB, id, err.Error(), s.clock()); ferr != nil {
				lg.Warn().Err(ferr).Str("load_id", id).Msg("record load failure")
			}
		}
		return domain.IndexInfo{}, err
	}

	span.SetAttributes(attribute.String("load.id", id), attribute.Int("load.total_names", info.TotalNames))
	if s.DB != nil {
		if err := repo.FinishLoad(ctx, s.DB, info); err != nil {
			lg.Warn().Err(err).Str("load_id", id).Msg("record load result")
		}
	}
	return info, nil
}

// LoadFile loads the CSV at path like an upload named after its base name.
// A file that cannot be opened is recorded as a failed load.
func (s *NavigatorService) LoadFile(ctx context.Context, path string) (domain.IndexInfo, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return s.Load(ctx, name, openFailure{err})
	}
	defer f.Close()
	return s.Load(ctx, name, loader.NewCSVSource(f))
}

// openFailure is a RowSource for a file that could not be opened.
type openFailure struct{ err error }

func (o openFailure) Next() ([]string, error) { return nil, o.err }

// Replay returns the result of an earlier successful load made with the same
// idempotency key by clientID.
func (s *NavigatorService) Replay(ctx context.Context, clientID, key string) (domain.IndexInfo, bool) {
	if s.DB == nil || key == "" {
		return domain.IndexInfo{}, false
	}
	rec, err := repo.GetIdempotencyKey(ctx, s.DB, clientID, IdempotencyScope, key, s.clock())
	if err != nil {
		return domain.IndexInfo{}, false
	}
	l, err := repo.GetLoad(ctx, s.DB, rec.LoadID)
	if err != nil || l.Status != domain.LoadStatusReady {
		return domain.IndexInfo{}, false
	}
	return l.Info(), true
}

// Remember stores key → loadID so a retried request can be replayed.
// Concurrent duplicates are ignored.
func (s *NavigatorService) Remember(ctx context.Context, clientID, key, loadID string, status int) error {
	if s.DB == nil || key == "" {
		return nil
	}
	now := s.clock()
	err := repo.PutIdempotencyKey(ctx, s.DB, domain.IdempotencyKey{
		ClientID:  clientID,
		Scope:     IdempotencyScope,
		Key:       key,
		LoadID:    loadID,
		Status:    status,
		ExpiresAt: now.Add(s.IdempotencyTTL).UTC(),
	}, now)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// HasReplay reports whether a replayable result exists; it matches
// middleware.IdempotencyLookup.
func (s *NavigatorService) HasReplay(ctx context.Context, clientID, scope, key string, now time.Time) (bool, error) {
	if s.DB == nil || scope != IdempotencyScope {
		return false, nil
	}
	_, err := repo.GetIdempotencyKey(ctx, s.DB, clientID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// History returns a page of load attempts, most recent first.
func (s *NavigatorService) History(ctx context.Context, page, pageSize int) ([]domain.LoadRecord, int64, error) {
	ctx, span := s.tracer().Start(ctx, "History",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)))
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if s.DB == nil {
		return []domain.LoadRecord{}, 0, nil
	}
	total, err := repo.CountLoads(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.LoadRecord{}, 0, nil
	}
	items, err := repo.ListLoadsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// HistoryVersion returns the load count and latest change time, for ETags.
func (s *NavigatorService) HistoryVersion(ctx context.Context) (int64, *time.Time, error) {
	if s.DB == nil {
		return 0, nil, nil
	}
	return repo.LoadsStats(ctx, s.DB)
}

// Info returns the summary of the current index.
func (s *NavigatorService) Info(ctx context.Context) (domain.IndexInfo, error) {
	snap := s.Loader.Current()
	if snap == nil {
		return domain.IndexInfo{}, ErrNoIndex
	}
	return snap.Info, nil
}

// State reports the loader lifecycle and the error of the last load.
func (s *NavigatorService) State() (loader.State, error) {
	return s.Loader.State(), s.Loader.LastError()
}

// LoadAttempts is the number of finished loads, failed ones included.
func (s *NavigatorService) LoadAttempts() uint64 {
	return s.Loader.Attempts()
}

// ----------------------------------------------------------------------------
// Searching

// Search returns at most limit hits for query, or ErrLimitTooLarge when
// limit exceeds MaxLimit. With KindBoth, page hits come first (at most
// PageLimit of them) and the last one has IsGroupEnd set; resource hits fill
// the rest of the budget. An empty query yields an empty list.
func (s *NavigatorService) Search(ctx context.Context, query string, kind SearchKind, limit int) ([]Hit, error) {
	_, span := s.tracer().Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Int("query.len", len(query)),
			attribute.String("kind", string(kind)),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	switch kind {
	case KindResources, KindPages, KindBoth:
	default:
		return nil, ErrInvalidKind
	}
	start := time.Now()
	defer func() {
		observability.SearchDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	budget, err := s.budget(kind, limit)
	if err != nil {
		return nil, err
	}

	hits := []Hit{}
	if strings.TrimSpace(query) == "" {
		return hits, nil
	}

	if kind != KindResources {
		pageCap := budget
		if kind == KindBoth {
			pageCap = min(s.PageLimit, budget)
		}
		for _, p := range catalog.Search(query, pageCap) {
			e := domain.PageEntity(p)
			hits = append(hits, Hit{Entity: e, URL: navigate.Resolve(e), Spans: search.Highlight(p.Name, query)})
		}
	}

	// resources get whatever the pages left over
	if rest := budget - len(hits); kind != KindPages && rest > 0 {
		if snap := s.Loader.Current(); snap != nil {
			for _, m := range snap.Index.Search(query, rest) {
				r, ok := snap.Store.Get(m.ID)
				if !ok {
					continue
				}
				e := domain.ResourceEntity(r)
				hits = append(hits, Hit{Entity: e, URL: navigate.Resolve(e), Spans: search.Highlight(r.Name, query)})
			}
		}
	}

	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// budget is the total number of hits a search may return. limit <= 0 picks
// the default for kind; a limit above MaxLimit is rejected.
func (s *NavigatorService) budget(kind SearchKind, limit int) (int, error) {
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		return 0, fmt.Errorf("%w: %d > %d", ErrLimitTooLarge, limit, s.MaxLimit)
	}
	if limit > 0 {
		return limit, nil
	}
	if kind == KindPages {
		return s.PageLimit, nil
	}
	return s.ResourceLimit, nil
}

// ----------------------------------------------------------------------------
// Resolving

// Resolve returns the console URL for r, or ErrUnknownType.
func (s *NavigatorService) Resolve(ctx context.Context, r domain.ResourceRecord) (string, error) {
	_, span := s.tracer().Start(ctx, "Resolve", trace.WithAttributes(attribute.String("resource.type", r.Type)))
	defer span.End()

	var u string
	if navigate.Supported(r.Type) {
		u = navigate.ResolveResource(r)
	}
	if u == "" {
		observability.ResolveTotal.WithLabelValues("unknown_type").Inc()
		return "", ErrUnknownType
	}
	observability.ResolveTotal.WithLabelValues("ok").Inc()
	return u, nil
}

// ResourceTypes lists the resource types Resolve understands.
func (s *NavigatorService) ResourceTypes() []string { return navigate.Types() }

// Pages returns the built-in catalog and its version.
func (s *NavigatorService) Pages() ([]domain.PageRecord, string) {
	return catalog.Pages(), catalog.Version
}
