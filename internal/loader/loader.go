// Package loader owns the current record store and search index.
//
// A load streams rows from a RowSource into a fresh store.Store and
// search.Builder off to the side; only when the source is exhausted does the
// new Snapshot replace the current one, with a single atomic pointer swap.
// Readers call Current once and keep using that snapshot, so they never see
// a store and an index from different loads.
//
// One load runs at a time. A second Load while one is in flight fails fast
// with ErrLoadInProgress.
package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/observability"
	"github.com/tbourn/go-console-navigator/internal/search"
	"github.com/tbourn/go-console-navigator/internal/store"
)

// State is the loader lifecycle as seen by callers.
type State int32

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// Snapshot is one immutable store+index pair and the summary of the load
// that produced it. Store ids and index ids coincide.
type Snapshot struct {
	Store *store.Store
	Index *search.Index
	Info  domain.IndexInfo
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	searchOpts []search.Option
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
	debounce   time.Duration
}

func defaultConfig() config {
	return config{
		logger:   log.Logger,
		now:      time.Now,
		newID:    uuid.NewString,
		debounce: 250 * time.Millisecond,
	}
}

// WithSearchOptions forwards options to every index the loader builds.
func WithSearchOptions(opts ...search.Option) Option {
	return func(c *config) { c.searchOpts = append(c.searchOpts, opts...) }
}

// WithLogger sets the logger used for load events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDebounce sets how long Watch waits for a file to settle before
// reloading it.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// ----------------------------------------------------------------------------
// Loader

// Loader is safe for concurrent use.
type Loader struct {
	cfg     config
	current atomic.Pointer[Snapshot]
	loading atomic.Bool
	done    atomic.Uint64 // finished load attempts, failed ones included

	mu      sync.Mutex
	lastErr error
}

// New returns an idle Loader with no snapshot.
func New(opts ...Option) *Loader {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Loader{cfg: cfg}
}

// Current returns the current snapshot, or nil before the first successful
// load. The snapshot is never modified.
func (l *Loader) Current() *Snapshot {
	return l.current.Load()
}

// State reports Loading while a load runs, otherwise Ready when a snapshot
// exists and Idle when none does.
func (l *Loader) State() State {
	switch {
	case l.loading.Load():
		return StateLoading
	case l.current.Load() != nil:
		return StateReady
	}
	return StateIdle
}

// LastError returns the error of the most recent finished load, or nil when
// it succeeded.
func (l *Loader) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Attempts counts finished loads, successful or not. It changes whenever
// LastError may have changed.
func (l *Loader) Attempts() uint64 {
	return l.done.Load()
}

// Load replaces the current snapshot with one built from src under a fresh
// load id.
func (l *Loader) Load(ctx context.Context, fileName string, src RowSource) (domain.IndexInfo, error) {
	return l.LoadAs(ctx, l.cfg.newID(), fileName, src)
}

// LoadAs is Load with a caller-chosen load id, for callers that record the
// load elsewhere before it starts.
func (l *Loader) LoadAs(ctx context.Context, id, fileName string, src RowSource) (domain.IndexInfo, error) {
	if !l.loading.CompareAndSwap(false, true) {
		observability.LoadsTotal.WithLabelValues(observability.OutcomeRejected).Inc()
		return domain.IndexInfo{}, ErrLoadInProgress
	}
	defer l.loading.Store(false)

	lg := l.cfg.logger.With().Str("load_id", id).Str("file", fileName).Logger()
	start := l.cfg.now()
	lg.Info().Msg("load started")

	snap, skipped, err := l.build(ctx, src)
	if err != nil {
		return domain.IndexInfo{}, l.fail(lg, fileName, err)
	}
	snap.Info = domain.IndexInfo{
		LoadID:     id,
		FileName:   fileName,
		TotalNames: snap.Store.Len(),
		Profiles:   snap.Store.Profiles(),
		Regions:    snap.Store.Regions(),
		LoadedAt:   l.cfg.now().UTC(),
	}
	l.current.Store(snap)
	l.setLastErr(nil)

	observability.LoadsTotal.WithLabelValues(observability.OutcomeReady).Inc()
	observability.IndexRecords.Set(float64(snap.Info.TotalNames))
	observability.RowsSkipped.Add(float64(skipped))
	lg.Info().
		Int("records", snap.Info.TotalNames).
		Int("skipped", skipped).
		Int("tokens", snap.Index.Tokens()).
		Dur("took", l.cfg.now().Sub(start)).
		Msg("load finished")
	return snap.Info, nil
}

// LoadFile opens path and loads it as CSV.
func (l *Loader) LoadFile(ctx context.Context, path string) (domain.IndexInfo, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		lg := l.cfg.logger.With().Str("file", name).Logger()
		return domain.IndexInfo{}, l.fail(lg, name, err)
	}
	defer f.Close()
	return l.Load(ctx, name, NewCSVSource(f))
}

func (l *Loader) build(ctx context.Context, src RowSource) (*Snapshot, int, error) {
	st := store.New()
	b := search.NewBuilder(l.cfg.searchOpts...)
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		fields, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		rec, ok := ParseRow(fields)
		if !ok {
			skipped++
			continue
		}
		st.Append(rec)
		b.Add(rec.Name + " " + rec.Type)
	}
	st.Freeze()
	return &Snapshot{Store: st, Index: b.Build()}, skipped, nil
}

func (l *Loader) fail(lg zerolog.Logger, fileName string, err error) error {
	lerr := &LoadError{FileName: fileName, Err: err}
	l.setLastErr(lerr)
	observability.LoadsTotal.WithLabelValues(observability.OutcomeFailed).Inc()
	lg.Error().Err(err).Bool("kept_previous", l.current.Load() != nil).Msg("load failed")
	return lerr
}

func (l *Loader) setLastErr(err error) {
	l.mu.Lock()
	l.lastErr = err
	l.mu.Unlock()
	l.done.Add(1)
}
