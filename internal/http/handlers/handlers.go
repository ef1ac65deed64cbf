// Navigator HTTP handlers.
//
// This file holds the service contract the handlers depend on, the Handlers
// wiring, and helpers shared by every endpoint:
//   - POST /loads           (upload a resource CSV, idempotent)
//   - GET  /loads           (load history, paginated, ETag support)
//   - GET  /index           (current index summary, ETag support)
//   - GET  /search          (ranked hits with highlight spans)
//   - GET  /resolve         (console deep link for a resource)
//   - GET  /resource-types  (types the resolver understands)
//   - GET  /pages           (built-in console page catalog)
//
// Handlers are transport-thin: they validate input, call the navigator
// service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/http/middleware"
	"github.com/tbourn/go-console-navigator/internal/loader"
	"github.com/tbourn/go-console-navigator/internal/services"
)

//
// Service contract (context-aware)
//

// Navigator is the application surface consumed by the handlers.
// *services.NavigatorService implements it.
type Navigator interface {
	// Load parses src and atomically replaces the live index.
	Load(ctx context.Context, fileName string, src loader.RowSource) (domain.IndexInfo, error)
	// Replay returns a previous result for (clientID, key) when one exists.
	Replay(ctx context.Context, clientID, key string) (domain.IndexInfo, bool)
	// Remember records key → loadID for later replays.
	Remember(ctx context.Context, clientID, key, loadID string, status int) error
	// History returns a page of load attempts and the total count.
	History(ctx context.Context, page, pageSize int) ([]domain.LoadRecord, int64, error)
	// HistoryVersion returns (count, latest change) of the load history.
	HistoryVersion(ctx context.Context) (int64, *time.Time, error)
	// Info summarizes the live index or returns services.ErrNoIndex.
	Info(ctx context.Context) (domain.IndexInfo, error)
	// State reports the loader lifecycle and the last load error.
	State() (loader.State, error)
	// LoadAttempts counts finished loads, failed ones included.
	LoadAttempts() uint64
	// Search returns ranked hits of the requested kind.
	Search(ctx context.Context, query string, kind services.SearchKind, limit int) ([]services.Hit, error)
	// Resolve maps a resource to its console URL.
	Resolve(ctx context.Context, r domain.ResourceRecord) (string, error)
	// ResourceTypes lists the resolvable types.
	ResourceTypes() []string
	// Pages returns the page catalog and its version.
	Pages() ([]domain.PageRecord, string)
}

var _ Navigator = (*services.NavigatorService)(nil)

//
// Handler wiring
//

// Handlers groups the navigator HTTP endpoints.
type Handlers struct {
	svc Navigator
}

// New constructs and returns a Handlers instance bound to svc.
func New(svc Navigator) *Handlers {
	return &Handlers{svc: svc}
}

// clientID identifies the caller for idempotency bookkeeping.
func clientID(c *gin.Context) string {
	return middleware.ClientID(c)
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = queryInt(c, "page", defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(c, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// queryInt parses query parameter key, falling back to def when it is
// absent or not an integer.
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return def
	}
	return n
}

// notModified sets etag and reports whether If-None-Match matches it. The
// header may list several tags or be "*"; comparison is weak, so W/ prefixes
// are ignored.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := strings.TrimSpace(c.GetHeader("If-None-Match"))
	if inm == "" {
		return false
	}
	if inm == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(inm, ",") {
		if strings.TrimPrefix(strings.TrimSpace(tag), "W/") == want {
			return true
		}
	}
	return false
}
