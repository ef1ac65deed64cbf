package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/http/middleware"
	"github.com/tbourn/go-console-navigator/internal/loader"
	"github.com/tbourn/go-console-navigator/internal/observability"
)

// defaultUploadName names raw-body uploads that carry no file_name.
const defaultUploadName = "upload.csv"

// ListLoadsResponse wraps a page of load attempts and pagination information.
type ListLoadsResponse struct {
	Loads      []domain.LoadRecord `json:"loads"`
	Pagination Pagination          `json:"pagination"`
}

// PostLoad godoc
// @ID          postLoad
// @Summary     Load a resource CSV
// @Description Parses the uploaded CSV (columns profile,region,type,name) and atomically replaces the live index.
// @Description The body is either raw CSV or a multipart form with a `file` field. A retried request with the
// @Description same Idempotency-Key returns the recorded result with Idempotency-Replayed: true.
// @Tags        Loads
// @Accept      text/csv
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Client ID"                     example(cli-42)
// @Param       Idempotency-Key  header  string  false "Makes retries safe"            example(load-2024-06-01)
// @Param       file_name        query   string  false "Name recorded for the upload"  example(resources.csv)
// @Param       file             formData file   false "CSV file (multipart uploads)"
//
// @Success     201  {object}  domain.IndexInfo
// @Success     200  {object}  domain.IndexInfo        "Replayed result"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Another load is running"
// @Failure     413  {object}  handlers.ErrorResponse  "Upload too large"
// @Failure     422  {object}  handlers.ErrorResponse  "The CSV could not be read"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /loads [post]
func (h *Handlers) PostLoad(c *gin.Context) {
	lg := middleware.LoggerFrom(c)
	ctx := lg.WithContext(c.Request.Context())
	cid := clientID(c)
	key, hasKey := middleware.GetIdempotencyKey(c)

	if hasKey && middleware.IsReplay(c) {
		if info, found := h.svc.Replay(ctx, cid, key); found {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusOK, info)
			return
		}
	}

	if c.Request.ContentLength > 0 {
		observability.UploadBytes.Observe(float64(c.Request.ContentLength))
	}
	body, name, err := uploadBody(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "upload exceeds size limit")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	defer body.Close()

	info, err := h.svc.Load(ctx, name, loader.NewCSVSource(body))
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, loader.ErrLoadInProgress):
			fail(c, http.StatusConflict, ErrCodeLoadInProgress, "another load is running")
		case errors.As(err, &tooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "upload exceeds size limit")
		case errors.Is(err, loader.ErrLoadFailed):
			fail(c, http.StatusUnprocessableEntity, ErrCodeLoadFailed, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	if hasKey {
		if err := h.svc.Remember(ctx, cid, key, info.LoadID, http.StatusCreated); err != nil {
			lg.Warn().Err(err).Str("load_id", info.LoadID).Msg("store idempotency key")
		}
	}
	ok(c, http.StatusCreated, info)
}

// uploadBody returns the CSV stream and the file name to record for it.
func uploadBody(c *gin.Context) (io.ReadCloser, string, error) {
	name := strings.TrimSpace(c.Query("file_name"))

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("multipart field \"file\": %w", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		if name == "" {
			name = filepath.Base(fh.Filename)
		}
		return f, name, nil
	}

	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, "", errors.New("empty body")
	}
	if name == "" {
		name = defaultUploadName
	}
	return c.Request.Body, name, nil
}

// ListLoads godoc
// @ID          listLoads
// @Summary     List load attempts (paginated)
// @Description Returns the load history, most recent first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Loads
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"loads:3:1717200000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListLoadsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /loads [get]
func (h *Handlers) ListLoads(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.svc.HistoryVersion(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"loads:%d:%d:%d:%d"`, count, ts, page, pageSize)
		if notModified(c, etag) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.svc.History(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListLoadsResponse{
		Loads:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}
