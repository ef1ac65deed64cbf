package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/services"
)

//
// DTOs
//

// IndexResponse describes the live index and the loader lifecycle.
type IndexResponse struct {
	State     string           `json:"state" example:"ready"`
	LastError string           `json:"last_error,omitempty"`
	Index     domain.IndexInfo `json:"index"`
}

// SearchResponse wraps the ordered hits for a query.
type SearchResponse struct {
	Query string         `json:"query" example:"prod"`
	Kind  string         `json:"kind" example:"both"`
	Hits  []services.Hit `json:"hits"`
}

// ResolveResponse carries a console deep link.
type ResolveResponse struct {
	URL string `json:"url" example:"https://eu-west-1.console.aws.amazon.com/lambda/home?region=eu-west-1#/functions/MyFn"`
}

// ResourceTypesResponse lists the types the resolver understands.
type ResourceTypesResponse struct {
	Types []string `json:"types"`
}

// PagesResponse returns the console page catalog.
type PagesResponse struct {
	Version string              `json:"version" example:"2024.1"`
	Pages   []domain.PageRecord `json:"pages"`
}

//
// Handlers
//

// GetIndex godoc
// @ID          getIndex
// @Summary     Current index
// @Description Returns the summary of the live index (file, counts, profiles, regions) and the loader state.
// @Description Supports weak ETag via If-None-Match and may return 304.
// @Tags        Index
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
//
// @Success     200  {object} handlers.IndexResponse
// @Header      200  {string} ETag  "Weak ETag of the live load"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Nothing loaded yet"
// @Router      /index [get]
func (h *Handlers) GetIndex(c *gin.Context) {
	info, err := h.svc.Info(c.Request.Context())
	if errors.Is(err, services.ErrNoIndex) {
		fail(c, http.StatusNotFound, ErrCodeNoIndex, "no resource file loaded")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	state, lastErr := h.svc.State()
	// a failed reload keeps LoadID but changes the attempt count
	etag := fmt.Sprintf(`W/"index:%s:%s:%d"`, info.LoadID, state, h.svc.LoadAttempts())
	if notModified(c, etag) {
		c.Status(http.StatusNotModified)
		return
	}
	resp := IndexResponse{State: state.String(), Index: info}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	ok(c, http.StatusOK, resp)
}

// Search godoc
// @ID          search
// @Summary     Search resources and console pages
// @Description Returns hits whose name or type contains at least one word of the query as a substring, case-insensitively.
// @Description Hits matching more of the query rank first. At most limit hits are returned in total.
// @Description With kind=both, page hits come first and the last page hit has is_group_end set.
// @Tags        Search
// @Produce     json
//
// @Param       q      query  string  true  "Query"                      example(prod)
// @Param       kind   query  string  false "resources, pages or both"   Enums(resources, pages, both) default(both)
// @Param       limit  query  int     false "Maximum hits, pages included"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.SearchResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid kind or limit above MAX_LIMIT"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /search [get]
func (h *Handlers) Search(c *gin.Context) {
	kind, err := services.ParseKind(c.Query("kind"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind must be resources, pages or both")
		return
	}
	q := c.Query("q")
	limit := queryInt(c, "limit", 0)

	hits, err := h.svc.Search(c.Request.Context(), q, kind, limit)
	if errors.Is(err, services.ErrLimitTooLarge) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Kind: string(kind), Hits: hits})
}

// Resolve godoc
// @ID          resolve
// @Summary     Resolve a console deep link
// @Description Builds the AWS console URL for a resource. Compound names use a comma ("sg-123,vpc-1").
// @Tags        Resolve
// @Produce     json
//
// @Param       type     query  string  true  "Resource type"  example(lambda)
// @Param       name     query  string  true  "Resource name"  example(MyFn)
// @Param       region   query  string  false "AWS region"     example(eu-west-1)
// @Param       profile  query  string  false "AWS profile"    example(dev)
//
// @Success     200  {object} handlers.ResolveResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing type or name"
// @Failure     404  {object} handlers.ErrorResponse "Unknown resource type"
// @Router      /resolve [get]
func (h *Handlers) Resolve(c *gin.Context) {
	r := domain.ResourceRecord{
		Type:    strings.TrimSpace(c.Query("type")),
		Name:    strings.TrimSpace(c.Query("name")),
		Region:  strings.TrimSpace(c.Query("region")),
		Profile: strings.TrimSpace(c.Query("profile")),
	}
	if r.Type == "" || r.Name == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type and name are required")
		return
	}

	u, err := h.svc.Resolve(c.Request.Context(), r)
	if errors.Is(err, services.ErrUnknownType) {
		fail(c, http.StatusNotFound, ErrCodeUnknownType, fmt.Sprintf("unknown resource type %q", r.Type))
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ResolveResponse{URL: u})
}

// ResourceTypes godoc
// @ID          resourceTypes
// @Summary     Resolvable resource types
// @Tags        Resolve
// @Produce     json
// @Success     200  {object} handlers.ResourceTypesResponse
// @Router      /resource-types [get]
func (h *Handlers) ResourceTypes(c *gin.Context) {
	ok(c, http.StatusOK, ResourceTypesResponse{Types: h.svc.ResourceTypes()})
}

// Pages godoc
// @ID          pages
// @Summary     Console page catalog
// @Tags        Search
// @Produce     json
// @Success     200  {object} handlers.PagesResponse
// @Router      /pages [get]
func (h *Handlers) Pages(c *gin.Context) {
	pages, version := h.svc.Pages()
	ok(c, http.StatusOK, PagesResponse{Version: version, Pages: pages})
}
