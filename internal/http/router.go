// Package httpapi mounts the navigator API on a gin engine.
//
// Middleware runs in this order:
//
//	otel → request id → access log → recovery → body cap → gzip → metrics
//	→ idempotency → rate limit → CORS → security headers
//
// Idempotency runs before rate limiting so a replayed upload never spends a
// token. Logging wraps recovery so a panic still produces an access log line.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-console-navigator/docs"
	"github.com/tbourn/go-console-navigator/internal/config"
	"github.com/tbourn/go-console-navigator/internal/http/handlers"
	"github.com/tbourn/go-console-navigator/internal/http/middleware"
	"github.com/tbourn/go-console-navigator/internal/services"
)

// maxIdempotencyKeyLen bounds the Idempotency-Key header.
const maxIdempotencyKeyLen = 200

// RegisterRoutes installs the middleware chain, the operational endpoints
// (/health, /metrics, optional /swagger) and the API under cfg.HTTP.BasePath.
func RegisterRoutes(r *gin.Engine, svc *services.NavigatorService, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(
		otelgin.Middleware(cfg.OTEL.ServiceName),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		limitBody(cfg.HTTP.MaxUploadBytes),
		gzip.Gzip(gzip.DefaultCompression),
		middleware.Metrics(),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{
			MaxLen: maxIdempotencyKeyLen,
			Scope:  services.IdempotencyScope,
		}, svc.HasReplay),
		middleware.NewRateLimiter("api", cfg.Rate.RPS, cfg.Rate.Burst, middleware.KeyByClient()).Handler(),
		corsHandler(cfg.CORS.AllowedOrigins),
		middleware.SecurityHeaders(middleware.SecurityOptions{
			EnableHSTS: cfg.Security.EnableHSTS,
			HSTSMaxAge: cfg.Security.HSTSMaxAge,
		}),
	)

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(svc))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.HTTP.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	mountAPI(groupWithPrefix(r, cfg.HTTP.BasePath), handlers.New(svc), cfg.Rate)
}

func mountAPI(api *gin.RouterGroup, h *handlers.Handlers, rate config.RateConfig) {
	// a load rebuilds the whole index, so uploads get their own small budget
	uploads := middleware.NewRateLimiter("loads", rate.LoadRPS, rate.LoadBurst, middleware.KeyByClient())

	api.POST("/loads", uploads.Handler(), h.PostLoad)
	api.GET("/loads", h.ListLoads)
	api.GET("/index", h.GetIndex)

	api.GET("/search", h.Search)
	api.GET("/pages", h.Pages)
	api.GET("/resolve", h.Resolve)
	api.GET("/resource-types", h.ResourceTypes)
}

// health reports liveness plus the loader state, so an orchestrator can tell
// a process that is up but still waiting for its first index.
func health(svc *services.NavigatorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, _ := svc.State()
		c.JSON(http.StatusOK, gin.H{"status": "ok", "index": state.String()})
	}
}

// corsHandler allows every origin when origins is empty. Credentials are
// never allowed, which keeps the wildcard legal.
func corsHandler(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderClientID, middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{
			middleware.HeaderRequestID, middleware.HeaderIdempotencyReplayed,
			"Content-Length", "ETag", "Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}

// limitBody caps every request body at maxBytes. Reads past the cap fail with
// *http.MaxBytesError.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix treats "" and "/" as the engine root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
