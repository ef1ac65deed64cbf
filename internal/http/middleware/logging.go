// Package middleware holds the Gin middleware of the navigator API: request
// ids, access logs, panic recovery, metrics, idempotency keys, rate limits
// and security headers.
//
// Recommended order: RequestID, Logger, Recovery, so panics and access logs
// carry the request id.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

const (
	requestIDKey = "requestID"
	loggerKey    = "logger"

	// maxRequestIDLen bounds ids accepted from clients; longer or
	// non-printable ids are replaced.
	maxRequestIDLen = 128
	// maxQueryLogLen caps the logged raw query. Search queries are short;
	// anything longer is noise.
	maxQueryLogLen = 512
)

// quietRoutes are logged at debug level: scrapers and probes hit them
// constantly.
var quietRoutes = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestID reuses a well-formed X-Request-ID from the client or generates a
// UUID, stores it in the context and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// RequestIDFrom returns the id set by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one access log line per request and attaches a
// request-scoped logger both to the Gin context (see LoggerFrom) and to the
// request context, where zerolog.Ctx finds it in the service layer.
//
// Level: error for 5xx or recorded gin errors, warn for 4xx, info otherwise,
// debug for quietRoutes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("client_id", ClientID(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		case quietRoutes[route]:
			ev = l.Debug()
		default:
			ev = l.Info()
		}
		ev.
			Str("path", c.Request.URL.Path).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLen)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Bool("replayed", IsReplay(c)).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns a panic into a 500 with the standard error body, unless the
// handler already started writing.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := RequestIDFrom(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(HeaderRequestID, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the logger attached by Logger, or the global logger.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.Logger
	return &l
}

// truncate cuts s to max bytes plus an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.ToValidUTF8(s[:max], "") + "…"
}
