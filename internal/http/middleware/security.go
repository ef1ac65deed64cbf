package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security on HTTPS requests. Only
	// set it when traffic is HTTPS end to end.
	EnableHSTS bool
	// HSTSMaxAge defaults to 180 days.
	HSTSMaxAge time.Duration
}

// SecurityHeaders hardens API responses.
//
// Reads (GET, HEAD) get Cache-Control: no-cache so clients revalidate the
// weak ETags of /index and /loads instead of trusting a stale copy. Every
// other method gets no-store: upload responses describe server state that
// changes with the next load. Handlers that set Cache-Control themselves
// win, because the header is written before c.Next.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains; preload", int(maxAge.Seconds()))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			h.Set("Cache-Control", "no-cache")
		default:
			h.Set("Cache-Control", "no-store")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(HeaderRequestID) != "" {
			exposeHeader(h, HeaderRequestID)
		}
		c.Next()
	}
}

// exposeHeader appends name to Access-Control-Expose-Headers once.
func exposeHeader(h http.Header, name string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	switch {
	case cur == "":
		h.Set(key, name)
	case !strings.Contains(strings.ToLower(cur), strings.ToLower(name)):
		h.Set(key, cur+", "+name)
	}
}

// isHTTPS reports TLS on the connection or X-Forwarded-Proto: https from a
// proxy.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
