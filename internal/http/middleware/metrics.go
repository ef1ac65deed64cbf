package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-console-navigator/internal/observability"
)

// unmatchedRoute labels requests no route matched, so probes for random
// paths cannot blow up series cardinality.
const unmatchedRoute = "unmatched"

// Metrics feeds the observability.HTTP* collectors. The route label is the
// registered template (c.FullPath()), never the raw URL.
//
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		observability.HTTPInflight.Inc()
		defer observability.HTTPInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		observability.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		observability.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		// Size is -1 when nothing was written.
		if size := c.Writer.Size(); size >= 0 {
			observability.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
