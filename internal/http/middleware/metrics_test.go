package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/go-console-navigator/internal/observability"
)

func TestMetrics_RouteTemplateAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/resolve/:type", func(c *gin.Context) { c.String(http.StatusOK, c.Param("type")) })
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	count := func(route, status string) float64 {
		return testutil.ToFloat64(observability.HTTPRequests.WithLabelValues("GET", route, status))
	}
	baseTpl := count("/resolve/:type", "200")
	baseMiss := count(unmatchedRoute, "404")
	baseEmpty := count("/empty", "204")

	for _, p := range []string{"/resolve/sqs", "/resolve/lambda", "/nope/abc", "/empty"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	if got := count("/resolve/:type", "200") - baseTpl; got != 2 {
		t.Errorf("template route delta = %v, want 2", got)
	}
	if got := count(unmatchedRoute, "404") - baseMiss; got != 1 {
		t.Errorf("unmatched delta = %v, want 1", got)
	}
	if got := count("/empty", "204") - baseEmpty; got != 1 {
		t.Errorf("no-body route delta = %v, want 1", got)
	}
	if n := testutil.ToFloat64(observability.HTTPInflight); n != 0 {
		t.Errorf("inflight = %v after requests finished", n)
	}
}
