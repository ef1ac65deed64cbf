package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return &buf
}

// logLines decodes the JSON lines in buf.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRequestID_ReuseGenerateAndReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/rid", func(c *gin.Context) { seen = RequestIDFrom(c) })

	cases := []struct {
		name, in string
		reuse    bool
	}{
		{"absent", "", false},
		{"well formed", "abc-123", true},
		{"with space", "abc 123", false},
		{"too long", strings.Repeat("x", maxRequestIDLen+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/rid", nil)
			if tc.in != "" {
				req.Header.Set(HeaderRequestID, tc.in)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			got := w.Header().Get(HeaderRequestID)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if (got == tc.in) != tc.reuse {
				t.Fatalf("in %q -> %q, reuse want %v", tc.in, got, tc.reuse)
			}
		})
	}
}

func TestLogger_LevelsRouteAndQuietHealthChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/search", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/resolve", func(c *gin.Context) { c.String(http.StatusBadRequest, "bad") })
	r.GET("/loads", func(c *gin.Context) { c.String(http.StatusInternalServerError, "err") })
	r.GET("/index", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.String(http.StatusOK, "ok")
	})
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	want := []struct{ path, level, route string }{
		{"/search?q=orders", "info", "/search"},
		{"/resolve", "warn", "/resolve"},
		{"/loads", "error", "/loads"},
		{"/index", "error", "/index"},
		{"/health", "debug", "/health"},
		{"/nope", "warn", unmatchedRoute},
	}
	for _, w := range want {
		req := httptest.NewRequest(http.MethodGet, w.path, nil)
		req.Header.Set(HeaderClientID, "cli-1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	lines := logLines(t, buf)
	if len(lines) != len(want) {
		t.Fatalf("got %d log lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i, w := range want {
		l := lines[i]
		if l["level"] != w.level || l["route"] != w.route || l["client_id"] != "cli-1" || l["request_id"] == "" {
			t.Errorf("%s: log = %v", w.path, l)
		}
	}
	if lines[0]["query"] != "q=orders" || lines[0]["status"] != float64(200) {
		t.Errorf("search log = %v", lines[0])
	}
	if lines[3]["errors"] == nil {
		t.Errorf("gin errors not logged: %v", lines[3])
	}
}

func TestLogger_ScopedLoggerReachesRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.POST("/loads", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		LoggerFrom(c).Info().Msg("from handler")
		c.Status(http.StatusCreated)
	})
	req := httptest.NewRequest(http.MethodPost, "/loads", nil)
	req.Header.Set(HeaderRequestID, "rid-ctx")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("lines = %d:\n%s", len(lines), buf.String())
	}
	for _, l := range lines {
		if l["request_id"] != "rid-ctx" {
			t.Errorf("line missing request id: %v", l)
		}
	}
}

func TestLoggerFrom_FallsBackToGlobal(t *testing.T) {
	buf := captureLogger(t)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	LoggerFrom(c).Info().Msg("plain")
	if !strings.Contains(buf.String(), `"message":"plain"`) {
		t.Fatalf("fallback logger output = %q", buf.String())
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("after write")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "rid-p")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["request_id"] != "rid-p" || body["code"] != "internal_error" {
		t.Fatalf("body = %v", body)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "kaboom") {
		t.Fatalf("panic not logged: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("late panic body = %q", w.Body.String())
	}
}

func TestTruncate(t *testing.T) {
	if truncate("q=orders", 20) != "q=orders" || truncate("abc", 0) != "abc" {
		t.Fatal("truncate changed short input")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate = %q", got)
	}
	// never splits a rune
	if got := truncate("aé", 2); got != "a…" {
		t.Fatalf("truncate multibyte = %q", got)
	}
}
