package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type lookupCall struct {
	clientID, scope, key string
	now                  time.Time
}

// recordingLookup answers with hit/err and records every call.
func recordingLookup(hit bool, err error) (IdempotencyLookup, *[]lookupCall) {
	var calls []lookupCall
	return func(_ context.Context, clientID, scope, key string, now time.Time) (bool, error) {
		calls = append(calls, lookupCall{clientID, scope, key, now})
		return hit, err
	}, &calls
}

type idemResult struct {
	Key    string
	HasKey bool
	Replay bool
	Bypass bool
}

// serveIdem runs one request through the validator and reports what the
// handler observed. result is nil when the validator aborted.
func serveIdem(t *testing.T, opts IdempotencyOptions, lookup IdempotencyLookup, req *http.Request) (*httptest.ResponseRecorder, *idemResult) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyValidator(opts, lookup))
	var res *idemResult
	r.Handle(req.Method, "/loads", func(c *gin.Context) {
		k, ok := GetIdempotencyKey(c)
		res = &idemResult{Key: k, HasKey: ok, Replay: IsReplay(c), Bypass: IsRateBypass(c)}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, res
}

func keyed(method, key string) *http.Request {
	req := httptest.NewRequest(method, "/loads", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	return req
}

func TestIdempotencyValidator_NoKey(t *testing.T) {
	lookup, calls := recordingLookup(true, nil)
	w, res := serveIdem(t, IdempotencyOptions{}, lookup, keyed(http.MethodPost, ""))
	if w.Code != http.StatusOK || res == nil || res.HasKey || res.Replay {
		t.Fatalf("code=%d res=%+v", w.Code, res)
	}
	if len(*calls) != 0 {
		t.Fatalf("lookup called without a key: %+v", *calls)
	}
}

func TestIdempotencyValidator_SafeMethodsIgnoreKey(t *testing.T) {
	lookup, calls := recordingLookup(true, nil)
	_, res := serveIdem(t, IdempotencyOptions{}, lookup, keyed(http.MethodGet, "not valid at all!"))
	if res == nil || res.HasKey || res.Replay {
		t.Fatalf("GET must pass through untouched: %+v", res)
	}
	if len(*calls) != 0 {
		t.Fatal("lookup called for GET")
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	cases := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long for custom cap", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"too long for default cap", IdempotencyOptions{}, strings.Repeat("k", defaultIdemMaxLen+1)},
		{"space", IdempotencyOptions{}, "load 1"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, res := serveIdem(t, tc.opts, nil, keyed(http.MethodPost, tc.key))
			if w.Code != http.StatusBadRequest || res != nil {
				t.Fatalf("code=%d res=%+v", w.Code, res)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["code"] != "bad_idempotency_key" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestIdempotencyValidator_AcceptsKeyWithoutLookup(t *testing.T) {
	w, res := serveIdem(t, IdempotencyOptions{}, nil, keyed(http.MethodPost, "load-2024.06:01~a"))
	if w.Code != http.StatusOK || res == nil {
		t.Fatalf("code=%d", w.Code)
	}
	if !res.HasKey || res.Key != "load-2024.06:01~a" || res.Replay || res.Bypass {
		t.Fatalf("res = %+v", res)
	}
}

func TestIdempotencyValidator_Lookup(t *testing.T) {
	t.Run("miss passes client and default scope", func(t *testing.T) {
		lookup, calls := recordingLookup(false, nil)
		req := keyed(http.MethodPost, "key-1")
		req.Header.Set(HeaderClientID, "cli-3")
		before := time.Now().UTC()

		_, res := serveIdem(t, IdempotencyOptions{}, lookup, req)
		if res == nil || res.Replay || res.Bypass {
			t.Fatalf("miss must not replay: %+v", res)
		}
		if len(*calls) != 1 {
			t.Fatalf("calls = %d", len(*calls))
		}
		got := (*calls)[0]
		if got.clientID != "cli-3" || got.scope != defaultIdemScope || got.key != "key-1" {
			t.Fatalf("call = %+v", got)
		}
		if got.now.Before(before) || got.now.Location() != time.UTC {
			t.Fatalf("now = %v", got.now)
		}
	})

	t.Run("hit flags replay and bypass", func(t *testing.T) {
		lookup, calls := recordingLookup(true, nil)
		_, res := serveIdem(t, IdempotencyOptions{Scope: "loads"}, lookup, keyed(http.MethodPost, "k-9"))
		if res == nil || !res.Replay || !res.Bypass {
			t.Fatalf("hit: %+v", res)
		}
		if (*calls)[0].scope != "loads" || !strings.HasPrefix((*calls)[0].clientID, "ip:") {
			t.Fatalf("call = %+v", (*calls)[0])
		}
	})

	t.Run("error is a miss", func(t *testing.T) {
		lookup, _ := recordingLookup(true, errors.New("db down"))
		w, res := serveIdem(t, IdempotencyOptions{}, lookup, keyed(http.MethodPost, "k-err"))
		if w.Code != http.StatusOK || res == nil || res.Replay || res.Bypass {
			t.Fatalf("code=%d res=%+v", w.Code, res)
		}
		if !res.HasKey {
			t.Fatal("key should still be available to the handler")
		}
	})
}

func TestClientID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/loads", nil)
	c.Request.RemoteAddr = "198.51.100.4:5555"

	if got := ClientID(c); got != "ip:198.51.100.4" {
		t.Fatalf("ip fallback = %q", got)
	}

	c.Request.Header.Set(HeaderClientID, "has space")
	if got := ClientID(c); got != "ip:198.51.100.4" {
		t.Fatalf("malformed header should be ignored, got %q", got)
	}

	c.Request.Header.Set(HeaderClientID, "cli-1")
	if got := ClientID(c); got != "cli-1" {
		t.Fatalf("header = %q", got)
	}

	c.Set(ContextKeyClientID, 42)
	if got := ClientID(c); got != "cli-1" {
		t.Fatalf("non-string context value should be ignored, got %q", got)
	}
	c.Set(ContextKeyClientID, "u1")
	if got := ClientID(c); got != "u1" {
		t.Fatalf("context value = %q", got)
	}
}
