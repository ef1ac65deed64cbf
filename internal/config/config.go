// Package config reads the navigator's settings from the environment.
//
// Settings are grouped by the component that consumes them. Load never
// silently ignores a malformed value: every variable that is set but cannot
// be parsed is reported, together with any range violations, in one joined
// error.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxUploadBytes    int64  // cap on a POST /loads body
	GinMode           string // debug|release|test
	BasePath          string // e.g. "/api/v1"
	Swagger           bool
}

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level  string
	Pretty bool
}

// StoreConfig locates the SQLite database that keeps load history and
// idempotency keys.
type StoreConfig struct {
	DBPath         string
	IdempotencyTTL time.Duration
}

// IndexConfig describes where resources come from and how searches are capped.
type IndexConfig struct {
	ResourcesPath string // CSV loaded at startup, optional
	Watch         bool   // reload ResourcesPath on change
	ResourceLimit int
	PageLimit     int
	MaxLimit      int // ceiling for a caller supplied limit
	MaxTokenRunes int // 0 indexes every substring
}

// RateConfig holds the token bucket parameters for both limiters.
type RateConfig struct {
	RPS       float64
	Burst     int
	LoadRPS   float64 // POST /loads only
	LoadBurst int
}

// CORSConfig lists the origins allowed to call the API. Empty allows all.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls Strict-Transport-Security.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig configures trace export.
type OTELConfig struct {
	Enabled     bool
	Endpoint    string // host:port of the OTLP gRPC collector
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

// Config is the complete runtime configuration.
type Config struct {
	HTTP     HTTPConfig
	Log      LogConfig
	Store    StoreConfig
	Index    IndexConfig
	Rate     RateConfig
	CORS     CORSConfig
	Security SecurityConfig
	OTEL     OTELConfig
}

// MustLoad is Load for callers that cannot start without a valid config.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load builds a Config from the environment and validates it.
func Load() (Config, error) {
	var e env
	cfg := Config{
		HTTP: HTTPConfig{
			Port:              e.str("PORT", "8080"),
			ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
			ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      e.duration("WRITE_TIMEOUT", 20*time.Second),
			IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
			MaxUploadBytes:    int64(e.integer("MAX_UPLOAD_BYTES", 32<<20)),
			GinMode:           ginMode(e.str("GIN_MODE", "release")),
			BasePath:          basePath(e.str("API_BASE_PATH", "/api/v1")),
			Swagger:           e.boolean("SWAGGER_ENABLED", false),
		},
		Log: LogConfig{
			Level:  logLevel(e.str("LOG_LEVEL", "info")),
			Pretty: e.boolean("LOG_PRETTY", false),
		},
		Store: StoreConfig{
			DBPath:         strings.TrimSpace(e.str("DB_PATH", "navigator.db")),
			IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Index: IndexConfig{
			ResourcesPath: strings.TrimSpace(e.str("RESOURCES_PATH", "")),
			Watch:         e.boolean("WATCH_RESOURCES", false),
			ResourceLimit: e.integer("RESOURCE_LIMIT", 20),
			PageLimit:     e.integer("PAGE_LIMIT", 5),
			MaxLimit:      e.integer("MAX_LIMIT", 100),
			MaxTokenRunes: e.integer("MAX_TOKEN_RUNES", 24),
		},
		Rate: RateConfig{
			RPS:       e.float("RATE_RPS", 20),
			Burst:     e.integer("RATE_BURST", 40),
			LoadRPS:   e.float("LOAD_RATE_RPS", 0.2),
			LoadBurst: e.integer("LOAD_RATE_BURST", 2),
		},
		CORS: CORSConfig{
			AllowedOrigins: e.list("CORS_ALLOWED_ORIGINS"),
		},
		Security: SecurityConfig{
			EnableHSTS: e.boolean("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		OTEL: OTELConfig{
			Enabled:     e.boolean("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.boolean("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "go-console-navigator"),
			SampleRatio: e.float("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	if err := errors.Join(append(e.errs, cfg.validate()...)...); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg Config) validate() []error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	h := cfg.HTTP
	check(strings.TrimSpace(h.Port) != "", "PORT must not be empty")
	check(h.ReadTimeout > 0 && h.ReadHeaderTimeout > 0 && h.WriteTimeout > 0 && h.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(h.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")
	check(h.MaxUploadBytes > 0, "MAX_UPLOAD_BYTES must be > 0")

	check(cfg.Log.Level != "", "LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")

	check(cfg.Store.DBPath != "", "DB_PATH must not be empty")
	check(cfg.Store.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")

	ix := cfg.Index
	check(!ix.Watch || ix.ResourcesPath != "", "WATCH_RESOURCES requires RESOURCES_PATH")
	check(ix.ResourceLimit >= 1, "RESOURCE_LIMIT must be >= 1")
	check(ix.PageLimit >= 1, "PAGE_LIMIT must be >= 1")
	check(ix.MaxLimit >= ix.ResourceLimit, "MAX_LIMIT must be >= RESOURCE_LIMIT")
	check(ix.MaxTokenRunes >= 0, "MAX_TOKEN_RUNES must be >= 0")

	r := cfg.Rate
	check(r.RPS >= 0, "RATE_RPS must be >= 0")
	check(r.Burst >= 1, "RATE_BURST must be >= 1")
	check(r.LoadRPS >= 0, "LOAD_RATE_RPS must be >= 0")
	check(r.LoadBurst >= 1, "LOAD_RATE_BURST must be >= 1")

	check(cfg.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(cfg.OTEL.SampleRatio >= 0 && cfg.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables and collects parse failures.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) bad(k, v, want string) {
	e.errs = append(e.errs, fmt.Errorf("%s: %q is not %s", k, v, want))
}

func (e *env) str(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.bad(k, v, "an integer")
		return def
	}
	return n
}

func (e *env) float(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.bad(k, v, "a number")
		return def
	}
	return f
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.bad(k, v, "a duration")
		return def
	}
	return d
}

func (e *env) boolean(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.bad(k, v, "a boolean")
	return def
}

// list splits a comma separated variable, dropping blank entries.
func (e *env) list(k string) []string {
	v, ok := e.lookup(k)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// logLevel maps "warning" to "warn" and returns "" for unknown levels.
func logLevel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "debug", "info", "warn", "error", "fatal", "panic":
		return s
	}
	return ""
}

// ginMode falls back to release for anything gin does not know.
func ginMode(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug", "release", "test":
		return s
	}
	return "release"
}

// basePath returns p with exactly one leading slash and no trailing slash.
func basePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
