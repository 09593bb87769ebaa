// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, the CRM gateway, the
// activation session store, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-warehouse-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// CRMConfig defines how the CRM validation gateway is reached.
type CRMConfig struct {
	BaseURL   string        // CRM_BASE_URL, e.g. "http://localhost:1337/api"
	APIToken  string        // CRM_API_TOKEN bearer token; empty disables auth header
	Timeout   time.Duration // CRM_TIMEOUT per-request deadline
	Retries   int           // CRM_RETRIES on transport errors / 5xx (4xx never retried)
	RetryWait time.Duration // CRM_RETRY_WAIT base wait between retries
}

// ActivationConfig tunes the activation state machine.
type ActivationConfig struct {
	PendingTTL     time.Duration // ACTIVATION_PENDING_TTL for begin→submit window
	ConflictPolicy string        // ACTIVATION_CONFLICT_POLICY: replace|reject
}

// SessionConfig selects the backing store for pending activations.
type SessionConfig struct {
	Backend       string // SESSION_BACKEND: memory|redis
	RedisAddr     string // REDIS_ADDR host:port
	RedisPassword string // REDIS_PASSWORD
	RedisDB       int    // REDIS_DB
}

// WebhookConfig controls the inbound CRM order webhook.
type WebhookConfig struct {
	Enabled bool   // WEBHOOK_ENABLED
	Secret  string // WEBHOOK_SECRET for HMAC-SHA256 signatures
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	ShutdownGrace     time.Duration // drain window on SIGTERM
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Database
	DBPath        string        // SQLite path
	DBMaxOpen     int           // max open connections
	DBMaxIdle     int           // max idle connections
	DBConnMaxLife time.Duration // connection max lifetime
	DBConnMaxIdle time.Duration // connection max idle time

	// External systems
	CRM        CRMConfig
	Activation ActivationConfig
	Session    SessionConfig
	Webhook    WebhookConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		ShutdownGrace:     getdur("SHUTDOWN_GRACE", 10*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Database
		DBPath:        getenv("DB_PATH", "warehouse.db"),
		DBMaxOpen:     getint("DB_MAX_OPEN", 10),
		DBMaxIdle:     getint("DB_MAX_IDLE", 10),
		DBConnMaxLife: getdur("DB_CONN_MAX_LIFE", 30*time.Minute),
		DBConnMaxIdle: getdur("DB_CONN_MAX_IDLE", 5*time.Minute),

		// CRM gateway
		CRM: CRMConfig{
			BaseURL:   strings.TrimRight(getenv("CRM_BASE_URL", "http://localhost:1337/api"), "/"),
			APIToken:  getenv("CRM_API_TOKEN", ""),
			Timeout:   getdur("CRM_TIMEOUT", 15*time.Second),
			Retries:   getint("CRM_RETRIES", 3),
			RetryWait: getdur("CRM_RETRY_WAIT", 500*time.Millisecond),
		},

		// Activation state machine
		Activation: ActivationConfig{
			PendingTTL:     getdur("ACTIVATION_PENDING_TTL", 15*time.Minute),
			ConflictPolicy: strings.ToLower(getenv("ACTIVATION_CONFLICT_POLICY", "replace")),
		},

		// Pending-session store
		Session: SessionConfig{
			Backend:       strings.ToLower(getenv("SESSION_BACKEND", "memory")),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
			RedisDB:       getint("REDIS_DB", 0),
		},

		// Order webhook
		Webhook: WebhookConfig{
			Enabled: getbool("WEBHOOK_ENABLED", false),
			Secret:  getenv("WEBHOOK_SECRET", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-warehouse-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.ShutdownGrace <= 0 {
		return cfg, errors.New("SHUTDOWN_GRACE must be > 0")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.DBMaxOpen < 1 || cfg.DBMaxIdle < 0 {
		return cfg, errors.New("DB_MAX_OPEN must be >= 1 and DB_MAX_IDLE >= 0")
	}
	if strings.TrimSpace(cfg.CRM.BaseURL) == "" {
		return cfg, errors.New("CRM_BASE_URL must not be empty")
	}
	if cfg.CRM.Timeout <= 0 {
		return cfg, errors.New("CRM_TIMEOUT must be > 0")
	}
	if cfg.CRM.Retries < 0 {
		return cfg, errors.New("CRM_RETRIES must be >= 0")
	}
	if cfg.CRM.RetryWait < 0 {
		return cfg, errors.New("CRM_RETRY_WAIT must be >= 0")
	}
	if cfg.Activation.PendingTTL <= 0 {
		return cfg, errors.New("ACTIVATION_PENDING_TTL must be > 0")
	}
	switch cfg.Activation.ConflictPolicy {
	case "replace", "reject":
	default:
		return cfg, errors.New("ACTIVATION_CONFLICT_POLICY must be one of: replace, reject")
	}
	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Session.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty when SESSION_BACKEND=redis")
		}
	default:
		return cfg, errors.New("SESSION_BACKEND must be one of: memory, redis")
	}
	if cfg.Webhook.Enabled && strings.TrimSpace(cfg.Webhook.Secret) == "" {
		return cfg, errors.New("WEBHOOK_SECRET must not be empty when WEBHOOK_ENABLED=true")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
