package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration. It is loaded once in main and
// passed to constructors; nothing reads the environment after startup.
type Config struct {
	Port string

	MongoURL          string
	MongoDB           string
	MongoTransactions bool
	StoreDriver       string

	JWTSecret []byte
	TokenTTL  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string

	CORSOrigins []string
	UploadDir   string
	PublicURL   string

	// RateLimitPerMinute and RateLimitBurst bound the public write routes
	// per client address.
	RateLimitPerMinute int
	RateLimitBurst     int
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Load reads .env when present, then the environment. It fails when a
// required key is missing so that the process refuses to start.
func Load() (*Config, error) {
	// .env is optional; the real environment always wins.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Port:          normalizePort(get("PORT", "8080")),
		MongoURL:      get("MONGO_URL", ""),
		MongoDB:       get("MONGO_DB", "recipebox"),
		StoreDriver:   strings.ToLower(get("STORE_DRIVER", DriverMongo)),
		JWTSecret:     []byte(get("JWT_SECRET", "")),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		LogLevel:      get("LOG_LEVEL", "info"),
		LogFormat:     get("LOG_FORMAT", "json"),
		CORSOrigins:   splitList(get("CORS_ORIGINS", "*")),
		UploadDir:     get("UPLOAD_DIR", "static/uploads"),
		PublicURL:     strings.TrimRight(get("PUBLIC_URL", "http://localhost:8080"), "/"),
	}

	var missing []string
	if len(cfg.JWTSecret) == 0 {
		missing = append(missing, "JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case DriverMongo:
		if cfg.MongoURL == "" {
			missing = append(missing, "MONGO_URL")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.MongoTransactions, err = strconv.ParseBool(get("MONGO_TRANSACTIONS", "false")); err != nil {
		return nil, fmt.Errorf("MONGO_TRANSACTIONS: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.RateLimitPerMinute, err = strconv.Atoi(get("RATE_LIMIT_PER_MINUTE", "30")); err != nil || cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be a positive integer")
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(get("RATE_LIMIT_BURST", "5")); err != nil || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be a positive integer")
	}

	return cfg, nil
}

func normalizePort(port string) string {
	if port[0] != ':' && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
