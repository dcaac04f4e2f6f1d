package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	MongoURI          string
	MongoDB           string
	MongoTransactions bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool

	CORSOrigins     []string
	CatalogCacheTTL time.Duration
	UploadDir       string
	RequestTimeout  time.Duration
	LoginRatePerMin int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an env lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Env:           get("APP_ENV", "production"),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       get("MONGO_DB", "dukaan"),
		RedisAddr:     get("REDIS_ADDR", "localhost:6379"),
		RedisPassword: get("REDIS_PASSWORD", ""),
		UploadDir:     get("UPLOAD_DIR", "static/uploads"),
	}

	cfg.Port = get("PORT", ":8080")
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	var err error
	if cfg.MongoTransactions, err = parseBool("MONGO_TRANSACTIONS", get("MONGO_TRANSACTIONS", "true")); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = parseBool("COOKIE_SECURE", get("COOKIE_SECURE", "true")); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = parseInt("REDIS_DB", get("REDIS_DB", "0")); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerMin, err = parseInt("LOGIN_RATE_PER_MIN", get("LOGIN_RATE_PER_MIN", "5")); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration("SESSION_TTL", get("SESSION_TTL", "168h")); err != nil {
		return nil, err
	}
	if cfg.CatalogCacheTTL, err = parseDuration("CATALOG_CACHE_TTL", get("CATALOG_CACHE_TTL", "10m")); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", get("REQUEST_TIMEOUT", "10s")); err != nil {
		return nil, err
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	secret := get("SESSION_SECRET", "")
	if secret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET must be set")
		}
		secret = "dev-session-secret"
	}
	cfg.SessionSecret = []byte(secret)

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func parseBool(key, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
