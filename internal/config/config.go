package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultLogMode         = "dev"
	defaultCatalogTimeout  = "10s"
	defaultCatalogCacheTTL = "5m"
	defaultJWTSecret       = "change-me-jwt-secret"
)

// Runtime holds everything the API process reads from the environment.
type Runtime struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	LogMode         string
	JWTSecret       string
	CatalogBaseURL  string
	CatalogAPIKey   string
	CatalogTimeout  time.Duration
	CatalogCacheTTL time.Duration
}

func Load() (*Runtime, error) {
	cfg := &Runtime{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = envOr("HTTP_ADDR", defaultHTTPAddr)
	cfg.LogMode = envOr("LOG_MODE", defaultLogMode)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	cfg.JWTSecret = envOr("JWT_SECRET", defaultJWTSecret)
	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	cfg.CatalogBaseURL = strings.TrimSpace(os.Getenv("CATALOG_BASE_URL"))
	if cfg.CatalogBaseURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL is empty")
	}
	cfg.CatalogAPIKey = strings.TrimSpace(os.Getenv("CATALOG_API_KEY"))

	var err error
	cfg.CatalogTimeout, err = durationOr("CATALOG_TIMEOUT", defaultCatalogTimeout)
	if err != nil {
		return nil, err
	}
	cfg.CatalogCacheTTL, err = durationOr("CATALOG_CACHE_TTL", defaultCatalogCacheTTL)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func durationOr(key, def string) (time.Duration, error) {
	raw := envOr(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
