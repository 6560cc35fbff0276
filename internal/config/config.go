// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gameshots/uploader/internal/apperr"
	"github.com/gameshots/uploader/internal/storage"
)

// Namespace policies.
const (
	PolicyDigits  = "digits"
	PolicySegment = "segment"
)

// Config holds all runtime configuration for the service. It is read once at
// startup and never mutated afterwards.
type Config struct {
	Port        string
	AppEnv      string
	CORSOrigins []string

	// Optional grant ledger. Empty disables it.
	DatabaseURL string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageDriver         string
	StorageRegion         string
	StorageEndpoint       string // reachable from this process, e.g. "http://minio:9000"
	StoragePublicEndpoint string // reachable from browsers, e.g. "http://localhost:9000"
	StorageBucket         string
	StoragePublicBucket   string
	StorageAccessKey      string
	StorageSecretKey      string
	StorageForcePathStyle bool
	StoragePublicRead     bool
	StorageEnsureBucket   bool

	// Uploads
	KeyPrefix       string
	NamespacePolicy string
	SignedURLTTL    time.Duration
	ListMaxItems    int
	SignConcurrency int

	// raw values that failed to parse; reported by Validate
	parseErrors []string
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	return fromEnv()
}

func fromEnv() *Config {
	c := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		CORSOrigins: parseList(os.Getenv("CORS_ORIGINS")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StorageDriver:    strings.ToLower(getEnv("STORAGE_DRIVER", storage.DriverMinio)),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageEndpoint:  strings.TrimRight(getEnv("STORAGE_ENDPOINT", "http://localhost:9000"), "/"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "uploads"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),

		KeyPrefix:       strings.Trim(getEnv("KEY_PREFIX", "games"), "/"),
		NamespacePolicy: strings.ToLower(getEnv("NAMESPACE_POLICY", PolicyDigits)),
	}

	// A single endpoint serves both networks unless a public one is given.
	c.StoragePublicEndpoint = strings.TrimRight(getEnv("STORAGE_PUBLIC_ENDPOINT", c.StorageEndpoint), "/")
	c.StoragePublicBucket = getEnv("STORAGE_PUBLIC_BUCKET", c.StorageBucket)

	c.StorageForcePathStyle = c.boolEnv("STORAGE_FORCE_PATH_STYLE", true)
	c.StoragePublicRead = c.boolEnv("STORAGE_PUBLIC_READ", false)
	c.StorageEnsureBucket = c.boolEnv("STORAGE_ENSURE_BUCKET", false)

	c.SignedURLTTL = c.durationEnv("SIGNED_URL_TTL", 5*time.Minute)
	c.ListMaxItems = c.intEnv("LIST_MAX_ITEMS", 200)
	c.SignConcurrency = c.intEnv("SIGN_CONCURRENCY", 8)

	return c
}

// Validate reports every missing or malformed setting as a single
// ConfigurationError.
func (c *Config) Validate() error {
	problems := append([]string(nil), c.parseErrors...)

	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, name+" is required")
		}
	}
	need("STORAGE_ACCESS_KEY", c.StorageAccessKey)
	need("STORAGE_SECRET_KEY", c.StorageSecretKey)
	need("STORAGE_BUCKET", c.StorageBucket)
	need("STORAGE_REGION", c.StorageRegion)

	for name, v := range map[string]string{
		"STORAGE_ENDPOINT":        c.StorageEndpoint,
		"STORAGE_PUBLIC_ENDPOINT": c.StoragePublicEndpoint,
	} {
		if err := checkEndpoint(v); err != nil {
			problems = append(problems, fmt.Sprintf("%s %v", name, err))
		}
	}

	switch c.StorageDriver {
	case storage.DriverMinio, storage.DriverS3:
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_DRIVER %q is not one of minio, s3", c.StorageDriver))
	}
	switch c.NamespacePolicy {
	case PolicyDigits, PolicySegment:
	default:
		problems = append(problems, fmt.Sprintf("NAMESPACE_POLICY %q is not one of digits, segment", c.NamespacePolicy))
	}

	if err := storage.CheckTTL(c.SignedURLTTL); err != nil {
		problems = append(problems, "SIGNED_URL_TTL "+err.Error())
	}
	if c.ListMaxItems <= 0 || c.ListMaxItems > storage.MaxListItems {
		problems = append(problems, fmt.Sprintf("LIST_MAX_ITEMS must be between 1 and %d", storage.MaxListItems))
	}
	if c.SignConcurrency <= 0 {
		problems = append(problems, "SIGN_CONCURRENCY must be positive")
	}

	if len(problems) > 0 {
		return apperr.Configuration(problems...)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LedgerEnabled reports whether upload grants are recorded in the database.
func (c *Config) LedgerEnabled() bool {
	return c.DatabaseURL != ""
}

func checkEndpoint(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("has no host")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) boolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s %q is not a boolean", key, v))
		return fallback
	}
	return b
}

func (c *Config) intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s %q is not an integer", key, v))
		return fallback
	}
	return n
}

func (c *Config) durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.parseErrors = append(c.parseErrors, fmt.Sprintf("%s %q is not a duration", key, v))
		return fallback
	}
	return d
}

func parseList(s string) []string {
	if s == "" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
