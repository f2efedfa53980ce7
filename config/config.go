package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted by STORAGE_BACKEND
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendGorm     = "gorm"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendLibSQL   = "libsql"
	BackendRedis    = "redis"
)

type Config struct {
	ServerPort  string
	Environment string
	// Key-value persistence
	StorageBackend string
	DataDir        string // file backend
	DBPath         string // gorm (sqlite dialect) and sqlite backends
	DBDialect      string // gorm backend: sqlite or postgres
	DatabaseURL    string // postgres backend and gorm postgres dialect
	RedisURL       string
	RedisPrefix    string
	// Turso (libsql backend)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Catalog
	CatalogPath  string
	SeedExamples bool
	// Export artifacts
	UploadDir             string
	ChromePath            string
	ExportTimeout         time.Duration
	ExportRetention       time.Duration
	ExportCleanupSchedule string
	ExportRateLimit       int
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Other
	AllowedOrigins []string
	AppURL         string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		StorageBackend:        strings.ToLower(getEnv("STORAGE_BACKEND", BackendGorm)),
		DataDir:               getEnv("DATA_DIR", "data"),
		DBPath:                getEnv("DB_PATH", "db/app.db"),
		DBDialect:             strings.ToLower(getEnv("DB_DIALECT", "sqlite")),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:           getEnv("REDIS_PREFIX", "examination_app:"),
		TursoDatabaseURL:      getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:        getEnv("TURSO_AUTH_TOKEN", ""),
		CatalogPath:           getEnv("CATALOG_PATH", ""),
		SeedExamples:          getEnvBool("SEED_EXAMPLES", true),
		UploadDir:             getEnv("UPLOAD_DIR", "static/exports"),
		ChromePath:            getEnv("CHROME_PATH", ""),
		ExportTimeout:         getEnvDuration("EXPORT_TIMEOUT", 60*time.Second),
		ExportRetention:       getEnvDuration("EXPORT_RETENTION", 24*time.Hour),
		ExportCleanupSchedule: getEnv("EXPORT_CLEANUP_SCHEDULE", "0 0 * * * *"),
		ExportRateLimit:       getEnvInt("EXPORT_RATE_LIMIT", 10),
		R2AccountID:           getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:         getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:     getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:          getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:           getEnv("R2_PUBLIC_URL", ""),
		AllowedOrigins:        strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                getEnv("APP_URL", "http://localhost:8080"),
	}
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Configured reports whether every R2 credential is present
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		if defaultValue != "" {
			log.Printf("Using default value for %s: %s", key, defaultValue)
		}
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("[WARNING] Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[WARNING] Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
