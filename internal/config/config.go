package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const fiberDefaultBodyLimit = 4 << 20

// Store backend and cache kinds.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Backup   BackupConfig
	Notify   NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitMB           int
}

// StoreConfig selects the document engine and the offline cache.
type StoreConfig struct {
	Backend         string
	Cache           string
	CacheTTLSeconds int
	StartOffline    bool
	// MonitorIntervalSeconds paces the backend ping that drives the
	// online/offline signals; zero disables it.
	MonitorIntervalSeconds int
	PingTimeoutSeconds     int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// MongoConfig holds MongoDB connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	BootstrapAdminID      string
	SignInPerMinute       int
}

// BackupConfig drives the scheduled backup and cleanup workers.
type BackupConfig struct {
	RetentionDays       int
	AutoIntervalMinutes int
	CleanupIntervalMin  int
}

// NotificationConfig holds outbound notification targets. Empty values
// disable the corresponding sink.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", 32),
		},
		Store: StoreConfig{
			Backend:                getEnv("STORE_BACKEND", BackendMemory),
			Cache:                  getEnv("STORE_CACHE", CacheMemory),
			CacheTTLSeconds:        getEnvAsInt("STORE_CACHE_TTL_SECONDS", 86400),
			StartOffline:           getEnvAsBool("STORE_START_OFFLINE", false),
			MonitorIntervalSeconds: getEnvAsInt("STORE_MONITOR_INTERVAL_SECONDS", 15),
			PingTimeoutSeconds:     getEnvAsInt("STORE_PING_TIMEOUT_SECONDS", 5),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
			Database: getEnv("MONGO_DATABASE", "storefront"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAdminID:      os.Getenv("AUTH_BOOTSTRAP_ADMIN_ID"),
			SignInPerMinute:       getEnvAsInt("AUTH_SIGN_IN_PER_MINUTE", 10),
		},
		Backup: BackupConfig{
			RetentionDays:       getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
			AutoIntervalMinutes: getEnvAsInt("BACKUP_AUTO_INTERVAL_MINUTES", 1440),
			CleanupIntervalMin:  getEnvAsInt("BACKUP_CLEANUP_INTERVAL_MINUTES", 360),
		},
		Notify: NotificationConfig{
			EmailFrom:  os.Getenv("NOTIFY_EMAIL_FROM"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendMongo, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.Store.Backend)
	}
	switch cfg.Store.Cache {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_CACHE %q", cfg.Store.Cache)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BodyLimit returns the largest accepted request body in bytes. Backup
// imports are the biggest bodies the API takes.
func (a AppConfig) BodyLimit() int {
	if a.BodyLimitMB <= 0 {
		return fiberDefaultBodyLimit
	}
	return a.BodyLimitMB << 20
}

// MonitorInterval returns how often the backend is pinged.
func (s StoreConfig) MonitorInterval() time.Duration {
	if s.MonitorIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.MonitorIntervalSeconds) * time.Second
}

// PingTimeout bounds a single connectivity ping.
func (s StoreConfig) PingTimeout() time.Duration {
	if s.PingTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.PingTimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached snapshots stay readable.
func (s StoreConfig) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
