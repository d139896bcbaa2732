package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Authentication schemes selectable through AUTH_TYPE.
const (
	AuthNone           = "auth"
	AuthBasic          = "basic_auth"
	AuthSession        = "session_auth"
	AuthSessionExpiry  = "session_exp_auth"
	AuthSessionStorage = "session_db_auth"
)

// Backends selectable through SESSION_BACKEND and USER_BACKEND.
const (
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

const defaultExcludedPaths = "/api/v1/status/,/api/v1/stat*,/api/v1/unauthorized/,/api/v1/forbidden/,/api/v1/auth_session/login/,/api/v1/users/,/api/v1/reset_password/,/health/"

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Auth        AuthConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Bolt        BoltConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Monitor     MonitorConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type AuthConfig struct {
	Type            string
	SessionName     string
	SessionDuration int
	ExcludedPaths   []string
	SessionBackend  string
	UserBackend     string
	CookieSecure    bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL       string
	Password  string
	DB        int
	KeyPrefix string
}

type BoltConfig struct {
	Path   string
	Bucket string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level     string
	Encoding  string
	RedactPII bool
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

type MonitorConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "sessionauth"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "5000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Auth: AuthConfig{
			Type:            getString("AUTH_TYPE", AuthSession),
			SessionName:     getString("SESSION_NAME", "_my_session_id"),
			SessionDuration: getInt("SESSION_DURATION", 0),
			ExcludedPaths:   getList("AUTH_EXCLUDED_PATHS", defaultExcludedPaths),
			SessionBackend:  getString("SESSION_BACKEND", BackendPostgres),
			UserBackend:     getString("USER_BACKEND", BackendPostgres),
			CookieSecure:    getBool("SESSION_COOKIE_SECURE", false),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "sessionauth"),
			User:            getString("DB_USER", "sessionauth"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:       getString("REDIS_URL", "redis://localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getInt("REDIS_DB", 0),
			KeyPrefix: getString("REDIS_SESSION_PREFIX", "session:"),
		},
		Bolt: BoltConfig{
			Path:   getString("BOLTDB_PATH", "./data/sessions.db"),
			Bucket: getString("BOLTDB_BUCKET", "user_sessions"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:     getString("LOG_LEVEL", "info"),
			Encoding:  getString("LOG_ENCODING", "json"),
			RedactPII: getBool("LOG_REDACT_PII", true),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("HEALTH_CHECK_INTERVAL", 10*time.Second),
		},
	}

	if cfg.Auth.SessionDuration < 0 {
		cfg.Auth.SessionDuration = 0
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate rejects unknown scheme and backend names.
func (c *Config) Validate() error {
	switch c.Auth.Type {
	case AuthNone, AuthBasic, AuthSession, AuthSessionExpiry, AuthSessionStorage:
	default:
		return fmt.Errorf("config: unknown AUTH_TYPE %q", c.Auth.Type)
	}
	switch c.Auth.SessionBackend {
	case BackendPostgres, BackendBolt, BackendRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Auth.SessionBackend)
	}
	switch c.Auth.UserBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("config: unknown USER_BACKEND %q", c.Auth.UserBackend)
	}
	if c.UsesSessions() && c.Auth.SessionName == "" {
		return fmt.Errorf("config: SESSION_NAME must be set for %s", c.Auth.Type)
	}
	return nil
}

// UsesSessions reports whether the configured scheme relies on a session store.
func (c *Config) UsesSessions() bool {
	switch c.Auth.Type {
	case AuthSession, AuthSessionExpiry, AuthSessionStorage:
		return true
	}
	return false
}

// NeedsPostgres reports whether any configured backend lives in Postgres.
func (c *Config) NeedsPostgres() bool {
	if c.Auth.UserBackend == BackendPostgres {
		return true
	}
	return c.Auth.Type == AuthSessionStorage && c.Auth.SessionBackend == BackendPostgres
}

// SessionDuration returns the configured session lifetime; zero never expires.
func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.Auth.SessionDuration) * time.Second
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getList splits a comma separated value, dropping blanks.
func getList(key, fallback string) []string {
	raw := getString(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
