package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Persistence modes.
const (
	ModeRemote   = "remote"
	ModeLocal    = "local"
	ModePostgres = "postgres"
)

// Statistics sources.
const (
	StatsSourceLocal  = "local"
	StatsSourceRemote = "remote"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Backend     BackendConfig
	Persistence PersistenceConfig
	DB          DBConfig
	Local       LocalConfig
	S3          S3Config
	Upload      UploadConfig
	Stats       StatsConfig
	Log         LogConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Ingest      IngestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// BackendConfig holds settings for the remote invoice backend (extraction, persistence, stats).
type BackendConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Timeout returns the HTTP client timeout for backend calls.
func (b *BackendConfig) Timeout() time.Duration {
	if b.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(b.TimeoutSecs) * time.Second
}

// PersistenceConfig selects where committed invoices are written.
type PersistenceConfig struct {
	Mode string `mapstructure:"mode"`
}

// RequireIdentifier reports whether commits must update an existing remote record.
func (p *PersistenceConfig) RequireIdentifier() bool {
	return p.Mode == ModeRemote
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnLifetime   time.Duration `mapstructure:"conn_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LocalConfig holds settings for the offline bbolt store.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// S3Config holds AWS S3 settings for the upload archive.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload size limit in bytes, 0 meaning unlimited.
func (u *UploadConfig) MaxBytes() int64 {
	if u.MaxFileSizeMB <= 0 {
		return 0
	}
	return u.MaxFileSizeMB << 20
}

// StatsConfig holds statistics engine settings.
type StatsConfig struct {
	Source      string        `mapstructure:"source"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	WindowDays  int           `mapstructure:"window_days"`
	TopClients  int           `mapstructure:"top_clients"`
	RecentLimit int           `mapstructure:"recent_limit"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig throttles the upload endpoint.
type RateLimitConfig struct {
	UploadsPerMinute int `mapstructure:"uploads_per_minute"`
	Burst            int `mapstructure:"burst"`
}

// IngestConfig holds batch ingestion settings for the CLI.
type IngestConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the INVOICEDESK_ prefix.
// A .env file in the working directory and a config file named by INVOICEDESK_CONFIG
// are read first when present; environment variables win over both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("INVOICEDESK_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.environment", "development")

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:9090")
	v.SetDefault("backend.timeout_secs", 60)

	v.SetDefault("persistence.mode", ModeRemote)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoicedesk")
	v.SetDefault("db.password", "invoicedesk_secret")
	v.SetDefault("db.name", "invoicedesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_lifetime", "30m")
	v.SetDefault("db.connect_timeout", "5s")

	v.SetDefault("local.path", "invoicedesk.db")

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "invoicedesk-uploads")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("upload.max_file_size_mb", 20)

	// Stats defaults
	v.SetDefault("stats.source", StatsSourceLocal)
	v.SetDefault("stats.cache_ttl", "30s")
	v.SetDefault("stats.window_days", 7)
	v.SetDefault("stats.top_clients", 5)
	v.SetDefault("stats.recent_limit", 5)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	v.SetDefault("rate_limit.uploads_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("ingest.concurrency", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "INVOICEDESK_SERVER_PORT",
		"server.read_timeout":           "INVOICEDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "INVOICEDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":            "INVOICEDESK_SERVER_ENVIRONMENT",
		"backend.base_url":              "INVOICEDESK_BACKEND_BASE_URL",
		"backend.timeout_secs":          "INVOICEDESK_BACKEND_TIMEOUT_SECS",
		"persistence.mode":              "INVOICEDESK_PERSISTENCE_MODE",
		"db.host":                       "INVOICEDESK_DB_HOST",
		"db.port":                       "INVOICEDESK_DB_PORT",
		"db.user":                       "INVOICEDESK_DB_USER",
		"db.password":                   "INVOICEDESK_DB_PASSWORD",
		"db.name":                       "INVOICEDESK_DB_NAME",
		"db.sslmode":                    "INVOICEDESK_DB_SSLMODE",
		"db.max_open":                   "INVOICEDESK_DB_MAX_OPEN",
		"db.max_idle":                   "INVOICEDESK_DB_MAX_IDLE",
		"db.conn_lifetime":              "INVOICEDESK_DB_CONN_LIFETIME",
		"db.connect_timeout":            "INVOICEDESK_DB_CONNECT_TIMEOUT",
		"local.path":                    "INVOICEDESK_LOCAL_PATH",
		"s3.enabled":                    "INVOICEDESK_S3_ENABLED",
		"s3.region":                     "INVOICEDESK_S3_REGION",
		"s3.bucket":                     "INVOICEDESK_S3_BUCKET",
		"s3.endpoint":                   "INVOICEDESK_S3_ENDPOINT",
		"s3.access_key":                 "INVOICEDESK_S3_ACCESS_KEY",
		"s3.secret_key":                 "INVOICEDESK_S3_SECRET_KEY",
		"upload.max_file_size_mb":       "INVOICEDESK_UPLOAD_MAX_FILE_SIZE_MB",
		"stats.source":                  "INVOICEDESK_STATS_SOURCE",
		"stats.cache_ttl":               "INVOICEDESK_STATS_CACHE_TTL",
		"stats.window_days":             "INVOICEDESK_STATS_WINDOW_DAYS",
		"stats.top_clients":             "INVOICEDESK_STATS_TOP_CLIENTS",
		"stats.recent_limit":            "INVOICEDESK_STATS_RECENT_LIMIT",
		"log.level":                     "INVOICEDESK_LOG_LEVEL",
		"log.format":                    "INVOICEDESK_LOG_FORMAT",
		"cors.allowed_origins":          "INVOICEDESK_CORS_ALLOWED_ORIGINS",
		"rate_limit.uploads_per_minute": "INVOICEDESK_RATE_LIMIT_UPLOADS_PER_MINUTE",
		"rate_limit.burst":              "INVOICEDESK_RATE_LIMIT_BURST",
		"ingest.concurrency":            "INVOICEDESK_INGEST_CONCURRENCY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// PaaS hosts set a PORT env var. Use it if INVOICEDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Backend = BackendConfig{
		BaseURL:     strings.TrimRight(v.GetString("backend.base_url"), "/"),
		TimeoutSecs: v.GetInt("backend.timeout_secs"),
	}
	cfg.Persistence = PersistenceConfig{
		Mode: strings.ToLower(v.GetString("persistence.mode")),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnLifetime:   v.GetDuration("db.conn_lifetime"),
		ConnectTimeout: v.GetDuration("db.connect_timeout"),
	}
	cfg.Local = LocalConfig{
		Path: v.GetString("local.path"),
	}
	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Stats = StatsConfig{
		Source:      strings.ToLower(v.GetString("stats.source")),
		CacheTTL:    v.GetDuration("stats.cache_ttl"),
		WindowDays:  v.GetInt("stats.window_days"),
		TopClients:  v.GetInt("stats.top_clients"),
		RecentLimit: v.GetInt("stats.recent_limit"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.RateLimit = RateLimitConfig{
		UploadsPerMinute: v.GetInt("rate_limit.uploads_per_minute"),
		Burst:            v.GetInt("rate_limit.burst"),
	}
	cfg.Ingest = IngestConfig{
		Concurrency: v.GetInt("ingest.concurrency"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown mode and source values.
func (c *Config) Validate() error {
	switch c.Persistence.Mode {
	case ModeRemote, ModeLocal, ModePostgres:
	default:
		return fmt.Errorf("invalid persistence.mode %q: want remote, local or postgres", c.Persistence.Mode)
	}
	switch c.Stats.Source {
	case StatsSourceLocal, StatsSourceRemote:
	default:
		return fmt.Errorf("invalid stats.source %q: want local or remote", c.Stats.Source)
	}
	return nil
}
