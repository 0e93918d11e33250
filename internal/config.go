package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         RedisConfig         `mapstructure:"redis"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Worker        WorkerConfig        `mapstructure:"worker"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	OpenAPIPath       string        `mapstructure:"openapi_path"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
	BCryptCost          int           `mapstructure:"bcrypt_cost"`
	InvitationTTL       time.Duration `mapstructure:"invitation_ttl"`
	ResetTokenTTL       time.Duration `mapstructure:"reset_token_ttl"`
}

type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	LocalDir       string `mapstructure:"local_dir"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Region       string `mapstructure:"s3_region"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
	S3UsePathStyle bool   `mapstructure:"s3_use_path_style"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
	LRUSize           int `mapstructure:"lru_size"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkerConfig struct {
	PurgeSchedule        string `mapstructure:"purge_schedule"`
	ExpiryReportSchedule string `mapstructure:"expiry_report_schedule"`
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// SetDefaults fills zero values with the documented defaults.
func (c *Config) SetDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 5 * time.Second
	}
	if c.Server.OpenAPIPath == "" {
		c.Server.OpenAPIPath = "./api/openapi.yml"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.Security.AccessTokenDuration == 0 {
		c.Security.AccessTokenDuration = 24 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.Security.InvitationTTL == 0 {
		c.Security.InvitationTTL = 7 * 24 * time.Hour
	}
	if c.Security.ResetTokenTTL == 0 {
		c.Security.ResetTokenTTL = time.Hour
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverLocal
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "./uploads"
	}
	if c.Storage.MaxUploadBytes == 0 {
		c.Storage.MaxUploadBytes = 10 << 20
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	if c.RateLimit.LRUSize == 0 {
		c.RateLimit.LRUSize = 10000
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
	if c.Worker.PurgeSchedule == "" {
		c.Worker.PurgeSchedule = "@hourly"
	}
	if c.Worker.ExpiryReportSchedule == "" {
		c.Worker.ExpiryReportSchedule = "@daily"
	}
}

// LoadConfigFromEnv builds the configuration from plain environment variables
// for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:           getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:        getEnv("BASE_URL", ""),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 5*time.Second),
			OpenAPIPath:    getEnv("OPENAPI_PATH", "./api/openapi.yml"),
		},
		Database: DatabaseConfig{
			Source:       getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", 24*time.Hour),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 12),
			InvitationTTL:       getEnvAsDuration("INVITATION_TTL", 7*24*time.Hour),
			ResetTokenTTL:       getEnvAsDuration("RESET_TOKEN_TTL", time.Hour),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", StorageDriverLocal),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3UsePathStyle: getEnv("S3_USE_PATH_STYLE", "false") == "true",
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 30),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
			LRUSize:           getEnvAsInt("RATE_LIMIT_LRU_SIZE", 10000),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnv("METRICS_ENABLED", "true") == "true",
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Worker: WorkerConfig{
			PurgeSchedule:        getEnv("WORKER_PURGE_SCHEDULE", "@hourly"),
			ExpiryReportSchedule: getEnv("WORKER_EXPIRY_REPORT_SCHEDULE", "@daily"),
		},
	}
	cfg.SetDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins returns the trimmed allow-list.
func (c *ServerConfig) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt_cost must be between 10 and 15")
	}
	if c.AccessTokenDuration < time.Minute {
		return errors.New("access_token_duration must be at least 1m")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverLocal:
		if c.LocalDir == "" {
			return errors.New("local_dir is required for the local driver")
		}
	case StorageDriverS3:
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
