package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OAuth     OAuthConfig
	JWT       JWTConfig
	Storage   StorageConfig
	STT       STTConfig
	Analysis  AnalysisConfig
	Retention RetentionConfig
	SMTP      SMTPConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"itqan"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// OAuthConfig holds OAuth configuration
type OAuthConfig struct {
	Google GoogleOAuthConfig

	// Organization new sign-ups are placed in.
	DefaultOrgID string `envconfig:"DEFAULT_ORG_ID" default:"00000000-0000-0000-0000-000000000001"`
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	ClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL" default:"http://localhost:8080/v1/auth/google/callback"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"change-me-access"`
	RefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"change-me-refresh"`
	AccessExpiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"15m"`
	RefreshExpiry time.Duration `envconfig:"JWT_REFRESH_EXPIRY" default:"168h"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"recitations"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	UploadExpiry    time.Duration `envconfig:"STORAGE_UPLOAD_EXPIRY" default:"15m"`
}

// STTConfig holds speech-to-text provider configuration.
// Provider is "whisper" (OpenAI) or "assemblyai".
type STTConfig struct {
	Provider       string        `envconfig:"STT_PROVIDER" default:"whisper"`
	OpenAIAPIKey   string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `envconfig:"OPENAI_BASE_URL"`
	AssemblyAPIKey string        `envconfig:"ASSEMBLYAI_API_KEY"`
	PollInterval   time.Duration `envconfig:"STT_POLL_INTERVAL" default:"3s"`
	Language       string        `envconfig:"STT_LANGUAGE" default:"ar"`
}

// AnalysisConfig holds analysis worker configuration
type AnalysisConfig struct {
	WorkerCount    int           `envconfig:"ANALYSIS_WORKER_COUNT" default:"2"`
	PollInterval   time.Duration `envconfig:"ANALYSIS_POLL_INTERVAL" default:"5s"`
	AttemptTimeout time.Duration `envconfig:"ANALYSIS_ATTEMPT_TIMEOUT" default:"300s"`
	MaxAttempts    int           `envconfig:"ANALYSIS_MAX_ATTEMPTS" default:"3"`
	ScratchDir     string        `envconfig:"ANALYSIS_SCRATCH_DIR" default:"/tmp/itqan-audio"`
}

// RetentionConfig holds retention cleanup and scheduled job configuration
type RetentionConfig struct {
	Window       time.Duration `envconfig:"RETENTION_WINDOW" default:"2160h"` // 90 days
	KeepAnalyzed bool          `envconfig:"RETENTION_KEEP_ANALYZED" default:"true"`
	CronSchedule string        `envconfig:"RETENTION_CRON" default:"0 3 * * *"`
	SnapshotCron string        `envconfig:"ANALYTICS_SNAPSHOT_CRON" default:"30 0 * * *"`
}

// SMTPConfig holds email delivery configuration
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@itqan.app"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" {
		if c.JWT.AccessSecret == "change-me-access" || c.JWT.RefreshSecret == "change-me-refresh" {
			return fmt.Errorf("JWT secrets must be set in production")
		}
	}
	switch c.STT.Provider {
	case "whisper":
		if c.STT.OpenAIAPIKey == "" && c.Server.Environment == "production" {
			return fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER=whisper")
		}
	case "assemblyai":
		if c.STT.AssemblyAPIKey == "" && c.Server.Environment == "production" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when STT_PROVIDER=assemblyai")
		}
	default:
		return fmt.Errorf("unknown STT provider %q", c.STT.Provider)
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
