package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Security     SecurityConfig
	Verification VerificationConfig
	Email        EmailConfig
	Payment      PaymentConfig
	Packages     PackagesConfig
	Storage      StorageConfig
	NATS         NATSConfig
	Tracing      TracingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	Version        string
	FrontendURL    string
	CORSOrigins    []string
	MigrateOnStart bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// DSN returns the key/value connection string understood by lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// VerificationConfig holds one-time credential settings
type VerificationConfig struct {
	CodeTTL                  time.Duration
	ResendCooldown           time.Duration
	ResetTokenTTL            time.Duration
	CleanupInterval          time.Duration
	ExposeCodeOnEmailFailure bool
}

// EmailConfig selects and configures the outbound email transport
type EmailConfig struct {
	Provider          string // log, smtp or mailersend
	FromAddress       string
	FromName          string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPUseSSL        bool
	MailerSendAPIKey  string
	MailerSendBaseURL string
	Timeout           time.Duration
}

// PaymentConfig holds hosted checkout provider settings
type PaymentConfig struct {
	ProviderBaseURL string
	APIKey          string
	WebhookSecret   string
	Timeout         time.Duration
}

// PackagesConfig holds package prices in minor units
type PackagesConfig struct {
	IndividualCents int64
	CoupleCents     int64
	FamilyCents     int64
	Currency        string
}

// StorageConfig holds S3-compatible photo storage settings
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicURL     string
	MaxPhotoBytes int64
}

// NATSConfig holds event bus settings
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// TracingConfig holds OTLP exporter settings
type TracingConfig struct {
	Endpoint string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			Version:        getEnv("APP_VERSION", "dev"),
			FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			CORSOrigins:    getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			MigrateOnStart: getEnvAsBool("MIGRATE_ON_START", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "dvlottery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		Verification: VerificationConfig{
			CodeTTL:                  getEnvAsDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
			ResendCooldown:           getEnvAsDuration("VERIFICATION_RESEND_COOLDOWN", time.Minute),
			ResetTokenTTL:            getEnvAsDuration("PASSWORD_RESET_TTL", time.Hour),
			CleanupInterval:          getEnvAsDuration("CREDENTIAL_CLEANUP_INTERVAL", 10*time.Minute),
			ExposeCodeOnEmailFailure: getEnvAsBool("VERIFICATION_EXPOSE_CODE_ON_EMAIL_FAILURE", false),
		},
		Email: EmailConfig{
			Provider:          strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
			FromAddress:       getEnv("EMAIL_FROM_ADDRESS", "no-reply@dvlottery.local"),
			FromName:          getEnv("EMAIL_FROM_NAME", "DV Lottery Support"),
			SMTPHost:          getEnv("SMTP_HOST", "localhost"),
			SMTPPort:          getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:          getEnv("SMTP_USER", ""),
			SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
			SMTPUseSSL:        getEnvAsBool("SMTP_USE_SSL", false),
			MailerSendAPIKey:  getEnv("MAILERSEND_API_KEY", ""),
			MailerSendBaseURL: getEnv("MAILERSEND_BASE_URL", "https://api.mailersend.com/v1"),
			Timeout:           getEnvAsDuration("EMAIL_TIMEOUT", 10*time.Second),
		},
		Payment: PaymentConfig{
			ProviderBaseURL: strings.TrimRight(getEnv("PAYMENT_PROVIDER_URL", "http://localhost:12111/v1"), "/"),
			APIKey:          getEnv("PAYMENT_API_KEY", ""),
			WebhookSecret:   getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			Timeout:         getEnvAsDuration("PAYMENT_TIMEOUT", 15*time.Second),
		},
		Packages: PackagesConfig{
			IndividualCents: getEnvAsInt64("PACKAGE_PRICE_INDIVIDUAL", 15000),
			CoupleCents:     getEnvAsInt64("PACKAGE_PRICE_COUPLE", 25000),
			FamilyCents:     getEnvAsInt64("PACKAGE_PRICE_FAMILY", 35000),
			Currency:        strings.ToLower(getEnv("PACKAGE_CURRENCY", "usd")),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("S3_ENDPOINT", ""),
			AccessKey:     getEnv("S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("S3_SECRET_KEY", ""),
			Bucket:        getEnv("S3_BUCKET", "applicant-photos"),
			UseSSL:        getEnvAsBool("S3_USE_SSL", false),
			PublicURL:     getEnv("S3_PUBLIC_URL", ""),
			MaxPhotoBytes: getEnvAsInt64("PHOTO_MAX_BYTES", 5<<20),
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "dvlottery"),
		},
		Tracing: TracingConfig{
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
