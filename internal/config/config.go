package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	App      AppConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
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

type RedisConfig struct {
	URL      string
	Password string
}

// KafkaConfig configures the email queue. Empty Brokers means emails are
// delivered in-process.
type KafkaConfig struct {
	Brokers    []string
	EmailTopic string
	GroupID    string
}

// Enabled reports whether queued delivery is configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// PaymentConfig holds gateway endpoints and verification policy. Gateway
// credentials live in the settings store, not here.
type PaymentConfig struct {
	GatewayTimeout     time.Duration
	PaystackBaseURL    string
	FlutterwaveBaseURL string
	MaxVerifyAttempts  int
	PendingTTL         time.Duration
	ExpiryInterval     time.Duration
}

type StorageConfig struct {
	Root          string
	PublicURL     string
	CloudinaryURL string
	MaxUploadSize int64
}

// AppConfig holds defaults used when the settings store has no value.
type AppConfig struct {
	FrontendURL string
	CompanyName string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "avilegal"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsList("KAFKA_BROKERS"),
			EmailTopic: getEnv("KAFKA_EMAIL_TOPIC", "avilegal.emails"),
			GroupID:    getEnv("KAFKA_GROUP_ID", "avilegal-mail-worker"),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 60*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Payment: PaymentConfig{
			GatewayTimeout:     getEnvAsDuration("GATEWAY_TIMEOUT", 20*time.Second),
			PaystackBaseURL:    getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			FlutterwaveBaseURL: getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com"),
			MaxVerifyAttempts:  getEnvAsInt("PAYMENT_MAX_VERIFY_ATTEMPTS", 5),
			PendingTTL:         getEnvAsDuration("PAYMENT_PENDING_TTL", 72*time.Hour),
			ExpiryInterval:     getEnvAsDuration("PAYMENT_EXPIRY_INTERVAL", 10*time.Minute),
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_ROOT", "./storage"),
			PublicURL:     getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"),
			CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", 5*1024*1024)),
		},
		App: AppConfig{
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3003"),
			CompanyName: getEnv("COMPANY_NAME", "AviLegal"),
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
