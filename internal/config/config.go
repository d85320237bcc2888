package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	MongoDatabase     string
	MongoTransactions bool
	DBMigrate         bool
	JWTSecret         string
	SessionTTL        time.Duration
	PasswordResetTTL  time.Duration
	BcryptCost        int
	GoogleAudience    string
	AllowOrigins      []string
	FrontendURL       string
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
	SMTPUseTLS        bool
	MailSignature     string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucket       string
	MinIOPublicURL    string
	RecipeImageMax    int64
	RecipeImageWidth  int
	LogLevel          string
	LogstashTCPAddr   string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:              getenv("PORT", "5000"),
		DatabaseURL:       must("DATABASE_URL"),
		MongoDatabase:     getenv("MONGO_DATABASE", "foodies"),
		MongoTransactions: getenv("MONGO_TRANSACTIONS", "true") == "true",
		DBMigrate:         getenv("DB_MIGRATE", "true") == "true",
		JWTSecret:         must("JWT_SECRET"),
		SessionTTL:        getDuration("SESSION_TTL", time.Hour),
		PasswordResetTTL:  getDuration("PASSWORD_RESET_TTL", time.Hour),
		BcryptCost:        getInt("BCRYPT_COST", 12),
		GoogleAudience:    getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:      splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		FrontendURL:       getenv("FRONTEND_URL", ""),
		SMTPHost:          getenv("SMTP_HOST", ""),
		SMTPPort:          getenv("SMTP_PORT", "587"),
		SMTPUsername:      getenv("SMTP_USERNAME", ""),
		SMTPPassword:      getenv("SMTP_PASSWORD", ""),
		SMTPFrom:          getenv("SMTP_FROM", ""),
		SMTPUseTLS:        getenv("SMTP_USE_TLS", "false") == "true",
		MailSignature:     getenv("MAIL_SIGNATURE", "Bakate"),
		MinIOEndpoint:     getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:       getenv("MINIO_BUCKET_RECIPES", "foodies-recipes"),
		MinIOPublicURL:    getenv("MINIO_PUBLIC_URL", ""),
		RecipeImageMax:    int64(getInt("RECIPE_IMAGE_MAX_BYTES", 5*1024*1024)),
		RecipeImageWidth:  getInt("RECIPE_IMAGE_REGULAR_WIDTH", 640),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogstashTCPAddr:   getenv("LOGSTASH_TCP_ADDR", ""),
	}
}

// StorageEnabled reports whether every MinIO setting needed for uploads is set.
func (c Config) StorageEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != "" && c.MinIOBucket != ""
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func getDuration(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
