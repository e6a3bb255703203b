package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	ServerPort string
	Env        string

	// Identity service ("core") owning members, bodies and permissions.
	CoreURL  string
	CorePort string

	// Outbound mail delivery service.
	MailerURL  string
	MailerPort string

	// Distribution list notified about new boards.
	NotificationEmails []string

	RedisURL string
	RedisTTL time.Duration

	MinioURL       string
	MinioPublicURL string
	MinioUser      string
	MinioPassword  string
	MinioBucket    string
	MaxFileSize    int64
}

func LoadConfig() Config {
	ttlStr := getEnv("REDIS_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		ttl = 5 * time.Minute
	}

	maxFileSize := getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024) // 10MB default

	return Config{
		DBHost:             getEnv("DB_HOST", "postgres"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPass:             getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "boards"),
		ServerPort:         getEnv("SERVER_PORT", "8084"),
		Env:                getEnv("ENV", "dev"),
		CoreURL:            getEnv("CORE_URL", "http://core"),
		CorePort:           getEnv("CORE_PORT", "4000"),
		MailerURL:          getEnv("MAILER_URL", "http://mailer"),
		MailerPort:         getEnv("MAILER_PORT", "4214"),
		NotificationEmails: getEnvAsList("BOARDS_NOTIFICATION_EMAILS", "netcom@example.org"),
		RedisURL:           getEnv("REDIS_URL", "redis:6379"),
		RedisTTL:           ttl,
		MinioURL:           getEnv("MINIO_URL", "localhost:9000"),
		MinioPublicURL:     getEnv("MINIO_PUBLIC_URL", ""),
		MinioUser:          getEnv("MINIO_USER", "minioadmin"),
		MinioPassword:      getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioBucket:        getEnv("MINIO_BUCKET", "board-images"),
		MaxFileSize:        maxFileSize,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func (c *Config) CoreBaseURL() string {
	return c.CoreURL + ":" + c.CorePort
}

func (c *Config) MailerBaseURL() string {
	return c.MailerURL + ":" + c.MailerPort
}
