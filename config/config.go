package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Line      LineConfig
	Mail      MailConfig
	S3        S3Config
	Scheduler SchedulerConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LineConfig holds the Messaging API channel credentials.
type LineConfig struct {
	ChannelAccessToken string
	ChannelSecret      string
	APIBaseURL         string
}

// MailConfig holds SMTP settings for operator alert mail.
type MailConfig struct {
	SMTPHost   string
	SMTPPort   string
	Username   string
	Password   string
	From       string
	AlertEmail string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

type SchedulerConfig struct {
	LunchCron string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "lunchbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		Line: LineConfig{
			ChannelAccessToken: getEnv("CHANNEL_ACCESS_TOKEN", ""),
			ChannelSecret:      getEnv("CHANNEL_SECRET", ""),
			APIBaseURL:         getEnv("LINE_API_BASE_URL", "https://api.line.me"),
		},
		Mail: MailConfig{
			SMTPHost:   getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:   getEnv("SMTP_PORT", "587"),
			Username:   getEnv("EMAIL_USER", ""),
			Password:   getEnv("EMAIL_PASS", ""),
			From:       getEnv("EMAIL_FROM", ""),
			AlertEmail: getEnv("ALERT_EMAIL", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "lunchbot-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Scheduler: SchedulerConfig{
			// weekday lunch reminder, local server time
			LunchCron: getEnv("LUNCH_CRON", "30 11 * * 1-5"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Enabled reports whether a Redis host was configured at all.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
