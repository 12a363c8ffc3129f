package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Mongo, holding the durable session and snapshot rows.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Reservation portal.
	PortalBaseURL        string `mapstructure:"PORTAL_BASE_URL"`
	PortalUserID         string `mapstructure:"PORTAL_USER_ID"`
	PortalPassword       string `mapstructure:"PORTAL_PASSWORD"`
	SessionTTLHours      int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionEncryptionKey string `mapstructure:"SESSION_ENCRYPTION_KEY"`
	ScrapePageSize       int    `mapstructure:"SCRAPE_PAGE_SIZE"`
	ScrapeMaxPages       int    `mapstructure:"SCRAPE_MAX_PAGES"`

	// Mailbox receiving the portal's verification emails.
	IMAPAddr                   string `mapstructure:"IMAP_ADDR"`
	IMAPUsername               string `mapstructure:"IMAP_USERNAME"`
	IMAPPassword               string `mapstructure:"IMAP_PASSWORD"`
	IMAPMailbox                string `mapstructure:"IMAP_MAILBOX"`
	VerificationSubjectKeyword string `mapstructure:"VERIFICATION_SUBJECT_KEYWORD"`
	VerificationMaxAgeMinutes  int    `mapstructure:"VERIFICATION_MAX_AGE_MINUTES"`

	// Sync engine. SYNC_INTERVAL_MINUTES of 0 disables the background worker.
	SyncIntervalMinutes int  `mapstructure:"SYNC_INTERVAL_MINUTES"`
	SyncMaxRecords      int  `mapstructure:"SYNC_MAX_RECORDS"`
	SyncFetchDetail     bool `mapstructure:"SYNC_FETCH_DETAIL"`

	// Notification channels.
	FCMCredentialsFile string   `mapstructure:"FCM_CREDENTIALS_FILE"`
	FCMTopic           string   `mapstructure:"FCM_TOPIC"`
	SMTPHost           string   `mapstructure:"SMTP_HOST"`
	SMTPPort           int      `mapstructure:"SMTP_PORT"`
	SMTPUsername       string   `mapstructure:"SMTP_USERNAME"`
	SMTPPassword       string   `mapstructure:"SMTP_PASSWORD"`
	NotifyEmailFrom    string   `mapstructure:"NOTIFY_EMAIL_FROM"`
	NotifyEmailTo      []string `mapstructure:"NOTIFY_EMAIL_TO"`
	ChatWebhookURL     string   `mapstructure:"CHAT_WEBHOOK_URL"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "sto_mediacenter")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_HOURS", 12)
	viper.SetDefault("SESSION_ENCRYPTION_KEY", "sto-dev-key")
	viper.SetDefault("SCRAPE_PAGE_SIZE", 10)
	viper.SetDefault("SCRAPE_MAX_PAGES", 10)
	viper.SetDefault("IMAP_MAILBOX", "INBOX")
	viper.SetDefault("VERIFICATION_SUBJECT_KEYWORD", "인증")
	viper.SetDefault("VERIFICATION_MAX_AGE_MINUTES", 10)
	viper.SetDefault("SYNC_INTERVAL_MINUTES", 0)
	viper.SetDefault("SYNC_MAX_RECORDS", 100)
	viper.SetDefault("SYNC_FETCH_DETAIL", false)
	viper.SetDefault("FCM_TOPIC", "sto-bookings")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
