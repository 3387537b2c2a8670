package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/equityscope/newsradar/internal/models"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	ScanSchedule string // "hourly" or "daily"
	TimeZone     string

	// Watchlist configuration
	WatchlistFile string
	Groups        []models.WatchlistGroup
	StaticFeeds   []models.FeedSource
	QueryTemplate string

	// Default source filters
	DefaultWhitelist []string
	DefaultBlacklist []string

	// Fetch configuration
	FetchTimeoutSeconds int
	MaxConcurrentFetch  int
	EntriesPerSource    int
	RecencyWindowDays   int
	// InsecureSkipTLSVerify disables certificate verification on the feed
	// HTTP client. Operators must set it explicitly; it is logged at startup.
	InsecureSkipTLSVerify bool

	// Azure Storage configuration (optional snapshot archive)
	StorageAccount   string
	StorageContainer string

	// Alert configuration
	AlertsEnabled     bool
	AlertPayloadLimit int
	AlertWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables and, when present, the
// watchlist YAML file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		Debug:        getBoolEnv("DEBUG", false),
		ScanSchedule: getEnv("SCAN_SCHEDULE", "daily"),
		TimeZone:     getEnv("TIMEZONE", "UTC"),

		WatchlistFile: getEnv("WATCHLIST_FILE", ""),
		QueryTemplate: getEnv("QUERY_TEMPLATE", defaultQueryTemplate),

		FetchTimeoutSeconds:   getIntEnv("FETCH_TIMEOUT_SECONDS", 10),
		MaxConcurrentFetch:    getIntEnv("MAX_CONCURRENT_FETCH", 20),
		EntriesPerSource:      getIntEnv("ENTRIES_PER_SOURCE", 10),
		RecencyWindowDays:     getIntEnv("RECENCY_WINDOW_DAYS", 7),
		InsecureSkipTLSVerify: getBoolEnv("INSECURE_SKIP_TLS_VERIFY", false),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "headlines"),

		AlertsEnabled:     getBoolEnv("ALERTS_ENABLED", false),
		AlertPayloadLimit: getIntEnv("ALERT_PAYLOAD_LIMIT", 5),
		AlertWebhookURL:   getEnv("ALERT_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		DefaultWhitelist: getSliceEnv("DEFAULT_WHITELIST", nil),
		DefaultBlacklist: getSliceEnv("DEFAULT_BLACKLIST", defaultBlacklist()),
	}

	if cfg.WatchlistFile != "" {
		wl, err := LoadWatchlist(cfg.WatchlistFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load watchlist file: %w", err)
		}
		cfg.applyWatchlist(wl)
	}
	if len(cfg.Groups) == 0 {
		cfg.Groups = defaultGroups()
	}
	if len(cfg.StaticFeeds) == 0 {
		cfg.StaticFeeds = defaultStaticFeeds()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyWatchlist(wl *Watchlist) {
	if len(wl.Groups) > 0 {
		c.Groups = wl.Groups
	}
	if len(wl.Feeds) > 0 {
		feeds := make([]models.FeedSource, 0, len(wl.Feeds))
		for _, f := range wl.Feeds {
			f.Kind = models.KindStaticURL
			feeds = append(feeds, f)
		}
		c.StaticFeeds = feeds
	}
	if len(wl.Whitelist) > 0 {
		c.DefaultWhitelist = wl.Whitelist
	}
	if len(wl.Blacklist) > 0 {
		c.DefaultBlacklist = wl.Blacklist
	}
	if wl.QueryTemplate != "" {
		c.QueryTemplate = wl.QueryTemplate
	}
}

// AlertPolicy derives the alert policy the dispatcher consults on each scan.
func (c *Config) AlertPolicy() models.AlertPolicy {
	trigger := models.TriggerNever
	if c.AlertsEnabled {
		trigger = models.TriggerOnEverySearch
	}
	return models.AlertPolicy{
		Enabled:      c.AlertsEnabled,
		Trigger:      trigger,
		PayloadLimit: c.AlertPayloadLimit,
	}
}

func (c *Config) validate() error {
	if c.ScanSchedule != "hourly" && c.ScanSchedule != "daily" {
		return fmt.Errorf("SCAN_SCHEDULE must be 'hourly' or 'daily'")
	}

	if len(c.Groups) == 0 && len(c.StaticFeeds) == 0 {
		return fmt.Errorf("at least one watchlist group or static feed must be configured")
	}

	if !strings.Contains(c.QueryTemplate, "%s") {
		return fmt.Errorf("QUERY_TEMPLATE must contain a %%s placeholder for the search term")
	}

	if c.AlertsEnabled && c.AlertWebhookURL == "" && c.NotificationEmail == "" {
		return fmt.Errorf("at least one alert channel must be configured when ALERTS_ENABLED is set (ALERT_WEBHOOK_URL or NOTIFICATION_EMAIL)")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.EntriesPerSource <= 0 {
		return fmt.Errorf("ENTRIES_PER_SOURCE must be positive")
	}
	if c.MaxConcurrentFetch <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_FETCH must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
