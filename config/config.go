package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/rafflemonitor/pkg/errors"
)

// Seen store backends
const (
	SeenStoreMemory   = "memory"
	SeenStoreMemcache = "memcache"
	SeenStoreRedis    = "redis"
)

// Config represents the application configuration
type Config struct {
	// Source site
	ListingURL   string
	LocalePrefix string

	// Slack incoming webhook; empty means log-only
	WebhookURL      string
	NotifyPerSecond float64

	// Poll loop
	PollInterval  time.Duration
	DetailWorkers int

	// Fetching
	FetchTimeout       time.Duration
	FetchRetryAttempts uint
	FetchRetryDelay    time.Duration
	FetchRetryMaxDelay time.Duration

	// Seen store
	SeenStore    string
	MemcacheAddr string
	RedisAddr    string
	RedisDB      int
	RedisSeenKey string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	pollInterval, _ := strconv.Atoi(getEnv("POLL_INTERVAL_SECONDS", "10"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "10"))
	retryAttempts, _ := strconv.Atoi(getEnv("FETCH_RETRY_ATTEMPTS", "3"))
	retryDelay, _ := strconv.Atoi(getEnv("FETCH_RETRY_DELAY_MS", "500"))
	retryMaxDelay, _ := strconv.Atoi(getEnv("FETCH_RETRY_MAX_DELAY_SECONDS", "30"))
	detailWorkers, _ := strconv.Atoi(getEnv("DETAIL_WORKERS", "1"))
	notifyPerSecond, _ := strconv.ParseFloat(getEnv("NOTIFY_PER_SECOND", "1"), 64)
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	if retryAttempts < 0 {
		retryAttempts = 0
	}

	return &Config{
		ListingURL:         getEnv("LISTING_URL", "https://releases.43einhalb.com/en/"),
		LocalePrefix:       getEnv("LOCALE_PREFIX", "/en/"),
		WebhookURL:         os.Getenv("SLACK_WEBHOOK_URL"),
		NotifyPerSecond:    notifyPerSecond,
		PollInterval:       time.Duration(pollInterval) * time.Second,
		DetailWorkers:      detailWorkers,
		FetchTimeout:       time.Duration(fetchTimeout) * time.Second,
		FetchRetryAttempts: uint(retryAttempts),
		FetchRetryDelay:    time.Duration(retryDelay) * time.Millisecond,
		FetchRetryMaxDelay: time.Duration(retryMaxDelay) * time.Second,
		SeenStore:          strings.ToLower(getEnv("SEEN_STORE", SeenStoreMemory)),
		MemcacheAddr:       getEnv("MEMCACHE_ADDR", "localhost:11211"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            redisDB,
		RedisSeenKey:       getEnv("REDIS_SEEN_KEY", "rafflemonitor:seen"),
		Environment:        getEnv("MONITOR_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the monitor cannot run with
func (c *Config) Validate() error {
	if _, err := c.SiteOrigin(); err != nil {
		return err
	}

	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewConfiguration(fmt.Sprintf("invalid SLACK_WEBHOOK_URL %q", c.WebhookURL), err)
		}
	}

	if !strings.HasPrefix(c.LocalePrefix, "/") {
		return errors.NewConfiguration(fmt.Sprintf("LOCALE_PREFIX %q must start with /", c.LocalePrefix), nil)
	}
	if c.PollInterval <= 0 {
		return errors.NewConfiguration("POLL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.DetailWorkers < 1 {
		return errors.NewConfiguration("DETAIL_WORKERS must be at least 1", nil)
	}
	if c.NotifyPerSecond <= 0 {
		return errors.NewConfiguration("NOTIFY_PER_SECOND must be positive", nil)
	}

	switch c.SeenStore {
	case SeenStoreMemory, SeenStoreMemcache, SeenStoreRedis:
	default:
		return errors.NewConfiguration(fmt.Sprintf("unknown SEEN_STORE %q", c.SeenStore), nil)
	}

	return nil
}

// SiteOrigin returns scheme://host of the listing URL. Detail links found on
// the listing page are resolved against it.
func (c *Config) SiteOrigin() (*url.URL, error) {
	u, err := url.Parse(c.ListingURL)
	if err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("invalid LISTING_URL %q", c.ListingURL), err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfiguration(fmt.Sprintf("LISTING_URL %q must be absolute", c.ListingURL), nil)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
