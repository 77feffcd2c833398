package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCategories are the hazard categories tracked when CATEGORIES is
// unset. Additional EONET categories (e.g. "Volcanoes") can be added via
// config without code changes.
var DefaultCategories = []string{"Wildfires", "Severe Storms"}

// Config holds all job settings, populated from environment variables.
type Config struct {
	EONETURL     string
	FetchTimeout time.Duration

	DBPath     string
	Categories []string

	BasemapPath string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailSubject  string

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. SMTP credentials are never defaulted; they must be injected
// through the environment.
func Load() (*Config, error) {
	fetchTimeoutStr := envOrDefault("FETCH_TIMEOUT", "30s")
	fetchTimeout, err := time.ParseDuration(fetchTimeoutStr)
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	smtpPort, err := parseSMTPPort()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EONETURL:     envOrDefault("EONET_URL", "https://eonet.gsfc.nasa.gov/api/v2.1/events"),
		FetchTimeout: fetchTimeout,

		DBPath:     envOrDefault("DB_PATH", "eonet.db"),
		Categories: parseCategories(os.Getenv("CATEGORIES")),

		BasemapPath: os.Getenv("BASEMAP_PATH"),

		SMTPHost:     envOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:     smtpPort,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailSubject:  envOrDefault("MAIL_SUBJECT", "EONET Monthly Hazard Report"),

		HTTPAddr:  envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.EONETURL == "" {
		return nil, errors.New("EONET_URL is required")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}
	if len(cfg.Categories) == 0 {
		return nil, errors.New("CATEGORIES must name at least one category")
	}
	if cfg.MailFrom == "" {
		return nil, errors.New("MAIL_FROM is required")
	}
	if !strings.Contains(cfg.MailFrom, "@") {
		return nil, fmt.Errorf("MAIL_FROM %q is not an email address", cfg.MailFrom)
	}

	return cfg, nil
}

// parseCategories splits a comma-separated category list, trimming
// whitespace and dropping empty entries. Empty input yields the defaults.
func parseCategories(s string) []string {
	if strings.TrimSpace(s) == "" {
		out := make([]string, len(DefaultCategories))
		copy(out, DefaultCategories)
		return out
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseSMTPPort() (int, error) {
	s := envOrDefault("SMTP_PORT", "587")
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, errors.New("invalid SMTP_PORT")
	}
	return port, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
