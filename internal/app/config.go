package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseDriver string // Database driver (sqlite, postgres) (default: sqlite)
	DatabaseDSN    string // Driver-specific DSN (default: file:kvotizza.db with WAL)

	SessionSecret string        // Required: HS256 signing secret, 32 bytes minimum
	SessionIssuer string        // Issuer claim for session tokens (default: kvotizza)
	AccessTTL     time.Duration // Access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Refresh token lifetime (default: 168h)

	AdminEmails string // Comma-separated emails granted the ADMIN role at signup

	BaseURL         string // Public frontend origin used in email links
	UpstreamBaseURL string // Base URL of the odds/analytics data service

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string // Envelope sender for outgoing mail
	MailMode     string // Mail transport (smtp, log) (default: log)
	ContactInbox string // Recipient for contact form submissions

	AffiliateLinks string // bookie=url pairs, comma-separated; url may hold {target}

	CORSOrigins  []string // Allowed browser origins
	CookieSecure bool     // Secure flag on session cookies

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN: getEnvOrDefault(
			"DATABASE_DSN",
			"file:kvotizza.db?_busy_timeout=5000&_journal_mode=WAL",
		),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionIssuer: getEnvOrDefault("SESSION_ISSUER", "kvotizza"),
		AccessTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		AdminEmails: os.Getenv("ADMIN_EMAILS"),

		BaseURL:         getEnvOrDefault("BASE_URL", "http://localhost:3000"),
		UpstreamBaseURL: getEnvOrDefault("UPSTREAM_BASE_URL", "http://localhost:8081"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "noreply@kvotizza.rs"),
		MailMode:     getEnvOrDefault("MAIL_MODE", "log"),
		ContactInbox: getEnvOrDefault("CONTACT_INBOX", "info@kvotizza.rs"),

		AffiliateLinks: os.Getenv("AFFILIATE_LINKS"),

		CORSOrigins:  splitCSV(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),
		CookieSecure: env != "dev",

		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CookieSecure = b
		}
	}

	return cfg
}

// ParseAffiliateLinks turns "bookie=url,bookie2=url2" into a lookup map.
// Keys are lower-cased; URLs may contain '=' but not ','.
func ParseAffiliateLinks(s string) map[string]string {
	links := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, url, ok := strings.Cut(pair, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" || url == "" {
			continue
		}
		links[key] = url
	}
	return links
}

func splitCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
