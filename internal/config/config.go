package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment after an
// optional .env file has been loaded.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	AdminUsername string
	AdminPassword string

	Location          *time.Location
	MaxTokensPerDay   int
	BookingCutoffHour int
	DailyResetCron    string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	SMSCountryCode   string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AdminNotifyEmail  string

	RedisURL           string
	RateLimitPerMinute int
	CORSOrigins        []string
	SecureCookie       bool

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string
}

// Load reads the configuration. DATABASE_URL and JWT_SECRET are required.
func Load() (*Config, error) {
	godotenv.Load()

	dbURL, err := RequiredString("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	secret, err := RequiredString("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	port, err := Port("PORT", "8080")
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(String("CLINIC_TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("CLINIC_TZ: %w", err)
	}
	maxTokens, err := Int("MAX_TOKENS_PER_DAY", 25)
	if err != nil {
		return nil, err
	}
	if maxTokens < 1 {
		return nil, fmt.Errorf("MAX_TOKENS_PER_DAY must be at least 1 (got %d)", maxTokens)
	}
	cutoff, err := Int("BOOKING_CUTOFF_HOUR", 17)
	if err != nil {
		return nil, err
	}
	if cutoff < 0 || cutoff > 24 {
		return nil, fmt.Errorf("BOOKING_CUTOFF_HOUR must be between 0 and 24 (got %d)", cutoff)
	}
	rate, err := Int("RATE_LIMIT_PER_MINUTE", 30)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		JWTSecret:          secret,
		AdminUsername:      String("ADMIN_USERNAME", "admin"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		Location:           loc,
		MaxTokensPerDay:    maxTokens,
		BookingCutoffHour:  cutoff,
		DailyResetCron:     String("DAILY_RESET_CRON", "5 0 * * *"),
		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:   os.Getenv("TWILIO_FROM_NUMBER"),
		SMSCountryCode:     String("SMS_COUNTRY_CODE", "+91"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail:  os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:   String("SENDGRID_FROM_NAME", "Clinic Tokens"),
		AdminNotifyEmail:   os.Getenv("ADMIN_NOTIFY_EMAIL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: rate,
		CORSOrigins:        List("CORS_ORIGINS"),
		SecureCookie:       String("COOKIE_SECURE", "false") == "true",
		TrustedProxies:     List("TRUSTED_PROXIES"),
	}, nil
}

func String(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func RequiredString(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

func Int(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", key, v)
	}
	return n, nil
}

// List splits a comma separated variable, dropping empty entries.
func List(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
