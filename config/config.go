package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Scopes requested during the OAuth consent flow. Gmail modify is needed to
// clear the UNREAD label, calendar to create meeting events.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/calendar",
}

// Config holds everything read from the environment at startup.
type Config struct {
	ListenAddr string

	GoogleClientID     string
	GoogleClientSecret string
	RedirectURL        string

	// Gmail watch notifications are published to
	// projects/{ProjectID}/topics/{TopicName}.
	ProjectID string
	TopicName string

	GeminiAPIKey string
	GeminiModel  string

	DatabaseURL string

	JWTSecret string

	// All meeting times are interpreted in this zone.
	Timezone *time.Location
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:        getenv("REDIRECT_URL", "http://localhost:8080/auth/callback"),
		ProjectID:          os.Getenv("GOOGLE_PROJECT_ID"),
		TopicName:          getenv("GMAIL_TOPIC_NAME", "gmail-notifications"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
	}

	var missing []string
	for _, v := range []struct{ name, val string }{
		{"GOOGLE_CLIENT_ID", cfg.GoogleClientID},
		{"GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret},
		{"GOOGLE_PROJECT_ID", cfg.ProjectID},
		{"GEMINI_API_KEY", cfg.GeminiAPIKey},
		{"DATABASE_URL", cfg.DatabaseURL},
		{"JWT_SECRET", cfg.JWTSecret},
	} {
		if v.val == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	tz := getenv("TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	return cfg, nil
}

// Topic returns the fully qualified Pub/Sub topic for Gmail watch requests.
func (c *Config) Topic() string {
	return fmt.Sprintf("projects/%s/topics/%s", c.ProjectID, c.TopicName)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
