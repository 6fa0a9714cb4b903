package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds application configuration
type Config struct {
	Env     string
	Version string
	Port    string
	AppURL  string

	DatabaseURL        string
	ServiceRoleEnabled bool

	JWTKey        string
	SecureCookies bool

	StorageDir           string
	StorageSigningSecret string
	PendingUploadTTL     time.Duration

	LogLevel     string
	RollbarToken string

	SendgridAPIKey  string
	MailFrom        string
	LeadNotifyEmail string

	RevalidateWebhookURL    string
	RevalidateWebhookSecret string

	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment (and .env when present).
// Missing or malformed required settings abort startup.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*Config, error) {
	conf := &Config{
		Env:     getEnv("APP_ENV", "development"),
		Version: getEnv("APP_VERSION", "0.0.1"),
		Port:    getEnv("PORT", "3000"),
		AppURL:  strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),

		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ServiceRoleEnabled: getEnvBool("SERVICE_ROLE_ENABLED", true),

		JWTKey: os.Getenv("JWT_SECRET"),

		StorageDir:       getEnv("STORAGE_DIR", "./data/storage"),
		PendingUploadTTL: getEnvDuration("PENDING_UPLOAD_TTL", 24*time.Hour),

		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		RollbarToken: os.Getenv("ROLLBAR_TOKEN"),

		SendgridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:        getEnv("MAIL_FROM", "nao-responda@gestaodeincidentes.com.br"),
		LeadNotifyEmail: os.Getenv("LEAD_NOTIFY_EMAIL"),

		RevalidateWebhookURL:    os.Getenv("REVALIDATE_WEBHOOK_URL"),
		RevalidateWebhookSecret: os.Getenv("REVALIDATE_WEBHOOK_SECRET"),

		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	conf.SecureCookies = getEnvBool("SECURE_COOKIES", conf.IsProduction())
	conf.StorageSigningSecret = getEnv("STORAGE_SIGNING_SECRET", conf.JWTKey)

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTKey == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if len(c.JWTKey) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters long")
	}
	if u, err := url.Parse(c.AppURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("APP_URL is not a valid URL: %q", c.AppURL)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
