package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		PublicPath    string `yaml:"public_path" env:"STORAGE_PUBLIC_PATH"`
		PrivatePath   string `yaml:"private_path" env:"STORAGE_PRIVATE_PATH"`
		AgeRecipient  string `yaml:"age_recipient" env:"STORAGE_AGE_RECIPIENT"`
		AgeIdentity   string `yaml:"age_identity" env:"STORAGE_AGE_IDENTITY"`
	} `yaml:"storage"`

	Mail struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"DEFAULT_FROM_EMAIL"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"mail"`

	Cron struct {
		DaysBeforeAccountExpirationWarning  int `yaml:"days_before_account_expiration_warning" env:"CRON_DAYS_BEFORE_ACCOUNT_EXPIRATION_WARNING"`
		DaysBeforePasswordExpirationWarning int `yaml:"days_before_password_expiration_warning" env:"CRON_DAYS_BEFORE_PASSWORD_EXPIRATION_WARNING"`
		DaysBeforeDocumentExpirationWarning int `yaml:"days_before_document_expiration_warning" env:"CRON_DAYS_BEFORE_DOCUMENT_EXPIRATION_WARNING"`
		DaysBeforeHistoryExpiration         int `yaml:"days_before_history_expiration" env:"CRON_DAYS_BEFORE_HISTORY_EXPIRATION"`
		DaysBeforeReviewOverdueNotification int `yaml:"days_before_review_overdue_notification" env:"CRON_DAYS_BEFORE_REVIEW_OVERDUE_NOTIFICATION"`
		AmountYearsBeforeProjectDeletion    int `yaml:"amount_years_before_project_deletion" env:"AMOUNT_YEARS_BEFORE_PROJECT_DELETION"`
	} `yaml:"cron"`

	Registration struct {
		DomainBlacklist string `yaml:"domain_blacklist" env:"REGISTRATION_DOMAIN_BLACKLIST"`
	} `yaml:"registration"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Config file is optional; env vars can carry everything
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.FrontendURL = "http://localhost:3000"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "campulse"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "campulse.app"

	config.Storage.PublicPath = "storage/public"
	config.Storage.PrivatePath = "storage/private"

	config.Mail.FromName = "Plan A"
	config.Mail.FromEmail = "no-reply@campulse.fr"
	config.Mail.Port = 587

	config.Cron.DaysBeforeAccountExpirationWarning = 30
	config.Cron.DaysBeforePasswordExpirationWarning = 30
	config.Cron.DaysBeforeDocumentExpirationWarning = 30
	config.Cron.DaysBeforeHistoryExpiration = 365
	config.Cron.DaysBeforeReviewOverdueNotification = 30
	config.Cron.AmountYearsBeforeProjectDeletion = 5

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	if config.Cron.AmountYearsBeforeProjectDeletion < 1 {
		return fmt.Errorf("project deletion retention must be at least one year")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// DomainBlacklist returns the comma-separated registration domain blacklist
// as a slice.
func (c *Config) DomainBlacklist() []string {
	if c.Registration.DomainBlacklist == "" {
		return nil
	}
	parts := strings.Split(c.Registration.DomainBlacklist, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			domains = append(domains, trimmed)
		}
	}
	return domains
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
