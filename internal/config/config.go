package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Database (PostgreSQL for stories/chapters/users)
	DBHost    string `envconfig:"DB_HOST" default:"localhost"`
	DBPort    string `envconfig:"DB_PORT" default:"5432"`
	DBUser    string `envconfig:"DB_USER" default:"postgres"`
	DBName    string `envconfig:"DB_NAME" default:"imagibox"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`
	// Secret, read directly from the environment in LoadConfig
	DBPassword string

	// Redis (quota ledger)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Secret, read directly from the environment in LoadConfig
	RedisPassword string

	// JWT settings. The secrets are read directly from the environment.
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"24h"`

	// Text model (OpenAI-compatible endpoint)
	AIBaseURL string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel   string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	// Secret, read directly from the environment in LoadConfig
	AIAPIKey string

	// Image model + blob storage
	ImageModelURL     string        `envconfig:"IMAGE_MODEL_URL" default:"http://localhost:9090"`
	ImageModelTimeout time.Duration `envconfig:"IMAGE_MODEL_TIMEOUT" default:"120s"`
	ImageWaitTimeout  time.Duration `envconfig:"IMAGE_WAIT_TIMEOUT" default:"90s"`
	ImageSavePath     string        `envconfig:"IMAGE_SAVE_PATH" default:"./data/images"`
	ImagePublicURL    string        `envconfig:"IMAGE_PUBLIC_BASE_URL" default:"http://localhost:8080/images"`
	ImageFolder       string        `envconfig:"IMAGE_FOLDER" default:"imagibox"`

	// Pipeline tuning
	MaxImageTasks      int `envconfig:"MAX_IMAGE_TASKS" default:"10"`
	ContextTokenBudget int `envconfig:"CONTEXT_TOKEN_BUDGET" default:"3000"`

	// Per-IP throttle on the credential endpoints
	AuthRateLimitPerMinute int `envconfig:"AUTH_RATE_LIMIT_PER_MINUTE" default:"10"`

	// CORS settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Content safety: comma-separated additions to the built-in term list
	ExtraBlockedTerms string `envconfig:"EXTRA_BLOCKED_TERMS" default:""`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetExtraBlockedTerms splits the configured additional blocked terms.
func (c *Config) GetExtraBlockedTerms() []string {
	if strings.TrimSpace(c.ExtraBlockedTerms) == "" {
		return nil
	}
	parts := strings.Split(c.ExtraBlockedTerms, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	// Secrets are read directly so envconfig never logs defaults for them.
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.PasswordPepper = os.Getenv("PASSWORD_PEPPER")
	cfg.AIAPIKey = os.Getenv("AI_API_KEY")

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is not set")
	}

	return &cfg, nil
}
