package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	BotModeWebhook = "webhook"
	BotModePolling = "polling"

	BackendREST     = "rest"
	BackendPostgres = "postgres"

	GraderMistral = "mistral"
	GraderOpenAI  = "openai"
	GraderZhipu   = "zhipu"
)

// AppConfig holds all configuration for both binaries.
type AppConfig struct {
	TelegramToken         string
	TelegramWebhookSecret string // optional, checked against X-Telegram-Bot-Api-Secret-Token
	BotMode               string
	HTTPAddr              string

	DatastoreBackend string
	SupabaseURL      string
	SupabaseKey      string
	DatabaseURL      string

	// Pool settings for the postgres backend.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	GraderProvider string
	MistralAPIKey  string
	MistralAgentID string
	MistralBaseURL string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	ZhipuAPIKey    string
	ZhipuBaseURL   string // empty means the SDK default
	ZhipuModel     string

	WorkerBatchSize    int
	WorkerCronSpec     string
	WorkerBatchTimeout time.Duration
	WorkerClaimLease   time.Duration

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
// It only parses; call ValidateForBot or ValidateForWorker before wiring components.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		TelegramWebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		BotMode:               strings.ToLower(getEnv("BOT_MODE", BotModeWebhook)),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),

		DatastoreBackend: strings.ToLower(getEnv("DATASTORE_BACKEND", BackendREST)),
		SupabaseURL:      strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),

		GraderProvider: strings.ToLower(getEnv("GRADER_PROVIDER", GraderMistral)),
		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralAgentID: os.Getenv("MISTRAL_AGENT_ID"),
		MistralBaseURL: getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai"),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ZhipuAPIKey:    os.Getenv("ZHIPU_API_KEY"),
		ZhipuBaseURL:   os.Getenv("ZHIPU_BASE_URL"),
		ZhipuModel:     getEnv("ZHIPU_MODEL", "glm-4-flash"),

		WorkerCronSpec: getEnv("WORKER_CRON_SPEC", "@every 1m"),

		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
	}

	var err error
	cfg.WorkerBatchSize, err = strconv.Atoi(getEnv("WORKER_BATCH_SIZE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_BATCH_SIZE: %w", err)
	}
	cfg.WorkerBatchTimeout, err = time.ParseDuration(getEnv("WORKER_BATCH_TIMEOUT", "4m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_BATCH_TIMEOUT: %w", err)
	}
	cfg.WorkerClaimLease, err = time.ParseDuration(getEnv("WORKER_CLAIM_LEASE", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CLAIM_LEASE: %w", err)
	}
	cfg.DBMaxOpenConns, err = strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}
	cfg.DBMaxIdleConns, err = strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}
	cfg.DBConnMaxLifetime, err = time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	return cfg, nil
}

// ValidateForBot checks the fields the inbound handler needs.
func (c *AppConfig) ValidateForBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if c.BotMode != BotModeWebhook && c.BotMode != BotModePolling {
		return fmt.Errorf("invalid BOT_MODE %q, want %s or %s", c.BotMode, BotModeWebhook, BotModePolling)
	}
	return c.validateDatastore()
}

// ValidateForWorker checks the fields the grading worker needs.
func (c *AppConfig) ValidateForWorker() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if err := c.validateDatastore(); err != nil {
		return err
	}
	if c.WorkerBatchSize <= 0 {
		return fmt.Errorf("WORKER_BATCH_SIZE must be positive, got %d", c.WorkerBatchSize)
	}
	if c.WorkerBatchTimeout <= 0 {
		return fmt.Errorf("WORKER_BATCH_TIMEOUT must be positive")
	}
	if c.WorkerClaimLease <= 0 {
		return fmt.Errorf("WORKER_CLAIM_LEASE must be positive")
	}

	switch c.GraderProvider {
	case GraderMistral:
		if c.MistralAPIKey == "" {
			return fmt.Errorf("MISTRAL_API_KEY is not set")
		}
		if c.MistralAgentID == "" {
			return fmt.Errorf("MISTRAL_AGENT_ID is not set")
		}
	case GraderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
	case GraderZhipu:
		if c.ZhipuAPIKey == "" {
			return fmt.Errorf("ZHIPU_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown GRADER_PROVIDER %q", c.GraderProvider)
	}
	return nil
}

func (c *AppConfig) validateDatastore() error {
	switch c.DatastoreBackend {
	case BackendREST:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is not set")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_KEY is not set")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set")
		}
		if c.DBMaxOpenConns <= 0 {
			return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DBMaxOpenConns)
		}
		if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
			return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS, got %d", c.DBMaxIdleConns)
		}
	default:
		return fmt.Errorf("unknown DATASTORE_BACKEND %q", c.DatastoreBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
