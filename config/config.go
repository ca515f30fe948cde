package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSiteBaseURL     = "https://www.zillow.com"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-3-5-haiku-latest"
	ProviderOpenAI         = "openai"
	ProviderAnthropic      = "anthropic"
	defaultLLMTimeoutSec   = 30
	defaultPageTimeoutSec  = 60
	defaultMaxSearchPages  = 1
	defaultMaxConcurrency  = 3
	defaultRateLimitMs     = 1500
	defaultMaxRetries      = 2
	defaultPostgresSSLMode = "disable"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	LLMProvider     string
	OpenAIKey       string
	AnthropicKey    string
	LLMModel        string
	LLMBaseURL      string
	LLMTimeout      time.Duration
	SiteBaseURL     string
	MaxSearchPages  int
	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	PageTimeout     time.Duration
	ChromeBin       string
	CSVOutputPath   string
	FieldCandidates FieldCandidates

	StorePostgres    bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

// Load reads the .env file and returns a populated Config struct.
// A broken FIELD_CANDIDATES_FILE is logged and the built-in table is kept.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))
	cfg := &Config{
		LLMProvider:    provider,
		OpenAIKey:      getEnv("OPEN_AI", os.Getenv("OPENAI_API_KEY")),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", defaultModel(provider)),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SEC", defaultLLMTimeoutSec)) * time.Second,
		SiteBaseURL:    strings.TrimRight(getEnv("SITE_BASE_URL", DefaultSiteBaseURL), "/"),
		MaxSearchPages: getEnvInt("MAX_SEARCH_PAGES", defaultMaxSearchPages),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", defaultMaxConcurrency),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", defaultRateLimitMs),
		MaxRetries:     getEnvInt("MAX_RETRIES", defaultMaxRetries),
		PageTimeout:    time.Duration(getEnvInt("PAGE_TIMEOUT_SEC", defaultPageTimeoutSec)) * time.Second,
		ChromeBin:      getEnv("CHROME_BIN", ""),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", ""),

		StorePostgres:    getEnvBool("STORE_POSTGRES", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "finder"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "finder123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", defaultPostgresSSLMode),
	}

	cfg.FieldCandidates = DefaultFieldCandidates()
	if path := getEnv("FIELD_CANDIDATES_FILE", ""); path != "" {
		fc, err := LoadFieldCandidates(path)
		if err != nil {
			log.Printf("[config] Ignoring field candidates file: %v", err)
		} else {
			cfg.FieldCandidates = fc
		}
	}

	return cfg
}

// APIKey returns the credential for the configured interpretation provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicKey
	}
	return c.OpenAIKey
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func defaultModel(provider string) string {
	if provider == ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
