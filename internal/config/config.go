package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Prompt store backends
const (
	PromptStoreMemory = "memory"
	PromptStoreAzure  = "azure"
)

type Config struct {
	Host               string        `yaml:"host"`
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	AnalysisDelay      time.Duration `yaml:"analysis_delay"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
	MaxImageSize       int64         `yaml:"max_image_size"`
	BatchWorkers       int           `yaml:"batch_workers"`
	MaxBatchSize       int           `yaml:"max_batch_size"`
	ReportHistoryLimit int           `yaml:"report_history_limit"`

	PromptStore    string `yaml:"prompt_store"`
	AzureAccount   string `yaml:"azure_account"`
	AzureKey       string `yaml:"-"`
	AzureContainer string `yaml:"azure_container"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		AnalysisDelay:      2 * time.Second,
		MaxRequestBodySize: 16 * 1024 * 1024, // two 5MB images, base64 encoded
		MaxImageSize:       5 * 1024 * 1024,
		BatchWorkers:       0, // Use default CPU count
		MaxBatchSize:       100,
		ReportHistoryLimit: 50,
		PromptStore:        PromptStoreMemory,
		AzureContainer:     "xai-prompts",
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// LoadFromEnv builds the configuration from defaults, an optional YAML file named
// by CONFIG_FILE, a .env file and finally the process environment.
func LoadFromEnv() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Host = getEnvOrDefault("HOST", cfg.Host)
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.RequestTimeout = parseDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.AnalysisDelay = parseDurationOrDefault("ANALYSIS_DELAY", cfg.AnalysisDelay)
	cfg.MaxRequestBodySize = parseIntOrDefault("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize)
	cfg.MaxImageSize = parseIntOrDefault("MAX_IMAGE_SIZE", cfg.MaxImageSize)
	cfg.BatchWorkers = int(parseIntOrDefault("BATCH_WORKERS", int64(cfg.BatchWorkers)))
	cfg.MaxBatchSize = int(parseIntOrDefault("MAX_BATCH_SIZE", int64(cfg.MaxBatchSize)))
	cfg.ReportHistoryLimit = int(parseIntOrDefault("REPORT_HISTORY_LIMIT", int64(cfg.ReportHistoryLimit)))
	cfg.PromptStore = strings.ToLower(getEnvOrDefault("PROMPT_STORE", cfg.PromptStore))
	cfg.AzureAccount = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", cfg.AzureAccount)
	cfg.AzureKey = getEnvOrDefault("AZURE_STORAGE_KEY", cfg.AzureKey)
	cfg.AzureContainer = getEnvOrDefault("AZURE_STORAGE_CONTAINER", cfg.AzureContainer)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and backend requirements
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImageSize <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE must be > 0 (got %d)", c.MaxImageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", c.RequestTimeout)
	}
	if c.AnalysisDelay < 0 {
		return fmt.Errorf("ANALYSIS_DELAY must be >= 0 (got %s)", c.AnalysisDelay)
	}
	if c.AnalysisDelay >= c.RequestTimeout {
		return fmt.Errorf("ANALYSIS_DELAY (%s) must be shorter than REQUEST_TIMEOUT (%s)", c.AnalysisDelay, c.RequestTimeout)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be > 0 (got %d)", c.MaxBatchSize)
	}
	switch c.PromptStore {
	case PromptStoreMemory:
	case PromptStoreAzure:
		if c.AzureAccount == "" || c.AzureKey == "" || c.AzureContainer == "" {
			return fmt.Errorf("PROMPT_STORE=azure requires AZURE_STORAGE_ACCOUNT, AZURE_STORAGE_KEY and AZURE_STORAGE_CONTAINER")
		}
	default:
		return fmt.Errorf("unsupported PROMPT_STORE: %q", c.PromptStore)
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse config file at %s: %w", path, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
