// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration. One struct serves both binaries;
// the gateway ignores the worker-only fields and vice versa.
type Config struct {
	DataDir string // Base directory for the booking ledger (always absolute)

	// Temporal connection
	TemporalHostPort  string
	TemporalNamespace string

	// HTTP surfaces
	GatewayPort int
	MetricsAddr string

	// Desk identity. The bank LEI prefixes every minted UTI.
	BankLEI string

	// Client-facing delivery. Empty webhook URL means log-only delivery.
	WebhookURL string

	// Market data
	MarketDataWSURL string
	RedisAddr       string
	RedisPassword   string

	// Term sheet archive (R2 or S3). Empty bucket disables archiving.
	ArchiveAccountID   string
	ArchiveAccessKeyID string
	ArchiveSecretKey   string
	ArchiveBucket      string
	ArchiveRegion      string

	// Pre-trade policy. ClientEligibility maps a client LEI to the asset
	// classes it is onboarded for; clients without an entry pass the check.
	RestrictedInstruments []string
	ClientEligibility     map[string][]string
	DefaultCreditLimit    string
	MaxTenorMonths        int

	LogLevel string
	DevMode  bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("RFQDESK_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		TemporalHostPort:  getEnv("TEMPORAL_HOST_PORT", "localhost:7233"),
		TemporalNamespace: getEnv("TEMPORAL_NAMESPACE", "default"),
		GatewayPort:       getEnvAsInt("GATEWAY_PORT", 8080),
		MetricsAddr:       getEnv("METRICS_ADDR", ":9090"),
		BankLEI:           getEnv("BANK_LEI", ""),
		WebhookURL:        getEnv("CLIENT_WEBHOOK_URL", ""),
		MarketDataWSURL:   getEnv("MARKETDATA_WS_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),

		ArchiveAccountID:   getEnv("ARCHIVE_R2_ACCOUNT_ID", ""),
		ArchiveAccessKeyID: getEnv("ARCHIVE_ACCESS_KEY_ID", ""),
		ArchiveSecretKey:   getEnv("ARCHIVE_SECRET_ACCESS_KEY", ""),
		ArchiveBucket:      getEnv("ARCHIVE_BUCKET", ""),
		ArchiveRegion:      getEnv("ARCHIVE_REGION", ""),

		RestrictedInstruments: getEnvAsList("RESTRICTED_INSTRUMENTS"),
		ClientEligibility:     getEnvAsMapList("CLIENT_ELIGIBILITY"),
		DefaultCreditLimit:    getEnv("DEFAULT_CREDIT_LIMIT", "100000000"),
		MaxTenorMonths:        getEnvAsInt("MAX_TENOR_MONTHS", 600),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LedgerPath is the booking ledger's sqlite file.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, "ledger.db")
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.BankLEI == "" && !c.DevMode {
		return fmt.Errorf("config: BANK_LEI is required outside dev mode")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsMapList parses "KEY1:a|b;KEY2:c" into {KEY1: [a b], KEY2: [c]}.
// A key with no values maps to an empty list.
func getEnvAsMapList(key string) map[string][]string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	out := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, values, _ := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var list []string
		for _, v := range strings.Split(values, "|") {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				list = append(list, trimmed)
			}
		}
		out[name] = list
	}
	return out
}

func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
