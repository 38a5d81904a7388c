package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"casino/database"

	// Load a local .env before the environment is read
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string
	GuildID      string // Primary Discord guild ID, empty registers commands globally

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration, empty keeps game locks in process
	RedisURL string

	// Economy
	StartingBalance int64
	AdminDiscordIDs []int64 // Discord IDs allowed to use /admin

	// Blackjack table rules
	BlackjackMinBet     int64
	BlackjackMaxPlayers int

	// High Roller Role configuration
	HighRollerRoleID  string
	HighRollerEnabled bool

	// Logging
	LogLevel string

	// OpenTelemetry metrics
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdmin reports whether discordID may run admin commands
func (c *Config) IsAdmin(discordID int64) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		GuildID:      os.Getenv("GUILD_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Redis
		RedisURL: os.Getenv("REDIS_URL"),

		// Economy
		StartingBalance: getEnvInt64("STARTING_BALANCE", 1000),
		AdminDiscordIDs: parseIDList(os.Getenv("ADMIN_DISCORD_IDS")),

		// Blackjack
		BlackjackMinBet:     getEnvInt64("BLACKJACK_MIN_BET", 10),
		BlackjackMaxPlayers: int(getEnvInt64("BLACKJACK_MAX_PLAYERS", 6)),

		// High Roller Role
		HighRollerRoleID:  os.Getenv("HIGH_ROLLER_ROLE_ID"),
		HighRollerEnabled: os.Getenv("HIGH_ROLLER_ENABLED") == "true",

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// OpenTelemetry
		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "casino"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTelExportIntervalMillis: getEnvInt64("OTEL_EXPORT_INTERVAL_MS", 60000),

		// Environment
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}
	if config.BlackjackMinBet <= 0 {
		return nil, fmt.Errorf("BLACKJACK_MIN_BET must be positive")
	}
	if config.BlackjackMaxPlayers <= 0 {
		return nil, fmt.Errorf("BLACKJACK_MAX_PLAYERS must be positive")
	}
	if config.OTelEnabled && config.OTelExportIntervalMillis <= 0 {
		return nil, fmt.Errorf("OTEL_EXPORT_INTERVAL_MS must be positive")
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 parses an integer environment variable, falling back on absence or garbage
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, idStr := range strings.Split(raw, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		StartingBalance:     1000,
		BlackjackMinBet:     10,
		BlackjackMaxPlayers: 6,
		AdminDiscordIDs:     []int64{999999},
		LogLevel:            "debug",
	}
}
