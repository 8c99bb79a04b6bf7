package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel string

	// Bot identity
	AccessKey string
	BotName   string

	// Upstream relay (forward mode when RelayBotURL is set)
	RelayBotName        string
	RelayBotURL         string
	RelayAccessKey      string
	RelayTimeoutSeconds int

	// Abuse protection
	RateLimitPerMinute int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		AccessKey: mustGetEnv("ACCESS_KEY"),
		BotName:   mustGetEnv("BOT_NAME"),

		RelayBotName:        getEnvOrDefault("RELAY_BOT_NAME", ""),
		RelayBotURL:         getEnvOrDefault("RELAY_BOT_URL", ""),
		RelayAccessKey:      getEnvOrDefault("RELAY_ACCESS_KEY", ""),
		RelayTimeoutSeconds: getEnvAsIntOrDefault("RELAY_TIMEOUT_SECONDS", 25),

		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
	}

	// The upstream bot is queried with our own key unless one is provided
	if cfg.RelayAccessKey == "" {
		cfg.RelayAccessKey = cfg.AccessKey
	}

	return cfg
}

// RelayEnabled reports whether conversations should be forwarded to an
// upstream bot instead of being answered locally.
func (c *Config) RelayEnabled() bool {
	return c.RelayBotURL != ""
}

// MaskKey hides an access key for log output, keeping the first two and
// last two characters visible. Keys shorter than four characters are
// masked entirely.
func MaskKey(key string) string {
	if len(key) < 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
