package config

import (
	"os"
	"strconv"

	cerrors "carwatcher/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	BotToken       string
	ChatID         string
	TelegramAPIURL string

	// Search criteria
	Make     string
	Model    string
	Postcode string
	Radius   int

	// AutoTrader configuration
	BaseURL  string
	MaxPages int

	// Seen-state configuration
	StateFile string

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration (publisher is disabled when RedisAddr is empty)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	radius, err := getEnvInt("RADIUS", 150000)
	if err != nil {
		return nil, err
	}
	maxPages, err := getEnvInt("MAX_PAGES", 5)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisStreamCount, err := getEnvInt("REDIS_STREAM_COUNT", 1)
	if err != nil {
		return nil, err
	}
	redisStreamMaxLength, err := getEnvInt("REDIS_STREAM_MAXLEN", 500)
	if err != nil {
		return nil, err
	}

	return &Config{
		BotToken:             os.Getenv("BOT_TOKEN"),
		ChatID:               os.Getenv("CHAT_ID"),
		TelegramAPIURL:       getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		Make:                 getEnv("CAR_MAKE", "BMW"),
		Model:                getEnv("CAR_MODEL", "3 Series"),
		Postcode:             getEnv("POSTCODE", "E15 4EQ"),
		Radius:               radius,
		BaseURL:              getEnv("AUTOTRADER_URL", "https://www.autotrader.co.uk"),
		MaxPages:             maxPages,
		StateFile:            getEnv("STATE_FILE", "seen_cars.json"),
		MemcacheAddr:         os.Getenv("MEMCACHE_ADDR"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "newcars"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		Environment:          getEnv("CARWATCH_ENVIRONMENT", "development"),
	}, nil
}

// Validate checks that the configuration is usable for a run
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return cerrors.NewConfiguration("BOT_TOKEN is not set", nil)
	}
	if c.ChatID == "" {
		return cerrors.NewConfiguration("CHAT_ID is not set", nil)
	}
	if c.Radius <= 0 {
		return cerrors.NewConfiguration("RADIUS must be positive", nil)
	}
	if c.MaxPages <= 0 {
		return cerrors.NewConfiguration("MAX_PAGES must be positive", nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		return cerrors.NewConfiguration("REDIS_STREAM_COUNT must be positive", nil)
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

// getEnvInt retrieves a numeric environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, cerrors.NewConfiguration(key+" must be numeric", err)
	}
	return n, nil
}
