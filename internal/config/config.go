package config

import (
	"fmt"
	"os"
	"ranked-typing/internal/constants"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// FlaggedMatchPolicy decides what happens to ratings when the anti-cheat gate
// flags a match.
type FlaggedMatchPolicy string

const (
	// PolicyAdvisory records the flag and still applies the rating change.
	PolicyAdvisory FlaggedMatchPolicy = "advisory"
	// PolicyWithhold records the flagged match but leaves both players untouched.
	PolicyWithhold FlaggedMatchPolicy = "withhold"
)

type Config struct {
	DBPath             string
	ServerPort         string
	LogLevel           string
	LogFile            string
	WordBankURL        string
	WordCount          int
	QueueEntryTTL      time.Duration
	QueueSweepInterval time.Duration
	DecayInterval      time.Duration
	FlaggedMatchPolicy FlaggedMatchPolicy
}

func Load() (*Config, error) {
	// a missing .env is fine, the environment wins anyway
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:             getEnv("DB_PATH", "ranked.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
		WordBankURL:        getEnv("WORD_BANK_URL", ""),
		FlaggedMatchPolicy: FlaggedMatchPolicy(getEnv("FLAGGED_MATCH_POLICY", string(PolicyAdvisory))),
	}

	var err error
	if cfg.WordCount, err = getEnvInt("WORD_COUNT", constants.DefaultWordCount); err != nil {
		return nil, err
	}
	if cfg.QueueEntryTTL, err = getEnvDuration("QUEUE_ENTRY_TTL", constants.QueueEntryTTL); err != nil {
		return nil, err
	}
	if cfg.QueueSweepInterval, err = getEnvDuration("QUEUE_SWEEP_INTERVAL", constants.QueueSweepInterval); err != nil {
		return nil, err
	}
	if cfg.DecayInterval, err = getEnvDuration("DECAY_INTERVAL", constants.DecayInterval); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.FlaggedMatchPolicy {
	case PolicyAdvisory, PolicyWithhold:
	default:
		return fmt.Errorf("FLAGGED_MATCH_POLICY must be %q or %q, got %q", PolicyAdvisory, PolicyWithhold, c.FlaggedMatchPolicy)
	}
	if c.WordCount <= 0 {
		return fmt.Errorf("WORD_COUNT must be positive, got %d", c.WordCount)
	}
	if c.QueueEntryTTL <= 0 || c.QueueSweepInterval <= 0 || c.DecayInterval <= 0 {
		return fmt.Errorf("queue ttl, sweep interval and decay interval must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

var Module = fx.Provide(Load)
