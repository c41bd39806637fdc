package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	DataPath     string
	PriceSources []string
	PolicyFile   string

	SolverNodeLimit int
	MenuSeed        int64
	PriceUpdateHour int

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:       getEnv("DATABASE_PATH", "data/menu.db"),
		DataPath:           getEnv("DATA_PATH", "data"),
		PriceSources:       splitList(getEnv("PRICE_SOURCES", "manual")),
		PolicyFile:         os.Getenv("POLICY_FILE"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
		Port:               getEnv("PORT", "8080"),
	}
	if len(cfg.PriceSources) == 0 {
		return nil, fmt.Errorf("PRICE_SOURCES must name at least one source")
	}

	var err error
	if cfg.SolverNodeLimit, err = positiveInt("SOLVER_NODE_LIMIT", 100000); err != nil {
		return nil, err
	}

	cfg.MenuSeed = 42
	if v := os.Getenv("MENU_SEED"); v != "" {
		if cfg.MenuSeed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("MENU_SEED must be an integer, got %q", v)
		}
	}

	cfg.PriceUpdateHour = 3
	if v := os.Getenv("PRICE_UPDATE_HOUR"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h < 0 || h > 23 {
			return nil, fmt.Errorf("PRICE_UPDATE_HOUR must be an hour between 0 and 23, got %q", v)
		}
		cfg.PriceUpdateHour = h
	}

	// Telegram Config (Optional for CLI, required for Bot)
	for _, v := range splitList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS must be a list of user ids, got %q", v)
		}
		cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		if cfg.AdminTelegramID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID must be a user id, got %q", v)
		}
	}

	return cfg, nil
}

// IsAllowedUser reports whether a Telegram user may talk to the bot. An
// empty allow list admits everyone.
func (c *Config) IsAllowedUser(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return id != 0 && id == c.AdminTelegramID
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
