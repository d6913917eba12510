package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type BotConfig struct {
	TelegramToken   string
	TelegramDebug   bool
	BaseAdminChatID int64
	DatabaseURL     string
	Location        *time.Location
	HTTPAddr        string
	CORSOrigins     []string
	DigestCron      string
	LogLevel        string
	FetchTimeout    time.Duration
	HolidaysFile    string
}

var (
	instance *BotConfig
	once     sync.Once
)

// GetBotConfig loads the configuration once and exits on error.
func GetBotConfig() *BotConfig {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("error loading config: %s", err.Error())
		}
		instance = cfg
	})
	return instance
}

// Load reads .env if present, then the process environment.
func Load() (*BotConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env variables: %w", err)
	}

	cfg := &BotConfig{
		TelegramToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramDebug:   getEnvAsBool("TELEGRAM_DEBUG", false),
		BaseAdminChatID: getEnvAsInt("BASE_ADMIN_CHAT_ID", 0),
		DatabaseURL:     getEnv("DATABASE_URL", "attendance.db"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS"),
		DigestCron:      getEnv("DIGEST_CRON", "0 10 * * 2-6"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		FetchTimeout:    getEnvAsDuration("FETCH_TIMEOUT", 5*time.Second),
		HolidaysFile:    getEnv("HOLIDAYS_FILE", ""),
	}
	if cfg.TelegramToken == "" {
		return nil, errors.New("could not get bot token")
	}
	if cfg.BaseAdminChatID == 0 {
		return nil, errors.New("could not get admin chat id")
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc
	return cfg, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(name string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(name, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil && val > 0 {
		return val
	}
	return defaultVal
}
