// Package config содержит логику чтения конфигурации сервиса учёта обслуживания.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Значения по умолчанию.
const (
	DefaultRunAddress       = "localhost:8080"
	DefaultStoragePath      = "suraksha.db"
	DefaultReminderSchedule = "0 9 * * *"
	DefaultTimezone         = "Asia/Kolkata"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress       string `env:"RUN_ADDRESS"`
	DatabaseURI      string `env:"DATABASE_URI"`
	StoragePath      string `env:"STORAGE_PATH"`
	SyncWebhookURL   string `env:"SYNC_WEBHOOK_URL"`
	ReminderSchedule string `env:"REMINDER_SCHEDULE"`
	LogFile          string `env:"LOG_FILE"`
	Timezone         string `env:"TIMEZONE"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fromEnv := *cfg

	flag.StringVar(&cfg.RunAddress, "a", DefaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "PostgreSQL database URI")
	flag.StringVar(&cfg.StoragePath, "f", DefaultStoragePath, "SQLite storage file, used without database URI")
	flag.StringVar(&cfg.SyncWebhookURL, "w", "", "automation webhook URL")
	flag.StringVar(&cfg.ReminderSchedule, "s", DefaultReminderSchedule, "cron schedule of the upcoming services digest")
	flag.StringVar(&cfg.LogFile, "l", "", "log file path")
	flag.StringVar(&cfg.Timezone, "t", DefaultTimezone, "business timezone")

	flag.Parse()

	override(&cfg.RunAddress, fromEnv.RunAddress)
	override(&cfg.DatabaseURI, fromEnv.DatabaseURI)
	override(&cfg.StoragePath, fromEnv.StoragePath)
	override(&cfg.SyncWebhookURL, fromEnv.SyncWebhookURL)
	override(&cfg.ReminderSchedule, fromEnv.ReminderSchedule)
	override(&cfg.LogFile, fromEnv.LogFile)
	override(&cfg.Timezone, fromEnv.Timezone)

	if cfg.RunAddress == "" {
		cfg.RunAddress = DefaultRunAddress
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = DefaultStoragePath
	}
	if cfg.ReminderSchedule == "" {
		cfg.ReminderSchedule = DefaultReminderSchedule
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}

	return cfg, nil
}

// Location возвращает часовой пояс, в котором считаются календарные даты.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
