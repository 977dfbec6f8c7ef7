package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"dtek-outage-monitor/internal/models"
	"dtek-outage-monitor/internal/storage"
)

type Config struct {
	City             string
	Street           string
	House            string
	TelegramBotToken string
	ChatID           int64
	ShutdownsPage    string
	FetchTimeout     time.Duration
	StateBackend     string
	StateFilePath    string
	StateDBPath      string
	TimeFormat       string
	TimeLocation     string
	LogLevel         string
	PushgatewayURL   string
	MetricsJob       string
}

func Load() Config {
	v := viper.New()

	v.SetDefault("SHUTDOWNS_PAGE", "https://www.dtek-kem.com.ua/ua/shutdowns")
	v.SetDefault("FETCH_TIMEOUT", "60s")
	v.SetDefault("STATE_BACKEND", storage.BackendFile)
	v.SetDefault("STATE_FILE_PATH", "data/last_message.json")
	v.SetDefault("STATE_DB_PATH", "data/state.db")
	v.SetDefault("TIME_FORMAT", "15:04 02.01.2006")
	v.SetDefault("TIME_LOCATION", "Europe/Kyiv")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_JOB", "dtek_outage_monitor")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return Config{
		City:             v.GetString("CITY"),
		Street:           v.GetString("STREET"),
		House:            v.GetString("HOUSE"),
		TelegramBotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
		ChatID:           v.GetInt64("TELEGRAM_CHAT_ID"),
		ShutdownsPage:    v.GetString("SHUTDOWNS_PAGE"),
		FetchTimeout:     v.GetDuration("FETCH_TIMEOUT"),
		StateBackend:     strings.ToLower(v.GetString("STATE_BACKEND")),
		StateFilePath:    v.GetString("STATE_FILE_PATH"),
		StateDBPath:      v.GetString("STATE_DB_PATH"),
		TimeFormat:       v.GetString("TIME_FORMAT"),
		TimeLocation:     v.GetString("TIME_LOCATION"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		PushgatewayURL:   v.GetString("PUSHGATEWAY_URL"),
		MetricsJob:       v.GetString("METRICS_JOB"),
	}
}

func (c Config) Address() models.Address {
	return models.Address{City: c.City, Street: c.Street, House: c.House}
}

// Location resolves TimeLocation, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate checks what every command needs: the store settings.
func (c Config) Validate() error {
	switch c.StateBackend {
	case storage.BackendFile:
		if c.StateFilePath == "" {
			return fmt.Errorf("STATE_FILE_PATH is not set")
		}
	case storage.BackendSQLite:
		if c.StateDBPath == "" {
			return fmt.Errorf("STATE_DB_PATH is not set")
		}
	default:
		return fmt.Errorf("STATE_BACKEND must be %q or %q, got %q", storage.BackendFile, storage.BackendSQLite, c.StateBackend)
	}
	if c.TimeLocation == "" || strings.EqualFold(c.TimeLocation, "Local") {
		return fmt.Errorf("TIME_LOCATION must be an IANA time zone name, got %q", c.TimeLocation)
	}
	if _, err := time.LoadLocation(c.TimeLocation); err != nil {
		return fmt.Errorf("TIME_LOCATION is invalid: %w", err)
	}
	return nil
}

// ValidateMonitor additionally checks the address and Telegram settings
// required to run a check.
func (c Config) ValidateMonitor() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Street == "" {
		return fmt.Errorf("STREET is not set")
	}
	if c.House == "" {
		return fmt.Errorf("HOUSE is not set")
	}
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.ChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	return nil
}
