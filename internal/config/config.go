package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL      string
	HTTPAddr         string
	CompanyID        string
	DefaultUserID    string
	Timezone         string
	WeeksBuffer      int
	GenerateInterval time.Duration
	ReminderTime     string
	ReminderWindow   time.Duration
	WeeklyReportTime string
	TelegramToken    string
	NATSURL          string
	NATSSubject      string
	RedisURL         string

	location *time.Location
}

var defaults = map[string]interface{}{
	"DATABASE_URL":            "weekly_planner.db",
	"HTTP_ADDR":               ":3000",
	"COMPANY_ID":              "default-company",
	"DEFAULT_USER_ID":         "00000000-0000-4000-8000-000000000001",
	"TIMEZONE":                "Local",
	"WEEKS_BUFFER":            4,
	"GENERATE_INTERVAL_HOURS": "6",
	"REMINDER_TIME":           "09:00",
	"REMINDER_WINDOW_HOURS":   "24",
	"WEEKLY_REPORT_TIME":      "08:00",
	"TELEGRAM_TOKEN":          "",
	"NATS_URL":                "",
	"NATS_SUBJECT":            "weeklyplanner.notifications",
	"REDIS_URL":               "",
}

// Load reads configuration from environment variables, optionally layered over a
// config file (yaml, toml or json, keyed like the variables).
func Load(configFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		HTTPAddr:         strings.TrimSpace(v.GetString("HTTP_ADDR")),
		CompanyID:        strings.TrimSpace(v.GetString("COMPANY_ID")),
		DefaultUserID:    strings.TrimSpace(v.GetString("DEFAULT_USER_ID")),
		Timezone:         strings.TrimSpace(v.GetString("TIMEZONE")),
		WeeksBuffer:      v.GetInt("WEEKS_BUFFER"),
		GenerateInterval: parseInterval(strings.TrimSpace(v.GetString("GENERATE_INTERVAL_HOURS"))),
		ReminderTime:     strings.TrimSpace(v.GetString("REMINDER_TIME")),
		ReminderWindow:   parseInterval(strings.TrimSpace(v.GetString("REMINDER_WINDOW_HOURS"))),
		WeeklyReportTime: strings.TrimSpace(v.GetString("WEEKLY_REPORT_TIME")),
		TelegramToken:    strings.TrimSpace(v.GetString("TELEGRAM_TOKEN")),
		NATSURL:          strings.TrimSpace(v.GetString("NATS_URL")),
		NATSSubject:      strings.TrimSpace(v.GetString("NATS_SUBJECT")),
		RedisURL:         strings.TrimSpace(v.GetString("REDIS_URL")),
	}

	if cfg.WeeksBuffer < 1 {
		return cfg, fmt.Errorf("WEEKS_BUFFER must be at least 1")
	}
	if cfg.GenerateInterval == 0 {
		return cfg, fmt.Errorf("GENERATE_INTERVAL_HOURS must be a positive number of hours")
	}
	if cfg.ReminderWindow == 0 {
		return cfg, fmt.Errorf("REMINDER_WINDOW_HOURS must be a positive number of hours")
	}
	if cfg.CompanyID == "" || cfg.DefaultUserID == "" {
		return cfg, fmt.Errorf("COMPANY_ID and DEFAULT_USER_ID must not be empty")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("TIMEZONE: %w", err)
	}
	cfg.location = loc

	return cfg, nil
}

// Location is the zone that decides "today" and the wall clock of generated due dates.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
