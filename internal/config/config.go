package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultOutputPath is where the exported activity document is written.
const DefaultOutputPath = "./public/activities.json"

// Config holds runtime configuration values for the activity exporter.
type Config struct {
	AppName            string        `validate:"required"`
	AppEnv             string        `validate:"required"`
	LogLevel           string        `validate:"oneof=trace debug info warn error fatal panic disabled"`
	OutputPath         string        `validate:"required"`
	DatabaseDriver     string        `validate:"omitempty,oneof=postgres sqlite"`
	DatabaseURL        string        `validate:"required_with=DatabaseDriver"`
	RedisURL           string        `validate:"omitempty,url"`
	RedisKey           string        `validate:"required_with=RedisURL"`
	NATSURL            string        `validate:"omitempty,url"`
	NATSSubject        string        `validate:"required_with=NATSURL"`
	MetricsTextfile    string
	SideChannelTimeout time.Duration `validate:"gt=0"`
}

// IsDevelopment reports whether the exporter runs on a developer machine.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// MirrorEnabled reports whether exported records are mirrored into a database.
func (c Config) MirrorEnabled() bool {
	return c.DatabaseDriver != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ACTIVITIES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "activity-exporter")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.key", "activities:json")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject", "activities.exported")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("side_channel_timeout", "10s")

	timeoutString := v.GetString("side_channel_timeout")
	if timeoutString == "" {
		timeoutString = "10s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid side channel timeout: %w", err)
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		LogLevel:           strings.ToLower(v.GetString("log.level")),
		OutputPath:         v.GetString("output.path"),
		DatabaseDriver:     strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		RedisKey:           v.GetString("redis.key"),
		NATSURL:            v.GetString("nats.url"),
		NATSSubject:        v.GetString("nats.subject"),
		MetricsTextfile:    v.GetString("metrics.textfile"),
		SideChannelTimeout: timeout,
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
