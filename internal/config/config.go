// Package config provides configuration loading, validation, and management
// for the IntillaSense service. Values come from defaults, an optional
// config.yaml, and INTILLA_* environment variables.
package config

import "time"

// Config defines the application configuration for all components.
// It is built once at startup and passed explicitly to every consumer.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	AI        AIConfig        `mapstructure:"ai"`
	Farms     FarmsConfig     `mapstructure:"farms"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

// LoggerConfig controls log verbosity and encoding.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr"                validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=1s"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    validate:"min=1s,max=5m"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"      validate:"min=1024"`
}

// AIConfig describes the remote completion endpoint.
// APIKey is intentionally not required: a missing key surfaces when a
// completion is attempted, not at startup.
type AIConfig struct {
	Provider     string        `mapstructure:"provider"      validate:"required,oneof=openai gemini"`
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"      validate:"omitempty,url"`
	Model        string        `mapstructure:"model"         validate:"required"`
	Temperature  float32       `mapstructure:"temperature"   validate:"min=0,max=2"`
	Timeout      time.Duration `mapstructure:"timeout"       validate:"min=1s,max=10m"`
	MaxRetries   int           `mapstructure:"max_retries"   validate:"min=0,max=5"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"   validate:"min=0,max=1m"`
	ResponseMode string        `mapstructure:"response_mode" validate:"required,oneof=structured text"`
}

// FarmsConfig locates the per-farm soil and weather text resources.
type FarmsConfig struct {
	DataDir string `mapstructure:"data_dir" validate:"required"`
}

// DatabaseConfig configures the exchange log database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// RetentionDays of 0 keeps exchanges forever.
	RetentionDays int `mapstructure:"retention_days" validate:"min=0,max=3650"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig defines whether a scheduled task runs and how often.
type TaskConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"required_if=Enabled true"`
}

// TelegramConfig enables the optional Telegram front end.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token" validate:"required_if=Enabled true"`
}
