package config

import "time"

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultServerAddr              = ":5000"
	DefaultServerReadHeaderTimeout = 10 * time.Second
	DefaultServerShutdownTimeout   = 15 * time.Second
	DefaultServerMaxBodyBytes      = 16 << 20 // base64 field photos are large

	DefaultAIProvider     = "openai"
	DefaultAIModel        = "gpt-4o"
	DefaultAITemperature  = 0.7
	DefaultAITimeout      = 2 * time.Minute
	DefaultAIRetryDelay   = 2 * time.Second
	DefaultAIResponseMode = "structured"

	DefaultFarmsDataDir = "./data"

	DefaultDBPath            = "intillasense.db"
	DefaultDBRetentionDays   = 30
	DefaultRetentionInterval = 6 * time.Hour
	DefaultVacuumInterval    = 24 * time.Hour
)

// Task names recognised by the scheduler.
const (
	TaskExchangeRetention = "exchange_retention"
	TaskSQLMaintenance    = "sql_maintenance"
)

var defaults = map[string]any{
	"logger.level": DefaultLogLevel,
	"logger.json":  true,

	"server.addr":                DefaultServerAddr,
	"server.read_header_timeout": DefaultServerReadHeaderTimeout,
	"server.shutdown_timeout":    DefaultServerShutdownTimeout,
	"server.max_body_bytes":      DefaultServerMaxBodyBytes,

	"ai.provider":      DefaultAIProvider,
	"ai.api_key":       "",
	"ai.base_url":      "",
	"ai.model":         DefaultAIModel,
	"ai.temperature":   DefaultAITemperature,
	"ai.timeout":       DefaultAITimeout,
	"ai.max_retries":   0,
	"ai.retry_delay":   DefaultAIRetryDelay,
	"ai.response_mode": DefaultAIResponseMode,

	"farms.data_dir": DefaultFarmsDataDir,

	"database.path":           DefaultDBPath,
	"database.retention_days": DefaultDBRetentionDays,

	"scheduler.tasks": map[string]any{
		TaskExchangeRetention: map[string]any{"enabled": true, "interval": DefaultRetentionInterval},
		TaskSQLMaintenance:    map[string]any{"enabled": true, "interval": DefaultVacuumInterval},
	},

	"telegram.enabled": false,
	"telegram.token":   "",
}

// extraEnv lists conventional variable names accepted alongside the
// INTILLA_* ones.
var extraEnv = map[string][]string{
	"ai.api_key":  {"INTILLA_AI_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY"},
	"ai.base_url": {"INTILLA_AI_BASE_URL", "OPENAI_BASE_URL"},
}
