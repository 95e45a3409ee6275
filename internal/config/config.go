package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Task      TaskConfig      `mapstructure:"task"      validate:"required"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Lab       LabConfig       `mapstructure:"lab"`
	Camera    CameraConfig    `mapstructure:"camera"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// AuthConfig contains the settings used to sign learner tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// LLMConfig contains the Gemini integration settings.
// An empty GeminiAPIKey is valid: the tutor then answers with fallback text.
type LLMConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key"`
	ModelName             string `mapstructure:"model_name"              validate:"required"`
	MaxRetries            int    `mapstructure:"max_retries"             validate:"gte=0,lte=10"`
	RetryDelaySeconds     int    `mapstructure:"retry_delay_seconds"     validate:"gte=0"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// Configured reports whether a Gemini credential is present.
func (c LLMConfig) Configured() bool {
	return c.GeminiAPIKey != ""
}

// DatabaseConfig selects the progress store. An empty URL keeps progress in memory;
// postgres:// URLs use pgx and sqlite:// or file: URLs use SQLite.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"dburl"`
}

// TaskConfig sizes the worker pool that runs external calls.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
	// TimeoutSeconds bounds each task, including the lab's simulated delay.
	// Zero disables the limit.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gte=0"`
}

// Timeout returns the per-task limit as a duration.
func (c TaskConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReactionDelay returns the simulated analysis time as a duration.
func (c LabConfig) ReactionDelay() time.Duration {
	return time.Duration(c.ReactionDelayMillis) * time.Millisecond
}

// WorkspaceConfig controls how long an unused learner workspace stays loaded.
type WorkspaceConfig struct {
	// IdleTimeoutMinutes is how long a workspace may go unused before it is
	// unmounted and dropped. Zero keeps workspaces until shutdown.
	IdleTimeoutMinutes   int `mapstructure:"idle_timeout_minutes"   validate:"gte=0"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"gt=0"`
}

// IdleTimeout returns the idle limit as a duration.
func (c WorkspaceConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval returns how often idle workspaces are looked for.
func (c WorkspaceConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// LabConfig contains virtual lab settings.
type LabConfig struct {
	// ReactionDelayMillis is the simulated analysis time before the reaction call is issued.
	ReactionDelayMillis int `mapstructure:"reaction_delay_millis" validate:"gte=0"`
}

// CameraConfig describes the capture device offered to the molecule viewer.
type CameraConfig struct {
	Available         bool     `mapstructure:"available"`
	PermissionGranted bool     `mapstructure:"permission_granted"`
	FacingModes       []string `mapstructure:"facing_modes"       validate:"dive,oneof=user environment"`
}
