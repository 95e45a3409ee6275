package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CHEMLAB"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the named config file instead of
// searching for config.yaml in the working directory. An empty path searches.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := newValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// newValidator returns a validator that also understands the database URL
// schemes and the task timeout bound.
func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("dburl", func(fl validator.FieldLevel) bool {
		_, _, err := ParseDatabaseURL(fl.Field().String())
		return err == nil
	})
	validate.RegisterStructValidation(validateTaskTimeout, Config{})
	return validate
}

// validateTaskTimeout rejects a task timeout that would cancel every
// reaction before its simulated delay has elapsed.
func validateTaskTimeout(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	timeout := cfg.Task.Timeout()
	if timeout > 0 && timeout <= cfg.Lab.ReactionDelay() {
		sl.ReportError(cfg.Task.TimeoutSeconds, "TimeoutSeconds", "TimeoutSeconds", "gtreactiondelay", "")
	}
}

// setDefaults registers every key so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60*24*7)

	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 1)
	v.SetDefault("llm.request_timeout_seconds", 30)

	v.SetDefault("database.url", "")

	v.SetDefault("task.worker_count", 4)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.timeout_seconds", 60)

	v.SetDefault("workspace.idle_timeout_minutes", 30)
	v.SetDefault("workspace.sweep_interval_seconds", 60)

	v.SetDefault("lab.reaction_delay_millis", 2000)

	v.SetDefault("camera.available", true)
	v.SetDefault("camera.permission_granted", true)
	v.SetDefault("camera.facing_modes", []string{"environment", "user"})
}
