// Package config loads and validates application configuration from
// environment variables (prefix OURS_) and optional config files.
package config

// Config holds all application configuration, organized into logical groups.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Mail       MailConfig       `mapstructure:"mail"`
	Scoring    ScoringConfig    `mapstructure:"scoring"    validate:"required"`
	Invitation InvitationConfig `mapstructure:"invitation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings for the bearer-token middleware.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"           validate:"required,min=32"`
	TokenLifetimeHours int    `mapstructure:"token_lifetime_hours" validate:"required,gt=0"`
}

// MailConfig contains invitation email delivery settings. When APIKey is
// empty the mailer runs in disabled mode: it logs the invitation and reports
// success, which keeps development environments working without credentials.
type MailConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email" validate:"omitempty,email"`
	AppURL    string `mapstructure:"app_url"`
}

// ScoringConfig surfaces the scoring engine's tunable constants. The data
// model deliberately leaves the decay and saturation constants open, so they
// are configuration rather than code.
type ScoringConfig struct {
	WindowLimit         int     `mapstructure:"window_limit"           validate:"required,gt=0"`
	WindowAgeDays       int     `mapstructure:"window_age_days"        validate:"required,gt=0"`
	EnergyHalfLifeHours int     `mapstructure:"energy_half_life_hours" validate:"required,gt=0"`
	SaturationCount     float64 `mapstructure:"saturation_count"       validate:"required,gt=0"`
	RecencyHalfLifeDays int     `mapstructure:"recency_half_life_days" validate:"required,gt=0"`
}

// InvitationConfig contains invitation lifecycle settings.
type InvitationConfig struct {
	TTLHours int `mapstructure:"ttl_hours" validate:"required,gt=0"`
}
