package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	State    StateConfig    `mapstructure:"state"    validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	ImageGen ImageGenConfig `mapstructure:"imagegen" validate:"required"`
	Bulk     BulkConfig     `mapstructure:"bulk"`
	Export   ExportConfig   `mapstructure:"export"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// MaxBodyBytes caps request bodies; export payloads carry base64 images.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"gt=0"`
}

// StateConfig selects where the deck store document is persisted.
type StateConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=file postgres"`
	// Dir is the directory holding file-backed state documents.
	Dir string `mapstructure:"dir"`
	// Key names the state document, mirroring the client-side storage key.
	Key string `mapstructure:"key" validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
// Only required when the postgres state backend is selected.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// ImageGenConfig contains the image generation provider settings.
type ImageGenConfig struct {
	Provider       string `mapstructure:"provider"        validate:"required,oneof=openai gemini"`
	BaseURL        string `mapstructure:"base_url"        validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"           validate:"required"`
	Size           string `mapstructure:"size"            validate:"required,dimensions"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
	// TargetSize, when set, downsamples generated images before they are stored.
	TargetSize string `mapstructure:"target_size" validate:"omitempty,dimensions"`
	Quality    int    `mapstructure:"quality"     validate:"min=1,max=100"`
	MIMEType   string `mapstructure:"mime_type"   validate:"oneof=image/png image/jpeg"`
}

// BulkConfig controls bulk card generation.
type BulkConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=16"`
}

// ExportConfig controls the package export and the storage quota.
type ExportConfig struct {
	DeckName   string `mapstructure:"deck_name"   validate:"required"`
	QuotaBytes int64  `mapstructure:"quota_bytes" validate:"gt=0"`
}
