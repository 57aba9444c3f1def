package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DECKPACK_SERVER_PORT.
const EnvPrefix = "DECKPACK"

// DefaultQuotaBytes is the serialized deck store size (4.5 MiB) above which
// new cards are refused.
const DefaultQuotaBytes int64 = 4.5 * 1024 * 1024

var dimensionsPattern = regexp.MustCompile(`^[1-9][0-9]{0,4}x[1-9][0-9]{0,4}$`)

// defaults lists every key so that environment variables can override values
// that appear in no config file.
var defaults = map[string]any{
	"server.port":              8080,
	"server.log_level":         "info",
	"server.max_body_bytes":    25 << 20,
	"state.backend":            "file",
	"state.dir":                "data",
	"state.key":                "decks",
	"database.url":             "",
	"imagegen.provider":        "openai",
	"imagegen.base_url":        "https://api.litviva.com/v1",
	"imagegen.api_key":         "",
	"imagegen.model":           "hackathon/text2image",
	"imagegen.size":            "1024x1024",
	"imagegen.timeout_seconds": 60,
	"imagegen.target_size":     "",
	"imagegen.quality":         90,
	"imagegen.mime_type":       "image/png",
	"bulk.concurrency":         2,
	"export.deck_name":         "ImageExport",
	"export.quota_bytes":       DefaultQuotaBytes,
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from config files. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches
// the working directory for config.yaml and tolerates its absence.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-section rules.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("dimensions", func(fl validator.FieldLevel) bool {
		return dimensionsPattern.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register validator: %w", err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.State.Backend == "postgres" && c.Database.URL == "" {
		return errors.New("config validation failed: database.url is required for the postgres state backend")
	}
	if c.State.Backend == "file" && c.State.Dir == "" {
		return errors.New("config validation failed: state.dir is required for the file state backend")
	}

	return nil
}
