package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/moviegrabber/internal/provider"
	"github.com/Digital-Shane/moviegrabber/internal/template"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds the persisted settings.
type Config struct {
	VaultPath       string `json:"vault_path"`
	MovieDirectory  string `json:"movie_directory"`
	SeriesDirectory string `json:"series_directory"`

	OMDbAPIKey    string `json:"omdb_api_key"`
	YouTubeAPIKey string `json:"youtube_api_key"`
	TMDBAPIKey    string `json:"tmdb_api_key"`

	PlotLength          string `json:"plot_length"`
	SwitchToCreatedNote bool   `json:"switch_to_created_note"`

	MovieTemplatePath    string `json:"movie_template_path"`
	SeriesTemplatePath   string `json:"series_template_path"`
	MovieFileNameFormat  string `json:"movie_file_name_format"`
	SeriesFileNameFormat string `json:"series_file_name_format"`

	SavePoster      bool   `json:"save_poster"`
	PosterDirectory string `json:"poster_directory"`

	EnableLogging      bool `json:"enable_logging"`
	LogRetentionDays   int  `json:"log_retention_days"`
	HTTPTimeoutSeconds int  `json:"http_timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MovieDirectory:       "Movies",
		SeriesDirectory:      "Series",
		PlotLength:           string(provider.PlotShort),
		MovieFileNameFormat:  template.DefaultFileNameFormat,
		SeriesFileNameFormat: template.DefaultFileNameFormat,
		PosterDirectory:      "Posters",
		EnableLogging:        true,
		LogRetentionDays:     30,
		HTTPTimeoutSeconds:   10,
	}
}

// Dir returns the directory holding the config file and logs.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".moviegrabber"), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path, returning defaults when the file
// does not exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults replaces blanked required values with their defaults.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.MovieDirectory == "" {
		c.MovieDirectory = defaults.MovieDirectory
	}
	if c.SeriesDirectory == "" {
		c.SeriesDirectory = defaults.SeriesDirectory
	}
	if c.PlotLength == "" {
		c.PlotLength = defaults.PlotLength
	}
	if c.MovieFileNameFormat == "" {
		c.MovieFileNameFormat = defaults.MovieFileNameFormat
	}
	if c.SeriesFileNameFormat == "" {
		c.SeriesFileNameFormat = defaults.SeriesFileNameFormat
	}
	if c.PosterDirectory == "" {
		c.PosterDirectory = defaults.PosterDirectory
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = defaults.HTTPTimeoutSeconds
	}
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds API keys.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks the settings that must hold regardless of the command.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.MovieDirectory, validation.Required),
		validation.Field(&c.SeriesDirectory, validation.Required),
		validation.Field(&c.PlotLength, validation.Required, validation.In(string(provider.PlotShort), string(provider.PlotFull))),
		validation.Field(&c.PosterDirectory, validation.When(c.SavePoster, validation.Required)),
		validation.Field(&c.LogRetentionDays, validation.Min(0)),
		validation.Field(&c.HTTPTimeoutSeconds, validation.Min(1), validation.Max(300)),
	)
	if err != nil {
		return &ConfigurationError{Message: "invalid configuration", Err: err}
	}
	return nil
}

// ValidateForSearch checks everything a note creation for kind needs before
// any network call is made.
func (c *Config) ValidateForSearch(kind provider.MediaKind) error {
	if err := c.Validate(); err != nil {
		return err
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.VaultPath, validation.Required.Error("vault path is not set")),
		validation.Field(&c.OMDbAPIKey, validation.Required.Error("OMDb API key is not set")),
	)
	if err != nil {
		return &ConfigurationError{Message: fmt.Sprintf("cannot search for %s", kindLabel(kind)), Err: err}
	}
	return nil
}

// Directory returns the vault directory notes of kind are written to.
func (c *Config) Directory(kind provider.MediaKind) string {
	if kind == provider.MediaKindSeries {
		return cleanVaultPath(c.SeriesDirectory)
	}
	return cleanVaultPath(c.MovieDirectory)
}

// TemplatePath returns the vault path of the template for kind, or "" for
// the built-in template.
func (c *Config) TemplatePath(kind provider.MediaKind) string {
	if kind == provider.MediaKindSeries {
		return cleanVaultPath(c.SeriesTemplatePath)
	}
	return cleanVaultPath(c.MovieTemplatePath)
}

// FileNameFormat returns the note file name template for kind.
func (c *Config) FileNameFormat(kind provider.MediaKind) string {
	if kind == provider.MediaKindSeries {
		return c.SeriesFileNameFormat
	}
	return c.MovieFileNameFormat
}

// Plot returns the configured plot length.
func (c *Config) Plot() provider.PlotLength {
	if c.PlotLength == string(provider.PlotFull) {
		return provider.PlotFull
	}
	return provider.PlotShort
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// cleanVaultPath normalizes a vault-relative path to forward slashes with no
// leading or trailing separator.
func cleanVaultPath(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return ""
	}
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func kindLabel(kind provider.MediaKind) string {
	if kind == provider.MediaKindSeries {
		return "series"
	}
	return "movies"
}
