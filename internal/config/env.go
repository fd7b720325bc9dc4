package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the file values for one run.
const (
	EnvOMDbAPIKey    = "MOVIEGRABBER_OMDB_API_KEY"
	EnvYouTubeAPIKey = "MOVIEGRABBER_YOUTUBE_API_KEY"
	EnvTMDBAPIKey    = "MOVIEGRABBER_TMDB_API_KEY"
	EnvVault         = "MOVIEGRABBER_VAULT"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// WithEnv returns a copy of c with environment overrides applied. The
// receiver is left untouched so overrides are never saved.
func (c *Config) WithEnv(lookup func(string) (string, bool)) *Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	out := c.Clone()
	overrides := []struct {
		key   string
		field *string
	}{
		{EnvOMDbAPIKey, &out.OMDbAPIKey},
		{EnvYouTubeAPIKey, &out.YouTubeAPIKey},
		{EnvTMDBAPIKey, &out.TMDBAPIKey},
		{EnvVault, &out.VaultPath},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && strings.TrimSpace(v) != "" {
			*o.field = strings.TrimSpace(v)
		}
	}
	return out
}
