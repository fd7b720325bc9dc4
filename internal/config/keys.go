package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type setting struct {
	key    string
	secret bool
	get    func(*Config) string
	set    func(*Config, string) error
}

func stringSetting(key string, field func(*Config) *string) setting {
	return setting{
		key: key,
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func secretSetting(key string, field func(*Config) *string) setting {
	s := stringSetting(key, field)
	s.secret = true
	return s
}

func boolSetting(key string, field func(*Config) *bool) setting {
	return setting{
		key: key,
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s expects true or false, got %q", key, v)
			}
			*field(c) = b
			return nil
		},
	}
}

func intSetting(key string, field func(*Config) *int) setting {
	return setting{
		key: key,
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s expects a number, got %q", key, v)
			}
			*field(c) = n
			return nil
		},
	}
}

// settings lists every key accepted by Set, in display order.
var settings = []setting{
	stringSetting("vault_path", func(c *Config) *string { return &c.VaultPath }),
	stringSetting("movie_directory", func(c *Config) *string { return &c.MovieDirectory }),
	stringSetting("series_directory", func(c *Config) *string { return &c.SeriesDirectory }),
	secretSetting("omdb_api_key", func(c *Config) *string { return &c.OMDbAPIKey }),
	secretSetting("youtube_api_key", func(c *Config) *string { return &c.YouTubeAPIKey }),
	secretSetting("tmdb_api_key", func(c *Config) *string { return &c.TMDBAPIKey }),
	stringSetting("plot_length", func(c *Config) *string { return &c.PlotLength }),
	boolSetting("switch_to_created_note", func(c *Config) *bool { return &c.SwitchToCreatedNote }),
	stringSetting("movie_template_path", func(c *Config) *string { return &c.MovieTemplatePath }),
	stringSetting("series_template_path", func(c *Config) *string { return &c.SeriesTemplatePath }),
	stringSetting("movie_file_name_format", func(c *Config) *string { return &c.MovieFileNameFormat }),
	stringSetting("series_file_name_format", func(c *Config) *string { return &c.SeriesFileNameFormat }),
	boolSetting("save_poster", func(c *Config) *bool { return &c.SavePoster }),
	stringSetting("poster_directory", func(c *Config) *string { return &c.PosterDirectory }),
	boolSetting("enable_logging", func(c *Config) *bool { return &c.EnableLogging }),
	intSetting("log_retention_days", func(c *Config) *int { return &c.LogRetentionDays }),
	intSetting("http_timeout_seconds", func(c *Config) *int { return &c.HTTPTimeoutSeconds }),
}

func lookupSetting(key string) (setting, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// Keys returns every settable key in display order.
func Keys() []string {
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.key
	}
	return keys
}

// Set assigns value to the setting named key and validates the result. On
// error c is left unchanged.
func (c *Config) Set(key, value string) error {
	s, ok := lookupSetting(key)
	if !ok {
		known := Keys()
		sort.Strings(known)
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(known, ", "))
	}

	next := c.Clone()
	if err := s.set(next, strings.TrimSpace(value)); err != nil {
		return err
	}
	next.fillDefaults()
	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

// Get returns the current value of key.
func (c *Config) Get(key string) (string, error) {
	s, ok := lookupSetting(key)
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return s.get(c), nil
}

// Entry is one key/value pair for display.
type Entry struct {
	Key   string
	Value string
}

// Entries returns all settings in display order with API keys masked.
func (c *Config) Entries() []Entry {
	out := make([]Entry, 0, len(settings))
	for _, s := range settings {
		v := s.get(c)
		if s.secret {
			v = mask(v)
		}
		out = append(out, Entry{Key: s.key, Value: v})
	}
	return out
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
