// Package config holds the non-secret settings of a blogbox server.
//
// Secrets (admin username, signing key) are never read from here, they
// come exclusively from the environment, see auth.LoadSecrets.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

type (
	Config struct {
		Bind           string        `toml:"bind"`
		Database       string        `toml:"database"`
		UploadDir      string        `toml:"upload_dir"`
		MaxUploadBytes int64         `toml:"max_upload_bytes"`
		AllowedOrigin  string        `toml:"allowed_origin"`
		LogLevel       string        `toml:"log_level"`
		PostCacheTTL   Duration      `toml:"post_cache_ttl"`
		Login          LoginThrottle `toml:"login"`
	}

	// LoginThrottle limits login attempts per client address
	LoginThrottle struct {
		PerMinute int `toml:"per_minute"`
		Burst     int `toml:"burst"`
	}

	// Duration decodes toml strings like "10m"
	Duration struct {
		time.Duration
	}
)

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the settings used when nothing else is configured
func Default() Config {
	return Config{
		Bind:           "localhost:7020",
		Database:       "blogbox.db",
		UploadDir:      "uploads",
		MaxUploadBytes: 10 << 20,
		AllowedOrigin:  "http://ui:3000",
		LogLevel:       "info",
		PostCacheTTL:   Duration{10 * time.Minute},
		Login: LoginThrottle{
			PerMinute: 10,
			Burst:     5,
		},
	}
}

// Load reads path on top of Default. An empty path is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: unable to decode %v, cause %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config: unknown keys in %v: %v", path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Level returns the parsed log level, Validate guarantees it parses
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (c Config) Validate() error {
	switch {
	case c.Bind == "":
		return errors.New("config: bind address cannot be empty")
	case c.Database == "":
		return errors.New("config: database path cannot be empty")
	case c.UploadDir == "":
		return errors.New("config: upload_dir cannot be empty")
	case c.MaxUploadBytes <= 0:
		return errors.New("config: max_upload_bytes must be positive")
	case c.PostCacheTTL.Duration <= 0:
		return errors.New("config: post_cache_ttl must be positive")
	case c.Login.PerMinute <= 0 || c.Login.Burst <= 0:
		return errors.New("config: login.per_minute and login.burst must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid log_level %q, cause %w", c.LogLevel, err)
	}
	return nil
}
