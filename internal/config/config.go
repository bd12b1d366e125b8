// Package config loads bidmatch settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults
//  2. <appdir>/config.ini
//  3. a .env file in the working directory
//  4. BIDMATCH_* environment variables
//
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/inovacc/bidmatch/internal/application"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// FileName is the name of the config file inside the application directory
const FileName = "config.ini"

type APISection struct {
	BaseURL     string        `ini:"base_url"`
	Timeout     time.Duration `ini:"timeout"`
	SearchRate  float64       `ini:"search_rate"`
	SearchBurst int           `ini:"search_burst"`
}

type UISection struct {
	DebounceDelay time.Duration `ini:"debounce_delay"`
	ToastTTL      time.Duration `ini:"toast_ttl"`
	ToastCap      int           `ini:"toast_cap"`
}

type AuthSection struct {
	UseKeyring bool `ini:"use_keyring"`
}

type LogSection struct {
	Level    string `ini:"level"`
	Format   string `ini:"format"`
	MaxFiles int    `ini:"max_files"`
}

type Config struct {
	API  APISection
	UI   UISection
	Auth AuthSection
	Log  LogSection

	// Path is the config file that was read, if any.
	Path string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		API: APISection{
			BaseURL:     "http://localhost:8000/api",
			Timeout:     30 * time.Second,
			SearchRate:  5,
			SearchBurst: 2,
		},
		UI: UISection{
			DebounceDelay: 300 * time.Millisecond,
			ToastTTL:      4 * time.Second,
			ToastCap:      5,
		},
		Auth: AuthSection{UseKeyring: true},
		Log: LogSection{
			Level:    "info",
			Format:   "text",
			MaxFiles: 10,
		},
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// Path overrides <appdir>/config.ini. A missing file is an error only
	// when Path is set explicitly.
	Path string

	// EnvFile defaults to ".env". A missing file is ignored.
	EnvFile string
}

// Load builds the configuration from every layer and validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	path := opts.Path
	explicit := path != ""

	if !explicit {
		p, err := application.Path(FileName)
		if err != nil {
			return nil, err
		}

		path = p
	}

	if err := cfg.readFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, err
		}
	} else {
		cfg.Path = path
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) sections() map[string]any {
	return map[string]any{
		"api":  &c.API,
		"ui":   &c.UI,
		"auth": &c.Auth,
		"log":  &c.Log,
	}
}

func (c *Config) readFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for name, section := range c.sections() {
		if err := f.Section(name).MapTo(section); err != nil {
			return fmt.Errorf("failed to read [%s] from %s: %w", name, path, err)
		}
	}

	return nil
}

// Write saves the configuration as an ini file.
func (c *Config) Write(path string) error {
	f := ini.Empty()

	for _, name := range []string{"api", "ui", "auth", "log"} {
		if err := f.Section(name).ReflectFrom(c.sections()[name]); err != nil {
			return fmt.Errorf("failed to encode [%s]: %w", name, err)
		}
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return os.Chmod(path, 0o600)
}

func env(key string) (string, bool) {
	v, ok := os.LookupEnv(application.EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return strings.TrimSpace(v), true
}

func (c *Config) applyEnv() error {
	if v, ok := env("API_URL"); ok {
		c.API.BaseURL = v
	}

	durations := map[string]*time.Duration{
		"TIMEOUT":   &c.API.Timeout,
		"DEBOUNCE":  &c.UI.DebounceDelay,
		"TOAST_TTL": &c.UI.ToastTTL,
	}

	for key, dst := range durations {
		if v, ok := env(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", application.EnvPrefix, key, err)
			}

			*dst = d
		}
	}

	ints := map[string]*int{
		"TOAST_CAP":    &c.UI.ToastCap,
		"SEARCH_BURST": &c.API.SearchBurst,
		"LOG_MAX":      &c.Log.MaxFiles,
	}

	for key, dst := range ints {
		if v, ok := env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", application.EnvPrefix, key, err)
			}

			*dst = n
		}
	}

	if v, ok := env("SEARCH_RATE"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sSEARCH_RATE: %w", application.EnvPrefix, err)
		}

		c.API.SearchRate = r
	}

	if v, ok := env("USE_KEYRING"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sUSE_KEYRING: %w", application.EnvPrefix, err)
		}

		c.Auth.UseKeyring = b
	}

	if v, ok := env("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := env("LOG_FORMAT"); ok {
		c.Log.Format = v
	}

	return nil
}

// Validate checks the combined settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.API.SearchRate < 0 {
		return errors.New("api.search_rate cannot be negative")
	}

	if c.UI.DebounceDelay < 0 {
		return errors.New("ui.debounce_delay cannot be negative")
	}

	if c.UI.ToastTTL <= 0 {
		return errors.New("ui.toast_ttl must be positive")
	}

	if c.UI.ToastCap < 0 {
		return errors.New("ui.toast_cap cannot be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

// Host returns the API host, used to key stored credentials.
func (c *Config) Host() string {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return c.API.BaseURL
	}

	return u.Host
}
