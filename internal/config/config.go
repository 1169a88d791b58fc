package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rflorenc/azure-search-workbench/faults"
	"github.com/rflorenc/azure-search-workbench/search"
)

// ServiceConfig is the search service section of the config file.
type ServiceConfig struct {
	URL        string        `yaml:"url"`
	QueryKey   string        `yaml:"query_key"`
	AdminKey   string        `yaml:"admin_key"`
	APIVersion string        `yaml:"api_version"`
	Insecure   bool          `yaml:"insecure"` // skip TLS verification
	Timeout    time.Duration `yaml:"timeout"`
}

// Config holds all configuration (config file + environment + CLI flags).
type Config struct {
	Service   ServiceConfig `yaml:"service"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
}

// Overrides carries values set explicitly on the command line. Empty
// fields leave the lower layers alone.
type Overrides struct {
	URL        string
	APIVersion string
	LogLevel   string
	LogFormat  string
	Insecure   bool
	Timeout    time.Duration
}

// Load builds the configuration in layers: the YAML file at path (if any),
// then the AZURE_SEARCH_* environment, then ov, then defaults. It does not
// validate; callers that talk to the service call Validate.
func Load(path string, ov Overrides) (*Config, error) {
	c := &Config{}
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	c.loadEnv()

	if ov.URL != "" {
		c.Service.URL = ov.URL
	}
	if ov.APIVersion != "" {
		c.Service.APIVersion = ov.APIVersion
	}
	if ov.LogLevel != "" {
		c.LogLevel = ov.LogLevel
	}
	if ov.LogFormat != "" {
		c.LogFormat = ov.LogFormat
	}
	if ov.Insecure {
		c.Service.Insecure = true
	}
	if ov.Timeout != 0 {
		c.Service.Timeout = ov.Timeout
	}

	// Apply defaults for anything still unset
	if c.Service.APIVersion == "" {
		c.Service.APIVersion = search.DefaultAPIVersion
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	return c, nil
}

// loadFile reads a YAML config file.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return faults.NewTypedError(faults.ConfigError, fmt.Sprintf("reading %s", path), err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return faults.NewTypedError(faults.ConfigError, fmt.Sprintf("parsing %s", path), err)
	}
	return nil
}

// loadEnv overlays the environment on top of the file.
func (c *Config) loadEnv() {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Service.URL, search.EnvURL)
	set(&c.Service.QueryKey, search.EnvQueryKey)
	set(&c.Service.AdminKey, search.EnvAdminKey)
	set(&c.Service.APIVersion, search.EnvAPIVersion)
}

// Validate reports the first missing or malformed setting as a ConfigError.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return faults.Configf("log format must be text or json, got %q", c.LogFormat)
	}
	return c.Service.Connection().Validate()
}

// Connection converts the service section for the search package.
func (s ServiceConfig) Connection() search.Connection {
	return search.Connection{
		URL:        s.URL,
		QueryKey:   s.QueryKey,
		AdminKey:   s.AdminKey,
		APIVersion: s.APIVersion,
		Insecure:   s.Insecure,
		Timeout:    s.Timeout,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, faults.Configf("unknown log level %q", s)
	}
	return l, nil
}

// NewLogger builds the slog logger described by the config, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
