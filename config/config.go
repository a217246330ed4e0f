// Package config provides YAML configuration parsing for the activitystream
// command line tool.
//
// Example configuration:
//
//	network: client.fyre.co
//	secret: ${LF_NETWORK_SECRET}
//	type: 0
//	interval: 10s
//	timeout: 30s
//	since: "0"
//	max_body_size: 16MiB
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

const (
	defaultInterval = 10 * time.Second
	defaultTimeout  = 30 * time.Second

	// minInterval keeps a misconfigured client from hammering the stream.
	minInterval = 1 * time.Second
	maxInterval = time.Hour
	minTimeout  = 1 * time.Second

	minMaxBodySize = 1 << 10
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Network is the network name, e.g. "client.fyre.co".
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Network string `yaml:"network"`

	// Secret is the network key used to sign request tokens.
	// Supports environment variable substitution.
	Secret string `yaml:"secret"`

	// Type is the event type to deliver. Defaults to 0 (comments).
	Type int `yaml:"type"`

	// Interval is the delay before polling again after an error or an
	// exhausted page. Defaults to 10s.
	Interval Duration `yaml:"interval"`

	// Timeout bounds each request. Defaults to 30s.
	Timeout Duration `yaml:"timeout"`

	// Since is the event id to start from. Defaults to "0".
	Since string `yaml:"since"`

	// Endpoint overrides the stream URL template; %s is replaced with the
	// short network name. Supports environment variable substitution.
	Endpoint string `yaml:"endpoint"`

	// Scope overrides the token scope claim.
	Scope string `yaml:"scope"`

	// MaxBodySize caps each response body, e.g. "8MB" or "512KiB".
	// Empty keeps the client default.
	MaxBodySize ByteSize `yaml:"max_body_size"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ByteSize is a size in bytes written in human form ("8MB", "512KiB").
type ByteSize uint64

// UnmarshalYAML implements yaml.Unmarshaler for ByteSize.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", s, err)
	}

	*b = ByteSize(parsed)
	return nil
}

// String formats the size the way it is written in the config file.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Network, Secret and Endpoint.
// Defaults are applied for Interval (10s), Timeout (30s) and Since ("0").
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Interval == 0 {
		cfg.Interval = Duration(defaultInterval)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(defaultTimeout)
	}
	if cfg.Since == "" {
		cfg.Since = "0"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for _, field := range []struct {
		name string
		val  *string
	}{
		{"network", &c.Network},
		{"secret", &c.Secret},
		{"endpoint", &c.Endpoint},
	} {
		expanded, err := expandEnvVars(*field.val)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.val = strings.TrimSpace(expanded)
	}

	if c.Network == "" {
		return errors.New("network is required")
	}
	if c.Secret == "" {
		return errors.New("secret is required")
	}

	if c.Type < 0 {
		return fmt.Errorf("type cannot be negative, got %d", c.Type)
	}

	if c.Interval.Duration() < minInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minInterval, c.Interval.Duration())
	}
	if c.Interval.Duration() > maxInterval {
		return fmt.Errorf("interval must not exceed %s, got %s", maxInterval, c.Interval.Duration())
	}
	if c.Timeout.Duration() < minTimeout {
		return fmt.Errorf("timeout must be at least %s, got %s", minTimeout, c.Timeout.Duration())
	}

	if c.MaxBodySize != 0 && c.MaxBodySize < minMaxBodySize {
		return fmt.Errorf("max_body_size must be at least %s, got %s", ByteSize(minMaxBodySize), c.MaxBodySize)
	}

	if c.Endpoint != "" {
		if strings.Count(c.Endpoint, "%s") != 1 {
			return fmt.Errorf("endpoint must contain exactly one %%s placeholder, got %q", c.Endpoint)
		}
		parsedURL, err := url.Parse(fmt.Sprintf(c.Endpoint, "network"))
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("endpoint scheme must be http or https, got %q", parsedURL.Scheme)
		}
	}

	return nil
}
