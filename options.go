package activitystream

import (
	"errors"
	"log/slog"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	typeFilter int
	interval   time.Duration
	timeout    time.Duration
	endpoint   string
	scope      string
	logger     *slog.Logger
	transport  Transport
	signer     Signer
	directory  Directory

	maxBodySize int64
}

// Option is a function that configures a [Client] during construction.
//
// Option implements the functional options pattern. Options return an
// error if validation fails.
type Option func(*clientConfig) error

// WithType sets the event type delivered to handlers. Records of any other
// type are dropped. Defaults to 0 (comments).
func WithType(eventType int) Option {
	return func(cfg *clientConfig) error {
		cfg.typeFilter = eventType
		return nil
	}
}

// WithInterval sets the delay before polling again after an error or once
// the server has no further pages. Pagination itself is never delayed.
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithTimeout bounds each request. Defaults to 30 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithEndpoint overrides the stream URL template. The template must
// contain a single %s, which is replaced with the short network name.
//
// Example:
//
//	client, err := activitystream.New(network, secret,
//	    activitystream.WithEndpoint("https://%s.activity.example.com/api/v3.1/activity/"),
//	)
func WithEndpoint(template string) Option {
	return func(cfg *clientConfig) error {
		if template == "" {
			return errors.New("endpoint cannot be empty")
		}
		cfg.endpoint = template
		return nil
	}
}

// WithScope overrides the scope claim of issued tokens.
func WithScope(scope string) Option {
	return func(cfg *clientConfig) error {
		if scope == "" {
			return errors.New("scope cannot be empty")
		}
		cfg.scope = scope
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(t Transport) Option {
	return func(cfg *clientConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithMaxBodySize caps the size of a response body read by the default
// transport. A larger page is reported as a [TransportError] wrapping
// [ErrResponseTooLarge]. Defaults to 16MB. Has no effect with
// [WithTransport].
//
// Returns an error if n is zero or negative.
func WithMaxBodySize(n int64) Option {
	return func(cfg *clientConfig) error {
		if n <= 0 {
			return errors.New("max body size must be positive")
		}
		cfg.maxBodySize = n
		return nil
	}
}

// WithSigner replaces the HS256 JWT signer used for request tokens.
func WithSigner(s Signer) Option {
	return func(cfg *clientConfig) error {
		if s == nil {
			return errors.New("signer cannot be nil")
		}
		cfg.signer = s
		return nil
	}
}

// WithDirectory replaces the network directory used to resolve the
// network name into its urn and short name.
func WithDirectory(d Directory) Option {
	return func(cfg *clientConfig) error {
		if d == nil {
			return errors.New("directory cannot be nil")
		}
		cfg.directory = d
		return nil
	}
}
