package config

import (
	"github.com/jpalmerr/activitystream"
)

// ClientOptions converts parsed configuration into SDK options.
//
// Network and Secret are passed to [activitystream.New] directly; every
// other field maps to one option. Empty optional fields are left to the
// SDK defaults.
func ClientOptions(cfg *Config) []activitystream.Option {
	opts := []activitystream.Option{
		activitystream.WithType(cfg.Type),
		activitystream.WithInterval(cfg.Interval.Duration()),
		activitystream.WithTimeout(cfg.Timeout.Duration()),
	}

	if cfg.Endpoint != "" {
		opts = append(opts, activitystream.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Scope != "" {
		opts = append(opts, activitystream.WithScope(cfg.Scope))
	}
	if cfg.MaxBodySize != 0 {
		opts = append(opts, activitystream.WithMaxBodySize(int64(cfg.MaxBodySize)))
	}

	return opts
}

// NewClient builds an [activitystream.Client] from cfg, appending extra
// options after the configured ones.
func NewClient(cfg *Config, extra ...activitystream.Option) (*activitystream.Client, error) {
	opts := append(ClientOptions(cfg), extra...)
	return activitystream.New(cfg.Network, cfg.Secret, opts...)
}
