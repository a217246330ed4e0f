package activitystream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/activitystream/activity"
	"github.com/jpalmerr/activitystream/internal/network"
	"github.com/jpalmerr/activitystream/internal/poller"
	"github.com/jpalmerr/activitystream/internal/token"
)

const (
	defaultInterval = 10 * time.Second
	defaultTimeout  = 30 * time.Second
)

// ErrAlreadyRunning is returned by [Client.Start] while a previous Start
// on the same client has not returned.
var ErrAlreadyRunning = errors.New("activitystream: client is already running")

// Client polls the activity stream of a single network.
//
// Client is created with [New] and runs with [Client.Start]. Each client
// owns one cursor; to follow several networks, create one client per
// network.
type Client struct {
	identity   Identity
	typeFilter int
	interval   time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	builder    *poller.RequestBuilder
	transport  Transport

	// ownTransport is set when the client created its own HTTP transport
	// and is responsible for releasing its connections.
	ownTransport *poller.Client

	mu      sync.Mutex
	running *poller.Loop
	last    string
}

// New creates a [Client] for the given network and secret.
//
// The network is resolved into its canonical identity once, here. Other
// options have sensible defaults:
//   - Type filter: 0
//   - Interval: 10 seconds
//   - Timeout: 30 seconds
//
// Returns an error if network or secret is empty, if the network cannot be
// resolved, or if any option is invalid.
//
// Example:
//
//	client, err := activitystream.New("client.fyre.co", secret,
//	    activitystream.WithInterval(30 * time.Second),
//	)
func New(networkName, secret string, opts ...Option) (*Client, error) {
	if networkName == "" {
		return nil, errors.New("no network provided")
	}
	if secret == "" {
		return nil, errors.New("no network secret provided")
	}

	cfg := &clientConfig{
		interval:  defaultInterval,
		timeout:   defaultTimeout,
		directory: network.Livefyre{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	id, err := cfg.directory.Resolve(networkName, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}

	issuer, err := token.NewIssuer(id.URN, secret, cfg.scope, cfg.signer)
	if err != nil {
		return nil, err
	}

	builder, err := poller.NewRequestBuilder(cfg.endpoint, id.Name, id.URN, issuer)
	if err != nil {
		return nil, err
	}

	c := &Client{
		identity:   id,
		typeFilter: cfg.typeFilter,
		interval:   cfg.interval,
		timeout:    cfg.timeout,
		logger:     logger,
		builder:    builder,
		transport:  cfg.transport,
	}
	if c.transport == nil {
		c.ownTransport = poller.NewClient(cfg.maxBodySize)
		c.transport = c.ownTransport
	}
	return c, nil
}

// Start polls the stream from since, delivering batches to handler, and
// blocks until ctx is cancelled or [Client.Stop] is called.
//
// Pages are drained back to back while the server reports a next cursor.
// Once the server has nothing more, and after any failed poll, the client
// waits for the configured interval and polls again from the same
// position. Every failure is delivered to handler in [Batch.Err]; none of
// them stops the client.
//
// Returns [ErrAlreadyRunning] if the client is already running, and nil
// otherwise.
func (c *Client) Start(ctx context.Context, since string, handler Handler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	loop := c.newLoop(handler)

	c.mu.Lock()
	if c.running != nil {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = loop
	c.mu.Unlock()

	c.logger.Info("activitystream starting",
		"network", c.identity.URN,
		"url", c.builder.URL(),
		"since", since,
		"type", c.typeFilter,
		"interval", c.interval.String(),
	)

	loop.Start(ctx, since, poller.Continuous)
	<-loop.Done()

	c.mu.Lock()
	c.running = nil
	c.last = loop.Position()
	c.mu.Unlock()

	if c.ownTransport != nil {
		c.ownTransport.Close()
	}

	c.logger.Info("activitystream stopped", "position", loop.Position())
	return nil
}

// Once performs a single poll from since and returns its batch without
// following pagination or retrying. The batch may be empty; a failed poll
// is reported in [Batch.Err]. If ctx is cancelled before a batch is
// delivered, Err holds the context's error.
func (c *Client) Once(ctx context.Context, since string) Batch {
	var (
		batch     activity.Batch
		delivered bool
	)
	loop := c.newLoop(func(b activity.Batch) {
		batch = b
		delivered = true
	})

	loop.Run(ctx, since, poller.Once)

	if !delivered {
		err := ctx.Err()
		if err == nil {
			err = errors.New("no batch delivered")
		}
		return Batch{Since: since, Err: err}
	}
	return batch
}

// Stop halts a running [Client.Start] and waits for it to finish.
// A request in flight is abandoned without delivering its batch.
// Stop is idempotent and safe to call when the client is not running.
func (c *Client) Stop() {
	c.mu.Lock()
	loop := c.running
	c.mu.Unlock()

	if loop != nil {
		loop.Stop()
	}
}

// Position returns the cursor of the running poll loop, or the final
// cursor of the last one if the client is not running.
func (c *Client) Position() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running != nil {
		return c.running.Position()
	}
	return c.last
}

// URN returns the canonical identity of the polled network.
func (c *Client) URN() string {
	return c.identity.URN
}

// URL returns the stream URL polled by the client.
func (c *Client) URL() string {
	return c.builder.URL()
}

// Type returns the event type delivered to handlers.
func (c *Client) Type() int {
	return c.typeFilter
}

// Interval returns the delay between polls after an error or an exhausted
// page.
func (c *Client) Interval() time.Duration {
	return c.interval
}

func (c *Client) newLoop(handler Handler) *poller.Loop {
	return poller.NewLoop(poller.Config{
		Builder:    c.builder,
		Transport:  c.transport,
		TypeFilter: c.typeFilter,
		Interval:   c.interval,
		Timeout:    c.timeout,
		Handler:    handler,
		Logger:     c.logger,
	})
}
