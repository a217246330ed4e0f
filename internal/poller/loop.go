package poller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/activitystream/activity"
	"github.com/jpalmerr/activitystream/internal/normalize"
)

// Mode selects how far a [Loop] runs.
type Mode int

const (
	// Continuous drains pagination and keeps polling until cancelled.
	Continuous Mode = iota

	// Once delivers exactly one batch (possibly empty, possibly an error)
	// and stops.
	Once
)

// state is a node of the poll state machine.
type state int

const (
	stateIdle state = iota
	statePolling
	stateDelivering
	stateBackingOff
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case statePolling:
		return "polling"
	case stateDelivering:
		return "delivering"
	case stateBackingOff:
		return "backing_off"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Handler receives every batch delivered by a [Loop].
type Handler func(activity.Batch)

// Config holds the collaborators and settings of a [Loop].
type Config struct {
	Builder   *RequestBuilder
	Transport Transport

	// TypeFilter is the event type delivered; records of other types are
	// dropped silently.
	TypeFilter int

	// Interval is the delay before retrying after an error or an
	// exhausted page.
	Interval time.Duration

	// Timeout bounds each request.
	Timeout time.Duration

	Handler Handler
	Logger  *slog.Logger
}

// Loop owns the cursor of one feed and drives the poll state machine:
//
//	idle → polling → delivering → polling      (next cursor present)
//	                            → backing_off  (page exhausted)
//	               → backing_off               (error, or no states)
//	backing_off → polling                      (after Interval)
//
// The position only advances when a successful page carries a next
// cursor; every other outcome retries from the same position after
// Interval. Pagination continuations run immediately, without delay.
//
// Lifecycle methods (Start, Stop) are safe for concurrent use.
type Loop struct {
	builder    *RequestBuilder
	transport  Transport
	typeFilter int
	interval   time.Duration
	timeout    time.Duration
	handler    Handler
	logger     *slog.Logger

	// wait blocks for d or until ctx is done, reporting whether the full
	// delay elapsed. Replaced in tests.
	wait func(ctx context.Context, d time.Duration) bool

	mu        sync.Mutex
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once

	posMu    sync.RWMutex
	position string
}

// NewLoop creates a [Loop]. It does not poll until [Loop.Start] or
// [Loop.Run] is called.
func NewLoop(cfg Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	handler := cfg.Handler
	if handler == nil {
		handler = func(activity.Batch) {}
	}
	return &Loop{
		builder:    cfg.Builder,
		transport:  cfg.Transport,
		typeFilter: cfg.TypeFilter,
		interval:   cfg.Interval,
		timeout:    cfg.Timeout,
		handler:    handler,
		logger:     logger,
		wait:       sleepContext,
		done:       make(chan struct{}),
	}
}

// Position returns the loop's current cursor.
func (l *Loop) Position() string {
	l.posMu.RLock()
	defer l.posMu.RUnlock()
	return l.position
}

func (l *Loop) setPosition(p string) {
	l.posMu.Lock()
	l.position = p
	l.posMu.Unlock()
}

// Start runs the loop from position in a background goroutine.
//
// Start is idempotent; subsequent calls after the first are no-ops, as is
// a call after Stop. If ctx is nil, context.Background() is used.
func (l *Loop) Start(ctx context.Context, position string, mode Mode) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		defer l.closeOnce.Do(func() { close(l.done) })
		defer cancel()

		l.Run(runCtx, position, mode)
	}()
}

// Stop cancels the loop and waits for it to return. A request in flight
// is abandoned and its response is not delivered.
//
// Stop is idempotent and safe to call before Start.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		if l.cancel != nil {
			l.cancel()
		}
	}
	l.mu.Unlock()

	l.wg.Wait()
	l.closeOnce.Do(func() { close(l.done) })
}

// Done is closed once the loop has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// outcome is the result of a single polling step.
type outcome struct {
	result     normalize.Result
	err        error
	statusCode int
}

// Run drives the state machine from position until ctx is cancelled, or
// until one batch has been delivered in [Once] mode. It returns the final
// position.
//
// Continuations are iterations of a single loop, so a long backlog of
// pages does not grow the stack.
func (l *Loop) Run(ctx context.Context, position string, mode Mode) string {
	logger := l.logger.With("chain_id", uuid.NewString())
	l.setPosition(position)

	var out outcome
	st := stateIdle

	for {
		switch st {
		case stateIdle:
			st = statePolling

		case statePolling:
			if ctx.Err() != nil {
				return position
			}

			logger.Debug("polling", "since", position)
			out = l.poll(ctx, position)

			if ctx.Err() != nil {
				logger.Debug("discarding response after cancellation", "since", position)
				return position
			}

			if out.err != nil {
				logger.Warn("poll failed",
					"since", position,
					"status_code", out.statusCode,
					"error", out.err.Error(),
				)
				l.deliver(logger, activity.Batch{Since: position, Err: out.err, StatusCode: out.statusCode})
				if mode == Once {
					return position
				}
				st = stateBackingOff
				continue
			}

			if mode == Once {
				l.deliver(logger, activity.Batch{Since: position, Events: out.result.Events, StatusCode: out.statusCode})
				return position
			}

			if !out.result.HasStates {
				logger.Debug("response carried no states", "since", position)
				st = stateBackingOff
				continue
			}
			st = stateDelivering

		case stateDelivering:
			logger.Debug("page received",
				"since", position,
				"events", len(out.result.Events),
				"next", out.result.NextCursor,
			)
			if len(out.result.Events) > 0 {
				l.deliver(logger, activity.Batch{Since: position, Events: out.result.Events, StatusCode: out.statusCode})
			}

			next := out.result.NextCursor
			// a cursor equal to the position would re-request the same
			// page immediately, so it counts as exhausted
			if next != "" && next != position {
				position = next
				l.setPosition(position)
				st = statePolling
				continue
			}
			st = stateBackingOff

		case stateBackingOff:
			logger.Debug("backing off", "since", position, "interval", l.interval.String())
			if !l.wait(ctx, l.interval) {
				return position
			}
			st = statePolling
		}
	}
}

// poll builds, sends and normalizes one request.
func (l *Loop) poll(ctx context.Context, position string) outcome {
	req, err := l.builder.Build(position)
	if err != nil {
		return outcome{err: err}
	}

	resp := l.transport.Send(ctx, req, l.timeout)
	if resp.Error != nil {
		return outcome{
			err:        &activity.TransportError{StatusCode: resp.StatusCode, Err: resp.Error},
			statusCode: resp.StatusCode,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return outcome{
			err:        &activity.TransportError{StatusCode: resp.StatusCode, Body: resp.Body},
			statusCode: resp.StatusCode,
		}
	}

	res, err := normalize.Normalize(resp.Body, position, l.typeFilter)
	if err != nil {
		return outcome{err: err, statusCode: resp.StatusCode}
	}
	return outcome{result: res, statusCode: resp.StatusCode}
}

// deliver calls the handler with panic recovery.
// If the handler panics, the full stack trace is logged with a correlation
// ID and the loop carries on as if the delivery had succeeded.
func (l *Loop) deliver(logger *slog.Logger, b activity.Batch) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("batch handler panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"since", b.Since,
				"stack", string(debug.Stack()),
			)
		}
	}()
	l.handler(b)
}

// sleepContext waits for d, returning false if ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
