package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// ErrRunning is returned by Start when the poller is already running.
var ErrRunning = errors.New("poller already running")

// Func is the work done on every tick.
type Func func(ctx context.Context) error

// Poller calls a Func immediately on Start and then once per interval
// until Stop.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func
	clock    clock.Clock
	onError  func(error)
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithOnError sets the callback receiving every error returned by the
// Func. Without one, errors are logged at WARN.
func WithOnError(fn func(error)) Option {
	return func(p *Poller) { p.onError = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a stopped Poller. name only appears in logs.
func New(name string, interval time.Duration, fn Func, opts ...Option) *Poller {
	p := &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
		clock:    clock.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start runs the Func once right away in the background and then on every
// tick. The poller stops when ctx is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := p.clock.Ticker(p.interval)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.loop(ctx, ticker, done)
	p.logger.Debug("poller started", "name", p.name, "interval", p.interval)
	return nil
}

// Stop cancels the poller and waits for an in-flight run to return. It is
// safe to call on a stopped poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Debug("poller stopped", "name", p.name)
}

// Running reports whether the poller has been started and not stopped.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

func (p *Poller) loop(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer func() {
		ticker.Stop()
		p.mu.Lock()
		// Cancelled through ctx rather than Stop.
		if p.done == done {
			p.cancel()
			p.cancel, p.done = nil, nil
		}
		p.mu.Unlock()
		close(done)
	}()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := p.fn(ctx)
	if err == nil || errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}
	if p.onError != nil {
		p.onError(err)
		return
	}
	p.logger.Warn("poll failed", "name", p.name, "error", err)
}
