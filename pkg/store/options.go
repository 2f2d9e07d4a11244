package store

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-loform/pkg/options"
)

// DefaultDelay is the quiescence window applied before a snapshot is emitted.
const DefaultDelay = 500 * time.Millisecond

// Consumer receives debounced snapshots of the record. It is called outside
// the store lock and owns the map it receives.
type Consumer func(Record)

// Option configures a Store.
type Option func(*Store)

// WithConsumer registers the snapshot consumer.
func WithConsumer(fn Consumer) Option {
	return func(s *Store) {
		s.consumer = fn
	}
}

// WithDelay overrides the debounce window. Non-positive values are ignored.
func WithDelay(delay time.Duration) Option {
	return func(s *Store) {
		if delay > 0 {
			s.delay = delay
		}
	}
}

// WithClock injects the clock driving the debounce timer.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets the logger used for emission and option diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProvider attaches the reference option provider OpenOptions loads
// through.
func WithProvider(provider *options.Provider) Option {
	return func(s *Store) {
		s.provider = provider
	}
}
