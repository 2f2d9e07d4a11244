package model

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-loform/internal/model"
	"github.com/goliatone/go-loform/pkg/schema"
)

// Resolver converts schema columns into field descriptor trees.
type Resolver interface {
	Resolve(ctx context.Context, columns []schema.Column) ([]Field, error)
	ResolveObject(ctx context.Context, objectType string) ([]Field, error)
}

// ResolverOption configures the resolver behaviour.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	labeler     func(string) string
	sanitizer   func(string) string
	logger      *slog.Logger
	onLoadError func(*schema.LoadError)
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) ResolverOption {
	return func(opts *resolverOptions) {
		opts.labeler = labeler
	}
}

// WithSanitizer overrides how column descriptions are cleaned. Passing an
// identity function keeps descriptions verbatim.
func WithSanitizer(sanitizer func(string) string) ResolverOption {
	return func(opts *resolverOptions) {
		opts.sanitizer = sanitizer
	}
}

// WithLogger routes schema load warnings to logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(opts *resolverOptions) {
		opts.logger = logger
	}
}

// WithLoadErrorHook observes every schema load failure, e.g. for metrics.
func WithLoadErrorHook(fn func(*schema.LoadError)) ResolverOption {
	return func(opts *resolverOptions) {
		opts.onLoadError = fn
	}
}

// NewResolver returns a Resolver backed by the internal implementation.
func NewResolver(store schema.Store, options ...ResolverOption) Resolver {
	cfg := resolverOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	return model.New(model.Options{
		Store:       store,
		Labeler:     cfg.labeler,
		Sanitizer:   cfg.sanitizer,
		Logger:      cfg.logger,
		OnLoadError: cfg.onLoadError,
	})
}
