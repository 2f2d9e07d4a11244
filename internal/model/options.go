package model

import (
	"log/slog"

	"github.com/goliatone/go-loform/pkg/schema"
)

// maxDepth bounds embedded schema nesting.
const maxDepth = 32

// Options configures the behaviour of the Resolver. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	Store     schema.Store
	Labeler   func(string) string
	Sanitizer func(string) string
	Logger    *slog.Logger
	// OnLoadError observes every schema load failure.
	OnLoadError func(*schema.LoadError)
}

func defaultOptions() Options {
	return Options{
		Labeler:   DefaultLabeler,
		Sanitizer: SanitizeText,
		Logger:    slog.Default(),
	}
}
