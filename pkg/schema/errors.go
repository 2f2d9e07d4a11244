package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a store holds no document for the requested id.
	ErrNotFound = errors.New("schema: document not found")
	// ErrMalformed reports a document that could not be parsed.
	ErrMalformed = errors.New("schema: malformed document")
	// ErrCycle reports an embedded schema that (transitively) embeds itself.
	ErrCycle = errors.New("schema: embedded schema cycle")
)

// LoadError describes a schema that could not be located or parsed. Field is
// set when the failure happened while resolving an embedded column.
type LoadError struct {
	SchemaID string
	Field    string
	Err      error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field != "" {
		return fmt.Sprintf("schema: load %q for field %q: %v", e.SchemaID, e.Field, e.Err)
	}
	return fmt.Sprintf("schema: load %q: %v", e.SchemaID, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsLoadError reports whether err carries a LoadError anywhere in its chain.
func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}
