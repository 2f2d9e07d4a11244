package options

import (
	"errors"
	"fmt"
)

// Source names where options were looked up.
type Source string

const (
	SourceCodelist Source = "codelist"
	SourceCatalog  Source = "catalog"
)

var (
	// ErrNoTable reports a codelist field while no table is configured.
	ErrNoTable = errors.New("options: codelist table not configured")
	// ErrNoCatalog reports a catalog field while no catalog is configured.
	ErrNoCatalog = errors.New("options: catalog not configured")
	// ErrMalformedResponse reports a catalog payload that is not JSON objects.
	ErrMalformedResponse = errors.New("options: malformed catalog response")
)

// LoadError describes a failed option lookup. It is reported to observers; the
// lookup itself resolves to an empty option list.
type LoadError struct {
	Field  string
	Source Source
	Key    string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("options: %s lookup %q for field %q: %v", e.Source, e.Key, e.Field, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
