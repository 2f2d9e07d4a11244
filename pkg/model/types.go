package model

import internalmodel "github.com/goliatone/go-loform/internal/model"

// Kind re-exports the internal field kind enumeration.
type Kind = internalmodel.Kind

const (
	KindScalar    = internalmodel.KindScalar
	KindReference = internalmodel.KindReference
	KindEmbedded  = internalmodel.KindEmbedded
)

type Field = internalmodel.Field

// Lookup resolves a dotted field path to its descriptor.
func Lookup(fields []Field, path string) (Field, bool) {
	return internalmodel.Lookup(fields, path)
}

// Walk visits fields depth-first in declaration order.
func Walk(fields []Field, fn func(path string, field Field) bool) {
	internalmodel.Walk(fields, fn)
}

// CloneFields deep-copies a field list.
func CloneFields(fields []Field) []Field {
	return internalmodel.CloneFields(fields)
}

// DefaultLabeler is the label function used when none is configured.
func DefaultLabeler(name string) string {
	return internalmodel.DefaultLabeler(name)
}

// SplitPath breaks a dotted field path into its segments.
func SplitPath(path string) []string {
	return internalmodel.SplitPath(path)
}

// IsIndex reports whether a path segment addresses an array element.
func IsIndex(segment string) (int, bool) {
	return internalmodel.IsIndex(segment)
}
