package model

import (
	"strconv"
	"strings"
)

// SplitPath breaks a dotted field path into segments, dropping empty ones.
func SplitPath(path string) []string {
	raw := strings.Split(strings.TrimSpace(path), ".")
	out := raw[:0]
	for _, segment := range raw {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

// IsIndex reports whether a path segment addresses an array element.
func IsIndex(segment string) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Lookup resolves a dotted path such as "dimensions.length" or
// "pieces.0.grossWeight" to its descriptor. Numeric segments address array
// elements and are skipped during the descriptor walk.
func Lookup(fields []Field, path string) (Field, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return Field{}, false
	}

	var (
		current Field
		found   bool
		level   = fields
	)
	for _, segment := range segments {
		if _, ok := IsIndex(segment); ok {
			if !found || !current.Array {
				return Field{}, false
			}
			continue
		}
		found = false
		for _, field := range level {
			if field.Name == segment {
				current, found = field, true
				break
			}
		}
		if !found {
			return Field{}, false
		}
		level = current.Children
	}
	return current, found
}

// Walk visits every field depth-first in declaration order. Returning false
// from fn skips the field's children.
func Walk(fields []Field, fn func(path string, field Field) bool) {
	walk(fields, "", fn)
}

func walk(fields []Field, prefix string, fn func(string, Field) bool) {
	for _, field := range fields {
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		if !fn(path, field) {
			continue
		}
		if len(field.Children) > 0 {
			walk(field.Children, path, fn)
		}
	}
}
