// Package lint checks schema sources for problems that would degrade forms at
// runtime: unresolvable embedded schemas, cycles, and codelists missing from
// the table.
package lint

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-loform/pkg/model"
	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

// Violation is one problem found in an object type.
type Violation struct {
	ObjectType string
	Path       string
	Message    string
}

func (v Violation) String() string {
	if v.Path == "" {
		return fmt.Sprintf("%s: %s", v.ObjectType, v.Message)
	}
	return fmt.Sprintf("%s: %s -> %s", v.ObjectType, v.Path, v.Message)
}

// FieldSource resolves object types, e.g. a loform.Service.
type FieldSource interface {
	Fields(ctx context.Context, objectType string) ([]model.Field, error)
}

// Run resolves every object type and reports its violations sorted by object
// type, then path.
func Run(ctx context.Context, src FieldSource, table options.Table, objectTypes []string) ([]Violation, error) {
	var out []Violation
	for _, objectType := range objectTypes {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		fields, err := src.Fields(ctx, objectType)
		out = append(out, loadViolations(objectType, err)...)
		model.Walk(fields, func(path string, field model.Field) bool {
			if field.Codelist {
				key := options.CodelistKey(field.ValueIRI)
				if _, ok := table.Lookup(key); !ok {
					out = append(out, Violation{
						ObjectType: objectType,
						Path:       path,
						Message:    fmt.Sprintf("codelist %q is not defined", key),
					})
				}
			}
			return true
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ObjectType == out[j].ObjectType {
			return out[i].Path < out[j].Path
		}
		return out[i].ObjectType < out[j].ObjectType
	})
	return out, nil
}

func loadViolations(objectType string, err error) []Violation {
	if err == nil {
		return nil
	}
	errs := flatten(err)
	out := make([]Violation, 0, len(errs))
	for _, e := range errs {
		v := Violation{ObjectType: objectType, Message: e.Error()}
		var loadErr *schema.LoadError
		if errors.As(e, &loadErr) {
			v.Path = loadErr.Field
			v.Message = fmt.Sprintf("schema %q: %v", loadErr.SchemaID, loadErr.Err)
		}
		out = append(out, v)
	}
	return out
}

// flatten expands nested errors.Join trees into their leaves.
func flatten(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}
	return out
}
