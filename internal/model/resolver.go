package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/goliatone/go-loform/pkg/schema"
	"github.com/goliatone/go-loform/pkg/typed"
)

var errNoStore = errors.New("model resolver: no schema store configured")

// Resolver converts schema columns into field descriptors, loading embedded
// schemas through the configured store.
type Resolver struct {
	opts Options
}

// New creates a Resolver with the supplied options.
func New(options Options) *Resolver {
	opts := defaultOptions()
	opts.Store = options.Store
	opts.OnLoadError = options.OnLoadError
	if options.Labeler != nil {
		opts.Labeler = options.Labeler
	}
	if options.Sanitizer != nil {
		opts.Sanitizer = options.Sanitizer
	}
	if options.Logger != nil {
		opts.Logger = options.Logger
	}
	return &Resolver{opts: opts}
}

// Resolve transforms columns into fields in input order. Embedded columns whose
// schema cannot be loaded are left out of the result; every such failure is
// logged and returned joined as *schema.LoadError values alongside the fields
// that did resolve.
func (r *Resolver) Resolve(ctx context.Context, columns []schema.Column) ([]Field, error) {
	return r.resolve(ctx, columns, nil)
}

// ResolveObject loads the top-level schema for objectType and resolves it. A
// missing top-level schema yields no fields and a *schema.LoadError.
func (r *Resolver) ResolveObject(ctx context.Context, objectType string) ([]Field, error) {
	id := schema.ObjectKey(objectType)
	doc, err := r.load(ctx, id)
	if err != nil {
		loadErr := &schema.LoadError{SchemaID: id, Err: err}
		r.report(ctx, loadErr)
		return nil, loadErr
	}
	return r.resolve(ctx, doc.Columns, []string{id})
}

func (r *Resolver) resolve(ctx context.Context, columns []schema.Column, stack []string) ([]Field, error) {
	fields := make([]Field, 0, len(columns))
	var errs []error

	for _, column := range columns {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		field := r.describe(column)
		if field.Kind == KindEmbedded {
			children, err := r.embedded(ctx, column, stack)
			if err != nil {
				errs = append(errs, err)
			}
			if children == nil {
				continue
			}
			field.Children = children
		}
		fields = append(fields, field)
	}

	return fields, errors.Join(errs...)
}

func (r *Resolver) describe(column schema.Column) Field {
	field := Field{
		Name:        column.Name,
		Label:       r.opts.Labeler(column.Name),
		Array:       column.Array,
		Description: r.opts.Sanitizer(column.Description),
		ValueIRI:    column.ValueIRI,
		Codelist:    column.Codelist,
		Type:        column.Type,
	}

	switch column.Kind() {
	case schema.SchemaTypeEmbedded:
		field.Kind = KindEmbedded
	case schema.SchemaTypeEnum:
		field.Kind = KindReference
	default:
		if kind, ok := typed.LookupScalar(column.Type); ok {
			field.Kind = KindScalar
			field.ScalarKind = kind
		} else {
			field.Kind = KindReference
			field.ReferenceType = column.Type
		}
	}
	return field
}

// embedded returns nil children when the field must be dropped. Non-nil
// children may still come with an error describing omitted descendants.
func (r *Resolver) embedded(ctx context.Context, column schema.Column, stack []string) ([]Field, error) {
	id := schema.EmbeddedKey(column.Type)

	var cause error
	switch {
	case slices.Contains(stack, id):
		cause = fmt.Errorf("%w: %v -> %s", schema.ErrCycle, stack, id)
	case len(stack) >= maxDepth:
		cause = fmt.Errorf("%w: nesting deeper than %d", schema.ErrCycle, maxDepth)
	}
	if cause == nil {
		doc, err := r.load(ctx, id)
		if err == nil {
			nested := append(slices.Clone(stack), id)
			children, err := r.resolve(ctx, doc.Columns, nested)
			if children == nil {
				children = []Field{}
			}
			return children, err
		}
		cause = err
	}

	loadErr := &schema.LoadError{SchemaID: id, Field: column.Name, Err: cause}
	r.report(ctx, loadErr)
	return nil, loadErr
}

func (r *Resolver) load(ctx context.Context, id string) (schema.Document, error) {
	if r.opts.Store == nil {
		return schema.Document{}, errNoStore
	}
	return r.opts.Store.Load(ctx, id)
}

func (r *Resolver) report(ctx context.Context, err *schema.LoadError) {
	r.opts.Logger.WarnContext(ctx, "schema load failed",
		slog.String("schema", err.SchemaID),
		slog.String("field", err.Field),
		slog.Any("error", err.Err),
	)
	if r.opts.OnLoadError != nil {
		r.opts.OnLoadError(err)
	}
}
