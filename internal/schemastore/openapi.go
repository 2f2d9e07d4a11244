package schemastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-loform/pkg/options"
	"github.com/goliatone/go-loform/pkg/schema"
)

// Extension keys read from OpenAPI component schemas and their properties.
const (
	ExtSchemaType = "x-schema-type"
	ExtValueIRI   = "x-value-iri"
	ExtCodelist   = "x-codelist"
	ExtCategory   = "x-schema-category"
)

// OpenAPIStore serves schema documents derived from the component schemas of
// an OpenAPI 3 document. Every component is addressable as a logistics object
// and as an embedded schema unless it names one category with
// x-schema-category. Inline enums are collected into a codelist table.
type OpenAPIStore struct {
	docs      map[string]schema.Document
	codelists options.Table
}

var _ schema.Store = (*OpenAPIStore)(nil)

// LoadOpenAPIFile reads name from fsys and builds an OpenAPIStore.
func LoadOpenAPIFile(ctx context.Context, fsys fs.FS, name string) (*OpenAPIStore, error) {
	if fsys == nil {
		return nil, errors.New("schemastore: fs is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("schemastore: read %s: %w", name, err)
	}
	return NewOpenAPIStore(ctx, data)
}

// NewOpenAPIStore parses raw (JSON or YAML) with kin-openapi and converts its
// component schemas.
func NewOpenAPIStore(ctx context.Context, raw []byte) (*OpenAPIStore, error) {
	if len(raw) == 0 {
		return nil, errors.New("schemastore: openapi payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schemastore: load openapi document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("schemastore: openapi document has no component schemas")
	}

	order, err := propertyOrder(raw)
	if err != nil {
		return nil, fmt.Errorf("schemastore: read property order: %w", err)
	}

	store := &OpenAPIStore{docs: make(map[string]schema.Document)}
	lists := make(map[string][]options.Entry)
	for name, ref := range spec.Components.Schemas {
		if ref == nil || ref.Value == nil {
			continue
		}
		columns := convertComponent(ref.Value, order[name], lists)
		for _, category := range categories(ref.Value.Extensions) {
			doc, err := schema.NewDocument(schema.Key(category, name), columns)
			if err != nil {
				return nil, fmt.Errorf("schemastore: component %s: %w", name, err)
			}
			store.docs[doc.ID] = doc
		}
	}
	store.codelists = options.NewTable(lists)
	return store, nil
}

// Load implements schema.Store.
func (s *OpenAPIStore) Load(ctx context.Context, id string) (schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}
	doc, ok := s.docs[id]
	if !ok {
		return schema.Document{}, fmt.Errorf("%w: %s", schema.ErrNotFound, id)
	}
	return doc.Clone(), nil
}

// IDs returns the document ids in sorted order.
func (s *OpenAPIStore) IDs() []string {
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Codelists returns the table built from inline enums.
func (s *OpenAPIStore) Codelists() options.Table {
	return s.codelists
}

func categories(ext map[string]any) []string {
	if raw, ok := ext[ExtCategory].(string); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case strings.ToLower(schema.CategoryEmbedded):
			return []string{schema.CategoryEmbedded}
		case strings.ToLower(schema.CategoryObject):
			return []string{schema.CategoryObject}
		}
	}
	return []string{schema.CategoryObject, schema.CategoryEmbedded}
}

// convertComponent turns the properties of a component schema into columns,
// following the declaration order found in the raw document. Properties the
// order does not mention are appended alphabetically.
func convertComponent(component *openapi3.Schema, order []string, lists map[string][]options.Entry) []schema.Column {
	names := make([]string, 0, len(component.Properties))
	for _, name := range order {
		if _, ok := component.Properties[name]; ok {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range component.Properties {
		if !slices.Contains(names, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	columns := make([]schema.Column, 0, len(names))
	for _, name := range names {
		if column, ok := convertProperty(name, component.Properties[name], lists); ok {
			columns = append(columns, column)
		}
	}
	return columns
}

func convertProperty(name string, prop *openapi3.SchemaRef, lists map[string][]options.Entry) (schema.Column, bool) {
	if prop == nil || prop.Value == nil {
		return schema.Column{}, false
	}

	ext := make(map[string]any)
	collect := func(src map[string]any) {
		for key, value := range src {
			if _, ok := ext[key]; !ok {
				ext[key] = value
			}
		}
	}

	column := schema.Column{Name: name, Description: prop.Value.Description}
	collect(prop.Extensions)
	target := prop
	if target.Ref == "" {
		collect(target.Value.Extensions)
	}
	if hasType(target.Value, "array") && target.Value.Items != nil {
		column.Array = true
		target = target.Value.Items
		collect(target.Extensions)
		if target.Ref == "" && target.Value != nil {
			collect(target.Value.Extensions)
		}
	}
	target = unwrapAllOf(target)
	if target == nil || target.Value == nil {
		return schema.Column{}, false
	}
	if target.Ref != "" {
		collect(target.Value.Extensions)
	}
	if column.Description == "" {
		column.Description = target.Value.Description
	}
	column.ValueIRI = stringExt(ext, ExtValueIRI)

	item := target.Value
	codelist := stringExt(ext, ExtCodelist)
	switch {
	case target.Ref != "":
		column.Type = refName(target.Ref)
		column.SchemaType = schema.SchemaTypeEmbedded
	case len(item.Enum) > 0 || codelist != "":
		key := codelist
		if key == "" {
			key = options.CodelistKey(column.ValueIRI)
		}
		if key == "" {
			key = name
		}
		column.Type = key
		column.SchemaType = schema.SchemaTypeEnum
		column.Codelist = true
		if column.ValueIRI == "" {
			column.ValueIRI = "#" + key
		}
		if _, exists := lists[key]; !exists && len(item.Enum) > 0 {
			entries := make([]options.Entry, 0, len(item.Enum))
			for _, value := range item.Enum {
				entries = append(entries, options.Entry{ID: fmt.Sprint(value)})
			}
			lists[key] = entries
		}
	default:
		column.Type = scalarType(item)
		if column.Type == "" {
			return schema.Column{}, false
		}
	}

	if raw := stringExt(ext, ExtSchemaType); raw != "" {
		column.SchemaType = schema.ParseSchemaType(raw)
	}
	return column, true
}

// unwrapAllOf returns the single $ref of an `allOf: [{$ref}]` wrapper, the
// form OpenAPI 3.0 documents use to annotate a reference.
func unwrapAllOf(ref *openapi3.SchemaRef) *openapi3.SchemaRef {
	if ref == nil || ref.Ref != "" || ref.Value == nil {
		return ref
	}
	value := ref.Value
	if len(value.AllOf) == 1 && len(value.Properties) == 0 && len(value.Type.Slice()) == 0 {
		return value.AllOf[0]
	}
	return ref
}

func scalarType(s *openapi3.Schema) string {
	switch {
	case hasType(s, "string"):
		if s.Format == "date-time" || s.Format == "date" {
			return "datetime"
		}
		return "string"
	case hasType(s, "integer"):
		return "integer"
	case hasType(s, "number"):
		return "double"
	case hasType(s, "boolean"):
		return "boolean"
	default:
		return ""
	}
}

func hasType(s *openapi3.Schema, typ string) bool {
	if s == nil || s.Type == nil {
		return false
	}
	return slices.Contains(s.Type.Slice(), typ)
}

func refName(ref string) string {
	if idx := strings.LastIndex(ref, "/"); idx >= 0 {
		return ref[idx+1:]
	}
	return ref
}

func stringExt(ext map[string]any, key string) string {
	value, _ := ext[key].(string)
	return strings.TrimSpace(value)
}

// propertyOrder reads components.schemas.<name>.properties key order from the
// raw document; kin-openapi exposes properties as a map.
func propertyOrder(raw []byte) (map[string][]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	order := make(map[string][]string)
	schemas := mappingValue(mappingValue(documentRoot(&root), "components"), "schemas")
	if schemas == nil {
		return order, nil
	}
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		name := schemas.Content[i].Value
		props := mappingValue(schemas.Content[i+1], "properties")
		if props == nil {
			continue
		}
		for j := 0; j+1 < len(props.Content); j += 2 {
			order[name] = append(order[name], props.Content[j].Value)
		}
	}
	return order, nil
}

func documentRoot(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return node.Content[0]
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
