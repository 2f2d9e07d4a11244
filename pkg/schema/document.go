package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed schema: an ordered column list addressed by id.
type Document struct {
	ID      string   `json:"id,omitempty" yaml:"id,omitempty"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// NewDocument constructs a Document while validating the inputs. Columns are
// copied so callers cannot mutate the stored order.
func NewDocument(id string, columns []Column) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, errors.New("schema: document id is required")
	}
	for i, column := range columns {
		if strings.TrimSpace(column.Name) == "" {
			return Document{}, fmt.Errorf("schema: document %q column %d has no name", id, i)
		}
	}
	return Document{ID: id, Columns: append([]Column(nil), columns...)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(id string, columns ...Column) Document {
	doc, err := NewDocument(id, columns)
	if err != nil {
		panic(err)
	}
	return doc
}

// Clone returns a copy that shares no column storage with d.
func (d Document) Clone() Document {
	return Document{ID: d.ID, Columns: append([]Column(nil), d.Columns...)}
}

// ParseDocument decodes raw JSON or YAML into a Document. Both a bare column
// list and an object with a `columns` key are accepted. Failures wrap
// ErrMalformed.
func ParseDocument(id string, raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Document{}, fmt.Errorf("%w: %s is empty", ErrMalformed, id)
	}

	var (
		columns []Column
		parsed  bool
	)
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &columns); err == nil {
			parsed = true
		}
	case '{':
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err == nil {
			columns, parsed = doc.Columns, true
		}
	}
	if !parsed {
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return Document{}, fmt.Errorf("%w: %s: %v", ErrMalformed, id, err)
		}
		if err := decodeYAMLColumns(&node, &columns); err != nil {
			return Document{}, fmt.Errorf("%w: %s: %v", ErrMalformed, id, err)
		}
	}

	doc, err := NewDocument(id, columns)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

func decodeYAMLColumns(node *yaml.Node, out *[]Column) error {
	root := node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch root.Kind {
	case yaml.SequenceNode:
		return root.Decode(out)
	case yaml.MappingNode:
		var doc Document
		if err := root.Decode(&doc); err != nil {
			return err
		}
		*out = doc.Columns
		return nil
	default:
		return errors.New("expected a column list or a mapping with columns")
	}
}
