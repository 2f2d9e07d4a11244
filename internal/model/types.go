package model

import "github.com/goliatone/go-loform/pkg/typed"

// Kind classifies a resolved field.
type Kind string

const (
	KindScalar    Kind = "scalar"
	KindReference Kind = "reference"
	KindEmbedded  Kind = "embedded"
)

// Field describes one editable input derived from a schema column. Fields are
// immutable once the resolver returns them; Children is fully resolved for
// embedded fields and nil otherwise.
type Field struct {
	Name          string     `json:"name"`
	Label         string     `json:"label"`
	Kind          Kind       `json:"kind"`
	ScalarKind    typed.Kind `json:"scalarKind,omitempty"`
	Array         bool       `json:"array,omitempty"`
	Description   string     `json:"description,omitempty"`
	ValueIRI      string     `json:"valueIRI,omitempty"`
	Codelist      bool       `json:"codelist,omitempty"`
	ReferenceType string     `json:"referenceType,omitempty"`
	// Type is the source column type: the scalar keyword, the embedded schema
	// name, or the referenced object type.
	Type     string  `json:"type"`
	Children []Field `json:"children,omitempty"`
}

// CodecKind returns the codec kind used for the field's values.
func (f Field) CodecKind() typed.Kind {
	switch f.Kind {
	case KindReference:
		return typed.KindReference
	case KindScalar:
		return f.ScalarKind
	default:
		return typed.KindPlain
	}
}

// NeedsOptions reports whether the field draws candidate values from a
// codelist or catalog.
func (f Field) NeedsOptions() bool {
	return f.Kind == KindReference
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Children = CloneFields(f.Children)
	return out
}

// CloneFields deep-copies a field list.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}
