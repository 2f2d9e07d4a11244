package schema

import "strings"

// SchemaType classifies how a column's Type should be interpreted.
type SchemaType string

const (
	// SchemaTypePlain columns carry a scalar keyword or an object type used for
	// reference lookups.
	SchemaTypePlain SchemaType = "Plain"
	// SchemaTypeEmbedded columns name an embedded schema resolved into children.
	SchemaTypeEmbedded SchemaType = "Embedded"
	// SchemaTypeEnum columns draw their values from a codelist or catalog.
	SchemaTypeEnum SchemaType = "Enum"
)

// ParseSchemaType normalises raw schema type strings. Unknown and empty values
// map to SchemaTypePlain.
func ParseSchemaType(raw string) SchemaType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "embedded":
		return SchemaTypeEmbedded
	case "enum":
		return SchemaTypeEnum
	default:
		return SchemaTypePlain
	}
}

// UnmarshalText lets JSON and YAML decoders accept any casing.
func (t *SchemaType) UnmarshalText(text []byte) error {
	*t = ParseSchemaType(string(text))
	return nil
}

// Column is a single entry of a schema document. Columns are supplied by
// external documents and treated as immutable.
type Column struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string     `json:"type" yaml:"type"`
	SchemaType  SchemaType `json:"schemaType,omitempty" yaml:"schemaType,omitempty"`
	Array       bool       `json:"array,omitempty" yaml:"array,omitempty"`
	ValueIRI    string     `json:"valueIRI,omitempty" yaml:"valueIRI,omitempty"`
	Codelist    bool       `json:"codelist,omitempty" yaml:"codelist,omitempty"`
}

// Kind returns the column schema type, defaulting to SchemaTypePlain.
func (c Column) Kind() SchemaType {
	if c.SchemaType == "" {
		return SchemaTypePlain
	}
	return c.SchemaType
}
