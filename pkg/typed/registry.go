package typed

import "strings"

// Kind selects the codec behaviour for a value.
type Kind string

const (
	// KindPlain passes values through untouched.
	KindPlain     Kind = ""
	KindReference Kind = "reference"
	KindString    Kind = "string"
	KindBoolean   Kind = "boolean"
	KindInteger   Kind = "integer"
	KindDouble    Kind = "double"
	KindDateTime  Kind = "datetime"
)

// XSD datatype IRIs used as "@type" tags.
const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	XSDString    = XSDNamespace + "string"
	XSDBoolean   = XSDNamespace + "boolean"
	XSDInteger   = XSDNamespace + "integer"
	XSDDouble    = XSDNamespace + "double"
	XSDDateTime  = XSDNamespace + "dateTime"
)

// Wire keys.
const (
	KeyID    = "@id"
	KeyType  = "@type"
	KeyValue = "@value"
	KeyGraph = "@graph"
)

// Entry is one row of the scalar type table.
type Entry struct {
	Name string
	Kind Kind
	IRI  string
}

var scalarTable = []Entry{
	{Name: "string", Kind: KindString, IRI: XSDString},
	{Name: "boolean", Kind: KindBoolean, IRI: XSDBoolean},
	{Name: "integer", Kind: KindInteger, IRI: XSDInteger},
	{Name: "double", Kind: KindDouble, IRI: XSDDouble},
	{Name: "datetime", Kind: KindDateTime, IRI: XSDDateTime},
}

// Scalars returns a copy of the scalar type table in declaration order.
func Scalars() []Entry {
	return append([]Entry(nil), scalarTable...)
}

// LookupScalar maps a schema type name (case-insensitive) to its scalar kind.
// Names outside the table report false: they denote embedded schemas or
// referenced object types.
func LookupScalar(typeName string) (Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(typeName))
	for _, entry := range scalarTable {
		if entry.Name == name {
			return entry.Kind, true
		}
	}
	return KindPlain, false
}

// IRI returns the XSD tag for a scalar kind, or "" for reference and plain.
func IRI(kind Kind) string {
	for _, entry := range scalarTable {
		if entry.Kind == kind {
			return entry.IRI
		}
	}
	return ""
}

// KindForIRI maps an XSD tag back to its kind. Compact "xsd:" forms are
// accepted.
func KindForIRI(iri string) (Kind, bool) {
	iri = strings.TrimSpace(iri)
	if rest, ok := strings.CutPrefix(iri, "xsd:"); ok {
		iri = XSDNamespace + rest
	}
	for _, entry := range scalarTable {
		if entry.IRI == iri {
			return entry.Kind, true
		}
	}
	return KindPlain, false
}

// IsScalar reports whether kind carries an XSD tag on the wire.
func (k Kind) IsScalar() bool {
	return IRI(k) != ""
}
